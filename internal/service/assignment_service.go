package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/dispatch-service/internal/config"
	"github.com/spec-kit/dispatch-service/internal/directory"
	"github.com/spec-kit/dispatch-service/internal/domain"
	"github.com/spec-kit/dispatch-service/internal/events"
	"github.com/spec-kit/dispatch-service/internal/notification"
	"github.com/spec-kit/dispatch-service/internal/repository"
	"github.com/spec-kit/dispatch-service/internal/scoring"
	apperrors "github.com/spec-kit/dispatch-service/pkg/util"
)

// Notifier is the assignment-notification contract consumed by the
// orchestrator. Deliveries are best-effort; outcomes are values, not errors.
type Notifier interface {
	NotifyOne(ctx context.Context, request *domain.Request, engineer *domain.Engineer, analysis *domain.AIAnalysis) notification.Outcome
	NotifyBatch(ctx context.Context, items []notification.BatchItem, requestsByID map[string]*domain.Request) []notification.Outcome
}

// AssignmentService owns the request lifecycle state machine. It is the
// only writer of request state.
type AssignmentService struct {
	requests   repository.RequestRepository
	gateway    scoring.Gateway
	notifier   Notifier
	directory  directory.Directory
	dispatcher events.Dispatcher
	logger     *zap.Logger
	scoringCfg config.ScoringConfig
}

// AssignmentDependencies bundles collaborators for the service.
type AssignmentDependencies struct {
	RequestRepo repository.RequestRepository
	Gateway     scoring.Gateway
	Notifier    Notifier
	Directory   directory.Directory
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	ScoringCfg  config.ScoringConfig
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		requests:   deps.RequestRepo,
		gateway:    deps.Gateway,
		notifier:   deps.Notifier,
		directory:  deps.Directory,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		scoringCfg: deps.ScoringCfg,
	}
}

// SubmitInput describes a new request submission.
type SubmitInput struct {
	ServiceID    string
	ServiceTitle string
	Requestor    string
	NIP          string
	Branch       string
	Unit         string
	Urgency      string
	Description  string
	CreatedAt    string
}

// Submit validates and stores a new request, then attempts immediate AI
// assignment. Gateway failure degrades the request to open; the submission
// itself succeeds once validated.
func (s *AssignmentService) Submit(ctx context.Context, input SubmitInput) (*domain.Request, error) {
	if input.ServiceTitle == "" || input.Requestor == "" || input.Description == "" {
		return nil, apperrors.NewValidationError("serviceTitle, requestor, and description are required", nil)
	}
	if len(strings.Fields(input.Description)) < 3 {
		return nil, apperrors.NewValidationError("Description must contain at least 3 words", nil)
	}

	request, err := s.requests.Create(ctx, repository.RequestDraft{
		ServiceID:    input.ServiceID,
		ServiceTitle: input.ServiceTitle,
		Description:  input.Description,
		Requestor:    input.Requestor,
		NIP:          input.NIP,
		Branch:       input.Branch,
		Unit:         input.Unit,
		Urgency:      domain.NormalizeUrgency(input.Urgency),
		CreatedAt:    input.CreatedAt,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("request created",
		zap.String("request_id", request.ID),
		zap.String("service_title", request.ServiceTitle))
	s.publishEvent(events.EventRequestSubmitted, request.ID, "requestor", events.RequestSubmittedPayload{
		ServiceTitle: request.ServiceTitle,
		Requestor:    request.Requestor,
		Urgency:      request.Urgency,
		Status:       request.Status,
	})

	result, err := s.gateway.AssignOne(ctx, ticketText(request), request.ServiceTitle,
		string(request.Urgency), s.scoringCfg.AssignTimeout())
	if err != nil {
		s.logger.Warn("scoring gateway failed, leaving request open",
			zap.String("request_id", request.ID), zap.Error(err))
		return s.requests.Update(ctx, request.ID, func(r *domain.Request) {
			r.Status = domain.RequestStatusOpen
		})
	}

	analysis := analysisFromResult(result)
	updated, err := s.requests.Update(ctx, request.ID, func(r *domain.Request) {
		r.Status = domain.RequestStatusAssigned
		r.AssignedTo = &result.SelectedEngineer
		r.AssignmentType = domain.AssignmentTypeAI
		r.AIAnalysis = analysis
		r.Candidates = candidatesFromResult(result)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("request assigned",
		zap.String("request_id", updated.ID),
		zap.String("engineer", result.SelectedEngineer),
		zap.Float64("score", result.AssignmentScore))
	s.publishEvent(events.EventRequestAssigned, updated.ID, "ai", events.RequestAssignedPayload{
		AssignedTo:     result.SelectedEngineer,
		AssignmentType: domain.AssignmentTypeAI,
		Score:          result.AssignmentScore,
	})

	// Notification is decoupled from the submission response: a slow or
	// failing delivery must never delay or fail ticket creation.
	s.notifyDetached(updated, result.SelectedEngineer, analysis)

	return updated, nil
}

// Get returns a request by id.
func (s *AssignmentService) Get(ctx context.Context, id string) (*domain.Request, error) {
	return s.requests.GetByID(ctx, id)
}

// List returns requests matching the filter.
func (s *AssignmentService) List(ctx context.Context, filter repository.RequestFilter) ([]domain.Request, error) {
	return s.requests.List(ctx, filter)
}

// Last returns the most recently submitted request.
func (s *AssignmentService) Last(ctx context.Context) (*domain.Request, error) {
	return s.requests.Last(ctx)
}

// Reassign moves a request to the given engineer and forces its status to
// assigned. Legal from any non-terminal state. Notification is synchronous
// but failure-tolerant.
func (s *AssignmentService) Reassign(ctx context.Context, requestID, engineerID string) (*domain.Request, *string, error) {
	if requestID == "" || engineerID == "" {
		return nil, nil, apperrors.NewValidationError("requestId and engineerId are required", nil)
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if request.Status.IsTerminal() {
		return nil, nil, apperrors.NewInvalidState("request is in a terminal state",
			map[string]any{"request_id": requestID, "status": request.Status})
	}

	oldAssignee := request.AssignedTo
	updated, err := s.requests.Update(ctx, requestID, func(r *domain.Request) {
		r.AssignedTo = &engineerID
		r.Status = domain.RequestStatusAssigned
	})
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	s.logger.Info("request reassigned",
		zap.String("request_id", requestID),
		zap.String("engineer", engineerID))
	s.publishEvent(events.EventRequestAssigned, requestID, "admin", events.RequestAssignedPayload{
		AssignedTo:     engineerID,
		OldAssignee:    oldAssignee,
		AssignmentType: updated.AssignmentType,
	})
	s.notifyResolved(ctx, updated, engineerID, updated.AIAnalysis)

	return updated, oldAssignee, nil
}

// ManualAssign assigns an engineer with manual provenance, preserving any
// prior scoring analysis under an overridden marker.
func (s *AssignmentService) ManualAssign(ctx context.Context, requestID, engineerID, changeNotes string) (*domain.Request, *string, error) {
	if requestID == "" || engineerID == "" {
		return nil, nil, apperrors.NewValidationError("requestId and engineerId are required", nil)
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if request.Status.IsTerminal() {
		return nil, nil, apperrors.NewInvalidState("request is in a terminal state",
			map[string]any{"request_id": requestID, "status": request.Status})
	}

	if changeNotes == "" {
		changeNotes = "Manually assigned by admin"
	}

	oldAssignee := request.AssignedTo
	now := time.Now().UTC()
	updated, err := s.requests.Update(ctx, requestID, func(r *domain.Request) {
		r.AssignedTo = &engineerID
		r.Status = domain.RequestStatusAssigned
		r.AssignmentType = domain.AssignmentTypeManual
		r.AssignmentNotes = changeNotes
		if r.AIAnalysis != nil {
			r.AIAnalysis.Overridden = true
			r.AIAnalysis.OverriddenBy = "admin"
			r.AIAnalysis.OverriddenAt = &now
		}
	})
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	s.logger.Info("request manually assigned",
		zap.String("request_id", requestID),
		zap.String("engineer", engineerID))
	s.publishEvent(events.EventRequestAssigned, requestID, "admin", events.RequestAssignedPayload{
		AssignedTo:     engineerID,
		OldAssignee:    oldAssignee,
		AssignmentType: domain.AssignmentTypeManual,
	})
	s.notifyResolved(ctx, updated, engineerID, updated.AIAnalysis)

	return updated, oldAssignee, nil
}

// AssignSingleAI asks the gateway for an assignment on one existing
// request. Gateway unavailability surfaces to the caller so the admin UI
// can retry.
func (s *AssignmentService) AssignSingleAI(ctx context.Context, requestID string) (*domain.Request, error) {
	if requestID == "" {
		return nil, apperrors.NewValidationError("requestId is required", nil)
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status.IsTerminal() {
		return nil, apperrors.NewInvalidState("request is in a terminal state",
			map[string]any{"request_id": requestID, "status": request.Status})
	}

	result, err := s.gateway.AssignOne(ctx, ticketText(request), request.ServiceTitle,
		string(request.Urgency), s.scoringCfg.SingleTimeout())
	if err != nil {
		return nil, err
	}

	analysis := analysisFromResult(result)
	updated, err := s.requests.Update(ctx, requestID, func(r *domain.Request) {
		r.AssignedTo = &result.SelectedEngineer
		r.Status = domain.RequestStatusAssigned
		r.AssignmentType = domain.AssignmentTypeAI
		r.AIAnalysis = analysis
		r.Candidates = candidatesFromResult(result)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("request assigned by scoring service",
		zap.String("request_id", requestID),
		zap.String("engineer", result.SelectedEngineer))
	s.publishEvent(events.EventRequestAssigned, requestID, "ai", events.RequestAssignedPayload{
		AssignedTo:     result.SelectedEngineer,
		AssignmentType: domain.AssignmentTypeAI,
		Score:          result.AssignmentScore,
	})

	return updated, nil
}

// BatchCandidate is one caller-supplied request considered for batch
// recommendation.
type BatchCandidate struct {
	ID           string
	ServiceTitle string
	Description  string
	Urgency      string
	AssignedTo   string
	Status       string
}

// BatchRecommendOutput aggregates assignments and delivery outcomes.
type BatchRecommendOutput struct {
	Assignments    []scoring.BatchAssignment
	TotalProcessed int
	TotalRequests  int
	Outcomes       []notification.Outcome
}

// RecommendBatch filters candidates to unassigned or open requests, obtains
// recommendations from the gateway, applies each assignment to the store
// and drives paced batch notification. An empty candidate set returns an
// empty result without a gateway round-trip.
func (s *AssignmentService) RecommendBatch(ctx context.Context, candidates []BatchCandidate, apply bool) (*BatchRecommendOutput, error) {
	unassigned := make([]BatchCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.AssignedTo == "" || candidate.Status == string(domain.RequestStatusOpen) {
			unassigned = append(unassigned, candidate)
		}
	}
	if len(unassigned) == 0 {
		return &BatchRecommendOutput{Assignments: []scoring.BatchAssignment{}}, nil
	}

	tickets := make([]scoring.BatchTicket, 0, len(unassigned))
	for _, candidate := range unassigned {
		text := candidate.Description
		if text == "" {
			text = candidate.ServiceTitle
		}
		requestType := candidate.ServiceTitle
		if requestType == "" {
			requestType = "General Request"
		}
		tickets = append(tickets, scoring.BatchTicket{
			ID:          candidate.ID,
			TicketText:  text,
			RequestType: requestType,
			Urgency:     candidate.Urgency,
		})
	}

	recommendation, err := s.gateway.RecommendBatch(ctx, tickets, apply)
	if err != nil {
		return nil, err
	}

	s.logger.Info("batch recommendation received",
		zap.Int("assignments", len(recommendation.Assignments)),
		zap.Int("requested", len(tickets)))

	requestsByID := make(map[string]*domain.Request, len(recommendation.Assignments))
	items := make([]notification.BatchItem, 0, len(recommendation.Assignments))
	for _, assignment := range recommendation.Assignments {
		analysis := analysisFromBatch(assignment)

		engineer := assignment.EngineerID
		updated, updateErr := s.requests.Update(ctx, assignment.RequestID, func(r *domain.Request) {
			r.AssignedTo = &engineer
			r.Status = domain.RequestStatusAssigned
			r.AssignmentType = domain.AssignmentTypeAI
			r.AIAnalysis = analysis
		})
		if updateErr != nil {
			// caller-supplied ids may not exist in this store; the
			// assignment is still reported, only the local write is skipped
			s.logger.Warn("batch assignment for unknown request",
				zap.String("request_id", assignment.RequestID))
		} else {
			requestsByID[assignment.RequestID] = updated
			s.publishEvent(events.EventRequestAssigned, assignment.RequestID, "ai", events.RequestAssignedPayload{
				AssignedTo:     assignment.EngineerID,
				AssignmentType: domain.AssignmentTypeAI,
				Score:          assignment.Score,
			})
		}

		items = append(items, notification.BatchItem{
			RequestID:  assignment.RequestID,
			EngineerID: assignment.EngineerID,
			Analysis:   analysis,
		})
	}

	outcomes := s.notifier.NotifyBatch(ctx, items, requestsByID)

	return &BatchRecommendOutput{
		Assignments:    recommendation.Assignments,
		TotalProcessed: recommendation.TotalProcessed,
		TotalRequests:  recommendation.TotalRequests,
		Outcomes:       outcomes,
	}, nil
}

// Complete moves a request to the completed terminal state. Legal from
// assigned or open only.
func (s *AssignmentService) Complete(ctx context.Context, requestID, notes string) (*domain.Request, error) {
	if requestID == "" {
		return nil, apperrors.NewValidationError("requestId is required", nil)
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(request.Status, domain.RequestStatusCompleted) {
		return nil, apperrors.NewInvalidState("request cannot be completed from its current status",
			map[string]any{"request_id": requestID, "status": request.Status})
	}

	now := time.Now().UTC()
	updated, err := s.requests.Update(ctx, requestID, func(r *domain.Request) {
		r.Status = domain.RequestStatusCompleted
		r.CompletedAt = &now
		r.CompletionNotes = notes
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("request completed", zap.String("request_id", requestID))
	s.publishEvent(events.EventRequestCompleted, requestID, "admin", events.RequestCompletedPayload{
		Notes: notes,
	})
	return updated, nil
}

// Delete logically removes a request: a terminal status transition with
// reason metadata, never a physical removal.
func (s *AssignmentService) Delete(ctx context.Context, requestID, reason, rejectionNotes string) (*domain.Request, error) {
	if requestID == "" {
		return nil, apperrors.NewValidationError("requestId is required", nil)
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status.IsTerminal() {
		return nil, apperrors.NewInvalidState("request is in a terminal state",
			map[string]any{"request_id": requestID, "status": request.Status})
	}

	if reason == "" {
		reason = "No reason provided"
	}
	now := time.Now().UTC()
	updated, err := s.requests.Update(ctx, requestID, func(r *domain.Request) {
		r.Status = domain.RequestStatusDeleted
		r.DeletedAt = &now
		r.DeletionReason = reason
		r.RejectionNotes = rejectionNotes
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("request deleted",
		zap.String("request_id", requestID),
		zap.String("reason", reason))
	s.publishEvent(events.EventRequestDeleted, requestID, "admin", events.RequestDeletedPayload{
		Reason:         reason,
		RejectionNotes: rejectionNotes,
	})
	return updated, nil
}

// CatalogUpdateInput describes a service catalog edit. Description uses a
// pointer so an explicit empty string clears the field.
type CatalogUpdateInput struct {
	ServiceTitle string
	ServiceID    string
	Description  *string
	ChangeNotes  string
}

// UpdateCatalog amends catalog fields on a request regardless of status,
// appending one immutable change history entry.
func (s *AssignmentService) UpdateCatalog(ctx context.Context, requestID string, input CatalogUpdateInput) (*domain.Request, domain.CatalogFields, error) {
	if requestID == "" {
		return nil, domain.CatalogFields{}, apperrors.NewValidationError("requestId is required", nil)
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, domain.CatalogFields{}, err
	}

	oldValues := domain.CatalogFields{
		ServiceTitle: request.ServiceTitle,
		ServiceID:    request.ServiceID,
		Description:  request.Description,
	}
	notes := input.ChangeNotes
	if notes == "" {
		notes = "Service catalog updated from admin dashboard"
	}

	updated, err := s.requests.Update(ctx, requestID, func(r *domain.Request) {
		if input.ServiceTitle != "" {
			r.ServiceTitle = input.ServiceTitle
		}
		if input.ServiceID != "" {
			r.ServiceID = input.ServiceID
		}
		if input.Description != nil {
			r.Description = *input.Description
		}
		r.ChangeHistory = append(r.ChangeHistory, domain.ChangeEntry{
			Timestamp: time.Now().UTC(),
			ChangedBy: "admin",
			OldValues: oldValues,
			NewValues: domain.CatalogFields{
				ServiceTitle: r.ServiceTitle,
				ServiceID:    r.ServiceID,
				Description:  r.Description,
			},
			Notes: notes,
		})
	})
	if err != nil {
		return nil, domain.CatalogFields{}, apperrors.MapError(err)
	}

	s.logger.Info("service catalog updated",
		zap.String("request_id", requestID),
		zap.String("service_title", updated.ServiceTitle))
	s.publishEvent(events.EventCatalogUpdated, requestID, "admin", events.CatalogUpdatedPayload{
		OldValues: oldValues,
		NewValues: domain.CatalogFields{
			ServiceTitle: updated.ServiceTitle,
			ServiceID:    updated.ServiceID,
			Description:  updated.Description,
		},
		Notes: notes,
	})
	return updated, oldValues, nil
}

// notifyDetached fires a notification on its own goroutine with an error
// boundary; nothing propagates back to the request path.
func (s *AssignmentService) notifyDetached(request *domain.Request, engineerID string, analysis *domain.AIAnalysis) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in detached notification", zap.Any("panic", r))
			}
		}()
		s.notifyResolved(context.Background(), request, engineerID, analysis)
	}()
}

// notifyResolved resolves the engineer and attempts delivery; an
// unresolvable engineer or failed delivery is logged, never raised.
func (s *AssignmentService) notifyResolved(ctx context.Context, request *domain.Request, engineerID string, analysis *domain.AIAnalysis) {
	engineer, ok := s.directory.Resolve(engineerID)
	if !ok {
		s.logger.Warn("engineer not found for notification",
			zap.String("request_id", request.ID),
			zap.String("engineer_id", engineerID))
		return
	}
	outcome := s.notifier.NotifyOne(ctx, request, engineer, analysis)
	if !outcome.Success {
		s.logger.Warn("assignment notification failed",
			zap.String("request_id", request.ID),
			zap.String("engineer", engineer.Name),
			zap.String("failure", outcome.FailureKind),
			zap.String("error", outcome.Error))
	}
}

func (s *AssignmentService) publishEvent(eventType events.EventType, requestID, actor string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(context.Background(), events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		RequestID: requestID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}

func ticketText(request *domain.Request) string {
	if request.Description != "" {
		return request.Description
	}
	return request.ServiceTitle
}

func analysisFromResult(result *scoring.AssignmentResult) *domain.AIAnalysis {
	analysis := &domain.AIAnalysis{
		AssignmentScore: result.AssignmentScore,
		Reason:          result.Reason,
	}
	if result.CRIAnalysis != nil {
		analysis.CRI = &domain.CRIAnalysis{
			CRINormalized: result.CRIAnalysis.CRINormalized,
			RiskLevel:     result.CRIAnalysis.RiskLevel,
		}
	}
	if result.TSMAnalysis != nil {
		analysis.TSM = &domain.TSMAnalysis{
			TSMScore: result.TSMAnalysis.TSMScore,
		}
	}
	return analysis
}

func candidatesFromResult(result *scoring.AssignmentResult) []domain.Candidate {
	if len(result.TopCandidates) == 0 {
		return nil
	}
	candidates := make([]domain.Candidate, 0, len(result.TopCandidates))
	for _, candidate := range result.TopCandidates {
		candidates = append(candidates, domain.Candidate{
			Engineer: candidate.Engineer,
			TSMScore: candidate.TSMScore,
		})
	}
	return candidates
}

func analysisFromBatch(assignment scoring.BatchAssignment) *domain.AIAnalysis {
	analysis := &domain.AIAnalysis{
		AssignmentScore: assignment.Score,
		Reason:          assignment.Reason,
	}
	if assignment.CRI != 0 || assignment.RiskLevel != "" {
		analysis.CRI = &domain.CRIAnalysis{
			CRINormalized: assignment.CRI,
			RiskLevel:     assignment.RiskLevel,
		}
	}
	if assignment.TSMScore != 0 {
		analysis.TSM = &domain.TSMAnalysis{
			TSMScore: assignment.TSMScore,
		}
	}
	return analysis
}
