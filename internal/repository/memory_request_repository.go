package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spec-kit/dispatch-service/internal/domain"
	apperrors "github.com/spec-kit/dispatch-service/pkg/util"
)

// memoryRequestRepository keeps all requests in process memory. The id
// counter and last-submitted pointer are owned here; nothing outside the
// store touches them.
type memoryRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]*domain.Request
	order    []string
	counter  int
	lastID   string
}

// NewMemoryRequestRepository instantiates the in-memory store.
func NewMemoryRequestRepository() RequestRepository {
	return &memoryRequestRepository{
		requests: make(map[string]*domain.Request),
	}
}

// snapshotRequest deep-copies a stored request. Returned snapshots must not
// alias store state: a later mutator runs against the stored pointers, and a
// shared AIAnalysis or slice backing array would leak that write into values
// already handed to concurrent readers.
func snapshotRequest(r *domain.Request) *domain.Request {
	snapshot := *r
	if r.AssignedTo != nil {
		assignee := *r.AssignedTo
		snapshot.AssignedTo = &assignee
	}
	if r.AIAnalysis != nil {
		analysis := *r.AIAnalysis
		if r.AIAnalysis.CRI != nil {
			cri := *r.AIAnalysis.CRI
			analysis.CRI = &cri
		}
		if r.AIAnalysis.TSM != nil {
			tsm := *r.AIAnalysis.TSM
			analysis.TSM = &tsm
		}
		if r.AIAnalysis.OverriddenAt != nil {
			at := *r.AIAnalysis.OverriddenAt
			analysis.OverriddenAt = &at
		}
		snapshot.AIAnalysis = &analysis
	}
	if r.Candidates != nil {
		snapshot.Candidates = append([]domain.Candidate(nil), r.Candidates...)
	}
	if r.ChangeHistory != nil {
		snapshot.ChangeHistory = append([]domain.ChangeEntry(nil), r.ChangeHistory...)
	}
	if r.CompletedAt != nil {
		at := *r.CompletedAt
		snapshot.CompletedAt = &at
	}
	if r.DeletedAt != nil {
		at := *r.DeletedAt
		snapshot.DeletedAt = &at
	}
	return &snapshot
}

func (r *memoryRequestRepository) Create(ctx context.Context, draft RequestDraft) (*domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counter++
	now := time.Now().UTC()
	createdAt := now
	if draft.CreatedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, draft.CreatedAt); err == nil {
			createdAt = parsed
		}
	}

	serviceID := draft.ServiceID
	if serviceID == "" {
		serviceID = "general"
	}
	urgency := draft.Urgency
	if urgency == "" {
		urgency = domain.UrgencyMedium
	}

	request := &domain.Request{
		ID:           fmt.Sprintf("req_%d", r.counter),
		ServiceID:    serviceID,
		ServiceTitle: draft.ServiceTitle,
		Description:  draft.Description,
		Requestor:    draft.Requestor,
		NIP:          draft.NIP,
		Branch:       draft.Branch,
		Unit:         draft.Unit,
		Urgency:      urgency,
		Status:       domain.RequestStatusProcessing,
		CreatedAt:    createdAt,
		UpdatedAt:    now,
	}

	r.requests[request.ID] = request
	r.order = append(r.order, request.ID)
	r.lastID = request.ID

	return snapshotRequest(request), nil
}

func (r *memoryRequestRepository) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	request, ok := r.requests[id]
	if !ok {
		return nil, apperrors.NewNotFound("request", map[string]any{"request_id": id})
	}
	return snapshotRequest(request), nil
}

func (r *memoryRequestRepository) List(ctx context.Context, filter RequestFilter) ([]domain.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Request, 0, len(r.order))
	for _, id := range r.order {
		request := r.requests[id]
		if filter.Status != nil && request.Status != *filter.Status {
			continue
		}
		if filter.AssignedTo != nil {
			if request.AssignedTo == nil || *request.AssignedTo != *filter.AssignedTo {
				continue
			}
		}
		if filter.Urgency != nil && request.Urgency != *filter.Urgency {
			continue
		}
		result = append(result, *snapshotRequest(request))
	}
	return result, nil
}

func (r *memoryRequestRepository) Update(ctx context.Context, id string, mutate func(*domain.Request)) (*domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	request, ok := r.requests[id]
	if !ok {
		return nil, apperrors.NewNotFound("request", map[string]any{"request_id": id})
	}
	mutate(request)
	request.UpdatedAt = time.Now().UTC()

	return snapshotRequest(request), nil
}

func (r *memoryRequestRepository) Last(ctx context.Context) (*domain.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.lastID == "" {
		return nil, apperrors.NewNotFound("request", nil)
	}
	return snapshotRequest(r.requests[r.lastID]), nil
}
