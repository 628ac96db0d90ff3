package notification

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/dispatch-service/internal/config"
	"github.com/spec-kit/dispatch-service/internal/directory"
	"github.com/spec-kit/dispatch-service/internal/domain"
	"github.com/spec-kit/dispatch-service/internal/observability"
)

// Failure kinds carried on outcomes. Delivery problems never propagate as
// errors to the caller; they are always reported through Outcome values.
const (
	FailureNone             = ""
	FailureNoRecipient      = "NO_RECIPIENT"
	FailureInvalidRecipient = "INVALID_RECIPIENT"
	FailureTransport        = "TRANSPORT_FAILED"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Outcome reports one delivery attempt.
type Outcome struct {
	RequestID         string `json:"requestId,omitempty"`
	EngineerID        string `json:"engineerId,omitempty"`
	Success           bool   `json:"success"`
	MessageID         string `json:"messageId,omitempty"`
	FailureKind       string `json:"failureKind,omitempty"`
	Error             string `json:"error,omitempty"`
	Recipient         string `json:"recipient,omitempty"`
	OriginalRecipient string `json:"originalRecipient,omitempty"`
}

// BatchItem is one assignment to notify in a batch run.
type BatchItem struct {
	RequestID  string
	EngineerID string
	Analysis   *domain.AIAnalysis
}

// Service resolves recipients and drives best-effort delivery.
type Service struct {
	transport Transport
	directory directory.Directory
	logger    *zap.Logger
	metrics   *observability.Metrics
	cfg       config.NotificationConfig
}

// NewService creates the notification dispatcher.
func NewService(transport Transport, dir directory.Directory, logger *zap.Logger, metrics *observability.Metrics, cfg config.NotificationConfig) *Service {
	return &Service{
		transport: transport,
		directory: dir,
		logger:    logger,
		metrics:   metrics,
		cfg:       cfg,
	}
}

// NotifyOne attempts delivery of an assignment notification to one
// engineer. Every failure is returned as an outcome value, never an error.
func (s *Service) NotifyOne(ctx context.Context, request *domain.Request, engineer *domain.Engineer, analysis *domain.AIAnalysis) Outcome {
	outcome := Outcome{
		RequestID:  request.ID,
		EngineerID: engineer.Name,
	}

	recipient := strings.TrimSpace(engineer.Email)
	outcome.OriginalRecipient = recipient

	if s.cfg.TestMode {
		redirect := s.cfg.TestRecipient
		if redirect == "" {
			redirect = s.cfg.FromAddress
		}
		if recipient != "" && recipient != redirect {
			s.logger.Info("test mode: redirecting notification",
				zap.String("original", recipient),
				zap.String("redirect", redirect))
		}
		recipient = redirect
	}

	if recipient == "" {
		outcome.FailureKind = FailureNoRecipient
		outcome.Error = "no valid email recipient"
		s.metrics.RecordNotification(false)
		s.logger.Warn("no recipient for engineer", zap.String("engineer", engineer.Name))
		return outcome
	}
	if !emailPattern.MatchString(recipient) {
		outcome.FailureKind = FailureInvalidRecipient
		outcome.Error = fmt.Sprintf("invalid email format: %s", recipient)
		s.metrics.RecordNotification(false)
		return outcome
	}
	outcome.Recipient = recipient

	msg := s.renderAssignment(request, engineer, analysis)
	msg.To = recipient

	messageID, err := s.transport.Send(ctx, msg)
	if err != nil {
		outcome.FailureKind = FailureTransport
		outcome.Error = err.Error()
		s.metrics.RecordNotification(false)
		s.logger.Error("notification delivery failed",
			zap.String("request_id", request.ID),
			zap.String("engineer", engineer.Name),
			zap.Error(err))
		return outcome
	}

	outcome.Success = true
	outcome.MessageID = messageID
	s.metrics.RecordNotification(true)
	return outcome
}

// NotifyBatch delivers notifications for assignments in order, skipping
// items whose request or engineer cannot be resolved, with a fixed pacing
// delay between consecutive attempts.
func (s *Service) NotifyBatch(ctx context.Context, items []BatchItem, requestsByID map[string]*domain.Request) []Outcome {
	outcomes := make([]Outcome, 0, len(items))

	for i, item := range items {
		request, ok := requestsByID[item.RequestID]
		if !ok {
			s.logger.Warn("skipping batch notification: unknown request",
				zap.String("request_id", item.RequestID))
			continue
		}
		engineer, ok := s.directory.Resolve(item.EngineerID)
		if !ok {
			s.logger.Warn("skipping batch notification: unknown engineer",
				zap.String("request_id", item.RequestID),
				zap.String("engineer_id", item.EngineerID))
			continue
		}

		if i > 0 && s.cfg.BatchDelay() > 0 {
			select {
			case <-time.After(s.cfg.BatchDelay()):
			case <-ctx.Done():
				return outcomes
			}
		}

		outcome := s.NotifyOne(ctx, request, engineer, item.Analysis)
		outcome.EngineerID = item.EngineerID
		outcomes = append(outcomes, outcome)
	}

	success := 0
	for _, o := range outcomes {
		if o.Success {
			success++
		}
	}
	s.logger.Info("batch notification complete",
		zap.Int("sent", success),
		zap.Int("total", len(outcomes)))
	return outcomes
}

func (s *Service) renderAssignment(request *domain.Request, engineer *domain.Engineer, analysis *domain.AIAnalysis) Message {
	subject := fmt.Sprintf("%s - %s - %s has been assigned to you",
		s.cfg.FromName, request.ServiceTitle, request.ID)

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", engineer.Name)
	fmt.Fprintf(&b, "Task ID #: %s\n", request.ID)
	fmt.Fprintf(&b, "Summary: %s\n", request.ServiceTitle)
	fmt.Fprintf(&b, "Service: %s\n", request.ServiceID)
	fmt.Fprintf(&b, "Assigned To: %s\n\n", engineer.Name)
	fmt.Fprintf(&b, "Description:\n%s\n", request.Description)
	if request.Requestor != "" {
		fmt.Fprintf(&b, "\nRequestor: %s\n", request.Requestor)
	}
	if request.Branch != "" {
		fmt.Fprintf(&b, "Branch: %s\n", request.Branch)
	}
	if analysis != nil {
		fmt.Fprintf(&b, "\nAssignment Score: %.1f%%\n", analysis.AssignmentScore*100)
		if analysis.CRI != nil {
			fmt.Fprintf(&b, "Risk Level: %s\n", analysis.CRI.RiskLevel)
			fmt.Fprintf(&b, "Complexity: %.1f%%\n", analysis.CRI.CRINormalized*100)
		}
		if analysis.TSM != nil {
			fmt.Fprintf(&b, "Skill Match: %.1f%%\n", analysis.TSM.TSMScore*100)
		}
		if analysis.Reason != "" {
			fmt.Fprintf(&b, "Reason: %s\n", analysis.Reason)
		}
	}

	priority := "normal"
	if request.Urgency == domain.UrgencyHigh {
		priority = "high"
	}

	return Message{
		From:     s.cfg.FromAddress,
		FromName: s.cfg.FromName,
		ReplyTo:  s.cfg.ReplyTo,
		Subject:  subject,
		Text:     b.String(),
		Priority: priority,
	}
}
