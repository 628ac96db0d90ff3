package repository

import (
	"context"

	"github.com/spec-kit/dispatch-service/internal/domain"
)

// RequestFilter captures list query parameters.
type RequestFilter struct {
	Status     *domain.RequestStatus
	AssignedTo *string
	Urgency    *domain.RequestUrgency
}

// RequestDraft carries the caller-supplied fields of a new request; the
// store assigns identity, status and timestamps.
type RequestDraft struct {
	ServiceID    string
	ServiceTitle string
	Description  string
	Requestor    string
	NIP          string
	Branch       string
	Unit         string
	Urgency      domain.RequestUrgency
	CreatedAt    string
}

// RequestRepository is the single source of truth for request lifecycle
// state. Implementations must serialize mutations per request id: an
// Update mutator runs atomically, with no partial write visible to
// concurrent readers.
type RequestRepository interface {
	Create(ctx context.Context, draft RequestDraft) (*domain.Request, error)
	GetByID(ctx context.Context, id string) (*domain.Request, error)
	List(ctx context.Context, filter RequestFilter) ([]domain.Request, error)
	Update(ctx context.Context, id string, mutate func(*domain.Request)) (*domain.Request, error)
	Last(ctx context.Context) (*domain.Request, error)
}
