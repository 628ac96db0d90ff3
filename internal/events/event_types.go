package events

import (
	"time"

	"github.com/spec-kit/dispatch-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestSubmitted EventType = "request_submitted"
	EventRequestAssigned  EventType = "request_assigned"
	EventRequestCompleted EventType = "request_completed"
	EventRequestDeleted   EventType = "request_deleted"
	EventCatalogUpdated   EventType = "catalog_updated"
)

// Event represents a lifecycle event emitted by the assignment service.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestSubmittedPayload payload.
type RequestSubmittedPayload struct {
	ServiceTitle string                `json:"service_title"`
	Requestor    string                `json:"requestor"`
	Urgency      domain.RequestUrgency `json:"urgency"`
	Status       domain.RequestStatus  `json:"status"`
}

// RequestAssignedPayload payload.
type RequestAssignedPayload struct {
	AssignedTo     string                `json:"assigned_to"`
	OldAssignee    *string               `json:"old_assignee,omitempty"`
	AssignmentType domain.AssignmentType `json:"assignment_type"`
	Score          float64               `json:"score,omitempty"`
}

// RequestCompletedPayload payload.
type RequestCompletedPayload struct {
	Notes string `json:"notes,omitempty"`
}

// RequestDeletedPayload payload.
type RequestDeletedPayload struct {
	Reason         string `json:"reason"`
	RejectionNotes string `json:"rejection_notes,omitempty"`
}

// CatalogUpdatedPayload payload.
type CatalogUpdatedPayload struct {
	OldValues domain.CatalogFields `json:"old_values"`
	NewValues domain.CatalogFields `json:"new_values"`
	Notes     string               `json:"notes,omitempty"`
}
