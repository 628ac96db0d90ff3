package domain

import (
	"strings"
	"time"
)

// RequestStatus enumerates lifecycle states for service requests.
type RequestStatus string

const (
	RequestStatusProcessing RequestStatus = "processing"
	RequestStatusAssigned   RequestStatus = "assigned"
	RequestStatusOpen       RequestStatus = "open"
	RequestStatusCompleted  RequestStatus = "completed"
	RequestStatusDeleted    RequestStatus = "deleted"
)

// RequestUrgency enumerates urgency levels accepted on submission.
type RequestUrgency string

const (
	UrgencyLow    RequestUrgency = "low"
	UrgencyMedium RequestUrgency = "medium"
	UrgencyHigh   RequestUrgency = "high"
)

// AssignmentType records the provenance of the current assignment.
type AssignmentType string

const (
	AssignmentTypeNone   AssignmentType = ""
	AssignmentTypeAI     AssignmentType = "ai"
	AssignmentTypeManual AssignmentType = "manual"
)

// Request is the aggregate for a submitted service ticket. All mutation
// goes through the assignment service; the store only applies mutators.
type Request struct {
	ID              string
	ServiceID       string
	ServiceTitle    string
	Description     string
	Requestor       string
	NIP             string
	Branch          string
	Unit            string
	Urgency         RequestUrgency
	Status          RequestStatus
	AssignedTo      *string
	AssignmentType  AssignmentType
	AssignmentNotes string
	AIAnalysis      *AIAnalysis
	Candidates      []Candidate
	ChangeHistory   []ChangeEntry
	CompletionNotes string
	DeletionReason  string
	RejectionNotes  string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CompletedAt     *time.Time
	DeletedAt       *time.Time
}

// ChangeEntry is an immutable audit record of a catalog edit.
type ChangeEntry struct {
	Timestamp time.Time     `json:"timestamp"`
	ChangedBy string        `json:"changedBy"`
	OldValues CatalogFields `json:"oldValues"`
	NewValues CatalogFields `json:"newValues"`
	Notes     string        `json:"notes"`
}

// CatalogFields captures the editable service catalog fields of a request.
type CatalogFields struct {
	ServiceTitle string `json:"serviceTitle"`
	ServiceID    string `json:"serviceId"`
	Description  string `json:"description"`
}

var allowedTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusProcessing: {RequestStatusAssigned, RequestStatusOpen},
	RequestStatusOpen:       {RequestStatusAssigned, RequestStatusCompleted, RequestStatusDeleted},
	RequestStatusAssigned:   {RequestStatusAssigned, RequestStatusCompleted, RequestStatusDeleted},
	RequestStatusCompleted:  {},
	RequestStatusDeleted:    {},
}

// CanTransition reports whether moving from current to next is legal.
func CanTransition(current, next RequestStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are defined for status.
func (s RequestStatus) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}

// NormalizeUrgency maps free-form input to a canonical urgency, defaulting
// to medium.
func NormalizeUrgency(raw string) RequestUrgency {
	switch u := RequestUrgency(strings.ToLower(strings.TrimSpace(raw))); u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return u
	default:
		return UrgencyMedium
	}
}
