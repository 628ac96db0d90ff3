package dto

import (
	"time"

	"github.com/spec-kit/dispatch-service/internal/domain"
)

// SubmitRequestBody is the POST /api/submit-request payload.
type SubmitRequestBody struct {
	ServiceID    string `json:"serviceId"`
	ServiceTitle string `json:"serviceTitle"`
	Requestor    string `json:"requestor"`
	NIP          string `json:"nip"`
	Branch       string `json:"branch"`
	Unit         string `json:"unit"`
	Urgency      string `json:"urgency"`
	Description  string `json:"description"`
	CreatedAt    string `json:"createdAt"`
}

// ReassignBody is the POST /api/reassign payload.
type ReassignBody struct {
	RequestID  string `json:"requestId"`
	EngineerID string `json:"engineerId"`
}

// ManualAssignmentBody is the POST /api/manual-assignment payload.
type ManualAssignmentBody struct {
	RequestID   string `json:"requestId"`
	EngineerID  string `json:"engineerId"`
	ChangeNotes string `json:"changeNotes"`
}

// AssignSingleBody is the POST /api/ai/assign-single payload.
type AssignSingleBody struct {
	RequestID string `json:"requestId"`
}

// RecommendBatchBody is the POST /api/ai/recommend payload. Requests are
// caller-supplied snapshots, not store lookups.
type RecommendBatchBody struct {
	Requests []RecommendBatchItem `json:"requests"`
	Apply    bool                 `json:"apply"`
}

// RecommendBatchItem is one candidate in a batch recommendation call.
type RecommendBatchItem struct {
	ID           string `json:"id"`
	ServiceTitle string `json:"serviceTitle"`
	Description  string `json:"description"`
	Urgency      string `json:"urgency"`
	AssignedTo   string `json:"assignedTo"`
	Status       string `json:"status"`
}

// CompleteRequestBody is the POST /api/complete-request payload.
type CompleteRequestBody struct {
	RequestID string `json:"requestId"`
	Notes     string `json:"notes"`
}

// DeleteRequestBody is the POST /api/delete-request payload.
type DeleteRequestBody struct {
	RequestID      string `json:"requestId"`
	Reason         string `json:"reason"`
	RejectionNotes string `json:"rejectionNotes"`
}

// UpdateCatalogBody is the POST /api/update-servicecatalog payload.
// Description is a pointer so an explicit empty string clears the field.
type UpdateCatalogBody struct {
	RequestID    string  `json:"requestId"`
	ServiceTitle string  `json:"serviceTitle"`
	ServiceID    string  `json:"serviceId"`
	Description  *string `json:"description"`
	ChangeNotes  string  `json:"changeNotes"`
}

// RequestResponse is the wire shape of a request.
type RequestResponse struct {
	ID              string                `json:"id"`
	ServiceID       string                `json:"serviceId"`
	ServiceTitle    string                `json:"serviceTitle"`
	Description     string                `json:"description"`
	Requestor       string                `json:"requestor"`
	NIP             string                `json:"nip,omitempty"`
	Branch          string                `json:"branch,omitempty"`
	Unit            string                `json:"unit,omitempty"`
	Urgency         string                `json:"urgency"`
	Status          string                `json:"status"`
	AssignedTo      *string               `json:"assignedTo"`
	AssignmentType  string                `json:"assignmentType,omitempty"`
	AssignmentNotes string                `json:"assignmentNotes,omitempty"`
	AIAnalysis      *domain.AIAnalysis    `json:"aiAnalysis,omitempty"`
	Candidates      []domain.Candidate    `json:"candidates,omitempty"`
	ChangeHistory   []domain.ChangeEntry  `json:"changeHistory,omitempty"`
	CompletionNotes string                `json:"completionNotes,omitempty"`
	DeletionReason  string                `json:"deletionReason,omitempty"`
	RejectionNotes  string                `json:"rejectionNotes,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
	CompletedAt     *time.Time            `json:"completedAt,omitempty"`
	DeletedAt       *time.Time            `json:"deletedAt,omitempty"`
}

// FromRequest maps a domain request to its wire shape.
func FromRequest(r *domain.Request) RequestResponse {
	return RequestResponse{
		ID:              r.ID,
		ServiceID:       r.ServiceID,
		ServiceTitle:    r.ServiceTitle,
		Description:     r.Description,
		Requestor:       r.Requestor,
		NIP:             r.NIP,
		Branch:          r.Branch,
		Unit:            r.Unit,
		Urgency:         string(r.Urgency),
		Status:          string(r.Status),
		AssignedTo:      r.AssignedTo,
		AssignmentType:  string(r.AssignmentType),
		AssignmentNotes: r.AssignmentNotes,
		AIAnalysis:      r.AIAnalysis,
		Candidates:      r.Candidates,
		ChangeHistory:   r.ChangeHistory,
		CompletionNotes: r.CompletionNotes,
		DeletionReason:  r.DeletionReason,
		RejectionNotes:  r.RejectionNotes,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		CompletedAt:     r.CompletedAt,
		DeletedAt:       r.DeletedAt,
	}
}

// FromRequests maps a slice of requests.
func FromRequests(requests []domain.Request) []RequestResponse {
	out := make([]RequestResponse, 0, len(requests))
	for i := range requests {
		out = append(out, FromRequest(&requests[i]))
	}
	return out
}
