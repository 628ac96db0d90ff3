package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dispatch-service/internal/api/dto"
	"github.com/spec-kit/dispatch-service/internal/domain"
	"github.com/spec-kit/dispatch-service/internal/repository"
	"github.com/spec-kit/dispatch-service/internal/service"
	apperrors "github.com/spec-kit/dispatch-service/pkg/util"
)

// RequestsHandler exposes the request lifecycle endpoints.
type RequestsHandler struct {
	service *service.AssignmentService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(assignmentService *service.AssignmentService) *RequestsHandler {
	return &RequestsHandler{service: assignmentService}
}

// Submit POST /api/submit-request.
func (h *RequestsHandler) Submit(c *fiber.Ctx) error {
	var body dto.SubmitRequestBody
	if err := c.BodyParser(&body); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	request, err := h.service.Submit(c.UserContext(), service.SubmitInput{
		ServiceID:    body.ServiceID,
		ServiceTitle: body.ServiceTitle,
		Requestor:    body.Requestor,
		NIP:          body.NIP,
		Branch:       body.Branch,
		Unit:         body.Unit,
		Urgency:      body.Urgency,
		Description:  body.Description,
		CreatedAt:    body.CreatedAt,
	})
	if err != nil {
		return err
	}

	message := "Request submitted, awaiting assignment"
	if request.Status == domain.RequestStatusAssigned && request.AssignedTo != nil {
		message = fmt.Sprintf("Request submitted and assigned to %s", *request.AssignedTo)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": message,
		"request": dto.FromRequest(request),
	})
}

// List GET /api/requests.
func (h *RequestsHandler) List(c *fiber.Ctx) error {
	filter := repository.RequestFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.RequestStatus(statusStr)
		filter.Status = &status
	}
	if assignedTo := c.Query("assignedTo"); assignedTo != "" {
		filter.AssignedTo = &assignedTo
	}
	if urgencyStr := c.Query("urgency"); urgencyStr != "" {
		urgency := domain.NormalizeUrgency(urgencyStr)
		filter.Urgency = &urgency
	}

	requests, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status":   "success",
		"count":    len(requests),
		"requests": dto.FromRequests(requests),
	})
}

// Get GET /api/requests/:id.
func (h *RequestsHandler) Get(c *fiber.Ctx) error {
	request, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"request": dto.FromRequest(request),
	})
}

// Reassign POST /api/reassign.
func (h *RequestsHandler) Reassign(c *fiber.Ctx) error {
	var body dto.ReassignBody
	if err := c.BodyParser(&body); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	request, oldAssignee, err := h.service.Reassign(c.UserContext(), body.RequestID, body.EngineerID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status":      "success",
		"message":     "Request reassigned successfully",
		"request":     dto.FromRequest(request),
		"oldAssignee": oldAssignee,
	})
}

// ManualAssignment POST /api/manual-assignment.
func (h *RequestsHandler) ManualAssignment(c *fiber.Ctx) error {
	var body dto.ManualAssignmentBody
	if err := c.BodyParser(&body); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	request, oldAssignee, err := h.service.ManualAssign(c.UserContext(), body.RequestID, body.EngineerID, body.ChangeNotes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status":      "success",
		"message":     "Request manually assigned",
		"request":     dto.FromRequest(request),
		"oldAssignee": oldAssignee,
	})
}

// AssignSingle POST /api/ai/assign-single.
func (h *RequestsHandler) AssignSingle(c *fiber.Ctx) error {
	var body dto.AssignSingleBody
	if err := c.BodyParser(&body); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	request, err := h.service.AssignSingleAI(c.UserContext(), body.RequestID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Request assigned successfully",
		"request": dto.FromRequest(request),
	})
}

// Recommend POST /api/ai/recommend.
func (h *RequestsHandler) Recommend(c *fiber.Ctx) error {
	var body dto.RecommendBatchBody
	if err := c.BodyParser(&body); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	candidates := make([]service.BatchCandidate, 0, len(body.Requests))
	for _, item := range body.Requests {
		candidates = append(candidates, service.BatchCandidate{
			ID:           item.ID,
			ServiceTitle: item.ServiceTitle,
			Description:  item.Description,
			Urgency:      item.Urgency,
			AssignedTo:   item.AssignedTo,
			Status:       item.Status,
		})
	}

	output, err := h.service.RecommendBatch(c.UserContext(), candidates, body.Apply)
	if err != nil {
		return err
	}

	emailsSent := 0
	for _, outcome := range output.Outcomes {
		if outcome.Success {
			emailsSent++
		}
	}
	return c.JSON(fiber.Map{
		"status":         "success",
		"assignments":    output.Assignments,
		"totalProcessed": output.TotalProcessed,
		"totalRequests":  output.TotalRequests,
		"emailsSent":     emailsSent,
		"emailResults":   output.Outcomes,
	})
}

// Complete POST /api/complete-request.
func (h *RequestsHandler) Complete(c *fiber.Ctx) error {
	var body dto.CompleteRequestBody
	if err := c.BodyParser(&body); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	request, err := h.service.Complete(c.UserContext(), body.RequestID, body.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Request completed successfully",
		"request": dto.FromRequest(request),
	})
}

// Delete POST /api/delete-request.
func (h *RequestsHandler) Delete(c *fiber.Ctx) error {
	var body dto.DeleteRequestBody
	if err := c.BodyParser(&body); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	request, err := h.service.Delete(c.UserContext(), body.RequestID, body.Reason, body.RejectionNotes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Request deleted successfully",
		"request": dto.FromRequest(request),
	})
}

// UpdateCatalog POST /api/update-servicecatalog.
func (h *RequestsHandler) UpdateCatalog(c *fiber.Ctx) error {
	var body dto.UpdateCatalogBody
	if err := c.BodyParser(&body); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	request, oldValues, err := h.service.UpdateCatalog(c.UserContext(), body.RequestID, service.CatalogUpdateInput{
		ServiceTitle: body.ServiceTitle,
		ServiceID:    body.ServiceID,
		Description:  body.Description,
		ChangeNotes:  body.ChangeNotes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status":    "success",
		"message":   "Service catalog updated successfully",
		"request":   dto.FromRequest(request),
		"oldValues": oldValues,
	})
}

// LastRequest GET /api/debug/last-request.
func (h *RequestsHandler) LastRequest(c *fiber.Ctx) error {
	request, err := h.service.Last(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"request": dto.FromRequest(request),
	})
}
