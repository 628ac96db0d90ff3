package handlers

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dispatch-service/internal/api/dto"
	"github.com/spec-kit/dispatch-service/internal/directory"
	apperrors "github.com/spec-kit/dispatch-service/pkg/util"
)

// EmployeesHandler exposes the read-only engineer directory.
type EmployeesHandler struct {
	directory directory.Directory
}

// NewEmployeesHandler constructs handler.
func NewEmployeesHandler(dir directory.Directory) *EmployeesHandler {
	return &EmployeesHandler{directory: dir}
}

// List GET /api/employees.
func (h *EmployeesHandler) List(c *fiber.Ctx) error {
	filter := directory.Filter{
		Unit:       c.Query("unit"),
		Attendance: c.Query("attendance"),
	}
	if years := parseOptionalInt(c.Query("years")); years != nil {
		filter.Years = years
	}
	if minYears := parseOptionalInt(c.Query("min_years")); minYears != nil {
		filter.MinYears = minYears
	}
	if maxYears := parseOptionalInt(c.Query("max_years")); maxYears != nil {
		filter.MaxYears = maxYears
	}

	engineers := h.directory.List(filter)
	return c.JSON(fiber.Map{
		"status":    "success",
		"count":     len(engineers),
		"employees": dto.FromEngineers(engineers),
	})
}

// GetByID GET /api/employees/:id.
func (h *EmployeesHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return apperrors.NewValidationError("employee id must be numeric", nil)
	}
	engineer, err := h.directory.GetByID(id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status":   "success",
		"employee": dto.FromEngineer(engineer),
	})
}

// GetByName GET /api/employees/by-name/:name.
func (h *EmployeesHandler) GetByName(c *fiber.Ctx) error {
	name, err := url.QueryUnescape(c.Params("name"))
	if err != nil || name == "" {
		return apperrors.NewValidationError("invalid name parameter", nil)
	}
	engineer, err := h.directory.GetByName(name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status":   "success",
		"employee": dto.FromEngineer(engineer),
	})
}

// UnitsGroup GET /api/units/group.
func (h *EmployeesHandler) UnitsGroup(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "success",
		"units":  h.directory.GroupByUnit(),
	})
}

func parseOptionalInt(val string) *int {
	if val == "" {
		return nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return nil
	}
	return &parsed
}
