package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dispatch-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Requests  *handlers.RequestsHandler
	Employees *handlers.EmployeesHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Banner)

	api := app.Group("/api")

	api.Post("/submit-request", cfg.Requests.Submit)
	api.Get("/requests", cfg.Requests.List)
	api.Get("/requests/:id", cfg.Requests.Get)
	api.Post("/reassign", cfg.Requests.Reassign)
	api.Post("/manual-assignment", cfg.Requests.ManualAssignment)
	api.Post("/ai/assign-single", cfg.Requests.AssignSingle)
	api.Post("/ai/recommend", cfg.Requests.Recommend)
	api.Post("/complete-request", cfg.Requests.Complete)
	api.Post("/delete-request", cfg.Requests.Delete)
	api.Post("/update-servicecatalog", cfg.Requests.UpdateCatalog)
	api.Get("/debug/last-request", cfg.Requests.LastRequest)

	api.Get("/employees", cfg.Employees.List)
	api.Get("/employees/by-name/:name", cfg.Employees.GetByName)
	api.Get("/employees/:id", cfg.Employees.GetByID)
	api.Get("/units/group", cfg.Employees.UnitsGroup)
}
