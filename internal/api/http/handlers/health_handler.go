package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dispatch-service/internal/directory"
)

// HealthHandler serves the root service banner.
type HealthHandler struct {
	serviceName string
	version     string
	scoringURL  string
	directory   directory.Directory
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version, scoringURL string, dir directory.Directory) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, scoringURL: scoringURL, directory: dir}
}

// Banner GET / reports the service identity and collaborator summary.
func (h *HealthHandler) Banner(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":     "success",
		"service":    h.serviceName,
		"version":    h.version,
		"scoringUrl": h.scoringURL,
		"engineers":  h.directory.Size(),
	})
}
