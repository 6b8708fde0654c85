package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-analyzer/internal/models"
)

// SystemHandler serves the service-info root and the health endpoint.
type SystemHandler struct {
	version          string
	geminiConfigured bool
}

func NewSystemHandler(version string, geminiConfigured bool) *SystemHandler {
	return &SystemHandler{
		version:          version,
		geminiConfigured: geminiConfigured,
	}
}

// HandleRoot describes the service and its endpoints.
func (h *SystemHandler) HandleRoot(c *fiber.Ctx) error {
	return c.JSON(models.ServiceInfo{
		Message: "AI Resume Analyzer API",
		Status:  "running",
		Version: h.version,
		Endpoints: map[string]string{
			"health":  "/api/resume/health",
			"analyze": "/api/resume/analyze (POST)",
		},
	})
}

// HandleHealth reports liveness. The service stays healthy without a Gemini
// key; the flag tells operators whether analyze requests can succeed.
func (h *SystemHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(models.HealthStatus{
		Status:           "healthy",
		Message:          "Resume Analyzer API is running!",
		GeminiConfigured: h.geminiConfigured,
	})
}
