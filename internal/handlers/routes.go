package handlers

import "github.com/gofiber/fiber/v2"

// RegisterRoutes mounts every route the service exposes.
func RegisterRoutes(app *fiber.App, analyze *AnalyzeHandler, system *SystemHandler) {
	app.Get("/", system.HandleRoot)

	api := app.Group("/api/resume")
	api.Get("/health", system.HandleHealth)
	api.Post("/analyze", analyze.HandleAnalyze)
}
