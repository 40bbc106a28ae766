package engine

import "github.com/gofiber/fiber/v2"

func RegisterContentRoutes(app *fiber.App, h *Handler) {
	api := app.Group("/api")

	api.Get("/:kind/:slug", h.List)
	api.Get("/:kind/:slug/:id", h.GetByID)
}
