package handler

import (
	"stockly-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InsightsHandler struct {
	service service.InsightsService
}

func NewInsightsHandler(s service.InsightsService) *InsightsHandler {
	return &InsightsHandler{service: s}
}

// GetInsights returns the analytics snapshot of the full product
// collection, recomputed on every call.
// GET /insights
func (h *InsightsHandler) GetInsights(c *fiber.Ctx) error {
	snapshot, err := h.service.GetSnapshot()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to compute insights"})
	}

	return c.JSON(snapshot)
}
