package handler

import (
	"property-crm/internal/service"
	"property-crm/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, "Dashboard metrics retrieved successfully", h.analytics.Dashboard(c.UserContext()))
}
