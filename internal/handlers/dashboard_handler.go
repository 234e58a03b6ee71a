package handlers

import (
	"whutmovie/internal/middleware"
	"whutmovie/internal/services"
	"whutmovie/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type DashboardHandler struct {
	service services.DashboardService
	logger  *logrus.Logger
}

func NewDashboardHandler(service services.DashboardService, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{service: service, logger: logger}
}

// GetDashboardStats godoc
// @Summary Admin dashboard
// @Description Catalog totals and the categories still missing ranked picks
// @Tags admin
// @Produce json
// @Success 200 {object} utils.SuccessBody
// @Failure 401 {object} utils.ErrorBody
// @Router /admin/dashboard [get]
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		return respondError(c, h.logger, err, "Failed to load dashboard")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, stats)
}

// AdminHome serves the /admin page load for a signed-in admin.
func (h *DashboardHandler) AdminHome(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		return respondError(c, h.logger, err, "Failed to load dashboard")
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"admin": middleware.CurrentPrincipal(c),
		"stats": stats,
	})
}
