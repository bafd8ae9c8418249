package handlers

import (
	"assetdesk/internal/core/services"
	"assetdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AnalyticsHandler handles dashboard analytics endpoints
type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// ItemsPerRange returns item creation counts over a time window
// @Summary Items created per range
// @Description Zero-filled item creation counts per day (week/month) or per month (year)
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param range query string false "week, month or year" default(month)
// @Success 200 {object} response.Response
// @Router /analytics/items [get]
func (h *AnalyticsHandler) ItemsPerRange(c *fiber.Ctx) error {
	rng := c.Query("range", services.RangeMonth)

	buckets, err := h.analyticsService.ItemsPerRange(c.Context(), rng)
	if err != nil {
		return response.InternalServerError(c, "Failed to load item analytics")
	}

	return response.Success(c, "Item analytics retrieved", buckets)
}

// UserStats returns user growth and borrower activity series
// @Summary User statistics
// @Description Total users, registrations per day and distinct borrowers per day
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /analytics/users [get]
func (h *AnalyticsHandler) UserStats(c *fiber.Ctx) error {
	stats, err := h.analyticsService.GetUserStats(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load user statistics")
	}

	return response.Success(c, "User statistics retrieved", stats)
}

// TopBorrowers returns the monthly top-borrower ranking
// @Summary Top borrowers
// @Description Five heaviest borrowers grouped by calendar month
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /analytics/top-borrowers [get]
func (h *AnalyticsHandler) TopBorrowers(c *fiber.Ctx) error {
	borrowers, err := h.analyticsService.GetTopBorrowers(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load top borrowers")
	}

	return response.Success(c, "Top borrowers retrieved", borrowers)
}
