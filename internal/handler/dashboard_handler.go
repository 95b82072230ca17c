package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/credilocker/credilocker-api/internal/service"
	"github.com/credilocker/credilocker-api/pkg/response"
)

// DashboardHandler exposes the teacher landing-page aggregates.
type DashboardHandler struct {
	dashboard *service.DashboardService
	metrics   *service.MetricsService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService, metrics *service.MetricsService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, metrics: metrics}
}

// Summary godoc
// @Summary Get per-class dashboard
// @Tags Dashboard
// @Produce json
// @Param class query string true "Class code"
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, fromCache, err := h.dashboard.Summary(c.Request.Context(), c.Query("class"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil, map[string]interface{}{"from_cache": fromCache})
}

// Invalidate godoc
// @Summary Drop cached dashboards
// @Tags Dashboard
// @Produce json
// @Param class query string false "Class code; empty drops every class"
// @Success 204
// @Router /dashboard/cache [delete]
func (h *DashboardHandler) Invalidate(c *gin.Context) {
	h.dashboard.Invalidate(c.Request.Context(), c.Query("class"))
	response.NoContent(c)
}

// SystemMetrics godoc
// @Summary Get aggregated runtime metrics
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/metrics [get]
func (h *DashboardHandler) SystemMetrics(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}
