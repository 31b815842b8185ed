package http

import (
	"net/http"

	"github.com/diillson/lavajato-api/internal/app/dashboard"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DashboardHandler atende /dashboard
type DashboardHandler struct {
	dashboard *dashboard.Service
	logger    *zap.Logger
}

func NewDashboardHandler(service *dashboard.Service, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: service, logger: logger}
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	u, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	stats, err := h.dashboard.Stats(c.Request.Context(), u, c.Query("period"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) RevenueChart(c *gin.Context) {
	u, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	months, err := intQuery(c, "months", 0)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	series, err := h.dashboard.RevenueChart(c.Request.Context(), u, months)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"months": len(series), "data": series})
}

func (h *DashboardHandler) StatusDistribution(c *gin.Context) {
	u, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	shares, err := h.dashboard.StatusDistribution(c.Request.Context(), u)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": shares})
}
