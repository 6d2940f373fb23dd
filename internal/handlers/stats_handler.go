package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vectora/internal/middleware"
	"vectora/internal/services"
)

type StatsHandler struct {
	service services.StatsService
	log     *zap.Logger
}

func NewStatsHandler(service services.StatsService, log *zap.Logger) *StatsHandler {
	return &StatsHandler{service: service, log: log}
}

// Overview godoc
// @Summary      Task statistics
// @Description  Totals, completion rate and breakdowns by priority and category
// @Tags         Stats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.StatsOverview
// @Failure      401  {object}  map[string]string
// @Router       /api/stats/overview [get]
func (h *StatsHandler) Overview(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		middleware.Unauthorized(c)
		return
	}
	out, err := h.service.Overview(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.log, "stats overview", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Weekly godoc
// @Summary      Weekly activity
// @Description  Created and completed counts for the last seven days, today included
// @Tags         Stats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.WeeklyStats
// @Failure      401  {object}  map[string]string
// @Router       /api/stats/weekly [get]
func (h *StatsHandler) Weekly(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		middleware.Unauthorized(c)
		return
	}
	out, err := h.service.Weekly(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.log, "stats weekly", err)
		return
	}
	c.JSON(http.StatusOK, out)
}
