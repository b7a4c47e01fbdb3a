package handler

import (
	"github.com/bitfantasy/worktrack/internal/worktrack/service"
	"github.com/gin-gonic/gin"
)

// StatsHandler 仪表盘统计处理器
type StatsHandler struct {
	svc *service.StatsService
}

// NewStatsHandler 创建统计处理器
func NewStatsHandler(svc *service.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// Overview 仪表盘总览
// GET /api/v1/dashboard/stats
func (h *StatsHandler) Overview(c *gin.Context) {
	stats, err := h.svc.Overview(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, stats)
}
