package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/atlas-backend/internal/http/response"
	"github.com/yungbote/atlas-backend/internal/services"
)

type StatsHandler struct {
	stats services.StatsService
}

func NewStatsHandler(stats services.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// GET /stats
func (h *StatsHandler) Summary(c *gin.Context) {
	out, err := h.stats.Summary(c.Request.Context())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, out)
}
