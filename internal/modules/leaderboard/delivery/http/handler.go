package http

import (
	"net/http"
	"strconv"

	leaderboardService "anoa.com/momentum/internal/modules/leaderboard/service"
	"anoa.com/momentum/pkg/response"
	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	service leaderboardService.LeaderboardService
}

func NewLeaderboardHandler(service leaderboardService.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	lbType := c.DefaultQuery("type", leaderboardService.TypePoints)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	entries, err := h.service.GetLeaderboard(c.Request.Context(), lbType, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"type": lbType, "data": entries})
}

func (h *LeaderboardHandler) GetMyRank(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	lbType := c.DefaultQuery("type", leaderboardService.TypePoints)

	standing, err := h.service.GetUserRank(c.Request.Context(), lbType, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, standing)
}
