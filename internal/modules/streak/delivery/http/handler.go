package http

import (
	"net/http"

	streakService "anoa.com/momentum/internal/modules/streak/service"
	"anoa.com/momentum/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StreakHandler struct {
	service streakService.Streaks
}

func NewStreakHandler(service streakService.Streaks) *StreakHandler {
	return &StreakHandler{service: service}
}

// GetMyStreak returns the caller's streak stats with 30 days of history.
func (h *StreakHandler) GetMyStreak(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetUserStreak returns another user's streak stats.
func (h *StreakHandler) GetUserStreak(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
