package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"anoa.com/momentum/internal/entity"
	counterService "anoa.com/momentum/internal/modules/counter/service"
	engineDto "anoa.com/momentum/internal/modules/engine/dto"
	engineService "anoa.com/momentum/internal/modules/engine/service"
	notifService "anoa.com/momentum/internal/modules/notification/service"
	streakService "anoa.com/momentum/internal/modules/streak/service"
	"anoa.com/momentum/pkg/apperror"
	"anoa.com/momentum/pkg/response"
	"anoa.com/momentum/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventHandler receives activity events and fans them out to the
// counters, the streak tracker and the achievement engine.
type EventHandler struct {
	engine   engineService.Engine
	counters counterService.Counters
	streaks  streakService.Streaks
	notifier notifService.NotificationService
}

func NewEventHandler(
	engine engineService.Engine,
	counters counterService.Counters,
	streaks streakService.Streaks,
	notifier notifService.NotificationService,
) *EventHandler {
	return &EventHandler{
		engine:   engine,
		counters: counters,
		streaks:  streaks,
		notifier: notifier,
	}
}

// PostCreated counts the post, advances the streak and evaluates both
// post and streak achievements.
func (h *EventHandler) PostCreated(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	ctx := c.Request.Context()

	if err := h.counters.RecordPost(ctx, userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	result, err := h.streaks.RecordActivity(ctx, userID, time.Now())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.engine.HandleEvent(ctx, userID, entity.EventPostCreated); err != nil {
		response.ResponseError(c, err)
		return
	}

	h.notifyMilestones(c, userID, result)

	c.JSON(http.StatusOK, gin.H{
		"message":        "event processed",
		"current_streak": result.Record.CurrentStreak,
		"new_milestones": result.NewMilestones,
	})
}

func (h *EventHandler) notifyMilestones(c *gin.Context, userID uuid.UUID, result *streakService.Result) {
	ctx := c.Request.Context()
	for _, m := range result.NewMilestones {
		data := map[string]interface{}{"milestone": m, "current_streak": result.Record.CurrentStreak}
		if err := h.notifier.Notify(ctx, userID, entity.NotifStreakMilestone,
			"Streak milestone!",
			fmt.Sprintf("🔥 %d days in a row — keep it going!", m),
			data, entity.PriorityHigh); err != nil {
			log.Printf("events: milestone notify %s: %v", userID, err)
		}
	}
}

// ReactionGiven credits the giver, and the receiver when the reaction is
// positive and not aimed at the giver's own content.
func (h *EventHandler) ReactionGiven(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req engineDto.ReactionEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	toUserID, err := uuid.Parse(req.ToUserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipient"})
		return
	}
	ctx := c.Request.Context()

	if err := h.counters.RecordReactionGiven(ctx, userID); err != nil {
		response.ResponseError(c, err)
		return
	}
	if err := h.engine.HandleEvent(ctx, userID, entity.EventReactionGiven); err != nil {
		response.ResponseError(c, err)
		return
	}

	if req.Polarity > 0 && toUserID != userID {
		if err := h.counters.RecordReactionReceived(ctx, toUserID); err != nil {
			response.ResponseError(c, err)
			return
		}
		if err := h.engine.HandleEvent(ctx, toUserID, entity.EventReactionReceived); err != nil {
			response.ResponseError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "event processed"})
}

func (h *EventHandler) CommentMade(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	ctx := c.Request.Context()

	if err := h.counters.RecordComment(ctx, userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.engine.HandleEvent(ctx, userID, entity.EventCommentMade); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "event processed"})
}

// AdminHandler exposes the administrative award and recalculation paths.
type AdminHandler struct {
	engine engineService.Engine
}

func NewAdminHandler(engine engineService.Engine) *AdminHandler {
	return &AdminHandler{engine: engine}
}

func (h *AdminHandler) ManualAward(c *gin.Context) {
	var req engineDto.ManualAwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	ua, err := h.engine.ManualAward(c.Request.Context(), userID, req.AchievementID)
	if err != nil {
		if errors.Is(err, apperror.ErrAlreadyCompleted) {
			c.JSON(http.StatusOK, gin.H{"message": "achievement already completed"})
			return
		}
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, ua)
}

func (h *AdminHandler) Recalculate(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.engine.RecalculateAll(c.Request.Context(), userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "recalculation complete"})
}
