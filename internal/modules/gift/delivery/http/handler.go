package http

import (
	"net/http"
	"strconv"

	giftDto "anoa.com/momentum/internal/modules/gift/dto"
	giftService "anoa.com/momentum/internal/modules/gift/service"
	"anoa.com/momentum/pkg/response"
	"anoa.com/momentum/pkg/validator"
	"github.com/gin-gonic/gin"
)

type GiftHandler struct {
	service giftService.Gifts
}

func NewGiftHandler(service giftService.Gifts) *GiftHandler {
	return &GiftHandler{service: service}
}

func (h *GiftHandler) Send(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req giftDto.SendGiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	gift, err := h.service.Send(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gift)
}

func (h *GiftHandler) Sent(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	gifts, err := h.service.Sent(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"gifts": gifts})
}

func (h *GiftHandler) Received(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	gifts, err := h.service.Received(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"gifts": gifts})
}

func (h *GiftHandler) AvailableBadges(c *gin.Context) {
	badges, err := h.service.AvailableBadges(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"badges": badges})
}
