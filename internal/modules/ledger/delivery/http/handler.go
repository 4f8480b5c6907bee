package http

import (
	"net/http"
	"strconv"

	ledgerService "anoa.com/momentum/internal/modules/ledger/service"
	"anoa.com/momentum/pkg/response"
	"github.com/gin-gonic/gin"
)

type LedgerHandler struct {
	service ledgerService.Ledger
}

func NewLedgerHandler(service ledgerService.Ledger) *LedgerHandler {
	return &LedgerHandler{service: service}
}

func (h *LedgerHandler) Balance(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	balance, err := h.service.Balance(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

func (h *LedgerHandler) History(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	history, err := h.service.History(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": history})
}

func (h *LedgerHandler) Badges(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	badges, err := h.service.Badges(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"badges": badges})
}
