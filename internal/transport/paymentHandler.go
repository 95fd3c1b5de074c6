package transport

import (
	"net/http"

	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/entity"
	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/service"
	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	settlementService service.SettlementService
}

func NewPaymentHandler(settlementService service.SettlementService) *PaymentHandler {
	return &PaymentHandler{settlementService: settlementService}
}

// ProcessPaymentRequest представляет запрос на оплату долга
type ProcessPaymentRequest struct {
	Method string `json:"method" binding:"required,oneof=cash points"`
}

// ProcessPayment проводит оплату всего накопленного долга пользователя
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "Invalid request body: " + err.Error()})
		return
	}

	result, err := h.settlementService.ProcessPayment(c.Request.Context(), user.ID, entity.PaymentMethod(req.Method))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Payment processed successfully", result)
}

// GetPaymentSummary возвращает текущий долг и баллы пользователя
func (h *PaymentHandler) GetPaymentSummary(c *gin.Context) {
	user := middleware.CurrentUser(c)

	summary, err := h.settlementService.GetPaymentSummary(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Payment summary retrieved successfully", summary)
}

// GetPaymentHistory возвращает журнал оплат пользователя
func (h *PaymentHandler) GetPaymentHistory(c *gin.Context) {
	user := middleware.CurrentUser(c)

	payments, err := h.settlementService.GetPaymentHistory(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Payment history retrieved successfully", payments)
}
