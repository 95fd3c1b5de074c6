package transport

import (
	"net/http"

	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/service"
	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	feedbackService service.FeedbackService
}

func NewFeedbackHandler(feedbackService service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// SubmitFeedback принимает отзыв на завершенное бронирование
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req service.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "Invalid request body: " + err.Error()})
		return
	}

	result, err := h.feedbackService.SubmitFeedback(c.Request.Context(), user.ID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, "Feedback submitted successfully", result)
}

// GetFeedback возвращает отзыв текущего пользователя по бронированию
func (h *FeedbackHandler) GetFeedback(c *gin.Context) {
	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "Invalid booking ID"})
		return
	}

	user := middleware.CurrentUser(c)

	info, err := h.feedbackService.GetFeedback(c.Request.Context(), bookingID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Feedback retrieved successfully", info)
}

// GetAllFeedback возвращает все отзывы (админ)
func (h *FeedbackHandler) GetAllFeedback(c *gin.Context) {
	rated, err := h.feedbackService.GetAllFeedback(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Feedback retrieved successfully", rated)
}

// GetFeedbackStats возвращает сводку по отзывам (админ)
func (h *FeedbackHandler) GetFeedbackStats(c *gin.Context) {
	stats, err := h.feedbackService.GetFeedbackStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Feedback stats retrieved successfully", stats)
}
