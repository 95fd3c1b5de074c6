package transport

import (
	"errors"
	"net/http"

	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/entity"

	"github.com/gin-gonic/gin"
)

// SuccessResponse представляет успешный ответ
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// statusForError maps domain sentinel errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, entity.ErrLocationNotFound),
		errors.Is(err, entity.ErrBookingNotFound),
		errors.Is(err, entity.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrNotBookingOwner):
		return http.StatusForbidden
	case errors.Is(err, entity.ErrNoFreeSpots),
		errors.Is(err, entity.ErrActiveBookingExists),
		errors.Is(err, entity.ErrBookingNotActive),
		errors.Is(err, entity.ErrLocationInUse),
		errors.Is(err, entity.ErrAlreadyRated),
		errors.Is(err, entity.ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, entity.ErrInvalidTotalSpot),
		errors.Is(err, entity.ErrInvalidRating),
		errors.Is(err, entity.ErrInvalidPaymentMethod),
		errors.Is(err, entity.ErrBookingNotCompleted),
		errors.Is(err, entity.ErrNoPaymentDue),
		errors.Is(err, entity.ErrInsufficientPoints):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusForError(err), ErrorResponse{
		Success: false,
		Error:   err.Error(),
	})
}

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func respondCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}
