package transport

import (
	"net/http"
	"strconv"

	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/service"
	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	bookingService service.BookingService
}

func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateBookingRequest представляет запрос на бронирование места
type CreateBookingRequest struct {
	LocationID int64 `json:"location_id" binding:"required"`
}

// CreateBooking бронирует одно место на выбранной парковке
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "Invalid request body: " + err.Error()})
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), user.ID, req.LocationID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, "Booking created successfully", booking)
}

// GetMyBookings возвращает бронирования текущего пользователя
func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	user := middleware.CurrentUser(c)

	bookings, err := h.bookingService.GetUserBookings(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Bookings retrieved successfully", bookings)
}

// CancelBooking отменяет активное бронирование текущего пользователя
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "Invalid booking ID"})
		return
	}

	user := middleware.CurrentUser(c)

	booking, err := h.bookingService.CancelBooking(c.Request.Context(), bookingID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Booking cancelled successfully", booking)
}

// CompleteBooking завершает активное бронирование текущего пользователя
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "Invalid booking ID"})
		return
	}

	user := middleware.CurrentUser(c)

	booking, err := h.bookingService.CompleteBooking(c.Request.Context(), bookingID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Booking completed successfully", booking)
}

// GetAllBookings возвращает все бронирования (админ)
func (h *BookingHandler) GetAllBookings(c *gin.Context) {
	bookings, err := h.bookingService.GetAllBookings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Bookings retrieved successfully", bookings)
}

// AdminCancelBooking отменяет любое бронирование без штрафа (админ)
func (h *BookingHandler) AdminCancelBooking(c *gin.Context) {
	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "Invalid booking ID"})
		return
	}

	booking, err := h.bookingService.AdminCancelBooking(c.Request.Context(), bookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Booking cancelled by admin", booking)
}

// GetDashboard возвращает сводку для административной панели (админ)
func (h *BookingHandler) GetDashboard(c *gin.Context) {
	stats, err := h.bookingService.GetDashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Dashboard stats retrieved successfully", stats)
}

func parseIDParam(c *gin.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
