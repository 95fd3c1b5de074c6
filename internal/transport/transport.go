package transport

import (
	"net/http"

	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers собирает все обработчики HTTP API
type Handlers struct {
	Location *LocationHandler
	Booking  *BookingHandler
	Payment  *PaymentHandler
	Feedback *FeedbackHandler
	User     *UserHandler
	Users    middleware.UserProvider
}

func InitRoutes(h *Handlers) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(30))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Registration is the only route without identity
	router.POST("/api/v1/users/register", h.User.RegisterUser)

	// API routes
	api := router.Group("/api/v1")
	api.Use(middleware.Identity(h.Users))
	{
		api.GET("/profile", h.User.GetProfile)

		// Location routes
		locations := api.Group("/locations")
		{
			locations.GET("", h.Location.GetAllLocations)
			locations.GET("/:id", h.Location.GetLocation)
		}

		// Booking routes
		bookings := api.Group("/bookings")
		{
			bookings.POST("", h.Booking.CreateBooking)
			bookings.GET("", h.Booking.GetMyBookings)
			bookings.POST("/:id/cancel", h.Booking.CancelBooking)
			bookings.POST("/:id/complete", h.Booking.CompleteBooking)
			bookings.GET("/:id/feedback", h.Feedback.GetFeedback)
		}

		// Payment routes
		payments := api.Group("/payments")
		{
			payments.POST("", h.Payment.ProcessPayment)
			payments.GET("/summary", h.Payment.GetPaymentSummary)
			payments.GET("/history", h.Payment.GetPaymentHistory)
		}

		// Feedback routes
		api.POST("/feedback", h.Feedback.SubmitFeedback)

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.AdminOnly())
		{
			admin.GET("/dashboard", h.Booking.GetDashboard)
			admin.GET("/bookings", h.Booking.GetAllBookings)
			admin.POST("/bookings/:id/cancel", h.Booking.AdminCancelBooking)

			admin.POST("/locations", h.Location.CreateLocation)
			admin.PUT("/locations/:id", h.Location.UpdateLocation)
			admin.DELETE("/locations/:id", h.Location.DeleteLocation)

			admin.GET("/feedback", h.Feedback.GetAllFeedback)
			admin.GET("/feedback/stats", h.Feedback.GetFeedbackStats)
		}
	}

	return router
}
