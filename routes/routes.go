package routes

import (
	"net/http"
	"time"

	userRepo "handyhub/database/repository/user"
	"handyhub/handlers"
	"handyhub/middleware"
	"handyhub/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle collects the handlers and the repositories middleware needs.
type HandlerBundle struct {
	UserRepo userRepo.UserRepository

	Booking      *handlers.BookingHandler
	Vendor       *handlers.VendorHandler
	Payment      *handlers.PaymentHandler
	Notification *handlers.NotificationHandler
}

// RegisterServiceRoutes registers the public service availability endpoints.
func RegisterServiceRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/services")
	{
		api.GET("/:id/slots", hb.Booking.GetAvailableSlots)
	}
}

// RegisterBookingRoutes sets up the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.POST("", hb.Booking.CreateBooking)
		api.GET("", hb.Booking.ListMyBookings)
		api.POST("/:id/confirm", hb.Booking.ConfirmBooking)
		api.POST("/:id/complete", hb.Booking.CompleteBooking)
		api.POST("/:id/cancel", hb.Booking.CancelBooking)
		api.POST("/:id/notes", hb.Booking.AddNotes)
	}
}

// RegisterVendorRoutes sets up the vendor dashboard endpoints.
func RegisterVendorRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/vendor")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.Use(middleware.RequireVendor())
		api.GET("/bookings", hb.Vendor.ListBookings)
		api.GET("/calendar", hb.Vendor.Calendar)
		api.PUT("/services/:id/hours", hb.Vendor.SetBusinessHours)
	}
}

// RegisterPaymentRoutes sets up payment history and the provider webhook.
// The webhook is unauthenticated; it is verified by signature instead.
func RegisterPaymentRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.POST("/api/webhooks/stripe", hb.Payment.StripeWebhook)

	api := r.Group("/api/payments")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.GET("", hb.Payment.History)
		api.POST("/:id/confirm", hb.Payment.ConfirmPayment)
		api.POST("/:id/intent", hb.Payment.CreateIntent)
		api.POST("/:id/refund", hb.Payment.Refund)
	}
}

// RegisterNotificationRoutes sets up the in-app notification feed.
func RegisterNotificationRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/notifications")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.GET("", hb.Notification.List)
		api.GET("/unread-count", hb.Notification.UnreadCount)
		api.POST("/read", hb.Notification.MarkAllRead)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"message":      "Hi, I'm HandyHub",
			"dependencies": utils.GetHealthStatus(),
		})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterServiceRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterVendorRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterNotificationRoutes(r, hb)
}
