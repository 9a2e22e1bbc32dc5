package handlers

import (
	"net/http"

	"handyhub/middleware"
	"handyhub/models"
	"handyhub/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler serves the slot query, booking creation and lifecycle
// transition endpoints.
type BookingHandler struct {
	Scheduler booking.SchedulingEngine
	Lifecycle booking.LifecycleManager
	Logger    *zap.Logger
}

func NewBookingHandler(scheduler booking.SchedulingEngine, lifecycle booking.LifecycleManager, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Scheduler: scheduler, Lifecycle: lifecycle, Logger: logger}
}

func actorFrom(c *gin.Context) (booking.Actor, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return booking.Actor{}, false
	}
	return booking.Actor{ID: user.ID, IsProvider: user.IsProvider, IsAdmin: user.IsAdmin}, true
}

// GetAvailableSlots returns the availability grid for a service and date.
func (h *BookingHandler) GetAvailableSlots(c *gin.Context) {
	serviceID := c.Param("id")
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "Validation failed",
			"errors":  gin.H{"date": "date query parameter is required"},
		})
		return
	}

	slots, err := h.Scheduler.AvailableSlots(c.Request.Context(), serviceID, date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SlotsResponse{
		ServiceID: serviceID,
		Date:      date,
		Slots:     slots,
	})
}

// CreateBooking books a slot for the authenticated customer.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
		return
	}

	var input models.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Validation failed", "errors": gin.H{"body": err.Error()}})
		return
	}

	created, err := h.Lifecycle.CreateBooking(c.Request.Context(), user.ID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.BookingResponse{
		Booking:    created,
		EndTime:    created.EndTime,
		TotalPrice: created.TotalPrice,
	})
}

func (h *BookingHandler) transition(c *gin.Context, target, reason string) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
		return
	}

	updated, err := h.Lifecycle.Transition(c.Request.Context(), c.Param("id"), actor, target, reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": updated})
}

// ConfirmBooking moves a pending booking to confirmed.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	h.transition(c, models.StatusConfirmed, "")
}

// CompleteBooking marks a booking as completed.
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	h.transition(c, models.StatusCompleted, "")
}

// CancelBooking cancels a booking with an optional reason.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	var input models.CancelBookingInput
	// The body is optional for cancellation.
	_ = c.ShouldBindJSON(&input)
	h.transition(c, models.StatusCancelled, input.Reason)
}

// AddNotes appends a vendor note to the booking's audit log.
func (h *BookingHandler) AddNotes(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
		return
	}

	var input models.BookingNotesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Validation failed", "errors": gin.H{"notes": "notes are required"}})
		return
	}

	updated, err := h.Lifecycle.AddVendorNote(c.Request.Context(), c.Param("id"), actor, input.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": updated})
}

// ListMyBookings returns the authenticated customer's booking history.
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
		return
	}

	bookings, err := h.Lifecycle.ListForCustomer(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}
