package handlers

import (
	"net/http"

	bookingRepo "handyhub/database/repository/booking"
	"handyhub/middleware"
	"handyhub/models"
	"handyhub/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VendorHandler serves the vendor-side booking dashboard, calendar and
// schedule management endpoints.
type VendorHandler struct {
	Vendor booking.VendorService
	Logger *zap.Logger
}

func NewVendorHandler(vendor booking.VendorService, logger *zap.Logger) *VendorHandler {
	return &VendorHandler{Vendor: vendor, Logger: logger}
}

// ListBookings returns the vendor's bookings with summary stats. Supports
// status, date_from and date_to query filters.
func (h *VendorHandler) ListBookings(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
		return
	}

	filter := bookingRepo.ListFilter{
		Status:   c.Query("status"),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
	}
	bookings, stats, err := h.Vendor.ListVendorBookings(c.Request.Context(), user.ID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "stats": stats})
}

// Calendar returns the vendor calendar for a view (today, day, week, month)
// anchored at an optional start_date.
func (h *VendorHandler) Calendar(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
		return
	}

	summary, err := h.Vendor.CalendarRange(c.Request.Context(), user.ID, c.Query("view"), c.Query("start_date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// SetBusinessHours replaces a service's weekly operating hours.
func (h *VendorHandler) SetBusinessHours(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
		return
	}

	var input struct {
		Hours []models.BusinessHourInput `json:"hours" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Validation failed", "errors": gin.H{"hours": "hours are required"}})
		return
	}

	rows, err := h.Vendor.SetBusinessHours(c.Request.Context(), actor, c.Param("id"), input.Hours)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"business_hours": rows})
}
