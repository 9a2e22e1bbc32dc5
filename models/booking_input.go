package models

// CreateBookingInput is the request body for creating a booking.
type CreateBookingInput struct {
	ServiceID     string `json:"service_id" binding:"required"`
	OfferingID    string `json:"offering_id" binding:"required"`
	Date          string `json:"date" binding:"required"`       // "2006-01-02"
	StartTime     string `json:"start_time" binding:"required"` // "HH:MM"
	FullName      string `json:"full_name" binding:"required,max=255"`
	Email         string `json:"email" binding:"required,email,max=255"`
	Phone         string `json:"phone" binding:"required,max=20"`
	CustomerNotes string `json:"customer_notes" binding:"max=1000"`
}

// CancelBookingInput carries the optional cancellation reason.
type CancelBookingInput struct {
	Reason string `json:"reason" binding:"max=500"`
}

// BookingNotesInput is the request body for appending a vendor note.
type BookingNotesInput struct {
	Notes string `json:"notes" binding:"required,max=2000"`
}

// ConfirmPaymentInput is the request body for the direct payment confirmation
// path.
type ConfirmPaymentInput struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
	PaymentRef    string `json:"payment_ref"`
}

// BusinessHourInput is one weekday window in a vendor's hours update.
type BusinessHourInput struct {
	DayOfWeek int    `json:"day_of_week" binding:"min=0,max=6"`
	TimeFrom  string `json:"time_from" binding:"required"`
	TimeTo    string `json:"time_to" binding:"required"`
}

// BookingResponse echoes the fields computed at creation time.
type BookingResponse struct {
	Booking    *Booking `json:"booking"`
	EndTime    string   `json:"end_time"`
	TotalPrice float64  `json:"total_price"`
}
