package models

import "time"

// Booking statuses. Completed and cancelled are terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Payment statuses.
const (
	PaymentPending           = "pending"
	PaymentPaid              = "paid"
	PaymentRefunded          = "refunded"
	PaymentPartiallyRefunded = "partially_refunded"
	PaymentFailed            = "failed"
)

// AuditEntry is one record in a booking's append-only audit log.
type AuditEntry struct {
	At     time.Time `bson:"at" json:"at"`
	Actor  string    `bson:"actor" json:"actor"` // user ID or "system"
	Action string    `bson:"action" json:"action"`
	Detail string    `bson:"detail,omitempty" json:"detail,omitempty"`
}

// Booking represents a customer's reservation of a service offering.
type Booking struct {
	ID         string `bson:"id" json:"id"`
	CustomerID string `bson:"customer_id" json:"customer_id"`
	ProviderID string `bson:"provider_id" json:"provider_id"`
	ServiceID  string `bson:"service_id" json:"service_id"`
	OfferingID string `bson:"offering_id" json:"offering_id"`

	Date      string `bson:"date" json:"date"`             // "2006-01-02"
	StartTime string `bson:"start_time" json:"start_time"` // "HH:MM"
	EndTime   string `bson:"end_time" json:"end_time"`     // derived at creation, never edited

	Status        string     `bson:"status" json:"status"`
	PaymentStatus string     `bson:"payment_status" json:"payment_status"`
	PaymentMethod string     `bson:"payment_method,omitempty" json:"payment_method,omitempty"`
	PaymentRef    string     `bson:"payment_ref,omitempty" json:"payment_ref,omitempty"`
	PaidAt        *time.Time `bson:"paid_at,omitempty" json:"paid_at,omitempty"`

	// TotalPrice is a snapshot of the offering price at creation time.
	// Later offering price changes never touch it.
	TotalPrice float64 `bson:"total_price" json:"total_price"`

	CustomerNotes string       `bson:"customer_notes,omitempty" json:"customer_notes,omitempty"`
	AuditLog      []AuditEntry `bson:"audit_log,omitempty" json:"audit_log,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Blocks reports whether the booking reserves its time range: cancelled and
// completed bookings free their slots.
func (b *Booking) Blocks() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanTransitionTo reports whether the status state machine allows moving the
// booking to target.
func (b *Booking) CanTransitionTo(target string) bool {
	switch target {
	case StatusConfirmed:
		return b.Status == StatusPending
	case StatusCompleted, StatusCancelled:
		return b.Status == StatusPending || b.Status == StatusConfirmed
	default:
		return false
	}
}
