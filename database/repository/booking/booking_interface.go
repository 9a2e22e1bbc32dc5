package bookingRepo

import (
	"context"
	"errors"
	"time"

	"handyhub/models"
)

var (
	// ErrNotFound is returned when a booking does not exist.
	ErrNotFound = errors.New("booking not found")
	// ErrSlotTaken is returned by CreateIfSlotFree when a blocking booking
	// already overlaps the requested interval.
	ErrSlotTaken = errors.New("slot already booked")
	// ErrNoMatch is returned by the compare-and-set updates when the booking
	// exists but its current state does not satisfy the update's predicate.
	ErrNoMatch = errors.New("booking state changed concurrently")
)

// ListFilter narrows vendor-facing booking queries.
type ListFilter struct {
	Status   string
	DateFrom string // inclusive, "2006-01-02"
	DateTo   string // inclusive
}

// BookingRepository owns all reads and writes of booking records. Writes
// that depend on the booking's current state are compare-and-set: the update
// only applies when the state predicate still holds at write time.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)

	// FindBlocking returns pending/confirmed bookings for a service on a
	// date, ordered by start time.
	FindBlocking(ctx context.Context, serviceID, date string) ([]models.Booking, error)

	// CreateIfSlotFree atomically re-checks the overlap invariant and
	// inserts the booking, returning ErrSlotTaken when a blocking booking
	// overlaps [StartTime, EndTime) on the same service and date.
	CreateIfSlotFree(ctx context.Context, booking *models.Booking) error

	// UpdateStatus moves a booking to a new status iff its current status is
	// one of from, appending the audit entry. Returns ErrNoMatch when the
	// booking's status changed under the caller.
	UpdateStatus(ctx context.Context, id string, from []string, to string, entry models.AuditEntry) (*models.Booking, error)

	// MarkPaid sets payment fields iff the booking is not already paid. The
	// bool reports whether the write was applied; false with a nil error
	// means the booking was already paid.
	MarkPaid(ctx context.Context, id, method, ref string, paidAt time.Time, entry models.AuditEntry) (*models.Booking, bool, error)

	// SetPaymentStatus moves payment_status from an expected value,
	// appending the audit entry. Returns ErrNoMatch on a lost race.
	SetPaymentStatus(ctx context.Context, id, from, to string, entry models.AuditEntry) (*models.Booking, error)

	// AppendAudit appends an entry to the booking's audit log.
	AppendAudit(ctx context.Context, id string, entry models.AuditEntry) (*models.Booking, error)

	ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error)
	ListByServices(ctx context.Context, serviceIDs []string, filter ListFilter) ([]models.Booking, error)
	ListPaymentsByCustomer(ctx context.Context, customerID string) ([]models.Booking, error)
}
