package notification

import (
	"context"

	"handyhub/models"
)

// Notifier fans booking lifecycle events out to in-app notifications, email
// and push. Delivery is best-effort: implementations own their own timeouts
// and failure handling, and callers never block on delivery success.
type Notifier interface {
	BookingCreated(ctx context.Context, booking *models.Booking)
	StatusChanged(ctx context.Context, booking *models.Booking, oldStatus, newStatus string)
	PaymentReceived(ctx context.Context, booking *models.Booking)
}
