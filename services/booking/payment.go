package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	bookingRepo "handyhub/database/repository/booking"
	userRepo "handyhub/database/repository/user"
	"handyhub/models"
	"handyhub/services/notification"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// ErrBadWebhookPayload marks webhook deliveries that must be rejected with a
// 400-equivalent: signature verification failures and unparseable bodies.
var ErrBadWebhookPayload = errors.New("invalid webhook payload")

// PaymentReconciler manages payment_status transitions and applies provider
// confirmations idempotently, whether they arrive from the client or from a
// webhook.
type PaymentReconciler interface {
	ConfirmPayment(ctx context.Context, bookingID string, actor Actor, method, providerRef string) (*models.Booking, error)
	MarkPaid(ctx context.Context, bookingID, method, providerRef string) (*models.Booking, error)
	Refund(ctx context.Context, bookingID string, actor Actor) (*models.Booking, error)
	CreateIntent(ctx context.Context, bookingID, customerID string) (*stripe.PaymentIntent, error)
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error
	PaymentsForCustomer(ctx context.Context, customerID string) ([]models.Booking, error)
}

// DefaultPaymentReconciler is the production implementation.
type DefaultPaymentReconciler struct {
	Bookings bookingRepo.BookingRepository
	Users    userRepo.UserRepository
	Notifier notification.Notifier
	Logger   *zap.Logger

	// WebhookSecret verifies Stripe signatures; empty skips verification
	// (development only).
	WebhookSecret string
	Currency      string
}

// MinorUnits converts a decimal amount to integer minor units (cents),
// rounding half away from zero. Exact for 2-decimal prices.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// ConfirmPayment is the client-facing path: only the booking's customer (or
// an admin) may report a payment. The webhook path stays actor-less because
// the provider signature already authenticates it.
func (pr *DefaultPaymentReconciler) ConfirmPayment(ctx context.Context, bookingID string, actor Actor, method, providerRef string) (*models.Booking, error) {
	booking, err := pr.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && actor.ID != booking.CustomerID {
		return nil, &AuthorizationError{Message: "you are not allowed to pay for this booking"}
	}
	return pr.MarkPaid(ctx, bookingID, method, providerRef)
}

// MarkPaid is no-op-safe: a booking that is already paid is returned
// unchanged and no side effects fire again.
func (pr *DefaultPaymentReconciler) MarkPaid(ctx context.Context, bookingID, method, providerRef string) (*models.Booking, error) {
	entry := models.AuditEntry{
		At:     time.Now(),
		Actor:  "system",
		Action: "paid",
		Detail: fmt.Sprintf("payment received via %s (%s)", method, providerRef),
	}

	booking, applied, err := pr.Bookings.MarkPaid(ctx, bookingID, method, providerRef, time.Now(), entry)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Already paid: idempotent success, no notification re-dispatch.
		return booking, nil
	}

	if pr.Notifier != nil {
		pr.Notifier.PaymentReceived(ctx, booking)
	}
	return booking, nil
}

func (pr *DefaultPaymentReconciler) Refund(ctx context.Context, bookingID string, actor Actor) (*models.Booking, error) {
	booking, err := pr.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && actor.ID != booking.CustomerID {
		return nil, &AuthorizationError{Message: "you are not allowed to refund this booking"}
	}
	if booking.PaymentStatus != models.PaymentPaid {
		return nil, &InvalidStateError{Message: "no payment to refund"}
	}

	entry := models.AuditEntry{
		At:     time.Now(),
		Actor:  actor.ID,
		Action: "refunded",
		Detail: fmt.Sprintf("refund of $%.2f triggered", booking.TotalPrice),
	}
	updated, err := pr.Bookings.SetPaymentStatus(ctx, bookingID, models.PaymentPaid, models.PaymentRefunded, entry)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNoMatch) {
			return nil, &InvalidStateError{Message: "no payment to refund"}
		}
		return nil, fmt.Errorf("error refunding booking: %w", err)
	}
	return updated, nil
}

// CreateIntent creates a Stripe PaymentIntent for the booking total; the
// booking ID travels in the intent metadata so the webhook can reconcile it.
func (pr *DefaultPaymentReconciler) CreateIntent(ctx context.Context, bookingID, customerID string) (*stripe.PaymentIntent, error) {
	booking, err := pr.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID != customerID {
		return nil, &AuthorizationError{Message: "you are not allowed to pay for this booking"}
	}
	if booking.PaymentStatus == models.PaymentPaid {
		return nil, &InvalidStateError{Message: "booking is already paid"}
	}

	currency := pr.Currency
	if currency == "" {
		currency = "usd"
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(MinorUnits(booking.TotalPrice)),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("booking_id", booking.ID)

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, &PaymentProviderError{Message: "failed to create payment intent", Err: err}
	}
	return intent, nil
}

// HandleWebhook verifies and applies a provider event. Only signature
// failures and unparseable payloads return an error (a 400-equivalent);
// unknown event types are acknowledged without state change.
func (pr *DefaultPaymentReconciler) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	var event stripe.Event
	if pr.WebhookSecret != "" {
		verified, err := webhook.ConstructEvent(payload, sigHeader, pr.WebhookSecret)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadWebhookPayload, err)
		}
		event = verified
	} else if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrBadWebhookPayload, err)
	}

	if event.Type != "payment_intent.succeeded" {
		return nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return fmt.Errorf("%w: %v", ErrBadWebhookPayload, err)
	}
	bookingID := intent.Metadata["booking_id"]
	if bookingID == "" {
		return nil
	}

	if _, err := pr.MarkPaid(ctx, bookingID, "stripe", intent.ID); err != nil {
		// A failed apply is logged and acknowledged; returning an error here
		// would trigger provider retry storms for conditions a retry cannot
		// fix (e.g. the booking no longer exists).
		if pr.Logger != nil {
			pr.Logger.Error("webhook payment apply failed",
				zap.String("bookingID", bookingID), zap.Error(err))
		}
	}
	return nil
}

func (pr *DefaultPaymentReconciler) PaymentsForCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	return pr.Bookings.ListPaymentsByCustomer(ctx, customerID)
}
