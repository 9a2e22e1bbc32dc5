package notification

import (
	"context"
	"fmt"
	"time"

	notificationRepo "handyhub/database/repository/notification"
	userRepo "handyhub/database/repository/user"
	"handyhub/models"
	"handyhub/utils"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// deliveryTimeout bounds every outbound delivery attempt so a slow mail
// relay or push gateway cannot back up the booking path.
const deliveryTimeout = 10 * time.Second

// DefaultNotifier is the production Notifier: it persists in-app rows for
// both parties, emails the affected users and pushes over FCM when tokens
// exist.
type DefaultNotifier struct {
	Users  userRepo.UserRepository
	Store  notificationRepo.NotificationRepository
	Mailer utils.Mailer
	FCM    *messaging.Client // optional
	Logger *zap.Logger
}

func (n *DefaultNotifier) BookingCreated(ctx context.Context, booking *models.Booking) {
	go n.deliver(booking, func(ctx context.Context, customer, provider *models.User) {
		n.record(ctx, booking.CustomerID, "booking", "Booking Received",
			fmt.Sprintf("Your booking on %s at %s has been received and is awaiting confirmation.", booking.Date, booking.StartTime),
			booking)
		n.record(ctx, booking.ProviderID, "booking", "New Booking Received",
			fmt.Sprintf("You have a new booking from %s on %s at %s.", customer.Name, booking.Date, booking.StartTime),
			booking)

		n.email(customer, "Booking received",
			fmt.Sprintf("Your booking on %s at %s has been received. Total: $%.2f.", booking.Date, booking.StartTime, booking.TotalPrice))
		n.email(provider, "New booking",
			fmt.Sprintf("%s booked your service on %s at %s.", customer.Name, booking.Date, booking.StartTime))

		n.push(ctx, customer, "Booking Received", "Your booking request is in. We'll let you know once it's confirmed.")
		n.push(ctx, provider, "New Booking", fmt.Sprintf("New booking on %s at %s.", booking.Date, booking.StartTime))
	})
}

func (n *DefaultNotifier) StatusChanged(ctx context.Context, booking *models.Booking, oldStatus, newStatus string) {
	go n.deliver(booking, func(ctx context.Context, customer, provider *models.User) {
		statusMessages := map[string]string{
			models.StatusConfirmed: "Your booking has been confirmed by the provider.",
			models.StatusCompleted: "Your service has been marked as completed. Please leave a review!",
			models.StatusCancelled: "Your booking has been cancelled.",
		}
		msg, ok := statusMessages[newStatus]
		if !ok {
			return
		}

		n.record(ctx, booking.CustomerID, "booking", "Booking "+newStatus, msg, booking)
		if newStatus == models.StatusCancelled {
			n.record(ctx, booking.ProviderID, "booking", "Booking Cancelled",
				fmt.Sprintf("A booking on %s has been cancelled.", booking.Date), booking)
		}

		n.email(customer, "Booking "+newStatus,
			fmt.Sprintf("Your booking on %s at %s moved from %s to %s.", booking.Date, booking.StartTime, oldStatus, newStatus))
		n.email(provider, "Booking "+newStatus,
			fmt.Sprintf("Booking on %s at %s moved from %s to %s.", booking.Date, booking.StartTime, oldStatus, newStatus))

		n.push(ctx, customer, "Booking "+newStatus, msg)
	})
}

func (n *DefaultNotifier) PaymentReceived(ctx context.Context, booking *models.Booking) {
	go n.deliver(booking, func(ctx context.Context, customer, provider *models.User) {
		n.record(ctx, booking.CustomerID, "payment", "Payment Successful",
			fmt.Sprintf("Your payment of $%.2f has been received.", booking.TotalPrice), booking)
		n.record(ctx, booking.ProviderID, "payment", "Payment Received",
			fmt.Sprintf("You received a payment of $%.2f from %s.", booking.TotalPrice, customer.Name), booking)

		n.email(customer, "Payment confirmation",
			fmt.Sprintf("Your payment of $%.2f for the booking on %s has been received.", booking.TotalPrice, booking.Date))

		n.push(ctx, customer, "Payment Successful", fmt.Sprintf("Payment of $%.2f received.", booking.TotalPrice))
		n.push(ctx, provider, "Payment Received", fmt.Sprintf("You received $%.2f.", booking.TotalPrice))
	})
}

// deliver resolves both parties and runs the event's delivery steps under a
// detached, bounded context.
func (n *DefaultNotifier) deliver(booking *models.Booking, fn func(ctx context.Context, customer, provider *models.User)) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	customer, err := n.Users.GetByID(ctx, booking.CustomerID)
	if err != nil {
		n.warn("could not resolve booking customer", booking.ID, err)
		return
	}
	provider, err := n.Users.GetByID(ctx, booking.ProviderID)
	if err != nil {
		n.warn("could not resolve booking provider", booking.ID, err)
		return
	}
	fn(ctx, customer, provider)
}

func (n *DefaultNotifier) record(ctx context.Context, userID, kind, title, message string, booking *models.Booking) {
	err := n.Store.Insert(ctx, &models.Notification{
		ID:      uuid.New().String(),
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
		Data: map[string]any{
			"booking_id": booking.ID,
			"service_id": booking.ServiceID,
		},
		CreatedAt: time.Now(),
	})
	if err != nil {
		n.warn("failed to persist notification", booking.ID, err)
	}
}

func (n *DefaultNotifier) email(user *models.User, subject, body string) {
	if n.Mailer == nil || user.Email == "" {
		return
	}
	if err := n.Mailer.Send(user.Email, subject, body); err != nil {
		n.warn("failed to send email", user.ID, err)
	}
}

func (n *DefaultNotifier) push(ctx context.Context, user *models.User, title, body string) {
	if n.FCM == nil || user.FCMToken == "" {
		return
	}
	msg := &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
	}
	if _, err := n.FCM.Send(ctx, msg); err != nil {
		n.warn("failed to send push", user.ID, err)
	}
}

func (n *DefaultNotifier) warn(msg, id string, err error) {
	if n.Logger != nil {
		n.Logger.Warn(msg, zap.String("id", id), zap.Error(err))
	}
}
