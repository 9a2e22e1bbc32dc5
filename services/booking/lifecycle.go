package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingRepo "handyhub/database/repository/booking"
	catalogRepo "handyhub/database/repository/catalog"
	userRepo "handyhub/database/repository/user"
	"handyhub/models"
	"handyhub/services/notification"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Actor identifies who is performing a booking operation.
type Actor struct {
	ID         string
	IsProvider bool
	IsAdmin    bool
}

// LifecycleManager creates bookings and drives them through the status
// state machine.
type LifecycleManager interface {
	CreateBooking(ctx context.Context, customerID string, input models.CreateBookingInput) (*models.Booking, error)
	Transition(ctx context.Context, bookingID string, actor Actor, target, reason string) (*models.Booking, error)
	AddVendorNote(ctx context.Context, bookingID string, actor Actor, note string) (*models.Booking, error)
	ListForCustomer(ctx context.Context, customerID string) ([]models.Booking, error)
}

// DefaultLifecycleManager is the production implementation.
type DefaultLifecycleManager struct {
	Catalog  catalogRepo.CatalogRepository
	Bookings bookingRepo.BookingRepository
	Users    userRepo.UserRepository
	Notifier notification.Notifier
	// Scheduler is only used to drop cached slot grids when a booking
	// reserves or frees a slot.
	Scheduler SchedulingEngine
	// Locks serializes creation across instances; nil falls back to the
	// in-process lock plus the repository's transactional insert.
	Locks  *redis.Client
	Logger *zap.Logger

	mu       sync.Mutex
	slotLock map[string]*sync.Mutex
}

// lockFor returns the in-process creation lock for (service, date).
func (lm *DefaultLifecycleManager) lockFor(serviceID, date string) *sync.Mutex {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if lm.slotLock == nil {
		lm.slotLock = make(map[string]*sync.Mutex)
	}
	key := serviceID + "|" + date
	l, ok := lm.slotLock[key]
	if !ok {
		l = &sync.Mutex{}
		lm.slotLock[key] = l
	}
	return l
}

// acquireDistributedLock takes a short-lived Redis lock on (service, date).
// Returns a release func, or a ConflictError when the lock stays contended.
func (lm *DefaultLifecycleManager) acquireDistributedLock(ctx context.Context, serviceID, date string) (func(), error) {
	if lm.Locks == nil {
		return func() {}, nil
	}
	key := fmt.Sprintf("bookinglock:%s:%s", serviceID, date)
	for i := 0; i < 20; i++ {
		ok, err := lm.Locks.SetNX(ctx, key, "1", 5*time.Second).Result()
		if err != nil {
			// Redis being down must not take booking creation with it; the
			// transactional insert still upholds the invariant.
			lm.warn("create lock unavailable", serviceID, err)
			return func() {}, nil
		}
		if ok {
			return func() { lm.Locks.Del(context.Background(), key) }, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return nil, &ConflictError{Message: "the requested slot is being booked by someone else, please retry"}
}

func (lm *DefaultLifecycleManager) CreateBooking(ctx context.Context, customerID string, input models.CreateBookingInput) (*models.Booking, error) {
	day, err := ParseDate(input.Date)
	if err != nil {
		return nil, NewValidationError("date", "must be a valid date in YYYY-MM-DD format")
	}
	today, _ := ParseDate(time.Now().Format(dateLayout))
	if day.Before(today) {
		return nil, NewValidationError("date", "must be today or a future date")
	}
	startMin, err := ParseClock(input.StartTime)
	if err != nil {
		return nil, NewValidationError("start_time", "must be a valid time in HH:MM format")
	}

	offering, err := lm.Catalog.GetOfferingByID(ctx, input.OfferingID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrNotFound) {
			return nil, NewValidationError("offering_id", "offering does not exist")
		}
		return nil, fmt.Errorf("error resolving offering: %w", err)
	}
	if offering.ServiceID != input.ServiceID {
		return nil, NewValidationError("offering_id", "offering does not belong to the service")
	}
	if offering.DurationMinutes <= 0 {
		return nil, NewValidationError("offering_id", "offering has no duration")
	}

	svc, err := lm.Catalog.GetServiceByID(ctx, input.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrNotFound) {
			return nil, NewValidationError("service_id", "service does not exist")
		}
		return nil, fmt.Errorf("error resolving service: %w", err)
	}
	// A service without an owner is a data-integrity problem; fail closed
	// rather than booking against an arbitrary vendor.
	if svc.ProviderID == "" {
		return nil, NewValidationError("service_id", "service has no provider")
	}

	endMin := startMin + offering.DurationMinutes
	now := time.Now()
	booking := &models.Booking{
		ID:            uuid.New().String(),
		CustomerID:    customerID,
		ProviderID:    svc.ProviderID,
		ServiceID:     svc.ID,
		OfferingID:    offering.ID,
		Date:          input.Date,
		StartTime:     FormatClock(startMin),
		EndTime:       FormatClock(endMin),
		Status:        models.StatusPending,
		PaymentStatus: models.PaymentPending,
		TotalPrice:    offering.Price,
		CustomerNotes: input.CustomerNotes,
		AuditLog: []models.AuditEntry{{
			At:     now,
			Actor:  customerID,
			Action: "created",
			Detail: fmt.Sprintf("booked %s for %s %s-%s", offering.Name, input.Date, FormatClock(startMin), FormatClock(endMin)),
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Serialize the overlap-check/insert per (service, date) so two racing
	// requests for overlapping intervals cannot both pass the check.
	release, err := lm.acquireDistributedLock(ctx, svc.ID, input.Date)
	if err != nil {
		return nil, err
	}
	defer release()
	l := lm.lockFor(svc.ID, input.Date)
	l.Lock()
	defer l.Unlock()

	if err := lm.Bookings.CreateIfSlotFree(ctx, booking); err != nil {
		if errors.Is(err, bookingRepo.ErrSlotTaken) {
			return nil, &ConflictError{Message: "the selected time slot is no longer available"}
		}
		return nil, fmt.Errorf("error creating booking: %w", err)
	}

	// Contact back-fill and notifications are best-effort; the booking is
	// already committed.
	if err := lm.Users.FillContact(ctx, customerID, input.FullName, input.Phone); err != nil {
		lm.warn("failed to back-fill customer contact", customerID, err)
	}
	if lm.Scheduler != nil {
		lm.Scheduler.InvalidateSlots(ctx, svc.ID, input.Date)
	}
	if lm.Notifier != nil {
		lm.Notifier.BookingCreated(ctx, booking)
	}
	return booking, nil
}

// transitionSources lists the statuses a booking may leave from for each
// target, mirroring the lifecycle table.
var transitionSources = map[string][]string{
	models.StatusConfirmed: {models.StatusPending},
	models.StatusCompleted: {models.StatusPending, models.StatusConfirmed},
	models.StatusCancelled: {models.StatusPending, models.StatusConfirmed},
}

func (lm *DefaultLifecycleManager) Transition(ctx context.Context, bookingID string, actor Actor, target, reason string) (*models.Booking, error) {
	sources, ok := transitionSources[target]
	if !ok {
		return nil, &InvalidTransitionError{From: "(any)", To: target}
	}

	booking, err := lm.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := lm.authorizeTransition(booking, actor, target); err != nil {
		return nil, err
	}
	if !booking.CanTransitionTo(target) {
		return nil, &InvalidTransitionError{From: booking.Status, To: target}
	}

	detail := fmt.Sprintf("%s by %s", target, actorLabel(booking, actor))
	if reason != "" {
		detail += "; reason: " + reason
	}
	entry := models.AuditEntry{
		At:     time.Now(),
		Actor:  actor.ID,
		Action: target,
		Detail: detail,
	}

	oldStatus := booking.Status
	updated, err := lm.Bookings.UpdateStatus(ctx, bookingID, sources, target, entry)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNoMatch) {
			// Someone else moved the booking between read and write.
			current, getErr := lm.Bookings.GetByID(ctx, bookingID)
			if getErr == nil {
				return nil, &InvalidTransitionError{From: current.Status, To: target}
			}
			return nil, &InvalidTransitionError{From: oldStatus, To: target}
		}
		return nil, fmt.Errorf("error transitioning booking: %w", err)
	}

	if target == models.StatusCancelled || target == models.StatusCompleted {
		if lm.Scheduler != nil {
			lm.Scheduler.InvalidateSlots(ctx, updated.ServiceID, updated.Date)
		}
	}
	if lm.Notifier != nil {
		lm.Notifier.StatusChanged(ctx, updated, oldStatus, target)
	}
	return updated, nil
}

func (lm *DefaultLifecycleManager) authorizeTransition(booking *models.Booking, actor Actor, target string) error {
	if actor.IsAdmin {
		return nil
	}
	isOwner := actor.ID == booking.ProviderID
	isCustomer := actor.ID == booking.CustomerID

	switch target {
	case models.StatusCancelled:
		if isOwner || isCustomer {
			return nil
		}
	case models.StatusConfirmed, models.StatusCompleted:
		if isOwner {
			return nil
		}
	}
	return &AuthorizationError{Message: "you are not allowed to modify this booking"}
}

func actorLabel(booking *models.Booking, actor Actor) string {
	switch {
	case actor.IsAdmin:
		return "admin"
	case actor.ID == booking.ProviderID:
		return "vendor"
	default:
		return "customer"
	}
}

func (lm *DefaultLifecycleManager) AddVendorNote(ctx context.Context, bookingID string, actor Actor, note string) (*models.Booking, error) {
	booking, err := lm.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && actor.ID != booking.ProviderID {
		return nil, &AuthorizationError{Message: "you are not allowed to annotate this booking"}
	}

	entry := models.AuditEntry{
		At:     time.Now(),
		Actor:  actor.ID,
		Action: "note",
		Detail: note,
	}
	return lm.Bookings.AppendAudit(ctx, bookingID, entry)
}

func (lm *DefaultLifecycleManager) ListForCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	return lm.Bookings.ListByCustomer(ctx, customerID)
}

func (lm *DefaultLifecycleManager) warn(msg, id string, err error) {
	if lm.Logger != nil {
		lm.Logger.Warn(msg, zap.String("id", id), zap.Error(err))
	}
}
