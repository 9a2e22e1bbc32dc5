package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bookingRepo "handyhub/database/repository/booking"
	catalogRepo "handyhub/database/repository/catalog"
	"handyhub/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// slotCacheTTL keeps slot responses hot between a customer picking a date
// and submitting the form. Creation/cancellation invalidates eagerly.
const slotCacheTTL = 30 * time.Second

// SchedulingEngine computes the availability grid for a service and date.
type SchedulingEngine interface {
	// AvailableSlots returns the day's slots in chronological order. A slot
	// is unavailable iff it overlaps a pending or confirmed booking.
	AvailableSlots(ctx context.Context, serviceID, date string) ([]models.Slot, error)
	// InvalidateSlots drops any cached grid for (service, date).
	InvalidateSlots(ctx context.Context, serviceID, date string)
	// InvalidateServiceSlots drops every cached grid for the service,
	// whatever the date. Used when the operating window itself changes.
	InvalidateServiceSlots(ctx context.Context, serviceID string)
}

// DefaultSchedulingEngine is the production implementation.
type DefaultSchedulingEngine struct {
	Catalog  catalogRepo.CatalogRepository
	Bookings bookingRepo.BookingRepository
	Cache    *redis.Client // optional; nil disables caching
	Logger   *zap.Logger

	IntervalMinutes  int
	DefaultOpenTime  string // used when a day has no business-hours row
	DefaultCloseTime string
	// ClosedWhenUnset treats days without a business-hours row as closed
	// instead of applying the default window.
	ClosedWhenUnset bool
}

func slotCacheKey(serviceID, date string) string {
	return fmt.Sprintf("slots:%s:%s", serviceID, date)
}

func (se *DefaultSchedulingEngine) AvailableSlots(ctx context.Context, serviceID, date string) ([]models.Slot, error) {
	if _, err := ParseDate(date); err != nil {
		return nil, NewValidationError("date", "must be a valid date in YYYY-MM-DD format")
	}
	svc, err := se.Catalog.GetServiceByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrNotFound) {
			return nil, NewValidationError("service_id", "service does not exist")
		}
		return nil, fmt.Errorf("error resolving service: %w", err)
	}

	if se.Cache != nil {
		if cached, err := se.Cache.Get(ctx, slotCacheKey(serviceID, date)).Result(); err == nil {
			var slots []models.Slot
			if err := json.Unmarshal([]byte(cached), &slots); err == nil {
				return slots, nil
			}
		}
	}

	openMin, closeMin, open, err := se.operatingWindow(ctx, svc.ID, date)
	if err != nil {
		return nil, err
	}
	if !open {
		return []models.Slot{}, nil
	}

	existing, err := se.Bookings.FindBlocking(ctx, serviceID, date)
	if err != nil {
		return nil, fmt.Errorf("error fetching existing bookings: %w", err)
	}

	slots, err := buildSlotGrid(openMin, closeMin, se.interval(), existing)
	if err != nil {
		return nil, err
	}

	if se.Cache != nil {
		if data, err := json.Marshal(slots); err == nil {
			if err := se.Cache.Set(ctx, slotCacheKey(serviceID, date), data, slotCacheTTL).Err(); err != nil && se.Logger != nil {
				se.Logger.Warn("failed to cache slot grid", zap.String("serviceID", serviceID), zap.Error(err))
			}
		}
	}
	return slots, nil
}

func (se *DefaultSchedulingEngine) InvalidateSlots(ctx context.Context, serviceID, date string) {
	if se.Cache == nil {
		return
	}
	if err := se.Cache.Del(ctx, slotCacheKey(serviceID, date)).Err(); err != nil && se.Logger != nil {
		se.Logger.Warn("failed to invalidate slot cache", zap.String("serviceID", serviceID), zap.Error(err))
	}
}

func (se *DefaultSchedulingEngine) InvalidateServiceSlots(ctx context.Context, serviceID string) {
	if se.Cache == nil {
		return
	}
	iter := se.Cache.Scan(ctx, 0, slotCacheKey(serviceID, "*"), 0).Iterator()
	for iter.Next(ctx) {
		if err := se.Cache.Del(ctx, iter.Val()).Err(); err != nil && se.Logger != nil {
			se.Logger.Warn("failed to invalidate slot cache", zap.String("serviceID", serviceID), zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil && se.Logger != nil {
		se.Logger.Warn("failed to scan slot cache keys", zap.String("serviceID", serviceID), zap.Error(err))
	}
}

func (se *DefaultSchedulingEngine) interval() int {
	if se.IntervalMinutes > 0 {
		return se.IntervalMinutes
	}
	return 30
}

// operatingWindow resolves the service's window for the date's weekday.
// The third return value is false when the service is closed that day.
func (se *DefaultSchedulingEngine) operatingWindow(ctx context.Context, serviceID, date string) (int, int, bool, error) {
	day, err := ParseDate(date)
	if err != nil {
		return 0, 0, false, NewValidationError("date", "must be a valid date in YYYY-MM-DD format")
	}

	bh, err := se.Catalog.GetBusinessHour(ctx, serviceID, int(day.Weekday()))
	if err != nil {
		return 0, 0, false, fmt.Errorf("error fetching business hours: %w", err)
	}

	from, to := se.DefaultOpenTime, se.DefaultCloseTime
	if bh != nil {
		from, to = bh.TimeFrom, bh.TimeTo
	} else if se.ClosedWhenUnset {
		return 0, 0, false, nil
	}
	if from == "" {
		from = "09:00"
	}
	if to == "" {
		to = "18:00"
	}

	openMin, err := ParseClock(from)
	if err != nil {
		return 0, 0, false, fmt.Errorf("malformed business hours for service %s: %w", serviceID, err)
	}
	closeMin, err := ParseClock(to)
	if err != nil {
		return 0, 0, false, fmt.Errorf("malformed business hours for service %s: %w", serviceID, err)
	}
	return openMin, closeMin, true, nil
}

// buildSlotGrid partitions the window into fixed slots and marks each slot
// unavailable when it overlaps a blocking booking. Bookings reserve their
// real duration, so a booking need not be grid-aligned to block later slots.
func buildSlotGrid(openMin, closeMin, interval int, existing []models.Booking) ([]models.Slot, error) {
	type span struct{ start, end int }
	busy := make([]span, 0, len(existing))
	for _, b := range existing {
		start, err := ParseClock(b.StartTime)
		if err != nil {
			return nil, fmt.Errorf("booking %s has malformed start time: %w", b.ID, err)
		}
		end, err := ParseClock(b.EndTime)
		if err != nil {
			return nil, fmt.Errorf("booking %s has malformed end time: %w", b.ID, err)
		}
		busy = append(busy, span{start, end})
	}

	slots := make([]models.Slot, 0, (closeMin-openMin)/interval)
	for t := openMin; t+interval <= closeMin; t += interval {
		available := true
		for _, s := range busy {
			if overlaps(t, t+interval, s.start, s.end) {
				available = false
				break
			}
		}
		slots = append(slots, models.Slot{Time: FormatClock(t), Available: available})
	}
	return slots, nil
}
