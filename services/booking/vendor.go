package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "handyhub/database/repository/booking"
	catalogRepo "handyhub/database/repository/catalog"
	"handyhub/models"

	"github.com/google/uuid"
)

// BookingStats summarizes a set of bookings for vendor dashboards.
type BookingStats struct {
	Total     int     `json:"total"`
	Pending   int     `json:"pending"`
	Confirmed int     `json:"confirmed"`
	Completed int     `json:"completed"`
	Cancelled int     `json:"cancelled"`
	Revenue   float64 `json:"revenue"` // excludes cancelled bookings
}

// CalendarSummary is the vendor calendar payload over a date range.
type CalendarSummary struct {
	View      string           `json:"view"`
	StartDate string           `json:"start_date"`
	EndDate   string           `json:"end_date"`
	Bookings  []models.Booking `json:"bookings"`
	Stats     BookingStats     `json:"stats"`
}

// VendorService covers the vendor-side booking views and schedule
// management.
type VendorService interface {
	ListVendorBookings(ctx context.Context, providerID string, filter bookingRepo.ListFilter) ([]models.Booking, BookingStats, error)
	CalendarRange(ctx context.Context, providerID, view, refDate string) (*CalendarSummary, error)
	SetBusinessHours(ctx context.Context, actor Actor, serviceID string, hours []models.BusinessHourInput) ([]models.BusinessHour, error)
}

// DefaultVendorService is the production implementation.
type DefaultVendorService struct {
	Catalog  catalogRepo.CatalogRepository
	Bookings bookingRepo.BookingRepository
	// Scheduler is only used to drop cached slot grids when a service's
	// operating hours change.
	Scheduler SchedulingEngine
}

func (vs *DefaultVendorService) vendorServiceIDs(ctx context.Context, providerID string) ([]string, error) {
	services, err := vs.Catalog.ListServicesByProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("error listing vendor services: %w", err)
	}
	ids := make([]string, 0, len(services))
	for _, s := range services {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

func computeStats(bookings []models.Booking) BookingStats {
	var stats BookingStats
	stats.Total = len(bookings)
	for _, b := range bookings {
		switch b.Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusConfirmed:
			stats.Confirmed++
		case models.StatusCompleted:
			stats.Completed++
		case models.StatusCancelled:
			stats.Cancelled++
		}
		if b.Status != models.StatusCancelled {
			stats.Revenue += b.TotalPrice
		}
	}
	return stats
}

func (vs *DefaultVendorService) ListVendorBookings(ctx context.Context, providerID string, filter bookingRepo.ListFilter) ([]models.Booking, BookingStats, error) {
	ids, err := vs.vendorServiceIDs(ctx, providerID)
	if err != nil {
		return nil, BookingStats{}, err
	}
	if len(ids) == 0 {
		return []models.Booking{}, BookingStats{}, nil
	}
	bookings, err := vs.Bookings.ListByServices(ctx, ids, filter)
	if err != nil {
		return nil, BookingStats{}, err
	}
	return bookings, computeStats(bookings), nil
}

// CalendarRange resolves the requested view to a date range and returns the
// vendor's bookings within it. Weeks start on Monday.
func (vs *DefaultVendorService) CalendarRange(ctx context.Context, providerID, view, refDate string) (*CalendarSummary, error) {
	ref := time.Now()
	if refDate != "" {
		parsed, err := ParseDate(refDate)
		if err != nil {
			return nil, NewValidationError("start_date", "must be a valid date in YYYY-MM-DD format")
		}
		ref = parsed
	}

	var start, end time.Time
	switch view {
	case "today":
		start = time.Now()
		end = start
	case "day":
		start = ref
		end = ref
	case "month":
		start = time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
		end = start.AddDate(0, 1, -1)
	default:
		view = "week"
		offset := (int(ref.Weekday()) + 6) % 7 // days since Monday
		start = ref.AddDate(0, 0, -offset)
		end = start.AddDate(0, 0, 6)
	}

	ids, err := vs.vendorServiceIDs(ctx, providerID)
	if err != nil {
		return nil, err
	}

	summary := &CalendarSummary{
		View:      view,
		StartDate: start.Format(dateLayout),
		EndDate:   end.Format(dateLayout),
		Bookings:  []models.Booking{},
	}
	if len(ids) == 0 {
		return summary, nil
	}

	bookings, err := vs.Bookings.ListByServices(ctx, ids, bookingRepo.ListFilter{
		DateFrom: summary.StartDate,
		DateTo:   summary.EndDate,
	})
	if err != nil {
		return nil, err
	}
	summary.Bookings = bookings
	summary.Stats = computeStats(bookings)
	return summary, nil
}

func (vs *DefaultVendorService) SetBusinessHours(ctx context.Context, actor Actor, serviceID string, hours []models.BusinessHourInput) ([]models.BusinessHour, error) {
	svc, err := vs.Catalog.GetServiceByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrNotFound) {
			return nil, NewValidationError("service_id", "service does not exist")
		}
		return nil, fmt.Errorf("error resolving service: %w", err)
	}
	if !actor.IsAdmin && actor.ID != svc.ProviderID {
		return nil, &AuthorizationError{Message: "you are not allowed to manage this service"}
	}

	seen := make(map[int]bool, len(hours))
	rows := make([]models.BusinessHour, 0, len(hours))
	for _, h := range hours {
		if h.DayOfWeek < 0 || h.DayOfWeek > 6 {
			return nil, NewValidationError("day_of_week", "must be between 0 and 6")
		}
		if seen[h.DayOfWeek] {
			return nil, NewValidationError("day_of_week", "duplicate entry for the same weekday")
		}
		seen[h.DayOfWeek] = true

		from, err := ParseClock(h.TimeFrom)
		if err != nil {
			return nil, NewValidationError("time_from", "must be a valid time in HH:MM format")
		}
		to, err := ParseClock(h.TimeTo)
		if err != nil {
			return nil, NewValidationError("time_to", "must be a valid time in HH:MM format")
		}
		if from >= to {
			return nil, NewValidationError("time_to", "must be after time_from")
		}

		rows = append(rows, models.BusinessHour{
			ID:        uuid.New().String(),
			ServiceID: serviceID,
			DayOfWeek: h.DayOfWeek,
			TimeFrom:  h.TimeFrom,
			TimeTo:    h.TimeTo,
		})
	}

	if err := vs.Catalog.ReplaceBusinessHours(ctx, serviceID, rows); err != nil {
		return nil, fmt.Errorf("error replacing business hours: %w", err)
	}
	// Cached grids were built against the old window.
	if vs.Scheduler != nil {
		vs.Scheduler.InvalidateServiceSlots(ctx, serviceID)
	}
	return rows, nil
}
