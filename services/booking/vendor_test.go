package booking

import (
	"context"
	"testing"

	bookingRepo "handyhub/database/repository/booking"
	"handyhub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVendorService() (*DefaultVendorService, *fakeCatalogRepo, *fakeBookingRepo) {
	catalog := newFakeCatalogRepo()
	bookings := newFakeBookingRepo()
	catalog.services["svc-1"] = &models.Service{ID: "svc-1", ProviderID: "vendor-1", Name: "Plumbing"}
	catalog.services["svc-2"] = &models.Service{ID: "svc-2", ProviderID: "vendor-1", Name: "Heating"}
	catalog.services["svc-other"] = &models.Service{ID: "svc-other", ProviderID: "vendor-2"}

	return &DefaultVendorService{Catalog: catalog, Bookings: bookings}, catalog, bookings
}

func seedVendorBooking(t *testing.T, bookings *fakeBookingRepo, id, serviceID, date, start, end, status string, price float64) {
	t.Helper()
	require.NoError(t, bookings.CreateIfSlotFree(context.Background(), &models.Booking{
		ID: id, CustomerID: "cust-1", ProviderID: "vendor-1",
		ServiceID: serviceID, Date: date,
		StartTime: start, EndTime: end,
		Status: status, PaymentStatus: models.PaymentPending,
		TotalPrice: price,
	}))
}

func TestListVendorBookings(t *testing.T) {
	vs, _, bookings := newTestVendorService()
	seedVendorBooking(t, bookings, "b-1", "svc-1", "2025-06-02", "09:00", "10:00", models.StatusPending, 50)
	seedVendorBooking(t, bookings, "b-2", "svc-1", "2025-06-02", "11:00", "12:00", models.StatusConfirmed, 75)
	seedVendorBooking(t, bookings, "b-3", "svc-2", "2025-06-03", "09:00", "10:00", models.StatusCompleted, 100)
	seedVendorBooking(t, bookings, "b-4", "svc-2", "2025-06-04", "09:00", "10:00", models.StatusCancelled, 40)
	// Another vendor's booking stays invisible.
	seedVendorBooking(t, bookings, "b-5", "svc-other", "2025-06-02", "09:00", "10:00", models.StatusPending, 999)

	list, stats, err := vs.ListVendorBookings(context.Background(), "vendor-1", bookingRepo.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 4)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Confirmed)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Cancelled)
	// Revenue counts everything except cancelled bookings.
	assert.Equal(t, 225.0, stats.Revenue)
}

func TestListVendorBookingsFilters(t *testing.T) {
	vs, _, bookings := newTestVendorService()
	seedVendorBooking(t, bookings, "b-1", "svc-1", "2025-06-02", "09:00", "10:00", models.StatusPending, 50)
	seedVendorBooking(t, bookings, "b-2", "svc-1", "2025-06-05", "09:00", "10:00", models.StatusConfirmed, 75)

	list, _, err := vs.ListVendorBookings(context.Background(), "vendor-1", bookingRepo.ListFilter{Status: models.StatusConfirmed})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b-2", list[0].ID)

	list, _, err = vs.ListVendorBookings(context.Background(), "vendor-1", bookingRepo.ListFilter{DateFrom: "2025-06-03", DateTo: "2025-06-06"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b-2", list[0].ID)
}

func TestListVendorBookingsNoServices(t *testing.T) {
	vs, _, _ := newTestVendorService()

	list, stats, err := vs.ListVendorBookings(context.Background(), "vendor-without-services", bookingRepo.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, BookingStats{}, stats)
}

func TestCalendarRangeViews(t *testing.T) {
	vs, _, bookings := newTestVendorService()
	seedVendorBooking(t, bookings, "b-1", "svc-1", "2025-06-04", "09:00", "10:00", models.StatusConfirmed, 50)
	seedVendorBooking(t, bookings, "b-2", "svc-1", "2025-06-20", "09:00", "10:00", models.StatusConfirmed, 75)

	// 2025-06-04 is a Wednesday; its week runs Monday through Sunday.
	summary, err := vs.CalendarRange(context.Background(), "vendor-1", "week", "2025-06-04")
	require.NoError(t, err)
	assert.Equal(t, "week", summary.View)
	assert.Equal(t, "2025-06-02", summary.StartDate)
	assert.Equal(t, "2025-06-08", summary.EndDate)
	require.Len(t, summary.Bookings, 1)
	assert.Equal(t, "b-1", summary.Bookings[0].ID)

	summary, err = vs.CalendarRange(context.Background(), "vendor-1", "month", "2025-06-15")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", summary.StartDate)
	assert.Equal(t, "2025-06-30", summary.EndDate)
	assert.Len(t, summary.Bookings, 2)

	summary, err = vs.CalendarRange(context.Background(), "vendor-1", "day", "2025-06-20")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-20", summary.StartDate)
	assert.Equal(t, "2025-06-20", summary.EndDate)
	require.Len(t, summary.Bookings, 1)
	assert.Equal(t, "b-2", summary.Bookings[0].ID)
}

func TestCalendarRangeRejectsBadDate(t *testing.T) {
	vs, _, _ := newTestVendorService()

	_, err := vs.CalendarRange(context.Background(), "vendor-1", "week", "June 4th")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "start_date")
}

func TestSetBusinessHours(t *testing.T) {
	vs, catalog, _ := newTestVendorService()
	owner := Actor{ID: "vendor-1", IsProvider: true}

	rows, err := vs.SetBusinessHours(context.Background(), owner, "svc-1", []models.BusinessHourInput{
		{DayOfWeek: 1, TimeFrom: "08:00", TimeTo: "16:00"},
		{DayOfWeek: 2, TimeFrom: "10:00", TimeTo: "14:00"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Len(t, catalog.hours["svc-1"], 2)

	// Replacing drops the previous schedule.
	rows, err = vs.SetBusinessHours(context.Background(), owner, "svc-1", []models.BusinessHourInput{
		{DayOfWeek: 5, TimeFrom: "09:00", TimeTo: "12:00"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Len(t, catalog.hours["svc-1"], 1)
	assert.Equal(t, 5, catalog.hours["svc-1"][0].DayOfWeek)
}

type recordingScheduler struct {
	invalidatedServices []string
}

func (r *recordingScheduler) AvailableSlots(context.Context, string, string) ([]models.Slot, error) {
	return nil, nil
}

func (r *recordingScheduler) InvalidateSlots(context.Context, string, string) {}

func (r *recordingScheduler) InvalidateServiceSlots(_ context.Context, serviceID string) {
	r.invalidatedServices = append(r.invalidatedServices, serviceID)
}

func TestSetBusinessHoursDropsCachedSlots(t *testing.T) {
	vs, _, _ := newTestVendorService()
	scheduler := &recordingScheduler{}
	vs.Scheduler = scheduler

	_, err := vs.SetBusinessHours(context.Background(), Actor{ID: "vendor-1"}, "svc-1", []models.BusinessHourInput{
		{DayOfWeek: 1, TimeFrom: "08:00", TimeTo: "16:00"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"svc-1"}, scheduler.invalidatedServices)

	// A rejected update leaves the cache alone.
	_, err = vs.SetBusinessHours(context.Background(), Actor{ID: "vendor-2"}, "svc-1", []models.BusinessHourInput{
		{DayOfWeek: 2, TimeFrom: "08:00", TimeTo: "16:00"},
	})
	require.Error(t, err)
	assert.Len(t, scheduler.invalidatedServices, 1)
}

func TestSetBusinessHoursValidation(t *testing.T) {
	vs, _, _ := newTestVendorService()
	owner := Actor{ID: "vendor-1", IsProvider: true}

	cases := []struct {
		name  string
		hours []models.BusinessHourInput
		field string
	}{
		{"day out of range", []models.BusinessHourInput{{DayOfWeek: 7, TimeFrom: "09:00", TimeTo: "12:00"}}, "day_of_week"},
		{"duplicate day", []models.BusinessHourInput{
			{DayOfWeek: 1, TimeFrom: "09:00", TimeTo: "12:00"},
			{DayOfWeek: 1, TimeFrom: "13:00", TimeTo: "17:00"},
		}, "day_of_week"},
		{"malformed from", []models.BusinessHourInput{{DayOfWeek: 1, TimeFrom: "morning", TimeTo: "12:00"}}, "time_from"},
		{"malformed to", []models.BusinessHourInput{{DayOfWeek: 1, TimeFrom: "09:00", TimeTo: "late"}}, "time_to"},
		{"inverted window", []models.BusinessHourInput{{DayOfWeek: 1, TimeFrom: "14:00", TimeTo: "09:00"}}, "time_to"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := vs.SetBusinessHours(context.Background(), owner, "svc-1", tc.hours)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Fields, tc.field)
		})
	}
}

func TestSetBusinessHoursAuthorization(t *testing.T) {
	vs, _, _ := newTestVendorService()
	hours := []models.BusinessHourInput{{DayOfWeek: 1, TimeFrom: "09:00", TimeTo: "12:00"}}

	_, err := vs.SetBusinessHours(context.Background(), Actor{ID: "vendor-2"}, "svc-1", hours)
	var aErr *AuthorizationError
	require.ErrorAs(t, err, &aErr)

	_, err = vs.SetBusinessHours(context.Background(), Actor{ID: "admin", IsAdmin: true}, "svc-1", hours)
	assert.NoError(t, err)

	_, err = vs.SetBusinessHours(context.Background(), Actor{ID: "vendor-1"}, "no-such-service", hours)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}
