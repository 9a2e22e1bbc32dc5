package booking

import (
	"context"
	"sync"
	"time"

	bookingRepo "handyhub/database/repository/booking"
	catalogRepo "handyhub/database/repository/catalog"
	userRepo "handyhub/database/repository/user"
	"handyhub/models"
)

// fakeCatalogRepo serves catalog reads from in-memory maps.
type fakeCatalogRepo struct {
	mu        sync.Mutex
	services  map[string]*models.Service
	offerings map[string]*models.ServiceOffering
	hours     map[string][]models.BusinessHour // keyed by service ID
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		services:  make(map[string]*models.Service),
		offerings: make(map[string]*models.ServiceOffering),
		hours:     make(map[string][]models.BusinessHour),
	}
}

func (f *fakeCatalogRepo) GetServiceByID(_ context.Context, id string) (*models.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	svc, ok := f.services[id]
	if !ok {
		return nil, catalogRepo.ErrNotFound
	}
	copied := *svc
	return &copied, nil
}

func (f *fakeCatalogRepo) GetOfferingByID(_ context.Context, id string) (*models.ServiceOffering, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	off, ok := f.offerings[id]
	if !ok {
		return nil, catalogRepo.ErrNotFound
	}
	copied := *off
	return &copied, nil
}

func (f *fakeCatalogRepo) ListServicesByProvider(_ context.Context, providerID string) ([]models.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Service
	for _, svc := range f.services {
		if svc.ProviderID == providerID {
			out = append(out, *svc)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) GetBusinessHour(_ context.Context, serviceID string, dayOfWeek int) (*models.BusinessHour, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, bh := range f.hours[serviceID] {
		if bh.DayOfWeek == dayOfWeek {
			copied := bh
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalogRepo) ReplaceBusinessHours(_ context.Context, serviceID string, hours []models.BusinessHour) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hours[serviceID] = append([]models.BusinessHour(nil), hours...)
	return nil
}

// fakeBookingRepo is an in-memory booking store whose writes uphold the same
// atomicity contract as the Mongo implementation.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*models.Booking)}
}

func (f *fakeBookingRepo) get(id string) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	return b, nil
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := f.get(id)
	if err != nil {
		return nil, err
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) FindBlocking(_ context.Context, serviceID, date string) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.bookings {
		if b.ServiceID == serviceID && b.Date == date && b.Blocks() {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) CreateIfSlotFree(_ context.Context, booking *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.ServiceID != booking.ServiceID || b.Date != booking.Date || !b.Blocks() {
			continue
		}
		if b.StartTime < booking.EndTime && b.EndTime > booking.StartTime {
			return bookingRepo.ErrSlotTaken
		}
	}
	copied := *booking
	f.bookings[booking.ID] = &copied
	return nil
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, id string, from []string, to string, entry models.AuditEntry) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := f.get(id)
	if err != nil {
		return nil, err
	}
	matched := false
	for _, s := range from {
		if b.Status == s {
			matched = true
			break
		}
	}
	if !matched {
		return nil, bookingRepo.ErrNoMatch
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	b.AuditLog = append(b.AuditLog, entry)
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) MarkPaid(_ context.Context, id, method, ref string, paidAt time.Time, entry models.AuditEntry) (*models.Booking, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := f.get(id)
	if err != nil {
		return nil, false, err
	}
	if b.PaymentStatus == models.PaymentPaid {
		copied := *b
		return &copied, false, nil
	}
	b.PaymentStatus = models.PaymentPaid
	b.PaymentMethod = method
	b.PaymentRef = ref
	b.PaidAt = &paidAt
	b.UpdatedAt = time.Now()
	b.AuditLog = append(b.AuditLog, entry)
	copied := *b
	return &copied, true, nil
}

func (f *fakeBookingRepo) SetPaymentStatus(_ context.Context, id, from, to string, entry models.AuditEntry) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := f.get(id)
	if err != nil {
		return nil, err
	}
	if b.PaymentStatus != from {
		return nil, bookingRepo.ErrNoMatch
	}
	b.PaymentStatus = to
	b.UpdatedAt = time.Now()
	b.AuditLog = append(b.AuditLog, entry)
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) AppendAudit(_ context.Context, id string, entry models.AuditEntry) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := f.get(id)
	if err != nil {
		return nil, err
	}
	b.AuditLog = append(b.AuditLog, entry)
	b.UpdatedAt = time.Now()
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) ListByCustomer(_ context.Context, customerID string) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.bookings {
		if b.CustomerID == customerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListByServices(_ context.Context, serviceIDs []string, filter bookingRepo.ListFilter) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make(map[string]bool, len(serviceIDs))
	for _, id := range serviceIDs {
		ids[id] = true
	}
	var out []models.Booking
	for _, b := range f.bookings {
		if !ids[b.ServiceID] {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.DateFrom != "" && b.Date < filter.DateFrom {
			continue
		}
		if filter.DateTo != "" && b.Date > filter.DateTo {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeBookingRepo) ListPaymentsByCustomer(_ context.Context, customerID string) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.bookings {
		if b.CustomerID != customerID {
			continue
		}
		switch b.PaymentStatus {
		case models.PaymentPaid, models.PaymentRefunded, models.PaymentPartiallyRefunded:
			out = append(out, *b)
		}
	}
	return out, nil
}

// fakeUserRepo serves user lookups from a map.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, userRepo.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) FillContact(_ context.Context, id, name, phone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return userRepo.ErrNotFound
	}
	if u.Name == "" && name != "" {
		u.Name = name
	}
	if u.Phone == "" && phone != "" {
		u.Phone = phone
	}
	return nil
}

// fakeNotifier counts dispatched events.
type fakeNotifier struct {
	mu       sync.Mutex
	created  int
	status   int
	payments int
}

func (f *fakeNotifier) BookingCreated(context.Context, *models.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
}

func (f *fakeNotifier) StatusChanged(context.Context, *models.Booking, string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status++
}

func (f *fakeNotifier) PaymentReceived(context.Context, *models.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments++
}

func (f *fakeNotifier) counts() (int, int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created, f.status, f.payments
}
