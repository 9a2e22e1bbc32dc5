package catalogRepo

import (
	"context"
	"errors"

	"handyhub/models"
)

// ErrNotFound is returned when a catalog record does not exist.
var ErrNotFound = errors.New("catalog record not found")

// CatalogRepository provides read access to services, offerings and business
// hours. The scheduling core never writes services or offerings; business
// hours are written only through ReplaceBusinessHours.
type CatalogRepository interface {
	GetServiceByID(ctx context.Context, id string) (*models.Service, error)
	GetOfferingByID(ctx context.Context, id string) (*models.ServiceOffering, error)
	ListServicesByProvider(ctx context.Context, providerID string) ([]models.Service, error)

	// GetBusinessHour returns the window for (service, weekday), or nil when
	// no row exists for that day.
	GetBusinessHour(ctx context.Context, serviceID string, dayOfWeek int) (*models.BusinessHour, error)
	// ReplaceBusinessHours swaps the full weekly schedule of a service,
	// preserving the one-row-per-weekday invariant.
	ReplaceBusinessHours(ctx context.Context, serviceID string, hours []models.BusinessHour) error
}
