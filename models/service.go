package models

import "time"

// Service is a bookable service listed by a vendor. The scheduling core
// reads services but never mutates them.
type Service struct {
	ID          string    `bson:"id" json:"id"`
	ProviderID  string    `bson:"provider_id" json:"provider_id"` // owning vendor
	Name        string    `bson:"name" json:"name"`
	Slug        string    `bson:"slug" json:"slug"`
	CategoryID  string    `bson:"category_id" json:"category_id"`
	PricingTier string    `bson:"pricing_tier,omitempty" json:"pricing_tier,omitempty"`
	Available   bool      `bson:"available" json:"available"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// ServiceOffering is a priced, time-bounded option under a service. The
// duration drives the computed booking end time.
type ServiceOffering struct {
	ID              string  `bson:"id" json:"id"`
	ServiceID       string  `bson:"service_id" json:"service_id"`
	Name            string  `bson:"name" json:"name"`
	Description     string  `bson:"description,omitempty" json:"description,omitempty"`
	Price           float64 `bson:"price" json:"price"`
	DurationMinutes int     `bson:"duration_minutes" json:"duration_minutes"`
	IsPopular       bool    `bson:"is_popular,omitempty" json:"is_popular,omitempty"`
}

// BusinessHour defines the operating window of a service on one weekday.
// At most one row exists per (service, day of week); day 0 is Sunday.
type BusinessHour struct {
	ID        string `bson:"id" json:"id"`
	ServiceID string `bson:"service_id" json:"service_id"`
	DayOfWeek int    `bson:"day_of_week" json:"day_of_week"`
	TimeFrom  string `bson:"time_from" json:"time_from"` // "HH:MM"
	TimeTo    string `bson:"time_to" json:"time_to"`     // "HH:MM", after TimeFrom
}
