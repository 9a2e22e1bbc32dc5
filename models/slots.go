package models

// Slot is one entry in a service's availability grid for a date.
type Slot struct {
	Time      string `json:"time"` // slot start, "HH:MM"
	Available bool   `json:"available"`
}

// SlotsResponse is the payload returned by the slot query endpoint.
type SlotsResponse struct {
	ServiceID string `json:"service_id"`
	Date      string `json:"date"`
	Slots     []Slot `json:"slots"`
}
