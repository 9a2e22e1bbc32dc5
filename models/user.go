package models

import "time"

// User is a marketplace account: customers book, vendors own services,
// admins may act on any booking.
type User struct {
	ID         string    `bson:"id" json:"id"`
	Name       string    `bson:"name" json:"name"`
	Email      string    `bson:"email" json:"email"`
	Phone      string    `bson:"phone,omitempty" json:"phone,omitempty"`
	IsProvider bool      `bson:"is_provider" json:"is_provider"`
	IsAdmin    bool      `bson:"is_admin" json:"is_admin"`
	FCMToken   string    `bson:"fcm_token,omitempty" json:"fcm_token,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}
