package userRepo

import (
	"context"
	"errors"

	"handyhub/models"
)

// ErrNotFound is returned when a user does not exist.
var ErrNotFound = errors.New("user not found")

// UserRepository provides the account lookups the booking core needs:
// provider resolution, authorization checks and notification targets.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	// FillContact sets name and phone on the user when they are still empty.
	FillContact(ctx context.Context, id, name, phone string) error
}
