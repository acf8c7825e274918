// Package users declares the repository contract for user accounts. It is
// the user directory the real-time core resolves senders and recipients
// against.
package users

import (
	"context"

	"github.com/dmitrijs2005/taskhub/internal/server/models"
)

type Repository interface {
	// Create inserts user and returns it with ID set. A taken username is
	// reported as common.ErrAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	MarkConfirmed(ctx context.Context, id string) error
	UpdatePasswordHash(ctx context.Context, id string, hash []byte) error
}
