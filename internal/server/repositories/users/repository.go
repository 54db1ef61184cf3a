package users

import (
	"context"

	"github.com/avoronov/accountd/internal/server/models"
)

// Repository persists identity + credential records. Uniqueness of username
// and email is enforced by the storage layer: Create and Update fail with
// common.ErrorAlreadyExists on a conflict, with no partial writes.
//
// Default read projections exclude credential fields; only
// FindByEmailWithCredential returns them, and it must stay confined to
// trusted internal call paths.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)

	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByEmailWithCredential(ctx context.Context, email string) (*models.User, error)
	FindBySessionToken(ctx context.Context, token string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)

	Update(ctx context.Context, id string, upd models.UserUpdate) error
	SetSessionToken(ctx context.Context, id string, token string) error
	ClearSessionToken(ctx context.Context, token string) error
	Delete(ctx context.Context, id string) error
}
