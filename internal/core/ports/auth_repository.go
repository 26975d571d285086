package ports

import (
	"context"

	"github.com/cbtutils/novedades/internal/core/domain"
)

// UserRepository defines persistence for administrator accounts.
// Create returns domain.ErrConflict when the username is taken.
type UserRepository interface {
	Create(ctx context.Context, username, passwordHash string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) (*domain.User, error)
	Delete(ctx context.Context, id int64) (*domain.User, error)
}
