package ports

import (
	"context"

	"github.com/cbtutils/novedades/internal/core/domain"
)

// PasswordHasher hashes and checks secrets. Verify reports a mismatch as
// (false, nil); errors are reserved for malformed digests or cancellation.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) (bool, error)
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID int64, username string) (string, error)
}

type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}

type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	ChangePassword(ctx context.Context, id int64, password string) (*domain.User, error)
	Delete(ctx context.Context, id int64) (*domain.User, error)
}
