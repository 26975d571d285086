package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cbtutils/novedades/internal/core/domain"
	"github.com/cbtutils/novedades/internal/core/ports"
)

// UserService manages existing administrator accounts. User changes are
// not broadcast.
type UserService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	logger zerolog.Logger
}

func NewUserService(users ports.UserRepository, hasher ports.PasswordHasher, logger zerolog.Logger) *UserService {
	return &UserService{users: users, hasher: hasher, logger: logger}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) ChangePassword(ctx context.Context, id int64, password string) (user *domain.User, err error) {
	defer func() { record(resourceUser, actionUpdate, err) }()

	if password == "" {
		return nil, domain.NewValidationError("", "password")
	}
	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("change password: %w", err)
	}
	return s.users.UpdatePassword(ctx, id, hash)
}

func (s *UserService) Delete(ctx context.Context, id int64) (user *domain.User, err error) {
	defer func() { record(resourceUser, actionDelete, err) }()

	user, err = s.users.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return user, nil
}
