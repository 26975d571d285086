package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/cbtutils/novedades/internal/core/domain"
)

// UserRepository implements ports.UserRepository.
type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	defer r.s.lock(ctx)()

	for _, u := range r.s.state.users {
		if u.Username == username {
			return nil, fmt.Errorf("user %s: %w", username, domain.ErrConflict)
		}
	}
	now := time.Now().UTC()
	u := domain.User{
		ID:           r.s.state.next("users"),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.s.state.users[u.ID] = u
	return &u, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	defer r.s.lock(ctx)()

	for _, u := range r.s.state.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", username, domain.ErrNotFound)
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	defer r.s.lock(ctx)()

	users := make([]domain.User, 0, len(r.s.state.users))
	for _, u := range r.s.state.users {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b domain.User) int { return compareIDs(a.ID, b.ID) })
	return users, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) (*domain.User, error) {
	defer r.s.lock(ctx)()

	u, ok := r.s.state.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	r.s.state.users[id] = u
	return &u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) (*domain.User, error) {
	defer r.s.lock(ctx)()

	u, ok := r.s.state.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	delete(r.s.state.users, id)
	return &u, nil
}

func compareIDs(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
