package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cbtutils/novedades/internal/core/domain"
)

const userColumns = `id, username, password_hash, created_at, updated_at`

// UserRepository implements ports.UserRepository.
type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	row := QuerierFromCtx(ctx, r.db).QueryRow(ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING `+userColumns,
		username, passwordHash)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapError(err, "user "+username)
	}
	return u, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := QuerierFromCtx(ctx, r.db).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapError(err, "user "+username)
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := QuerierFromCtx(ctx, r.db).Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, mapError(err, "list users")
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapError(err, "scan user")
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "list users")
	}
	return users, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) (*domain.User, error) {
	row := QuerierFromCtx(ctx, r.db).QueryRow(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2 RETURNING `+userColumns,
		passwordHash, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("user %d", id))
	}
	return u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) (*domain.User, error) {
	row := QuerierFromCtx(ctx, r.db).QueryRow(ctx,
		`DELETE FROM users WHERE id = $1 RETURNING `+userColumns, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapDeleteError(err, fmt.Sprintf("user %d", id))
	}
	return u, nil
}
