package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cbtutils/novedades/internal/core/domain"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// mapError converts pgx/pgconn errors to domain errors. what names the
// record, e.g. "announcement 12". Context errors pass through unmapped.
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", what, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w", what, domain.ErrConflict)
		case codeForeignKeyViolation:
			return fmt.Errorf("%s: %w", what, domain.ErrUnknownReference)
		case codeCheckViolation:
			return fmt.Errorf("%s: %w", what, domain.ErrValidation)
		}
	}

	return fmt.Errorf("%s: %w", what, err)
}

// mapDeleteError is mapError for deletes, where a foreign key violation
// means other rows still point at the record.
func mapDeleteError(err error, what string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation {
		return fmt.Errorf("%s: %w", what, domain.ErrInUse)
	}
	return mapError(err, what)
}
