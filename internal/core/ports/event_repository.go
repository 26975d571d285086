package ports

import (
	"context"

	"github.com/cbtutils/novedades/internal/core/domain"
)

// AuditRepository keeps a trail of every change event that was published.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event domain.ChangeEvent) error
}
