package ports

import (
	"context"

	"github.com/cbtutils/novedades/internal/core/domain"
)

// AnnouncementRepository persists announcements and their entity links.
// Update, Delete and GetByID return domain.ErrNotFound for a missing id.
type AnnouncementRepository interface {
	// ListWithEntities returns every announcement with its linked entity ids,
	// ordered by priority then id.
	ListWithEntities(ctx context.Context) ([]domain.Announcement, error)
	GetByID(ctx context.Context, id int64) (*domain.Announcement, error)
	Create(ctx context.Context, a domain.Announcement) (*domain.Announcement, error)
	Update(ctx context.Context, id int64, a domain.Announcement) (*domain.Announcement, error)
	Delete(ctx context.Context, id int64) (*domain.Announcement, error)
	// ReplaceLinks makes entityIDs the complete link set of announcement id.
	// It is atomic on its own and joins the caller's transaction when present.
	ReplaceLinks(ctx context.Context, id int64, entityIDs []int64) error
}
