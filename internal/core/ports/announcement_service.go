package ports

import (
	"context"

	"github.com/cbtutils/novedades/internal/core/domain"
)

// AnnouncementInput is the DTO passed from the transport layer.
type AnnouncementInput struct {
	Title       string
	Summary     string
	Description string
	Priority    int
	ExpiresOn   domain.Date
	EntityIDs   []int64
}

// ListAnnouncementsInput filters the list read. ActiveOnly drops announcements
// whose expiry date is before today.
type ListAnnouncementsInput struct {
	ActiveOnly bool
}

type AnnouncementService interface {
	List(ctx context.Context, in ListAnnouncementsInput) ([]domain.Announcement, error)
	// Create honours idempotencyKey when non-empty: a repeated key returns the
	// announcement created the first time.
	Create(ctx context.Context, in AnnouncementInput, idempotencyKey string) (*domain.Announcement, error)
	Update(ctx context.Context, id int64, in AnnouncementInput) (*domain.Announcement, error)
	Delete(ctx context.Context, id int64) (*domain.Announcement, error)
}
