package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/cbtutils/novedades/internal/core/domain"
)

// AnnouncementRepository implements ports.AnnouncementRepository.
type AnnouncementRepository struct {
	s *Store
}

// withLinks attaches the ascending link ids; the caller holds the lock.
func (r *AnnouncementRepository) withLinks(a domain.Announcement) domain.Announcement {
	set := r.s.state.links[a.ID]
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	a.EntityIDs = ids
	return a
}

func (r *AnnouncementRepository) ListWithEntities(ctx context.Context) ([]domain.Announcement, error) {
	defer r.s.lock(ctx)()

	list := make([]domain.Announcement, 0, len(r.s.state.announcements))
	for _, a := range r.s.state.announcements {
		list = append(list, r.withLinks(a))
	}
	domain.SortAnnouncements(list)
	return list, nil
}

func (r *AnnouncementRepository) GetByID(ctx context.Context, id int64) (*domain.Announcement, error) {
	defer r.s.lock(ctx)()

	a, ok := r.s.state.announcements[id]
	if !ok {
		return nil, fmt.Errorf("announcement %d: %w", id, domain.ErrNotFound)
	}
	a = r.withLinks(a)
	return &a, nil
}

func (r *AnnouncementRepository) Create(ctx context.Context, a domain.Announcement) (*domain.Announcement, error) {
	defer r.s.lock(ctx)()

	if !a.Priority.Valid() {
		return nil, fmt.Errorf("create announcement: %w", domain.ErrValidation)
	}
	a.ID = r.s.state.next("announcements")
	a.EntityIDs = nil
	r.s.state.announcements[a.ID] = a
	return &a, nil
}

func (r *AnnouncementRepository) Update(ctx context.Context, id int64, a domain.Announcement) (*domain.Announcement, error) {
	defer r.s.lock(ctx)()

	if _, ok := r.s.state.announcements[id]; !ok {
		return nil, fmt.Errorf("announcement %d: %w", id, domain.ErrNotFound)
	}
	if !a.Priority.Valid() {
		return nil, fmt.Errorf("announcement %d: %w", id, domain.ErrValidation)
	}
	a.ID = id
	a.EntityIDs = nil
	r.s.state.announcements[id] = a
	return &a, nil
}

func (r *AnnouncementRepository) Delete(ctx context.Context, id int64) (*domain.Announcement, error) {
	defer r.s.lock(ctx)()

	a, ok := r.s.state.announcements[id]
	if !ok {
		return nil, fmt.Errorf("announcement %d: %w", id, domain.ErrNotFound)
	}
	delete(r.s.state.announcements, id)
	delete(r.s.state.links, id)
	return &a, nil
}

// ReplaceLinks checks every id before touching the set, so a failure leaves
// the previous links in place even outside a transaction.
func (r *AnnouncementRepository) ReplaceLinks(ctx context.Context, id int64, entityIDs []int64) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.state.announcements[id]; !ok {
		return fmt.Errorf("link announcement %d: %w", id, domain.ErrUnknownReference)
	}
	set := make(map[int64]struct{}, len(entityIDs))
	for _, entityID := range entityIDs {
		if _, ok := r.s.state.entities[entityID]; !ok {
			return fmt.Errorf("link announcement %d to entity %d: %w", id, entityID, domain.ErrUnknownReference)
		}
		set[entityID] = struct{}{}
	}
	r.s.state.links[id] = set
	return nil
}
