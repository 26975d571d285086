package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/cbtutils/novedades/internal/core/domain"
	"github.com/cbtutils/novedades/internal/core/ports"
	"github.com/cbtutils/novedades/internal/metrics"
)

const resourceAnnouncement = "announcement"

// AnnouncementService coordinates announcement writes: validate, write the
// row and its links in one transaction, re-read the stored row, then publish.
type AnnouncementService struct {
	repo   ports.AnnouncementRepository
	tx     ports.TxManager
	idem   ports.IdempotencyStore
	events publisher
	locks  *recordLocks
	now    func() time.Time
	logger zerolog.Logger
}

// NewAnnouncementService wires the service. idem may be nil, in which case
// idempotency keys are ignored.
func NewAnnouncementService(
	repo ports.AnnouncementRepository,
	tx ports.TxManager,
	broadcaster ports.Broadcaster,
	idem ports.IdempotencyStore,
	logger zerolog.Logger,
) *AnnouncementService {
	return &AnnouncementService{
		repo:   repo,
		tx:     tx,
		idem:   idem,
		events: publisher{broadcaster: broadcaster, now: time.Now, log: logger},
		locks:  &recordLocks{},
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the time source used for expiry filtering and event
// timestamps.
func (s *AnnouncementService) WithClock(now func() time.Time) *AnnouncementService {
	s.now = now
	s.events.now = now
	return s
}

// List returns announcements by priority then id. With ActiveOnly set,
// announcements that expired before today are left out.
func (s *AnnouncementService) List(ctx context.Context, in ports.ListAnnouncementsInput) ([]domain.Announcement, error) {
	list, err := s.repo.ListWithEntities(ctx)
	if err != nil {
		return nil, err
	}
	if !in.ActiveOnly {
		return list, nil
	}
	today := domain.DateOf(s.now())
	active := list[:0]
	for _, a := range list {
		if a.IsActiveOn(today) {
			active = append(active, a)
		}
	}
	return active, nil
}

func (s *AnnouncementService) Create(ctx context.Context, in ports.AnnouncementInput, idempotencyKey string) (created *domain.Announcement, err error) {
	defer func() { record(resourceAnnouncement, actionCreate, err) }()

	a := toAnnouncement(in)
	if err := a.Validate(); err != nil {
		return nil, err
	}

	// 1. Idempotent replay returns the first result without a write or event.
	if replayed := s.replay(ctx, idempotencyKey); replayed != nil {
		return replayed, nil
	}

	// 2. Row, links and canonical re-read commit together or not at all.
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		row, err := s.repo.Create(ctx, a)
		if err != nil {
			return err
		}
		if err := s.repo.ReplaceLinks(ctx, row.ID, domain.UniqueIDs(a.EntityIDs)); err != nil {
			return err
		}
		created, err = s.repo.GetByID(ctx, row.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	// 3. Committed: remember the key and tell subscribers.
	if idempotencyKey != "" && s.idem != nil {
		if err := s.idem.Remember(ctx, idempotencyKey, created.ID); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", idempotencyKey).Msg("idempotency key not stored")
		}
	}
	s.events.emit(ctx, domain.EventAnnouncementAdded, created.ID, created)
	s.logger.Info().Int64("id", created.ID).Int("priority", int(created.Priority)).Msg("announcement created")
	return created, nil
}

// replay returns the announcement a previous request with key created, or
// nil when the request must be processed. Store failures degrade to a miss.
func (s *AnnouncementService) replay(ctx context.Context, key string) *domain.Announcement {
	if key == "" || s.idem == nil {
		return nil
	}
	id, found, err := s.idem.Lookup(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, processing anyway")
		return nil
	}
	if !found {
		metrics.IdempotencyTotal.WithLabelValues("miss").Inc()
		return nil
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn().Err(err).Int64("id", id).Msg("idempotent replay read failed")
		}
		metrics.IdempotencyTotal.WithLabelValues("miss").Inc()
		return nil
	}
	metrics.IdempotencyTotal.WithLabelValues("hit").Inc()
	s.logger.Info().Str("idempotency_key", key).Int64("id", id).Msg("idempotent replay")
	return existing
}

// Update replaces every field and the complete link set of announcement id.
func (s *AnnouncementService) Update(ctx context.Context, id int64, in ports.AnnouncementInput) (updated *domain.Announcement, err error) {
	defer func() { record(resourceAnnouncement, actionUpdate, err) }()

	a := toAnnouncement(in)
	if err := a.Validate(); err != nil {
		return nil, err
	}

	defer s.locks.lock(id)()
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.Update(ctx, id, a); err != nil {
			return err
		}
		if err := s.repo.ReplaceLinks(ctx, id, domain.UniqueIDs(a.EntityIDs)); err != nil {
			return err
		}
		updated, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.events.emit(ctx, domain.EventAnnouncementEdited, updated.ID, updated)
	return updated, nil
}

// Delete removes announcement id together with its links.
func (s *AnnouncementService) Delete(ctx context.Context, id int64) (deleted *domain.Announcement, err error) {
	defer func() { record(resourceAnnouncement, actionDelete, err) }()

	defer s.locks.lock(id)()
	deleted, err = s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.events.emit(ctx, domain.EventAnnouncementDeleted, id, domain.DeletedRef{ID: id})
	return deleted, nil
}

func toAnnouncement(in ports.AnnouncementInput) domain.Announcement {
	return domain.Announcement{
		Title:       in.Title,
		Summary:     in.Summary,
		Description: in.Description,
		Priority:    domain.Priority(in.Priority),
		ExpiresOn:   in.ExpiresOn,
		EntityIDs:   in.EntityIDs,
	}
}
