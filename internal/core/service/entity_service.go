package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cbtutils/novedades/internal/core/domain"
	"github.com/cbtutils/novedades/internal/core/ports"
)

const (
	resourceEntity     = "entity"
	resourceEntityType = "entity_type"
)

// EntityService coordinates entity writes and publishes each committed change.
type EntityService struct {
	repo   ports.EntityRepository
	tx     ports.TxManager
	events publisher
	locks  *recordLocks
}

func NewEntityService(repo ports.EntityRepository, tx ports.TxManager, broadcaster ports.Broadcaster, logger zerolog.Logger) *EntityService {
	return &EntityService{
		repo:   repo,
		tx:     tx,
		events: publisher{broadcaster: broadcaster, now: time.Now, log: logger},
		locks:  &recordLocks{},
	}
}

func (s *EntityService) List(ctx context.Context) ([]domain.Entity, error) {
	return s.repo.ListWithType(ctx)
}

func (s *EntityService) Create(ctx context.Context, in ports.EntityInput) (created *domain.Entity, err error) {
	defer func() { record(resourceEntity, actionCreate, err) }()

	e := domain.Entity{Name: strings.TrimSpace(in.Name), TypeID: in.TypeID}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		row, err := s.repo.Create(ctx, e)
		if err != nil {
			return err
		}
		created, err = s.repo.GetByID(ctx, row.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.events.emit(ctx, domain.EventEntityAdded, created.ID, created)
	return created, nil
}

func (s *EntityService) Update(ctx context.Context, id int64, in ports.EntityInput) (updated *domain.Entity, err error) {
	defer func() { record(resourceEntity, actionUpdate, err) }()

	e := domain.Entity{Name: strings.TrimSpace(in.Name), TypeID: in.TypeID}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	defer s.locks.lock(id)()
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.Update(ctx, id, e); err != nil {
			return err
		}
		updated, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.events.emit(ctx, domain.EventEntityEdited, updated.ID, updated)
	return updated, nil
}

// Delete fails with domain.ErrInUse while announcements link to the entity.
func (s *EntityService) Delete(ctx context.Context, id int64) (deleted *domain.Entity, err error) {
	defer func() { record(resourceEntity, actionDelete, err) }()

	defer s.locks.lock(id)()
	deleted, err = s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.events.emit(ctx, domain.EventEntityDeleted, id, domain.DeletedRef{ID: id})
	return deleted, nil
}

// EntityTypeService coordinates entity type writes.
type EntityTypeService struct {
	repo   ports.EntityTypeRepository
	events publisher
	locks  *recordLocks
}

func NewEntityTypeService(repo ports.EntityTypeRepository, broadcaster ports.Broadcaster, logger zerolog.Logger) *EntityTypeService {
	return &EntityTypeService{
		repo:   repo,
		events: publisher{broadcaster: broadcaster, now: time.Now, log: logger},
		locks:  &recordLocks{},
	}
}

func (s *EntityTypeService) List(ctx context.Context) ([]domain.EntityType, error) {
	return s.repo.List(ctx)
}

func (s *EntityTypeService) Create(ctx context.Context, name string) (created *domain.EntityType, err error) {
	defer func() { record(resourceEntityType, actionCreate, err) }()

	t := domain.EntityType{Name: strings.TrimSpace(name)}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	created, err = s.repo.Create(ctx, t)
	if err != nil {
		return nil, err
	}
	s.events.emit(ctx, domain.EventEntityTypeAdded, created.ID, created)
	return created, nil
}

func (s *EntityTypeService) Update(ctx context.Context, id int64, name string) (updated *domain.EntityType, err error) {
	defer func() { record(resourceEntityType, actionUpdate, err) }()

	t := domain.EntityType{Name: strings.TrimSpace(name)}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	defer s.locks.lock(id)()
	updated, err = s.repo.Update(ctx, id, t)
	if err != nil {
		return nil, err
	}
	s.events.emit(ctx, domain.EventEntityTypeEdited, updated.ID, updated)
	return updated, nil
}

// Delete fails with domain.ErrInUse while entities still reference the type.
func (s *EntityTypeService) Delete(ctx context.Context, id int64) (deleted *domain.EntityType, err error) {
	defer func() { record(resourceEntityType, actionDelete, err) }()

	defer s.locks.lock(id)()
	deleted, err = s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.events.emit(ctx, domain.EventEntityTypeDeleted, id, domain.DeletedRef{ID: id})
	return deleted, nil
}
