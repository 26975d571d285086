package ports

import (
	"context"

	"github.com/cbtutils/novedades/internal/core/domain"
)

// EntityInput carries the writable fields of an entity.
type EntityInput struct {
	Name   string
	TypeID *int64
}

type EntityService interface {
	List(ctx context.Context) ([]domain.Entity, error)
	Create(ctx context.Context, in EntityInput) (*domain.Entity, error)
	Update(ctx context.Context, id int64, in EntityInput) (*domain.Entity, error)
	Delete(ctx context.Context, id int64) (*domain.Entity, error)
}

type EntityTypeService interface {
	List(ctx context.Context) ([]domain.EntityType, error)
	Create(ctx context.Context, name string) (*domain.EntityType, error)
	Update(ctx context.Context, id int64, name string) (*domain.EntityType, error)
	Delete(ctx context.Context, id int64) (*domain.EntityType, error)
}
