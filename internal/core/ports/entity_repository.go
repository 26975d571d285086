package ports

import (
	"context"

	"github.com/cbtutils/novedades/internal/core/domain"
)

// EntityRepository persists entities. Reads resolve the entity type name.
type EntityRepository interface {
	ListWithType(ctx context.Context) ([]domain.Entity, error)
	GetByID(ctx context.Context, id int64) (*domain.Entity, error)
	Create(ctx context.Context, e domain.Entity) (*domain.Entity, error)
	Update(ctx context.Context, id int64, e domain.Entity) (*domain.Entity, error)
	Delete(ctx context.Context, id int64) (*domain.Entity, error)
}

// EntityTypeRepository persists entity types. Delete returns domain.ErrInUse
// while entities still reference the type.
type EntityTypeRepository interface {
	List(ctx context.Context) ([]domain.EntityType, error)
	Create(ctx context.Context, t domain.EntityType) (*domain.EntityType, error)
	Update(ctx context.Context, id int64, t domain.EntityType) (*domain.EntityType, error)
	Delete(ctx context.Context, id int64) (*domain.EntityType, error)
}
