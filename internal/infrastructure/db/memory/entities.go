package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/cbtutils/novedades/internal/core/domain"
)

// EntityTypeRepository implements ports.EntityTypeRepository.
type EntityTypeRepository struct {
	s *Store
}

func (r *EntityTypeRepository) List(ctx context.Context) ([]domain.EntityType, error) {
	defer r.s.lock(ctx)()

	types := make([]domain.EntityType, 0, len(r.s.state.types))
	for id, name := range r.s.state.types {
		types = append(types, domain.EntityType{ID: id, Name: name})
	}
	slices.SortFunc(types, func(a, b domain.EntityType) int { return compareIDs(a.ID, b.ID) })
	return types, nil
}

func (r *EntityTypeRepository) Create(ctx context.Context, t domain.EntityType) (*domain.EntityType, error) {
	defer r.s.lock(ctx)()

	t.ID = r.s.state.next("types")
	r.s.state.types[t.ID] = t.Name
	return &t, nil
}

func (r *EntityTypeRepository) Update(ctx context.Context, id int64, t domain.EntityType) (*domain.EntityType, error) {
	defer r.s.lock(ctx)()

	if _, ok := r.s.state.types[id]; !ok {
		return nil, fmt.Errorf("entity type %d: %w", id, domain.ErrNotFound)
	}
	r.s.state.types[id] = t.Name
	return &domain.EntityType{ID: id, Name: t.Name}, nil
}

func (r *EntityTypeRepository) Delete(ctx context.Context, id int64) (*domain.EntityType, error) {
	defer r.s.lock(ctx)()

	name, ok := r.s.state.types[id]
	if !ok {
		return nil, fmt.Errorf("entity type %d: %w", id, domain.ErrNotFound)
	}
	for _, e := range r.s.state.entities {
		if e.typeID != nil && *e.typeID == id {
			return nil, fmt.Errorf("entity type %d: %w", id, domain.ErrInUse)
		}
	}
	delete(r.s.state.types, id)
	return &domain.EntityType{ID: id, Name: name}, nil
}

// EntityRepository implements ports.EntityRepository.
type EntityRepository struct {
	s *Store
}

// resolve builds the read model of entity id; the caller holds the lock.
func (r *EntityRepository) resolve(id int64, rec entityRecord) domain.Entity {
	e := domain.Entity{ID: id, Name: rec.name}
	if rec.typeID != nil {
		typeID := *rec.typeID
		e.TypeID = &typeID
		if name, ok := r.s.state.types[typeID]; ok {
			e.TypeName = &name
		}
	}
	return e
}

func (r *EntityRepository) ListWithType(ctx context.Context) ([]domain.Entity, error) {
	defer r.s.lock(ctx)()

	entities := make([]domain.Entity, 0, len(r.s.state.entities))
	for id, rec := range r.s.state.entities {
		entities = append(entities, r.resolve(id, rec))
	}
	slices.SortFunc(entities, func(a, b domain.Entity) int { return compareIDs(a.ID, b.ID) })
	return entities, nil
}

func (r *EntityRepository) GetByID(ctx context.Context, id int64) (*domain.Entity, error) {
	defer r.s.lock(ctx)()

	rec, ok := r.s.state.entities[id]
	if !ok {
		return nil, fmt.Errorf("entity %d: %w", id, domain.ErrNotFound)
	}
	e := r.resolve(id, rec)
	return &e, nil
}

func (r *EntityRepository) checkType(typeID *int64) error {
	if typeID == nil {
		return nil
	}
	if _, ok := r.s.state.types[*typeID]; !ok {
		return fmt.Errorf("entity type %d: %w", *typeID, domain.ErrUnknownReference)
	}
	return nil
}

func (r *EntityRepository) Create(ctx context.Context, e domain.Entity) (*domain.Entity, error) {
	defer r.s.lock(ctx)()

	if err := r.checkType(e.TypeID); err != nil {
		return nil, err
	}
	id := r.s.state.next("entities")
	rec := entityRecord{name: e.Name, typeID: cloneID(e.TypeID)}
	r.s.state.entities[id] = rec
	created := r.resolve(id, rec)
	return &created, nil
}

func (r *EntityRepository) Update(ctx context.Context, id int64, e domain.Entity) (*domain.Entity, error) {
	defer r.s.lock(ctx)()

	if _, ok := r.s.state.entities[id]; !ok {
		return nil, fmt.Errorf("entity %d: %w", id, domain.ErrNotFound)
	}
	if err := r.checkType(e.TypeID); err != nil {
		return nil, err
	}
	rec := entityRecord{name: e.Name, typeID: cloneID(e.TypeID)}
	r.s.state.entities[id] = rec
	updated := r.resolve(id, rec)
	return &updated, nil
}

func (r *EntityRepository) Delete(ctx context.Context, id int64) (*domain.Entity, error) {
	defer r.s.lock(ctx)()

	rec, ok := r.s.state.entities[id]
	if !ok {
		return nil, fmt.Errorf("entity %d: %w", id, domain.ErrNotFound)
	}
	for _, set := range r.s.state.links {
		if _, linked := set[id]; linked {
			return nil, fmt.Errorf("entity %d: %w", id, domain.ErrInUse)
		}
	}
	delete(r.s.state.entities, id)
	return &domain.Entity{ID: id, Name: rec.name, TypeID: cloneID(rec.typeID)}, nil
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
