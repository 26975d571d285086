package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cbtutils/novedades/internal/core/domain"
)

const (
	entitySelectSQL = `SELECT e.id, e.nombre, e.tipo_id, t.nombre
FROM entidades e
LEFT JOIN tipos_entidades t ON t.id = e.tipo_id`

	entityInsertSQL = `WITH ins AS (
    INSERT INTO entidades (nombre, tipo_id) VALUES ($1, $2)
    RETURNING id, nombre, tipo_id
)
SELECT ins.id, ins.nombre, ins.tipo_id, t.nombre
FROM ins
LEFT JOIN tipos_entidades t ON t.id = ins.tipo_id`

	entityUpdateSQL = `WITH upd AS (
    UPDATE entidades SET nombre = $1, tipo_id = $2 WHERE id = $3
    RETURNING id, nombre, tipo_id
)
SELECT upd.id, upd.nombre, upd.tipo_id, t.nombre
FROM upd
LEFT JOIN tipos_entidades t ON t.id = upd.tipo_id`
)

// EntityRepository implements ports.EntityRepository.
type EntityRepository struct {
	db DB
}

func NewEntityRepository(db DB) *EntityRepository {
	return &EntityRepository{db: db}
}

func scanEntity(row pgx.Row) (*domain.Entity, error) {
	var e domain.Entity
	if err := row.Scan(&e.ID, &e.Name, &e.TypeID, &e.TypeName); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListWithType returns every entity with its type name resolved, ordered by id.
func (r *EntityRepository) ListWithType(ctx context.Context) ([]domain.Entity, error) {
	rows, err := QuerierFromCtx(ctx, r.db).Query(ctx, entitySelectSQL+` ORDER BY e.id`)
	if err != nil {
		return nil, mapError(err, "list entities")
	}
	defer rows.Close()

	entities := make([]domain.Entity, 0)
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, mapError(err, "scan entity")
		}
		entities = append(entities, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "list entities")
	}
	return entities, nil
}

func (r *EntityRepository) GetByID(ctx context.Context, id int64) (*domain.Entity, error) {
	row := QuerierFromCtx(ctx, r.db).QueryRow(ctx, entitySelectSQL+` WHERE e.id = $1`, id)
	e, err := scanEntity(row)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("entity %d", id))
	}
	return e, nil
}

func (r *EntityRepository) Create(ctx context.Context, e domain.Entity) (*domain.Entity, error) {
	row := QuerierFromCtx(ctx, r.db).QueryRow(ctx, entityInsertSQL, e.Name, e.TypeID)
	created, err := scanEntity(row)
	if err != nil {
		return nil, mapError(err, "entity "+e.Name)
	}
	return created, nil
}

func (r *EntityRepository) Update(ctx context.Context, id int64, e domain.Entity) (*domain.Entity, error) {
	row := QuerierFromCtx(ctx, r.db).QueryRow(ctx, entityUpdateSQL, e.Name, e.TypeID, id)
	updated, err := scanEntity(row)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("entity %d", id))
	}
	return updated, nil
}

func (r *EntityRepository) Delete(ctx context.Context, id int64) (*domain.Entity, error) {
	var e domain.Entity
	err := QuerierFromCtx(ctx, r.db).QueryRow(ctx,
		`DELETE FROM entidades WHERE id = $1 RETURNING id, nombre, tipo_id`, id).
		Scan(&e.ID, &e.Name, &e.TypeID)
	if err != nil {
		return nil, mapDeleteError(err, fmt.Sprintf("entity %d", id))
	}
	return &e, nil
}
