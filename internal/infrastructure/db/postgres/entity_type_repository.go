package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cbtutils/novedades/internal/core/domain"
)

// EntityTypeRepository implements ports.EntityTypeRepository.
type EntityTypeRepository struct {
	db DB
}

func NewEntityTypeRepository(db DB) *EntityTypeRepository {
	return &EntityTypeRepository{db: db}
}

func scanEntityType(row pgx.Row) (*domain.EntityType, error) {
	var t domain.EntityType
	if err := row.Scan(&t.ID, &t.Name); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *EntityTypeRepository) List(ctx context.Context) ([]domain.EntityType, error) {
	rows, err := QuerierFromCtx(ctx, r.db).Query(ctx, `SELECT id, nombre FROM tipos_entidades ORDER BY id`)
	if err != nil {
		return nil, mapError(err, "list entity types")
	}
	defer rows.Close()

	types := make([]domain.EntityType, 0)
	for rows.Next() {
		t, err := scanEntityType(rows)
		if err != nil {
			return nil, mapError(err, "scan entity type")
		}
		types = append(types, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "list entity types")
	}
	return types, nil
}

func (r *EntityTypeRepository) Create(ctx context.Context, t domain.EntityType) (*domain.EntityType, error) {
	row := QuerierFromCtx(ctx, r.db).QueryRow(ctx,
		`INSERT INTO tipos_entidades (nombre) VALUES ($1) RETURNING id, nombre`, t.Name)
	created, err := scanEntityType(row)
	if err != nil {
		return nil, mapError(err, "entity type "+t.Name)
	}
	return created, nil
}

func (r *EntityTypeRepository) Update(ctx context.Context, id int64, t domain.EntityType) (*domain.EntityType, error) {
	row := QuerierFromCtx(ctx, r.db).QueryRow(ctx,
		`UPDATE tipos_entidades SET nombre = $1 WHERE id = $2 RETURNING id, nombre`, t.Name, id)
	updated, err := scanEntityType(row)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("entity type %d", id))
	}
	return updated, nil
}

func (r *EntityTypeRepository) Delete(ctx context.Context, id int64) (*domain.EntityType, error) {
	row := QuerierFromCtx(ctx, r.db).QueryRow(ctx,
		`DELETE FROM tipos_entidades WHERE id = $1 RETURNING id, nombre`, id)
	deleted, err := scanEntityType(row)
	if err != nil {
		return nil, mapDeleteError(err, fmt.Sprintf("entity type %d", id))
	}
	return deleted, nil
}
