package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cbtutils/novedades/internal/core/domain"
)

const (
	announcementColumns = `id, titulo, resumen, descripcion, prioridad, fecha_caducidad`

	announcementSelectSQL = `SELECT n.id, n.titulo, n.resumen, n.descripcion, n.prioridad, n.fecha_caducidad,
       COALESCE(array_agg(ne.entidad_id ORDER BY ne.entidad_id) FILTER (WHERE ne.entidad_id IS NOT NULL), '{}')
FROM novedades n
LEFT JOIN novedad_entidades ne ON ne.novedad_id = n.id`
)

// AnnouncementRepository implements ports.AnnouncementRepository.
type AnnouncementRepository struct {
	db DB
	tx *TxManager
}

func NewAnnouncementRepository(db DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db, tx: NewTxManager(db)}
}

// announcementRow mirrors a novedades row; toDomain is the only place column
// types are converted.
type announcementRow struct {
	id          int64
	title       string
	summary     string
	description string
	priority    int16
	expiresOn   time.Time
	entityIDs   []int64
}

func (r announcementRow) toDomain() *domain.Announcement {
	return &domain.Announcement{
		ID:          r.id,
		Title:       r.title,
		Summary:     r.summary,
		Description: r.description,
		Priority:    domain.Priority(r.priority),
		ExpiresOn:   domain.DateOf(r.expiresOn),
		EntityIDs:   r.entityIDs,
	}
}

func scanAnnouncement(row pgx.Row, withLinks bool) (*domain.Announcement, error) {
	var r announcementRow
	dest := []any{&r.id, &r.title, &r.summary, &r.description, &r.priority, &r.expiresOn}
	if withLinks {
		dest = append(dest, &r.entityIDs)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return r.toDomain(), nil
}

// ListWithEntities returns every announcement, expired ones included, with
// the ids of its linked entities.
func (r *AnnouncementRepository) ListWithEntities(ctx context.Context) ([]domain.Announcement, error) {
	rows, err := QuerierFromCtx(ctx, r.db).Query(ctx,
		announcementSelectSQL+` GROUP BY n.id ORDER BY n.prioridad ASC, n.id ASC`)
	if err != nil {
		return nil, mapError(err, "list announcements")
	}
	defer rows.Close()

	list := make([]domain.Announcement, 0)
	for rows.Next() {
		a, err := scanAnnouncement(rows, true)
		if err != nil {
			return nil, mapError(err, "scan announcement")
		}
		list = append(list, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "list announcements")
	}
	return list, nil
}

func (r *AnnouncementRepository) GetByID(ctx context.Context, id int64) (*domain.Announcement, error) {
	row := QuerierFromCtx(ctx, r.db).QueryRow(ctx,
		announcementSelectSQL+` WHERE n.id = $1 GROUP BY n.id`, id)
	a, err := scanAnnouncement(row, true)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("announcement %d", id))
	}
	return a, nil
}

// Create inserts the announcement row only; links are written by ReplaceLinks.
func (r *AnnouncementRepository) Create(ctx context.Context, a domain.Announcement) (*domain.Announcement, error) {
	row := QuerierFromCtx(ctx, r.db).QueryRow(ctx,
		`INSERT INTO novedades (titulo, resumen, descripcion, prioridad, fecha_caducidad)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+announcementColumns,
		a.Title, a.Summary, a.Description, int16(a.Priority), a.ExpiresOn.Time())
	created, err := scanAnnouncement(row, false)
	if err != nil {
		return nil, mapError(err, "create announcement")
	}
	return created, nil
}

// Update rewrites the announcement row. The row lock it takes is held until
// the surrounding transaction ends, serializing concurrent edits.
func (r *AnnouncementRepository) Update(ctx context.Context, id int64, a domain.Announcement) (*domain.Announcement, error) {
	row := QuerierFromCtx(ctx, r.db).QueryRow(ctx,
		`UPDATE novedades
SET titulo = $1, resumen = $2, descripcion = $3, prioridad = $4, fecha_caducidad = $5, updated_at = NOW()
WHERE id = $6
RETURNING `+announcementColumns,
		a.Title, a.Summary, a.Description, int16(a.Priority), a.ExpiresOn.Time(), id)
	updated, err := scanAnnouncement(row, false)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("announcement %d", id))
	}
	return updated, nil
}

// Delete removes the announcement; its links go with it (ON DELETE CASCADE).
func (r *AnnouncementRepository) Delete(ctx context.Context, id int64) (*domain.Announcement, error) {
	row := QuerierFromCtx(ctx, r.db).QueryRow(ctx,
		`DELETE FROM novedades WHERE id = $1 RETURNING `+announcementColumns, id)
	deleted, err := scanAnnouncement(row, false)
	if err != nil {
		return nil, mapDeleteError(err, fmt.Sprintf("announcement %d", id))
	}
	return deleted, nil
}

// ReplaceLinks swaps the link set of announcement id for entityIDs in one
// transaction. Repeated ids are written once.
func (r *AnnouncementRepository) ReplaceLinks(ctx context.Context, id int64, entityIDs []int64) error {
	ids := domain.UniqueIDs(entityIDs)

	return r.tx.RunInTx(ctx, func(ctx context.Context) error {
		q := QuerierFromCtx(ctx, r.db)

		if _, err := q.Exec(ctx, `DELETE FROM novedad_entidades WHERE novedad_id = $1`, id); err != nil {
			return mapError(err, fmt.Sprintf("clear links of announcement %d", id))
		}
		if len(ids) == 0 {
			return nil
		}

		insert := psql.Insert("novedad_entidades").Columns("novedad_id", "entidad_id")
		for _, entityID := range ids {
			insert = insert.Values(id, entityID)
		}
		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("build link insert: %w", err)
		}

		if _, err := q.Exec(ctx, query, args...); err != nil {
			return mapError(err, fmt.Sprintf("link announcement %d", id))
		}
		return nil
	})
}
