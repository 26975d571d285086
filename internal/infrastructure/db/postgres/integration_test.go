//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cbtutils/novedades/internal/core/domain"
)

var (
	containerOnce sync.Once
	sharedDSN     string
	containerErr  error
)

// setupTestDB starts one PostgreSQL container for the whole run, applies the
// embedded migrations and returns a pool whose tables are truncated.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	containerOnce.Do(func() {
		sharedDSN, containerErr = startContainer()
	})
	if containerErr != nil {
		t.Fatalf("setup test DB: %v", containerErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, sharedDSN)
	if err != nil {
		t.Fatalf("pgxpool.New: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE novedad_entidades, novedades, entidades, tipos_entidades, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return pool
}

func startContainer() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "testuser",
				"POSTGRES_PASSWORD": "testpass",
				"POSTGRES_DB":       "testdb",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("get mapped port: %w", err)
	}
	return fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port()), nil
}

func TestIntegration_AnnouncementLinksReplacedAtomically(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	types := NewEntityTypeRepository(pool)
	entities := NewEntityRepository(pool)
	announcements := NewAnnouncementRepository(pool)
	txm := NewTxManager(pool)

	area, err := types.Create(ctx, domain.EntityType{Name: "Área"})
	if err != nil {
		t.Fatalf("create type: %v", err)
	}
	var ids []int64
	for _, name := range []string{"A", "B", "C"} {
		e, err := entities.Create(ctx, domain.Entity{Name: name, TypeID: &area.ID})
		if err != nil {
			t.Fatalf("create entity %s: %v", name, err)
		}
		if e.TypeName == nil || *e.TypeName != "Área" {
			t.Fatalf("expected type name on created entity, got %+v", e)
		}
		ids = append(ids, e.ID)
	}

	var created *domain.Announcement
	err = txm.RunInTx(ctx, func(ctx context.Context) error {
		row, err := announcements.Create(ctx, domain.Announcement{
			Title: "T", Description: "D", Priority: domain.PriorityHigh, ExpiresOn: domain.NewDate(2099, 1, 1),
		})
		if err != nil {
			return err
		}
		if err := announcements.ReplaceLinks(ctx, row.ID, []int64{ids[1], ids[0], ids[1]}); err != nil {
			return err
		}
		created, err = announcements.GetByID(ctx, row.ID)
		return err
	})
	if err != nil {
		t.Fatalf("create announcement: %v", err)
	}
	if len(created.EntityIDs) != 2 || created.EntityIDs[0] != ids[0] || created.EntityIDs[1] != ids[1] {
		t.Fatalf("expected links %v, got %v", ids[:2], created.EntityIDs)
	}

	// A failing replacement must leave the previous set intact.
	err = txm.RunInTx(ctx, func(ctx context.Context) error {
		return announcements.ReplaceLinks(ctx, created.ID, []int64{ids[2], 999999})
	})
	if !errors.Is(err, domain.ErrUnknownReference) {
		t.Fatalf("expected ErrUnknownReference, got %v", err)
	}
	got, err := announcements.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.EntityIDs) != 2 {
		t.Fatalf("links changed after rollback: %v", got.EntityIDs)
	}

	if err := announcements.ReplaceLinks(ctx, created.ID, []int64{ids[2]}); err != nil {
		t.Fatalf("ReplaceLinks: %v", err)
	}
	got, _ = announcements.GetByID(ctx, created.ID)
	if len(got.EntityIDs) != 1 || got.EntityIDs[0] != ids[2] {
		t.Fatalf("expected only %d, got %v", ids[2], got.EntityIDs)
	}

	if _, err := entities.Delete(ctx, ids[2]); !errors.Is(err, domain.ErrInUse) {
		t.Fatalf("expected ErrInUse deleting a linked entity, got %v", err)
	}
	if _, err := types.Delete(ctx, area.ID); !errors.Is(err, domain.ErrInUse) {
		t.Fatalf("expected ErrInUse deleting a referenced type, got %v", err)
	}

	if _, err := announcements.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := entities.Delete(ctx, ids[2]); err != nil {
		t.Fatalf("entity should be deletable once unlinked: %v", err)
	}
}

func TestIntegration_ListOrderAndDuplicateUser(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	announcements := NewAnnouncementRepository(pool)
	users := NewUserRepository(pool)

	for _, p := range []domain.Priority{domain.PriorityLow, domain.PriorityHigh, domain.PriorityLow} {
		if _, err := announcements.Create(ctx, domain.Announcement{
			Title: "T", Description: "D", Priority: p, ExpiresOn: domain.NewDate(2000, 1, 1),
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := announcements.ListWithEntities(ctx)
	if err != nil {
		t.Fatalf("ListWithEntities: %v", err)
	}
	if len(list) != 3 || list[0].ID != 2 || list[1].ID != 1 || list[2].ID != 3 {
		t.Fatalf("unexpected order: %+v", list)
	}

	if _, err := users.Create(ctx, "alice", "h"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := users.Create(ctx, "alice", "h"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}
