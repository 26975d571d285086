package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/cbtutils/novedades/internal/core/domain"
)

func seed(t *testing.T, s *Store) (typeID int64, entityIDs []int64) {
	t.Helper()
	ctx := context.Background()

	area, err := s.EntityTypes().Create(ctx, domain.EntityType{Name: "Área"})
	if err != nil {
		t.Fatalf("create type: %v", err)
	}
	for _, name := range []string{"A", "B", "C"} {
		e, err := s.Entities().Create(ctx, domain.Entity{Name: name, TypeID: &area.ID})
		if err != nil {
			t.Fatalf("create entity: %v", err)
		}
		entityIDs = append(entityIDs, e.ID)
	}
	return area.ID, entityIDs
}

func TestTxManager_RollbackRestoresSnapshot(t *testing.T) {
	s := NewStore()
	_, ids := seed(t, s)
	ctx := context.Background()
	repo := s.Announcements()

	errBoom := errors.New("boom")
	err := s.TxManager().RunInTx(ctx, func(ctx context.Context) error {
		a, err := repo.Create(ctx, domain.Announcement{Title: "t", Description: "d", Priority: 1, ExpiresOn: domain.NewDate(2099, 1, 1)})
		if err != nil {
			return err
		}
		if err := repo.ReplaceLinks(ctx, a.ID, ids); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected errBoom, got %v", err)
	}

	list, _ := repo.ListWithEntities(ctx)
	if len(list) != 0 {
		t.Fatalf("expected rollback to drop the announcement, got %+v", list)
	}
}

func TestAnnouncementRepository_ReplaceLinks(t *testing.T) {
	s := NewStore()
	_, ids := seed(t, s)
	ctx := context.Background()
	repo := s.Announcements()

	a, _ := repo.Create(ctx, domain.Announcement{Title: "t", Description: "d", Priority: 2, ExpiresOn: domain.NewDate(2099, 1, 1)})
	if err := repo.ReplaceLinks(ctx, a.ID, []int64{ids[1], ids[0], ids[1]}); err != nil {
		t.Fatalf("ReplaceLinks: %v", err)
	}
	if err := repo.ReplaceLinks(ctx, a.ID, []int64{ids[2], 999}); !errors.Is(err, domain.ErrUnknownReference) {
		t.Fatalf("expected ErrUnknownReference, got %v", err)
	}

	got, _ := repo.GetByID(ctx, a.ID)
	if len(got.EntityIDs) != 2 || got.EntityIDs[0] != ids[0] || got.EntityIDs[1] != ids[1] {
		t.Fatalf("failed replacement must keep previous links, got %v", got.EntityIDs)
	}
}

func TestDeleteRestrictions(t *testing.T) {
	s := NewStore()
	typeID, ids := seed(t, s)
	ctx := context.Background()

	a, _ := s.Announcements().Create(ctx, domain.Announcement{Title: "t", Description: "d", Priority: 3, ExpiresOn: domain.NewDate(2099, 1, 1)})
	_ = s.Announcements().ReplaceLinks(ctx, a.ID, []int64{ids[0]})

	if _, err := s.Entities().Delete(ctx, ids[0]); !errors.Is(err, domain.ErrInUse) {
		t.Fatalf("expected ErrInUse for linked entity, got %v", err)
	}
	if _, err := s.EntityTypes().Delete(ctx, typeID); !errors.Is(err, domain.ErrInUse) {
		t.Fatalf("expected ErrInUse for referenced type, got %v", err)
	}

	if _, err := s.Announcements().Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete announcement: %v", err)
	}
	if _, err := s.Entities().Delete(ctx, ids[0]); err != nil {
		t.Fatalf("links must cascade with the announcement: %v", err)
	}
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	users := NewStore().Users()
	ctx := context.Background()

	if _, err := users.Create(ctx, "alice", "h"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := users.Create(ctx, "alice", "h"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := users.Delete(ctx, 42); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
