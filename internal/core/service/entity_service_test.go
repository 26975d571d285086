package service

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cbtutils/novedades/internal/core/domain"
	"github.com/cbtutils/novedades/internal/core/ports"
	"github.com/cbtutils/novedades/internal/infrastructure/db/memory"
)

func TestEntityServices_Lifecycle(t *testing.T) {
	store := memory.NewStore()
	events := &stubBroadcaster{}
	types := NewEntityTypeService(store.EntityTypes(), events, zerolog.Nop())
	entities := NewEntityService(store.Entities(), store.TxManager(), events, zerolog.Nop())
	ctx := context.Background()

	area, err := types.Create(ctx, " Área ")
	if err != nil {
		t.Fatalf("create type: %v", err)
	}
	if area.Name != "Área" {
		t.Fatalf("expected trimmed name, got %q", area.Name)
	}

	e, err := entities.Create(ctx, ports.EntityInput{Name: "Sistemas", TypeID: &area.ID})
	if err != nil {
		t.Fatalf("create entity: %v", err)
	}
	if e.TypeName == nil || *e.TypeName != "Área" {
		t.Fatalf("expected resolved type name, got %v", e.TypeName)
	}

	if _, err := types.Delete(ctx, area.ID); !errors.Is(err, domain.ErrInUse) {
		t.Fatalf("expected ErrInUse while referenced, got %v", err)
	}

	renamed, err := types.Update(ctx, area.ID, "Departamento")
	if err != nil {
		t.Fatalf("rename type: %v", err)
	}
	if renamed.Name != "Departamento" {
		t.Fatalf("unexpected rename result: %+v", renamed)
	}

	if _, err := entities.Update(ctx, e.ID, ports.EntityInput{Name: "Sistemas", TypeID: nil}); err != nil {
		t.Fatalf("detach type: %v", err)
	}
	if _, err := entities.Delete(ctx, e.ID); err != nil {
		t.Fatalf("delete entity: %v", err)
	}
	if _, err := types.Delete(ctx, area.ID); err != nil {
		t.Fatalf("delete type: %v", err)
	}

	want := []domain.EventName{
		domain.EventEntityTypeAdded,
		domain.EventEntityAdded,
		domain.EventEntityTypeEdited,
		domain.EventEntityEdited,
		domain.EventEntityDeleted,
		domain.EventEntityTypeDeleted,
	}
	if got := events.names(); !slices.Equal(got, want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}

	var edited domain.Entity
	if err := json.Unmarshal(events.events[3].Data, &edited); err != nil {
		t.Fatalf("decode entity-edited: %v", err)
	}
	if edited.TypeID != nil || edited.TypeName != nil {
		t.Fatalf("expected detached entity in payload, got %+v", edited)
	}
}

func TestEntityService_Validation(t *testing.T) {
	store := memory.NewStore()
	events := &stubBroadcaster{}
	entities := NewEntityService(store.Entities(), store.TxManager(), events, zerolog.Nop())
	types := NewEntityTypeService(store.EntityTypes(), events, zerolog.Nop())
	ctx := context.Background()

	if _, err := entities.Create(ctx, ports.EntityInput{Name: "  "}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
	missing := int64(77)
	if _, err := entities.Create(ctx, ports.EntityInput{Name: "X", TypeID: &missing}); !errors.Is(err, domain.ErrUnknownReference) {
		t.Fatalf("expected ErrUnknownReference, got %v", err)
	}
	if _, err := types.Create(ctx, ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for blank type, got %v", err)
	}
	if _, err := entities.Update(ctx, 5, ports.EntityInput{Name: "X"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(events.events) != 0 {
		t.Fatalf("failed writes must not broadcast, got %v", events.names())
	}
}

func TestResultLabel(t *testing.T) {
	tests := map[string]error{
		"ok":         nil,
		"validation": domain.NewValidationError("", "titulo"),
		"not_found":  domain.ErrNotFound,
		"conflict":   domain.ErrInUse,
		"error":      errors.New("boom"),
	}
	for want, err := range tests {
		if got := resultLabel(err); got != want {
			t.Fatalf("resultLabel(%v) = %q, want %q", err, got, want)
		}
	}
}
