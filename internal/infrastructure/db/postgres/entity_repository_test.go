package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/cbtutils/novedades/internal/core/domain"
)

func int64Ptr(v int64) *int64    { return &v }
func stringPtr(v string) *string { return &v }

func TestEntityRepository_ListWithType(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`LEFT JOIN tipos_entidades t ON t.id = e.tipo_id ORDER BY e.id`)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "nombre", "tipo_id", "nombre"}).
			AddRow(int64(1), "Finanzas", int64Ptr(2), stringPtr("Área")).
			AddRow(int64(2), "Suelta", nil, nil))

	list, err := NewEntityRepository(mock).ListWithType(context.Background())
	if err != nil {
		t.Fatalf("ListWithType() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(list))
	}
	if list[0].TypeName == nil || *list[0].TypeName != "Área" || *list[0].TypeID != 2 {
		t.Errorf("unexpected first entity: %+v", list[0])
	}
	if list[1].TypeID != nil || list[1].TypeName != nil {
		t.Errorf("expected untyped entity, got %+v", list[1])
	}
	expectationsMet(t, mock)
}

func TestEntityRepository_Create_UnknownType(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO entidades (nombre, tipo_id)`)).
		WithArgs("Finanzas", int64Ptr(77)).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := NewEntityRepository(mock).Create(context.Background(), domain.Entity{Name: "Finanzas", TypeID: int64Ptr(77)})
	if !errors.Is(err, domain.ErrUnknownReference) {
		t.Fatalf("expected ErrUnknownReference, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestEntityRepository_Delete(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr error
	}{
		{
			name: "deleted",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM entidades WHERE id = $1`)).
					WithArgs(int64(4)).
					WillReturnRows(pgxmock.NewRows([]string{"id", "nombre", "tipo_id"}).
						AddRow(int64(4), "Finanzas", int64Ptr(1)))
			},
		},
		{
			name: "linked to an announcement",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM entidades WHERE id = $1`)).
					WithArgs(int64(4)).
					WillReturnError(&pgconn.PgError{Code: "23503"})
			},
			wantErr: domain.ErrInUse,
		},
		{
			name: "missing",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM entidades WHERE id = $1`)).
					WithArgs(int64(4)).
					WillReturnRows(pgxmock.NewRows([]string{"id", "nombre", "tipo_id"}))
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.setup(mock)

			_, err := NewEntityRepository(mock).Delete(context.Background(), 4)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Delete() error = %v, want %v", err, tt.wantErr)
			}
			expectationsMet(t, mock)
		})
	}
}

func TestEntityTypeRepository_Delete_InUse(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM tipos_entidades WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := NewEntityTypeRepository(mock).Delete(context.Background(), 1)
	if !errors.Is(err, domain.ErrInUse) {
		t.Fatalf("expected ErrInUse, got %v", err)
	}
	expectationsMet(t, mock)
}
