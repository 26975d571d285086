package postgres

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func expectationsMet(t *testing.T, mock pgxmock.PgxPoolIface) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestTxManager_RunInTx(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name    string
		fnErr   error
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr error
	}{
		{
			name: "commit on success",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectCommit()
			},
		},
		{
			name:  "rollback on error",
			fnErr: errBoom,
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			wantErr: errBoom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.setup(mock)

			err := NewTxManager(mock).RunInTx(context.Background(), func(ctx context.Context) error {
				if _, ok := txFromCtx(ctx); !ok {
					t.Errorf("expected transaction in context")
				}
				return tt.fnErr
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("RunInTx() error = %v, want %v", err, tt.wantErr)
			}
			expectationsMet(t, mock)
		})
	}
}

func TestTxManager_NestedCallJoinsOuterTx(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	m := NewTxManager(mock)
	err := m.RunInTx(context.Background(), func(ctx context.Context) error {
		return m.RunInTx(ctx, func(context.Context) error { return nil })
	})
	if err != nil {
		t.Fatalf("RunInTx() error = %v", err)
	}
	expectationsMet(t, mock)
}

func TestTxManager_RollbackOnPanic(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		expectationsMet(t, mock)
	}()

	_ = NewTxManager(mock).RunInTx(context.Background(), func(context.Context) error {
		panic("boom")
	})
}
