// Package memory implements the repositories in process memory with the same
// constraint semantics as the PostgreSQL adapter: unique usernames, restrict
// on referenced deletes, cascading link removal and all-or-nothing
// transactions. It backs STORAGE_DRIVER=memory and the end-to-end tests.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/cbtutils/novedades/internal/core/domain"
)

// entityRecord stores the type id only; the name is resolved on read.
type entityRecord struct {
	name   string
	typeID *int64
}

type state struct {
	users         map[int64]domain.User
	types         map[int64]string
	entities      map[int64]entityRecord
	announcements map[int64]domain.Announcement
	links         map[int64]map[int64]struct{} // announcement id -> entity ids
	seq           map[string]int64
}

func newState() state {
	return state{
		users:         make(map[int64]domain.User),
		types:         make(map[int64]string),
		entities:      make(map[int64]entityRecord),
		announcements: make(map[int64]domain.Announcement),
		links:         make(map[int64]map[int64]struct{}),
		seq:           make(map[string]int64),
	}
}

func (s state) clone() state {
	c := state{
		users:         maps.Clone(s.users),
		types:         maps.Clone(s.types),
		entities:      maps.Clone(s.entities),
		announcements: maps.Clone(s.announcements),
		links:         make(map[int64]map[int64]struct{}, len(s.links)),
		seq:           maps.Clone(s.seq),
	}
	for id, set := range s.links {
		c.links[id] = maps.Clone(set)
	}
	return c
}

func (s state) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

// Store owns the data. All repositories obtained from one Store share it.
type Store struct {
	mu    sync.Mutex
	state state
}

func NewStore() *Store {
	return &Store{state: newState()}
}

type txKey struct{ store *Store }

// lock takes the store mutex unless ctx already holds it through RunInTx.
func (s *Store) lock(ctx context.Context) func() {
	if ctx.Value(txKey{s}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{s: s}
}

func (s *Store) EntityTypes() *EntityTypeRepository {
	return &EntityTypeRepository{s: s}
}

func (s *Store) Entities() *EntityRepository {
	return &EntityRepository{s: s}
}

func (s *Store) Announcements() *AnnouncementRepository {
	return &AnnouncementRepository{s: s}
}

func (s *Store) TxManager() *TxManager {
	return &TxManager{s: s}
}

// TxManager serializes transactions on the store mutex and restores a
// snapshot when fn fails or panics.
type TxManager struct {
	s *Store
}

func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(txKey{m.s}) != nil {
		return fn(ctx)
	}

	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	snapshot := m.s.state.clone()
	defer func() {
		if r := recover(); r != nil {
			m.s.state = snapshot
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{m.s}, true)); err != nil {
		m.s.state = snapshot
		return err
	}
	return nil
}
