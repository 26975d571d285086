package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cbtutils/novedades/internal/core/domain"
	"github.com/cbtutils/novedades/internal/core/ports"
	"github.com/cbtutils/novedades/internal/metrics"
)

const (
	actionCreate = "create"
	actionUpdate = "update"
	actionDelete = "delete"
)

const lockStripes = 64

// recordLocks serializes write-then-publish per record id, so events for one
// record leave this process in commit order. Distinct ids sharing a stripe
// only wait for each other.
type recordLocks struct {
	stripes [lockStripes]sync.Mutex
}

// lock acquires the stripe of id and returns its release func.
func (l *recordLocks) lock(id int64) func() {
	m := &l.stripes[uint64(id)%lockStripes]
	m.Lock()
	return m.Unlock
}

// publisher turns committed rows into change events. It must only be called
// after the transaction that produced the row has committed.
type publisher struct {
	broadcaster ports.Broadcaster
	now         func() time.Time
	log         zerolog.Logger
}

func (p publisher) emit(ctx context.Context, name domain.EventName, id int64, payload any) {
	ev, err := domain.NewChangeEvent(name, id, payload, p.now())
	if err != nil {
		p.log.Error().Err(err).Str("event", string(name)).Int64("id", id).Msg("change event not published")
		return
	}
	p.broadcaster.Publish(ctx, ev)
}

// record counts a finished mutation under its error class.
func record(resource, action string, err error) {
	metrics.MutationsTotal.WithLabelValues(resource, action, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUnknownReference):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInUse):
		return "conflict"
	default:
		return "error"
	}
}
