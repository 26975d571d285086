// Package broadcast fans committed change events out to live subscribers.
package broadcast

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cbtutils/novedades/internal/core/domain"
	"github.com/cbtutils/novedades/internal/metrics"
)

const defaultBuffer = 64

var ErrHubClosed = errors.New("broadcast hub closed")

// Subscription receives every event published after it was created, in
// publish order. The channel is closed when the subscription ends, either
// through Close or because the subscriber fell behind and was evicted.
type Subscription struct {
	id     uint64
	events chan domain.ChangeEvent
	hub    *Hub
}

func (s *Subscription) Events() <-chan domain.ChangeEvent {
	return s.events
}

// Close detaches the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.hub.remove(s.id)
}

// Hub is an in-process subscriber registry. Publishes are serialized so
// every subscriber observes the same order. Nothing is stored: a subscriber
// only sees events published while it is attached.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscription
	nextID uint64
	buffer int
	closed bool
	log    zerolog.Logger
}

// NewHub returns a hub whose subscribers each buffer up to buffer events.
func NewHub(buffer int, log zerolog.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		subs:   make(map[uint64]*Subscription),
		buffer: buffer,
		log:    log,
	}
}

func (h *Hub) Subscribe() (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	h.nextID++
	sub := &Subscription{
		id:     h.nextID,
		events: make(chan domain.ChangeEvent, h.buffer),
		hub:    h,
	}
	h.subs[sub.id] = sub
	metrics.StreamSubscribers.Inc()
	return sub, nil
}

// Publish hands ev to every current subscriber without blocking. A
// subscriber whose buffer is full is evicted.
func (h *Hub) Publish(_ context.Context, ev domain.ChangeEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}
	metrics.BroadcastEventsTotal.WithLabelValues(string(ev.Name)).Inc()

	for id, sub := range h.subs {
		select {
		case sub.events <- ev:
		default:
			h.log.Warn().
				Uint64("subscriber", id).
				Str("event", string(ev.Name)).
				Msg("subscriber buffer full, evicting")
			metrics.BroadcastEvictionsTotal.Inc()
			h.removeLocked(id)
		}
	}
	return nil
}

// Len reports the number of attached subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close ends every subscription and rejects further use.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id := range h.subs {
		h.removeLocked(id)
	}
	h.closed = true
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(id)
}

func (h *Hub) removeLocked(id uint64) {
	sub, ok := h.subs[id]
	if !ok {
		return
	}
	delete(h.subs, id)
	close(sub.events)
	metrics.StreamSubscribers.Dec()
}
