package broadcast

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cbtutils/novedades/internal/core/domain"
)

// Sink is one destination of published events.
type Sink interface {
	Publish(ctx context.Context, ev domain.ChangeEvent) error
}

type namedSink struct {
	name string
	sink Sink
}

// Fanout implements ports.Broadcaster over several sinks. A failing sink is
// logged and skipped; it never fails the write that produced the event.
type Fanout struct {
	sinks []namedSink
	log   zerolog.Logger
}

func NewFanout(log zerolog.Logger) *Fanout {
	return &Fanout{log: log}
}

// With appends a sink and returns f for chaining.
func (f *Fanout) With(name string, sink Sink) *Fanout {
	f.sinks = append(f.sinks, namedSink{name: name, sink: sink})
	return f
}

func (f *Fanout) Publish(ctx context.Context, ev domain.ChangeEvent) {
	for _, s := range f.sinks {
		if err := s.sink.Publish(ctx, ev); err != nil {
			f.log.Warn().
				Err(err).
				Str("sink", s.name).
				Str("event", string(ev.Name)).
				Str("event_id", ev.ID).
				Msg("publish failed")
		}
	}
}
