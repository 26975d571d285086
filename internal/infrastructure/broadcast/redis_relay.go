package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cbtutils/novedades/internal/core/domain"
	"github.com/cbtutils/novedades/internal/metrics"
)

// relayEnvelope tags an event with the instance that produced it.
type relayEnvelope struct {
	Origin string             `json:"origin"`
	Event  domain.ChangeEvent `json:"event"`
}

// RedisRelay shares events between service instances over Redis Pub/Sub.
// Publish sends local events out; Run delivers events from other instances
// to the local sink, skipping the ones this relay sent itself.
type RedisRelay struct {
	client  *redis.Client
	channel string
	origin  string
	local   Sink
	ready   chan struct{}
	log     zerolog.Logger
}

func NewRedisRelay(client *redis.Client, channel string, local Sink, log zerolog.Logger) *RedisRelay {
	return &RedisRelay{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		local:   local,
		ready:   make(chan struct{}),
		log:     log.With().Str("component", "redis_relay").Logger(),
	}
}

func (r *RedisRelay) Publish(ctx context.Context, ev domain.ChangeEvent) error {
	payload, err := json.Marshal(relayEnvelope{Origin: r.origin, Event: ev})
	if err != nil {
		return fmt.Errorf("encode relay envelope: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("relay publish: %w", err)
	}
	metrics.RelayMessagesTotal.WithLabelValues("out").Inc()
	return nil
}

// Ready is closed once Run's subscription is confirmed by Redis.
func (r *RedisRelay) Ready() <-chan struct{} {
	return r.ready
}

// Run subscribes to the channel and blocks until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	close(r.ready)
	r.log.Info().Str("channel", r.channel).Str("origin", r.origin).Msg("relay subscribed")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.deliver(ctx, msg.Payload)
		}
	}
}

func (r *RedisRelay) deliver(ctx context.Context, payload string) {
	var env relayEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		r.log.Warn().Err(err).Msg("dropping malformed relay message")
		return
	}
	if env.Origin == r.origin {
		return
	}
	metrics.RelayMessagesTotal.WithLabelValues("in").Inc()
	if err := r.local.Publish(ctx, env.Event); err != nil {
		r.log.Warn().Err(err).Str("event", string(env.Event.Name)).Msg("relay delivery failed")
	}
}
