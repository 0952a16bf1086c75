package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REDIS MIRROR
// Committed events are re-published as JSON envelopes on Redis Pub/Sub so
// that processes outside this one can follow the record stream.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultChannel is the Redis channel events are mirrored to.
const DefaultChannel = "school-records:events"

// RedisClient is the subset of redis.UniversalClient the mirror needs.
type RedisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher mirrors events to a Redis channel.
type RedisPublisher struct {
	client  RedisClient
	channel string
	logger  *slog.Logger
}

var _ shared.EventPublisher = (*RedisPublisher)(nil)

// NewRedisPublisher creates a mirror. An empty channel means DefaultChannel.
func NewRedisPublisher(client RedisClient, channel string, log *slog.Logger) (*RedisPublisher, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if channel == "" {
		channel = DefaultChannel
	}
	if log == nil {
		log = slog.Default()
	}
	return &RedisPublisher{
		client:  client,
		channel: channel,
		logger:  log.With(logger.Component("redis_event_mirror")),
	}, nil
}

// Publish sends one envelope per event. It stops at the first failure.
func (p *RedisPublisher) Publish(ctx context.Context, events ...shared.Event) error {
	for _, event := range events {
		data, err := Encode(event)
		if err != nil {
			return err
		}
		if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
			p.logger.ErrorContext(ctx, "failed to mirror event",
				slog.String("event_type", string(event.EventType())), logger.Err(err))
			return fmt.Errorf("publish %s: %w", event.EventType(), err)
		}
	}
	return nil
}

// Encode wraps an event in a shared.EventEnvelope and marshals it.
func Encode(event shared.Event) ([]byte, error) {
	payload, err := json.Marshal(event.Payload())
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event.EventType(), err)
	}
	data, err := json.Marshal(shared.EventEnvelope{
		ID:          uuid.NewString(),
		Type:        event.EventType(),
		AggregateID: event.AggregateID(),
		Timestamp:   event.OccurredAt(),
		Payload:     payload,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", event.EventType(), err)
	}
	return data, nil
}
