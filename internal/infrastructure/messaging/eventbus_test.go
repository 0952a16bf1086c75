package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/pkg/logger"
)

var at = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func studentCreated(id int64) shared.Event {
	return shared.NewStudentCreatedEvent(1, "1-1111-1111", "Ana Mora", "ana@example.com", at).WithAggregateID(id)
}

func TestInMemoryEventBus_SyncDeliversByType(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{Logger: logger.Discard()})

	var typed, all []int64
	require.NoError(t, bus.Subscribe(shared.EventStudentCreated, func(_ context.Context, e shared.Event) error {
		typed = append(typed, e.AggregateID())
		return nil
	}))
	require.NoError(t, bus.Subscribe(shared.EventGradeRegistered, func(context.Context, shared.Event) error {
		t.Fatal("grade handler must not run")
		return nil
	}))
	require.NoError(t, bus.SubscribeAll(func(_ context.Context, e shared.Event) error {
		all = append(all, e.AggregateID())
		return nil
	}))

	require.NoError(t, bus.Publish(context.Background(), studentCreated(1), studentCreated(2)))

	assert.Equal(t, []int64{1, 2}, typed)
	assert.Equal(t, []int64{1, 2}, all)
}

func TestInMemoryEventBus_HandlerFailuresStayInside(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewEventBusMetrics("test")
	require.NoError(t, metrics.Register(reg))

	bus := NewInMemoryEventBus(InMemoryEventBusConfig{Logger: logger.Discard(), Metrics: metrics})
	require.NoError(t, bus.Subscribe(shared.EventStudentCreated, func(context.Context, shared.Event) error {
		return errors.New("smtp down")
	}))
	require.NoError(t, bus.Subscribe(shared.EventStudentCreated, func(context.Context, shared.Event) error {
		panic("boom")
	}))

	require.NoError(t, bus.Publish(context.Background(), studentCreated(1)))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.published.WithLabelValues(string(shared.EventStudentCreated))))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.handled.WithLabelValues(string(shared.EventStudentCreated), "failure")))
}

func TestInMemoryEventBus_AsyncIgnoresCancellation(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: true, WorkerPoolSize: 2, Logger: logger.Discard()})

	var calls atomic.Int32
	require.NoError(t, bus.SubscribeAll(func(ctx context.Context, _ shared.Event) error {
		if ctx.Err() == nil {
			calls.Add(1)
		}
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Publish(ctx, studentCreated(1), studentCreated(2), studentCreated(3)))
	cancel()
	bus.Wait()

	assert.Equal(t, int32(3), calls.Load())
}

func TestInMemoryEventBus_Closed(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{Logger: logger.Discard()})
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(context.Background(), studentCreated(1)), ErrEventBusClosed)
	assert.ErrorIs(t, bus.SubscribeAll(func(context.Context, shared.Event) error { return nil }), ErrEventBusClosed)
}

type fakeRedis struct {
	mu       sync.Mutex
	channels []string
	messages [][]byte
	err      error
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.channels = append(f.channels, channel)
	f.messages = append(f.messages, message.([]byte))
	cmd.SetVal(1)
	return cmd
}

func TestRedisPublisher_MirrorsEnvelopes(t *testing.T) {
	client := &fakeRedis{}
	pub, err := NewRedisPublisher(client, "", logger.Discard())
	require.NoError(t, err)

	require.NoError(t, pub.Publish(context.Background(), studentCreated(7)))

	require.Len(t, client.messages, 1)
	assert.Equal(t, DefaultChannel, client.channels[0])

	var env shared.EventEnvelope
	require.NoError(t, json.Unmarshal(client.messages[0], &env))
	assert.NotEmpty(t, env.ID)
	assert.Equal(t, shared.EventStudentCreated, env.Type)
	assert.Equal(t, int64(7), env.AggregateID)
	assert.Contains(t, string(env.Payload), "Ana Mora")
}

func TestTee_JoinsErrors(t *testing.T) {
	failing := &fakeRedis{err: errors.New("connection refused")}
	mirror, err := NewRedisPublisher(failing, "events", logger.Discard())
	require.NoError(t, err)

	var delivered int
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{Logger: logger.Discard()})
	require.NoError(t, bus.SubscribeAll(func(context.Context, shared.Event) error {
		delivered++
		return nil
	}))

	err = Tee{bus, mirror}.Publish(context.Background(), studentCreated(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, delivered)
}
