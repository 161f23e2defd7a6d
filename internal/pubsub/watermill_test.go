package pubsub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusRoundTrip(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	var mu sync.Mutex
	var received []Message
	handler := func(ctx context.Context, msg Message) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, msg)
		return nil
	}

	ctx := context.Background()
	require.NoError(t, bus.Subscribe(ctx, "test.topic", handler))

	require.NoError(t, bus.Publish(ctx, Message{
		Topic:   "test.topic",
		ConnID:  "conn-1",
		Payload: []byte(`{"message":"hi"}`),
	}))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "test.topic", received[0].Topic)
	assert.Equal(t, "conn-1", received[0].ConnID)
	assert.JSONEq(t, `{"message":"hi"}`, string(received[0].Payload))
}

func TestBusTopicsAreIsolated(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	var mu sync.Mutex
	count := 0
	handler := func(ctx context.Context, msg Message) error {
		mu.Lock()
		defer mu.Unlock()
		count++
		return nil
	}

	ctx := context.Background()
	require.NoError(t, bus.Subscribe(ctx, "topic.a", handler))

	require.NoError(t, bus.Publish(ctx, Message{Topic: "topic.b", Payload: []byte("{}")}))
	require.NoError(t, bus.Publish(ctx, Message{Topic: "topic.a", Payload: []byte("{}")}))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 1
	}, time.Second, 10*time.Millisecond)
}
