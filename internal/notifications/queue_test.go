package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yechale/rollcall/internal/domain"
)

type stubDrainClient struct {
	mu      sync.Mutex
	calls   []QueuedOperation
	err     error
	block   chan struct{} // when non-nil, Deliver blocks until closed
	started chan struct{} // when non-nil, signaled once a Deliver begins
}

func (c *stubDrainClient) Deliver(_ context.Context, op QueuedOperation) error {
	if c.started != nil {
		c.started <- struct{}{}
	}
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, op)
	return c.err
}

func (c *stubDrainClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func alwaysOnline() bool  { return true }
func alwaysOffline() bool { return false }

func newTestQueue(t *testing.T, store Store, client DrainClient, online func() bool) *Queue {
	t.Helper()
	q, err := NewQueue(store, client, online, discardLogger())
	require.NoError(t, err)
	t.Cleanup(q.Close)
	return q
}

func TestQueue_EnqueuePersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	q := newTestQueue(t, store, &stubDrainClient{}, alwaysOnline)

	_, err := q.Enqueue(ctx, domain.ChannelEmail, EmailPayload{To: "a@example.com"})
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, domain.ChannelSMS, SMSPayload{To: "+251911234567"})
	require.NoError(t, err)

	assert.Equal(t, 2, q.Size())

	// A fresh queue over the same store sees the surviving operations
	restored := newTestQueue(t, store, &stubDrainClient{}, alwaysOnline)
	assert.Equal(t, 2, restored.Size())
}

func TestQueue_DrainDeliversInOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	client := &stubDrainClient{}
	q := newTestQueue(t, store, client, alwaysOnline)

	first, err := q.Enqueue(ctx, domain.ChannelEmail, EmailPayload{To: "first@example.com"})
	require.NoError(t, err)
	second, err := q.Enqueue(ctx, domain.ChannelEmail, EmailPayload{To: "second@example.com"})
	require.NoError(t, err)

	q.Drain(ctx)

	// The second operation is delivered by the rescheduled drain one
	// DrainDelay later
	require.Eventually(t, func() bool {
		return q.Size() == 0
	}, 5*time.Second, 50*time.Millisecond)

	require.Equal(t, 2, client.callCount())
	assert.Equal(t, first, client.calls[0].ID)
	assert.Equal(t, second, client.calls[1].ID)

	// Durable slot is empty too
	ops, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestQueue_DropsAfterMaxRetries(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	client := &stubDrainClient{err: errors.New("provider down")}
	q := newTestQueue(t, store, client, alwaysOnline)

	_, err := q.Enqueue(ctx, domain.ChannelSMS, SMSPayload{To: "+251911234567"})
	require.NoError(t, err)

	q.Drain(ctx)

	require.Eventually(t, func() bool {
		return q.Size() == 0
	}, 10*time.Second, 50*time.Millisecond)

	// Exactly MaxRetries attempts, then the operation is discarded
	assert.Equal(t, MaxRetries, client.callCount())
}

func TestQueue_FailedHeadBlocksTail(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	client := &stubDrainClient{err: errors.New("provider down")}
	q := newTestQueue(t, store, client, alwaysOnline)

	_, err := q.Enqueue(ctx, domain.ChannelEmail, EmailPayload{To: "head@example.com"})
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, domain.ChannelEmail, EmailPayload{To: "tail@example.com"})
	require.NoError(t, err)

	q.Drain(ctx)

	// Only the head has been attempted; the tail waits its turn
	assert.Equal(t, 1, client.callCount())
	assert.Equal(t, 2, q.Size())
}

func TestQueue_DrainSkippedWhileOffline(t *testing.T) {
	ctx := context.Background()
	client := &stubDrainClient{}
	q := newTestQueue(t, NewMemoryStore(), client, alwaysOffline)

	_, err := q.Enqueue(ctx, domain.ChannelEmail, EmailPayload{To: "a@example.com"})
	require.NoError(t, err)

	q.Drain(ctx)

	assert.Zero(t, client.callCount())
	assert.Equal(t, 1, q.Size())
}

func TestQueue_SingleFlight(t *testing.T) {
	ctx := context.Background()
	client := &stubDrainClient{
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	q := newTestQueue(t, NewMemoryStore(), client, alwaysOnline)

	_, err := q.Enqueue(ctx, domain.ChannelEmail, EmailPayload{To: "a@example.com"})
	require.NoError(t, err)

	go q.Drain(ctx)
	<-client.started

	// A concurrent drain returns immediately instead of double-delivering
	q.Drain(ctx)
	close(client.block)

	require.Eventually(t, func() bool {
		return q.Size() == 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, client.callCount())
}

func TestQueue_Clear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	q := newTestQueue(t, store, &stubDrainClient{}, alwaysOnline)

	_, err := q.Enqueue(ctx, domain.ChannelEmail, EmailPayload{To: "a@example.com"})
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, domain.ChannelSMS, SMSPayload{To: "+251911234567"})
	require.NoError(t, err)

	require.NoError(t, q.Clear(ctx))
	assert.Zero(t, q.Size())

	ops, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestQueue_ClearWhileDrainInFlight(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	client := &stubDrainClient{
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	q := newTestQueue(t, store, client, alwaysOnline)

	_, err := q.Enqueue(ctx, domain.ChannelEmail, EmailPayload{To: "a@example.com"})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		q.Drain(ctx)
		close(done)
	}()
	<-client.started

	// Clear the queue out from under the in-flight delivery
	require.NoError(t, q.Clear(ctx))
	close(client.block)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("drain did not finish")
	}

	// The finished drain must not resurrect or mutate the cleared head
	assert.Zero(t, q.Size())

	ops, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, ops)
}
