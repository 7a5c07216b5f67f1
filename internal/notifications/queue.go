package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yechale/rollcall/internal/domain"
)

// Queue retry policy. MaxRetries is a deliberate policy constant: after
// that many failed attempts an operation is discarded rather than moved to
// a dead-letter store. DrainDelay spaces successive drain attempts so rate
// limits and transient conditions can clear.
const (
	MaxRetries = 3
	DrainDelay = time.Second
)

// Queue is the durable, ordered, at-least-once retry queue for deferred
// deliveries. Processing is strictly head-first: a stuck operation delays
// everything behind it until it succeeds or exhausts its retries. The queue
// never reorders.
//
// Construct one per process with NewQueue and release it with Close.
type Queue struct {
	store   Store
	deliver DrainClient
	online  func() bool
	logger  *slog.Logger

	mu       sync.Mutex
	ops      []QueuedOperation
	draining bool
	timer    *time.Timer
	closed   bool
}

// NewQueue loads the persisted queue from store. online reports current
// connectivity; draining is skipped while it returns false.
func NewQueue(store Store, deliver DrainClient, online func() bool, logger *slog.Logger) (*Queue, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ops, err := store.Load(context.Background())
	if err != nil {
		return nil, fmt.Errorf("load retry queue: %w", err)
	}

	q := &Queue{
		store:   store,
		deliver: deliver,
		online:  online,
		logger:  logger,
		ops:     ops,
	}
	recordQueueDepth(len(ops))

	if len(ops) > 0 {
		logger.Info("retry queue restored", "pending", len(ops))
	}

	return q, nil
}

// Close stops any scheduled drain. Pending operations stay persisted and
// are picked up on the next start.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
}

// Enqueue appends a composed payload for deferred delivery and persists the
// queue before returning. The returned id identifies the operation in logs.
func (q *Queue) Enqueue(ctx context.Context, channel domain.Channel, payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal %s payload: %w", channel, err)
	}

	op := QueuedOperation{
		ID:         uuid.NewString(),
		Channel:    channel,
		Payload:    raw,
		EnqueuedAt: time.Now(),
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.ops = append(q.ops, op)
	if err := q.persistLocked(ctx); err != nil {
		q.ops = q.ops[:len(q.ops)-1]
		return "", err
	}

	recordQueueDepth(len(q.ops))
	q.logger.Info("operation queued", "id", op.ID, "channel", channel, "pending", len(q.ops))
	return op.ID, nil
}

// Drain attempts delivery of the single operation at the head of the queue.
// It is a no-op when the queue is empty, a drain is already in flight, or
// connectivity is down. On success the head is removed; on failure its
// retry count is incremented and, at MaxRetries, the operation is dropped.
// Either way the queue is persisted and, while operations remain, another
// drain is scheduled after DrainDelay rather than looping tightly.
func (q *Queue) Drain(ctx context.Context) {
	q.mu.Lock()
	if q.closed || q.draining || len(q.ops) == 0 || !q.online() {
		q.mu.Unlock()
		return
	}
	q.draining = true
	head := q.ops[0]
	q.mu.Unlock()

	err := q.deliver.Deliver(ctx, head)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.draining = false

	// Clear may have emptied the queue while the delivery was in flight.
	// Only touch the head if it is still the operation we delivered.
	if len(q.ops) == 0 || q.ops[0].ID != head.ID {
		if len(q.ops) > 0 && !q.closed {
			q.timer = time.AfterFunc(DrainDelay, func() {
				q.Drain(context.Background())
			})
		}
		return
	}

	if err == nil {
		q.ops = q.ops[1:]
		q.logger.Info("queued operation delivered", "id", head.ID, "channel", head.Channel)
		recordDrainResult(head.Channel, "delivered")
	} else {
		q.ops[0].RetryCount++
		q.logger.Warn("queued operation failed",
			"id", head.ID,
			"channel", head.Channel,
			"retry_count", q.ops[0].RetryCount,
			"error", err,
		)
		if q.ops[0].RetryCount >= MaxRetries {
			// Accepted data loss: no dead-letter store in this product.
			q.logger.Error("queued operation dropped after max retries", "id", head.ID, "channel", head.Channel)
			recordDrainResult(head.Channel, "dropped")
			q.ops = q.ops[1:]
		} else {
			recordDrainResult(head.Channel, "retry")
		}
	}

	if err := q.persistLocked(ctx); err != nil {
		q.logger.Error("failed to persist retry queue", "error", err)
	}
	recordQueueDepth(len(q.ops))

	if len(q.ops) > 0 && !q.closed {
		q.timer = time.AfterFunc(DrainDelay, func() {
			q.Drain(context.Background())
		})
	}
}

// Size returns the number of pending operations, for UI badges.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops)
}

// Clear empties the queue. Administrative escape hatch for a poisoned head.
func (q *Queue) Clear(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.ops = nil
	if err := q.persistLocked(ctx); err != nil {
		return err
	}
	recordQueueDepth(0)
	return nil
}

func (q *Queue) persistLocked(ctx context.Context) error {
	if err := q.store.Save(ctx, q.ops); err != nil {
		return fmt.Errorf("persist retry queue: %w", err)
	}
	return nil
}
