package notifications

import (
	"context"
	"sync"
)

// Store persists the retry queue as a single named slot: the full list is
// read once at startup and overwritten in full on every mutation. The queue
// is the sole writer of the slot.
type Store interface {
	Load(ctx context.Context) ([]QueuedOperation, error)
	Save(ctx context.Context, ops []QueuedOperation) error
}

// MemoryStore keeps the queue slot in memory. Used when no database is
// configured and throughout the unit tests; queued operations do not
// survive a restart with this store.
type MemoryStore struct {
	mu  sync.Mutex
	ops []QueuedOperation
}

// NewMemoryStore creates an empty in-memory slot.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) ([]QueuedOperation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]QueuedOperation, len(s.ops))
	copy(out, s.ops)
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, ops []QueuedOperation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = make([]QueuedOperation, len(ops))
	copy(s.ops, ops)
	return nil
}
