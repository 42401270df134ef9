package broker

import (
	"context"
	"sync"
)

// MemoryBroker is an in-process Submitter useful for tests and local wiring.
// It is not intended for production use.
type MemoryBroker struct {
	mu     sync.Mutex
	queues map[string][]WorkItem
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{queues: make(map[string][]WorkItem)}
}

func (b *MemoryBroker) Submit(ctx context.Context, queue string, item WorkItem) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queues[queue] = append(b.queues[queue], item)
	return nil
}

// Items returns a copy of everything submitted to a queue.
func (b *MemoryBroker) Items(queue string) []WorkItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]WorkItem, len(b.queues[queue]))
	copy(out, b.queues[queue])
	return out
}
