package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBroker submits work items onto Redis lists. Workers drain each list
// with BRPOP, giving at-least-once delivery with consumer-managed retries.
type RedisBroker struct {
	client *redis.Client
}

func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func queueKey(queue string) string {
	return fmt.Sprintf("queue:%s", queue)
}

func (b *RedisBroker) Submit(ctx context.Context, queue string, item WorkItem) error {
	if b.client == nil {
		return fmt.Errorf("broker: redis client is nil")
	}
	if queue == "" {
		return fmt.Errorf("broker: queue name required")
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("broker: marshal work item: %w", err)
	}
	if err := b.client.LPush(ctx, queueKey(queue), raw).Err(); err != nil {
		return fmt.Errorf("broker: submit to %s: %w", queue, err)
	}
	return nil
}
