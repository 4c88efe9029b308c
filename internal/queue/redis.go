package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aemqa/packetcheck/internal/sharedstore"
)

// DefaultKey is the Redis list the server and workers share.
const DefaultKey = "packetcheck:jobs"

// RedisQueue carries jobs over a Redis list so workers can run in
// separate processes from the server.
type RedisQueue struct {
	list *sharedstore.ListQueue
}

// NewRedisQueue creates a queue over the named Redis list.
func NewRedisQueue(c *sharedstore.Client, key string) *RedisQueue {
	if key == "" {
		key = DefaultKey
	}
	return &RedisQueue{list: c.Queue(key)}
}

func (q *RedisQueue) Enqueue(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding job message: %w", err)
	}
	return q.list.Push(ctx, payload)
}

func (q *RedisQueue) Dequeue(ctx context.Context, wait time.Duration) (Message, bool, error) {
	payload, err := q.list.Pop(ctx, wait)
	if err != nil {
		return Message{}, false, err
	}
	if payload == nil {
		return Message{}, false, nil
	}
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, false, fmt.Errorf("decoding job message: %w", err)
	}
	return msg, true, nil
}
