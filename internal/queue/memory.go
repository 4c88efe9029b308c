package queue

import (
	"context"
	"time"
)

// MemoryQueue is a buffered channel queue for single-process runs where
// the server and worker share a process.
type MemoryQueue struct {
	ch chan Message
}

// NewMemoryQueue creates a queue with the given buffer size.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 64
	}
	return &MemoryQueue{ch: make(chan Message, size)}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, msg Message) error {
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context, wait time.Duration) (Message, bool, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case msg := <-q.ch:
		return msg, true, nil
	case <-timer.C:
		return Message{}, false, nil
	case <-ctx.Done():
		return Message{}, false, ctx.Err()
	}
}

// Len reports the number of buffered messages.
func (q *MemoryQueue) Len() int { return len(q.ch) }
