package queue

import (
	"context"
	"testing"
	"time"
)

func TestMemoryQueue_FIFO(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(4)

	for _, key := range []string{"a", "b", "c"} {
		if err := q.Enqueue(ctx, Message{JobKey: key}); err != nil {
			t.Fatal(err)
		}
	}

	for _, want := range []string{"a", "b", "c"} {
		msg, ok, err := q.Dequeue(ctx, time.Second)
		if err != nil || !ok {
			t.Fatalf("Dequeue = %v, %v", ok, err)
		}
		if msg.JobKey != want {
			t.Fatalf("JobKey = %q, want %q", msg.JobKey, want)
		}
	}
}

func TestMemoryQueue_QuietTimeout(t *testing.T) {
	q := NewMemoryQueue(1)
	start := time.Now()
	_, ok, err := q.Dequeue(context.Background(), 20*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("dequeued from an empty queue")
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatal("returned before the wait elapsed")
	}
}

func TestMemoryQueue_ContextCancel(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, _, err := q.Dequeue(ctx, time.Minute)
	if err == nil {
		t.Fatal("expected context error")
	}
}
