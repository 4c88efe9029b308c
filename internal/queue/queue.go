// Package queue carries validation jobs from submitters to workers.
package queue

import (
	"context"
	"time"
)

// Message is one queued validation job.
type Message struct {
	JobKey        string    `json:"job_key"`
	DocumentRef   string    `json:"document_ref"`
	SchemaVersion string    `json:"schema_version,omitempty"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// Queue moves job messages between processes (or goroutines, for the
// in-memory implementation).
type Queue interface {
	Enqueue(ctx context.Context, msg Message) error
	// Dequeue blocks up to wait for a message. A quiet queue returns
	// (Message{}, false, nil) so workers can re-check their context.
	Dequeue(ctx context.Context, wait time.Duration) (Message, bool, error)
}
