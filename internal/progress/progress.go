// Package progress tracks job completion across a tiered set of stores:
// an optional shared store for cross-process visibility, a file snapshot
// for crash recovery, and an in-memory map that is always authoritative
// for the local process.
package progress

import (
	"context"
	"errors"
	"time"
)

// Status is the lifecycle state of a tracked job.
type Status string

const (
	StatusUnknown Status = "unknown"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Entry is one job's progress snapshot.
type Entry struct {
	Key       string    `json:"key"`
	Status    Status    `json:"status"`
	Percent   int       `json:"percent"`
	Error     string    `json:"error,omitempty"`
	ResultRef string    `json:"result_ref,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Terminal reports whether the entry can no longer change status.
func (e Entry) Terminal() bool {
	return e.Status == StatusDone || e.Status == StatusFailed
}

var (
	// ErrNotFound indicates a store has no entry for the key.
	ErrNotFound = errors.New("progress: entry not found")
	// ErrTerminal indicates an update against a finished job.
	ErrTerminal = errors.New("progress: job already terminal")
)

// Store persists progress entries. Implementations must tolerate
// concurrent callers.
type Store interface {
	Put(ctx context.Context, e Entry) error
	Get(ctx context.Context, key string) (Entry, error)
	// Name identifies the store in logs.
	Name() string
}
