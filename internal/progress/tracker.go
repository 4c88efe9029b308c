package progress

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Tracker fans progress updates out across up to three store tiers. The
// in-memory tier is mandatory and authoritative for this process; the
// file tier survives restarts; the shared tier, when configured, makes
// progress visible to other processes. A failing outer tier degrades to
// the tiers below it instead of failing the update.
type Tracker struct {
	shared Store // optional
	file   Store // optional
	mem    Store
	logger *slog.Logger
	now    func() time.Time
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithSharedStore adds the cross-process tier.
func WithSharedStore(s Store) TrackerOption {
	return func(t *Tracker) { t.shared = s }
}

// WithFileStore adds the crash-recovery tier.
func WithFileStore(s Store) TrackerOption {
	return func(t *Tracker) { t.file = s }
}

// NewTracker creates a tracker with an in-memory tier plus any
// configured outer tiers.
func NewTracker(logger *slog.Logger, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		mem:    NewMemoryStore(),
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start registers a job at zero percent.
func (t *Tracker) Start(ctx context.Context, key string) error {
	return t.put(ctx, Entry{Key: key, Status: StatusRunning, Percent: 0})
}

// Update reports intermediate completion. Percent is clamped so it never
// moves backwards, and updates against a finished job are rejected. The
// guard reads through every tier, so a Failed entry written to the
// shared store by another process stops this one's writes too.
func (t *Tracker) Update(ctx context.Context, key string, percent int) error {
	cur, _ := t.Get(ctx, key)
	if cur.Terminal() {
		return ErrTerminal
	}
	if percent < cur.Percent {
		percent = cur.Percent
	}
	if percent > 100 {
		percent = 100
	}
	return t.put(ctx, Entry{Key: key, Status: StatusRunning, Percent: percent})
}

// Complete marks a job done at 100 percent, recording where its result
// lives.
func (t *Tracker) Complete(ctx context.Context, key, resultRef string) error {
	cur, _ := t.Get(ctx, key)
	if cur.Terminal() {
		return ErrTerminal
	}
	return t.put(ctx, Entry{Key: key, Status: StatusDone, Percent: 100, ResultRef: resultRef})
}

// Fail marks a job failed. A job already failed may have its error
// message replaced; a job already done cannot be failed.
func (t *Tracker) Fail(ctx context.Context, key string, jobErr error) error {
	cur, _ := t.Get(ctx, key)
	if cur.Status == StatusDone {
		return ErrTerminal
	}
	msg := "unknown error"
	if jobErr != nil {
		msg = jobErr.Error()
	}
	return t.put(ctx, Entry{Key: key, Status: StatusFailed, Percent: cur.Percent, Error: msg})
}

// Get reads the freshest entry available, preferring the outermost tier
// that answers. A key no tier knows reports StatusUnknown with
// ErrNotFound.
func (t *Tracker) Get(ctx context.Context, key string) (Entry, error) {
	for _, s := range t.tiers() {
		e, err := s.Get(ctx, key)
		if err == nil {
			return e, nil
		}
		if !errors.Is(err, ErrNotFound) {
			t.logger.Warn("progress tier read failed", "store", s.Name(), "key", key, "error", err)
		}
	}
	return Entry{Key: key, Status: StatusUnknown}, ErrNotFound
}

// put writes the entry to every configured tier. Outer-tier failures are
// logged and absorbed; the in-memory write is the one that can fail the
// call.
func (t *Tracker) put(ctx context.Context, e Entry) error {
	e.UpdatedAt = t.now().UTC()
	if t.shared != nil {
		if err := t.shared.Put(ctx, e); err != nil {
			t.logger.Warn("shared progress write failed, degrading",
				"store", t.shared.Name(), "key", e.Key, "error", err)
		}
	}
	if t.file != nil {
		if err := t.file.Put(ctx, e); err != nil {
			t.logger.Warn("file progress write failed, degrading",
				"store", t.file.Name(), "key", e.Key, "error", err)
		}
	}
	return t.mem.Put(ctx, e)
}

func (t *Tracker) tiers() []Store {
	tiers := make([]Store, 0, 3)
	if t.shared != nil {
		tiers = append(tiers, t.shared)
	}
	if t.file != nil {
		tiers = append(tiers, t.file)
	}
	return append(tiers, t.mem)
}
