package progress

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// failingStore always errors, standing in for an unreachable shared tier.
type failingStore struct{}

func (failingStore) Name() string                     { return "failing" }
func (failingStore) Put(context.Context, Entry) error { return errors.New("store down") }
func (failingStore) Get(context.Context, string) (Entry, error) {
	return Entry{}, errors.New("store down")
}

func TestTracker_Lifecycle(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(testLogger())

	if err := tr.Start(ctx, "job-1"); err != nil {
		t.Fatal(err)
	}
	if err := tr.Update(ctx, "job-1", 40); err != nil {
		t.Fatal(err)
	}
	e, err := tr.Get(ctx, "job-1")
	if err != nil {
		t.Fatal(err)
	}
	if e.Status != StatusRunning || e.Percent != 40 {
		t.Fatalf("entry = %+v", e)
	}

	if err := tr.Complete(ctx, "job-1", "results/job-1.json"); err != nil {
		t.Fatal(err)
	}
	e, _ = tr.Get(ctx, "job-1")
	if e.Status != StatusDone || e.Percent != 100 || e.ResultRef != "results/job-1.json" {
		t.Fatalf("entry = %+v", e)
	}
}

func TestTracker_MonotonicPercent(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(testLogger())
	tr.Start(ctx, "j")
	tr.Update(ctx, "j", 60)

	if err := tr.Update(ctx, "j", 30); err != nil {
		t.Fatal(err)
	}
	e, _ := tr.Get(ctx, "j")
	if e.Percent != 60 {
		t.Fatalf("percent regressed to %d", e.Percent)
	}

	tr.Update(ctx, "j", 250)
	e, _ = tr.Get(ctx, "j")
	if e.Percent != 100 {
		t.Fatalf("percent not clamped: %d", e.Percent)
	}
}

func TestTracker_TerminalGuard(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(testLogger())
	tr.Start(ctx, "j")
	tr.Complete(ctx, "j", "ref")

	if err := tr.Update(ctx, "j", 50); !errors.Is(err, ErrTerminal) {
		t.Fatalf("Update after Complete = %v, want ErrTerminal", err)
	}
	if err := tr.Fail(ctx, "j", errors.New("late")); !errors.Is(err, ErrTerminal) {
		t.Fatalf("Fail after Complete = %v, want ErrTerminal", err)
	}

	tr.Start(ctx, "k")
	tr.Fail(ctx, "k", errors.New("first"))
	if err := tr.Fail(ctx, "k", errors.New("second")); err != nil {
		t.Fatalf("Fail may refresh a failed job's error: %v", err)
	}
	e, _ := tr.Get(ctx, "k")
	if e.Error != "second" {
		t.Fatalf("error = %q", e.Error)
	}
}

func TestTracker_ExternalFailStopsWrites(t *testing.T) {
	ctx := context.Background()
	shared := NewMemoryStore()
	tr := NewTracker(testLogger(), WithSharedStore(shared))
	tr.Start(ctx, "j")
	tr.Update(ctx, "j", 20)

	// Another process fails the job through the shared tier.
	if err := shared.Put(ctx, Entry{Key: "j", Status: StatusFailed, Percent: 20, Error: "operator abort"}); err != nil {
		t.Fatal(err)
	}

	if err := tr.Update(ctx, "j", 40); !errors.Is(err, ErrTerminal) {
		t.Fatalf("Update after external Fail = %v, want ErrTerminal", err)
	}
	if err := tr.Complete(ctx, "j", "ref"); !errors.Is(err, ErrTerminal) {
		t.Fatalf("Complete after external Fail = %v, want ErrTerminal", err)
	}

	// The shared entry keeps the failure instead of being resurrected.
	e, err := shared.Get(ctx, "j")
	if err != nil {
		t.Fatal(err)
	}
	if e.Status != StatusFailed || e.Error != "operator abort" {
		t.Fatalf("shared entry = %+v", e)
	}
}

func TestTracker_UnknownKey(t *testing.T) {
	tr := NewTracker(testLogger())
	e, err := tr.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if e.Status != StatusUnknown {
		t.Fatalf("status = %q", e.Status)
	}
}

func TestTracker_SharedTierDegrades(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "progress"))
	if err != nil {
		t.Fatal(err)
	}
	tr := NewTracker(testLogger(), WithSharedStore(failingStore{}), WithFileStore(fs))

	if err := tr.Start(ctx, "j"); err != nil {
		t.Fatalf("Start should survive a down shared tier: %v", err)
	}
	if err := tr.Update(ctx, "j", 20); err != nil {
		t.Fatal(err)
	}

	// Reads skip the failing tier and land on the file tier, then memory.
	e, err := tr.Get(ctx, "j")
	if err != nil {
		t.Fatal(err)
	}
	if e.Percent != 20 {
		t.Fatalf("percent = %d", e.Percent)
	}

	// The file tier actually holds the entry.
	fe, err := fs.Get(ctx, "j")
	if err != nil {
		t.Fatal(err)
	}
	if fe.Percent != 20 {
		t.Fatalf("file entry = %+v", fe)
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "p"))
	if err != nil {
		t.Fatal(err)
	}

	in := Entry{Key: "a/b..c", Status: StatusRunning, Percent: 5}
	if err := fs.Put(ctx, in); err != nil {
		t.Fatal(err)
	}
	out, err := fs.Get(ctx, "a/b..c")
	if err != nil {
		t.Fatal(err)
	}
	if out.Key != in.Key || out.Percent != 5 {
		t.Fatalf("round trip = %+v", out)
	}

	if _, err := fs.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}
