package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aemqa/packetcheck/internal/extract"
	"github.com/aemqa/packetcheck/internal/progress"
	"github.com/aemqa/packetcheck/internal/validate"
)

// Result is the persisted outcome of one finished job.
type Result struct {
	JobKey        string           `json:"job_key"`
	DocumentRef   string           `json:"document_ref"`
	SchemaVersion string           `json:"schema_version"`
	PageCount     int              `json:"page_count"`
	Warnings      []string         `json:"warnings,omitempty"`
	Record        extract.Snapshot `json:"record"`
	Validation    validate.Result  `json:"validation"`
	Reports       []string         `json:"reports,omitempty"`
	CompletedAt   time.Time        `json:"completed_at"`
}

// ResultStore persists job results as one JSON file per job, written
// atomically through a temp file and rename.
type ResultStore struct {
	dir string
}

// NewResultStore creates the directory if needed.
func NewResultStore(dir string) (*ResultStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating results dir: %w", err)
	}
	return &ResultStore{dir: dir}, nil
}

// Put writes the result and returns its file path, which doubles as the
// progress entry's result reference.
func (s *ResultStore) Put(_ context.Context, r Result) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	path := s.path(r.JobKey)
	tmp, err := os.CreateTemp(s.dir, ".result-*")
	if err != nil {
		return "", fmt.Errorf("creating temp result file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing result: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing result file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("replacing result file: %w", err)
	}
	return path, nil
}

// Get reads a stored result by job key.
func (s *ResultStore) Get(_ context.Context, jobKey string) (Result, error) {
	data, err := os.ReadFile(s.path(jobKey))
	if os.IsNotExist(err) {
		return Result{}, progress.ErrNotFound
	}
	if err != nil {
		return Result{}, fmt.Errorf("reading result: %w", err)
	}
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return Result{}, fmt.Errorf("decoding result: %w", err)
	}
	return r, nil
}

func (s *ResultStore) path(jobKey string) string {
	return filepath.Join(s.dir, sanitizeKey(jobKey)+".json")
}

// sanitizeKey keeps keys filesystem-safe. Job keys are UUIDs in normal
// operation, but they also arrive from URLs, so path separators and dots
// must never survive into the file name.
func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, key)
}
