// Package orchestrator ties extraction, validation, progress tracking,
// and reporting into jobs. Jobs run synchronously in-process or flow
// through a queue to worker processes.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aemqa/packetcheck/internal/extract"
	"github.com/aemqa/packetcheck/internal/pagetext"
	"github.com/aemqa/packetcheck/internal/progress"
	"github.com/aemqa/packetcheck/internal/queue"
	"github.com/aemqa/packetcheck/internal/schema"
	"github.com/aemqa/packetcheck/internal/validate"
)

// PageSource produces per-page text for a document. The pdftotext/OCR
// pipeline implements it; tests substitute fakes.
type PageSource interface {
	PageCount(ctx context.Context, doc string) (int, error)
	PageText(ctx context.Context, doc string, pageIndex int) (pagetext.PageText, error)
	SegmentSize() int
}

// Reporter renders human-readable report files for a finished job,
// returning the file names it produced.
type Reporter interface {
	Write(ctx context.Context, jobKey string, s *schema.Schema, rec *extract.Record, res validate.Result, pageCount int) ([]string, error)
	WriteError(ctx context.Context, jobKey string, jobErr error) ([]string, error)
}

// DefaultProgressCadence is how many pages are processed between
// intermediate progress writes.
const DefaultProgressCadence = 10

// Orchestrator coordinates the validation pipeline.
type Orchestrator struct {
	logger   *slog.Logger
	source   PageSource
	schemas  *schema.Registry
	tracker  *progress.Tracker
	results  *ResultStore
	jobs     queue.Queue // nil means synchronous mode
	reporter Reporter    // optional
	cadence  int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithQueue switches the orchestrator to asynchronous mode: Submit
// enqueues and returns, and a worker runs the job.
func WithQueue(q queue.Queue) Option {
	return func(o *Orchestrator) { o.jobs = q }
}

// WithReporter attaches a report writer invoked at job completion.
func WithReporter(r Reporter) Option {
	return func(o *Orchestrator) { o.reporter = r }
}

// WithProgressCadence overrides the pages-per-update interval.
func WithProgressCadence(pages int) Option {
	return func(o *Orchestrator) {
		if pages > 0 {
			o.cadence = pages
		}
	}
}

// New creates an orchestrator. Without WithQueue, Submit runs jobs
// inline and blocks until they finish.
func New(logger *slog.Logger, source PageSource, schemas *schema.Registry, tracker *progress.Tracker, results *ResultStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:  logger,
		source:  source,
		schemas: schemas,
		tracker: tracker,
		results: results,
		cadence: DefaultProgressCadence,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithoutQueue returns a copy whose Submit runs jobs inline, for
// one-shot CLI runs against a queue-configured setup.
func (o *Orchestrator) WithoutQueue() *Orchestrator {
	clone := *o
	clone.jobs = nil
	return &clone
}

// Submit registers a new job for the document and returns its progress
// key. In queue mode the job runs on a worker; otherwise Submit blocks
// until the job is terminal, and the job's failure is reported through
// the progress entry rather than Submit's error.
func (o *Orchestrator) Submit(ctx context.Context, documentRef, schemaVersion string) (string, error) {
	if _, err := o.schemas.Get(schemaVersion); err != nil {
		return "", err
	}

	key := uuid.NewString()
	if err := o.tracker.Start(ctx, key); err != nil {
		return "", fmt.Errorf("registering job: %w", err)
	}
	o.logger.Info("job submitted", "key", key, "document", documentRef, "schema", schemaVersion)

	msg := queue.Message{
		JobKey:        key,
		DocumentRef:   documentRef,
		SchemaVersion: schemaVersion,
		SubmittedAt:   time.Now().UTC(),
	}

	if o.jobs != nil {
		if err := o.jobs.Enqueue(ctx, msg); err != nil {
			failErr := fmt.Errorf("enqueueing job: %w", err)
			if ferr := o.tracker.Fail(ctx, key, failErr); ferr != nil {
				o.logger.Error("failed to record enqueue failure", "key", key, "error", ferr)
			}
			return "", failErr
		}
		return key, nil
	}

	o.RunJob(ctx, msg)
	return key, nil
}

// RunJob executes one job to a terminal state. Execution errors land in
// the progress entry, not the return path.
func (o *Orchestrator) RunJob(ctx context.Context, msg queue.Message) {
	logger := o.logger.With("key", msg.JobKey, "document", msg.DocumentRef)
	start := time.Now()

	resultRef, err := o.execute(ctx, msg)
	if err != nil {
		logger.Error("job failed", "error", err, "duration", time.Since(start))
		if o.reporter != nil {
			if _, rerr := o.reporter.WriteError(ctx, msg.JobKey, err); rerr != nil {
				logger.Error("failed to write error report", "error", rerr)
			}
		}
		if ferr := o.tracker.Fail(ctx, msg.JobKey, err); ferr != nil {
			logger.Error("failed to record job failure", "error", ferr)
		}
		return
	}

	if err := o.tracker.Complete(ctx, msg.JobKey, resultRef); err != nil {
		logger.Error("failed to record job completion", "error", err)
		return
	}
	logger.Info("job complete", "result", resultRef, "duration", time.Since(start))
}

// execute runs the extraction and validation pipeline for one job.
func (o *Orchestrator) execute(ctx context.Context, msg queue.Message) (string, error) {
	s, err := o.schemas.Get(msg.SchemaVersion)
	if err != nil {
		return "", err
	}

	total, err := o.source.PageCount(ctx, msg.DocumentRef)
	if err != nil {
		return "", fmt.Errorf("counting pages: %w", err)
	}
	if total == 0 {
		return "", fmt.Errorf("document has no pages")
	}

	rec := extract.NewRecord()
	var warnings []string
	processed := 0
	sinceUpdate := 0

	for _, seg := range pagetext.Segments(total, o.source.SegmentSize()) {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("job cancelled: %w", err)
		}
		// Another actor may have failed the job out from under us.
		if e, err := o.tracker.Get(ctx, msg.JobKey); err == nil && e.Status == progress.StatusFailed {
			return "", fmt.Errorf("job marked failed externally: %s", e.Error)
		}
		for page := seg.Start; page < seg.End; page++ {
			pt, err := o.source.PageText(ctx, msg.DocumentRef, page)
			if err != nil {
				return "", fmt.Errorf("extracting page %d: %w", page+1, err)
			}
			if pt.Warning != "" {
				warnings = append(warnings, fmt.Sprintf("page %d: %s", page+1, pt.Warning))
			}
			extract.ProcessPage(rec, pt, s)
			processed++
			sinceUpdate++

			if sinceUpdate >= o.cadence || processed == total {
				if err := o.tracker.Update(ctx, msg.JobKey, processed*100/total); err != nil {
					return "", fmt.Errorf("recording progress: %w", err)
				}
				sinceUpdate = 0
			}
		}
	}

	res := validate.Validate(rec, s)

	var reports []string
	if o.reporter != nil {
		reports, err = o.reporter.Write(ctx, msg.JobKey, s, rec, res, total)
		if err != nil {
			return "", fmt.Errorf("writing reports: %w", err)
		}
	}

	resultRef, err := o.results.Put(ctx, Result{
		JobKey:        msg.JobKey,
		DocumentRef:   msg.DocumentRef,
		SchemaVersion: msg.SchemaVersion,
		PageCount:     total,
		Warnings:      warnings,
		Record:        rec.Snapshot(),
		Validation:    res,
		Reports:       reports,
		CompletedAt:   time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("storing result: %w", err)
	}
	return resultRef, nil
}

// GetProgress reads a job's progress entry.
func (o *Orchestrator) GetProgress(ctx context.Context, key string) (progress.Entry, error) {
	return o.tracker.Get(ctx, key)
}

// GetResult reads a finished job's stored result.
func (o *Orchestrator) GetResult(ctx context.Context, key string) (Result, error) {
	return o.results.Get(ctx, key)
}

// GetRecord returns a finished job's merged field record.
func (o *Orchestrator) GetRecord(ctx context.Context, key string) (*extract.Record, error) {
	res, err := o.results.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return extract.FromSnapshot(res.Record), nil
}

// GetValidation returns a finished job's validation outcome.
func (o *Orchestrator) GetValidation(ctx context.Context, key string) (validate.Result, error) {
	res, err := o.results.Get(ctx, key)
	if err != nil {
		return validate.Result{}, err
	}
	return res.Validation, nil
}
