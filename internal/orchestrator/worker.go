package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aemqa/packetcheck/internal/queue"
)

// dequeueWait bounds each blocking poll so the worker notices context
// cancellation promptly.
const dequeueWait = 2 * time.Second

// Worker drains the job queue, running each job through the
// orchestrator until its context is cancelled.
type Worker struct {
	logger *slog.Logger
	orch   *Orchestrator
	jobs   queue.Queue
}

// NewWorker creates a worker over the given queue.
func NewWorker(logger *slog.Logger, orch *Orchestrator, jobs queue.Queue) *Worker {
	return &Worker{logger: logger, orch: orch, jobs: jobs}
}

// Run processes jobs until ctx is cancelled. Dequeue errors are logged
// and retried after a short pause.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("worker started")
	for {
		if err := ctx.Err(); err != nil {
			w.logger.Info("worker stopping")
			return err
		}

		msg, ok, err := w.jobs.Dequeue(ctx, dequeueWait)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			w.logger.Error("dequeue failed", "error", err)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
			continue
		}
		if !ok {
			continue
		}

		w.orch.RunJob(ctx, msg)
	}
}
