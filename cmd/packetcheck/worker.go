package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aemqa/packetcheck/internal/orchestrator"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run a validation worker",
	Long: `Run a worker that drains the Redis job queue.

Workers require redis.enabled and queue.async in the config. Multiple
workers can run against the same queue; each job is taken by exactly
one of them.

Example:
  packetcheck worker`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		a, err := buildApp(ctx, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.jobs == nil {
			return fmt.Errorf("worker requires queue.async and redis.enabled in config")
		}

		w := orchestrator.NewWorker(logger, a.orch, a.jobs)
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
