package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var validateSchemaVersion string

var validateCmd = &cobra.Command{
	Use:   "validate <packet.pdf>",
	Short: "Validate a packet from the command line",
	Long: `Validate a single PDF packet synchronously and print the result.

The job runs in-process regardless of queue configuration. Reports are
written to the exports directory, and the full result JSON goes to
stdout. The exit code is non-zero when the packet fails validation.

Example:
  packetcheck validate shipment-1234.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		a, err := buildApp(ctx, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		path := args[0]
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}

		// One-shot runs are always synchronous.
		a.orch = a.orch.WithoutQueue()
		key, err := a.orch.Submit(ctx, path, validateSchemaVersion)
		if err != nil {
			return err
		}

		entry, err := a.orch.GetProgress(ctx, key)
		if err != nil {
			return err
		}
		if entry.Error != "" {
			return fmt.Errorf("validation job failed: %s", entry.Error)
		}

		res, err := a.orch.GetResult(ctx, key)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}

		if !res.Validation.Valid {
			return fmt.Errorf("packet failed validation: %d missing, %d out of range",
				len(res.Validation.MissingFields), len(res.Validation.OutOfRange))
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateSchemaVersion, "schema", "", "schema version to validate against (default: built-in)")

	rootCmd.AddCommand(validateCmd)
}
