package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aemqa/packetcheck/internal/home"
	"github.com/aemqa/packetcheck/internal/sharedstore"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Manage the Redis container",
	Long: `Manage the lifecycle of a locally-managed Redis container.

Redis provides the shared progress store and the job queue for
multi-process setups. Data persists to ~/.packetcheck/redis/.

Examples:
  packetcheck redis start   # Start the Redis container
  packetcheck redis stop    # Stop the container (data preserved)
  packetcheck redis status  # Check container status
  packetcheck redis logs    # View container logs`,
}

// getRedisManager builds a Docker manager pointed at the home data dir.
func getRedisManager(h *home.Dir) (*sharedstore.DockerManager, error) {
	if err := os.MkdirAll(h.RedisDataDir(), 0o755); err != nil {
		return nil, err
	}
	return sharedstore.NewDockerManager(sharedstore.DockerConfig{
		DataPath: h.RedisDataDir(),
	})
}

var redisStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Redis container",
	Long: `Start the Redis container.

If the container doesn't exist, it will be created and started.
If it exists but is stopped, it will be started.
If it's already running, this is a no-op.

Data is persisted to ~/.packetcheck/redis/.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		h, err := getHome()
		if err != nil {
			return err
		}

		mgr, err := getRedisManager(h)
		if err != nil {
			return err
		}
		defer mgr.Close()

		fmt.Println("Starting Redis...")
		if err := mgr.Start(ctx); err != nil {
			return fmt.Errorf("failed to start Redis: %w", err)
		}

		fmt.Printf("Redis is running at %s\n", mgr.Addr())
		return nil
	},
}

var redisStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the Redis container",
	Long: `Stop the Redis container.

This stops the container but preserves data. Use 'packetcheck redis start'
to restart it later.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		h, err := getHome()
		if err != nil {
			return err
		}

		mgr, err := getRedisManager(h)
		if err != nil {
			return err
		}
		defer mgr.Close()

		fmt.Println("Stopping Redis...")
		if err := mgr.Stop(ctx); err != nil {
			return fmt.Errorf("failed to stop Redis: %w", err)
		}

		fmt.Println("Redis stopped")
		return nil
	},
}

var redisStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show Redis container status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		h, err := getHome()
		if err != nil {
			return err
		}

		mgr, err := getRedisManager(h)
		if err != nil {
			return err
		}
		defer mgr.Close()

		status, err := mgr.Status(ctx)
		if err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}

		switch status {
		case sharedstore.StatusRunning:
			fmt.Printf("Status: %s\n", status)
			fmt.Printf("Addr: %s\n", mgr.Addr())

			client := sharedstore.NewClient(sharedstore.ClientConfig{Addr: mgr.Addr()})
			defer client.Close()
			if err := client.Ping(ctx); err != nil {
				fmt.Printf("Health: unhealthy (%v)\n", err)
			} else {
				fmt.Println("Health: healthy")
			}
		case sharedstore.StatusStopped:
			fmt.Printf("Status: %s (use 'packetcheck redis start' to start)\n", status)
		case sharedstore.StatusNotFound:
			fmt.Printf("Status: %s (use 'packetcheck redis start' to create)\n", status)
		default:
			fmt.Printf("Status: %s\n", status)
		}

		return nil
	},
}

var redisLogsTail string

var redisLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show Redis container logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		h, err := getHome()
		if err != nil {
			return err
		}

		mgr, err := getRedisManager(h)
		if err != nil {
			return err
		}
		defer mgr.Close()

		logs, err := mgr.Logs(ctx, redisLogsTail)
		if err != nil {
			return fmt.Errorf("failed to get logs: %w", err)
		}

		fmt.Print(logs)
		return nil
	},
}

var redisRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the Redis container",
	Long: `Remove the Redis container.

This stops and removes the container. Data in ~/.packetcheck/redis/
is NOT deleted - only the container is removed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		h, err := getHome()
		if err != nil {
			return err
		}

		mgr, err := getRedisManager(h)
		if err != nil {
			return err
		}
		defer mgr.Close()

		fmt.Println("Removing Redis container...")
		if err := mgr.Remove(ctx); err != nil {
			return fmt.Errorf("failed to remove container: %w", err)
		}

		fmt.Println("Redis container removed (data preserved)")
		return nil
	},
}

var redisWaitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for Redis to be ready",
	Long: `Wait for Redis to answer PING.

This is useful in scripts to ensure Redis is fully started before
running workers or the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		h, err := getHome()
		if err != nil {
			return err
		}

		mgr, err := getRedisManager(h)
		if err != nil {
			return err
		}
		defer mgr.Close()

		timeout, _ := cmd.Flags().GetDuration("timeout")
		fmt.Printf("Waiting for Redis (timeout: %s)...\n", timeout)

		if err := mgr.WaitReady(ctx, timeout); err != nil {
			return fmt.Errorf("Redis not ready: %w", err)
		}

		fmt.Println("Redis is ready")
		return nil
	},
}

func init() {
	redisLogsCmd.Flags().StringVar(&redisLogsTail, "tail", "100", "Number of log lines to show")
	redisWaitCmd.Flags().Duration("timeout", 30*time.Second, "How long to wait")

	redisCmd.AddCommand(redisStartCmd)
	redisCmd.AddCommand(redisStopCmd)
	redisCmd.AddCommand(redisStatusCmd)
	redisCmd.AddCommand(redisLogsCmd)
	redisCmd.AddCommand(redisRemoveCmd)
	redisCmd.AddCommand(redisWaitCmd)

	rootCmd.AddCommand(redisCmd)
}
