package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aemqa/packetcheck/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the packetcheck server",
	Long: `Start the packetcheck HTTP server.

The server accepts PDF uploads, runs validation jobs, and serves
progress, results, and report downloads:
  - POST /api/validate         - Upload a packet
  - GET  /api/progress/{key}   - Poll a job
  - GET  /api/results/{key}    - Fetch a finished job's result
  - GET  /download/{file}      - Download a report
  - GET  /health, /ready       - Health checks

With queue.async enabled, jobs are dispatched over Redis to worker
processes ('packetcheck worker'); otherwise they run in-process.

Examples:
  packetcheck serve                    # Start on default port 8080
  packetcheck serve --port 3000        # Start on custom port
  packetcheck serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		a, err := buildApp(ctx, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		a.cfgMgr.WatchConfig()

		host := serveHost
		if host == "" {
			host = a.cfg.Server.Host
		}
		port := servePort
		if port == "" {
			port = a.cfg.Server.Port
		}

		var probe server.ReadinessProbe
		if a.redis != nil {
			probe = func(ctx context.Context) error { return a.redis.Ping(ctx) }
		}

		srv, err := server.New(server.Config{
			Host:           host,
			Port:           port,
			UploadsDir:     a.home.UploadsDir(),
			ExportsDir:     a.home.ExportsDir(),
			MaxUploadBytes: a.cfg.Server.MaxUploadMB << 20,
			Probe:          probe,
			Logger:         logger,
		}, a.orch)
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default from config)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default from config)")

	rootCmd.AddCommand(serveCmd)
}
