package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aemqa/packetcheck/internal/config"
	"github.com/aemqa/packetcheck/internal/home"
	"github.com/aemqa/packetcheck/internal/orchestrator"
	"github.com/aemqa/packetcheck/internal/pagetext"
	"github.com/aemqa/packetcheck/internal/progress"
	"github.com/aemqa/packetcheck/internal/queue"
	"github.com/aemqa/packetcheck/internal/report"
	"github.com/aemqa/packetcheck/internal/schema"
	"github.com/aemqa/packetcheck/internal/sharedstore"
)

// app bundles the wired services a command needs.
type app struct {
	logger  *slog.Logger
	cfg     *config.Config
	cfgMgr  *config.Manager
	home    *home.Dir
	schemas *schema.Registry
	redis   *sharedstore.Client // nil when the shared store is disabled
	jobs    queue.Queue         // nil in synchronous mode
	orch    *orchestrator.Orchestrator
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// buildApp wires the full pipeline from config. An unreachable Redis is
// a startup error when enabled; the caller asked for it explicitly.
func buildApp(ctx context.Context, logger *slog.Logger) (*app, error) {
	h, err := getHome()
	if err != nil {
		return nil, err
	}

	cfgPath := cfgFile
	if cfgPath == "" && h.ConfigExists() {
		cfgPath = h.ConfigPath()
	}
	cfgMgr, err := config.NewManager(cfgPath)
	if err != nil {
		return nil, err
	}
	cfg := cfgMgr.Get()

	schemas := schema.NewRegistry()
	if cfg.SchemaFile != "" {
		version, err := schemas.RegisterFile(cfg.SchemaFile)
		if err != nil {
			return nil, fmt.Errorf("loading schema file: %w", err)
		}
		logger.Info("loaded field schema", "file", cfg.SchemaFile, "version", version)
	}

	source := pagetext.NewSource(pagetext.Config{
		Pdftotext:   cfg.OCR.Pdftotext,
		Pdftoppm:    cfg.OCR.Pdftoppm,
		Tesseract:   cfg.OCR.Tesseract,
		DPI:         cfg.OCR.DPI,
		OCRTimeout:  time.Duration(cfg.OCR.TimeoutSeconds) * time.Second,
		SegmentSize: cfg.Extraction.SegmentSize,
	}, logger)

	trackerOpts := []progress.TrackerOption{}
	fileStore, err := progress.NewFileStore(h.ProgressDir())
	if err != nil {
		return nil, err
	}
	trackerOpts = append(trackerOpts, progress.WithFileStore(fileStore))

	var redisClient *sharedstore.Client
	if cfg.Redis.Enabled {
		redisClient = sharedstore.NewClient(sharedstore.ClientConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.RedisPassword(),
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx); err != nil {
			return nil, fmt.Errorf("shared store unreachable: %w", err)
		}
		trackerOpts = append(trackerOpts, progress.WithSharedStore(redisClient.ProgressStore("packetcheck:progress")))
		logger.Info("shared store connected", "addr", cfg.Redis.Addr)
	}
	tracker := progress.NewTracker(logger, trackerOpts...)

	results, err := orchestrator.NewResultStore(h.ResultsDir())
	if err != nil {
		return nil, err
	}

	reporter, err := report.NewWriter(h.ExportsDir(), logger)
	if err != nil {
		return nil, err
	}

	orchOpts := []orchestrator.Option{
		orchestrator.WithReporter(reporter),
		orchestrator.WithProgressCadence(cfg.Extraction.ProgressCadence),
	}

	var jobs queue.Queue
	if cfg.Queue.Async {
		if redisClient == nil {
			return nil, fmt.Errorf("queue.async requires redis.enabled")
		}
		jobs = queue.NewRedisQueue(redisClient, cfg.Queue.Key)
		orchOpts = append(orchOpts, orchestrator.WithQueue(jobs))
	}

	orch := orchestrator.New(logger, source, schemas, tracker, results, orchOpts...)

	return &app{
		logger:  logger,
		cfg:     cfg,
		cfgMgr:  cfgMgr,
		home:    h,
		schemas: schemas,
		redis:   redisClient,
		jobs:    jobs,
		orch:    orch,
	}, nil
}

// Close releases the app's connections.
func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("closing shared store", "error", err)
		}
	}
}
