package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != "8080" {
		t.Errorf("server port = %q", cfg.Server.Port)
	}
	if cfg.Redis.Enabled {
		t.Error("redis should default to disabled")
	}
	if cfg.Redis.Image != "redis:7-alpine" {
		t.Errorf("redis image = %q", cfg.Redis.Image)
	}
	if cfg.Extraction.SegmentSize != 4 {
		t.Errorf("segment size = %d", cfg.Extraction.SegmentSize)
	}
	if cfg.Extraction.ProgressCadence != 10 {
		t.Errorf("progress cadence = %d", cfg.Extraction.ProgressCadence)
	}
	if cfg.OCR.DPI != 150 {
		t.Errorf("dpi = %d", cfg.OCR.DPI)
	}
	if cfg.Queue.Async {
		t.Error("queue should default to sync")
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Setenv("PACKETCHECK_TEST_SECRET", "hunter2")

	cases := map[string]string{
		"":                             "",
		"plain":                        "plain",
		"${PACKETCHECK_TEST_SECRET}":   "hunter2",
		"x-${PACKETCHECK_TEST_SECRET}": "x-hunter2",
		"${UNSET_VAR_XYZ}":             "",
	}
	for in, want := range cases {
		if got := ResolveEnvVars(in); got != want {
			t.Errorf("ResolveEnvVars(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteDefaultAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("empty config written")
	}

	cm, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg := cm.Get()
	if cfg.Server.Port != "8080" {
		t.Errorf("loaded port = %q", cfg.Server.Port)
	}
	if cfg.Redis.Addr != "127.0.0.1:6379" {
		t.Errorf("loaded redis addr = %q", cfg.Redis.Addr)
	}
}

func TestRedisPassword(t *testing.T) {
	t.Setenv("PACKETCHECK_REDIS_PASSWORD", "s3cret")
	cfg := DefaultConfig()
	if got := cfg.RedisPassword(); got != "s3cret" {
		t.Errorf("RedisPassword() = %q", got)
	}
}
