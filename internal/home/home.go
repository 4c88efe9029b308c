package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the packetcheck home directory.
	DefaultDirName = ".packetcheck"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the packetcheck home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.packetcheck).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// UploadsDir returns the directory where submitted documents are stored.
func (d *Dir) UploadsDir() string {
	return filepath.Join(d.path, "uploads")
}

// ExportsDir returns the directory for generated reports.
func (d *Dir) ExportsDir() string {
	return filepath.Join(d.path, "exports")
}

// ProgressDir returns the directory for progress snapshot files (tier 2).
func (d *Dir) ProgressDir() string {
	return filepath.Join(d.path, "progress")
}

// ResultsDir returns the directory for completed job results.
func (d *Dir) ResultsDir() string {
	return filepath.Join(d.path, "results")
}

// RedisDataDir returns the host path for managed Redis container data.
func (d *Dir) RedisDataDir() string {
	return filepath.Join(d.path, "redis")
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	for _, dir := range []string{
		d.UploadsDir(),
		d.ExportsDir(),
		d.ProgressDir(),
		d.ResultsDir(),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
