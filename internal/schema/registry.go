package schema

import (
	"fmt"
	"sync"
)

// Registry maps schema versions to immutable Schema instances.
// The default version is always present.
type Registry struct {
	mu       sync.RWMutex
	versions map[string]*Schema
}

// NewRegistry creates a registry pre-populated with the default schema.
func NewRegistry() *Registry {
	return &Registry{
		versions: map[string]*Schema{DefaultVersion: Default()},
	}
}

// Register adds a schema under the given version.
// Re-registering the default version is rejected.
func (r *Registry) Register(version string, s *Schema) error {
	if version == "" {
		return fmt.Errorf("schema version must not be empty")
	}
	if version == DefaultVersion {
		return fmt.Errorf("cannot replace built-in schema version %q", DefaultVersion)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.versions[version] = s
	return nil
}

// RegisterFile loads a schema override file and registers it under the
// version the file declares.
func (r *Registry) RegisterFile(path string) (string, error) {
	version, s, err := LoadFile(path)
	if err != nil {
		return "", err
	}
	if err := r.Register(version, s); err != nil {
		return "", err
	}
	return version, nil
}

// Get returns the schema for a version. An empty version selects the
// default.
func (r *Registry) Get(version string) (*Schema, error) {
	if version == "" {
		version = DefaultVersion
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.versions[version]
	if !ok {
		return nil, fmt.Errorf("unknown schema version %q", version)
	}
	return s, nil
}
