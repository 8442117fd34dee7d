package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/reglet-dev/zendext-sdk/domain/entities"
	sdkErrors "github.com/reglet-dev/zendext-sdk/domain/errors"
	"github.com/reglet-dev/zendext-sdk/domain/ports"
)

var _ ports.SchemaRegistry = (*Registry)(nil)

// registryConfig holds configuration for the Registry.
type registryConfig struct {
	strictMode bool // Fail on duplicate registrations
}

func defaultRegistryConfig() registryConfig {
	return registryConfig{
		strictMode: true,
	}
}

// RegistryOption configures a Registry instance.
type RegistryOption func(*registryConfig)

// WithStrictMode enables/disables strict mode for duplicate registrations.
// Default is true (fail on duplicates).
func WithStrictMode(enabled bool) RegistryOption {
	return func(c *registryConfig) {
		c.strictMode = enabled
	}
}

// Registry maps document kinds to JSON schemas reflected from Go types.
type Registry struct {
	config  registryConfig
	mu      sync.Mutex
	schemas sync.Map // map[string]string
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry{config: cfg}
}

// NewManifestRegistry creates a Registry with the extension manifest
// registered under KindManifest.
func NewManifestRegistry(opts ...RegistryOption) (*Registry, error) {
	r := NewRegistry(opts...)
	if err := r.Register(KindManifest, &entities.ExtensionManifest{}); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds a schema generated from a Go struct.
func (r *Registry) Register(kind string, model interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.config.strictMode {
		if _, exists := r.schemas.Load(kind); exists {
			return &sdkErrors.SchemaError{Type: kind, Err: fmt.Errorf("kind %q already registered", kind)}
		}
	}

	data, err := json.Marshal(newReflector().Reflect(model))
	if err != nil {
		return &sdkErrors.SchemaError{Type: kind, Err: err}
	}
	r.schemas.Store(kind, string(data))
	return nil
}

// GetSchema retrieves the JSON schema registered for kind.
func (r *Registry) GetSchema(kind string) (string, bool) {
	v, ok := r.schemas.Load(kind)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// List returns all registered kinds, sorted.
func (r *Registry) List() []string {
	var keys []string
	r.schemas.Range(func(k, v interface{}) bool {
		keys = append(keys, k.(string))
		return true
	})
	sort.Strings(keys)
	return keys
}
