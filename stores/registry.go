// Package stores provides host adapters that implement [assetfs.AssetStore]
// over concrete storage backends, plus a registry that builds them from raw
// JSON store definitions
package stores

import (
	"encoding/json"
	"sync"

	"github.com/brettbedarf/assetfs"
	"github.com/pkg/errors"
)

// Registry maps store type keys to providers
type Registry struct {
	mu        sync.RWMutex
	providers map[string]assetfs.StoreProvider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]assetfs.StoreProvider)}
}

// Default is the process-wide registry used by the CLI
var Default = NewRegistry()

// Register ties a provider to a "type" key. The first provider registered for
// a key wins; later registrations are ignored
func (r *Registry) Register(storeType string, provider assetfs.StoreProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[storeType]; exists {
		return
	}
	r.providers[storeType] = provider
}

// GetProvider returns the provider registered for storeType
func (r *Registry) GetProvider(storeType string) (assetfs.StoreProvider, error) {
	r.mu.RLock()
	p, ok := r.providers[storeType]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Errorf("no store provider for %q", storeType)
	}
	return p, nil
}

// NewStore picks the provider based on the "type" field of raw and hands it
// the whole definition. All expected types should be registered first
func (r *Registry) NewStore(raw []byte) (assetfs.AssetStore, error) {
	var meta struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, errors.Wrap(err, "couldn't read store type")
	}
	if meta.Type == "" {
		return nil, errors.New("store definition is missing the type field")
	}
	p, err := r.GetProvider(meta.Type)
	if err != nil {
		return nil, err
	}
	return p.NewStore(raw)
}
