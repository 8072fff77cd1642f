package adapter

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ibero-data/duck-ui-sub001/pkg/dbcapabilities"
)

// Registry holds the backend adapters available to one engine, keyed by
// backend kind.
type Registry struct {
	mu       sync.RWMutex
	adapters map[dbcapabilities.DatabaseID]EngineAdapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[dbcapabilities.DatabaseID]EngineAdapter),
	}
}

// Register adds an adapter, replacing any previous one for the same kind.
func (r *Registry) Register(a EngineAdapter) {
	r.mu.Lock()
	r.adapters[a.Type()] = a
	r.mu.Unlock()
}

// Get retrieves the adapter for a backend kind.
// Returns ErrAdapterNotFound when no adapter is registered for it.
func (r *Registry) Get(dbType dbcapabilities.DatabaseID) (EngineAdapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[dbType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAdapterNotFound, dbType)
	}
	return a, nil
}

// ListRegistered returns the registered backend kinds in stable order.
func (r *Registry) ListRegistered() []dbcapabilities.DatabaseID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]dbcapabilities.DatabaseID, 0, len(r.adapters))
	for dbType := range r.adapters {
		kinds = append(kinds, dbType)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Connect validates the config, resolves its backend kind, and opens a
// connection through the matching adapter. Adapter failures come back
// wrapped with the backend kind and operation.
func (r *Registry) Connect(ctx context.Context, config ConnectionConfig) (Connection, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Validate guarantees the kind parses
	dbType, _ := config.Kind()

	a, err := r.Get(dbType)
	if err != nil {
		return nil, err
	}

	conn, err := a.Connect(ctx, config)
	if err != nil {
		return nil, WrapError(dbType, "connect", err)
	}
	return conn, nil
}

// globalRegistry collects adapters registered from backend package
// init() functions. The engine snapshots it into its own Registry at
// startup, so tests can build isolated registries without touching it.
var globalRegistry = NewRegistry()

// Register adds an adapter to the global registry.
func Register(a EngineAdapter) {
	globalRegistry.Register(a)
}

// Get retrieves an adapter from the global registry.
func Get(dbType dbcapabilities.DatabaseID) (EngineAdapter, error) {
	return globalRegistry.Get(dbType)
}

// ListRegistered returns the backend kinds in the global registry.
func ListRegistered() []dbcapabilities.DatabaseID {
	return globalRegistry.ListRegistered()
}
