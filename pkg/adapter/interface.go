// Package adapter provides the unified interface for all backend connectors.
// This package defines the contracts that backend-specific implementations
// must follow.
package adapter

import (
	"context"

	"github.com/ibero-data/duck-ui-sub001/pkg/catalog"
	"github.com/ibero-data/duck-ui-sub001/pkg/dbcapabilities"
)

// EngineAdapter represents a backend kind adapter. Each backend kind
// (embedded, persistent, remote) must implement this interface.
type EngineAdapter interface {
	// Type returns the canonical backend kind identifier
	Type() dbcapabilities.DatabaseID

	// Capabilities returns the capability metadata for this backend kind
	Capabilities() dbcapabilities.Capability

	// Connect establishes a connection described by config
	Connect(ctx context.Context, config ConnectionConfig) (Connection, error)
}

// Connection represents an active connection to a backend.
// This is the main interface for interacting with a backend.
type Connection interface {
	// Identity and status
	ID() string
	Type() dbcapabilities.DatabaseID
	IsConnected() bool

	// Lifecycle management
	Ping(ctx context.Context) error

	// Close releases the connection. For file-backed engines this blocks
	// until the underlying lock can be considered released, so a follow-up
	// open of the same file passes its conflict check.
	Close() error

	// Operation interfaces
	QueryOperations() QueryOperator
	SchemaOperations() SchemaOperator
	MetadataOperations() MetadataOperator

	// Raw returns the underlying backend-specific handle.
	// Type assertion is required when using Raw().
	Raw() interface{}

	// Configuration
	Config() ConnectionConfig
	Adapter() EngineAdapter
}

// QueryOperator executes SQL against the backend and returns results in the
// canonical normalized shape.
type QueryOperator interface {
	// ExecuteQuery runs a statement and normalizes whatever the backend
	// returns. Query failures are returned as errors; the session layer is
	// responsible for folding them into error-shaped results.
	ExecuteQuery(ctx context.Context, query string) (*QueryResult, error)

	// TestConnection verifies the backend answers a trivial probe.
	TestConnection(ctx context.Context) error
}

// SchemaOperator handles catalog introspection. Implementations for remote
// backends are best-effort per table: a table whose probe fails is still
// listed, with empty columns.
type SchemaOperator interface {
	// DiscoverSchema retrieves the full catalog as a normalized tree
	DiscoverSchema(ctx context.Context) (*catalog.SchemaTree, error)

	// ListDatabases returns the names of all visible databases
	ListDatabases(ctx context.Context) ([]string, error)

	// ListTables returns the tables of one database, without column details
	// or row counts
	ListTables(ctx context.Context, database string) ([]catalog.TableInfo, error)
}

// MetadataOperator handles backend identification and diagnostics.
type MetadataOperator interface {
	// GetVersion returns the engine or server version string
	GetVersion(ctx context.Context) (string, error)

	// CollectMetadata gathers backend details for the session status view
	CollectMetadata(ctx context.Context) (map[string]interface{}, error)
}
