// Package duckdb implements the embedded in-process analytical engine
// connector. The engine runs in pure-memory mode; optional datasets from a
// manifest are staged and attached at connect time.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/ibero-data/duck-ui-sub001/pkg/adapter"
	"github.com/ibero-data/duck-ui-sub001/pkg/dbcapabilities"
	"github.com/ibero-data/duck-ui-sub001/pkg/logger"
)

// Option keys understood by the embedded connector.
const (
	OptionDatasetManifest = "dataset_manifest"
	OptionStagingDir      = "staging_dir"
)

// bootStatements are applied to every new session. Failure of any one is
// logged and swallowed: the engine must stay usable offline and without
// optional extensions.
var bootStatements = []string{
	"SET enable_object_cache=true",
	"SET enable_http_metadata_cache=true",
	"INSTALL httpfs",
	"LOAD httpfs",
	"INSTALL json",
	"LOAD json",
}

// Adapter implements the adapter.EngineAdapter interface for the embedded engine.
type Adapter struct {
	logger *logger.Logger
}

// NewAdapter creates a new embedded engine adapter.
func NewAdapter() adapter.EngineAdapter {
	return &Adapter{}
}

// SetLogger attaches a logger after construction.
func (a *Adapter) SetLogger(l *logger.Logger) {
	a.logger = l
}

// Type returns the backend kind identifier.
func (a *Adapter) Type() dbcapabilities.DatabaseID {
	return dbcapabilities.Embedded
}

// Capabilities returns the capabilities metadata for the embedded engine.
func (a *Adapter) Capabilities() dbcapabilities.Capability {
	return dbcapabilities.MustGet(dbcapabilities.Embedded)
}

// Connect opens an in-memory session, applies the boot statements, and
// attaches manifest datasets when the config names a manifest.
func (a *Adapter) Connect(ctx context.Context, config adapter.ConnectionConfig) (adapter.Connection, error) {
	db, err := OpenDatabase(ctx, "")
	if err != nil {
		return nil, adapter.NewConnectionError(dbcapabilities.Embedded, ":memory:", err)
	}

	ApplyBootStatements(ctx, db, a.safeLog)

	if manifest, ok := config.Options[OptionDatasetManifest].(string); ok && manifest != "" {
		stagingDir, _ := config.Options[OptionStagingDir].(string)
		attachManifestDatasets(ctx, db, manifest, stagingDir, a.safeLog)
	}

	id := config.ConnectionID
	if id == "" {
		id = uuid.NewString()
	}

	return NewLiveConnection(id, dbcapabilities.Embedded, db, config, a, a.logger), nil
}

// safeLog logs via the attached logger, or drops the message when none is set.
func (a *Adapter) safeLog(level, format string, args ...interface{}) {
	safeLog(a.logger, level, format, args...)
}

func safeLog(l *logger.Logger, level, format string, args ...interface{}) {
	if l == nil {
		return
	}
	switch level {
	case "debug":
		l.Debugf(format, args...)
	case "warn":
		l.Warnf(format, args...)
	case "error":
		l.Errorf(format, args...)
	default:
		l.Infof(format, args...)
	}
}

// OpenDatabase opens an engine handle for the given path. An empty path
// means a pure in-memory session. The handle is pinged before it is
// returned, so callers can rely on a usable connection.
func OpenDatabase(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	return db, nil
}

// ApplyBootStatements runs the session bootstrap statements on a fresh
// handle. Failures are logged and skipped; a session without the optional
// extensions is still usable.
func ApplyBootStatements(ctx context.Context, db *sql.DB, log func(level, format string, args ...interface{})) {
	for _, stmt := range bootStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log("warn", "Boot statement %q failed: %v", stmt, err)
		}
	}
}

// Connection implements adapter.Connection for engine-backed sessions. The
// persistent connector reuses it with its own backend kind and teardown.
type Connection struct {
	id        string
	dbType    dbcapabilities.DatabaseID
	db        *sql.DB
	config    adapter.ConnectionConfig
	adapter   adapter.EngineAdapter
	logger    *logger.Logger
	connected int32
}

// NewLiveConnection wraps an open engine handle in the adapter contract.
func NewLiveConnection(id string, dbType dbcapabilities.DatabaseID, db *sql.DB, config adapter.ConnectionConfig, ad adapter.EngineAdapter, l *logger.Logger) *Connection {
	return &Connection{
		id:        id,
		dbType:    dbType,
		db:        db,
		config:    config,
		adapter:   ad,
		logger:    l,
		connected: 1,
	}
}

// ID returns the connection identifier.
func (c *Connection) ID() string {
	return c.id
}

// Type returns the backend kind.
func (c *Connection) Type() dbcapabilities.DatabaseID {
	return c.dbType
}

// IsConnected returns whether the connection is active.
func (c *Connection) IsConnected() bool {
	return atomic.LoadInt32(&c.connected) == 1
}

// Ping checks if the connection is alive.
func (c *Connection) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the engine handle.
func (c *Connection) Close() error {
	atomic.StoreInt32(&c.connected, 0)
	return c.db.Close()
}

// QueryOperations returns the query operator for the engine.
func (c *Connection) QueryOperations() adapter.QueryOperator {
	return &QueryOps{conn: c}
}

// SchemaOperations returns the schema operator for the engine.
func (c *Connection) SchemaOperations() adapter.SchemaOperator {
	return &SchemaOps{conn: c}
}

// MetadataOperations returns the metadata operator for the engine.
func (c *Connection) MetadataOperations() adapter.MetadataOperator {
	return &MetadataOps{conn: c}
}

// Raw returns the underlying *sql.DB.
func (c *Connection) Raw() interface{} {
	return c.db
}

// Config returns the connection configuration.
func (c *Connection) Config() adapter.ConnectionConfig {
	return c.config
}

// Adapter returns the backend adapter.
func (c *Connection) Adapter() adapter.EngineAdapter {
	return c.adapter
}

func (c *Connection) safeLog(level, format string, args ...interface{}) {
	safeLog(c.logger, level, format, args...)
}
