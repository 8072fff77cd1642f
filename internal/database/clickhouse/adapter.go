// Package clickhouse implements the remote SQL-over-HTTP connector. Queries
// are POSTed as raw text to a ClickHouse-compatible endpoint and the textual
// response body is normalized into the canonical result shape.
package clickhouse

import (
	"context"
	"net/http"
	"net/url"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ibero-data/duck-ui-sub001/pkg/adapter"
	"github.com/ibero-data/duck-ui-sub001/pkg/dbcapabilities"
	"github.com/ibero-data/duck-ui-sub001/pkg/logger"
)

// Adapter implements the adapter.EngineAdapter interface for remote endpoints.
type Adapter struct {
	logger *logger.Logger

	// client carries no global timeout: analytical queries can legitimately
	// run for minutes. Cancellation comes from the request context.
	client *http.Client
}

// NewAdapter creates a new remote endpoint adapter.
func NewAdapter() adapter.EngineAdapter {
	return &Adapter{client: &http.Client{}}
}

// SetLogger attaches a logger after construction.
func (a *Adapter) SetLogger(l *logger.Logger) {
	a.logger = l
}

// Type returns the backend kind identifier.
func (a *Adapter) Type() dbcapabilities.DatabaseID {
	return dbcapabilities.Remote
}

// Capabilities returns the capabilities metadata for remote endpoints.
func (a *Adapter) Capabilities() dbcapabilities.Capability {
	return dbcapabilities.MustGet(dbcapabilities.Remote)
}

// Connect builds the endpoint URL and smoke-tests it with a trivial probe
// through the same header and auth path real queries use. The probe's error
// classification (auth, unreachable, network) passes through to the caller.
func (a *Adapter) Connect(ctx context.Context, config adapter.ConnectionConfig) (adapter.Connection, error) {
	endpoint := BuildEndpointURL(config)

	a.warnRiskyEndpoint(endpoint)

	id := config.ConnectionID
	if id == "" {
		id = uuid.NewString()
	}

	conn := &Connection{
		id:        id,
		endpoint:  endpoint,
		config:    config,
		client:    a.client,
		adapter:   a,
		logger:    a.logger,
		connected: 1,
	}

	if err := conn.QueryOperations().TestConnection(ctx); err != nil {
		return nil, err
	}

	return conn, nil
}

// warnRiskyEndpoint logs the two endpoint shapes that commonly fail in
// confusing ways: TLS against a localhost endpoint, and plain HTTP carrying
// credentials across a non-private network.
func (a *Adapter) warnRiskyEndpoint(endpoint string) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return
	}
	host := u.Hostname()

	if u.Scheme == "https" && dbcapabilities.IsLocalhostVariant(host) {
		a.safeLog("warn", "Endpoint %s uses https against a localhost address; local servers usually serve plain http", endpoint)
	}
	if u.Scheme == "http" && !dbcapabilities.IsPrivateAddress(host) && !dbcapabilities.IsLocalhostVariant(host) {
		a.safeLog("warn", "Endpoint %s uses plain http to a public address; credentials travel unencrypted", endpoint)
	}
}

func (a *Adapter) safeLog(level, format string, args ...interface{}) {
	if a.logger == nil {
		return
	}
	switch level {
	case "debug":
		a.logger.Debugf(format, args...)
	case "warn":
		a.logger.Warnf(format, args...)
	case "error":
		a.logger.Errorf(format, args...)
	default:
		a.logger.Infof(format, args...)
	}
}

// Connection implements adapter.Connection over a remote HTTP endpoint.
// There is no persistent wire connection; each query is one HTTP request.
type Connection struct {
	id        string
	endpoint  string
	config    adapter.ConnectionConfig
	client    *http.Client
	adapter   adapter.EngineAdapter
	logger    *logger.Logger
	connected int32
}

// ID returns the connection identifier.
func (c *Connection) ID() string {
	return c.id
}

// Type returns the backend kind.
func (c *Connection) Type() dbcapabilities.DatabaseID {
	return dbcapabilities.Remote
}

// IsConnected returns whether the connection is active.
func (c *Connection) IsConnected() bool {
	return atomic.LoadInt32(&c.connected) == 1
}

// Ping issues the trivial probe against the endpoint.
func (c *Connection) Ping(ctx context.Context) error {
	return c.QueryOperations().TestConnection(ctx)
}

// Close marks the connection closed. There is no wire state to tear down.
func (c *Connection) Close() error {
	atomic.StoreInt32(&c.connected, 0)
	return nil
}

// QueryOperations returns the query operator for the endpoint.
func (c *Connection) QueryOperations() adapter.QueryOperator {
	return &QueryOps{conn: c}
}

// SchemaOperations returns the schema operator for the endpoint.
func (c *Connection) SchemaOperations() adapter.SchemaOperator {
	return &SchemaOps{conn: c}
}

// MetadataOperations returns the metadata operator for the endpoint.
func (c *Connection) MetadataOperations() adapter.MetadataOperator {
	return &MetadataOps{conn: c}
}

// Raw returns the underlying HTTP client.
func (c *Connection) Raw() interface{} {
	return c.client
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
	if c.logger == nil {
		return
	}
	switch level {
	case "debug":
		c.logger.Debugf(format, args...)
	case "warn":
		c.logger.Warnf(format, args...)
	case "error":
		c.logger.Errorf(format, args...)
	default:
		c.logger.Infof(format, args...)
	}
}
