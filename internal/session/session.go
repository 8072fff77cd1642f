// Package session implements the connection orchestrator: a single mutable
// session slot over the registered backend connectors, the query execution
// path with its tagged-result contract, and the query history.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ibero-data/duck-ui-sub001/internal/database/common"
	"github.com/ibero-data/duck-ui-sub001/pkg/adapter"
	"github.com/ibero-data/duck-ui-sub001/pkg/catalog"
	"github.com/ibero-data/duck-ui-sub001/pkg/logger"
	"github.com/ibero-data/duck-ui-sub001/pkg/models"
)

// State is the session lifecycle state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateReady        State = "ready"
	StateError        State = "error"
)

// Session owns the single live backend connection. At most one connection is
// live at a time: Connect tears the previous one down completely, including
// the file-backed connector's lock-release grace period, before the next
// connect begins. Queries against the current connection are not serialized
// against each other.
type Session struct {
	registry *adapter.Registry
	logger   *logger.Logger

	mu          sync.Mutex
	state       State
	conn        adapter.Connection
	config      adapter.ConnectionConfig
	lastError   string
	connectedAt time.Time
	history     []models.QueryHistoryItem
	schema      *catalog.SchemaTree

	onSchemaChange  func(*catalog.SchemaTree)
	onHistoryChange func([]models.QueryHistoryItem)
}

// NewSession creates a disconnected session over the given adapter registry.
func NewSession(registry *adapter.Registry, l *logger.Logger) *Session {
	return &Session{
		registry: registry,
		logger:   l,
		state:    StateDisconnected,
	}
}

// OnSchemaChange registers a sink invoked with each freshly fetched tree.
// Register sinks before the first Connect.
func (s *Session) OnSchemaChange(fn func(*catalog.SchemaTree)) {
	s.onSchemaChange = fn
}

// OnHistoryChange registers a sink invoked with the full history list after
// every change. Register sinks before the first Connect.
func (s *Session) OnHistoryChange(fn func([]models.QueryHistoryItem)) {
	s.onHistoryChange = fn
}

// SeedHistory loads persisted history, trimming to the cap.
func (s *Session) SeedHistory(items []models.QueryHistoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(items) > HistoryLimit {
		items = items[:HistoryLimit]
	}
	s.history = make([]models.QueryHistoryItem, len(items))
	copy(s.history, items)
}

// Connect establishes a session for the given config, tearing down any
// current session first. On connector failure the session lands in the
// error state with the message retained and no live handle; the error is
// also returned so the caller can surface it.
func (s *Session) Connect(ctx context.Context, config adapter.ConnectionConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardownLocked()

	s.state = StateConnecting
	s.lastError = ""
	s.safeLog("info", "Connecting to %q (%s)", config.Name, config.ConnectionType)

	conn, err := s.registry.Connect(ctx, config)
	if err != nil {
		s.state = StateError
		s.lastError = err.Error()
		config.LastError = adapter.GetStringPtr(err.Error())
		s.config = config
		s.safeLog("error", "Connect failed for %q: %v", config.Name, err)
		return err
	}

	config.LastError = nil
	s.conn = conn
	s.config = config
	s.state = StateReady
	s.connectedAt = time.Now()
	s.safeLog("info", "Connected to %q (%s)", config.Name, conn.Type())

	// Fetch the tree right away so the explorer is populated on arrival
	s.refreshSchemaLocked(ctx)

	return nil
}

// Disconnect tears down the current session, if any. It blocks until the
// backend's teardown discipline completes.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardownLocked()
	s.lastError = ""
}

// teardownLocked closes the live connection and resets to disconnected.
// Close blocks until the backend releases its resources; the file-backed
// connector waits out its grace period here, so the next open cannot race
// the draining file lock.
func (s *Session) teardownLocked() {
	if s.conn == nil {
		s.state = StateDisconnected
		return
	}

	s.safeLog("info", "Tearing down session for %q", s.config.Name)
	if err := s.conn.Close(); err != nil {
		s.safeLog("warn", "Teardown of %q reported: %v", s.config.Name, err)
	}
	s.conn = nil
	s.schema = nil
	s.state = StateDisconnected
}

// ExecuteQuery runs a statement against the current connection. Execution
// failures never surface as Go errors: the returned result carries the
// error text and a history entry is recorded either way, so callers branch
// on result.Error instead of wrapping this call in error handling. A
// successful statement that looks like DDL triggers a schema refresh.
func (s *Session) ExecuteQuery(ctx context.Context, query, tabID string) *adapter.QueryResult {
	s.mu.Lock()
	conn := s.conn
	state := s.state
	s.mu.Unlock()

	if state != StateReady || conn == nil {
		err := fmt.Errorf("no active connection")
		s.recordHistory(query, tabID, err, -1)
		return adapter.NewErrorResult(err, 0)
	}

	start := time.Now()
	result, err := conn.QueryOperations().ExecuteQuery(ctx, query)
	duration := time.Since(start)

	if err != nil {
		s.safeLog("warn", "Query failed after %s: %v", duration.Round(time.Millisecond), err)
		s.recordHistory(query, tabID, err, duration.Milliseconds())
		return adapter.NewErrorResult(err, duration)
	}

	s.recordHistory(query, tabID, nil, duration.Milliseconds())

	if common.IsDDLStatement(query) {
		s.refreshSchema(ctx)
	}

	return result.WithDuration(duration)
}

// FetchSchema rebuilds the schema tree from the live connection and replaces
// the cached tree wholesale.
func (s *Session) FetchSchema(ctx context.Context) (*catalog.SchemaTree, error) {
	s.mu.Lock()
	conn := s.conn
	state := s.state
	s.mu.Unlock()

	if state != StateReady || conn == nil {
		return nil, adapter.ErrConnectionClosed
	}

	tree, err := conn.SchemaOperations().DiscoverSchema(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.schema = tree
	sink := s.onSchemaChange
	s.mu.Unlock()

	if sink != nil {
		sink(tree)
	}
	return tree, nil
}

// refreshSchema is the best-effort variant used after DDL.
func (s *Session) refreshSchema(ctx context.Context) {
	if _, err := s.FetchSchema(ctx); err != nil {
		s.safeLog("warn", "Schema refresh failed: %v", err)
	}
}

func (s *Session) refreshSchemaLocked(ctx context.Context) {
	tree, err := s.conn.SchemaOperations().DiscoverSchema(ctx)
	if err != nil {
		s.safeLog("warn", "Initial schema fetch failed: %v", err)
		return
	}
	s.schema = tree
	if s.onSchemaChange != nil {
		s.onSchemaChange(tree)
	}
}

// CollectMetadata gathers backend metadata for the status endpoint.
func (s *Session) CollectMetadata(ctx context.Context) (map[string]interface{}, error) {
	s.mu.Lock()
	conn := s.conn
	state := s.state
	s.mu.Unlock()

	if state != StateReady || conn == nil {
		return nil, adapter.ErrConnectionClosed
	}
	return conn.MetadataOperations().CollectMetadata(ctx)
}

// TestConnection probes the live connection without disturbing it.
func (s *Session) TestConnection(ctx context.Context) error {
	s.mu.Lock()
	conn := s.conn
	state := s.state
	s.mu.Unlock()

	if state != StateReady || conn == nil {
		return adapter.ErrConnectionClosed
	}
	return conn.QueryOperations().TestConnection(ctx)
}

// Status returns the API view of the session.
func (s *Session) Status() models.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := models.SessionStatus{State: string(s.state)}
	if s.state == StateError {
		status.Error = s.lastError
	}
	if s.config.Name != "" {
		status.ConnectionName = s.config.Name
		status.ConnectionType = s.config.ConnectionType
	}
	if s.conn != nil {
		status.ConnectionID = s.conn.ID()
		status.ConnectionType = string(s.conn.Type())
		since := s.connectedAt
		status.ConnectedSince = &since
	}
	return status
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Config returns the config of the current or last attempted connection.
func (s *Session) Config() adapter.ConnectionConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Schema returns the last fetched tree, or nil before the first fetch.
func (s *Session) Schema() *catalog.SchemaTree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schema
}

// History returns a copy of the history list, newest first.
func (s *Session) History() []models.QueryHistoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]models.QueryHistoryItem, len(s.history))
	copy(items, s.history)
	return items
}

// ClearHistory empties the history list.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	s.history = nil
	sink := s.onHistoryChange
	s.mu.Unlock()

	if sink != nil {
		sink([]models.QueryHistoryItem{})
	}
}

func (s *Session) recordHistory(query, tabID string, execErr error, durationMs int64) {
	s.mu.Lock()
	s.history = UpdateHistory(s.history, NewHistoryItem(query, tabID, execErr, durationMs))
	items := make([]models.QueryHistoryItem, len(s.history))
	copy(items, s.history)
	sink := s.onHistoryChange
	s.mu.Unlock()

	if sink != nil {
		sink(items)
	}
}

func (s *Session) safeLog(level, format string, args ...interface{}) {
	if s.logger == nil {
		return
	}
	switch level {
	case "debug":
		s.logger.Debugf(format, args...)
	case "warn":
		s.logger.Warnf(format, args...)
	case "error":
		s.logger.Errorf(format, args...)
	default:
		s.logger.Infof(format, args...)
	}
}
