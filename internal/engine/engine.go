// Package engine wires the workbench core together: the adapter registry,
// the single query session, the bbolt store, the keyring, and the HTTP API
// that the browser UI talks to.
package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ibero-data/duck-ui-sub001/internal/database/duckdb"
	"github.com/ibero-data/duck-ui-sub001/internal/session"
	"github.com/ibero-data/duck-ui-sub001/internal/store"
	"github.com/ibero-data/duck-ui-sub001/pkg/adapter"
	"github.com/ibero-data/duck-ui-sub001/pkg/catalog"
	"github.com/ibero-data/duck-ui-sub001/pkg/config"
	"github.com/ibero-data/duck-ui-sub001/pkg/dbcapabilities"
	"github.com/ibero-data/duck-ui-sub001/pkg/health"
	"github.com/ibero-data/duck-ui-sub001/pkg/keyring"
	"github.com/ibero-data/duck-ui-sub001/pkg/logger"
	"github.com/ibero-data/duck-ui-sub001/pkg/models"
)

// secretStore is the slice of the keyring manager the engine needs. Tests
// substitute an in-memory implementation.
type secretStore interface {
	SetConnectionSecrets(connectionID, password, apiKey string) error
	GetConnectionSecrets(connectionID string) (password, apiKey string)
	DeleteConnectionSecrets(connectionID string)
}

type Engine struct {
	config *config.Config
	server *http.Server
	logger *logger.Logger

	registry *adapter.Registry
	store    *store.Store
	secrets  secretStore
	session  *session.Session
	health   *health.Checker

	state struct {
		sync.Mutex
		isRunning         bool
		ongoingOperations int32
	}
	metrics struct {
		requestsProcessed int64
		errors            int64
	}
}

func NewEngine(cfg *config.Config) *Engine {
	return &Engine{
		config: cfg,
		health: health.NewChecker(),
	}
}

// SetLogger sets the logger for the engine
func (e *Engine) SetLogger(logger *logger.Logger) {
	e.logger = logger
}

func (e *Engine) Start(ctx context.Context) error {
	e.state.Lock()
	if e.state.isRunning {
		e.state.Unlock()
		return fmt.Errorf("engine is already running")
	}
	e.state.isRunning = true
	e.state.Unlock()

	dataDir := e.config.Get("storage.data_dir")
	if dataDir == "" {
		return fmt.Errorf("storage.data_dir is not configured")
	}

	if e.logger != nil {
		e.logger.Infof("Starting core engine with data dir: %s", dataDir)
	}

	st, err := store.Open(filepath.Join(dataDir, "workbench.db"))
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}
	e.store = st

	e.secrets = keyring.NewManager(keyring.DefaultPath(dataDir), keyring.MasterPasswordFromEnv())

	// Snapshot the globally registered backend adapters into this engine's
	// own registry and hand them the runtime pieces they accept.
	e.registry = adapter.NewRegistry()
	for _, dbType := range adapter.ListRegistered() {
		backend, err := adapter.Get(dbType)
		if err != nil {
			continue
		}
		if aware, ok := backend.(interface{ SetLogger(*logger.Logger) }); ok {
			aware.SetLogger(e.logger)
		}
		if aware, ok := backend.(interface{ SetDataDir(string) }); ok {
			aware.SetDataDir(dataDir)
		}
		e.registry.Register(backend)
	}

	if e.logger != nil {
		e.logger.Infof("Registered backends: %v", e.registry.ListRegistered())
	}

	e.session = session.NewSession(e.registry, e.logger)

	items, err := e.store.LoadHistory()
	if err != nil {
		if e.logger != nil {
			e.logger.Warnf("Failed to load query history: %v", err)
		}
	} else {
		e.session.SeedHistory(items)
	}
	e.session.OnHistoryChange(func(items []models.QueryHistoryItem) {
		if err := e.store.SaveHistory(items); err != nil {
			if e.logger != nil {
				e.logger.Warnf("Failed to persist query history: %v", err)
			}
		}
	})
	e.session.OnSchemaChange(func(tree *catalog.SchemaTree) {
		if e.logger != nil && tree != nil {
			e.logger.Debugf("Schema refreshed: %d databases, %d tables", len(tree.Databases), tree.TableCount())
		}
	})

	// Land on an in-memory scratch session so the UI arrives at a working
	// workbench. Failure is logged, not fatal; the daemon still serves.
	if err := e.session.Connect(ctx, e.defaultConnectionConfig()); err != nil {
		if e.logger != nil {
			e.logger.Warnf("Initial in-memory session unavailable: %v", err)
		}
	}

	listen := e.config.GetDefault("server.listen", ":8090")

	e.server = &http.Server{
		Addr:    listen,
		Handler: NewServer(e),
	}

	if e.logger != nil {
		e.logger.Infof("Starting HTTP server on %s", listen)
	}

	go func() {
		if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			if e.logger != nil {
				e.logger.Errorf("HTTP server error: %v", err)
			}
			atomic.AddInt64(&e.metrics.errors, 1)
		}
	}()

	if e.logger != nil {
		e.logger.Infof("Core engine started successfully")
	}

	return nil
}

func (e *Engine) Stop(ctx context.Context) error {
	e.state.Lock()
	if !e.state.isRunning {
		e.state.Unlock()
		return nil
	}
	e.state.isRunning = false
	e.state.Unlock()

	if e.server != nil {
		if err := e.server.Shutdown(ctx); err != nil {
			if e.logger != nil {
				e.logger.Warnf("HTTP server shutdown: %v", err)
			}
		}
	}

	if e.session != nil {
		e.session.Disconnect()
	}

	if e.store != nil {
		return e.store.Close()
	}

	return nil
}

func (e *Engine) GetMetrics() map[string]int64 {
	return map[string]int64{
		"requests_processed": atomic.LoadInt64(&e.metrics.requestsProcessed),
		"errors":             atomic.LoadInt64(&e.metrics.errors),
	}
}

func (e *Engine) CheckHealth() error {
	e.state.Lock()
	defer e.state.Unlock()

	if !e.state.isRunning {
		return fmt.Errorf("service not initialized")
	}

	return nil
}

func (e *Engine) TrackOperation() {
	atomic.AddInt32(&e.state.ongoingOperations, 1)
}

func (e *Engine) UntrackOperation() {
	atomic.AddInt32(&e.state.ongoingOperations, -1)
}

// refreshHealth re-runs the engine's liveness checks.
func (e *Engine) refreshHealth() {
	e.health.RunCheck("engine", e.CheckHealth)
	e.health.RunCheck("store", func() error {
		return e.store.Ping()
	})
	e.health.RunCheck("session", func() error {
		status := e.session.Status()
		if status.State == string(session.StateError) {
			return fmt.Errorf("session in error state: %s", status.Error)
		}
		return nil
	})
}

// ConnectStored switches the session to a stored connection, rehydrating
// its secrets from the keyring. The connect outcome is stamped back onto
// the stored config as its LastError.
func (e *Engine) ConnectStored(ctx context.Context, connectionID string) error {
	stored, err := e.store.GetConnection(connectionID)
	if err != nil {
		return err
	}

	connectErr := e.session.Connect(ctx, e.hydrateConfig(stored))

	stored.LastError = nil
	if connectErr != nil {
		stored.LastError = adapter.GetStringPtr(connectErr.Error())
	}
	if saveErr := e.store.SaveConnection(stored); saveErr != nil {
		if e.logger != nil {
			e.logger.Warnf("Failed to record connect outcome for %s: %v", connectionID, saveErr)
		}
	}

	return connectErr
}

// TestStoredConnection probes a stored connection. When the session is
// already connected to it, the probe rides the live handle; otherwise a
// throwaway connection is opened and closed.
func (e *Engine) TestStoredConnection(ctx context.Context, connectionID string) error {
	stored, err := e.store.GetConnection(connectionID)
	if err != nil {
		return err
	}

	if e.session.State() == session.StateReady && e.session.Config().ConnectionID == connectionID {
		return e.session.TestConnection(ctx)
	}

	conn, err := e.registry.Connect(ctx, e.hydrateConfig(stored))
	if err != nil {
		return err
	}
	defer conn.Close()

	return conn.QueryOperations().TestConnection(ctx)
}

// hydrateConfig fills in the pieces a stored config cannot carry: keyring
// secrets for remote connections and the dataset manifest options for
// embedded ones.
func (e *Engine) hydrateConfig(config adapter.ConnectionConfig) adapter.ConnectionConfig {
	id, ok := config.Kind()
	if !ok {
		return config
	}

	switch id {
	case dbcapabilities.Remote:
		if config.Password == "" && config.APIKey == "" {
			config.Password, config.APIKey = e.secrets.GetConnectionSecrets(config.ConnectionID)
		}
	case dbcapabilities.Embedded:
		config.Options = e.datasetOptions(config.Options)
	}

	return config
}

// datasetOptions merges the daemon's dataset manifest settings into an
// embedded connection's options, without overriding per-connection choices.
func (e *Engine) datasetOptions(base map[string]interface{}) map[string]interface{} {
	manifest := e.config.Get("datasets.manifest")
	if manifest == "" {
		return base
	}
	if _, ok := base[duckdb.OptionDatasetManifest]; ok {
		return base
	}

	opts := make(map[string]interface{}, len(base)+2)
	for k, v := range base {
		opts[k] = v
	}
	opts[duckdb.OptionDatasetManifest] = manifest
	opts[duckdb.OptionStagingDir] = filepath.Join(e.config.Get("storage.data_dir"), "datasets")
	return opts
}

// defaultConnectionConfig is the in-memory scratch session the daemon
// lands on before the user picks a stored connection.
func (e *Engine) defaultConnectionConfig() adapter.ConnectionConfig {
	return e.hydrateConfig(adapter.ConnectionConfig{
		ConnectionID:   "scratch",
		Name:           "In-Memory",
		ConnectionType: string(dbcapabilities.Embedded),
	})
}

// connectTimeout bounds a session switch; persistent opens retry with
// backoff and embedded sessions may stage datasets, so this is generous.
const connectTimeout = 60 * time.Second
