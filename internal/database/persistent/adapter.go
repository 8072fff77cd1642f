// Package persistent implements the file-backed engine connector. It is the
// same engine as the in-memory connector, pointed at a local database file,
// with a single-writer guard over the backing path.
package persistent

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ibero-data/duck-ui-sub001/internal/database/common"
	"github.com/ibero-data/duck-ui-sub001/internal/database/duckdb"
	"github.com/ibero-data/duck-ui-sub001/pkg/adapter"
	"github.com/ibero-data/duck-ui-sub001/pkg/dbcapabilities"
	"github.com/ibero-data/duck-ui-sub001/pkg/logger"
)

const (
	openAttempts       = 4
	openRetryBaseDelay = 1500 * time.Millisecond

	// releaseGracePeriod is how long teardown waits after closing the
	// handle before the path is unmarked. The engine releases its file lock
	// asynchronously; unmarking earlier would let the next open pass the
	// single-writer check while the lock is still draining.
	releaseGracePeriod = 2 * time.Second
)

// Adapter implements the adapter.EngineAdapter interface for the file-backed engine.
type Adapter struct {
	logger  *logger.Logger
	dataDir string
	paths   *PathSet
}

// NewAdapter creates a new file-backed engine adapter.
func NewAdapter() adapter.EngineAdapter {
	return &Adapter{paths: NewPathSet()}
}

// SetLogger attaches a logger after construction.
func (a *Adapter) SetLogger(l *logger.Logger) {
	a.logger = l
}

// SetDataDir roots relative storage paths under the given directory.
func (a *Adapter) SetDataDir(dir string) {
	a.dataDir = dir
}

// Type returns the backend kind identifier.
func (a *Adapter) Type() dbcapabilities.DatabaseID {
	return dbcapabilities.Persistent
}

// Capabilities returns the capabilities metadata for the file-backed engine.
func (a *Adapter) Capabilities() dbcapabilities.Capability {
	return dbcapabilities.MustGet(dbcapabilities.Persistent)
}

// NormalizePath canonicalizes a user-supplied storage path: leading slashes
// are stripped and the standard file extension is enforced. The normalized
// form is the key for the single-writer check, so two spellings of the same
// file collapse to one entry.
func NormalizePath(path string) (string, error) {
	p := strings.TrimSpace(path)
	for strings.HasPrefix(p, "/") {
		p = strings.TrimPrefix(p, "/")
	}
	if p == "" {
		return "", fmt.Errorf("storage path is empty")
	}
	if strings.Contains(p, "..") {
		return "", fmt.Errorf("storage path must not contain '..'")
	}
	if !strings.HasSuffix(strings.ToLower(p), ".db") {
		p += ".db"
	}
	return p, nil
}

// Connect opens a file-backed session. The path is checked against the
// in-process single-writer set before any open is attempted; a conflict
// fails fast. The open itself is retried because a previous session's file
// lock may still be draining.
func (a *Adapter) Connect(ctx context.Context, config adapter.ConnectionConfig) (adapter.Connection, error) {
	normalized, err := NormalizePath(config.Path)
	if err != nil {
		return nil, adapter.NewConfigurationError(dbcapabilities.Persistent, "path", err.Error())
	}

	if !a.paths.Mark(normalized) {
		return nil, adapter.NewConflictError(dbcapabilities.Persistent, normalized)
	}

	filePath := normalized
	if a.dataDir != "" {
		filePath = filepath.Join(a.dataDir, normalized)
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			a.paths.Unmark(normalized)
			return nil, adapter.NewConnectionError(dbcapabilities.Persistent, normalized, err)
		}
	}

	var db *sql.DB
	err = common.Retry(ctx, openAttempts, openRetryBaseDelay, func() error {
		handle, openErr := duckdb.OpenDatabase(ctx, filePath)
		if openErr != nil {
			return openErr
		}
		db = handle
		return nil
	})
	if err != nil {
		a.paths.Unmark(normalized)
		return nil, adapter.NewConnectionError(dbcapabilities.Persistent, normalized, err)
	}

	duckdb.ApplyBootStatements(ctx, db, a.safeLog)

	id := config.ConnectionID
	if id == "" {
		id = uuid.NewString()
	}

	return &Connection{
		Connection:     duckdb.NewLiveConnection(id, dbcapabilities.Persistent, db, config, a, a.logger),
		adapter:        a,
		normalizedPath: normalized,
	}, nil
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

// Connection wraps the shared engine connection with the file-backed
// teardown discipline: close the handle, wait out the lock-release grace
// period, then free the path for the next session.
type Connection struct {
	*duckdb.Connection

	adapter        *Adapter
	normalizedPath string
	closeOnce      sync.Once
}

// Close tears down the session. It blocks for the grace period before
// unmarking the path, so callers must not start a new open for the same
// path until Close returns.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.Connection.Close()
		time.Sleep(releaseGracePeriod)
		c.adapter.paths.Unmark(c.normalizedPath)
	})
	return err
}
