package duckdb

import (
	"context"

	"github.com/ibero-data/duck-ui-sub001/pkg/adapter"
)

// MetadataOps implements adapter.MetadataOperator on a live engine handle.
type MetadataOps struct {
	conn *Connection
}

// GetVersion returns the engine version string.
func (m *MetadataOps) GetVersion(ctx context.Context) (string, error) {
	var version string
	if err := m.conn.db.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return "", adapter.WrapError(m.conn.dbType, "get_version", err)
	}
	return version, nil
}

// CollectMetadata gathers version and catalog counts for the session status
// endpoint.
func (m *MetadataOps) CollectMetadata(ctx context.Context) (map[string]interface{}, error) {
	metadata := make(map[string]interface{})

	version, err := m.GetVersion(ctx)
	if err != nil {
		return nil, err
	}
	metadata["version"] = version
	metadata["backend"] = string(m.conn.dbType)

	var databaseCount int
	err = m.conn.db.QueryRowContext(ctx,
		"SELECT count(*) FROM duckdb_databases() WHERE NOT internal").Scan(&databaseCount)
	if err != nil {
		return nil, adapter.WrapError(m.conn.dbType, "collect_metadata", err)
	}
	metadata["database_count"] = databaseCount

	var tableCount int
	err = m.conn.db.QueryRowContext(ctx,
		"SELECT count(*) FROM information_schema.tables WHERE table_type IN ('BASE TABLE', 'VIEW')").Scan(&tableCount)
	if err != nil {
		return nil, adapter.WrapError(m.conn.dbType, "collect_metadata", err)
	}
	metadata["table_count"] = tableCount

	return metadata, nil
}
