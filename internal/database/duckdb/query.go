package duckdb

import (
	"context"

	"github.com/ibero-data/duck-ui-sub001/pkg/adapter"
)

// QueryOps implements adapter.QueryOperator for engine-backed sessions.
type QueryOps struct {
	conn *Connection
}

// ExecuteQuery runs a statement and normalizes the typed result set.
func (q *QueryOps) ExecuteQuery(ctx context.Context, query string) (*adapter.QueryResult, error) {
	if !q.conn.IsConnected() {
		return nil, adapter.ErrConnectionClosed
	}

	rows, err := q.conn.db.QueryContext(ctx, query)
	if err != nil {
		return nil, adapter.WrapError(q.conn.dbType, "execute_query", err)
	}
	defer rows.Close()

	result, err := scanRows(rows, q.conn.safeLog)
	if err != nil {
		return nil, adapter.WrapError(q.conn.dbType, "execute_query", err)
	}

	return result, nil
}

// TestConnection verifies the engine answers a trivial probe.
func (q *QueryOps) TestConnection(ctx context.Context) error {
	var one int
	if err := q.conn.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return adapter.WrapError(q.conn.dbType, "test_connection", err)
	}
	return nil
}
