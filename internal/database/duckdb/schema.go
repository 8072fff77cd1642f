package duckdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/ibero-data/duck-ui-sub001/internal/database/common"
	"github.com/ibero-data/duck-ui-sub001/pkg/adapter"
	"github.com/ibero-data/duck-ui-sub001/pkg/catalog"
	"github.com/ibero-data/duck-ui-sub001/pkg/dbcapabilities"
)

// SchemaOps implements adapter.SchemaOperator on a live engine handle.
type SchemaOps struct {
	conn *Connection
}

// DiscoverSchema walks every attached catalog and returns the full tree of
// user databases, tables, columns, and row counts. System catalogs are
// filtered out.
func (s *SchemaOps) DiscoverSchema(ctx context.Context) (*catalog.SchemaTree, error) {
	if !s.conn.IsConnected() {
		return nil, adapter.ErrConnectionClosed
	}

	databases, err := s.ListDatabases(ctx)
	if err != nil {
		return nil, err
	}

	tree := &catalog.SchemaTree{Databases: make([]catalog.DatabaseInfo, 0, len(databases))}
	for _, dbName := range databases {
		tables, err := s.ListTables(ctx, dbName)
		if err != nil {
			return nil, err
		}

		dbInfo := catalog.DatabaseInfo{Name: dbName, Tables: make([]catalog.TableInfo, 0, len(tables))}
		for _, table := range tables {
			columns, err := s.describeTable(ctx, dbName, table.Schema, table.Name)
			if err != nil {
				return nil, adapter.WrapError(s.conn.dbType, "describe_table", err)
			}
			table.Columns = columns
			table.RowCount = s.countRows(ctx, dbName, table.Schema, table.Name)
			dbInfo.Tables = append(dbInfo.Tables, table)
		}
		tree.Databases = append(tree.Databases, dbInfo)
	}

	return tree, nil
}

// ListDatabases returns attached catalog names, minus system catalogs.
func (s *SchemaOps) ListDatabases(ctx context.Context) ([]string, error) {
	if !s.conn.IsConnected() {
		return nil, adapter.ErrConnectionClosed
	}

	rows, err := s.conn.db.QueryContext(ctx, "SELECT database_name FROM duckdb_databases() ORDER BY database_name")
	if err != nil {
		return nil, adapter.WrapError(s.conn.dbType, "list_databases", err)
	}
	defer rows.Close()

	var databases []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, adapter.WrapError(s.conn.dbType, "list_databases", err)
		}
		if dbcapabilities.IsSystemDatabase(s.conn.dbType, name) {
			continue
		}
		databases = append(databases, name)
	}
	if err := rows.Err(); err != nil {
		return nil, adapter.WrapError(s.conn.dbType, "list_databases", err)
	}

	return databases, nil
}

// ListTables returns base tables and views in the given catalog. Columns and
// row counts are left unpopulated; DiscoverSchema fills them in.
func (s *SchemaOps) ListTables(ctx context.Context, database string) ([]catalog.TableInfo, error) {
	if !s.conn.IsConnected() {
		return nil, adapter.ErrConnectionClosed
	}

	query := `SELECT table_schema, table_name
		FROM information_schema.tables
		WHERE table_catalog = ?
		  AND table_type IN ('BASE TABLE', 'VIEW')
		ORDER BY table_schema, table_name`

	rows, err := s.conn.db.QueryContext(ctx, query, database)
	if err != nil {
		return nil, adapter.WrapError(s.conn.dbType, "list_tables", err)
	}
	defer rows.Close()

	var tables []catalog.TableInfo
	for rows.Next() {
		var schema, name string
		if err := rows.Scan(&schema, &name); err != nil {
			return nil, adapter.WrapError(s.conn.dbType, "list_tables", err)
		}
		tables = append(tables, catalog.TableInfo{Name: name, Schema: schema})
	}
	if err := rows.Err(); err != nil {
		return nil, adapter.WrapError(s.conn.dbType, "list_tables", err)
	}

	return tables, nil
}

func (s *SchemaOps) describeTable(ctx context.Context, database, schema, table string) ([]catalog.ColumnInfo, error) {
	query := fmt.Sprintf("DESCRIBE %s", qualifiedName(database, schema, table))
	rows, err := s.conn.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var columns []catalog.ColumnInfo
	for rows.Next() {
		values := make([]interface{}, len(names))
		ptrs := make([]interface{}, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		col := catalog.ColumnInfo{}
		for i, name := range names {
			switch name {
			case "column_name":
				col.Name = asString(values[i])
			case "column_type":
				col.Type = asString(values[i])
			case "null":
				col.Nullable = strings.EqualFold(asString(values[i]), "YES")
			}
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return columns, nil
}

// countRows is best-effort: a failed count leaves the table in the tree with
// a zero count instead of failing the whole discovery.
func (s *SchemaOps) countRows(ctx context.Context, database, schema, table string) int64 {
	query := fmt.Sprintf("SELECT count(*) FROM %s", qualifiedName(database, schema, table))
	var count int64
	if err := s.conn.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		s.conn.safeLog("warn", "Row count failed for %s.%s.%s: %v", database, schema, table, err)
		return 0
	}
	return count
}

func qualifiedName(database, schema, table string) string {
	parts := make([]string, 0, 3)
	if database != "" {
		parts = append(parts, common.QuoteIdentifier(database))
	}
	if schema != "" {
		parts = append(parts, common.QuoteIdentifier(schema))
	}
	parts = append(parts, common.QuoteIdentifier(table))
	return strings.Join(parts, ".")
}

func asString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
