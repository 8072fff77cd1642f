package clickhouse

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ibero-data/duck-ui-sub001/internal/database/common"
	"github.com/ibero-data/duck-ui-sub001/pkg/adapter"
	"github.com/ibero-data/duck-ui-sub001/pkg/catalog"
	"github.com/ibero-data/duck-ui-sub001/pkg/dbcapabilities"
)

// SchemaOps implements adapter.SchemaOperator over the HTTP endpoint.
//
// Remote introspection is inherently less reliable than the embedded
// engine's, so every step past the initial database listing is best-effort:
// a table whose describe or count fails is still listed with empty columns
// and a zero count instead of being dropped from the tree.
type SchemaOps struct {
	conn *Connection
}

// DiscoverSchema enumerates databases, tables, columns, and row counts.
func (s *SchemaOps) DiscoverSchema(ctx context.Context) (*catalog.SchemaTree, error) {
	databases, err := s.ListDatabases(ctx)
	if err != nil {
		return nil, err
	}

	tree := &catalog.SchemaTree{Databases: make([]catalog.DatabaseInfo, 0, len(databases))}
	for _, dbName := range databases {
		dbInfo := catalog.DatabaseInfo{Name: dbName, Tables: []catalog.TableInfo{}}

		tables, err := s.ListTables(ctx, dbName)
		if err != nil {
			s.conn.safeLog("warn", "Table listing failed for database %s: %v", dbName, err)
			tree.Databases = append(tree.Databases, dbInfo)
			continue
		}

		for _, table := range tables {
			columns, err := s.describeTable(ctx, dbName, table.Name)
			if err != nil {
				s.conn.safeLog("warn", "Describe failed for %s.%s: %v", dbName, table.Name, err)
				columns = []catalog.ColumnInfo{}
			}
			table.Columns = columns
			table.RowCount = s.countRows(ctx, dbName, table.Name)
			dbInfo.Tables = append(dbInfo.Tables, table)
		}
		tree.Databases = append(tree.Databases, dbInfo)
	}

	return tree, nil
}

// ListDatabases returns the server's databases, minus system ones.
func (s *SchemaOps) ListDatabases(ctx context.Context) ([]string, error) {
	result, err := s.runIntrospection(ctx, "SHOW DATABASES")
	if err != nil {
		return nil, err
	}

	var databases []string
	for _, name := range firstColumnValues(result) {
		if dbcapabilities.IsSystemDatabase(dbcapabilities.Remote, name) {
			continue
		}
		databases = append(databases, name)
	}
	return databases, nil
}

// ListTables returns the tables of one database. Columns and row counts are
// left unpopulated; DiscoverSchema fills them in.
func (s *SchemaOps) ListTables(ctx context.Context, database string) ([]catalog.TableInfo, error) {
	query := fmt.Sprintf("SHOW TABLES FROM %s", common.QuoteIdentifier(database))
	result, err := s.runIntrospection(ctx, query)
	if err != nil {
		return nil, err
	}

	var tables []catalog.TableInfo
	for _, name := range firstColumnValues(result) {
		tables = append(tables, catalog.TableInfo{Name: name, Schema: database})
	}
	return tables, nil
}

func (s *SchemaOps) describeTable(ctx context.Context, database, table string) ([]catalog.ColumnInfo, error) {
	query := fmt.Sprintf("DESCRIBE TABLE %s.%s",
		common.QuoteIdentifier(database), common.QuoteIdentifier(table))
	result, err := s.runIntrospection(ctx, query)
	if err != nil {
		return nil, err
	}

	var columns []catalog.ColumnInfo
	for _, row := range result.Rows {
		name := cellString(row["name"])
		if name == "" {
			continue
		}
		colType := cellString(row["type"])
		columns = append(columns, catalog.ColumnInfo{
			Name:     name,
			Type:     colType,
			Nullable: strings.HasPrefix(colType, "Nullable("),
		})
	}
	return columns, nil
}

// countRows is best-effort; a failed count falls back to zero.
func (s *SchemaOps) countRows(ctx context.Context, database, table string) int64 {
	query := fmt.Sprintf("SELECT count() FROM %s.%s",
		common.QuoteIdentifier(database), common.QuoteIdentifier(table))
	result, err := s.runIntrospection(ctx, query)
	if err != nil {
		s.conn.safeLog("warn", "Row count failed for %s.%s: %v", database, table, err)
		return 0
	}

	values := firstColumnValues(result)
	if len(values) == 0 {
		return 0
	}
	count, err := strconv.ParseInt(values[0], 10, 64)
	if err != nil {
		return 0
	}
	return count
}

func (s *SchemaOps) runIntrospection(ctx context.Context, query string) (*adapter.QueryResult, error) {
	body, err := s.conn.doQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return common.ParseTextResult(body)
}

// firstColumnValues extracts the first column of every row, as strings.
func firstColumnValues(result *adapter.QueryResult) []string {
	if result == nil || len(result.Columns) == 0 {
		return nil
	}

	key := result.Columns[0]
	values := make([]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		if v := cellString(row[key]); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func cellString(v interface{}) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case string:
		return tv
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", tv)
	}
}
