// Package catalog defines the normalized schema tree shared by all backend
// connectors. Connectors rebuild the tree wholesale on every fetch; consumers
// treat it as immutable.
package catalog

// ColumnInfo describes a single column of a table.
type ColumnInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// TableInfo describes a table and its columns. RowCount is a point-in-time
// count taken during the fetch; it is zero when the backend could not be
// probed.
type TableInfo struct {
	Name     string       `json:"name"`
	Schema   string       `json:"schema,omitempty"`
	Columns  []ColumnInfo `json:"columns"`
	RowCount int64        `json:"rowCount"`
}

// DatabaseInfo describes one attached or remote database and its tables.
type DatabaseInfo struct {
	Name   string      `json:"name"`
	Tables []TableInfo `json:"tables"`
}

// SchemaTree is the full normalized catalog of the active connection.
type SchemaTree struct {
	Databases []DatabaseInfo `json:"databases"`
}

// TableCount returns the total number of tables across all databases.
func (t *SchemaTree) TableCount() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, db := range t.Databases {
		n += len(db.Tables)
	}
	return n
}
