package clickhouse

import (
	"context"
	"fmt"

	"github.com/ibero-data/duck-ui-sub001/internal/database/common"
	"github.com/ibero-data/duck-ui-sub001/pkg/adapter"
	"github.com/ibero-data/duck-ui-sub001/pkg/dbcapabilities"
)

// MetadataOps implements adapter.MetadataOperator over the HTTP endpoint.
type MetadataOps struct {
	conn *Connection
}

// GetVersion returns the server version string.
func (m *MetadataOps) GetVersion(ctx context.Context) (string, error) {
	body, err := m.conn.doQuery(ctx, "SELECT version()")
	if err != nil {
		return "", err
	}

	result, err := common.ParseTextResult(body)
	if err != nil {
		return "", err
	}

	values := firstColumnValues(result)
	if len(values) == 0 {
		return "", adapter.WrapError(dbcapabilities.Remote, "get_version",
			fmt.Errorf("version query returned no rows"))
	}
	return values[0], nil
}

// CollectMetadata gathers version and database count for the session status
// endpoint.
func (m *MetadataOps) CollectMetadata(ctx context.Context) (map[string]interface{}, error) {
	metadata := make(map[string]interface{})

	version, err := m.GetVersion(ctx)
	if err != nil {
		return nil, err
	}
	metadata["version"] = version
	metadata["backend"] = "remote"
	metadata["endpoint"] = m.conn.endpoint

	schemaOps := &SchemaOps{conn: m.conn}
	databases, err := schemaOps.ListDatabases(ctx)
	if err != nil {
		return nil, err
	}
	metadata["database_count"] = len(databases)

	return metadata, nil
}
