package clickhouse

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibero-data/duck-ui-sub001/pkg/adapter"
)

// The server fails DESCRIBE and count for one table; the tree must still
// list it with empty columns and a zero count.
func TestDiscoverSchemaBestEffort(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		query := string(raw)

		switch {
		case query == "SHOW DATABASES":
			w.Write([]byte(`{"meta":[{"name":"name","type":"String"}],"data":[["analytics"],["system"]],"rows":2}`))
		case strings.HasPrefix(query, "SHOW TABLES FROM"):
			w.Write([]byte(`{"meta":[{"name":"name","type":"String"}],"data":[["events"],["broken"]],"rows":2}`))
		case strings.HasPrefix(query, "DESCRIBE TABLE") && strings.Contains(query, `"broken"`):
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("DB::Exception: table is detached"))
		case strings.HasPrefix(query, "DESCRIBE TABLE"):
			w.Write([]byte(`{"meta":[{"name":"name","type":"String"},{"name":"type","type":"String"}],"data":[["id","UInt64"],["label","Nullable(String)"]],"rows":2}`))
		case strings.HasPrefix(query, "SELECT count()") && strings.Contains(query, `"broken"`):
			w.WriteHeader(http.StatusInternalServerError)
		case strings.HasPrefix(query, "SELECT count()"):
			w.Write([]byte(`{"meta":[{"name":"count()","type":"UInt64"}],"data":[["42"]],"rows":1}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer server.Close()

	conn := newTestConnection(server.URL, adapter.ConnectionConfig{ConnectionType: "remote"})
	tree, err := conn.SchemaOperations().DiscoverSchema(context.Background())

	require.NoError(t, err)
	require.Len(t, tree.Databases, 1, "system database must be filtered out")

	db := tree.Databases[0]
	assert.Equal(t, "analytics", db.Name)
	require.Len(t, db.Tables, 2)

	events := db.Tables[0]
	assert.Equal(t, "events", events.Name)
	require.Len(t, events.Columns, 2)
	assert.Equal(t, "id", events.Columns[0].Name)
	assert.Equal(t, "UInt64", events.Columns[0].Type)
	assert.False(t, events.Columns[0].Nullable)
	assert.Equal(t, "label", events.Columns[1].Name)
	assert.True(t, events.Columns[1].Nullable)
	assert.Equal(t, int64(42), events.RowCount)

	broken := db.Tables[1]
	assert.Equal(t, "broken", broken.Name)
	assert.Empty(t, broken.Columns, "a table whose describe fails is still listed")
	assert.Equal(t, int64(0), broken.RowCount)
}

func TestListDatabasesPropagatesFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	conn := newTestConnection(server.URL, adapter.ConnectionConfig{ConnectionType: "remote"})
	_, err := conn.SchemaOperations().DiscoverSchema(context.Background())

	require.Error(t, err)
	assert.True(t, adapter.IsAuthenticationError(err))
}
