package clickhouse

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibero-data/duck-ui-sub001/pkg/adapter"
	"github.com/ibero-data/duck-ui-sub001/pkg/dbcapabilities"
)

const columnarBody = `{"meta":[{"name":"n","type":"UInt64"}],"data":[[1]],"rows":1}`

func newTestConnection(serverURL string, config adapter.ConnectionConfig) *Connection {
	return &Connection{
		id:        "test-conn",
		endpoint:  serverURL + "/",
		config:    config,
		client:    http.DefaultClient,
		connected: 1,
	}
}

func TestExecuteQuerySendsRawBodyAndFormatHeader(t *testing.T) {
	var method, body string
	var header http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		method, body, header = r.Method, string(raw), r.Header.Clone()
		w.Write([]byte(columnarBody))
	}))
	defer server.Close()

	conn := newTestConnection(server.URL, adapter.ConnectionConfig{ConnectionType: "remote"})
	result, err := conn.QueryOperations().ExecuteQuery(context.Background(), "SELECT 1 AS n")

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "SELECT 1 AS n", body)
	assert.Equal(t, "JSONCompact", header.Get("X-ClickHouse-Format"))
	assert.Equal(t, []string{"n"}, result.Columns)
	assert.Equal(t, int64(1), result.RowCount)
}

func TestAuthHeaderModes(t *testing.T) {
	var header http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Clone()
		w.Write([]byte(columnarBody))
	}))
	defer server.Close()

	t.Run("password auth sends basic header only", func(t *testing.T) {
		conn := newTestConnection(server.URL, adapter.ConnectionConfig{
			ConnectionType: "remote",
			AuthMode:       dbcapabilities.AuthPassword,
			Username:       "alice",
			Password:       "secret",
		})

		require.NoError(t, conn.QueryOperations().TestConnection(context.Background()))

		expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("alice:secret"))
		assert.Equal(t, expected, header.Get("Authorization"))
		assert.Empty(t, header.Get("X-API-Key"))
	})

	t.Run("api key auth sends custom header only", func(t *testing.T) {
		conn := newTestConnection(server.URL, adapter.ConnectionConfig{
			ConnectionType: "remote",
			AuthMode:       dbcapabilities.AuthAPIKey,
			APIKey:         "k-123",
			APIKeyHeader:   "X-Custom-Key",
			Username:       "alice",
			Password:       "secret",
		})

		require.NoError(t, conn.QueryOperations().TestConnection(context.Background()))

		assert.Equal(t, "k-123", header.Get("X-Custom-Key"))
		assert.Empty(t, header.Get("Authorization"), "api key mode must not also send basic auth")
	})

	t.Run("api key auth defaults the header name", func(t *testing.T) {
		conn := newTestConnection(server.URL, adapter.ConnectionConfig{
			ConnectionType: "remote",
			AuthMode:       dbcapabilities.AuthAPIKey,
			APIKey:         "k-456",
		})

		require.NoError(t, conn.QueryOperations().TestConnection(context.Background()))

		assert.Equal(t, "k-456", header.Get("X-API-Key"))
	})

	t.Run("no auth sends neither header", func(t *testing.T) {
		conn := newTestConnection(server.URL, adapter.ConnectionConfig{ConnectionType: "remote"})

		require.NoError(t, conn.QueryOperations().TestConnection(context.Background()))

		assert.Empty(t, header.Get("Authorization"))
		assert.Empty(t, header.Get("X-API-Key"))
	})
}

func TestDatabaseHeader(t *testing.T) {
	var header http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Clone()
		w.Write([]byte(columnarBody))
	}))
	defer server.Close()

	conn := newTestConnection(server.URL, adapter.ConnectionConfig{
		ConnectionType: "remote",
		DatabaseName:   "analytics",
	})

	require.NoError(t, conn.QueryOperations().TestConnection(context.Background()))
	assert.Equal(t, "analytics", header.Get("X-ClickHouse-Database"))
}

func TestStatusCodeClassification(t *testing.T) {
	t.Run("401 is an authentication failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		conn := newTestConnection(server.URL, adapter.ConnectionConfig{ConnectionType: "remote"})
		err := conn.QueryOperations().TestConnection(context.Background())

		require.Error(t, err)
		assert.True(t, adapter.IsAuthenticationError(err))
		assert.Contains(t, err.Error(), "authentication failed")
		assert.NotContains(t, err.Error(), "network")
	})

	t.Run("404 means no SQL endpoint at the URL", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		conn := newTestConnection(server.URL, adapter.ConnectionConfig{ConnectionType: "remote"})
		err := conn.QueryOperations().TestConnection(context.Background())

		require.Error(t, err)
		assert.True(t, errors.Is(err, adapter.ErrEndpointNotFound))
		assert.Contains(t, err.Error(), "no SQL endpoint found")
	})

	t.Run("other error statuses carry a body preview", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Code: 62. DB::Exception: Syntax error"))
		}))
		defer server.Close()

		conn := newTestConnection(server.URL, adapter.ConnectionConfig{ConnectionType: "remote"})
		err := conn.QueryOperations().TestConnection(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
		assert.Contains(t, err.Error(), "Syntax error")
	})
}

func TestNetworkFailureDistinctFromAuthFailure(t *testing.T) {
	authServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	authConn := newTestConnection(authServer.URL, adapter.ConnectionConfig{ConnectionType: "remote"})
	authErr := authConn.QueryOperations().TestConnection(context.Background())
	authServer.Close()

	// A closed server yields a transport error with no HTTP response
	deadServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := deadServer.URL
	deadServer.Close()

	deadConn := newTestConnection(deadURL, adapter.ConnectionConfig{ConnectionType: "remote"})
	netErr := deadConn.QueryOperations().TestConnection(context.Background())

	require.Error(t, authErr)
	require.Error(t, netErr)

	assert.True(t, adapter.IsAuthenticationError(authErr))
	assert.False(t, adapter.IsNetworkError(authErr))

	assert.True(t, adapter.IsNetworkError(netErr))
	assert.False(t, adapter.IsAuthenticationError(netErr))

	assert.Contains(t, netErr.Error(), "no HTTP response received")
	assert.NotContains(t, netErr.Error(), "authentication")
	assert.NotEqual(t, authErr.Error(), netErr.Error())
}

func TestExecuteQueryParseFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>definitely not a result</html>"))
	}))
	defer server.Close()

	conn := newTestConnection(server.URL, adapter.ConnectionConfig{ConnectionType: "remote"})
	result, err := conn.QueryOperations().ExecuteQuery(context.Background(), "SELECT 1")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, adapter.IsParseError(err))
	assert.Contains(t, err.Error(), "Failed to parse query result")
}

func TestClosedConnectionRefusesQueries(t *testing.T) {
	conn := newTestConnection("http://unused.invalid", adapter.ConnectionConfig{ConnectionType: "remote"})
	require.NoError(t, conn.Close())

	_, err := conn.QueryOperations().ExecuteQuery(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, adapter.ErrConnectionClosed)
}
