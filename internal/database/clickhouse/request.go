package clickhouse

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ibero-data/duck-ui-sub001/internal/database/common"
	"github.com/ibero-data/duck-ui-sub001/pkg/adapter"
	"github.com/ibero-data/duck-ui-sub001/pkg/dbcapabilities"
)

const (
	// formatHeader asks the server for the columnar {meta,data} response
	// shape the normalizer prefers. Servers that ignore it still get their
	// output parsed by the candidate-parser chain.
	formatHeader   = "X-ClickHouse-Format"
	responseFormat = "JSONCompact"

	databaseHeader = "X-ClickHouse-Database"

	errorBodyPreviewLimit = 200
)

// doQuery POSTs the raw query text to the endpoint and returns the response
// body. Failure causes are kept distinct: an HTTP 401 is an auth failure, an
// HTTP 404 means no SQL endpoint at that URL, and a transport error with no
// HTTP response at all is a network failure.
func (c *Connection) doQuery(ctx context.Context, query string) (string, error) {
	if !c.IsConnected() {
		return "", adapter.ErrConnectionClosed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(query))
	if err != nil {
		return "", adapter.WrapError(dbcapabilities.Remote, "build_request", err)
	}

	applyAuthHeaders(req, &c.config)
	req.Header.Set(formatHeader, responseFormat)
	if c.config.DatabaseName != "" {
		req.Header.Set(databaseHeader, c.config.DatabaseName)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", adapter.NewNetworkError(dbcapabilities.Remote, c.endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", adapter.NewNetworkError(dbcapabilities.Remote, c.endpoint, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return "", adapter.NewAuthError(dbcapabilities.Remote, c.endpoint, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return "", adapter.NewUnreachableError(dbcapabilities.Remote, c.endpoint)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", adapter.WrapError(dbcapabilities.Remote, "execute_query",
			fmt.Errorf("server returned %s: %s", resp.Status, previewBody(body)))
	}

	return string(body), nil
}

// applyAuthHeaders applies exactly one auth strategy. Password auth sends
// HTTP Basic; API key auth sends the configured header; the two are never
// combined.
func applyAuthHeaders(req *http.Request, config *adapter.ConnectionConfig) {
	switch config.ResolvedAuthMode() {
	case dbcapabilities.AuthPassword:
		req.SetBasicAuth(config.Username, config.Password)
	case dbcapabilities.AuthAPIKey:
		header := config.APIKeyHeader
		if header == "" {
			header = adapter.DefaultAPIKeyHeader
		}
		req.Header.Set(header, config.APIKey)
	}
}

func previewBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > errorBodyPreviewLimit {
		s = s[:errorBodyPreviewLimit] + "..."
	}
	return s
}

// QueryOps implements adapter.QueryOperator over the HTTP endpoint.
type QueryOps struct {
	conn *Connection
}

// ExecuteQuery POSTs the query and normalizes the textual response body.
func (q *QueryOps) ExecuteQuery(ctx context.Context, query string) (*adapter.QueryResult, error) {
	body, err := q.conn.doQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return common.ParseTextResult(body)
}

// TestConnection issues the trivial probe through the same header and auth
// logic as a real query, without any schema introspection.
func (q *QueryOps) TestConnection(ctx context.Context) error {
	_, err := q.conn.doQuery(ctx, "SELECT 1")
	return err
}
