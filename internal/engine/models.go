package engine

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ibero-data/duck-ui-sub001/internal/store"
	"github.com/ibero-data/duck-ui-sub001/pkg/adapter"
	"github.com/ibero-data/duck-ui-sub001/pkg/models"
)

// ErrorResponse is the envelope every failed request returns.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// ConnectRequest names the stored connection the session should switch to.
type ConnectRequest struct {
	ConnectionID string `json:"connectionId"`
}

// QueryRequest carries one statement to execute on the current session.
type QueryRequest struct {
	Query string `json:"query"`
	TabID string `json:"tabId,omitempty"`
}

// ParseEndpointRequest carries a pasted endpoint URL to split into
// connection form fields.
type ParseEndpointRequest struct {
	Endpoint string `json:"endpoint"`
}

// TestConnectionResponse reports a connection probe outcome. The probe
// result is payload, not transport: a failed probe is still HTTP 200.
type TestConnectionResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	LatencyMs int64  `json:"latencyMs"`
}

// ListConnectionsResponse wraps the stored connection list.
type ListConnectionsResponse struct {
	Connections []adapter.ConnectionConfig `json:"connections"`
}

// ListHistoryResponse wraps the session's history list, newest first.
type ListHistoryResponse struct {
	Items []models.QueryHistoryItem `json:"items"`
}

// ListTabsResponse wraps the persisted editor tabs.
type ListTabsResponse struct {
	Tabs []models.Tab `json:"tabs"`
}

// ListQueriesResponse wraps the saved query list.
type ListQueriesResponse struct {
	Queries []models.SavedQuery `json:"queries"`
}

// writeJSON writes a JSON response
func (e *Engine) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		if e.logger != nil {
			e.logger.Errorf("Failed to encode JSON response: %v", err)
		}
	}
}

// writeError writes the error envelope
func (e *Engine) writeError(w http.ResponseWriter, statusCode int, message, detail string) {
	e.writeJSON(w, statusCode, ErrorResponse{Error: message, Detail: detail})
}

// statusForError maps backend and store failures onto HTTP status codes.
// Anything unclassified is a bad gateway: the daemon is fine, the backend
// behind it is not.
func statusForError(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case adapter.IsConfigurationError(err):
		return http.StatusBadRequest
	case adapter.IsConflict(err):
		return http.StatusConflict
	case errors.Is(err, adapter.ErrConnectionClosed):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
