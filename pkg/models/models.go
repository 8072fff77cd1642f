// Package models holds the flat record types persisted by the local store
// and served by the HTTP API.
package models

import (
	"time"

	"github.com/ibero-data/duck-ui-sub001/pkg/adapter"
)

// QueryHistoryItem represents one executed statement in the history list.
// Failed executions carry the error message; DurationMs is absent for runs
// that never reached the backend.
type QueryHistoryItem struct {
	ID         string    `json:"id"`
	Query      string    `json:"query"`
	TabID      string    `json:"tabId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Error      *string   `json:"error,omitempty"`
	DurationMs *int64    `json:"durationMs,omitempty"`
}

// Tab represents one editor tab. Result is transient display state and is
// stripped before the tab is persisted.
type Tab struct {
	ID      string               `json:"id"`
	Title   string               `json:"title"`
	Query   string               `json:"query"`
	Result  *adapter.QueryResult `json:"result,omitempty"`
	Created time.Time            `json:"created"`
	Updated time.Time            `json:"updated"`
}

// StripResult returns a copy of the tab without its transient result payload.
func (t Tab) StripResult() Tab {
	t.Result = nil
	return t
}

// SavedQuery represents a named statement kept across sessions.
type SavedQuery struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	SQL     string    `json:"sql"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// SessionStatus is the API view of the current session.
type SessionStatus struct {
	State          string                 `json:"state"`
	ConnectionID   string                 `json:"connectionId,omitempty"`
	ConnectionName string                 `json:"connectionName,omitempty"`
	ConnectionType string                 `json:"connectionType,omitempty"`
	Error          string                 `json:"error,omitempty"`
	ConnectedSince *time.Time             `json:"connectedSince,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}
