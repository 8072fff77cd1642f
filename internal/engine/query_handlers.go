package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/ibero-data/duck-ui-sub001/pkg/catalog"
)

// QueryHandlers contains the query, schema and history endpoint handlers
type QueryHandlers struct {
	engine *Engine
}

// NewQueryHandlers creates a new instance of QueryHandlers
func NewQueryHandlers(engine *Engine) *QueryHandlers {
	return &QueryHandlers{
		engine: engine,
	}
}

// Execute handles POST /api/v1/query. Query failures are part of the
// result payload, not the transport: the response is HTTP 200 either way
// and the client branches on the result's error field.
func (qh *QueryHandlers) Execute(w http.ResponseWriter, r *http.Request) {
	qh.engine.TrackOperation()
	defer qh.engine.UntrackOperation()

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		qh.engine.writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		qh.engine.writeError(w, http.StatusBadRequest, "query is required", "")
		return
	}

	// No server-side timeout: analytical statements legitimately run long.
	// The request context still cancels when the client goes away.
	result := qh.engine.session.ExecuteQuery(r.Context(), req.Query, req.TabID)

	qh.engine.writeJSON(w, http.StatusOK, result)
}

// GetSchema handles GET /api/v1/schema
func (qh *QueryHandlers) GetSchema(w http.ResponseWriter, r *http.Request) {
	qh.engine.TrackOperation()
	defer qh.engine.UntrackOperation()

	tree := qh.engine.session.Schema()
	if tree == nil {
		tree = &catalog.SchemaTree{}
	}

	qh.engine.writeJSON(w, http.StatusOK, tree)
}

// RefreshSchema handles POST /api/v1/schema/refresh
func (qh *QueryHandlers) RefreshSchema(w http.ResponseWriter, r *http.Request) {
	qh.engine.TrackOperation()
	defer qh.engine.UntrackOperation()

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	tree, err := qh.engine.session.FetchSchema(ctx)
	if err != nil {
		qh.engine.writeError(w, statusForError(err), "Failed to refresh schema", err.Error())
		return
	}

	qh.engine.writeJSON(w, http.StatusOK, tree)
}

// ListHistory handles GET /api/v1/history
func (qh *QueryHandlers) ListHistory(w http.ResponseWriter, r *http.Request) {
	qh.engine.TrackOperation()
	defer qh.engine.UntrackOperation()

	qh.engine.writeJSON(w, http.StatusOK, ListHistoryResponse{Items: qh.engine.session.History()})
}

// ClearHistory handles DELETE /api/v1/history
func (qh *QueryHandlers) ClearHistory(w http.ResponseWriter, r *http.Request) {
	qh.engine.TrackOperation()
	defer qh.engine.UntrackOperation()

	qh.engine.session.ClearHistory()

	w.WriteHeader(http.StatusNoContent)
}
