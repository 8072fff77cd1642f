package engine

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ibero-data/duck-ui-sub001/internal/store"
	"github.com/ibero-data/duck-ui-sub001/pkg/models"
)

// WorkbenchHandlers contains the editor tab and saved query endpoint handlers
type WorkbenchHandlers struct {
	engine *Engine
}

// NewWorkbenchHandlers creates a new instance of WorkbenchHandlers
func NewWorkbenchHandlers(engine *Engine) *WorkbenchHandlers {
	return &WorkbenchHandlers{
		engine: engine,
	}
}

// GetTabs handles GET /api/v1/tabs
func (wh *WorkbenchHandlers) GetTabs(w http.ResponseWriter, r *http.Request) {
	wh.engine.TrackOperation()
	defer wh.engine.UntrackOperation()

	tabs, err := wh.engine.store.ListTabs()
	if err != nil {
		wh.engine.writeError(w, http.StatusInternalServerError, "Failed to list tabs", err.Error())
		return
	}

	wh.engine.writeJSON(w, http.StatusOK, ListTabsResponse{Tabs: tabs})
}

// PutTabs handles PUT /api/v1/tabs. The body is the full tab list; the
// stored set is replaced wholesale with result payloads stripped.
func (wh *WorkbenchHandlers) PutTabs(w http.ResponseWriter, r *http.Request) {
	wh.engine.TrackOperation()
	defer wh.engine.UntrackOperation()

	var tabs []models.Tab
	if err := json.NewDecoder(r.Body).Decode(&tabs); err != nil {
		wh.engine.writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	now := time.Now().UTC()
	for i := range tabs {
		if tabs[i].ID == "" {
			tabs[i].ID = uuid.NewString()
		}
		if tabs[i].Created.IsZero() {
			tabs[i].Created = now
		}
		tabs[i].Updated = now
	}

	if err := wh.engine.store.ReplaceTabs(tabs); err != nil {
		wh.engine.writeError(w, http.StatusInternalServerError, "Failed to save tabs", err.Error())
		return
	}

	wh.engine.writeJSON(w, http.StatusOK, ListTabsResponse{Tabs: stripResults(tabs)})
}

// ListQueries handles GET /api/v1/queries
func (wh *WorkbenchHandlers) ListQueries(w http.ResponseWriter, r *http.Request) {
	wh.engine.TrackOperation()
	defer wh.engine.UntrackOperation()

	queries, err := wh.engine.store.ListQueries()
	if err != nil {
		wh.engine.writeError(w, http.StatusInternalServerError, "Failed to list saved queries", err.Error())
		return
	}

	wh.engine.writeJSON(w, http.StatusOK, ListQueriesResponse{Queries: queries})
}

// AddQuery handles POST /api/v1/queries
func (wh *WorkbenchHandlers) AddQuery(w http.ResponseWriter, r *http.Request) {
	wh.engine.TrackOperation()
	defer wh.engine.UntrackOperation()

	var query models.SavedQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		wh.engine.writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if strings.TrimSpace(query.Name) == "" {
		wh.engine.writeError(w, http.StatusBadRequest, "name is required", "")
		return
	}
	if strings.TrimSpace(query.SQL) == "" {
		wh.engine.writeError(w, http.StatusBadRequest, "sql is required", "")
		return
	}

	if query.ID == "" {
		query.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	query.Created = now
	query.Updated = now

	if err := wh.engine.store.SaveQuery(query); err != nil {
		wh.engine.writeError(w, http.StatusInternalServerError, "Failed to save query", err.Error())
		return
	}

	wh.engine.writeJSON(w, http.StatusCreated, query)
}

// ModifyQuery handles PUT /api/v1/queries/{query_id}
func (wh *WorkbenchHandlers) ModifyQuery(w http.ResponseWriter, r *http.Request) {
	wh.engine.TrackOperation()
	defer wh.engine.UntrackOperation()

	id := mux.Vars(r)["query_id"]

	existing, err := wh.engine.store.GetQuery(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			wh.engine.writeError(w, http.StatusNotFound, "Saved query not found", id)
			return
		}
		wh.engine.writeError(w, http.StatusInternalServerError, "Failed to load saved query", err.Error())
		return
	}

	var query models.SavedQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		wh.engine.writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if strings.TrimSpace(query.Name) == "" {
		wh.engine.writeError(w, http.StatusBadRequest, "name is required", "")
		return
	}
	if strings.TrimSpace(query.SQL) == "" {
		wh.engine.writeError(w, http.StatusBadRequest, "sql is required", "")
		return
	}

	query.ID = id
	query.Created = existing.Created
	query.Updated = time.Now().UTC()

	if err := wh.engine.store.SaveQuery(query); err != nil {
		wh.engine.writeError(w, http.StatusInternalServerError, "Failed to save query", err.Error())
		return
	}

	wh.engine.writeJSON(w, http.StatusOK, query)
}

// DeleteQuery handles DELETE /api/v1/queries/{query_id}
func (wh *WorkbenchHandlers) DeleteQuery(w http.ResponseWriter, r *http.Request) {
	wh.engine.TrackOperation()
	defer wh.engine.UntrackOperation()

	id := mux.Vars(r)["query_id"]

	if err := wh.engine.store.DeleteQuery(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			wh.engine.writeError(w, http.StatusNotFound, "Saved query not found", id)
			return
		}
		wh.engine.writeError(w, http.StatusInternalServerError, "Failed to delete saved query", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func stripResults(tabs []models.Tab) []models.Tab {
	stripped := make([]models.Tab, len(tabs))
	for i, tab := range tabs {
		stripped[i] = tab.StripResult()
	}
	return stripped
}
