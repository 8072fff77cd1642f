package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// SessionHandlers contains the session endpoint handlers
type SessionHandlers struct {
	engine *Engine
}

// NewSessionHandlers creates a new instance of SessionHandlers
func NewSessionHandlers(engine *Engine) *SessionHandlers {
	return &SessionHandlers{
		engine: engine,
	}
}

// Status handles GET /api/v1/session
func (sh *SessionHandlers) Status(w http.ResponseWriter, r *http.Request) {
	sh.engine.TrackOperation()
	defer sh.engine.UntrackOperation()

	sh.engine.writeJSON(w, http.StatusOK, sh.engine.session.Status())
}

// Connect handles POST /api/v1/session/connect. A failed switch leaves the
// session in its error state; the response carries the failure and the
// client reads the state back from GET /api/v1/session.
func (sh *SessionHandlers) Connect(w http.ResponseWriter, r *http.Request) {
	sh.engine.TrackOperation()
	defer sh.engine.UntrackOperation()

	var req ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sh.engine.writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.ConnectionID == "" {
		sh.engine.writeError(w, http.StatusBadRequest, "connectionId is required", "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), connectTimeout)
	defer cancel()

	if err := sh.engine.ConnectStored(ctx, req.ConnectionID); err != nil {
		sh.engine.writeError(w, statusForError(err), "Failed to connect", err.Error())
		return
	}

	sh.engine.writeJSON(w, http.StatusOK, sh.engine.session.Status())
}

// Disconnect handles POST /api/v1/session/disconnect
func (sh *SessionHandlers) Disconnect(w http.ResponseWriter, r *http.Request) {
	sh.engine.TrackOperation()
	defer sh.engine.UntrackOperation()

	sh.engine.session.Disconnect()

	sh.engine.writeJSON(w, http.StatusOK, sh.engine.session.Status())
}

// Metadata handles GET /api/v1/session/metadata
func (sh *SessionHandlers) Metadata(w http.ResponseWriter, r *http.Request) {
	sh.engine.TrackOperation()
	defer sh.engine.UntrackOperation()

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	metadata, err := sh.engine.session.CollectMetadata(ctx)
	if err != nil {
		sh.engine.writeError(w, statusForError(err), "Failed to collect metadata", err.Error())
		return
	}

	sh.engine.writeJSON(w, http.StatusOK, metadata)
}
