package engine

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ibero-data/duck-ui-sub001/internal/store"
	"github.com/ibero-data/duck-ui-sub001/pkg/adapter"
	"github.com/ibero-data/duck-ui-sub001/pkg/dbcapabilities"
)

// ConnectionHandlers contains the stored-connection endpoint handlers
type ConnectionHandlers struct {
	engine *Engine
}

// NewConnectionHandlers creates a new instance of ConnectionHandlers
func NewConnectionHandlers(engine *Engine) *ConnectionHandlers {
	return &ConnectionHandlers{
		engine: engine,
	}
}

// ListConnections handles GET /api/v1/connections
func (ch *ConnectionHandlers) ListConnections(w http.ResponseWriter, r *http.Request) {
	ch.engine.TrackOperation()
	defer ch.engine.UntrackOperation()

	configs, err := ch.engine.store.ListConnections()
	if err != nil {
		ch.engine.writeError(w, http.StatusInternalServerError, "Failed to list connections", err.Error())
		return
	}

	ch.engine.writeJSON(w, http.StatusOK, ListConnectionsResponse{Connections: configs})
}

// AddConnection handles POST /api/v1/connections. Secrets in the body go
// to the keyring; the store only ever sees the redacted config.
func (ch *ConnectionHandlers) AddConnection(w http.ResponseWriter, r *http.Request) {
	ch.engine.TrackOperation()
	defer ch.engine.UntrackOperation()

	var config adapter.ConnectionConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		ch.engine.writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if config.ConnectionID == "" {
		config.ConnectionID = uuid.NewString()
	}

	if err := config.Validate(); err != nil {
		ch.engine.writeError(w, http.StatusBadRequest, "Invalid connection config", err.Error())
		return
	}

	if err := ch.engine.secrets.SetConnectionSecrets(config.ConnectionID, config.Password, config.APIKey); err != nil {
		ch.engine.writeError(w, http.StatusInternalServerError, "Failed to store credentials", err.Error())
		return
	}

	if err := ch.engine.store.SaveConnection(config); err != nil {
		ch.engine.writeError(w, http.StatusInternalServerError, "Failed to save connection", err.Error())
		return
	}

	if ch.engine.logger != nil {
		ch.engine.logger.Infof("Added connection %q (%s)", config.Name, config.ConnectionType)
	}

	ch.engine.writeJSON(w, http.StatusCreated, config.Redacted())
}

// ShowConnection handles GET /api/v1/connections/{connection_id}
func (ch *ConnectionHandlers) ShowConnection(w http.ResponseWriter, r *http.Request) {
	ch.engine.TrackOperation()
	defer ch.engine.UntrackOperation()

	id := mux.Vars(r)["connection_id"]

	config, err := ch.engine.store.GetConnection(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ch.engine.writeError(w, http.StatusNotFound, "Connection not found", id)
			return
		}
		ch.engine.writeError(w, http.StatusInternalServerError, "Failed to load connection", err.Error())
		return
	}

	ch.engine.writeJSON(w, http.StatusOK, config)
}

// ModifyConnection handles PUT /api/v1/connections/{connection_id}. Blank
// secret fields keep the secrets already in the keyring, so a client can
// round-trip a redacted config without wiping credentials.
func (ch *ConnectionHandlers) ModifyConnection(w http.ResponseWriter, r *http.Request) {
	ch.engine.TrackOperation()
	defer ch.engine.UntrackOperation()

	id := mux.Vars(r)["connection_id"]

	existing, err := ch.engine.store.GetConnection(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ch.engine.writeError(w, http.StatusNotFound, "Connection not found", id)
			return
		}
		ch.engine.writeError(w, http.StatusInternalServerError, "Failed to load connection", err.Error())
		return
	}

	var config adapter.ConnectionConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		ch.engine.writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	config.ConnectionID = id
	config.LastError = existing.LastError

	password, apiKey := ch.engine.secrets.GetConnectionSecrets(id)
	if config.Password == "" {
		config.Password = password
	}
	if config.APIKey == "" {
		config.APIKey = apiKey
	}

	if err := config.Validate(); err != nil {
		ch.engine.writeError(w, http.StatusBadRequest, "Invalid connection config", err.Error())
		return
	}

	if err := ch.engine.secrets.SetConnectionSecrets(id, config.Password, config.APIKey); err != nil {
		ch.engine.writeError(w, http.StatusInternalServerError, "Failed to store credentials", err.Error())
		return
	}

	if err := ch.engine.store.SaveConnection(config); err != nil {
		ch.engine.writeError(w, http.StatusInternalServerError, "Failed to save connection", err.Error())
		return
	}

	ch.engine.writeJSON(w, http.StatusOK, config.Redacted())
}

// DeleteConnection handles DELETE /api/v1/connections/{connection_id}.
// Deleting the connection the session is on disconnects the session.
func (ch *ConnectionHandlers) DeleteConnection(w http.ResponseWriter, r *http.Request) {
	ch.engine.TrackOperation()
	defer ch.engine.UntrackOperation()

	id := mux.Vars(r)["connection_id"]

	if err := ch.engine.store.DeleteConnection(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ch.engine.writeError(w, http.StatusNotFound, "Connection not found", id)
			return
		}
		ch.engine.writeError(w, http.StatusInternalServerError, "Failed to delete connection", err.Error())
		return
	}

	ch.engine.secrets.DeleteConnectionSecrets(id)

	if ch.engine.session.Config().ConnectionID == id {
		ch.engine.session.Disconnect()
	}

	if ch.engine.logger != nil {
		ch.engine.logger.Infof("Deleted connection %s", id)
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListCapabilities handles GET /api/v1/capabilities. The UI renders the
// connection form's backend picker and auth-mode options from this list.
func (ch *ConnectionHandlers) ListCapabilities(w http.ResponseWriter, r *http.Request) {
	ch.engine.TrackOperation()
	defer ch.engine.UntrackOperation()

	ids := dbcapabilities.IDs()
	capabilities := make([]dbcapabilities.Capability, 0, len(ids))
	for _, id := range ids {
		capabilities = append(capabilities, dbcapabilities.MustGet(id))
	}

	ch.engine.writeJSON(w, http.StatusOK, capabilities)
}

// ParseEndpoint handles POST /api/v1/connections/parse-endpoint. The UI
// uses it to prefill the connection form from a pasted endpoint URL.
func (ch *ConnectionHandlers) ParseEndpoint(w http.ResponseWriter, r *http.Request) {
	ch.engine.TrackOperation()
	defer ch.engine.UntrackOperation()

	var req ParseEndpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ch.engine.writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	details, err := dbcapabilities.ParseEndpoint(req.Endpoint)
	if err != nil {
		ch.engine.writeError(w, http.StatusBadRequest, "Invalid endpoint", err.Error())
		return
	}

	ch.engine.writeJSON(w, http.StatusOK, details)
}

// TestConnection handles POST /api/v1/connections/{connection_id}/test
func (ch *ConnectionHandlers) TestConnection(w http.ResponseWriter, r *http.Request) {
	ch.engine.TrackOperation()
	defer ch.engine.UntrackOperation()

	id := mux.Vars(r)["connection_id"]

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	start := time.Now()
	err := ch.engine.TestStoredConnection(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		ch.engine.writeError(w, http.StatusNotFound, "Connection not found", id)
		return
	}

	response := TestConnectionResponse{
		Success:   err == nil,
		LatencyMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		response.Message = err.Error()
	}

	ch.engine.writeJSON(w, http.StatusOK, response)
}
