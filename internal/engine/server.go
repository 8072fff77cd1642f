package engine

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
)

type Server struct {
	engine            *Engine
	router            *mux.Router
	connectionHandler *ConnectionHandlers
	sessionHandler    *SessionHandlers
	queryHandler      *QueryHandlers
	workbenchHandler  *WorkbenchHandlers
}

func NewServer(engine *Engine) *Server {
	s := &Server{
		engine:            engine,
		router:            mux.NewRouter(),
		connectionHandler: NewConnectionHandlers(engine),
		sessionHandler:    NewSessionHandlers(engine),
		queryHandler:      NewQueryHandlers(engine),
		workbenchHandler:  NewWorkbenchHandlers(engine),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	// CORS middleware: the UI is a browser app served from its own origin.
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Request accounting middleware
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt64(&s.engine.metrics.requestsProcessed, 1)
			next.ServeHTTP(w, r)
		})
	})
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Backend capability metadata for the connection form
	api.HandleFunc("/capabilities", s.connectionHandler.ListCapabilities).Methods(http.MethodGet)

	// Stored connection endpoints
	connections := api.PathPrefix("/connections").Subrouter()
	connections.HandleFunc("", s.connectionHandler.ListConnections).Methods(http.MethodGet)
	connections.HandleFunc("", s.connectionHandler.AddConnection).Methods(http.MethodPost)
	connections.HandleFunc("/parse-endpoint", s.connectionHandler.ParseEndpoint).Methods(http.MethodPost)
	connections.HandleFunc("/{connection_id}", s.connectionHandler.ShowConnection).Methods(http.MethodGet)
	connections.HandleFunc("/{connection_id}", s.connectionHandler.ModifyConnection).Methods(http.MethodPut)
	connections.HandleFunc("/{connection_id}", s.connectionHandler.DeleteConnection).Methods(http.MethodDelete)
	connections.HandleFunc("/{connection_id}/test", s.connectionHandler.TestConnection).Methods(http.MethodPost)

	// Session endpoints
	session := api.PathPrefix("/session").Subrouter()
	session.HandleFunc("", s.sessionHandler.Status).Methods(http.MethodGet)
	session.HandleFunc("/connect", s.sessionHandler.Connect).Methods(http.MethodPost)
	session.HandleFunc("/disconnect", s.sessionHandler.Disconnect).Methods(http.MethodPost)
	session.HandleFunc("/metadata", s.sessionHandler.Metadata).Methods(http.MethodGet)

	// Query, schema and history endpoints
	api.HandleFunc("/query", s.queryHandler.Execute).Methods(http.MethodPost)
	api.HandleFunc("/schema", s.queryHandler.GetSchema).Methods(http.MethodGet)
	api.HandleFunc("/schema/refresh", s.queryHandler.RefreshSchema).Methods(http.MethodPost)
	api.HandleFunc("/history", s.queryHandler.ListHistory).Methods(http.MethodGet)
	api.HandleFunc("/history", s.queryHandler.ClearHistory).Methods(http.MethodDelete)

	// Editor tab endpoints (replaced wholesale, results stripped)
	api.HandleFunc("/tabs", s.workbenchHandler.GetTabs).Methods(http.MethodGet)
	api.HandleFunc("/tabs", s.workbenchHandler.PutTabs).Methods(http.MethodPut)

	// Saved query endpoints
	queries := api.PathPrefix("/queries").Subrouter()
	queries.HandleFunc("", s.workbenchHandler.ListQueries).Methods(http.MethodGet)
	queries.HandleFunc("", s.workbenchHandler.AddQuery).Methods(http.MethodPost)
	queries.HandleFunc("/{query_id}", s.workbenchHandler.ModifyQuery).Methods(http.MethodPut)
	queries.HandleFunc("/{query_id}", s.workbenchHandler.DeleteQuery).Methods(http.MethodDelete)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.engine.refreshHealth()

	response := map[string]interface{}{
		"status":    s.engine.health.Overall(),
		"service":   "core",
		"session":   s.engine.session.Status().State,
		"checks":    s.engine.health.Checks(),
		"metrics":   s.engine.GetMetrics(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	s.engine.writeJSON(w, http.StatusOK, response)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
