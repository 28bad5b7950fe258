package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wricardo/mcp-training/exploretui/game/component"
	"github.com/wricardo/mcp-training/exploretui/game/service"
	"github.com/wricardo/mcp-training/exploretui/transport/websocket"
)

// Server is the dev world gateway
type Server struct {
	world  service.WorldService
	hub    *websocket.Hub
	router *mux.Router

	apiKey  string
	address component.Felt
	mcp     http.Handler

	registry   *prometheus.Registry
	reads      *prometheus.CounterVec
	executions *prometheus.CounterVec
}

// Option configures a Server
type Option func(*Server)

// WithAPIKey requires "Authorization: Bearer <key>" on every endpoint but
// the health check
func WithAPIKey(key string) Option {
	return func(s *Server) { s.apiKey = key }
}

// WithWorldAddress rejects requests addressed to another world
func WithWorldAddress(address component.Felt) Option {
	return func(s *Server) { s.address = address }
}

// WithMCP mounts handler at /mcp
func WithMCP(handler http.Handler) Option {
	return func(s *Server) { s.mcp = handler }
}

// NewServer creates a new gateway server. hub may be nil.
func NewServer(world service.WorldService, hub *websocket.Hub, opts ...Option) *Server {
	s := &Server{
		world:    world,
		hub:      hub,
		router:   mux.NewRouter(),
		registry: prometheus.NewRegistry(),
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "explore_entity_reads_total",
			Help: "Component entity reads by component and status.",
		}, []string{"component", "status"}),
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "explore_system_executions_total",
			Help: "System executions by system and status.",
		}, []string{"system", "status"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registry.MustRegister(s.reads, s.executions)

	s.setupRoutes()
	return s
}

// setupRoutes configures all gateway routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/api/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods("GET")

	protected := s.router.NewRoute().Subrouter()
	protected.Use(s.requireAPIKey)

	api := protected.PathPrefix("/api").Subrouter()

	// World reads and writes
	api.HandleFunc("/entities", s.handleEntity).Methods("POST")
	api.HandleFunc("/systems/{name}", s.handleSystem).Methods("POST")
	api.HandleFunc("/components", s.handleListComponents).Methods("GET")

	// Dev world inspection
	api.HandleFunc("/accounts", s.handleListAccounts).Methods("GET")
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")

	// WebSocket
	protected.HandleFunc("/ws", s.handleWebSocket)

	if s.mcp != nil {
		protected.Handle("/mcp", s.mcp)
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(token), []byte(s.apiKey)) != 1 {
				respondError(w, http.StatusUnauthorized, "invalid or missing api key")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// errorStatus maps world errors onto HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrUnknownSystem):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidCall),
		errors.Is(err, service.ErrInvalidKeys),
		errors.Is(err, component.ErrUnknownKind):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSystemRejected):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// checkWorld reports whether a request addressed to world may be served
func (s *Server) checkWorld(w http.ResponseWriter, world string) bool {
	if s.address.IsZero() || world == "" {
		return true
	}
	addr, err := component.ParseFelt(world)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if addr != s.address {
		respondError(w, http.StatusNotFound, fmt.Sprintf("unknown world %s", addr))
		return false
	}
	return true
}

// World handlers

func (s *Server) handleEntity(w http.ResponseWriter, r *http.Request) {
	var req service.EntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.reads.WithLabelValues("", "invalid").Inc()
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !s.checkWorld(w, req.World) {
		return
	}

	values, err := s.world.Entity(r.Context(), req.Component, req.Keys)
	if err != nil {
		s.reads.WithLabelValues(string(req.Component), "error").Inc()
		respondError(w, errorStatus(err), err.Error())
		return
	}

	s.reads.WithLabelValues(string(req.Component), "ok").Inc()
	respondJSON(w, http.StatusOK, service.EntityResponse{Values: values})
}

func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	system := mux.Vars(r)["name"]

	var req service.SystemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.executions.WithLabelValues(system, "invalid").Inc()
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !s.checkWorld(w, req.World) {
		return
	}

	result, err := s.world.Execute(r.Context(), req.Account, system, req.Calldata)
	if err != nil {
		log.Printf("[SYSTEM] account=%s system=%s calldata=%v status=REJECTED err=%v",
			req.Account, system, component.FeltsToHex(req.Calldata), err)
		s.executions.WithLabelValues(system, "rejected").Inc()
		respondError(w, errorStatus(err), err.Error())
		return
	}

	log.Printf("[SYSTEM] account=%s system=%s calldata=%v status=OK tx=%s",
		result.Account, system, component.FeltsToHex(req.Calldata), result.TransactionHash)
	s.Executed(result)

	respondJSON(w, http.StatusOK, service.SystemResponse{TransactionHash: result.TransactionHash})
}

// Executed records an accepted execution and notifies the account's
// watchers. It is also the hook for executions that bypass HTTP.
func (s *Server) Executed(result *service.ExecuteResult) {
	s.executions.WithLabelValues(result.System, "ok").Inc()
	if s.hub != nil {
		s.hub.Notify(service.Notification{
			Account:         result.Account,
			Event:           service.EventStateChanged,
			System:          result.System,
			TransactionHash: result.TransactionHash,
		})
	}
}

func (s *Server) handleListComponents(w http.ResponseWriter, r *http.Request) {
	components, err := s.world.ListComponents(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"components": components,
		"count":      len(components),
	})
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.world.ListAccounts(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": accounts,
		"count":    len(accounts),
	})
}

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.world.ListConfigs(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"configs": configs,
		"count":   len(configs),
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "notifications disabled", http.StatusNotFound)
		return
	}
	account, err := component.ParseFelt(r.URL.Query().Get("account"))
	if err != nil || account.IsZero() {
		http.Error(w, "account parameter required", http.StatusBadRequest)
		return
	}

	// Upgrade to WebSocket
	s.hub.ServeWS(w, r, service.AccountID(account))
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
