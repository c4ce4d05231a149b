// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/okian/leaguecast/internal/domain/types"
	"github.com/rs/cors"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider

	// Submit queues a forecast and returns its job id.
	Submit(ctx context.Context, req types.ForecastRequest) (types.SubmitResponse, error)
	Job(ctx context.Context, id string) (types.JobResponse, error)

	Leagues(ctx context.Context) []types.LeagueSummary
	LeagueForecast(ctx context.Context, league string) (types.LeagueForecast, error)

	// WebsocketHandler streams finished jobs. It may be nil.
	WebsocketHandler() http.Handler
}

// Server wires HTTP routes for the forecast API.
type Server struct {
	deps             Dependencies
	origins          []string
	registrars       []func(*mux.Router)
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	forecastsHandler *ForecastsHandler
	leaguesHandler   *LeaguesHandler
}

// Option configures the Server.
type Option func(*Server)

// WithCORSOrigins sets the allowed browser origins. Defaults to any origin.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}

// WithRoutes registers extra routes, such as API docs, next to the API.
func WithRoutes(register func(*mux.Router)) Option {
	return func(s *Server) {
		if register != nil {
			s.registrars = append(s.registrars, register)
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:             deps,
		origins:          []string{"*"},
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(deps),
		forecastsHandler: NewForecastsHandler(deps),
		leaguesHandler:   NewLeaguesHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to router.
func (s *Server) Register(router *mux.Router) {
	router.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	router.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)
	router.HandleFunc("/leagues", MetricsMiddleware(s.leaguesHandler.HandleList, "leagues")).Methods(http.MethodGet)
	router.HandleFunc("/leagues/{name}/forecast", MetricsMiddleware(s.leaguesHandler.HandleForecast, "league_forecast")).Methods(http.MethodGet)
	router.HandleFunc("/forecasts", MetricsMiddleware(s.forecastsHandler.HandleSubmit, "forecasts")).Methods(http.MethodPost)
	router.HandleFunc("/forecasts/{id}", MetricsMiddleware(s.forecastsHandler.HandleGet, "forecast")).Methods(http.MethodGet)
	router.HandleFunc("/ws", MetricsMiddleware(s.handleWebsocket, "ws"))
	for _, register := range s.registrars {
		register(router)
	}
}

// Handler returns the routed API wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	s.Register(router)

	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept"},
	})
	return c.Handler(router)
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	h := s.deps.WebsocketHandler()
	if h == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", ErrUnavailable)
		return
	}
	h.ServeHTTP(w, r)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates service error kinds to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, types.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, types.ErrQueueFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, types.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
