package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/okian/leaguecast/internal/domain/types"
)

// LeagueDependencies defines the read operations behind /leagues.
type LeagueDependencies interface {
	Leagues(ctx context.Context) []types.LeagueSummary
	LeagueForecast(ctx context.Context, league string) (types.LeagueForecast, error)
}

// LeaguesHandler serves loaded leagues and their latest forecasts.
type LeaguesHandler struct {
	deps LeagueDependencies
}

// NewLeaguesHandler creates a new leagues handler.
func NewLeaguesHandler(deps LeagueDependencies) *LeaguesHandler {
	return &LeaguesHandler{deps: deps}
}

// HandleList handles GET /leagues.
func (h *LeaguesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	leagues := h.deps.Leagues(r.Context())
	if leagues == nil {
		leagues = []types.LeagueSummary{}
	}
	writeJSON(w, http.StatusOK, leagues)
}

// HandleForecast handles GET /leagues/{name}/forecast.
func (h *LeaguesHandler) HandleForecast(w http.ResponseWriter, r *http.Request) {
	f, err := h.deps.LeagueForecast(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}
