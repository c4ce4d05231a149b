package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/okian/leaguecast/internal/domain/types"
)

const maxRequestBody = 1 << 20

// ForecastDependencies defines the operations behind /forecasts.
type ForecastDependencies interface {
	Submit(ctx context.Context, req types.ForecastRequest) (types.SubmitResponse, error)
	Job(ctx context.Context, id string) (types.JobResponse, error)
}

// ForecastsHandler handles forecast job requests.
type ForecastsHandler struct {
	deps ForecastDependencies
}

// NewForecastsHandler creates a new forecasts handler.
func NewForecastsHandler(deps ForecastDependencies) *ForecastsHandler {
	return &ForecastsHandler{deps: deps}
}

// HandleSubmit handles POST /forecasts. An empty body forecasts every league
// with the configured defaults.
func (h *ForecastsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req types.ForecastRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	req.RequestID = strings.TrimSpace(req.RequestID)

	ack, err := h.deps.Submit(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := http.StatusAccepted
	if ack.Duplicate {
		status = http.StatusOK
	}
	w.Header().Set("Location", "/forecasts/"+ack.JobID)
	writeJSON(w, status, ack)
}

// HandleGet handles GET /forecasts/{id}.
func (h *ForecastsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	res, err := h.deps.Job(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
