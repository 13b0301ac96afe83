// Package api serves the analyzer results as JSON over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/gofrs/uuid/v5"

	"github.com/mpapenbr/tyre-strategy/log"
	"github.com/mpapenbr/tyre-strategy/pkg/circuit"
	"github.com/mpapenbr/tyre-strategy/pkg/model"
	"github.com/mpapenbr/tyre-strategy/pkg/provider"
	"github.com/mpapenbr/tyre-strategy/pkg/racestints"
	"github.com/mpapenbr/tyre-strategy/pkg/service"
	"github.com/mpapenbr/tyre-strategy/pkg/undercut"
)

type (
	Option  func(*Handler)
	Handler struct {
		analyzer *service.Analyzer
		sessions *service.SessionService
		logger   *log.Logger
	}
	errorResponse struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
)

// WithSessionService enables the session management endpoints
func WithSessionService(s *service.SessionService) Option {
	return func(h *Handler) {
		h.sessions = s
	}
}

func WithLogger(l *log.Logger) Option {
	return func(h *Handler) {
		h.logger = l
	}
}

// NewHandler creates the router for the /api/v1 endpoints
func NewHandler(a *service.Analyzer, opts ...Option) http.Handler {
	h := &Handler{analyzer: a, logger: log.Default().Named("api")}
	for _, opt := range opts {
		opt(h)
	}
	r := chi.NewRouter()
	r.Use(middleware.RealIP, h.requestID, h.metrics, middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/degradation", h.degradation)
		r.Get("/tyre-life", h.tyreLife)
		r.Get("/strategy", h.strategy)
		r.Get("/gap", h.gap)
		r.Get("/pitstops", h.pitStops)
		r.Get("/duel", h.duel)
		r.Get("/payoff", h.payoff)
		r.Get("/insights", h.insights)
		r.Get("/consistency", h.consistency)
		r.Get("/sectors", h.sectors)
		r.Get("/circuits", h.circuits)
		r.Get("/forecasts", h.forecasts)
		r.Get("/heuristics", h.heuristics)
		if h.sessions != nil {
			r.Get("/sessions", h.listSessions)
			r.Delete("/sessions/{id}", h.deleteSession)
		}
	})
	return r
}

func (h *Handler) degradation(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	key := q.sessionKey()
	if h.badRequest(w, r, q) {
		return
	}
	writeOutcome(w, r, h.analyzer.Degradation(r.Context(), key))
}

func (h *Handler) tyreLife(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	key := q.sessionKey()
	weather := model.ParseWeather(q.str("weather"))
	if h.badRequest(w, r, q) {
		return
	}
	writeOutcome(w, r, h.analyzer.TyreLife(r.Context(), key, weather))
}

// strategy takes circuit type and pit loss from the circuit profile of the
// event unless given.
func (h *Handler) strategy(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	key := q.sessionKey()
	profile := circuit.Infer(key.Event)
	circuitType := profile.Type
	if v := q.str("circuit_type"); v != "" {
		circuitType = model.ParseCircuitType(v)
	}
	p := racestints.Params{
		TotalLaps:          q.int("total_laps", 0),
		PitLoss:            q.float("pit_loss", profile.PitLoss),
		CircuitType:        circuitType,
		Weather:            model.ParseWeather(q.str("weather")),
		QualifyingPosition: q.int("qualifying_position", 0),
	}
	if h.badRequest(w, r, q) {
		return
	}
	writeOutcome(w, r, h.analyzer.Strategy(r.Context(), key, p))
}

func (h *Handler) gap(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	key := q.sessionKey()
	if h.badRequest(w, r, q) {
		return
	}
	writeOutcome(w, r, h.analyzer.Gap(r.Context(), key))
}

func (h *Handler) pitStops(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	key := q.sessionKey()
	if h.badRequest(w, r, q) {
		return
	}
	writeOutcome(w, r, h.analyzer.PitStops(r.Context(), key))
}

func (h *Handler) duel(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	key := q.sessionKey()
	p := service.DuelParams{
		Driver:          q.required("driver"),
		Rival:           q.required("rival"),
		CandidatePitLap: q.int("candidate_pit_lap", 0),
		PitDelta:        q.float("pit_delta", circuit.Infer(key.Event).PitLoss),
	}
	if p.CandidatePitLap <= 0 && q.err == nil {
		q.err = model.ValidationError("candidate_pit_lap must be > 0")
	}
	if h.badRequest(w, r, q) {
		return
	}
	writeOutcome(w, r, h.analyzer.Duel(r.Context(), key, p))
}

func (h *Handler) payoff(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	key := q.sessionKey()
	p := undercut.Params{
		CompoundA:   model.ParseCompound(q.required("compound_a")),
		CompoundB:   model.ParseCompound(q.required("compound_b")),
		UndercutLap: q.int("undercut_lap", 0),
		TotalLaps:   q.int("total_laps", 0),
		PitLoss:     q.float("pit_loss", circuit.Infer(key.Event).PitLoss),
	}
	if h.badRequest(w, r, q) {
		return
	}
	writeOutcome(w, r, h.analyzer.Payoff(r.Context(), key, p))
}

func (h *Handler) insights(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	key := q.sessionKey()
	if h.badRequest(w, r, q) {
		return
	}
	writeOutcome(w, r, h.analyzer.Insights(r.Context(), key))
}

func (h *Handler) consistency(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	key := q.sessionKey()
	if h.badRequest(w, r, q) {
		return
	}
	writeOutcome(w, r, h.analyzer.Consistency(r.Context(), key))
}

func (h *Handler) sectors(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	key := q.sessionKey()
	if h.badRequest(w, r, q) {
		return
	}
	writeOutcome(w, r, h.analyzer.Sectors(r.Context(), key))
}

// circuits lists the known profiles, with ?event=... the profile for that event
func (h *Handler) circuits(w http.ResponseWriter, r *http.Request) {
	if event := newQuery(r).str("event"); event != "" {
		writeOutcome(w, r, model.OK(h.analyzer.Circuit(event)))
		return
	}
	writeOutcome(w, r, model.OK(circuit.Profiles()))
}

func (h *Handler) forecasts(w http.ResponseWriter, r *http.Request) {
	writeOutcome(w, r, model.OK(circuit.Forecasts()))
}

func (h *Handler) heuristics(w http.ResponseWriter, r *http.Request) {
	writeOutcome(w, r, model.OK(h.analyzer.Heuristics()))
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	writeOutcome(w, r, model.FromResult(h.sessions.List(r.Context())))
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ValidationError("invalid session id"))
		return
	}
	ok, err := h.sessions.Delete(r.Context(), id)
	switch {
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, err)
	case !ok:
		writeError(w, r, http.StatusNotFound, provider.ErrNotAvailable)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, q *query) bool {
	if q.err == nil {
		return false
	}
	writeError(w, r, http.StatusBadRequest, q.err)
	return true
}

// writeOutcome maps the outcome status onto the response code: empty
// results are a regular 200 response, errors are 400 (validation),
// 404 (unknown session) or 500.
func writeOutcome[T any](w http.ResponseWriter, r *http.Request, o model.Outcome[T]) {
	if !o.IsError() {
		writeJSON(w, r, http.StatusOK, o)
		return
	}
	code := http.StatusInternalServerError
	switch {
	case errors.Is(o.Err, model.ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(o.Err, provider.ErrNotAvailable):
		code = http.StatusNotFound
	}
	writeError(w, r, code, o.Err)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, err error) {
	if code >= http.StatusInternalServerError {
		log.GetFromContext(r.Context()).Error("request failed", log.ErrorField(err))
	}
	writeJSON(w, r, code, errorResponse{Status: model.StatusError.String(), Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.GetFromContext(r.Context()).Warn("could not write response", log.ErrorField(err))
	}
}
