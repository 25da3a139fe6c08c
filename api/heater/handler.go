// Package heater exposes the heating schedule over HTTP.
package heater

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kilianp07/carheater/core/heating"
	"github.com/kilianp07/carheater/core/scheduler"
	"github.com/kilianp07/carheater/infra/logger"
)

// Scheduler is the part of scheduler.Scheduler the API needs.
type Scheduler interface {
	Status() (scheduler.Status, error)
	Reconfigure(ctx context.Context, readyTime string, enabled bool) (scheduler.Status, error)
}

// Response is the body of GET and POST /heater.
type Response struct {
	ReadyTime       string    `json:"readyTime"`
	TimerEnabled    bool      `json:"timerEnabled"`
	HeatingDuration int       `json:"heatingDuration"`
	Armed           bool      `json:"armed"`
	Heating         bool      `json:"heating"`
	Phase           string    `json:"phase"`
	NextActionAt    time.Time `json:"nextActionAt"`
	NextActionIn    string    `json:"nextActionIn"`
}

// Request is the body of POST /heater. Both fields are required.
type Request struct {
	ReadyTime    *string `json:"readyTime"`
	TimerEnabled *bool   `json:"timerEnabled"`
}

type errorBody struct {
	Error string `json:"error"`
}

type Handler struct {
	sched Scheduler
	now   func() time.Time
	log   logger.Logger
}

func NewHandler(s Scheduler, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{sched: s, now: now, log: logger.New("api")}
}

// Routes mounts the heater endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/heater", h.get)
	r.Post("/heater", h.post)
}

// NewRouter returns the service router with /healthz and the heater routes.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	h.Routes(r)
	return r
}

func (h *Handler) get(w http.ResponseWriter, _ *http.Request) {
	st, err := h.sched.Status()
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.response(st))
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	var req Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096))
	if err := dec.Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	if req.ReadyTime == nil || req.TimerEnabled == nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "readyTime and timerEnabled are required"})
		return
	}
	st, err := h.sched.Reconfigure(r.Context(), *req.ReadyTime, *req.TimerEnabled)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.response(st))
}

func (h *Handler) response(st scheduler.Status) Response {
	return NewResponse(st, h.now())
}

// NewResponse renders st as seen at now.
func NewResponse(st scheduler.Status, now time.Time) Response {
	a := st.NextAction(now)
	return Response{
		ReadyTime:       st.ReadyTime.String(),
		TimerEnabled:    st.Enabled,
		HeatingDuration: st.HeatingDurationMinutes,
		Armed:           st.Armed,
		Heating:         st.Heating,
		Phase:           string(a.Phase),
		NextActionAt:    a.At,
		NextActionIn:    heating.FormatTimeUntil(a, now),
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, scheduler.ErrInvalidConfiguration):
		code = http.StatusBadRequest
	case errors.Is(err, scheduler.ErrNotReady):
		code = http.StatusServiceUnavailable
	default:
		h.log.Errorf("heater request failed: %v", err)
	}
	h.writeJSON(w, code, errorBody{Error: err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warnf("encode response: %v", err)
	}
}
