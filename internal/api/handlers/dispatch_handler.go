package handlers

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"hookd/internal/engine/dispatch"
	"hookd/internal/engine/event"
)

// DispatchHandler is the entry point producers call after a CRUD mutation.
// One invocation is one synchronous pass: normalize, resolve, fan out,
// record, respond. The producer treats the call as best-effort notification;
// delivery failures never turn into a non-200 here.
type DispatchHandler struct {
	svc *dispatch.Service
}

func NewDispatchHandler(svc *dispatch.Service) *DispatchHandler {
	return &DispatchHandler{svc: svc}
}

func (h *DispatchHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil || raw == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	ev := event.Normalize(raw)

	summary, err := h.svc.Run(r.Context(), ev)
	if err != nil {
		log.Error().Err(err).Str("tenant_id", ev.TenantID).Str("event", ev.Event).
			Msg("subscription lookup failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "failed to load webhook subscriptions",
			"details": err.Error(),
		})
		return
	}

	log.Info().
		Str("tenant_id", ev.TenantID).
		Str("event", ev.Event).
		Int("total", summary.Total).
		Int("successful", summary.Successful).
		Msg("dispatch completed")

	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
