package handlers

import (
	"net/http"

	"github.com/pitwall/strategy-api/internal/models"
)

// IngestSession handles POST /api/v1/ingest/session
// @Summary Ingest Session Telemetry
// @Description Accepts one session's telemetry feeds; laps are queued async, the rest is written inline
// @Tags Ingestion
// @Accept json
// @Produce json
// @Param body body models.SessionData true "Session telemetry"
// @Success 202 {object} map[string]interface{} "Accepted"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 503 {object} map[string]string "Queue Full"
// @Router /ingest/session [post]
func (h *Handler) IngestSession(w http.ResponseWriter, r *http.Request) {
	var data models.SessionData
	if !h.decodeInto(w, r, &data) {
		return
	}
	if err := h.validator.Struct(&data); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid session payload: "+err.Error())
		return
	}

	if err := h.telemetry.StoreSessionFeeds(r.Context(), &data); err != nil {
		h.logger.Errorw("failed to store session feeds", "session", data.SessionKey, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "failed to store session feeds")
		return
	}

	queued, shed := 0, 0
	for _, lap := range data.Laps {
		if lap.SessionKey == 0 {
			lap.SessionKey = data.SessionKey
		}
		if h.pool.Enqueue(lap) {
			queued++
		} else {
			shed++
		}
	}
	if shed > 0 {
		h.logger.Warnw("lap ingest queue full, records dropped",
			"session", data.SessionKey, "queued", queued, "dropped", shed)
	}

	status := http.StatusAccepted
	if shed > 0 && queued == 0 {
		status = http.StatusServiceUnavailable
	}
	h.jsonResponse(w, status, map[string]interface{}{
		"session_key":  data.SessionKey,
		"laps_queued":  queued,
		"laps_dropped": shed,
		"stints":       len(data.Stints),
		"weather":      len(data.Weather),
		"pit_stops":    len(data.PitStops),
		"intervals":    len(data.Intervals),
	})
}

// Sessions handles GET /api/v1/sessions
// @Summary List Sessions
// @Description Session catalog with lap counts
// @Tags Ingestion
// @Produce json
// @Success 200 {array} models.SessionInfo
// @Router /sessions [get]
func (h *Handler) Sessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.telemetry.ListSessions(r.Context())
	if err != nil {
		h.logger.Errorw("failed to list sessions", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	h.jsonResponse(w, http.StatusOK, sessions)
}
