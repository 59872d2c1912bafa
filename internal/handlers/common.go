package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/pitwall/strategy-api/internal/ml"
)

// Health check endpoint
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// Ready check endpoint
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Check all dependencies
	checks := map[string]bool{
		"postgres":   h.pg.Ping(ctx) == nil,
		"clickhouse": h.ch.Ping(ctx) == nil,
		"redis":      h.redis.Ping(ctx).Err() == nil,
	}

	allHealthy := true
	for _, ok := range checks {
		if !ok {
			allHealthy = false
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if !allHealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ready":      allHealthy,
		"checks":     checks,
		"queueDepth": h.pool.QueueDepth(),
	})
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}

// modelError maps the typed model errors onto HTTP statuses: malformed
// payloads and bad configuration are 400, an untrained model is 409, a failed
// fit is 500, an unknown model name is 404.
func (h *Handler) modelError(w http.ResponseWriter, err error) {
	var (
		schemaErr   *ml.SchemaError
		configErr   *ml.ConfigError
		notReadyErr *ml.NotReadyError
		trainErr    *ml.TrainingError
	)
	switch {
	case errors.As(err, &schemaErr):
		h.errorResponse(w, http.StatusBadRequest, schemaErr.Error())
	case errors.As(err, &configErr):
		h.errorResponse(w, http.StatusBadRequest, configErr.Error())
	case errors.As(err, &notReadyErr):
		h.errorResponse(w, http.StatusConflict, notReadyErr.Error())
	case errors.As(err, &trainErr):
		h.errorResponse(w, http.StatusInternalServerError, trainErr.Error())
	case errors.Is(err, ml.ErrUnknownModel):
		h.errorResponse(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Errorw("unhandled model error", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeInto decodes a JSON body over pre-filled defaults. An empty body is
// valid and leaves the defaults untouched.
func (h *Handler) decodeInto(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		h.errorResponse(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
