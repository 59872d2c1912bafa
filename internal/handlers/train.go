package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pitwall/strategy-api/internal/ml"
	"github.com/pitwall/strategy-api/internal/models"
)

// trainFailureStatus maps a training error onto the HTTP status of the
// failure payload.
func trainFailureStatus(err error) int {
	var configErr *ml.ConfigError
	switch {
	case errors.As(err, &configErr):
		return http.StatusBadRequest
	case errors.Is(err, ml.ErrUnknownModel):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// defaultTrainRequest enables hybrid mode with the configured weight split.
func defaultTrainRequest() models.TrainRequest {
	return models.TrainRequest{HybridMode: true}
}

// TrainModel handles POST /api/v1/train/{model}
// @Summary Train One Model
// @Description Trains a single model on blended real and synthetic data
// @Tags Training
// @Accept json
// @Produce json
// @Param model path string true "Model name" Enums(tire_strategy, pit_stop, race_pace, position)
// @Param body body models.TrainRequest false "Training options"
// @Success 200 {object} models.TrainResult
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Unknown Model"
// @Failure 500 {object} models.TrainResult "Training Failure"
// @Router /train/{model} [post]
func (h *Handler) TrainModel(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "model")
	req := defaultTrainRequest()
	if !h.decodeInto(w, r, &req) {
		return
	}
	result, err := h.training.Train(r.Context(), model, &req)
	if err != nil {
		if result == nil || result.Error == "" {
			h.modelError(w, err)
			return
		}
		// Surface the run record alongside the failure status.
		h.jsonResponse(w, trainFailureStatus(err), result)
		return
	}
	h.jsonResponse(w, http.StatusOK, result)
}

// TrainAll handles POST /api/v1/train
// @Summary Train All Models
// @Description Trains all four models concurrently; one failure never stops the rest
// @Tags Training
// @Accept json
// @Produce json
// @Param body body models.TrainRequest false "Training options"
// @Success 200 {array} models.TrainResult
// @Router /train [post]
func (h *Handler) TrainAll(w http.ResponseWriter, r *http.Request) {
	req := defaultTrainRequest()
	if !h.decodeInto(w, r, &req) {
		return
	}
	results, err := h.training.TrainAll(r.Context(), &req)
	if err != nil {
		h.modelError(w, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, results)
}

// TrainingRuns handles GET /api/v1/train/runs
// @Summary Training History
// @Description Recent training runs, newest first
// @Tags Training
// @Produce json
// @Param limit query int false "Max rows (default 50)"
// @Success 200 {array} models.TrainingRun
// @Router /train/runs [get]
func (h *Handler) TrainingRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.training.RecentRuns(r.Context(), limit)
	if err != nil {
		h.logger.Errorw("failed to fetch training runs", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "failed to fetch training runs")
		return
	}
	h.jsonResponse(w, http.StatusOK, runs)
}
