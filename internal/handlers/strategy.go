package handlers

import (
	"net/http"

	"github.com/pitwall/strategy-api/internal/logic"
	"github.com/pitwall/strategy-api/internal/models"
)

// PredictTireStrategy handles POST /api/v1/predict/tire-strategy
// @Summary Tire Strategy Prediction
// @Description Recommends a compound with stint length, degradation and pit urgency
// @Tags Predictions
// @Accept json
// @Produce json
// @Param body body models.TireStrategyRequest false "Race state (missing fields use defaults)"
// @Success 200 {object} models.TireStrategyResponse
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 409 {object} map[string]string "Model Not Trained"
// @Router /predict/tire-strategy [post]
func (h *Handler) PredictTireStrategy(w http.ResponseWriter, r *http.Request) {
	req := models.DefaultTireStrategyRequest()
	if !h.decodeInto(w, r, &req) {
		return
	}
	resp, err := h.prediction.PredictTire(r.Context(), &req)
	if err != nil {
		h.modelError(w, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, resp)
}

// PredictPitStop handles POST /api/v1/predict/pit-stop
// @Summary Pit Stop Prediction
// @Description Pit window, undercut odds, optimal lap and strategy options
// @Tags Predictions
// @Accept json
// @Produce json
// @Param body body models.PitStopRequest false "Race state (missing fields use defaults)"
// @Success 200 {object} models.PitStopResponse
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 409 {object} map[string]string "Model Not Trained"
// @Router /predict/pit-stop [post]
func (h *Handler) PredictPitStop(w http.ResponseWriter, r *http.Request) {
	req := models.DefaultPitStopRequest()
	if !h.decodeInto(w, r, &req) {
		return
	}
	resp, err := h.prediction.PredictPitStop(r.Context(), &req)
	if err != nil {
		h.modelError(w, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, resp)
}

// PredictRacePace handles POST /api/v1/predict/race-pace
// @Summary Race Pace Prediction
// @Description Lap time with a five-lap projection and pace trend
// @Tags Predictions
// @Accept json
// @Produce json
// @Param body body models.RacePaceRequest false "Race state (missing fields use defaults)"
// @Success 200 {object} models.RacePaceResponse
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 409 {object} map[string]string "Model Not Trained"
// @Router /predict/race-pace [post]
func (h *Handler) PredictRacePace(w http.ResponseWriter, r *http.Request) {
	req := models.DefaultRacePaceRequest()
	if !h.decodeInto(w, r, &req) {
		return
	}
	resp, err := h.prediction.PredictRacePace(r.Context(), &req)
	if err != nil {
		h.modelError(w, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, resp)
}

// PredictPosition handles POST /api/v1/predict/position
// @Summary Position Prediction
// @Description Position change probabilities with attack and defense analysis
// @Tags Predictions
// @Accept json
// @Produce json
// @Param body body models.PositionRequest false "Race state (missing fields use defaults)"
// @Success 200 {object} models.PositionResponse
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 409 {object} map[string]string "Model Not Trained"
// @Router /predict/position [post]
func (h *Handler) PredictPosition(w http.ResponseWriter, r *http.Request) {
	req := models.DefaultPositionRequest()
	if !h.decodeInto(w, r, &req) {
		return
	}
	resp, err := h.prediction.PredictPosition(r.Context(), &req)
	if err != nil {
		h.modelError(w, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, resp)
}

// FullAnalysis handles POST /api/v1/predict/full-analysis
// @Summary Full Strategy Analysis
// @Description Runs all four predictions for one race state; untrained models land in the errors map
// @Tags Predictions
// @Accept json
// @Produce json
// @Success 200 {object} models.FullAnalysis
// @Router /predict/full-analysis [post]
func (h *Handler) FullAnalysis(w http.ResponseWriter, r *http.Request) {
	var req logic.FullAnalysisRequest
	if !h.decodeInto(w, r, &req) {
		return
	}
	h.jsonResponse(w, http.StatusOK, h.prediction.FullAnalysis(r.Context(), &req))
}

// Scenarios handles POST /api/v1/predict/scenarios
// @Summary Scenario Analysis
// @Description Baseline analysis plus heavy-rain, safety-car and final-sprint variants
// @Tags Predictions
// @Accept json
// @Produce json
// @Success 200 {array} models.Scenario
// @Router /predict/scenarios [post]
func (h *Handler) Scenarios(w http.ResponseWriter, r *http.Request) {
	var req logic.FullAnalysisRequest
	if !h.decodeInto(w, r, &req) {
		return
	}
	h.jsonResponse(w, http.StatusOK, h.prediction.Scenarios(r.Context(), &req))
}
