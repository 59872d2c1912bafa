package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pitwall/strategy-api/internal/ml"
	"github.com/pitwall/strategy-api/internal/models"
)

// ModelStatuses handles GET /api/v1/models/status
// @Summary Model Status
// @Description Lifecycle state of every model
// @Tags Models
// @Produce json
// @Success 200 {array} models.ModelStatus
// @Router /models/status [get]
func (h *Handler) ModelStatuses(w http.ResponseWriter, r *http.Request) {
	entries := h.registry.Status()
	out := make([]models.ModelStatus, 0, len(entries))
	for _, e := range entries {
		out = append(out, statusRow(e))
	}
	h.jsonResponse(w, http.StatusOK, out)
}

// ModelInfo handles GET /api/v1/models/{model}
// @Summary Model Detail
// @Description Status, feature schema and training metrics of one model
// @Tags Models
// @Produce json
// @Param model path string true "Model name"
// @Success 200 {object} models.ModelInfo
// @Failure 404 {object} map[string]string "Unknown Model"
// @Router /models/{model} [get]
func (h *Handler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "model")
	found := false
	for _, d := range ml.Domains {
		if d == model {
			found = true
			break
		}
	}
	if !found {
		h.errorResponse(w, http.StatusNotFound, "unknown model: "+model)
		return
	}

	for _, e := range h.registry.Status() {
		if e.Model != model {
			continue
		}
		info := models.ModelInfo{
			ModelStatus:   statusRow(e),
			FeatureSchema: e.Schema,
		}
		if e.Metrics != nil {
			info.Scores = e.Metrics.Scores
			info.DataBreakdown = &models.DataBreakdown{
				Real:      e.Metrics.DataBreakdown.Real,
				Synthetic: e.Metrics.DataBreakdown.Synthetic,
			}
		}
		h.jsonResponse(w, http.StatusOK, info)
		return
	}
	h.errorResponse(w, http.StatusNotFound, "unknown model: "+model)
}

func statusRow(e ml.StatusEntry) models.ModelStatus {
	return models.ModelStatus{
		Model:       e.Model,
		Description: ml.DomainDescriptions[e.Model],
		Status:      e.Status,
		Ready:       e.Status == ml.StatusTrained || e.Status == ml.StatusLoaded,
		TrainedAt:   e.TrainedAt,
	}
}
