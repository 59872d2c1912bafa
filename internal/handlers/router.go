package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes builds the full router: health probes and Prometheus metrics at the
// root, the API under /api/v1.
func (h *Handler) Routes(allowedOrigins []string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/predict", func(r chi.Router) {
			r.Post("/tire-strategy", h.PredictTireStrategy)
			r.Post("/pit-stop", h.PredictPitStop)
			r.Post("/race-pace", h.PredictRacePace)
			r.Post("/position", h.PredictPosition)
			r.Post("/full-analysis", h.FullAnalysis)
			r.Post("/scenarios", h.Scenarios)
		})

		r.Route("/train", func(r chi.Router) {
			r.Post("/", h.TrainAll)
			r.Get("/runs", h.TrainingRuns)
			r.Post("/{model}", h.TrainModel)
		})

		r.Route("/models", func(r chi.Router) {
			r.Get("/status", h.ModelStatuses)
			r.Get("/{model}", h.ModelInfo)
		})

		r.Post("/ingest/session", h.IngestSession)
		r.Get("/sessions", h.Sessions)
	})

	return r
}
