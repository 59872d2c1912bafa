package logic

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pitwall/strategy-api/internal/config"
	"github.com/pitwall/strategy-api/internal/ml"
	"github.com/pitwall/strategy-api/internal/models"
)

var (
	trainingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "strategy_training_duration_seconds",
		Help:    "Duration of model training runs by model",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"model"})

	trainingRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "strategy_training_runs_total",
		Help: "Training runs by model and outcome",
	}, []string{"model", "status"})
)

// TrainingService orchestrates hybrid training: pull real telemetry, generate
// the rule-derived pool, blend, fit via the registry, and record the run.
type TrainingService struct {
	registry  *ml.Registry
	telemetry *TelemetryService
	pg        PgPool
	cfg       *config.Config
	logger    *zap.SugaredLogger
}

func NewTrainingService(registry *ml.Registry, telemetry *TelemetryService, pg PgPool, cfg *config.Config, logger *zap.SugaredLogger) *TrainingService {
	return &TrainingService{
		registry:  registry,
		telemetry: telemetry,
		pg:        pg,
		cfg:       cfg,
		logger:    logger,
	}
}

// resolveWeights applies the configured defaults when the request leaves the
// weights unset, and collapses to synthetic-only when hybrid mode is off.
func (s *TrainingService) resolveWeights(req *models.TrainRequest) (real, synthetic float64) {
	real, synthetic = req.RealDataWeight, req.SyntheticDataWeight
	if real == 0 && synthetic == 0 {
		real, synthetic = s.cfg.RealDataWeight, s.cfg.SyntheticDataWeight
	}
	if !req.HybridMode {
		real, synthetic = 0, 1
	}
	return real, synthetic
}

// Train runs one model's full training pipeline and records the run in
// PostgreSQL. A failed run is recorded too; the registry keeps the previous
// artifact servable.
func (s *TrainingService) Train(ctx context.Context, model string, req *models.TrainRequest) (*models.TrainResult, error) {
	runID := uuid.NewString()
	start := time.Now()

	result := &models.TrainResult{Model: model, RunID: runID}

	art, err := s.registry.Train(ctx, model, func(ctx context.Context) (ml.Artifact, error) {
		ds, err := s.buildDataset(ctx, model, req)
		if err != nil {
			return nil, err
		}
		result.DataBreakdown = models.DataBreakdown{
			Real:      ds.RealCount,
			Synthetic: ds.SyntheticCount,
		}
		return fitDomain(model, ds)
	})
	result.DurationMS = time.Since(start).Milliseconds()
	trainingDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())

	if err != nil {
		result.Status = ml.StatusError
		result.Error = err.Error()
		trainingRunsTotal.WithLabelValues(model, ml.StatusError).Inc()
		s.recordRun(ctx, runID, result, start)
		return result, err
	}

	meta := art.ArtifactMeta()
	result.Status = ml.StatusTrained
	result.Scores = meta.Metrics.Scores
	result.SamplesUsed = meta.Metrics.SamplesUsed
	trainingRunsTotal.WithLabelValues(model, ml.StatusTrained).Inc()
	s.recordRun(ctx, runID, result, start)
	return result, nil
}

// TrainAll trains every model concurrently. One model's failure never stops
// its siblings: each outcome lands in its own result entry and the call only
// errors when the context dies.
func (s *TrainingService) TrainAll(ctx context.Context, req *models.TrainRequest) ([]*models.TrainResult, error) {
	results := make([]*models.TrainResult, len(ml.Domains))
	g, gctx := errgroup.WithContext(ctx)
	for i, domain := range ml.Domains {
		i, domain := i, domain
		g.Go(func() error {
			res, err := s.Train(gctx, domain, req)
			if err != nil {
				s.logger.Warnw("model training failed in batch", "model", domain, "error", err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// buildDataset assembles the blended training set for one domain.
func (s *TrainingService) buildDataset(ctx context.Context, model string, req *models.TrainRequest) (*ml.Dataset, error) {
	var (
		real     []ml.Example
		bounds   map[string]ml.Bounds
		sessions []*models.SessionData
	)
	if req.HybridMode {
		var err error
		sessions, err = s.telemetry.LoadSessions(ctx, req.SessionKeys)
		if err != nil {
			return nil, fmt.Errorf("load telemetry: %w", err)
		}
		real, err = ml.ExtractFor(model, sessions)
		if err != nil {
			return nil, err
		}
		bounds = SyntheticBounds(sessions)
		s.logger.Infow("extracted real samples",
			"model", model, "sessions", len(sessions), "samples", len(real))
	}

	synthetic, err := ml.SyntheticFor(model, s.cfg.SyntheticPoolSize, bounds, 42)
	if err != nil {
		return nil, err
	}

	realW, synthW := s.resolveWeights(req)
	return ml.Blend(real, synthetic, realW, synthW)
}

func fitDomain(model string, ds *ml.Dataset) (ml.Artifact, error) {
	switch model {
	case ml.DomainTire:
		return ml.TrainTire(ds)
	case ml.DomainPitStop:
		return ml.TrainPitStop(ds)
	case ml.DomainRacePace:
		return ml.TrainRacePace(ds)
	case ml.DomainPosition:
		return ml.TrainPosition(ds)
	}
	return nil, ml.ErrUnknownModel
}

// recordRun persists a training run row. Recording failures are logged, not
// surfaced: history bookkeeping never fails a training call.
func (s *TrainingService) recordRun(ctx context.Context, runID string, res *models.TrainResult, startedAt time.Time) {
	_, err := s.pg.Exec(ctx, `
		INSERT INTO training_runs
		(run_id, model, status, real_samples, synthetic_samples, duration_ms, error, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, runID, res.Model, res.Status, res.DataBreakdown.Real, res.DataBreakdown.Synthetic,
		res.DurationMS, res.Error, startedAt)
	if err != nil {
		s.logger.Errorw("failed to record training run", "run_id", runID, "error", err)
	}
}

// RecentRuns returns the latest training runs, newest first.
func (s *TrainingService) RecentRuns(ctx context.Context, limit int) ([]models.TrainingRun, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.pg.Query(ctx, `
		SELECT run_id, model, status, real_samples, synthetic_samples, duration_ms, COALESCE(error, ''), started_at
		FROM training_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query training runs: %w", err)
	}
	defer rows.Close()
	var out []models.TrainingRun
	for rows.Next() {
		var run models.TrainingRun
		if err := rows.Scan(&run.RunID, &run.Model, &run.Status, &run.Real,
			&run.Synthetic, &run.DurationMS, &run.Error, &run.StartedAt); err != nil {
			continue
		}
		out = append(out, run)
	}
	return out, nil
}
