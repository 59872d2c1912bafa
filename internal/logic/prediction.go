package logic

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/pitwall/strategy-api/internal/ml"
	"github.com/pitwall/strategy-api/internal/models"
)

var (
	predictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "strategy_predictions_total",
		Help: "Predictions served, by model and cache outcome",
	}, []string{"model", "cache"})

	predictionLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "strategy_prediction_seconds",
		Help:    "Prediction latency by model",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})
)

// PredictionService serves model predictions with a short-lived Redis cache.
// Predictions are pure functions of the request and the current artifact, so
// identical requests within the TTL are served from cache byte-identically.
type PredictionService struct {
	registry *ml.Registry
	cache    CacheClient
	ttl      time.Duration
	logger   *zap.SugaredLogger
}

func NewPredictionService(registry *ml.Registry, cache CacheClient, ttl time.Duration, logger *zap.SugaredLogger) *PredictionService {
	return &PredictionService{registry: registry, cache: cache, ttl: ttl, logger: logger}
}

// cacheKey hashes the domain plus the canonical JSON of the request.
func cacheKey(domain string, req any) string {
	payload, _ := json.Marshal(req)
	sum := sha256.Sum256(append([]byte(domain+":"), payload...))
	return "predict:" + domain + ":" + hex.EncodeToString(sum[:16])
}

// serve runs one prediction through the cache. The predict callback is only
// invoked on a miss; its result is cached for the TTL.
func serve[T any](ctx context.Context, s *PredictionService, domain string, req any, predict func() (*T, error)) (*T, error) {
	timer := prometheus.NewTimer(predictionLatency.WithLabelValues(domain))
	defer timer.ObserveDuration()

	key := cacheKey(domain, req)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key).Result(); err == nil {
			var cached T
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				predictionsTotal.WithLabelValues(domain, "hit").Inc()
				return &cached, nil
			}
		}
	}

	resp, err := predict()
	if err != nil {
		predictionsTotal.WithLabelValues(domain, "error").Inc()
		return nil, err
	}
	predictionsTotal.WithLabelValues(domain, "miss").Inc()

	if s.cache != nil {
		if payload, err := json.Marshal(resp); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
				s.logger.Debugw("prediction cache write failed", "model", domain, "error", err)
			}
		}
	}
	return resp, nil
}

func (s *PredictionService) tireModel() (*ml.TireModel, error) {
	art, err := s.registry.Artifact(ml.DomainTire)
	if err != nil {
		return nil, err
	}
	return art.(*ml.TireModel), nil
}

func (s *PredictionService) pitStopModel() (*ml.PitStopModel, error) {
	art, err := s.registry.Artifact(ml.DomainPitStop)
	if err != nil {
		return nil, err
	}
	return art.(*ml.PitStopModel), nil
}

func (s *PredictionService) racePaceModel() (*ml.RacePaceModel, error) {
	art, err := s.registry.Artifact(ml.DomainRacePace)
	if err != nil {
		return nil, err
	}
	return art.(*ml.RacePaceModel), nil
}

func (s *PredictionService) positionModel() (*ml.PositionModel, error) {
	art, err := s.registry.Artifact(ml.DomainPosition)
	if err != nil {
		return nil, err
	}
	return art.(*ml.PositionModel), nil
}

func (s *PredictionService) PredictTire(ctx context.Context, req *models.TireStrategyRequest) (*models.TireStrategyResponse, error) {
	return serve(ctx, s, ml.DomainTire, req, func() (*models.TireStrategyResponse, error) {
		m, err := s.tireModel()
		if err != nil {
			return nil, err
		}
		return m.Predict(req)
	})
}

func (s *PredictionService) PredictPitStop(ctx context.Context, req *models.PitStopRequest) (*models.PitStopResponse, error) {
	return serve(ctx, s, ml.DomainPitStop, req, func() (*models.PitStopResponse, error) {
		m, err := s.pitStopModel()
		if err != nil {
			return nil, err
		}
		return m.Predict(req)
	})
}

func (s *PredictionService) PredictRacePace(ctx context.Context, req *models.RacePaceRequest) (*models.RacePaceResponse, error) {
	return serve(ctx, s, ml.DomainRacePace, req, func() (*models.RacePaceResponse, error) {
		m, err := s.racePaceModel()
		if err != nil {
			return nil, err
		}
		return m.Predict(req)
	})
}

func (s *PredictionService) PredictPosition(ctx context.Context, req *models.PositionRequest) (*models.PositionResponse, error) {
	return serve(ctx, s, ml.DomainPosition, req, func() (*models.PositionResponse, error) {
		m, err := s.positionModel()
		if err != nil {
			return nil, err
		}
		return m.Predict(req)
	})
}

// FullAnalysisRequest carries one request per domain, all optional: a nil
// sub-request gets that domain's documented defaults.
type FullAnalysisRequest struct {
	Tire     *models.TireStrategyRequest `json:"tire_strategy,omitempty"`
	PitStop  *models.PitStopRequest      `json:"pit_stop,omitempty"`
	RacePace *models.RacePaceRequest     `json:"race_pace,omitempty"`
	Position *models.PositionRequest     `json:"position,omitempty"`
}

// FullAnalysis runs all four predictions for one race state. Domains fail
// independently: an untrained model lands in the Errors map instead of
// failing the whole analysis.
func (s *PredictionService) FullAnalysis(ctx context.Context, req *FullAnalysisRequest) *models.FullAnalysis {
	if req.Tire == nil {
		r := models.DefaultTireStrategyRequest()
		req.Tire = &r
	}
	if req.PitStop == nil {
		r := models.DefaultPitStopRequest()
		req.PitStop = &r
	}
	if req.RacePace == nil {
		r := models.DefaultRacePaceRequest()
		req.RacePace = &r
	}
	if req.Position == nil {
		r := models.DefaultPositionRequest()
		req.Position = &r
	}

	out := &models.FullAnalysis{Errors: map[string]string{}}
	var err error
	if out.Tire, err = s.PredictTire(ctx, req.Tire); err != nil {
		out.Errors[ml.DomainTire] = err.Error()
	}
	if out.PitStop, err = s.PredictPitStop(ctx, req.PitStop); err != nil {
		out.Errors[ml.DomainPitStop] = err.Error()
	}
	if out.RacePace, err = s.PredictRacePace(ctx, req.RacePace); err != nil {
		out.Errors[ml.DomainRacePace] = err.Error()
	}
	if out.Position, err = s.PredictPosition(ctx, req.Position); err != nil {
		out.Errors[ml.DomainPosition] = err.Error()
	}
	if len(out.Errors) == 0 {
		out.Errors = nil
	}
	out.Summary = buildSummary(out)
	return out
}

// buildSummary condenses the four domain outputs into pit-wall actions.
// Domains missing from the analysis simply contribute nothing.
func buildSummary(a *models.FullAnalysis) *models.ExecutiveSummary {
	if a.Tire == nil && a.PitStop == nil && a.RacePace == nil && a.Position == nil {
		return nil
	}
	s := &models.ExecutiveSummary{
		CriticalActions: []string{},
		Recommendations: []string{},
		RiskFactors:     []string{},
	}

	if a.Tire != nil {
		if a.Tire.PitUrgency > 75 {
			s.CriticalActions = append(s.CriticalActions, "Pit urgency critical: box within the next two laps")
		}
		s.Recommendations = append(s.Recommendations,
			fmt.Sprintf("Target compound %s for the next stint", a.Tire.RecommendedCompound))
		if a.Tire.DegradationRate > 0.10 {
			s.RiskFactors = append(s.RiskFactors,
				fmt.Sprintf("High tire degradation (%.3f s/lap)", a.Tire.DegradationRate))
		}
	}
	if a.PitStop != nil {
		if a.PitStop.InPitWindow && a.PitStop.UndercutOpportunity {
			s.CriticalActions = append(s.CriticalActions, "Undercut window open: commit or cover now")
		}
		s.Recommendations = append(s.Recommendations,
			fmt.Sprintf("Optimal pit lap %d (%d laps away)", a.PitStop.OptimalPitLap, a.PitStop.LapsToOptimal))
	}
	if a.RacePace != nil {
		if a.RacePace.Assessment.Trend == "degrading" {
			s.RiskFactors = append(s.RiskFactors, "Pace trend degrading over the look-ahead window")
		}
		s.Recommendations = append(s.Recommendations,
			fmt.Sprintf("Current pace %s (%+.2fs to best)", a.RacePace.Assessment.Level, a.RacePace.Assessment.Delta))
	}
	if a.Position != nil {
		if a.Position.Defense.ThreatLevel == "CRITICAL" {
			s.CriticalActions = append(s.CriticalActions, "Car behind in striking range: prioritize defense")
		}
		if a.Position.ChangeProbabilities.Lose > a.Position.ChangeProbabilities.Gain {
			s.RiskFactors = append(s.RiskFactors, "Position loss more likely than gain over the next five laps")
		}
	}
	return s
}

// Scenarios runs the base analysis plus fixed what-if variants: heavy rain,
// a safety car, and a late-race sprint.
func (s *PredictionService) Scenarios(ctx context.Context, base *FullAnalysisRequest) []models.Scenario {
	out := []models.Scenario{{
		Name:     "baseline",
		Changes:  []string{},
		Analysis: s.FullAnalysis(ctx, base),
	}}

	rain := cloneAnalysisRequest(base)
	rain.Tire.RainProbability = 90
	rain.PitStop.RainProbability = 90
	out = append(out, models.Scenario{
		Name:     "heavy_rain",
		Changes:  []string{"rain_probability=90"},
		Analysis: s.FullAnalysis(ctx, rain),
	})

	sc := cloneAnalysisRequest(base)
	sc.Tire.SafetyCarDeployed = true
	sc.PitStop.SafetyCarDeployed = true
	out = append(out, models.Scenario{
		Name:     "safety_car",
		Changes:  []string{"safety_car_deployed=true"},
		Analysis: s.FullAnalysis(ctx, sc),
	})

	sprint := cloneAnalysisRequest(base)
	sprint.Tire.RemainingLaps = 10
	sprint.PitStop.RemainingLaps = 10
	sprint.Position.RemainingLaps = 10
	out = append(out, models.Scenario{
		Name:     "final_sprint",
		Changes:  []string{"remaining_laps=10"},
		Analysis: s.FullAnalysis(ctx, sprint),
	})
	return out
}

// cloneAnalysisRequest deep-copies a full-analysis request after defaulting.
func cloneAnalysisRequest(base *FullAnalysisRequest) *FullAnalysisRequest {
	out := &FullAnalysisRequest{}
	if base.Tire != nil {
		t := *base.Tire
		out.Tire = &t
	} else {
		t := models.DefaultTireStrategyRequest()
		out.Tire = &t
	}
	if base.PitStop != nil {
		p := *base.PitStop
		out.PitStop = &p
	} else {
		p := models.DefaultPitStopRequest()
		out.PitStop = &p
	}
	if base.RacePace != nil {
		r := *base.RacePace
		out.RacePace = &r
	} else {
		r := models.DefaultRacePaceRequest()
		out.RacePace = &r
	}
	if base.Position != nil {
		p := *base.Position
		out.Position = &p
	} else {
		p := models.DefaultPositionRequest()
		out.Position = &p
	}
	return out
}
