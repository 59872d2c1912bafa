package logic

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pitwall/strategy-api/internal/ml"
	"github.com/pitwall/strategy-api/internal/models"
)

func testPredictionService(t *testing.T, train ...string) *PredictionService {
	t.Helper()
	logger := zap.NewNop().Sugar()
	registry := ml.NewRegistry(t.TempDir(), logger)
	for _, domain := range train {
		_, err := registry.Train(context.Background(), domain, func(context.Context) (ml.Artifact, error) {
			synthetic, err := ml.SyntheticFor(domain, 300, nil, 42)
			if err != nil {
				return nil, err
			}
			ds, err := ml.Blend(nil, synthetic, 0.7, 0.3)
			if err != nil {
				return nil, err
			}
			return fitDomain(domain, ds)
		})
		if err != nil {
			t.Fatalf("train %s: %v", domain, err)
		}
	}
	return NewPredictionService(registry, nil, time.Second, logger)
}

func TestCacheKeyDeterministic(t *testing.T) {
	a := models.DefaultTireStrategyRequest()
	b := models.DefaultTireStrategyRequest()
	if cacheKey(ml.DomainTire, &a) != cacheKey(ml.DomainTire, &b) {
		t.Error("identical requests produced different cache keys")
	}
	b.TireAge = 25
	if cacheKey(ml.DomainTire, &a) == cacheKey(ml.DomainTire, &b) {
		t.Error("different requests share a cache key")
	}
	if cacheKey(ml.DomainTire, &a) == cacheKey(ml.DomainPitStop, &a) {
		t.Error("different domains share a cache key")
	}
}

func TestPredictNotReady(t *testing.T) {
	svc := testPredictionService(t)
	req := models.DefaultTireStrategyRequest()
	_, err := svc.PredictTire(context.Background(), &req)
	var nr *ml.NotReadyError
	if !errors.As(err, &nr) {
		t.Fatalf("error = %v, want NotReadyError", err)
	}
}

func TestPredictTireTrained(t *testing.T) {
	svc := testPredictionService(t, ml.DomainTire)
	req := models.DefaultTireStrategyRequest()
	resp, err := svc.PredictTire(context.Background(), &req)
	if err != nil {
		t.Fatalf("PredictTire: %v", err)
	}
	if resp.RecommendedCompound == "" {
		t.Error("empty recommended compound")
	}
}

func TestFullAnalysisPartialFailure(t *testing.T) {
	svc := testPredictionService(t, ml.DomainTire)
	out := svc.FullAnalysis(context.Background(), &FullAnalysisRequest{})
	if out.Tire == nil {
		t.Error("trained tire domain missing from analysis")
	}
	if out.Errors == nil {
		t.Fatal("untrained domains should land in the errors map")
	}
	for _, domain := range []string{ml.DomainPitStop, ml.DomainRacePace, ml.DomainPosition} {
		if _, ok := out.Errors[domain]; !ok {
			t.Errorf("domain %s missing from errors map", domain)
		}
	}
}

func TestBuildSummary(t *testing.T) {
	a := &models.FullAnalysis{
		Tire: &models.TireStrategyResponse{
			RecommendedCompound: "MEDIUM",
			DegradationRate:     0.12,
			PitUrgency:          80,
		},
		PitStop: &models.PitStopResponse{
			InPitWindow:         true,
			UndercutOpportunity: true,
			OptimalPitLap:       28,
			LapsToOptimal:       3,
		},
		RacePace: &models.RacePaceResponse{
			Assessment: models.PerformanceAssessment{Level: "AVERAGE", Delta: 1.2, Trend: "degrading"},
		},
		Position: &models.PositionResponse{
			Defense:             models.DefenseAnalysis{ThreatLevel: "CRITICAL"},
			ChangeProbabilities: models.PositionChangeProbabilities{Gain: 0.1, Maintain: 0.4, Lose: 0.5},
		},
	}
	s := buildSummary(a)
	if s == nil {
		t.Fatal("summary missing")
	}
	if len(s.CriticalActions) != 3 {
		t.Errorf("critical actions = %v, want urgency, undercut and defense entries", s.CriticalActions)
	}
	if len(s.RiskFactors) != 3 {
		t.Errorf("risk factors = %v, want degradation, pace and position entries", s.RiskFactors)
	}
	if len(s.Recommendations) == 0 {
		t.Error("no recommendations composed")
	}

	if got := buildSummary(&models.FullAnalysis{}); got != nil {
		t.Error("empty analysis should have no summary")
	}
}

func TestScenarios(t *testing.T) {
	svc := testPredictionService(t, ml.DomainTire)
	scenarios := svc.Scenarios(context.Background(), &FullAnalysisRequest{})
	if len(scenarios) != 4 {
		t.Fatalf("got %d scenarios, want 4", len(scenarios))
	}
	wantNames := []string{"baseline", "heavy_rain", "safety_car", "final_sprint"}
	for i, sc := range scenarios {
		if sc.Name != wantNames[i] {
			t.Errorf("scenario %d = %q, want %q", i, sc.Name, wantNames[i])
		}
		if sc.Analysis == nil {
			t.Errorf("scenario %q has no analysis", sc.Name)
		}
	}
	// The rain scenario must flip the tire call to a rain compound.
	rain := scenarios[1].Analysis
	if rain.Tire != nil {
		if c := rain.Tire.RecommendedCompound; c != "WET" && c != "INTERMEDIATE" {
			t.Errorf("heavy rain recommended %s", c)
		}
	}
}
