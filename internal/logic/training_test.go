package logic

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/pitwall/strategy-api/internal/config"
	"github.com/pitwall/strategy-api/internal/ml"
	"github.com/pitwall/strategy-api/internal/models"
)

// fakePg satisfies PgPool for tests that only need Exec bookkeeping.
type fakePg struct {
	execCalls int
}

func (f *fakePg) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakePg) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return fakeRow{}
}

func (f *fakePg) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execCalls++
	return pgconn.CommandTag{}, nil
}

type fakeRow struct{}

func (fakeRow) Scan(dest ...any) error { return pgx.ErrNoRows }

func testTrainingService(t *testing.T) (*TrainingService, *fakePg) {
	t.Helper()
	cfg := &config.Config{
		ModelsDir:           t.TempDir(),
		RealDataWeight:      0.7,
		SyntheticDataWeight: 0.3,
		SyntheticPoolSize:   300,
	}
	logger := zap.NewNop().Sugar()
	registry := ml.NewRegistry(cfg.ModelsDir, logger)
	pg := &fakePg{}
	return NewTrainingService(registry, nil, pg, cfg, logger), pg
}

func TestResolveWeights(t *testing.T) {
	svc, _ := testTrainingService(t)
	tests := []struct {
		name      string
		req       models.TrainRequest
		wantReal  float64
		wantSynth float64
	}{
		{"explicit", models.TrainRequest{HybridMode: true, RealDataWeight: 0.6, SyntheticDataWeight: 0.4}, 0.6, 0.4},
		{"defaults", models.TrainRequest{HybridMode: true}, 0.7, 0.3},
		{"synthetic only", models.TrainRequest{HybridMode: false, RealDataWeight: 0.9, SyntheticDataWeight: 0.1}, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			real, synth := svc.resolveWeights(&tt.req)
			if real != tt.wantReal || synth != tt.wantSynth {
				t.Errorf("resolveWeights = (%v, %v), want (%v, %v)", real, synth, tt.wantReal, tt.wantSynth)
			}
		})
	}
}

func TestTrainSyntheticOnly(t *testing.T) {
	svc, pg := testTrainingService(t)
	req := models.TrainRequest{HybridMode: false}

	result, err := svc.Train(context.Background(), ml.DomainTire, &req)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if result.Status != ml.StatusTrained {
		t.Errorf("status = %s, want %s", result.Status, ml.StatusTrained)
	}
	if result.DataBreakdown.Real != 0 || result.DataBreakdown.Synthetic != 300 {
		t.Errorf("breakdown = %+v, want {0 300}", result.DataBreakdown)
	}
	if result.RunID == "" {
		t.Error("run ID not assigned")
	}
	if pg.execCalls == 0 {
		t.Error("training run not recorded")
	}
}

func TestTrainUnknownModel(t *testing.T) {
	svc, _ := testTrainingService(t)
	req := models.TrainRequest{}
	if _, err := svc.Train(context.Background(), "nope", &req); err == nil {
		t.Fatal("expected error for unknown model")
	}
}

func TestTrainAllSiblingIndependence(t *testing.T) {
	svc, _ := testTrainingService(t)
	// Synthetic-only so no telemetry service is needed.
	req := models.TrainRequest{HybridMode: false}

	results, err := svc.TrainAll(context.Background(), &req)
	if err != nil {
		t.Fatalf("TrainAll: %v", err)
	}
	if len(results) != len(ml.Domains) {
		t.Fatalf("got %d results, want %d", len(results), len(ml.Domains))
	}
	for i, res := range results {
		if res == nil {
			t.Fatalf("result %d is nil", i)
		}
		if res.Model != ml.Domains[i] {
			t.Errorf("result %d model = %s, want %s", i, res.Model, ml.Domains[i])
		}
		if res.Status != ml.StatusTrained {
			t.Errorf("model %s status = %s (%s)", res.Model, res.Status, res.Error)
		}
	}
}

func TestFitDomainDispatch(t *testing.T) {
	for _, domain := range ml.Domains {
		synthetic, err := ml.SyntheticFor(domain, 100, nil, 42)
		if err != nil {
			t.Fatalf("SyntheticFor(%s): %v", domain, err)
		}
		ds, err := ml.Blend(nil, synthetic, 0.7, 0.3)
		if err != nil {
			t.Fatalf("Blend: %v", err)
		}
		art, err := fitDomain(domain, ds)
		if err != nil {
			t.Fatalf("fitDomain(%s): %v", domain, err)
		}
		if art.ArtifactMeta().Model != domain {
			t.Errorf("artifact meta model = %s, want %s", art.ArtifactMeta().Model, domain)
		}
	}
	if _, err := fitDomain("nope", &ml.Dataset{}); err == nil {
		t.Fatal("expected error for unknown domain")
	}
}

func TestSyntheticBounds(t *testing.T) {
	sessions := []*models.SessionData{
		{Weather: []models.WeatherSample{
			{TrackTemperature: 30, AirTemperature: 22},
			{TrackTemperature: 38, AirTemperature: 26},
		}},
		{Weather: []models.WeatherSample{
			{TrackTemperature: 34, AirTemperature: 24},
		}},
	}
	bounds := SyntheticBounds(sessions)
	track := bounds["track_temperature"]
	if track.Min != 25 || track.Max != 43 {
		t.Errorf("track bounds = %+v, want {25 43}", track)
	}
	air := bounds["air_temperature"]
	if air.Min != 17 || air.Max != 31 {
		t.Errorf("air bounds = %+v, want {17 31}", air)
	}
	if SyntheticBounds(nil) != nil {
		t.Error("no sessions should produce nil bounds")
	}
}
