package ml

import (
	"encoding/json"
	"testing"

	"github.com/pitwall/strategy-api/internal/models"
)

func TestTrendLabel(t *testing.T) {
	tests := []struct {
		name   string
		deltas []float64
		want   string
	}{
		{"strictly decreasing", []float64{1.0, 0.8, 0.6, 0.5, 0.3}, "improving"},
		{"strictly increasing", []float64{0.3, 0.5, 0.8, 1.0, 1.4}, "degrading"},
		{"flat", []float64{0.5, 0.5, 0.5, 0.5, 0.5}, "degrading"},
		{"mixed", []float64{0.5, 0.3, 0.6, 0.2, 0.7}, "degrading"},
		{"plateau breaks improvement", []float64{1.0, 0.8, 0.8, 0.5}, "degrading"},
		{"single delta", []float64{0.5}, "degrading"},
		{"empty", nil, "degrading"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trendLabel(tt.deltas); got != tt.want {
				t.Errorf("trendLabel(%v) = %q, want %q", tt.deltas, got, tt.want)
			}
		})
	}
}

func TestAssessPace(t *testing.T) {
	tests := []struct {
		delta     float64
		wantLevel string
		wantColor string
	}{
		{0.1, "EXCELLENT", "green"},
		{0.7, "GOOD", "lime"},
		{1.5, "AVERAGE", "yellow"},
		{3.0, "BELOW PAR", "red"},
	}
	for _, tt := range tests {
		a := assessPace(tt.delta)
		if a.Level != tt.wantLevel || a.Color != tt.wantColor {
			t.Errorf("assessPace(%v) = %s/%s, want %s/%s",
				tt.delta, a.Level, a.Color, tt.wantLevel, tt.wantColor)
		}
	}
}

func TestRacePacePredictShape(t *testing.T) {
	ds, err := Blend(nil, SyntheticRacePace(600, nil, 42), 0.7, 0.3)
	if err != nil {
		t.Fatalf("Blend: %v", err)
	}
	m, err := TrainRacePace(ds)
	if err != nil {
		t.Fatalf("TrainRacePace: %v", err)
	}

	req := models.DefaultRacePaceRequest()
	req.LapNumber = 20
	req.FuelLoad = 70
	req.TireAge = 10

	resp, err := m.Predict(&req)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if resp.PredictedLapTime < 80 || resp.PredictedLapTime > 100 {
		t.Errorf("predicted lap time %v implausible for the synthetic rules", resp.PredictedLapTime)
	}
	if len(resp.LapPredictions) != 5 {
		t.Fatalf("look-ahead has %d laps, want 5", len(resp.LapPredictions))
	}
	for i, lp := range resp.LapPredictions {
		if lp.Lap != req.LapNumber+i+1 {
			t.Errorf("look-ahead lap %d = %d, want %d", i, lp.Lap, req.LapNumber+i+1)
		}
		if lp.TireAge != req.TireAge+i+1 {
			t.Errorf("look-ahead tire age %d = %d, want %d", i, lp.TireAge, req.TireAge+i+1)
		}
		if lp.FuelLoad > req.FuelLoad {
			t.Errorf("fuel load grew over the projection: %v > %v", lp.FuelLoad, req.FuelLoad)
		}
	}
	switch resp.Assessment.Trend {
	case "improving", "degrading":
	default:
		t.Errorf("assessment trend = %q", resp.Assessment.Trend)
	}
}

func TestRacePaceResponseContract(t *testing.T) {
	ds, err := Blend(nil, SyntheticRacePace(600, nil, 42), 0.7, 0.3)
	if err != nil {
		t.Fatalf("Blend: %v", err)
	}
	m, err := TrainRacePace(ds)
	if err != nil {
		t.Fatalf("TrainRacePace: %v", err)
	}

	req := models.DefaultRacePaceRequest()
	resp, err := m.Predict(&req)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	// The trend regressor must surface as the numeric per-lap drift.
	if resp.PaceTrendPerLap == 0 {
		t.Error("pace trend per lap not served from the trend regressor")
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{
		"predicted_lap_time", "fuel_effect_per_kg", "pace_trend_per_lap",
		"current_delta_to_optimal", "lap_predictions",
		"performance_assessment", "recommendations",
	} {
		if _, ok := fields[key]; !ok {
			t.Errorf("response missing key %q", key)
		}
	}
	if _, ok := fields["pace_trend"]; ok {
		t.Error("response still carries the repurposed pace_trend key")
	}
}
