package ml

import (
	"math"
	"testing"

	"github.com/pitwall/strategy-api/internal/models"
)

func trainedPositionModel(t *testing.T) *PositionModel {
	t.Helper()
	ds, err := Blend(nil, SyntheticPosition(800, nil, 42), 0.7, 0.3)
	if err != nil {
		t.Fatalf("Blend: %v", err)
	}
	m, err := TrainPosition(ds)
	if err != nil {
		t.Fatalf("TrainPosition: %v", err)
	}
	return m
}

func TestPositionChangeProbabilitiesSumToOne(t *testing.T) {
	m := trainedPositionModel(t)
	req := models.DefaultPositionRequest()
	resp, err := m.Predict(&req)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	sum := resp.ChangeProbabilities.Gain + resp.ChangeProbabilities.Maintain + resp.ChangeProbabilities.Lose
	if math.Abs(sum-1) > 0.01 {
		t.Errorf("change probabilities sum to %v, want ~1", sum)
	}
}

func TestPositionPredictedNeverAboveFirst(t *testing.T) {
	m := trainedPositionModel(t)
	req := models.DefaultPositionRequest()
	req.CurrentPosition = 1
	req.GapToCarAhead = 0.3
	req.RelativePace = -1.0

	resp, err := m.Predict(&req)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if resp.PredictedPosition < 1 {
		t.Errorf("predicted position %d above P1", resp.PredictedPosition)
	}
}

func TestBattleStatus(t *testing.T) {
	tests := []struct {
		name      string
		gapAhead  float64
		gapBehind float64
		want      string
	}{
		{"both sides", 1.0, 1.0, "IN BATTLE - Both sides"},
		{"attacking", 1.0, 4.0, "ATTACKING - Car ahead"},
		{"defending with clear air ahead", 10.0, 0.4, "DEFENDING - Under pressure"},
		{"clean air", 8.0, 8.0, "CLEAN AIR - No immediate battle"},
		{"monitoring", 3.0, 3.0, "MONITORING - Gaps manageable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := battleStatus(tt.gapAhead, tt.gapBehind); got != tt.want {
				t.Errorf("battleStatus(%v, %v) = %q, want %q", tt.gapAhead, tt.gapBehind, got, tt.want)
			}
		})
	}
}

func TestPredictedFinal(t *testing.T) {
	tests := []struct {
		name      string
		current   int
		remaining int
		otProb    float64
		loseProb  float64
		want      int
	}{
		{"strong attacker gains up to three", 10, 50, 1.0, 0.0, 7},
		{"heavy pressure loses up to two", 10, 50, 0.0, 1.0, 12},
		{"few laps limit the movement", 10, 5, 1.0, 0.0, 9},
		{"balanced race holds station", 10, 50, 0.5, 0.75, 10},
		{"leader cannot improve", 1, 50, 1.0, 0.0, 1},
		{"floor at twenty", 19, 50, 0.0, 1.0, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := predictedFinal(tt.current, tt.remaining, tt.otProb, tt.loseProb)
			if got != tt.want {
				t.Errorf("predictedFinal(%d, %d, %v, %v) = %d, want %d",
					tt.current, tt.remaining, tt.otProb, tt.loseProb, got, tt.want)
			}
		})
	}
}

func TestDefenseThreatLevels(t *testing.T) {
	tests := []struct {
		gap  float64
		want string
	}{
		{0.3, "CRITICAL"},
		{0.8, "HIGH"},
		{1.5, "MEDIUM"},
		{4.0, "LOW"},
	}
	for _, tt := range tests {
		req := models.DefaultPositionRequest()
		req.GapToCarBehind = tt.gap
		d := defenseAnalysis(&req, 0.4)
		if d.ThreatLevel != tt.want {
			t.Errorf("gap %v: threat = %q, want %q", tt.gap, d.ThreatLevel, tt.want)
		}
		if d.Vulnerability < 0 || d.Vulnerability > 100 {
			t.Errorf("vulnerability %v outside [0,100]", d.Vulnerability)
		}
		if d.ThreatColor == "" || d.RecommendedAction == "" {
			t.Errorf("gap %v: threat color/action missing", tt.gap)
		}
	}
}

func TestAttackFactors(t *testing.T) {
	req := models.DefaultPositionRequest()
	req.TireAdvantage = 8
	req.RelativePace = -0.5
	req.GapToCarAhead = 0.6
	got := attackFactors(&req)
	want := []string{"tire_advantage", "pace_advantage", "drs"}
	if len(got) != len(want) {
		t.Fatalf("factors = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("factor %d = %q, want %q", i, got[i], want[i])
		}
	}

	calm := models.DefaultPositionRequest()
	if got := attackFactors(&calm); len(got) != 1 || got[0] != "gap_ahead" {
		t.Errorf("neutral state factors = %v, want [gap_ahead]", got)
	}
}
