package ml

import (
	"testing"

	"github.com/pitwall/strategy-api/internal/models"
)

// testSession builds one driver's two-stint race with clean lap times.
func testSession() *models.SessionData {
	s := &models.SessionData{SessionKey: 9001}
	s.Weather = []models.WeatherSample{{
		SessionKey: 9001, TrackTemperature: 35, AirTemperature: 27, Humidity: 55,
	}}
	s.Stints = []models.Stint{
		{SessionKey: 9001, DriverNumber: 44, StintNumber: 1, LapStart: 1, LapEnd: 20, Compound: "MEDIUM"},
		{SessionKey: 9001, DriverNumber: 44, StintNumber: 2, LapStart: 21, LapEnd: 50, Compound: "HARD"},
	}
	for l := 1; l <= 50; l++ {
		life := l - 1
		if l > 20 {
			life = l - 21
		}
		s.Laps = append(s.Laps, models.Lap{
			SessionKey:   9001,
			DriverNumber: 44,
			LapNumber:    l,
			LapDuration:  90 + float64(life)*0.06,
			Sector1:      29, Sector2: 33, Sector3: 28,
			TyreLife:    life,
			Position:    3,
			IsPitOutLap: l == 21,
		})
	}
	s.PitStops = []models.PitStop{{SessionKey: 9001, DriverNumber: 44, LapNumber: 20, PitDuration: 23.5}}
	s.Intervals = []models.Interval{{SessionKey: 9001, DriverNumber: 44, GapToLeader: 5.2, Interval: 1.8}}
	return s
}

func TestExtractTire(t *testing.T) {
	out := ExtractTire(testSession())
	if len(out) != 2 {
		t.Fatalf("got %d examples, want 2 (one per stint)", len(out))
	}
	first := out[0]
	if first.Class != "MEDIUM" {
		t.Errorf("first stint class = %s, want MEDIUM", first.Class)
	}
	if first.Labels["optimal_stint_length"] != 20 {
		t.Errorf("stint length = %v, want 20", first.Labels["optimal_stint_length"])
	}
	deg := first.Labels["degradation_rate"]
	if deg < 0.01 || deg > 0.15 {
		t.Errorf("degradation %v outside clip range", deg)
	}
	// The fitted slope should land near the constructed 0.06 s/lap.
	if deg < 0.04 || deg > 0.08 {
		t.Errorf("degradation %v far from constructed 0.06", deg)
	}
	if first.Source != SourceReal || first.Confidence != 1 {
		t.Errorf("real example carries source %q confidence %v", first.Source, first.Confidence)
	}
	if _, err := Encode(TireSchema, first.Features); err != nil {
		t.Errorf("extracted features do not satisfy the schema: %v", err)
	}
}

func TestExtractTireSkipsShortStints(t *testing.T) {
	s := testSession()
	s.Stints = append(s.Stints, models.Stint{
		SessionKey: 9001, DriverNumber: 44, StintNumber: 3, LapStart: 51, LapEnd: 52, Compound: "SOFT",
	})
	if got := len(ExtractTire(s)); got != 2 {
		t.Errorf("got %d examples, want 2 (short stint skipped)", got)
	}
}

func TestExtractPitStop(t *testing.T) {
	out := ExtractPitStop(testSession())
	if len(out) != 1 {
		t.Fatalf("got %d examples, want 1", len(out))
	}
	ex := out[0]
	if ex.Labels["optimal_pit_lap"] != 20 {
		t.Errorf("optimal pit lap = %v, want 20", ex.Labels["optimal_pit_lap"])
	}
	if ex.Labels["in_pit_window"] != 1 {
		t.Error("observed stop not labeled in-window")
	}
	if _, err := Encode(PitStopSchema, ex.Features); err != nil {
		t.Errorf("extracted features do not satisfy the schema: %v", err)
	}
}

func TestExtractPitStopOrphanStop(t *testing.T) {
	s := testSession()
	// A stop with no covering stint must be skipped, not guessed at.
	s.PitStops = []models.PitStop{{SessionKey: 9001, DriverNumber: 99, LapNumber: 10}}
	if got := len(ExtractPitStop(s)); got != 0 {
		t.Errorf("got %d examples, want 0", got)
	}
}

func TestExtractRacePace(t *testing.T) {
	out := ExtractRacePace(testSession())
	if len(out) == 0 {
		t.Fatal("no pace examples extracted")
	}
	// 50 laps, one pit-out lap skipped.
	if len(out) != 49 {
		t.Errorf("got %d examples, want 49", len(out))
	}
	for _, ex := range out {
		if ex.Labels["lap_time"] < 89 || ex.Labels["lap_time"] > 95 {
			t.Fatalf("lap time label %v outside constructed range", ex.Labels["lap_time"])
		}
		if _, err := Encode(RacePaceSchema, ex.Features); err != nil {
			t.Fatalf("extracted features do not satisfy the schema: %v", err)
		}
	}
}

func TestExtractRacePaceSkipsZeroDurations(t *testing.T) {
	s := testSession()
	s.Laps[5].LapDuration = 0
	before := len(ExtractRacePace(testSession()))
	after := len(ExtractRacePace(s))
	if after != before-1 {
		t.Errorf("zero-duration lap not skipped: %d -> %d", before, after)
	}
}

func TestExtractPosition(t *testing.T) {
	out := ExtractPosition(testSession())
	if len(out) == 0 {
		t.Fatal("no position examples extracted")
	}
	for _, ex := range out {
		// Constant position all race: every label must be maintain.
		if ex.Labels["position_change"] != 1 {
			t.Fatalf("position_change = %v, want 1 for a static race", ex.Labels["position_change"])
		}
		if _, err := Encode(PositionSchema, ex.Features); err != nil {
			t.Fatalf("extracted features do not satisfy the schema: %v", err)
		}
	}
}

func TestExtractForUnknownDomain(t *testing.T) {
	if _, err := ExtractFor("nope", nil); err == nil {
		t.Fatal("expected error for unknown domain")
	}
}
