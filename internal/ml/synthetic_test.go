package ml

import (
	"math"
	"testing"
)

func TestSyntheticDeterministicForSeed(t *testing.T) {
	a := SyntheticTire(50, nil, 42)
	b := SyntheticTire(50, nil, 42)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Class != b[i].Class {
			t.Fatalf("example %d class differs: %s vs %s", i, a[i].Class, b[i].Class)
		}
		for k, v := range a[i].Features {
			if b[i].Features[k] != v {
				t.Fatalf("example %d feature %s differs", i, k)
			}
		}
	}
}

func TestSyntheticTireWeatherRules(t *testing.T) {
	for _, ex := range SyntheticTire(500, nil, 42) {
		rain := ex.Features["rain_probability"]
		switch {
		case rain > wetCrossover && ex.Class != "WET":
			t.Fatalf("rain %.1f labeled %s, want WET", rain, ex.Class)
		case rain > rainCrossover && rain <= wetCrossover && ex.Class != "INTERMEDIATE":
			t.Fatalf("rain %.1f labeled %s, want INTERMEDIATE", rain, ex.Class)
		}
		if ex.Source != SourceSynthetic || ex.Confidence != SyntheticConfidence {
			t.Fatalf("synthetic example carries source %q confidence %v", ex.Source, ex.Confidence)
		}
	}
}

func TestSyntheticTireLabelRanges(t *testing.T) {
	for _, ex := range SyntheticTire(300, nil, 42) {
		stint := ex.Labels["optimal_stint_length"]
		if stint < 5 || stint > 50 {
			t.Fatalf("stint length %v outside [5,50]", stint)
		}
		deg := ex.Labels["degradation_rate"]
		if deg < 0.01 || deg > 0.15 {
			t.Fatalf("degradation %v outside [0.01,0.15]", deg)
		}
	}
}

func TestSyntheticPitStopWindowRule(t *testing.T) {
	for _, ex := range SyntheticPitStop(500, nil, 42) {
		age := ex.Features["tire_age"]
		remaining := ex.Features["remaining_laps"]
		want := 0.0
		if age >= minWindowTireAge && age <= maxWindowTireAge && remaining > 10 {
			want = 1
		}
		if got := ex.Labels["in_pit_window"]; got != want {
			t.Fatalf("age %v remaining %v: in_pit_window = %v, want %v", age, remaining, got, want)
		}
		// An undercut can only exist inside the window.
		if ex.Labels["undercut_opportunity"] == 1 && ex.Labels["in_pit_window"] != 1 {
			t.Fatal("undercut labeled outside the pit window")
		}
	}
}

func TestSyntheticRacePaceFuelTerm(t *testing.T) {
	// The lap-time label must move with fuel: compare the rule directly.
	for _, ex := range SyntheticRacePace(200, nil, 42) {
		lapTime := ex.Labels["lap_time"]
		base := basePaceSeconds +
			compoundPaceOffset[int(ex.Features["tire_compound_idx"])%len(compoundPaceOffset)] +
			ex.Features["fuel_load"]*fuelEffectPerKg +
			ex.Features["tire_age"]*0.04 +
			ex.Features["traffic"]*0.3 +
			(ex.Features["track_temperature"]-30)*0.02
		if math.Abs(lapTime-base) > 0.31 {
			t.Fatalf("lap time %v deviates %v from rule, want <= 0.31 jitter", lapTime, lapTime-base)
		}
	}
}

func TestSyntheticPositionClasses(t *testing.T) {
	seen := map[float64]bool{}
	for _, ex := range SyntheticPosition(1000, nil, 42) {
		c := ex.Labels["position_change"]
		if c != 0 && c != 1 && c != 2 {
			t.Fatalf("position_change = %v, want 0/1/2", c)
		}
		seen[c] = true
		if ex.Labels["overtake_success"] == 1 && c != 2 {
			t.Fatal("overtake success must imply a gained position")
		}
	}
	if !seen[0] || !seen[1] || !seen[2] {
		t.Errorf("generator did not cover all change classes: %v", seen)
	}
}

func TestSyntheticContextBounds(t *testing.T) {
	ctx := map[string]Bounds{
		"track_temperature": {Min: 41, Max: 45},
	}
	for _, ex := range SyntheticTire(200, ctx, 42) {
		temp := ex.Features["track_temperature"]
		if temp < 41 || temp > 45 {
			t.Fatalf("track temperature %v outside context bounds [41,45]", temp)
		}
	}
}

func TestSyntheticForUnknownDomain(t *testing.T) {
	if _, err := SyntheticFor("nope", 10, nil, 42); err == nil {
		t.Fatal("expected error for unknown domain")
	}
}
