package ml

import (
	"math/rand"
)

// Bounds is a closed numeric range for synthetic feature sampling. Callers
// derive context bounds from observed real ranges (min-5, max+5 for
// temperatures); the bounds are the contract, the in-range distribution is
// bounded uniform.
type Bounds struct {
	Min float64
	Max float64
}

// Domain knowledge constants, shared by the synthetic generators and the
// prediction heuristics.
const (
	tempThresholdHot    = 40.0
	tempThresholdCold   = 25.0
	rainCrossover       = 70.0
	wetCrossover        = 85.0
	shortStintThreshold = 15.0

	minWindowTireAge = 12
	maxWindowTireAge = 35
	optimalTireAge   = 20
	undercutGapFrac  = 0.15
	pitDeltaBase     = 22.0

	fuelEffectPerKg     = 0.03
	fuelBurnPerLap      = 1.8
	tireDegradationBase = 0.05
	basePaceSeconds     = 88.0
)

// compoundBaseStint maps compound -> typical stint length in laps.
var compoundBaseStint = map[string]float64{
	"SOFT": 12, "MEDIUM": 25, "HARD": 35, "INTERMEDIATE": 20, "WET": 15,
}

// compoundPaceOffset maps compound index -> lap-time offset in seconds.
var compoundPaceOffset = []float64{-0.3, 0.0, 0.4, 0.8, 1.5}

// stintByCompoundIdx is the pit-window stint table over SOFT/MEDIUM/HARD
// indices used by the optimal-pit-lap rule.
var stintByCompoundIdx = []float64{15, 25, 35}

type gen struct {
	rng *rand.Rand
	ctx map[string]Bounds
}

func newGen(seed int64, ctx map[string]Bounds) *gen {
	return &gen{rng: rand.New(rand.NewSource(seed)), ctx: ctx}
}

// uniform samples within the context bounds for key, falling back to the
// given defaults.
func (g *gen) uniform(key string, lo, hi float64) float64 {
	if b, ok := g.ctx[key]; ok {
		lo, hi = b.Min, b.Max
	}
	return lo + g.rng.Float64()*(hi-lo)
}

func (g *gen) intn(key string, lo, hi int) float64 {
	if b, ok := g.ctx[key]; ok {
		lo, hi = int(b.Min), int(b.Max)
	}
	if hi <= lo {
		return float64(lo)
	}
	return float64(lo + g.rng.Intn(hi-lo))
}

func (g *gen) flag(pTrue float64) float64 {
	if g.rng.Float64() < pTrue {
		return 1
	}
	return 0
}

// SyntheticTire produces rule-derived tire strategy examples. Labels follow
// the domain threshold tables: heavy rain forces WET/INTERMEDIATE, hot tracks
// favor HARD, short stints favor SOFT; stint length and degradation follow
// the compound base values adjusted for temperature and corner load.
func SyntheticTire(n int, ctx map[string]Bounds, seed int64) []Example {
	g := newGen(seed, ctx)
	out := make([]Example, 0, n)
	for i := 0; i < n; i++ {
		f := map[string]float64{
			"track_temperature":  g.uniform("track_temperature", 20, 50),
			"air_temperature":    g.uniform("air_temperature", 15, 40),
			"humidity":           g.uniform("humidity", 20, 90),
			"track_length":       g.uniform("track_length", 3.0, 7.0),
			"number_of_corners":  g.intn("number_of_corners", 10, 25),
			"high_speed_corners": g.intn("high_speed_corners", 2, 10),
			"low_speed_corners":  g.intn("low_speed_corners", 5, 15),
			"current_lap":        g.intn("current_lap", 1, 50),
			"total_laps":         g.intn("total_laps", 50, 70),
			"remaining_laps":     g.intn("remaining_laps", 1, 50),
			"current_position":   g.intn("current_position", 1, 20),
			"gap_to_leader":      g.uniform("gap_to_leader", 0, 60),
			"gap_to_car_ahead":   g.uniform("gap_to_car_ahead", 0, 10),
			"gap_to_car_behind":  g.uniform("gap_to_car_behind", 0, 10),
			"fuel_load":          g.uniform("fuel_load", 10, 110),
			"tire_age":           g.intn("tire_age", 0, 30),
			"rain_probability":   g.uniform("rain_probability", 0, 100),
			"track_evolution":    g.uniform("track_evolution", 0, 100),
			"safety_car":         g.flag(0.1),
			"vsc":                g.flag(0.05),
		}

		compound := g.syntheticCompound(f)
		stint := compoundBaseStint[compound] +
			float64(g.rng.Intn(11)-5) -
			(f["track_temperature"]-30)*0.2 -
			f["high_speed_corners"]*0.5
		stint = clamp(stint, 5, 50)

		degradation := tireDegradationBase +
			(f["track_temperature"]-30)*0.002 +
			f["high_speed_corners"]*0.003 +
			(g.rng.Float64()*0.02 - 0.01)
		degradation = clamp(degradation, 0.01, 0.15)

		out = append(out, Example{
			Features: f,
			Labels: map[string]float64{
				"optimal_stint_length": stint,
				"degradation_rate":     degradation,
			},
			Class:      compound,
			Source:     SourceSynthetic,
			Confidence: SyntheticConfidence,
		})
	}
	return out
}

// syntheticCompound applies the compound rule table, with positional variance
// for the default case so the classifier sees all dry compounds.
func (g *gen) syntheticCompound(f map[string]float64) string {
	switch {
	case f["rain_probability"] > wetCrossover:
		return "WET"
	case f["rain_probability"] > rainCrossover:
		return "INTERMEDIATE"
	case f["track_temperature"] > tempThresholdHot:
		if f["remaining_laps"] > 20 {
			return "HARD"
		}
		return "MEDIUM"
	case f["track_temperature"] < tempThresholdCold:
		return "SOFT"
	case f["remaining_laps"] < shortStintThreshold:
		return "SOFT"
	}
	switch pos := f["current_position"]; {
	case pos <= 3:
		if g.rng.Float64() > 0.3 {
			return "MEDIUM"
		}
		return "HARD"
	case pos >= 15:
		if g.rng.Float64() > 0.5 {
			return "SOFT"
		}
		return "MEDIUM"
	default:
		r := g.rng.Float64()
		if r < 0.3 {
			return "SOFT"
		}
		if r < 0.8 {
			return "MEDIUM"
		}
		return "HARD"
	}
}

// SyntheticPitStop produces rule-derived pit-window examples: the window is
// open for tire ages 12-35 with more than 10 laps left, and an undercut
// exists when the gap ahead is under 15% of the pit delta against older
// competitor tires.
func SyntheticPitStop(n int, ctx map[string]Bounds, seed int64) []Example {
	g := newGen(seed, ctx)
	out := make([]Example, 0, n)
	for i := 0; i < n; i++ {
		f := map[string]float64{
			"current_lap":             g.intn("current_lap", 1, 55),
			"total_laps":              g.intn("total_laps", 50, 70),
			"remaining_laps":          g.intn("remaining_laps", 1, 55),
			"tire_age":                g.intn("tire_age", 0, 35),
			"tire_compound_idx":       g.intn("tire_compound_idx", 0, 3),
			"current_position":        g.intn("current_position", 1, 20),
			"gap_to_car_ahead":        g.uniform("gap_to_car_ahead", 0, 12),
			"gap_to_car_behind":       g.uniform("gap_to_car_behind", 0, 12),
			"pit_delta":               g.uniform("pit_delta", 18, 26),
			"track_position_value":    g.uniform("track_position_value", 30, 80),
			"tire_degradation_rate":   g.uniform("tire_degradation_rate", 0.02, 0.12),
			"current_pace_delta":      g.uniform("current_pace_delta", -1.5, 1.5),
			"competitor_tire_age":     g.intn("competitor_tire_age", 0, 35),
			"competitor_compound_idx": g.intn("competitor_compound_idx", 0, 3),
			"fuel_adjusted_pace":      g.uniform("fuel_adjusted_pace", -0.9, 0.9),
			"traffic_density":         g.intn("traffic_density", 0, 15),
			"safety_car_probability":  g.uniform("safety_car_probability", 0, 30),
			"drs_available":           g.flag(0.7),
			"track_temperature":       g.uniform("track_temperature", 20, 50),
			"rain_probability":        g.uniform("rain_probability", 0, 100),
		}

		inWindow := 0.0
		if f["tire_age"] >= minWindowTireAge && f["tire_age"] <= maxWindowTireAge && f["remaining_laps"] > 10 {
			inWindow = 1
		}
		undercut := 0.0
		if f["gap_to_car_ahead"] < f["pit_delta"]*undercutGapFrac &&
			f["tire_age"] > f["competitor_tire_age"] && inWindow == 1 {
			undercut = 1
		}
		optimalLap := f["current_lap"] +
			stintByCompoundIdx[int(f["tire_compound_idx"])%3] -
			f["tire_age"] +
			float64(g.rng.Intn(7)-3)

		out = append(out, Example{
			Features: f,
			Labels: map[string]float64{
				"in_pit_window":        inWindow,
				"undercut_opportunity": undercut,
				"optimal_pit_lap":      optimalLap,
			},
			Source:     SourceSynthetic,
			Confidence: SyntheticConfidence,
		})
	}
	return out
}

// SyntheticRacePace produces rule-derived lap-time examples around an 88s
// base: compound offset, 0.03 s/kg fuel, 0.04 s per lap of tire age, 0.3 s
// per car of traffic and a mild temperature term.
func SyntheticRacePace(n int, ctx map[string]Bounds, seed int64) []Example {
	g := newGen(seed, ctx)
	out := make([]Example, 0, n)
	for i := 0; i < n; i++ {
		f := map[string]float64{
			"lap_number":         g.intn("lap_number", 1, 60),
			"fuel_load":          g.uniform("fuel_load", 5, 110),
			"tire_age":           g.intn("tire_age", 0, 35),
			"tire_compound_idx":  g.intn("tire_compound_idx", 0, 3),
			"track_temperature":  g.uniform("track_temperature", 20, 50),
			"air_temperature":    g.uniform("air_temperature", 15, 40),
			"track_evolution":    g.uniform("track_evolution", 0, 100),
			"traffic":            g.intn("traffic", 0, 5),
			"drs_enabled":        g.flag(0.7),
			"sector1_time":       g.uniform("sector1_time", 25, 35),
			"sector2_time":       g.uniform("sector2_time", 30, 40),
			"previous_lap_time":  g.uniform("previous_lap_time", 85, 95),
			"best_lap_time":      g.uniform("best_lap_time", 84, 88),
			"avg_lap_time":       g.uniform("avg_lap_time", 86, 92),
			"position":           g.intn("position", 1, 20),
			"wind_speed":         g.uniform("wind_speed", 0, 30),
			"humidity":           g.uniform("humidity", 20, 90),
			"safety_car_laps":    g.intn("safety_car_laps", 0, 10),
			"push_level":         g.uniform("push_level", 50, 100),
			"battery_deployment": g.uniform("battery_deployment", 30, 100),
		}

		lapTime := basePaceSeconds +
			compoundPaceOffset[int(f["tire_compound_idx"])%len(compoundPaceOffset)] +
			f["fuel_load"]*fuelEffectPerKg +
			f["tire_age"]*0.04 +
			f["traffic"]*0.3 +
			(f["track_temperature"]-30)*0.02 +
			(g.rng.Float64()*0.6 - 0.3)

		fuelEffect := fuelEffectPerKg + (g.rng.Float64()*0.008 - 0.004)
		paceTrend := f["tire_age"]*0.03 + (g.rng.Float64()*0.1 - 0.05)

		out = append(out, Example{
			Features: f,
			Labels: map[string]float64{
				"lap_time":    lapTime,
				"fuel_effect": fuelEffect,
				"pace_trend":  paceTrend,
			},
			Source:     SourceSynthetic,
			Confidence: SyntheticConfidence,
		})
	}
	return out
}

// SyntheticPosition produces rule-derived overtake/position-change examples:
// an overtake needs striking distance, a pace advantage, DRS and a track that
// permits passing; position loss needs a close pursuer and a pace deficit.
func SyntheticPosition(n int, ctx map[string]Bounds, seed int64) []Example {
	g := newGen(seed, ctx)
	out := make([]Example, 0, n)
	for i := 0; i < n; i++ {
		f := map[string]float64{
			"current_position":          g.intn("current_position", 1, 20),
			"lap_number":                g.intn("lap_number", 1, 60),
			"remaining_laps":            g.intn("remaining_laps", 1, 55),
			"gap_to_car_ahead":          g.uniform("gap_to_car_ahead", 0, 8),
			"gap_to_car_behind":         g.uniform("gap_to_car_behind", 0, 8),
			"relative_pace":             g.uniform("relative_pace", -1.5, 1.5),
			"tire_advantage":            g.intn("tire_advantage", -15, 16),
			"compound_advantage":        g.intn("compound_advantage", -1, 2),
			"drs_available":             g.flag(0.7),
			"battery_level":             g.uniform("battery_level", 30, 100),
			"straight_length":           g.uniform("straight_length", 500, 1500),
			"overtaking_difficulty":     g.uniform("overtaking_difficulty", 20, 90),
			"track_position_value":      g.uniform("track_position_value", 30, 80),
			"driver_aggression":         g.uniform("driver_aggression", 30, 90),
			"car_performance_delta":     g.uniform("car_performance_delta", -0.9, 0.9),
			"weather_stability":         g.uniform("weather_stability", 50, 100),
			"safety_car_probability":    g.uniform("safety_car_probability", 0, 30),
			"laps_since_pit":            g.intn("laps_since_pit", 0, 30),
			"competitor_laps_since_pit": g.intn("competitor_laps_since_pit", 0, 30),
			"points_position":           g.intn("points_position", 1, 20),
		}

		overtake := 0.0
		if f["gap_to_car_ahead"] < 1.0 && f["relative_pace"] < -0.2 &&
			f["drs_available"] == 1 && f["overtaking_difficulty"] < 70 {
			overtake = 1
		}
		// position change classes: 0 = lose, 1 = maintain, 2 = gain
		change := 1.0
		if overtake == 1 {
			change = 2
		} else if f["gap_to_car_behind"] < 0.5 && f["relative_pace"] > 0.3 {
			change = 0
		}

		out = append(out, Example{
			Features: f,
			Labels: map[string]float64{
				"overtake_success": overtake,
				"position_change":  change,
			},
			Source:     SourceSynthetic,
			Confidence: SyntheticConfidence,
		})
	}
	return out
}

// SyntheticFor dispatches to the domain's generator.
func SyntheticFor(domain string, n int, ctx map[string]Bounds, seed int64) ([]Example, error) {
	switch domain {
	case DomainTire:
		return SyntheticTire(n, ctx, seed), nil
	case DomainPitStop:
		return SyntheticPitStop(n, ctx, seed), nil
	case DomainRacePace:
		return SyntheticRacePace(n, ctx, seed), nil
	case DomainPosition:
		return SyntheticPosition(n, ctx, seed), nil
	}
	return nil, ErrUnknownModel
}
