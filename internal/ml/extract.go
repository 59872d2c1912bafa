package ml

import (
	"math"
	"sort"

	"github.com/sajari/regression"

	"github.com/pitwall/strategy-api/internal/models"
)

// Real sample extraction. Each extractor walks one session's telemetry and
// emits fully-labeled training examples with Source=real and confidence 1.
// Records that cannot be labeled (missing stint, zero lap times, stints too
// short to fit a slope) are skipped, never guessed at.

// estimatedFuel approximates remaining fuel from the lap number assuming a
// full 110 kg start and a constant burn rate.
func estimatedFuel(lap int) float64 {
	return math.Max(5, 110-float64(lap)*fuelBurnPerLap)
}

// degradationSlope fits lap time against tire age for one stint and returns
// the per-lap degradation in seconds, clipped to the physical range. Needs at
// least four clean laps; returns the base rate otherwise.
func degradationSlope(laps []models.Lap) float64 {
	r := new(regression.Regression)
	r.SetObserved("lap_time")
	r.SetVar(0, "tyre_life")
	n := 0
	for _, l := range laps {
		if l.LapDuration <= 0 || l.IsPitOutLap {
			continue
		}
		r.Train(regression.DataPoint(l.LapDuration, []float64{float64(l.TyreLife)}))
		n++
	}
	if n < 4 {
		return tireDegradationBase
	}
	if err := r.Run(); err != nil {
		return tireDegradationBase
	}
	return clamp(r.Coeff(1), 0.01, 0.15)
}

// stintLaps collects the clean laps of one driver's stint in lap order.
func stintLaps(s *models.SessionData, st *models.Stint) []models.Lap {
	var out []models.Lap
	for _, l := range s.Laps {
		if l.DriverNumber == st.DriverNumber && st.Covers(l.LapNumber) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LapNumber < out[j].LapNumber })
	return out
}

// ExtractTire emits one example per observed stint: the compound the team
// actually ran is the class label, the stint length and the fitted
// degradation slope are the regression labels.
func ExtractTire(s *models.SessionData) []Example {
	w := s.LatestWeather()
	total := s.TotalLaps()
	var out []Example
	for i := range s.Stints {
		st := &s.Stints[i]
		if st.Compound == "" || st.Length() < 3 {
			continue
		}
		laps := stintLaps(s, st)
		if len(laps) == 0 {
			continue
		}
		first := laps[0]
		rain := 0.0
		if w.Rainfall > 0 {
			rain = 90
		}
		f := map[string]float64{
			"track_temperature":  w.TrackTemperature,
			"air_temperature":    w.AirTemperature,
			"humidity":           w.Humidity,
			"track_length":       5.0,
			"number_of_corners":  15,
			"high_speed_corners": 5,
			"low_speed_corners":  10,
			"current_lap":        float64(st.LapStart),
			"total_laps":         float64(total),
			"remaining_laps":     float64(total - st.LapStart),
			"current_position":   float64(first.Position),
			"gap_to_leader":      gapToLeader(s, st.DriverNumber),
			"gap_to_car_ahead":   intervalAhead(s, st.DriverNumber),
			"gap_to_car_behind":  intervalBehind(s, st.DriverNumber),
			"fuel_load":          estimatedFuel(st.LapStart),
			"tire_age":           float64(st.TyreAgeAtStart),
			"rain_probability":   rain,
			"track_evolution":    50,
			"safety_car":         0,
			"vsc":                0,
		}
		out = append(out, Example{
			Features: f,
			Labels: map[string]float64{
				"optimal_stint_length": float64(st.Length()),
				"degradation_rate":     degradationSlope(laps),
			},
			Class:      st.Compound,
			Source:     SourceReal,
			Confidence: 1,
		})
	}
	return out
}

// ExtractPitStop emits one example per observed pit stop, labeled with the
// lap the team actually stopped on. The window label is observational: a real
// stop is, by definition, inside the team's window.
func ExtractPitStop(s *models.SessionData) []Example {
	w := s.LatestWeather()
	total := s.TotalLaps()
	var out []Example
	for _, ps := range s.PitStops {
		st := s.StintFor(ps.DriverNumber, ps.LapNumber)
		if st == nil {
			continue
		}
		tireAge := st.TyreAgeAtStart + (ps.LapNumber - st.LapStart)
		gapAhead := intervalAhead(s, ps.DriverNumber)
		rain := 0.0
		if w.Rainfall > 0 {
			rain = 90
		}
		undercut := 0.0
		if gapAhead > 0 && gapAhead < pitDeltaBase*undercutGapFrac {
			undercut = 1
		}
		f := map[string]float64{
			"current_lap":             float64(ps.LapNumber),
			"total_laps":              float64(total),
			"remaining_laps":          float64(total - ps.LapNumber),
			"tire_age":                float64(tireAge),
			"tire_compound_idx":       float64(compoundIndex(st.Compound)),
			"current_position":        positionAt(s, ps.DriverNumber, ps.LapNumber),
			"gap_to_car_ahead":        gapAhead,
			"gap_to_car_behind":       intervalBehind(s, ps.DriverNumber),
			"pit_delta":               pitDeltaBase,
			"track_position_value":    50,
			"tire_degradation_rate":   tireDegradationBase,
			"current_pace_delta":      0,
			"competitor_tire_age":     float64(tireAge),
			"competitor_compound_idx": float64(compoundIndex(st.Compound)),
			"fuel_adjusted_pace":      0,
			"traffic_density":         5,
			"safety_car_probability":  10,
			"drs_available":           1,
			"track_temperature":       w.TrackTemperature,
			"rain_probability":        rain,
		}
		out = append(out, Example{
			Features: f,
			Labels: map[string]float64{
				"in_pit_window":        1,
				"undercut_opportunity": undercut,
				"optimal_pit_lap":      float64(ps.LapNumber),
			},
			Source:     SourceReal,
			Confidence: 1,
		})
	}
	return out
}

// ExtractRacePace emits one example per clean lap, labeled with the observed
// lap time and the fitted per-stint degradation as the pace trend.
func ExtractRacePace(s *models.SessionData) []Example {
	w := s.LatestWeather()
	var out []Example
	byDriver := lapsByDriver(s)
	for driver, laps := range byDriver {
		best, avg := lapStats(laps)
		if best == 0 {
			continue
		}
		prev := 0.0
		for _, l := range laps {
			if l.LapDuration <= 0 || l.IsPitOutLap {
				prev = l.LapDuration
				continue
			}
			st := s.StintFor(driver, l.LapNumber)
			if st == nil {
				prev = l.LapDuration
				continue
			}
			prevTime := prev
			if prevTime <= 0 {
				prevTime = l.LapDuration
			}
			f := map[string]float64{
				"lap_number":         float64(l.LapNumber),
				"fuel_load":          estimatedFuel(l.LapNumber),
				"tire_age":           float64(l.TyreLife),
				"tire_compound_idx":  float64(compoundIndex(st.Compound)),
				"track_temperature":  w.TrackTemperature,
				"air_temperature":    w.AirTemperature,
				"track_evolution":    clamp(float64(l.LapNumber)*2, 0, 100),
				"traffic":            0,
				"drs_enabled":        1,
				"sector1_time":       l.Sector1,
				"sector2_time":       l.Sector2,
				"previous_lap_time":  prevTime,
				"best_lap_time":      best,
				"avg_lap_time":       avg,
				"position":           float64(l.Position),
				"wind_speed":         w.WindSpeed,
				"humidity":           w.Humidity,
				"safety_car_laps":    0,
				"push_level":         80,
				"battery_deployment": 50,
			}
			out = append(out, Example{
				Features: f,
				Labels: map[string]float64{
					"lap_time":    l.LapDuration,
					"fuel_effect": fuelEffectPerKg,
					"pace_trend":  float64(l.TyreLife) * 0.03,
				},
				Source:     SourceReal,
				Confidence: 1,
			})
			prev = l.LapDuration
		}
	}
	return out
}

// ExtractPosition emits one example per driver per sampled lap, labeled with
// whether the driver gained, held or lost position over the following five
// laps.
func ExtractPosition(s *models.SessionData) []Example {
	total := s.TotalLaps()
	var out []Example
	byDriver := lapsByDriver(s)
	for driver, laps := range byDriver {
		for _, l := range laps {
			if l.Position == 0 || l.LapNumber+5 > total {
				continue
			}
			future := positionAt(s, driver, l.LapNumber+5)
			if future == 0 {
				continue
			}
			st := s.StintFor(driver, l.LapNumber)
			tireAge := 0
			if st != nil {
				tireAge = st.TyreAgeAtStart + (l.LapNumber - st.LapStart)
			}
			change := 1.0
			if int(future) < l.Position {
				change = 2
			} else if int(future) > l.Position {
				change = 0
			}
			overtake := 0.0
			if change == 2 {
				overtake = 1
			}
			f := map[string]float64{
				"current_position":          float64(l.Position),
				"lap_number":                float64(l.LapNumber),
				"remaining_laps":            float64(total - l.LapNumber),
				"gap_to_car_ahead":          intervalAhead(s, driver),
				"gap_to_car_behind":         intervalBehind(s, driver),
				"relative_pace":             0,
				"tire_advantage":            0,
				"compound_advantage":        0,
				"drs_available":             1,
				"battery_level":             80,
				"straight_length":           1000,
				"overtaking_difficulty":     50,
				"track_position_value":      50,
				"driver_aggression":         50,
				"car_performance_delta":     0,
				"weather_stability":         100,
				"safety_car_probability":    10,
				"laps_since_pit":            float64(tireAge),
				"competitor_laps_since_pit": float64(tireAge),
				"points_position":           float64(l.Position),
			}
			out = append(out, Example{
				Features: f,
				Labels: map[string]float64{
					"overtake_success": overtake,
					"position_change":  change,
				},
				Source:     SourceReal,
				Confidence: 1,
			})
		}
	}
	return out
}

// ExtractFor dispatches to the domain's extractor over a set of sessions.
func ExtractFor(domain string, sessions []*models.SessionData) ([]Example, error) {
	var fn func(*models.SessionData) []Example
	switch domain {
	case DomainTire:
		fn = ExtractTire
	case DomainPitStop:
		fn = ExtractPitStop
	case DomainRacePace:
		fn = ExtractRacePace
	case DomainPosition:
		fn = ExtractPosition
	default:
		return nil, ErrUnknownModel
	}
	var out []Example
	for _, s := range sessions {
		out = append(out, fn(s)...)
	}
	return out, nil
}

func lapsByDriver(s *models.SessionData) map[int][]models.Lap {
	by := make(map[int][]models.Lap)
	for _, l := range s.Laps {
		by[l.DriverNumber] = append(by[l.DriverNumber], l)
	}
	for d := range by {
		laps := by[d]
		sort.Slice(laps, func(i, j int) bool { return laps[i].LapNumber < laps[j].LapNumber })
		by[d] = laps
	}
	return by
}

func lapStats(laps []models.Lap) (best, avg float64) {
	sum, n := 0.0, 0
	for _, l := range laps {
		if l.LapDuration <= 0 || l.IsPitOutLap {
			continue
		}
		if best == 0 || l.LapDuration < best {
			best = l.LapDuration
		}
		sum += l.LapDuration
		n++
	}
	if n > 0 {
		avg = sum / float64(n)
	}
	return best, avg
}

func positionAt(s *models.SessionData, driver, lap int) float64 {
	for _, l := range s.Laps {
		if l.DriverNumber == driver && l.LapNumber == lap {
			return float64(l.Position)
		}
	}
	return 0
}

func gapToLeader(s *models.SessionData, driver int) float64 {
	for _, iv := range s.Intervals {
		if iv.DriverNumber == driver {
			return iv.GapToLeader
		}
	}
	return 0
}

// intervalAhead returns the latest gap to the car ahead for a driver, or a
// neutral 2s when no interval data exists.
func intervalAhead(s *models.SessionData, driver int) float64 {
	for _, iv := range s.Intervals {
		if iv.DriverNumber == driver {
			return iv.Interval
		}
	}
	return 2.0
}

// intervalBehind approximates the gap behind from the pursuer's own interval.
func intervalBehind(s *models.SessionData, driver int) float64 {
	pos := 0.0
	for _, l := range s.Laps {
		if l.DriverNumber == driver && float64(l.Position) > 0 {
			pos = float64(l.Position)
		}
	}
	if pos == 0 {
		return 2.0
	}
	for _, iv := range s.Intervals {
		if iv.DriverNumber == driver {
			continue
		}
		if p := lastPosition(s, iv.DriverNumber); p == pos+1 {
			return iv.Interval
		}
	}
	return 2.0
}

func lastPosition(s *models.SessionData, driver int) float64 {
	pos := 0.0
	for _, l := range s.Laps {
		if l.DriverNumber == driver {
			pos = float64(l.Position)
		}
	}
	return pos
}
