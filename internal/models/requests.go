package models

// Prediction request payloads. Every field is optional at inference time and
// carries a documented default; the Default* constructors pre-fill those
// defaults so JSON decoding only overrides what the caller supplied. The
// Features maps feed the fixed-order feature encoders.

func boolFlag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// TireStrategyRequest asks for a compound/stint recommendation.
type TireStrategyRequest struct {
	TrackTemperature  float64 `json:"track_temperature"`   // default 30
	AirTemperature    float64 `json:"air_temperature"`     // default 25
	Humidity          float64 `json:"humidity"`            // default 50
	TrackLength       float64 `json:"track_length"`        // default 5.0 km
	NumberOfCorners   int     `json:"number_of_corners"`   // default 15
	HighSpeedCorners  int     `json:"high_speed_corners"`  // default 5
	LowSpeedCorners   int     `json:"low_speed_corners"`   // default 10
	CurrentLap        int     `json:"current_lap"`         // default 1
	TotalLaps         int     `json:"total_laps"`          // default 50
	RemainingLaps     int     `json:"remaining_laps"`      // default 50
	CurrentPosition   int     `json:"current_position"`    // default 10
	GapToLeader       float64 `json:"gap_to_leader"`       // default 0
	GapToCarAhead     float64 `json:"gap_to_car_ahead"`    // default 0
	GapToCarBehind    float64 `json:"gap_to_car_behind"`   // default 0
	FuelLoad          float64 `json:"fuel_load"`           // default 100 kg
	TireAge           int     `json:"tire_age"`            // default 0
	RainProbability   float64 `json:"rain_probability"`    // default 0
	TrackEvolution    float64 `json:"track_evolution"`     // default 50
	SafetyCarDeployed bool    `json:"safety_car_deployed"` // default false
	VSCDeployed       bool    `json:"vsc_deployed"`        // default false
}

func DefaultTireStrategyRequest() TireStrategyRequest {
	return TireStrategyRequest{
		TrackTemperature: 30, AirTemperature: 25, Humidity: 50,
		TrackLength: 5.0, NumberOfCorners: 15, HighSpeedCorners: 5,
		LowSpeedCorners: 10, CurrentLap: 1, TotalLaps: 50, RemainingLaps: 50,
		CurrentPosition: 10, FuelLoad: 100, TrackEvolution: 50,
	}
}

func (r *TireStrategyRequest) Features() map[string]float64 {
	return map[string]float64{
		"track_temperature":  r.TrackTemperature,
		"air_temperature":    r.AirTemperature,
		"humidity":           r.Humidity,
		"track_length":       r.TrackLength,
		"number_of_corners":  float64(r.NumberOfCorners),
		"high_speed_corners": float64(r.HighSpeedCorners),
		"low_speed_corners":  float64(r.LowSpeedCorners),
		"current_lap":        float64(r.CurrentLap),
		"total_laps":         float64(r.TotalLaps),
		"remaining_laps":     float64(r.RemainingLaps),
		"current_position":   float64(r.CurrentPosition),
		"gap_to_leader":      r.GapToLeader,
		"gap_to_car_ahead":   r.GapToCarAhead,
		"gap_to_car_behind":  r.GapToCarBehind,
		"fuel_load":          r.FuelLoad,
		"tire_age":           float64(r.TireAge),
		"rain_probability":   r.RainProbability,
		"track_evolution":    r.TrackEvolution,
		"safety_car":         boolFlag(r.SafetyCarDeployed),
		"vsc":                boolFlag(r.VSCDeployed),
	}
}

// PitStopRequest asks for pit-window and undercut analysis.
type PitStopRequest struct {
	CurrentLap            int     `json:"current_lap"`             // default 1
	TotalLaps             int     `json:"total_laps"`              // default 50
	RemainingLaps         int     `json:"remaining_laps"`          // default 50
	TireAge               int     `json:"tire_age"`                // default 0
	TireCompoundIdx       int     `json:"tire_compound_idx"`       // default 1 (MEDIUM)
	CurrentPosition       int     `json:"current_position"`        // default 10
	GapToCarAhead         float64 `json:"gap_to_car_ahead"`        // default 2.0 s
	GapToCarBehind        float64 `json:"gap_to_car_behind"`       // default 2.0 s
	PitDelta              float64 `json:"pit_delta"`               // default 22.0 s
	TrackPositionValue    float64 `json:"track_position_value"`    // default 50
	TireDegradationRate   float64 `json:"tire_degradation_rate"`   // default 0.05 s/lap
	CurrentPaceDelta      float64 `json:"current_pace_delta"`      // default 0
	CompetitorTireAge     int     `json:"competitor_tire_age"`     // default 10
	CompetitorCompoundIdx int     `json:"competitor_compound_idx"` // default 1
	FuelAdjustedPace      float64 `json:"fuel_adjusted_pace"`      // default 0
	TrafficDensity        int     `json:"traffic_density"`         // default 5
	SafetyCarProbability  float64 `json:"safety_car_probability"`  // default 10
	DRSAvailable          int     `json:"drs_available"`           // default 1
	TrackTemperature      float64 `json:"track_temperature"`       // default 30
	RainProbability       float64 `json:"rain_probability"`        // default 0
	SafetyCarDeployed     bool    `json:"safety_car_deployed"`     // default false
}

func DefaultPitStopRequest() PitStopRequest {
	return PitStopRequest{
		CurrentLap: 1, TotalLaps: 50, RemainingLaps: 50,
		TireCompoundIdx: 1, CurrentPosition: 10,
		GapToCarAhead: 2.0, GapToCarBehind: 2.0, PitDelta: 22.0,
		TrackPositionValue: 50, TireDegradationRate: 0.05,
		CompetitorTireAge: 10, CompetitorCompoundIdx: 1,
		TrafficDensity: 5, SafetyCarProbability: 10, DRSAvailable: 1,
		TrackTemperature: 30,
	}
}

func (r *PitStopRequest) Features() map[string]float64 {
	return map[string]float64{
		"current_lap":             float64(r.CurrentLap),
		"total_laps":              float64(r.TotalLaps),
		"remaining_laps":          float64(r.RemainingLaps),
		"tire_age":                float64(r.TireAge),
		"tire_compound_idx":       float64(r.TireCompoundIdx),
		"current_position":        float64(r.CurrentPosition),
		"gap_to_car_ahead":        r.GapToCarAhead,
		"gap_to_car_behind":       r.GapToCarBehind,
		"pit_delta":               r.PitDelta,
		"track_position_value":    r.TrackPositionValue,
		"tire_degradation_rate":   r.TireDegradationRate,
		"current_pace_delta":      r.CurrentPaceDelta,
		"competitor_tire_age":     float64(r.CompetitorTireAge),
		"competitor_compound_idx": float64(r.CompetitorCompoundIdx),
		"fuel_adjusted_pace":      r.FuelAdjustedPace,
		"traffic_density":         float64(r.TrafficDensity),
		"safety_car_probability":  r.SafetyCarProbability,
		"drs_available":           float64(r.DRSAvailable),
		"track_temperature":       r.TrackTemperature,
		"rain_probability":        r.RainProbability,
	}
}

// RacePaceRequest asks for lap-time and trend analysis.
type RacePaceRequest struct {
	LapNumber         int     `json:"lap_number"`         // default 1
	FuelLoad          float64 `json:"fuel_load"`          // default 100 kg
	TireAge           int     `json:"tire_age"`           // default 0
	TireCompoundIdx   int     `json:"tire_compound_idx"`  // default 1
	TrackTemperature  float64 `json:"track_temperature"`  // default 30
	AirTemperature    float64 `json:"air_temperature"`    // default 25
	TrackEvolution    float64 `json:"track_evolution"`    // default 50
	Traffic           int     `json:"traffic"`            // default 0
	DRSEnabled        int     `json:"drs_enabled"`        // default 1
	Sector1Time       float64 `json:"sector1_time"`       // default 30
	Sector2Time       float64 `json:"sector2_time"`       // default 35
	PreviousLapTime   float64 `json:"previous_lap_time"`  // default 90
	BestLapTime       float64 `json:"best_lap_time"`      // default 88
	AvgLapTime        float64 `json:"avg_lap_time"`       // default 89
	Position          int     `json:"position"`           // default 10
	WindSpeed         float64 `json:"wind_speed"`         // default 10
	Humidity          float64 `json:"humidity"`           // default 50
	SafetyCarLaps     int     `json:"safety_car_laps"`    // default 0
	PushLevel         float64 `json:"push_level"`         // default 80
	BatteryDeployment float64 `json:"battery_deployment"` // default 50
}

func DefaultRacePaceRequest() RacePaceRequest {
	return RacePaceRequest{
		LapNumber: 1, FuelLoad: 100, TireCompoundIdx: 1,
		TrackTemperature: 30, AirTemperature: 25, TrackEvolution: 50,
		DRSEnabled: 1, Sector1Time: 30, Sector2Time: 35,
		PreviousLapTime: 90, BestLapTime: 88, AvgLapTime: 89,
		Position: 10, WindSpeed: 10, Humidity: 50,
		PushLevel: 80, BatteryDeployment: 50,
	}
}

func (r *RacePaceRequest) Features() map[string]float64 {
	return map[string]float64{
		"lap_number":         float64(r.LapNumber),
		"fuel_load":          r.FuelLoad,
		"tire_age":           float64(r.TireAge),
		"tire_compound_idx":  float64(r.TireCompoundIdx),
		"track_temperature":  r.TrackTemperature,
		"air_temperature":    r.AirTemperature,
		"track_evolution":    r.TrackEvolution,
		"traffic":            float64(r.Traffic),
		"drs_enabled":        float64(r.DRSEnabled),
		"sector1_time":       r.Sector1Time,
		"sector2_time":       r.Sector2Time,
		"previous_lap_time":  r.PreviousLapTime,
		"best_lap_time":      r.BestLapTime,
		"avg_lap_time":       r.AvgLapTime,
		"position":           float64(r.Position),
		"wind_speed":         r.WindSpeed,
		"humidity":           r.Humidity,
		"safety_car_laps":    float64(r.SafetyCarLaps),
		"push_level":         r.PushLevel,
		"battery_deployment": r.BatteryDeployment,
	}
}

// PositionRequest asks for overtake/defense analysis.
type PositionRequest struct {
	CurrentPosition        int     `json:"current_position"`          // default 10
	LapNumber              int     `json:"lap_number"`                // default 1
	RemainingLaps          int     `json:"remaining_laps"`            // default 50
	GapToCarAhead          float64 `json:"gap_to_car_ahead"`          // default 2.0 s
	GapToCarBehind         float64 `json:"gap_to_car_behind"`         // default 2.0 s
	RelativePace           float64 `json:"relative_pace"`             // default 0
	TireAdvantage          int     `json:"tire_advantage"`            // default 0 laps
	CompoundAdvantage      int     `json:"compound_advantage"`        // default 0
	DRSAvailable           int     `json:"drs_available"`             // default 1
	BatteryLevel           float64 `json:"battery_level"`             // default 80
	StraightLength         float64 `json:"straight_length"`           // default 1000 m
	OvertakingDifficulty   float64 `json:"overtaking_difficulty"`     // default 50
	TrackPositionValue     float64 `json:"track_position_value"`      // default 50
	DriverAggression       float64 `json:"driver_aggression"`         // default 50
	CarPerformanceDelta    float64 `json:"car_performance_delta"`     // default 0
	WeatherStability       float64 `json:"weather_stability"`         // default 100
	SafetyCarProbability   float64 `json:"safety_car_probability"`    // default 10
	LapsSincePit           int     `json:"laps_since_pit"`            // default 5
	CompetitorLapsSincePit int     `json:"competitor_laps_since_pit"` // default 5
	PointsPosition         int     `json:"points_position"`           // default 10
}

func DefaultPositionRequest() PositionRequest {
	return PositionRequest{
		CurrentPosition: 10, LapNumber: 1, RemainingLaps: 50,
		GapToCarAhead: 2.0, GapToCarBehind: 2.0, DRSAvailable: 1,
		BatteryLevel: 80, StraightLength: 1000, OvertakingDifficulty: 50,
		TrackPositionValue: 50, DriverAggression: 50, WeatherStability: 100,
		SafetyCarProbability: 10, LapsSincePit: 5, CompetitorLapsSincePit: 5,
		PointsPosition: 10,
	}
}

func (r *PositionRequest) Features() map[string]float64 {
	return map[string]float64{
		"current_position":          float64(r.CurrentPosition),
		"lap_number":                float64(r.LapNumber),
		"remaining_laps":            float64(r.RemainingLaps),
		"gap_to_car_ahead":          r.GapToCarAhead,
		"gap_to_car_behind":         r.GapToCarBehind,
		"relative_pace":             r.RelativePace,
		"tire_advantage":            float64(r.TireAdvantage),
		"compound_advantage":        float64(r.CompoundAdvantage),
		"drs_available":             float64(r.DRSAvailable),
		"battery_level":             r.BatteryLevel,
		"straight_length":           r.StraightLength,
		"overtaking_difficulty":     r.OvertakingDifficulty,
		"track_position_value":      r.TrackPositionValue,
		"driver_aggression":         r.DriverAggression,
		"car_performance_delta":     r.CarPerformanceDelta,
		"weather_stability":         r.WeatherStability,
		"safety_car_probability":    r.SafetyCarProbability,
		"laps_since_pit":            float64(r.LapsSincePit),
		"competitor_laps_since_pit": float64(r.CompetitorLapsSincePit),
		"points_position":           float64(r.PointsPosition),
	}
}

// TrainRequest configures one training invocation. Zero-valued weights mean
// "use the configured defaults" (0.7 real / 0.3 synthetic). With HybridMode
// off, training is synthetic-only and real telemetry is not consulted.
type TrainRequest struct {
	HybridMode          bool    `json:"hybrid_mode"`
	RealDataWeight      float64 `json:"real_data_weight"`
	SyntheticDataWeight float64 `json:"synthetic_data_weight"`
	SessionKeys         []int64 `json:"session_keys"`
}
