package ml

// Strategy domain names. These are the registry keys, the artifact file
// prefixes and the path segments of the training API.
const (
	DomainTire     = "tire_strategy"
	DomainPitStop  = "pit_stop"
	DomainRacePace = "race_pace"
	DomainPosition = "position"
)

// Domains lists the four strategy domains in their canonical order.
var Domains = []string{DomainTire, DomainPitStop, DomainRacePace, DomainPosition}

// DomainDescriptions are the human-readable summaries served by the model
// status endpoints.
var DomainDescriptions = map[string]string{
	DomainTire:     "Tire compound, stint length and degradation prediction",
	DomainPitStop:  "Pit window, undercut and optimal pit lap prediction",
	DomainRacePace: "Lap time, fuel effect and pace trend prediction",
	DomainPosition: "Overtake probability and position change prediction",
}

// TireCompounds in class-index order. Synthetic rules and the compound
// classifier both use these indices.
var TireCompounds = []string{"SOFT", "MEDIUM", "HARD", "INTERMEDIATE", "WET"}

// Feature schemas. Order is the feature-vector order and is stable across
// training and inference; a payload missing any key fails encoding.
var (
	TireSchema = []string{
		"track_temperature", "air_temperature", "humidity",
		"track_length", "number_of_corners", "high_speed_corners",
		"low_speed_corners", "current_lap", "total_laps", "remaining_laps",
		"current_position", "gap_to_leader", "gap_to_car_ahead",
		"gap_to_car_behind", "fuel_load", "tire_age", "rain_probability",
		"track_evolution", "safety_car", "vsc",
	}

	PitStopSchema = []string{
		"current_lap", "total_laps", "remaining_laps", "tire_age",
		"tire_compound_idx", "current_position", "gap_to_car_ahead",
		"gap_to_car_behind", "pit_delta", "track_position_value",
		"tire_degradation_rate", "current_pace_delta", "competitor_tire_age",
		"competitor_compound_idx", "fuel_adjusted_pace", "traffic_density",
		"safety_car_probability", "drs_available", "track_temperature",
		"rain_probability",
	}

	RacePaceSchema = []string{
		"lap_number", "fuel_load", "tire_age", "tire_compound_idx",
		"track_temperature", "air_temperature", "track_evolution",
		"traffic", "drs_enabled", "sector1_time", "sector2_time",
		"previous_lap_time", "best_lap_time", "avg_lap_time", "position",
		"wind_speed", "humidity", "safety_car_laps", "push_level",
		"battery_deployment",
	}

	PositionSchema = []string{
		"current_position", "lap_number", "remaining_laps",
		"gap_to_car_ahead", "gap_to_car_behind", "relative_pace",
		"tire_advantage", "compound_advantage", "drs_available",
		"battery_level", "straight_length", "overtaking_difficulty",
		"track_position_value", "driver_aggression", "car_performance_delta",
		"weather_stability", "safety_car_probability", "laps_since_pit",
		"competitor_laps_since_pit", "points_position",
	}
)

// SchemaFor returns the feature schema of a domain.
func SchemaFor(domain string) ([]string, error) {
	switch domain {
	case DomainTire:
		return TireSchema, nil
	case DomainPitStop:
		return PitStopSchema, nil
	case DomainRacePace:
		return RacePaceSchema, nil
	case DomainPosition:
		return PositionSchema, nil
	}
	return nil, ErrUnknownModel
}

// Encode maps a feature payload onto the schema's fixed order. Every key must
// be present; defaulting happens, if at all, before this point (typed request
// structs at the API boundary carry documented inference defaults).
func Encode(schema []string, features map[string]float64) ([]float64, error) {
	vec := make([]float64, len(schema))
	for i, key := range schema {
		v, ok := features[key]
		if !ok {
			return nil, &SchemaError{Field: key}
		}
		vec[i] = v
	}
	return vec, nil
}

// EncodeDataset encodes every example in a blended dataset. Training data is
// strict: one missing key anywhere fails the call.
func EncodeDataset(schema []string, ds *Dataset) ([][]float64, error) {
	rows := make([][]float64, len(ds.Examples))
	for i, ex := range ds.Examples {
		vec, err := Encode(schema, ex.Features)
		if err != nil {
			return nil, err
		}
		rows[i] = vec
	}
	return rows, nil
}

func compoundIndex(compound string) int {
	for i, c := range TireCompounds {
		if c == compound {
			return i
		}
	}
	return 1 // MEDIUM
}
