package models

// Telemetry records mirror the external per-session feeds (laps, stints,
// weather, pit stops, interval gaps). They are ingested as-is and treated as
// immutable ground truth by the sample extractors.

// Lap is one completed lap for one driver.
type Lap struct {
	SessionKey   int64   `json:"session_key" validate:"required"`
	DriverNumber int     `json:"driver_number" validate:"required"`
	LapNumber    int     `json:"lap_number" validate:"required,min=1"`
	LapDuration  float64 `json:"lap_duration"`
	Sector1      float64 `json:"duration_sector_1"`
	Sector2      float64 `json:"duration_sector_2"`
	Sector3      float64 `json:"duration_sector_3"`
	TyreLife     int     `json:"tyre_life"`
	Position     int     `json:"position"`
	IsPitOutLap  bool    `json:"is_pit_out_lap"`
}

// Stint is a continuous run on one tire set.
type Stint struct {
	SessionKey     int64  `json:"session_key"`
	DriverNumber   int    `json:"driver_number"`
	StintNumber    int    `json:"stint_number"`
	LapStart       int    `json:"lap_start"`
	LapEnd         int    `json:"lap_end"`
	Compound       string `json:"compound"`
	TyreAgeAtStart int    `json:"tyre_age_at_start"`
}

// Length is the stint length in laps.
func (s Stint) Length() int {
	if s.LapEnd < s.LapStart {
		return 0
	}
	return s.LapEnd - s.LapStart + 1
}

// Covers reports whether a lap number falls inside the stint.
func (s Stint) Covers(lap int) bool {
	return lap >= s.LapStart && lap <= s.LapEnd
}

// WeatherSample is one weather observation during the session.
type WeatherSample struct {
	SessionKey       int64   `json:"session_key"`
	TrackTemperature float64 `json:"track_temperature"`
	AirTemperature   float64 `json:"air_temperature"`
	Humidity         float64 `json:"humidity"`
	WindSpeed        float64 `json:"wind_speed"`
	Rainfall         float64 `json:"rainfall"`
}

// PitStop is one completed pit stop.
type PitStop struct {
	SessionKey   int64   `json:"session_key"`
	DriverNumber int     `json:"driver_number"`
	LapNumber    int     `json:"lap_number"`
	PitDuration  float64 `json:"pit_duration"`
}

// Interval is the latest gap snapshot for one driver.
type Interval struct {
	SessionKey   int64   `json:"session_key"`
	DriverNumber int     `json:"driver_number"`
	GapToLeader  float64 `json:"gap_to_leader"`
	Interval     float64 `json:"interval"`
}

// SessionData bundles every telemetry feed of one session. This is both the
// ingest payload and the extractor input.
type SessionData struct {
	SessionKey int64           `json:"session_key" validate:"required"`
	Laps       []Lap           `json:"laps"`
	Stints     []Stint         `json:"stints"`
	Weather    []WeatherSample `json:"weather"`
	PitStops   []PitStop       `json:"pit_stops"`
	Intervals  []Interval      `json:"intervals"`
}

// StintFor finds the stint covering a driver's lap, or nil.
func (s *SessionData) StintFor(driver, lap int) *Stint {
	for i := range s.Stints {
		st := &s.Stints[i]
		if st.DriverNumber == driver && st.Covers(lap) {
			return st
		}
	}
	return nil
}

// LatestWeather returns the last weather sample, or a zero sample.
func (s *SessionData) LatestWeather() WeatherSample {
	if len(s.Weather) == 0 {
		return WeatherSample{}
	}
	return s.Weather[len(s.Weather)-1]
}

// TotalLaps is the highest lap number observed in the session.
func (s *SessionData) TotalLaps() int {
	total := 0
	for _, l := range s.Laps {
		if l.LapNumber > total {
			total = l.LapNumber
		}
	}
	return total
}

// SessionInfo is a row of the session catalog.
type SessionInfo struct {
	SessionKey int64  `json:"session_key"`
	Name       string `json:"name"`
	Circuit    string `json:"circuit"`
	LapCount   int    `json:"lap_count"`
}
