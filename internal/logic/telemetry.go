package logic

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/pitwall/strategy-api/internal/ml"
	"github.com/pitwall/strategy-api/internal/models"
)

// TelemetryService reads and writes the per-session telemetry feeds in
// ClickHouse and keeps the session catalog in PostgreSQL. Lap rows go through
// the ingest worker pool; the lower-volume feeds are inserted in one batch
// per ingest call.
type TelemetryService struct {
	ch     driver.Conn
	pg     PgPool
	logger *zap.SugaredLogger
}

func NewTelemetryService(ch driver.Conn, pg PgPool, logger *zap.SugaredLogger) *TelemetryService {
	return &TelemetryService{ch: ch, pg: pg, logger: logger}
}

// StoreSessionFeeds batch-inserts the non-lap feeds of one session and
// upserts the session catalog row. Lap rows are the caller's business (they
// flow through the worker pool).
func (s *TelemetryService) StoreSessionFeeds(ctx context.Context, data *models.SessionData) error {
	if err := s.insertStints(ctx, data); err != nil {
		return fmt.Errorf("insert stints: %w", err)
	}
	if err := s.insertWeather(ctx, data); err != nil {
		return fmt.Errorf("insert weather: %w", err)
	}
	if err := s.insertPitStops(ctx, data); err != nil {
		return fmt.Errorf("insert pit stops: %w", err)
	}
	if err := s.insertIntervals(ctx, data); err != nil {
		return fmt.Errorf("insert intervals: %w", err)
	}

	_, err := s.pg.Exec(ctx, `
		INSERT INTO sessions (session_key, lap_count, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (session_key)
		DO UPDATE SET lap_count = GREATEST(sessions.lap_count, EXCLUDED.lap_count), updated_at = NOW()
	`, data.SessionKey, data.TotalLaps())
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *TelemetryService) insertStints(ctx context.Context, data *models.SessionData) error {
	if len(data.Stints) == 0 {
		return nil
	}
	batch, err := s.ch.PrepareBatch(ctx, `
		INSERT INTO f1_telemetry.stints
		(session_key, driver_number, stint_number, lap_start, lap_end, compound, tyre_age_at_start)
	`)
	if err != nil {
		return err
	}
	for _, st := range data.Stints {
		if err := batch.Append(st.SessionKey, st.DriverNumber, st.StintNumber,
			st.LapStart, st.LapEnd, st.Compound, st.TyreAgeAtStart); err != nil {
			return err
		}
	}
	return batch.Send()
}

func (s *TelemetryService) insertWeather(ctx context.Context, data *models.SessionData) error {
	if len(data.Weather) == 0 {
		return nil
	}
	batch, err := s.ch.PrepareBatch(ctx, `
		INSERT INTO f1_telemetry.weather
		(session_key, track_temperature, air_temperature, humidity, wind_speed, rainfall)
	`)
	if err != nil {
		return err
	}
	for _, w := range data.Weather {
		if err := batch.Append(w.SessionKey, w.TrackTemperature, w.AirTemperature,
			w.Humidity, w.WindSpeed, w.Rainfall); err != nil {
			return err
		}
	}
	return batch.Send()
}

func (s *TelemetryService) insertPitStops(ctx context.Context, data *models.SessionData) error {
	if len(data.PitStops) == 0 {
		return nil
	}
	batch, err := s.ch.PrepareBatch(ctx, `
		INSERT INTO f1_telemetry.pit_stops
		(session_key, driver_number, lap_number, pit_duration)
	`)
	if err != nil {
		return err
	}
	for _, ps := range data.PitStops {
		if err := batch.Append(ps.SessionKey, ps.DriverNumber, ps.LapNumber, ps.PitDuration); err != nil {
			return err
		}
	}
	return batch.Send()
}

func (s *TelemetryService) insertIntervals(ctx context.Context, data *models.SessionData) error {
	if len(data.Intervals) == 0 {
		return nil
	}
	batch, err := s.ch.PrepareBatch(ctx, `
		INSERT INTO f1_telemetry.intervals
		(session_key, driver_number, gap_to_leader, interval)
	`)
	if err != nil {
		return err
	}
	for _, iv := range data.Intervals {
		if err := batch.Append(iv.SessionKey, iv.DriverNumber, iv.GapToLeader, iv.Interval); err != nil {
			return err
		}
	}
	return batch.Send()
}

// LoadSessions reads back the full telemetry of the given sessions. An empty
// key list loads every known session.
func (s *TelemetryService) LoadSessions(ctx context.Context, keys []int64) ([]*models.SessionData, error) {
	if len(keys) == 0 {
		var err error
		keys, err = s.sessionKeys(ctx)
		if err != nil {
			return nil, err
		}
	}
	out := make([]*models.SessionData, 0, len(keys))
	for _, key := range keys {
		data, err := s.loadSession(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("load session %d: %w", key, err)
		}
		if len(data.Laps) == 0 && len(data.Stints) == 0 {
			continue
		}
		out = append(out, data)
	}
	return out, nil
}

func (s *TelemetryService) sessionKeys(ctx context.Context) ([]int64, error) {
	rows, err := s.ch.Query(ctx, `
		SELECT DISTINCT session_key FROM f1_telemetry.laps ORDER BY session_key
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []int64
	for rows.Next() {
		var k int64
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *TelemetryService) loadSession(ctx context.Context, key int64) (*models.SessionData, error) {
	data := &models.SessionData{SessionKey: key}

	rows, err := s.ch.Query(ctx, `
		SELECT driver_number, lap_number, lap_duration,
		       duration_sector_1, duration_sector_2, duration_sector_3,
		       tyre_life, position, is_pit_out_lap
		FROM f1_telemetry.laps
		WHERE session_key = ?
		ORDER BY driver_number, lap_number
	`, key)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		l := models.Lap{SessionKey: key}
		if err := rows.Scan(&l.DriverNumber, &l.LapNumber, &l.LapDuration,
			&l.Sector1, &l.Sector2, &l.Sector3,
			&l.TyreLife, &l.Position, &l.IsPitOutLap); err != nil {
			rows.Close()
			return nil, err
		}
		data.Laps = append(data.Laps, l)
	}
	rows.Close()

	rows, err = s.ch.Query(ctx, `
		SELECT driver_number, stint_number, lap_start, lap_end, compound, tyre_age_at_start
		FROM f1_telemetry.stints
		WHERE session_key = ?
		ORDER BY driver_number, stint_number
	`, key)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		st := models.Stint{SessionKey: key}
		if err := rows.Scan(&st.DriverNumber, &st.StintNumber, &st.LapStart,
			&st.LapEnd, &st.Compound, &st.TyreAgeAtStart); err != nil {
			rows.Close()
			return nil, err
		}
		data.Stints = append(data.Stints, st)
	}
	rows.Close()

	rows, err = s.ch.Query(ctx, `
		SELECT track_temperature, air_temperature, humidity, wind_speed, rainfall
		FROM f1_telemetry.weather
		WHERE session_key = ?
	`, key)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		w := models.WeatherSample{SessionKey: key}
		if err := rows.Scan(&w.TrackTemperature, &w.AirTemperature,
			&w.Humidity, &w.WindSpeed, &w.Rainfall); err != nil {
			rows.Close()
			return nil, err
		}
		data.Weather = append(data.Weather, w)
	}
	rows.Close()

	rows, err = s.ch.Query(ctx, `
		SELECT driver_number, lap_number, pit_duration
		FROM f1_telemetry.pit_stops
		WHERE session_key = ?
	`, key)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		ps := models.PitStop{SessionKey: key}
		if err := rows.Scan(&ps.DriverNumber, &ps.LapNumber, &ps.PitDuration); err != nil {
			rows.Close()
			return nil, err
		}
		data.PitStops = append(data.PitStops, ps)
	}
	rows.Close()

	rows, err = s.ch.Query(ctx, `
		SELECT driver_number, gap_to_leader, interval
		FROM f1_telemetry.intervals
		WHERE session_key = ?
	`, key)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		iv := models.Interval{SessionKey: key}
		if err := rows.Scan(&iv.DriverNumber, &iv.GapToLeader, &iv.Interval); err != nil {
			rows.Close()
			return nil, err
		}
		data.Intervals = append(data.Intervals, iv)
	}
	rows.Close()

	return data, nil
}

// ListSessions returns the session catalog from PostgreSQL.
func (s *TelemetryService) ListSessions(ctx context.Context) ([]models.SessionInfo, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT session_key, COALESCE(name, ''), COALESCE(circuit, ''), lap_count
		FROM sessions
		ORDER BY session_key DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()
	var out []models.SessionInfo
	for rows.Next() {
		var info models.SessionInfo
		if err := rows.Scan(&info.SessionKey, &info.Name, &info.Circuit, &info.LapCount); err != nil {
			continue
		}
		out = append(out, info)
	}
	return out, nil
}

// SyntheticBounds derives synthetic sampling bounds from the observed
// temperature ranges across the loaded sessions so generated data matches
// the conditions actually seen on track.
func SyntheticBounds(sessions []*models.SessionData) map[string]ml.Bounds {
	var minTrack, maxTrack, minAir, maxAir float64
	seen := false
	for _, s := range sessions {
		for _, w := range s.Weather {
			if !seen {
				minTrack, maxTrack = w.TrackTemperature, w.TrackTemperature
				minAir, maxAir = w.AirTemperature, w.AirTemperature
				seen = true
				continue
			}
			if w.TrackTemperature < minTrack {
				minTrack = w.TrackTemperature
			}
			if w.TrackTemperature > maxTrack {
				maxTrack = w.TrackTemperature
			}
			if w.AirTemperature < minAir {
				minAir = w.AirTemperature
			}
			if w.AirTemperature > maxAir {
				maxAir = w.AirTemperature
			}
		}
	}
	if !seen {
		return nil
	}
	return map[string]ml.Bounds{
		"track_temperature": {Min: minTrack - 5, Max: maxTrack + 5},
		"air_temperature":   {Min: minAir - 5, Max: maxAir + 5},
	}
}
