package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
)

// Seeds the API with one synthetic race session so training has real-shaped
// telemetry to pull from without a live timing feed.

type lap struct {
	SessionKey   int64   `json:"session_key"`
	DriverNumber int     `json:"driver_number"`
	LapNumber    int     `json:"lap_number"`
	LapDuration  float64 `json:"lap_duration"`
	Sector1      float64 `json:"duration_sector_1"`
	Sector2      float64 `json:"duration_sector_2"`
	Sector3      float64 `json:"duration_sector_3"`
	TyreLife     int     `json:"tyre_life"`
	Position     int     `json:"position"`
	IsPitOutLap  bool    `json:"is_pit_out_lap"`
}

type stint struct {
	SessionKey     int64  `json:"session_key"`
	DriverNumber   int    `json:"driver_number"`
	StintNumber    int    `json:"stint_number"`
	LapStart       int    `json:"lap_start"`
	LapEnd         int    `json:"lap_end"`
	Compound       string `json:"compound"`
	TyreAgeAtStart int    `json:"tyre_age_at_start"`
}

type weather struct {
	SessionKey       int64   `json:"session_key"`
	TrackTemperature float64 `json:"track_temperature"`
	AirTemperature   float64 `json:"air_temperature"`
	Humidity         float64 `json:"humidity"`
	WindSpeed        float64 `json:"wind_speed"`
	Rainfall         float64 `json:"rainfall"`
}

type pitStop struct {
	SessionKey   int64   `json:"session_key"`
	DriverNumber int     `json:"driver_number"`
	LapNumber    int     `json:"lap_number"`
	PitDuration  float64 `json:"pit_duration"`
}

type interval struct {
	SessionKey   int64   `json:"session_key"`
	DriverNumber int     `json:"driver_number"`
	GapToLeader  float64 `json:"gap_to_leader"`
	Interval     float64 `json:"interval"`
}

type sessionData struct {
	SessionKey int64      `json:"session_key"`
	Laps       []lap      `json:"laps"`
	Stints     []stint    `json:"stints"`
	Weather    []weather  `json:"weather"`
	PitStops   []pitStop  `json:"pit_stops"`
	Intervals  []interval `json:"intervals"`
}

func main() {
	apiURL := flag.String("url", "http://localhost:8080/api/v1/ingest/session", "ingest endpoint")
	sessionKey := flag.Int64("session", 9001, "session key to seed")
	drivers := flag.Int("drivers", 10, "number of drivers")
	totalLaps := flag.Int("laps", 55, "race distance in laps")
	flag.Parse()

	rng := rand.New(rand.NewSource(*sessionKey))
	data := buildSession(rng, *sessionKey, *drivers, *totalLaps)

	payload, err := json.Marshal(data)
	if err != nil {
		log.Fatalf("marshal session: %v", err)
	}

	resp, err := http.Post(*apiURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("post session: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("status=%d body=%s\n", resp.StatusCode, body)
}

func buildSession(rng *rand.Rand, key int64, drivers, totalLaps int) *sessionData {
	data := &sessionData{SessionKey: key}

	data.Weather = append(data.Weather, weather{
		SessionKey:       key,
		TrackTemperature: 28 + rng.Float64()*12,
		AirTemperature:   22 + rng.Float64()*8,
		Humidity:         40 + rng.Float64()*30,
		WindSpeed:        rng.Float64() * 20,
	})

	compounds := []string{"SOFT", "MEDIUM", "HARD"}
	for d := 1; d <= drivers; d++ {
		pitLap := 18 + rng.Intn(15)
		first := compounds[rng.Intn(2)] // SOFT or MEDIUM to start
		second := "HARD"
		if first == "SOFT" && rng.Float64() < 0.5 {
			second = "MEDIUM"
		}
		data.Stints = append(data.Stints,
			stint{key, d, 1, 1, pitLap, first, 0},
			stint{key, d, 2, pitLap + 1, totalLaps, second, 0},
		)
		data.PitStops = append(data.PitStops, pitStop{key, d, pitLap, 20 + rng.Float64()*6})

		base := 88.0 + rng.Float64()*1.5
		pos := d
		for l := 1; l <= totalLaps; l++ {
			tyreLife := l - 1
			if l > pitLap {
				tyreLife = l - pitLap - 1
			}
			fuel := 110.0 - float64(l)*1.8
			t := base + fuel*0.03 + float64(tyreLife)*0.05 + rng.Float64()*0.5
			s1 := t * 0.32
			s2 := t * 0.38
			data.Laps = append(data.Laps, lap{
				SessionKey:   key,
				DriverNumber: d,
				LapNumber:    l,
				LapDuration:  t,
				Sector1:      s1,
				Sector2:      s2,
				Sector3:      t - s1 - s2,
				TyreLife:     tyreLife,
				Position:     pos,
				IsPitOutLap:  l == pitLap+1,
			})
		}
		data.Intervals = append(data.Intervals, interval{
			SessionKey:   key,
			DriverNumber: d,
			GapToLeader:  float64(d-1) * 2.5,
			Interval:     2.5,
		})
	}
	return data
}
