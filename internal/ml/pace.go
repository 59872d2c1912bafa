package ml

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/pitwall/strategy-api/internal/models"
)

// RacePaceModel predicts lap times, the fuel-burn effect and the pace trend.
type RacePaceModel struct {
	Meta       ArtifactMeta `json:"meta"`
	LapTime    *Boost       `json:"lap_time"`
	FuelEffect *Forest      `json:"fuel_effect"`
	Trend      *Boost       `json:"trend"`
}

func (m *RacePaceModel) ArtifactMeta() *ArtifactMeta { return &m.Meta }

// TrainRacePace fits the lap-time booster plus the fuel and trend regressors.
func TrainRacePace(ds *Dataset) (*RacePaceModel, error) {
	if len(ds.Examples) < minTrainSet {
		return nil, &ConfigError{Reason: fmt.Sprintf("race pace training needs at least %d examples, got %d", minTrainSet, len(ds.Examples))}
	}
	x, err := EncodeDataset(RacePaceSchema, ds)
	if err != nil {
		return nil, err
	}
	w := ds.weights()
	lapTimes := ds.labels("lap_time")
	fuelEffects := ds.labels("fuel_effect")
	trends := ds.labels("pace_trend")

	rng := rand.New(rand.NewSource(trainSeed))
	trainIdx, testIdx := trainTestSplit(len(x), testSplitRatio, rng)
	xTr, wTr := subsetRows(x, trainIdx), subsetVals(w, trainIdx)
	xTe := subsetRows(x, testIdx)

	m := &RacePaceModel{
		LapTime:    FitBoostRegressor(xTr, subsetVals(lapTimes, trainIdx), wTr, 150, 8, 0.1, trainSeed),
		FuelEffect: FitForestRegressor(xTr, subsetVals(fuelEffects, trainIdx), wTr, 100, 6, trainSeed),
		Trend:      FitBoostRegressor(xTr, subsetVals(trends, trainIdx), wTr, 100, 6, 0.1, trainSeed),
	}

	timePred := make([]float64, len(xTe))
	fuelPred := make([]float64, len(xTe))
	trendPred := make([]float64, len(xTe))
	for i, row := range xTe {
		timePred[i] = m.LapTime.Predict(row)
		fuelPred[i] = m.FuelEffect.Predict(row)
		trendPred[i] = m.Trend.Predict(row)
	}
	m.Meta = ArtifactMeta{
		Model:  DomainRacePace,
		Schema: RacePaceSchema,
		Metrics: Metrics{
			Scores: map[string]float64{
				"lap_time_mae":    round4(meanAbsoluteError(timePred, subsetVals(lapTimes, testIdx))),
				"fuel_effect_mae": round4(meanAbsoluteError(fuelPred, subsetVals(fuelEffects, testIdx))),
				"pace_trend_mae":  round4(meanAbsoluteError(trendPred, subsetVals(trends, testIdx))),
			},
			DataBreakdown: ds.Breakdown(),
			SamplesUsed:   len(ds.Examples),
		},
		TrainedAt: time.Now().UTC(),
	}
	return m, nil
}

// Predict runs the pace models on one race state and projects the next five
// laps with fuel burning off and tires aging lap by lap.
func (m *RacePaceModel) Predict(req *models.RacePaceRequest) (*models.RacePaceResponse, error) {
	vec, err := Encode(RacePaceSchema, req.Features())
	if err != nil {
		return nil, err
	}
	lapTime := m.LapTime.Predict(vec)
	fuelEffect := clamp(m.FuelEffect.Predict(vec), 0.01, 0.06)
	trendPerLap := m.Trend.Predict(vec)

	next := make([]models.LapPrediction, 0, 5)
	deltas := make([]float64, 0, 5)
	for i := 1; i <= 5; i++ {
		f := req.Features()
		fuel := max0(req.FuelLoad - fuelBurnPerLap*float64(i))
		f["lap_number"] = float64(req.LapNumber + i)
		f["fuel_load"] = fuel
		f["tire_age"] = float64(req.TireAge + i)
		f["previous_lap_time"] = lapTime
		fv, err := Encode(RacePaceSchema, f)
		if err != nil {
			return nil, err
		}
		t := m.LapTime.Predict(fv)
		delta := t - req.BestLapTime
		deltas = append(deltas, delta)
		next = append(next, models.LapPrediction{
			Lap:           req.LapNumber + i,
			PredictedTime: round3(t),
			FuelLoad:      round1(fuel),
			TireAge:       req.TireAge + i,
			DeltaToBest:   round3(delta),
		})
	}

	trend := trendLabel(deltas)
	assessment := assessPace(lapTime - req.BestLapTime)
	assessment.DeltaToAverage = round3(lapTime - req.AvgLapTime)
	assessment.Trend = trend

	notes := firstMatches([]recRule{
		{trend == "improving", "Pace improving lap on lap - fuel burn outweighing tire wear"},
		{trend == "degrading", "Pace falling away - tire wear now dominates fuel gain"},
		{req.TireAge > 25, "Old tires - expect a sharp drop-off soon"},
		{req.Traffic > 0, "Traffic costing lap time - clear air would recover pace"},
		{req.PushLevel < 60, "Conservative push level - pace in hand if needed"},
	}, 3, "Pace consistent with the field")

	return &models.RacePaceResponse{
		PredictedLapTime: round3(lapTime),
		FuelEffect:       round4(fuelEffect),
		PaceTrendPerLap:  round4(trendPerLap),
		CurrentDelta:     round3(lapTime - req.BestLapTime),
		LapPredictions:   next,
		Assessment:       assessment,
		Recommendations:  notes,
		Confidence:       0.8,
	}, nil
}

// trendLabel classifies the projected deltas: a decreasing trailing window
// means improving, anything else degrading.
func trendLabel(deltas []float64) string {
	if len(deltas) < 2 {
		return "degrading"
	}
	for i := 1; i < len(deltas); i++ {
		if deltas[i] >= deltas[i-1] {
			return "degrading"
		}
	}
	return "improving"
}

// assessPace grades the delta to the best lap.
func assessPace(delta float64) models.PerformanceAssessment {
	a := models.PerformanceAssessment{Delta: round3(delta)}
	switch {
	case delta < 0.5:
		a.Level, a.Color = "EXCELLENT", "green"
	case delta < 1.0:
		a.Level, a.Color = "GOOD", "lime"
	case delta < 2.0:
		a.Level, a.Color = "AVERAGE", "yellow"
	default:
		a.Level, a.Color = "BELOW PAR", "red"
	}
	return a
}
