package ml

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/pitwall/strategy-api/internal/models"
)

// Training constants shared by all four domains. The fixed seed makes a fit
// reproducible for identical inputs.
const (
	trainSeed      = 42
	testSplitRatio = 0.2
	minTrainSet    = 10
)

// TireModel predicts compound choice, stint length and degradation rate.
type TireModel struct {
	Meta        ArtifactMeta `json:"meta"`
	Compound    *Forest      `json:"compound"`
	Stint       *Boost       `json:"stint"`
	Degradation *Boost       `json:"degradation"`
}

func (m *TireModel) ArtifactMeta() *ArtifactMeta { return &m.Meta }

// TrainTire fits the compound classifier and the stint/degradation regressors
// on a blended dataset, scoring each on a held-out 20% split.
func TrainTire(ds *Dataset) (*TireModel, error) {
	if len(ds.Examples) < minTrainSet {
		return nil, &ConfigError{Reason: fmt.Sprintf("tire training needs at least %d examples, got %d", minTrainSet, len(ds.Examples))}
	}
	x, err := EncodeDataset(TireSchema, ds)
	if err != nil {
		return nil, err
	}
	w := ds.weights()
	compounds := make([]float64, len(ds.Examples))
	for i, ex := range ds.Examples {
		compounds[i] = float64(compoundIndex(ex.Class))
	}
	stints := ds.labels("optimal_stint_length")
	degs := ds.labels("degradation_rate")

	rng := rand.New(rand.NewSource(trainSeed))
	trainIdx, testIdx := trainTestSplit(len(x), testSplitRatio, rng)
	xTr, wTr := subsetRows(x, trainIdx), subsetVals(w, trainIdx)
	xTe := subsetRows(x, testIdx)

	m := &TireModel{
		Compound:    FitForestClassifier(xTr, subsetVals(compounds, trainIdx), wTr, len(TireCompounds), 100, 10, trainSeed),
		Stint:       FitBoostRegressor(xTr, subsetVals(stints, trainIdx), wTr, 100, 6, 0.1, trainSeed),
		Degradation: FitBoostRegressor(xTr, subsetVals(degs, trainIdx), wTr, 100, 6, 0.1, trainSeed),
	}

	compPred := make([]float64, len(xTe))
	stintPred := make([]float64, len(xTe))
	degPred := make([]float64, len(xTe))
	for i, row := range xTe {
		compPred[i] = float64(m.Compound.PredictClass(row))
		stintPred[i] = m.Stint.Predict(row)
		degPred[i] = m.Degradation.Predict(row)
	}
	m.Meta = ArtifactMeta{
		Model:  DomainTire,
		Schema: TireSchema,
		Metrics: Metrics{
			Scores: map[string]float64{
				"compound_accuracy": round4(accuracy(compPred, subsetVals(compounds, testIdx))),
				"stint_length_mae":  round4(meanAbsoluteError(stintPred, subsetVals(stints, testIdx))),
				"degradation_mae":   round4(meanAbsoluteError(degPred, subsetVals(degs, testIdx))),
			},
			DataBreakdown: ds.Breakdown(),
			SamplesUsed:   len(ds.Examples),
		},
		TrainedAt: time.Now().UTC(),
	}
	return m, nil
}

// pitUrgency is a pure function of the request's tire state: age times
// degradation scaled to a 0-100 score, plus a penalty past the optimal age.
func pitUrgency(tireAge int, degradation float64) float64 {
	if degradation < 0 {
		degradation = 0
	}
	urgency := float64(tireAge)*degradation*100 +
		max0(float64(tireAge-optimalTireAge))*3
	return clamp(urgency, 0, 100)
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// Predict runs the tire models on one race state and applies the weather and
// urgency rules on top. Heavy rain overrides the classifier outright.
func (m *TireModel) Predict(req *models.TireStrategyRequest) (*models.TireStrategyResponse, error) {
	vec, err := Encode(TireSchema, req.Features())
	if err != nil {
		return nil, err
	}
	proba := m.Compound.PredictProba(vec)
	probs := make(map[string]float64, len(TireCompounds))
	best, bestIdx := 0.0, 0
	for i, c := range TireCompounds {
		probs[c] = round4(proba[i])
		if proba[i] > best {
			best, bestIdx = proba[i], i
		}
	}
	recommended := TireCompounds[bestIdx]

	// Weather rules take precedence over the learned classifier.
	switch {
	case req.RainProbability > wetCrossover:
		recommended = "WET"
	case req.RainProbability > rainCrossover:
		recommended = "INTERMEDIATE"
	}

	stint := clamp(m.Stint.Predict(vec), 5, 50)
	deg := clamp(m.Degradation.Predict(vec), 0.01, 0.15)
	urgency := pitUrgency(req.TireAge, deg)

	notes := firstMatches([]recRule{
		{req.RainProbability > wetCrossover, "Full wet conditions expected - WET compound mandatory"},
		{req.RainProbability > rainCrossover, "Rain likely - intermediates are the safe call"},
		{urgency > 80, "Tires critical - pit at the first opportunity"},
		{urgency > 50, "Tire degradation building - start planning the stop"},
		{req.SafetyCarDeployed, "Safety car out - cheap pit stop window open"},
		{req.TrackTemperature > tempThresholdHot, "High track temps - harder compounds hold on longer"},
		{req.TrackTemperature < tempThresholdCold, "Cool track - softer compounds switch on faster"},
		{float64(req.RemainingLaps) < shortStintThreshold, "Short run to the flag - softest available compound"},
	}, 3, "Conditions stable - stay on the planned strategy")

	return &models.TireStrategyResponse{
		RecommendedCompound:   recommended,
		Confidence:            round4(best),
		CompoundProbabilities: probs,
		OptimalStintLength:    round1(stint),
		DegradationRate:       round4(deg),
		ExpectedTimeLossMS:    round1(deg * 1000),
		PitUrgency:            int(math.Round(urgency)),
		StrategyNotes:         notes,
	}, nil
}
