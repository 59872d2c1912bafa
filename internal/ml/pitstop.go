package ml

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/pitwall/strategy-api/internal/models"
)

// PitStopModel predicts pit-window membership, undercut chances and the
// optimal pit lap.
type PitStopModel struct {
	Meta       ArtifactMeta `json:"meta"`
	Window     *Boost       `json:"window"`
	Undercut   *Boost       `json:"undercut"`
	OptimalLap *Boost       `json:"optimal_lap"`
}

func (m *PitStopModel) ArtifactMeta() *ArtifactMeta { return &m.Meta }

// TrainPitStop fits two logistic classifiers and the pit-lap regressor.
func TrainPitStop(ds *Dataset) (*PitStopModel, error) {
	if len(ds.Examples) < minTrainSet {
		return nil, &ConfigError{Reason: fmt.Sprintf("pit stop training needs at least %d examples, got %d", minTrainSet, len(ds.Examples))}
	}
	x, err := EncodeDataset(PitStopSchema, ds)
	if err != nil {
		return nil, err
	}
	w := ds.weights()
	windows := ds.labels("in_pit_window")
	undercuts := ds.labels("undercut_opportunity")
	optimals := ds.labels("optimal_pit_lap")

	rng := rand.New(rand.NewSource(trainSeed))
	trainIdx, testIdx := trainTestSplit(len(x), testSplitRatio, rng)
	xTr, wTr := subsetRows(x, trainIdx), subsetVals(w, trainIdx)
	xTe := subsetRows(x, testIdx)

	m := &PitStopModel{
		Window:     FitBoostClassifier(xTr, subsetVals(windows, trainIdx), wTr, 100, 6, 0.1, trainSeed),
		Undercut:   FitBoostClassifier(xTr, subsetVals(undercuts, trainIdx), wTr, 100, 6, 0.1, trainSeed),
		OptimalLap: FitBoostRegressor(xTr, subsetVals(optimals, trainIdx), wTr, 100, 6, 0.1, trainSeed),
	}

	winPred := make([]float64, len(xTe))
	cutPred := make([]float64, len(xTe))
	lapPred := make([]float64, len(xTe))
	for i, row := range xTe {
		winPred[i] = binaryLabel(m.Window.PredictProba(row))
		cutPred[i] = binaryLabel(m.Undercut.PredictProba(row))
		lapPred[i] = m.OptimalLap.Predict(row)
	}
	m.Meta = ArtifactMeta{
		Model:  DomainPitStop,
		Schema: PitStopSchema,
		Metrics: Metrics{
			Scores: map[string]float64{
				"pit_window_accuracy": round4(accuracy(winPred, subsetVals(windows, testIdx))),
				"undercut_accuracy":   round4(accuracy(cutPred, subsetVals(undercuts, testIdx))),
				"optimal_lap_mae":     round4(meanAbsoluteError(lapPred, subsetVals(optimals, testIdx))),
			},
			DataBreakdown: ds.Breakdown(),
			SamplesUsed:   len(ds.Examples),
		},
		TrainedAt: time.Now().UTC(),
	}
	return m, nil
}

func binaryLabel(p float64) float64 {
	if p >= 0.5 {
		return 1
	}
	return 0
}

// Predict runs the pit models on one race state and builds the strategy
// option table around the predicted optimal lap.
func (m *PitStopModel) Predict(req *models.PitStopRequest) (*models.PitStopResponse, error) {
	vec, err := Encode(PitStopSchema, req.Features())
	if err != nil {
		return nil, err
	}
	winProb := m.Window.PredictProba(vec)
	cutProb := m.Undercut.PredictProba(vec)

	optimal := m.OptimalLap.Predict(vec)
	// The optimal lap can never be in the past or beyond the race.
	optimal = clamp(optimal, float64(req.CurrentLap), float64(req.TotalLaps))
	optimalLap := int(math.Round(optimal))
	lapsToOptimal := optimalLap - req.CurrentLap

	inWindow := winProb >= 0.5
	// A safety car compresses the pit delta enough to open the window early.
	if req.SafetyCarDeployed && req.TireAge >= 8 {
		inWindow = true
	}
	undercut := cutProb >= 0.5 && req.GapToCarAhead < req.PitDelta*undercutGapFrac
	urgency := pitUrgency(req.TireAge, req.TireDegradationRate)

	options := m.strategyOptions(req, optimalLap)

	recs := firstMatches([]recRule{
		{req.SafetyCarDeployed && req.TireAge >= 8, "Box now - safety car halves the pit loss"},
		{undercut, "Undercut is live - box this lap to jump the car ahead"},
		{inWindow && lapsToOptimal <= 2, "Window open and optimal lap close - commit to the stop"},
		{inWindow, fmt.Sprintf("In the pit window - target lap %d", optimalLap)},
		{req.TireDegradationRate > 0.08, "Degradation running high - expect the window to open early"},
		{req.GapToCarBehind < req.PitDelta, "Car behind within pit loss - stopping now loses track position"},
	}, 3, "Hold position - pit window not yet open")

	return &models.PitStopResponse{
		InPitWindow:          inWindow,
		PitWindowProbability: round4(winProb),
		UndercutOpportunity:  undercut,
		UndercutProbability:  round4(cutProb),
		OptimalPitLap:        optimalLap,
		LapsToOptimal:        lapsToOptimal,
		PitUrgency:           int(math.Round(urgency)),
		StrategyOptions:      options,
		Recommendations:      recs,
		Confidence:           round4(math.Max(winProb, 1-winProb)),
	}, nil
}

// strategyOptions builds the three standard candidates around the optimal
// lap, each with a risk grade and a rough time gain in seconds.
func (m *PitStopModel) strategyOptions(req *models.PitStopRequest, optimalLap int) []models.StrategyOption {
	trackPos := "keeps track position"
	if req.GapToCarBehind < req.PitDelta {
		trackPos = "drops behind the pursuer"
	}
	degLoss := req.TireDegradationRate * 5 // cost of 5 extra laps on worn tires
	extendedLap := minInt(optimalLap+5, req.TotalLaps)
	undercutLap := req.CurrentLap + 1
	return []models.StrategyOption{
		{
			Name:          "Optimal",
			PitLap:        optimalLap,
			Compound:      compoundForStint(req.TotalLaps - optimalLap),
			Description:   "Stop on the model's optimal lap",
			Risk:          "Low",
			ExpectedGain:  0,
			TrackPosition: trackPos,
		},
		{
			Name:          "Extended Stint",
			PitLap:        extendedLap,
			Compound:      compoundForStint(req.TotalLaps - extendedLap),
			Description:   "Run five laps longer for a tire offset at the end",
			Risk:          "Medium",
			ExpectedGain:  round3(-degLoss),
			TrackPosition: "gains track position short-term",
		},
		{
			Name:          "Undercut Attempt",
			PitLap:        undercutLap,
			Compound:      compoundForStint(req.TotalLaps - undercutLap),
			Description:   "Box early and use fresh-tire pace to jump the car ahead",
			Risk:          "High",
			ExpectedGain:  round3(req.PitDelta*undercutGapFrac - req.GapToCarAhead),
			TrackPosition: "depends on out-lap traffic",
		},
	}
}

// compoundForStint picks the dry compound whose base stint covers the laps
// left after the stop.
func compoundForStint(lapsAfterStop int) string {
	switch {
	case lapsAfterStop > 30:
		return "HARD"
	case lapsAfterStop > 15:
		return "MEDIUM"
	default:
		return "SOFT"
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
