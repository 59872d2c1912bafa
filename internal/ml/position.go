package ml

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/pitwall/strategy-api/internal/models"
)

// PositionModel predicts overtake chances and three-way position change.
type PositionModel struct {
	Meta     ArtifactMeta `json:"meta"`
	Overtake *Boost       `json:"overtake"`
	Change   *Forest      `json:"change"`
}

func (m *PositionModel) ArtifactMeta() *ArtifactMeta { return &m.Meta }

// Position change class indices.
const (
	changeLose     = 0
	changeMaintain = 1
	changeGain     = 2
)

// TrainPosition fits the overtake classifier and the change classifier.
func TrainPosition(ds *Dataset) (*PositionModel, error) {
	if len(ds.Examples) < minTrainSet {
		return nil, &ConfigError{Reason: fmt.Sprintf("position training needs at least %d examples, got %d", minTrainSet, len(ds.Examples))}
	}
	x, err := EncodeDataset(PositionSchema, ds)
	if err != nil {
		return nil, err
	}
	w := ds.weights()
	overtakes := ds.labels("overtake_success")
	changes := ds.labels("position_change")

	rng := rand.New(rand.NewSource(trainSeed))
	trainIdx, testIdx := trainTestSplit(len(x), testSplitRatio, rng)
	xTr, wTr := subsetRows(x, trainIdx), subsetVals(w, trainIdx)
	xTe := subsetRows(x, testIdx)

	m := &PositionModel{
		Overtake: FitBoostClassifier(xTr, subsetVals(overtakes, trainIdx), wTr, 100, 6, 0.1, trainSeed),
		Change:   FitForestClassifier(xTr, subsetVals(changes, trainIdx), wTr, 3, 100, 10, trainSeed),
	}

	otPred := make([]float64, len(xTe))
	chPred := make([]float64, len(xTe))
	for i, row := range xTe {
		otPred[i] = binaryLabel(m.Overtake.PredictProba(row))
		chPred[i] = float64(m.Change.PredictClass(row))
	}
	m.Meta = ArtifactMeta{
		Model:  DomainPosition,
		Schema: PositionSchema,
		Metrics: Metrics{
			Scores: map[string]float64{
				"overtake_accuracy":        round4(accuracy(otPred, subsetVals(overtakes, testIdx))),
				"position_change_accuracy": round4(accuracy(chPred, subsetVals(changes, testIdx))),
			},
			DataBreakdown: ds.Breakdown(),
			SamplesUsed:   len(ds.Examples),
		},
		TrainedAt: time.Now().UTC(),
	}
	return m, nil
}

// Predict runs the position models on one race state and layers the attack
// and defense analysis on top.
func (m *PositionModel) Predict(req *models.PositionRequest) (*models.PositionResponse, error) {
	vec, err := Encode(PositionSchema, req.Features())
	if err != nil {
		return nil, err
	}
	otProb := m.Overtake.PredictProba(vec)
	chProba := m.Change.PredictProba(vec)

	probs := models.PositionChangeProbabilities{
		Lose:     round4(chProba[changeLose]),
		Maintain: round4(chProba[changeMaintain]),
		Gain:     round4(chProba[changeGain]),
	}

	predicted := predictedFinal(req.CurrentPosition, req.RemainingLaps, otProb, chProba[changeLose])

	attack := models.AttackAnalysis{
		GapToTarget:       req.GapToCarAhead,
		Probability:       round4(otProb),
		Factors:           attackFactors(req),
		RecommendedAction: attackAction(req, otProb),
	}
	defense := defenseAnalysis(req, chProba[changeLose])

	notes := firstMatches([]recRule{
		{req.GapToCarAhead < 1.0 && req.DRSAvailable == 1, "Inside DRS range - attack on the main straight"},
		{otProb > 0.6, "Overtake highly likely within the next few laps"},
		{defense.ThreatLevel == "CRITICAL", "Defend hard - pursuer in striking range with a pace edge"},
		{req.TireAdvantage > 5, "Fresh tire advantage - pressure the car ahead now"},
		{req.TireAdvantage < -5, "Older tires than the pursuer - manage the gap, avoid a fight"},
		{req.RemainingLaps < 5, "Final laps - hold position, no unnecessary risk"},
	}, 3, "Maintain pace and track position")

	return &models.PositionResponse{
		CurrentPosition:         req.CurrentPosition,
		PredictedPosition:       predicted,
		OvertakeProbability:     round4(otProb),
		ChangeProbabilities:     probs,
		BattleStatus:            battleStatus(req.GapToCarAhead, req.GapToCarBehind),
		Attack:                  attack,
		Defense:                 defense,
		TacticalRecommendations: notes,
		Confidence:              round4(maxOf(chProba)),
	}, nil
}

// predictedFinal projects the finishing position. Expected movement scales
// with the laps left: up to three places gained on the overtake probability,
// up to two lost on the lose probability.
func predictedFinal(current, remaining int, otProb, loseProb float64) int {
	lapFactor := float64(remaining) / 5
	gains := otProb * math.Min(lapFactor, 3)
	losses := loseProb * math.Min(lapFactor, 2)
	return clampInt(int(math.Round(float64(current)-gains+losses)), 1, 20)
}

// battleStatus templates the state of the fight from both gaps.
func battleStatus(gapAhead, gapBehind float64) string {
	switch {
	case gapAhead < 1.5 && gapBehind < 1.5:
		return "IN BATTLE - Both sides"
	case gapAhead < 1.5:
		return "ATTACKING - Car ahead"
	case gapBehind < 1.5:
		return "DEFENDING - Under pressure"
	case gapAhead > 5.0 && gapBehind > 5.0:
		return "CLEAN AIR - No immediate battle"
	default:
		return "MONITORING - Gaps manageable"
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// attackFactors names the levers currently in the overtake picture, biggest
// first.
func attackFactors(req *models.PositionRequest) []string {
	factors := []string{}
	if req.TireAdvantage > 5 {
		factors = append(factors, "tire_advantage")
	}
	if req.RelativePace < -0.3 {
		factors = append(factors, "pace_advantage")
	}
	if req.DRSAvailable == 1 && req.GapToCarAhead < 1.0 {
		factors = append(factors, "drs")
	}
	if req.OvertakingDifficulty > 70 {
		factors = append(factors, "track_difficulty")
	}
	if len(factors) == 0 {
		factors = append(factors, "gap_ahead")
	}
	return factors
}

func attackAction(req *models.PositionRequest, otProb float64) string {
	switch {
	case otProb > 0.6 && req.GapToCarAhead < 1.0:
		return "Commit to the move at the next DRS zone"
	case req.GapToCarAhead < 1.0:
		return "Stay within DRS range and wait for a mistake"
	case req.GapToCarAhead < 2.5:
		return "Close the gap before committing"
	default:
		return "Focus on pace, the battle is not yet live"
	}
}

func defenseAnalysis(req *models.PositionRequest, loseProb float64) models.DefenseAnalysis {
	level, color := "LOW", "green"
	switch {
	case req.GapToCarBehind < 0.5:
		level, color = "CRITICAL", "red"
	case req.GapToCarBehind < 1.0:
		level, color = "HIGH", "orange"
	case req.GapToCarBehind < 2.0:
		level, color = "MEDIUM", "yellow"
	}
	action := "Maintain pace and use battery on the straights"
	if level == "CRITICAL" || level == "HIGH" {
		action = "Defend the inside line into heavy braking zones"
	}
	return models.DefenseAnalysis{
		GapToThreat:       req.GapToCarBehind,
		ThreatLevel:       level,
		ThreatColor:       color,
		LoseProbability:   round4(loseProb),
		Vulnerability:     round1(clamp(loseProb*100, 0, 100)),
		RecommendedAction: action,
	}
}

func maxOf(p []float64) float64 {
	best := math.Inf(-1)
	for _, v := range p {
		if v > best {
			best = v
		}
	}
	return best
}
