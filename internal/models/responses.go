package models

import "time"

// DataBreakdown reports how many real vs synthetic examples fed a model.
type DataBreakdown struct {
	Real      int `json:"real"`
	Synthetic int `json:"synthetic"`
}

// TireStrategyResponse is the tire model's prediction payload.
type TireStrategyResponse struct {
	RecommendedCompound   string             `json:"recommended_compound"`
	Confidence            float64            `json:"compound_confidence"`
	CompoundProbabilities map[string]float64 `json:"compound_probabilities"`
	OptimalStintLength    float64            `json:"predicted_stint_length"`
	DegradationRate       float64            `json:"degradation_rate_per_lap"`
	ExpectedTimeLossMS    float64            `json:"expected_time_loss_per_lap_ms"`
	PitUrgency            int                `json:"pit_urgency"`
	StrategyNotes         []string           `json:"strategy_notes"`
}

// StrategyOption is one pit-strategy candidate with its tradeoffs.
type StrategyOption struct {
	Name          string  `json:"name"`
	PitLap        int     `json:"pit_lap"`
	Compound      string  `json:"compound"`
	Description   string  `json:"description"`
	Risk          string  `json:"risk"`
	ExpectedGain  float64 `json:"expected_gain"`
	TrackPosition string  `json:"track_position"`
}

// PitStopResponse is the pit model's prediction payload.
type PitStopResponse struct {
	InPitWindow          bool             `json:"in_pit_window"`
	PitWindowProbability float64          `json:"pit_window_probability"`
	UndercutOpportunity  bool             `json:"undercut_opportunity"`
	UndercutProbability  float64          `json:"undercut_probability"`
	OptimalPitLap        int              `json:"optimal_pit_lap"`
	LapsToOptimal        int              `json:"laps_until_optimal"`
	PitUrgency           int              `json:"pit_urgency"`
	StrategyOptions      []StrategyOption `json:"strategy_options"`
	Recommendations      []string         `json:"recommendations"`
	Confidence           float64          `json:"confidence"`
}

// LapPrediction is one entry of the five-lap look-ahead.
type LapPrediction struct {
	Lap           int     `json:"lap"`
	PredictedTime float64 `json:"predicted_time"`
	FuelLoad      float64 `json:"fuel_load"`
	TireAge       int     `json:"tire_age"`
	DeltaToBest   float64 `json:"delta_to_best"`
}

// PerformanceAssessment grades current pace against the best and average laps.
type PerformanceAssessment struct {
	Level          string  `json:"level"`
	Color          string  `json:"color"`
	Delta          float64 `json:"delta_to_best"`
	DeltaToAverage float64 `json:"delta_to_average"`
	Trend          string  `json:"trend"`
}

// RacePaceResponse is the pace model's prediction payload. The trend regressor
// surfaces as the numeric per-lap drift; the categorical trend label lives in
// the performance assessment.
type RacePaceResponse struct {
	PredictedLapTime float64               `json:"predicted_lap_time"`
	FuelEffect       float64               `json:"fuel_effect_per_kg"`
	PaceTrendPerLap  float64               `json:"pace_trend_per_lap"`
	CurrentDelta     float64               `json:"current_delta_to_optimal"`
	LapPredictions   []LapPrediction       `json:"lap_predictions"`
	Assessment       PerformanceAssessment `json:"performance_assessment"`
	Recommendations  []string              `json:"recommendations"`
	Confidence       float64               `json:"confidence"`
}

// AttackAnalysis describes the overtaking picture against the car ahead.
type AttackAnalysis struct {
	GapToTarget       float64  `json:"gap_to_target"`
	Probability       float64  `json:"probability"`
	Factors           []string `json:"factors"`
	RecommendedAction string   `json:"recommended_action"`
}

// DefenseAnalysis describes the threat from the car behind.
type DefenseAnalysis struct {
	GapToThreat       float64 `json:"gap_to_threat"`
	ThreatLevel       string  `json:"threat_level"`
	ThreatColor       string  `json:"threat_color"`
	LoseProbability   float64 `json:"lose_probability"`
	Vulnerability     float64 `json:"vulnerability"`
	RecommendedAction string  `json:"recommended_action"`
}

// PositionChangeProbabilities are the three-way class probabilities.
type PositionChangeProbabilities struct {
	Gain     float64 `json:"gain"`
	Maintain float64 `json:"maintain"`
	Lose     float64 `json:"lose"`
}

// PositionResponse is the position model's prediction payload.
type PositionResponse struct {
	CurrentPosition         int                         `json:"current_position"`
	PredictedPosition       int                         `json:"predicted_final_position"`
	OvertakeProbability     float64                     `json:"overtake_probability"`
	ChangeProbabilities     PositionChangeProbabilities `json:"position_change_probabilities"`
	BattleStatus            string                      `json:"battle_status"`
	Attack                  AttackAnalysis              `json:"attack_analysis"`
	Defense                 DefenseAnalysis             `json:"defense_analysis"`
	TacticalRecommendations []string                    `json:"tactical_recommendations"`
	Confidence              float64                     `json:"confidence"`
}

// TrainResult summarizes one completed training run for one model.
type TrainResult struct {
	Model         string             `json:"model"`
	RunID         string             `json:"run_id,omitempty"`
	Status        string             `json:"status"`
	Scores        map[string]float64 `json:"scores,omitempty"`
	DataBreakdown DataBreakdown      `json:"data_breakdown"`
	SamplesUsed   int                `json:"samples_used"`
	DurationMS    int64              `json:"duration_ms"`
	Error         string             `json:"error,omitempty"`
}

// ModelStatus is one row of the registry status report.
type ModelStatus struct {
	Model       string     `json:"model"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Ready       bool       `json:"ready"`
	TrainedAt   *time.Time `json:"trained_at,omitempty"`
}

// ModelInfo extends ModelStatus with schema and metric details.
type ModelInfo struct {
	ModelStatus
	FeatureSchema []string           `json:"feature_schema,omitempty"`
	Scores        map[string]float64 `json:"training_metrics,omitempty"`
	DataBreakdown *DataBreakdown     `json:"data_breakdown,omitempty"`
}

// ExecutiveSummary condenses a full analysis into pit-wall actions.
type ExecutiveSummary struct {
	CriticalActions []string `json:"critical_actions"`
	Recommendations []string `json:"recommendations"`
	RiskFactors     []string `json:"risk_factors"`
}

// FullAnalysis bundles all four predictions for one race state.
type FullAnalysis struct {
	Tire     *TireStrategyResponse `json:"tire_strategy,omitempty"`
	PitStop  *PitStopResponse      `json:"pit_stop,omitempty"`
	RacePace *RacePaceResponse     `json:"race_pace,omitempty"`
	Position *PositionResponse     `json:"position,omitempty"`
	Summary  *ExecutiveSummary     `json:"executive_summary,omitempty"`
	Errors   map[string]string     `json:"errors,omitempty"`
}

// Scenario is one what-if variant of a full analysis.
type Scenario struct {
	Name     string        `json:"name"`
	Changes  []string      `json:"changes"`
	Analysis *FullAnalysis `json:"analysis"`
}

// TrainingRun is one persisted row of training history.
type TrainingRun struct {
	RunID      string    `json:"run_id"`
	Model      string    `json:"model"`
	Status     string    `json:"status"`
	Real       int       `json:"real_samples"`
	Synthetic  int       `json:"synthetic_samples"`
	DurationMS int64     `json:"duration_ms"`
	StartedAt  time.Time `json:"started_at"`
	Error      string    `json:"error,omitempty"`
}
