package ml

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// DataBreakdown is the literal count of real vs synthetic examples a fit
// consumed. It is reported verbatim in training results: Real + Synthetic
// always equals the total examples used.
type DataBreakdown struct {
	Real      int `json:"real"`
	Synthetic int `json:"synthetic"`
}

// Metrics describes one training run: named classifier accuracies and
// regressor mean-absolute-errors on the held-out split, plus the breakdown.
type Metrics struct {
	Scores        map[string]float64 `json:"scores"`
	DataBreakdown DataBreakdown      `json:"data_breakdown"`
	SamplesUsed   int                `json:"samples_used"`
}

// accuracy is the fraction of exact class matches.
func accuracy(pred, truth []float64) float64 {
	if len(truth) == 0 {
		return 0
	}
	var hits float64
	for i := range truth {
		if pred[i] == truth[i] {
			hits++
		}
	}
	return hits / float64(len(truth))
}

// meanAbsoluteError over a held-out split.
func meanAbsoluteError(pred, truth []float64) float64 {
	if len(truth) == 0 {
		return 0
	}
	abs := make([]float64, len(truth))
	for i := range truth {
		abs[i] = math.Abs(pred[i] - truth[i])
	}
	return stat.Mean(abs, nil)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
