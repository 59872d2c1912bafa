package ml

import (
	"math"
	"math/rand"
)

// Boost is a gradient-boosted ensemble of shallow regression trees.
// Regression boosts on squared-error residuals; the logistic variant boosts
// on binomial deviance gradients and exposes a probability.
type Boost struct {
	Init         float64 `json:"init"`
	LearningRate float64 `json:"lr"`
	Trees        []*node `json:"trees"`
	Logistic     bool    `json:"logistic,omitempty"`
}

// FitBoostRegressor fits a least-squares gradient-boosting regressor with
// per-sample weights.
func FitBoostRegressor(x [][]float64, y, w []float64, trees, maxDepth int, lr float64, seed int64) *Boost {
	rng := rand.New(rand.NewSource(seed))
	b := &Boost{Init: weightedMean(y, w), LearningRate: lr}
	tc := treeConfig{maxDepth: maxDepth, minLeaf: 2}

	pred := make([]float64, len(y))
	for i := range pred {
		pred[i] = b.Init
	}
	resid := make([]float64, len(y))
	for t := 0; t < trees; t++ {
		for i := range y {
			resid[i] = y[i] - pred[i]
		}
		tree := growTree(x, resid, w, tc, rng, 0)
		b.Trees = append(b.Trees, tree)
		for i := range pred {
			pred[i] += lr * tree.predict(x[i])[0]
		}
	}
	return b
}

// FitBoostClassifier fits a binary gradient-boosting classifier; y must be
// 0/1. The raw score is boosted on y - sigmoid(score) gradients.
func FitBoostClassifier(x [][]float64, y, w []float64, trees, maxDepth int, lr float64, seed int64) *Boost {
	rng := rand.New(rand.NewSource(seed))
	p := weightedMean(y, w)
	p = math.Min(math.Max(p, 1e-4), 1-1e-4)
	b := &Boost{Init: math.Log(p / (1 - p)), LearningRate: lr, Logistic: true}
	tc := treeConfig{maxDepth: maxDepth, minLeaf: 2}

	score := make([]float64, len(y))
	for i := range score {
		score[i] = b.Init
	}
	grad := make([]float64, len(y))
	for t := 0; t < trees; t++ {
		for i := range y {
			grad[i] = y[i] - sigmoid(score[i])
		}
		tree := growTree(x, grad, w, tc, rng, 0)
		b.Trees = append(b.Trees, tree)
		for i := range score {
			score[i] += lr * tree.predict(x[i])[0]
		}
	}
	return b
}

// Predict returns the raw boosted output. For the logistic variant this is a
// log-odds score; use PredictProba instead.
func (b *Boost) Predict(x []float64) float64 {
	out := b.Init
	for _, t := range b.Trees {
		out += b.LearningRate * t.predict(x)[0]
	}
	return out
}

// PredictProba returns P(class==1) for a logistic ensemble.
func (b *Boost) PredictProba(x []float64) float64 {
	if !b.Logistic {
		return b.Predict(x)
	}
	return sigmoid(b.Predict(x))
}

func sigmoid(v float64) float64 {
	return 1.0 / (1.0 + math.Exp(-v))
}

func weightedMean(y, w []float64) float64 {
	var sum, total float64
	for i := range y {
		sum += w[i] * y[i]
		total += w[i]
	}
	if total == 0 {
		return 0
	}
	return sum / total
}
