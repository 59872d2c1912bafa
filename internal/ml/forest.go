package ml

import (
	"math"
	"math/rand"
)

// Forest is a bagged ensemble of CART trees. Classes == 0 makes it a
// regressor. Trees vote with their leaf distributions (classification) or
// leaf means (regression). Chosen, like the boosted ensembles, for robustness
// to noisy sparse data, native per-sample weights and no need for feature
// scaling.
type Forest struct {
	Trees   []*node `json:"trees"`
	Classes int     `json:"classes,omitempty"`
}

type forestConfig struct {
	trees       int
	maxDepth    int
	minLeaf     int
	maxFeatures int
}

// fitForest grows cfg.trees trees on uniform bootstrap resamples. Sample
// weights ride along with each drawn row so blended influence survives the
// resampling.
func fitForest(x [][]float64, y, w []float64, classes int, cfg forestConfig, seed int64) *Forest {
	rng := rand.New(rand.NewSource(seed))
	if cfg.maxFeatures == 0 {
		if classes > 0 {
			cfg.maxFeatures = int(math.Ceil(math.Sqrt(float64(len(x[0])))))
		} else {
			cfg.maxFeatures = (len(x[0]) + 2) / 3
		}
	}
	tc := treeConfig{
		classes:     classes,
		maxDepth:    cfg.maxDepth,
		minLeaf:     cfg.minLeaf,
		maxFeatures: cfg.maxFeatures,
	}

	f := &Forest{Classes: classes, Trees: make([]*node, 0, cfg.trees)}
	n := len(x)
	for t := 0; t < cfg.trees; t++ {
		bx := make([][]float64, n)
		by := make([]float64, n)
		bw := make([]float64, n)
		for i := 0; i < n; i++ {
			j := rng.Intn(n)
			bx[i] = x[j]
			by[i] = y[j]
			bw[i] = w[j]
		}
		f.Trees = append(f.Trees, growTree(bx, by, bw, tc, rng, 0))
	}
	return f
}

// FitForestClassifier fits a weighted random-forest classifier.
func FitForestClassifier(x [][]float64, y, w []float64, classes, trees, maxDepth int, seed int64) *Forest {
	return fitForest(x, y, w, classes, forestConfig{trees: trees, maxDepth: maxDepth, minLeaf: 1}, seed)
}

// FitForestRegressor fits a weighted random-forest regressor.
func FitForestRegressor(x [][]float64, y, w []float64, trees, maxDepth int, seed int64) *Forest {
	return fitForest(x, y, w, 0, forestConfig{trees: trees, maxDepth: maxDepth, minLeaf: 2}, seed)
}

// PredictProba averages leaf class distributions across trees. The result
// sums to 1 whenever at least one tree exists.
func (f *Forest) PredictProba(x []float64) []float64 {
	probs := make([]float64, f.Classes)
	if len(f.Trees) == 0 {
		return probs
	}
	for _, t := range f.Trees {
		dist := t.predict(x)
		for i := range probs {
			if i < len(dist) {
				probs[i] += dist[i]
			}
		}
	}
	inv := 1.0 / float64(len(f.Trees))
	for i := range probs {
		probs[i] *= inv
	}
	return probs
}

// PredictClass returns the majority class index.
func (f *Forest) PredictClass(x []float64) int {
	return argmax(f.PredictProba(x))
}

// Predict returns the mean regression output across trees.
func (f *Forest) Predict(x []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	var sum float64
	for _, t := range f.Trees {
		sum += t.predict(x)[0]
	}
	return sum / float64(len(f.Trees))
}
