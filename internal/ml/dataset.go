package ml

import (
	"fmt"
	"math/rand"
)

// Source tags where a training example came from.
type Source string

const (
	SourceReal      Source = "real"
	SourceSynthetic Source = "synthetic"
)

// SyntheticConfidence is the fixed confidence attached to rule-derived
// examples. Real examples always carry 1.0.
const SyntheticConfidence = 0.3

// Example is one labeled training example. Features are keyed by schema name,
// Labels by target name; Class carries the categorical label for domains that
// have one (tire compound). Weight is assigned by the blender from the
// source's configured share.
type Example struct {
	Features   map[string]float64
	Labels     map[string]float64
	Class      string
	Source     Source
	Weight     float64
	Confidence float64
}

// Dataset is a blended training set with provenance counts preserved.
type Dataset struct {
	Examples        []Example
	RealCount       int
	SyntheticCount  int
	RealWeight      float64
	SyntheticWeight float64
}

// Blend combines real and synthetic examples under a weight split. Weights
// that do not sum to 1 are normalized; a negative or zero-sum split is a
// ConfigError. Influence is carried per example through the Weight field
// rather than by resampling, so downstream fits must be sample-weighted.
// With no real examples the split collapses to 100% synthetic regardless of
// the requested weights.
func Blend(real, synthetic []Example, realWeight, syntheticWeight float64) (*Dataset, error) {
	if realWeight < 0 || syntheticWeight < 0 {
		return nil, &ConfigError{Reason: fmt.Sprintf("negative weight (real=%.3f synthetic=%.3f)", realWeight, syntheticWeight)}
	}
	sum := realWeight + syntheticWeight
	if sum <= 0 {
		return nil, &ConfigError{Reason: "weights sum to zero"}
	}
	realWeight /= sum
	syntheticWeight /= sum

	if len(real) == 0 {
		realWeight, syntheticWeight = 0, 1
	} else if len(synthetic) == 0 {
		realWeight, syntheticWeight = 1, 0
	}

	ds := &Dataset{
		Examples:        make([]Example, 0, len(real)+len(synthetic)),
		RealCount:       len(real),
		SyntheticCount:  len(synthetic),
		RealWeight:      realWeight,
		SyntheticWeight: syntheticWeight,
	}
	for _, ex := range real {
		ex.Source = SourceReal
		ex.Weight = realWeight
		ex.Confidence = 1.0
		ds.Examples = append(ds.Examples, ex)
	}
	for _, ex := range synthetic {
		ex.Source = SourceSynthetic
		ex.Weight = syntheticWeight
		if ex.Confidence == 0 {
			ex.Confidence = SyntheticConfidence
		}
		ds.Examples = append(ds.Examples, ex)
	}
	return ds, nil
}

// Breakdown returns the literal real/synthetic counts consumed by a fit.
func (d *Dataset) Breakdown() DataBreakdown {
	return DataBreakdown{Real: d.RealCount, Synthetic: d.SyntheticCount}
}

// labels extracts one named target across the dataset.
func (d *Dataset) labels(name string) []float64 {
	out := make([]float64, len(d.Examples))
	for i, ex := range d.Examples {
		out[i] = ex.Labels[name]
	}
	return out
}

// weights extracts the per-example sample weights.
func (d *Dataset) weights() []float64 {
	out := make([]float64, len(d.Examples))
	for i, ex := range d.Examples {
		out[i] = ex.Weight
	}
	return out
}

// trainTestSplit shuffles indices and carves off a held-out share.
func trainTestSplit(n int, testRatio float64, rng *rand.Rand) (train, test []int) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	perm := rng.Perm(n)
	cut := n - int(float64(n)*testRatio)
	if cut < 1 {
		cut = 1
	}
	if cut >= n && n > 1 {
		cut = n - 1
	}
	return perm[:cut], perm[cut:]
}

func subsetRows(x [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = x[j]
	}
	return out
}

func subsetVals(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}
