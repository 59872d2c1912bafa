package ml

import (
	"math"
	"math/rand"
	"sort"
)

// node is one node of a CART tree. Leaf nodes have no children; Value holds
// the weighted class distribution for classification trees or a single-element
// mean for regression trees. The compact JSON tags keep persisted artifacts
// small.
type node struct {
	Feature   int       `json:"f,omitempty"`
	Threshold float64   `json:"t,omitempty"`
	Left      *node     `json:"l,omitempty"`
	Right     *node     `json:"r,omitempty"`
	Value     []float64 `json:"v,omitempty"`
}

func (n *node) leaf() bool { return n.Left == nil }

// predict walks the tree for one feature vector.
func (n *node) predict(x []float64) []float64 {
	cur := n
	for !cur.leaf() {
		if x[cur.Feature] <= cur.Threshold {
			cur = cur.Left
		} else {
			cur = cur.Right
		}
	}
	return cur.Value
}

// treeConfig controls tree growth. classes == 0 grows a regression tree,
// otherwise a classification tree over that many classes.
type treeConfig struct {
	classes     int
	maxDepth    int
	minLeaf     int
	maxFeatures int // 0 means all features
}

// growTree fits a weighted CART tree. Classification trees minimize weighted
// Gini impurity with y holding class indices; regression trees minimize
// weighted squared error with y holding targets. Sample weights flow into
// every impurity computation, which is how blended real/synthetic influence
// reaches the fit.
func growTree(x [][]float64, y, w []float64, cfg treeConfig, rng *rand.Rand, depth int) *node {
	if cfg.minLeaf < 1 {
		cfg.minLeaf = 1
	}
	n := len(x)
	if n == 0 {
		return &node{Value: leafValue(y, w, cfg.classes)}
	}
	if depth >= cfg.maxDepth || n < 2*cfg.minLeaf || pure(y) {
		return &node{Value: leafValue(y, w, cfg.classes)}
	}

	feat, thr, ok := bestSplit(x, y, w, cfg, rng)
	if !ok {
		return &node{Value: leafValue(y, w, cfg.classes)}
	}

	var lx, rx [][]float64
	var ly, ry, lw, rw []float64
	for i := range x {
		if x[i][feat] <= thr {
			lx = append(lx, x[i])
			ly = append(ly, y[i])
			lw = append(lw, w[i])
		} else {
			rx = append(rx, x[i])
			ry = append(ry, y[i])
			rw = append(rw, w[i])
		}
	}
	if len(lx) < cfg.minLeaf || len(rx) < cfg.minLeaf {
		return &node{Value: leafValue(y, w, cfg.classes)}
	}

	return &node{
		Feature:   feat,
		Threshold: thr,
		Left:      growTree(lx, ly, lw, cfg, rng, depth+1),
		Right:     growTree(rx, ry, rw, cfg, rng, depth+1),
	}
}

// bestSplit scans a (possibly random) feature subset for the threshold with
// the lowest weighted child impurity.
func bestSplit(x [][]float64, y, w []float64, cfg treeConfig, rng *rand.Rand) (feature int, threshold float64, ok bool) {
	dims := len(x[0])
	feats := make([]int, dims)
	for i := range feats {
		feats[i] = i
	}
	if cfg.maxFeatures > 0 && cfg.maxFeatures < dims {
		rng.Shuffle(dims, func(i, j int) { feats[i], feats[j] = feats[j], feats[i] })
		feats = feats[:cfg.maxFeatures]
	}

	best := math.Inf(1)
	type pair struct {
		v, y, w float64
	}
	for _, f := range feats {
		pairs := make([]pair, len(x))
		for i := range x {
			pairs[i] = pair{v: x[i][f], y: y[i], w: w[i]}
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].v < pairs[j].v })

		if cfg.classes > 0 {
			leftCount := make([]float64, cfg.classes)
			rightCount := make([]float64, cfg.classes)
			var leftW, rightW float64
			for _, p := range pairs {
				rightCount[int(p.y)] += p.w
				rightW += p.w
			}
			for i := 0; i < len(pairs)-1; i++ {
				c := int(pairs[i].y)
				leftCount[c] += pairs[i].w
				leftW += pairs[i].w
				rightCount[c] -= pairs[i].w
				rightW -= pairs[i].w
				if pairs[i].v == pairs[i+1].v {
					continue
				}
				imp := leftW*gini(leftCount, leftW) + rightW*gini(rightCount, rightW)
				if imp < best {
					best = imp
					feature = f
					threshold = (pairs[i].v + pairs[i+1].v) / 2
					ok = true
				}
			}
		} else {
			var leftW, leftSum, leftSq float64
			var rightW, rightSum, rightSq float64
			for _, p := range pairs {
				rightW += p.w
				rightSum += p.w * p.y
				rightSq += p.w * p.y * p.y
			}
			for i := 0; i < len(pairs)-1; i++ {
				pw, py := pairs[i].w, pairs[i].y
				leftW += pw
				leftSum += pw * py
				leftSq += pw * py * py
				rightW -= pw
				rightSum -= pw * py
				rightSq -= pw * py * py
				if pairs[i].v == pairs[i+1].v {
					continue
				}
				imp := sse(leftW, leftSum, leftSq) + sse(rightW, rightSum, rightSq)
				if imp < best {
					best = imp
					feature = f
					threshold = (pairs[i].v + pairs[i+1].v) / 2
					ok = true
				}
			}
		}
	}
	return feature, threshold, ok
}

// gini computes the Gini impurity of a weighted class count vector.
func gini(counts []float64, total float64) float64 {
	if total <= 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		p := c / total
		g -= p * p
	}
	return g
}

// sse computes weighted sum of squared errors around the weighted mean from
// running moments.
func sse(w, sum, sq float64) float64 {
	if w <= 0 {
		return 0
	}
	mean := sum / w
	return sq - 2*mean*sum + w*mean*mean
}

// leafValue summarizes a leaf: class distribution or weighted mean.
func leafValue(y, w []float64, classes int) []float64 {
	if classes > 0 {
		dist := make([]float64, classes)
		var total float64
		for i, yi := range y {
			dist[int(yi)] += w[i]
			total += w[i]
		}
		if total > 0 {
			for i := range dist {
				dist[i] /= total
			}
		}
		return dist
	}
	var sum, total float64
	for i, yi := range y {
		sum += w[i] * yi
		total += w[i]
	}
	if total == 0 {
		return []float64{0}
	}
	return []float64{sum / total}
}

func pure(y []float64) bool {
	for i := 1; i < len(y); i++ {
		if y[i] != y[0] {
			return false
		}
	}
	return true
}

func argmax(vals []float64) int {
	best := 0
	for i, v := range vals {
		if v > vals[best] {
			best = i
		}
	}
	return best
}
