package forecast

import (
	"fmt"
	"math/rand"
	"sort"
)

// leaf marks a node without a split.
const leaf = -1

// Node is one decision rule of a regression tree. Leaves have Feature == -1.
// Children are always stored after their parent.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Value     float64 `json:"value"`
}

// Tree is a regression tree stored as a flat node list rooted at index 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

func (t Tree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature == leaf {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

func (t Tree) validate() error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	for i, n := range t.Nodes {
		if n.Feature == leaf {
			continue
		}
		if n.Feature < 0 || n.Feature >= numFeatures {
			return fmt.Errorf("node %d splits on unknown feature %d", i, n.Feature)
		}
		if n.Left <= i || n.Right <= i || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has invalid children %d/%d", i, n.Left, n.Right)
		}
	}
	return nil
}

// treeBuilder grows a CART regression tree minimising squared error.
type treeBuilder struct {
	x      [][]float64
	y      []float64
	params Params
	rng    *rand.Rand
	nodes  []Node
}

func growTree(x [][]float64, y []float64, rows []int, params Params, rng *rand.Rand) Tree {
	b := &treeBuilder{x: x, y: y, params: params, rng: rng}
	b.build(rows, 0)
	return Tree{Nodes: b.nodes}
}

func (b *treeBuilder) build(rows []int, depth int) int {
	id := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: leaf, Value: b.mean(rows)})

	if len(rows) < b.params.MinSamplesSplit || b.pure(rows) {
		return id
	}
	if b.params.MaxDepth > 0 && depth >= b.params.MaxDepth {
		return id
	}

	feature, threshold, ok := b.bestSplit(rows)
	if !ok {
		return id
	}

	var left, right []int
	for _, r := range rows {
		if b.x[r][feature] <= threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)

	b.nodes[id].Feature = feature
	b.nodes[id].Threshold = threshold
	b.nodes[id].Left = l
	b.nodes[id].Right = r

	return id
}

// bestSplit scans every feature (in a seeded random order, which decides
// ties) and returns the split with the lowest summed squared error.
func (b *treeBuilder) bestSplit(rows []int) (int, float64, bool) {
	var (
		bestFeature   int
		bestThreshold float64
		bestGain      float64
		found         bool
	)

	sorted := make([]int, len(rows))
	for _, f := range b.rng.Perm(numFeatures) {
		copy(sorted, rows)
		sort.SliceStable(sorted, func(i, j int) bool {
			return b.x[sorted[i]][f] < b.x[sorted[j]][f]
		})

		var total float64
		for _, r := range sorted {
			total += b.y[r]
		}

		// Maximising sumL²/nL + sumR²/nR is equivalent to minimising SSE.
		var sumLeft float64
		n := float64(len(sorted))
		for k := 0; k < len(sorted)-1; k++ {
			sumLeft += b.y[sorted[k]]

			lo, hi := b.x[sorted[k]][f], b.x[sorted[k+1]][f]
			if lo == hi {
				continue
			}

			nLeft := float64(k + 1)
			sumRight := total - sumLeft
			gain := sumLeft*sumLeft/nLeft + sumRight*sumRight/(n-nLeft)
			if !found || gain > bestGain {
				threshold := lo + (hi-lo)/2
				if threshold >= hi {
					threshold = lo
				}
				bestFeature, bestThreshold, bestGain, found = f, threshold, gain, true
			}
		}
	}

	return bestFeature, bestThreshold, found
}

func (b *treeBuilder) mean(rows []int) float64 {
	if len(rows) == 0 {
		return 0
	}
	var sum float64
	for _, r := range rows {
		sum += b.y[r]
	}
	return sum / float64(len(rows))
}

func (b *treeBuilder) pure(rows []int) bool {
	for _, r := range rows[1:] {
		if b.y[r] != b.y[rows[0]] {
			return false
		}
	}
	return true
}
