package models

import (
	"math/rand/v2"
	"sort"
)

// treeOptions are the growth limits shared by the ensemble regressors.
type treeOptions struct {
	maxDepth        int // 0 means unlimited
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int // 0 means consider every feature
}

// treeNode is one node of a regression tree. A node with no children is a
// leaf predicting its value.
type treeNode struct {
	feature   int
	threshold float64
	value     float64
	left      *treeNode
	right     *treeNode
}

func (n *treeNode) leaf() bool {
	return n.left == nil
}

func (n *treeNode) predict(row []float64) float64 {
	for !n.leaf() {
		if row[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// growTree fits a regression tree over the rows referenced by idx using
// variance-reduction splits. rng drives the feature subsampling only, so a
// fixed seed yields an identical tree.
func growTree(x [][]float64, y []float64, idx []int, depth int, opt treeOptions, rng *rand.Rand) *treeNode {
	node := &treeNode{value: meanAt(y, idx)}
	if len(idx) < opt.minSamplesSplit || len(idx) < 2*opt.minSamplesLeaf {
		return node
	}
	if opt.maxDepth > 0 && depth >= opt.maxDepth {
		return node
	}

	feat, thresh, ok := bestSplit(x, y, idx, opt, rng)
	if !ok {
		return node
	}

	leftIdx := make([]int, 0, len(idx))
	rightIdx := make([]int, 0, len(idx))
	for _, i := range idx {
		if x[i][feat] <= thresh {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}

	node.feature = feat
	node.threshold = thresh
	node.left = growTree(x, y, leftIdx, depth+1, opt, rng)
	node.right = growTree(x, y, rightIdx, depth+1, opt, rng)
	return node
}

// bestSplit scans candidate features for the split with the largest sum of
// squares reduction. Reports false when no split separates the rows into two
// leaves of at least minSamplesLeaf each with positive gain.
func bestSplit(x [][]float64, y []float64, idx []int, opt treeOptions, rng *rand.Rand) (int, float64, bool) {
	nFeat := len(x[idx[0]])
	features := make([]int, nFeat)
	for i := range features {
		features[i] = i
	}
	if opt.maxFeatures > 0 && opt.maxFeatures < nFeat {
		rng.Shuffle(nFeat, func(i, j int) {
			features[i], features[j] = features[j], features[i]
		})
		features = features[:opt.maxFeatures]
	}

	var totalSum, totalSq float64
	for _, i := range idx {
		totalSum += y[i]
		totalSq += y[i] * y[i]
	}
	n := float64(len(idx))
	totalSS := totalSq - totalSum*totalSum/n

	minLeaf := opt.minSamplesLeaf
	if minLeaf < 1 {
		minLeaf = 1
	}

	var (
		bestFeat   int
		bestThresh float64
		bestGain   float64
		found      bool
	)

	order := make([]int, len(idx))
	for _, feat := range features {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool {
			return x[order[a]][feat] < x[order[b]][feat]
		})

		var leftSum, leftSq float64
		for pos := 0; pos < len(order)-minLeaf; pos++ {
			i := order[pos]
			leftSum += y[i]
			leftSq += y[i] * y[i]

			if pos+1 < minLeaf {
				continue
			}
			curr := x[i][feat]
			next := x[order[pos+1]][feat]
			if curr == next {
				continue
			}

			nl := float64(pos + 1)
			nr := n - nl
			leftSS := leftSq - leftSum*leftSum/nl
			rightSum := totalSum - leftSum
			rightSS := (totalSq - leftSq) - rightSum*rightSum/nr

			gain := totalSS - leftSS - rightSS
			if gain > bestGain {
				bestGain = gain
				bestFeat = feat
				bestThresh = curr + (next-curr)/2
				found = true
			}
		}
	}
	return bestFeat, bestThresh, found
}

func meanAt(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}
