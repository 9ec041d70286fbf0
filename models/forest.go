package models

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoTrees        = errors.New("number of trees must be at least 1")
	ErrNegativeDepth  = errors.New("negative max depth")
	ErrBadMinSamples  = errors.New("min samples split must be at least 2 and min samples leaf at least 1")
	ErrBadMaxFeatures = errors.New("negative max features")
)

// ForestOptions represents input options to fit a bagged forest of
// regression trees.
type ForestOptions struct {
	// NumTrees is the ensemble size.
	NumTrees int

	// MaxDepth limits tree depth. 0 means unlimited.
	MaxDepth int

	// MinSamplesSplit is the smallest node eligible for splitting.
	MinSamplesSplit int

	// MinSamplesLeaf is the smallest allowed leaf.
	MinSamplesLeaf int

	// MaxFeatures is the number of features sampled per split. 0 considers
	// every feature.
	MaxFeatures int

	// Bootstrap draws each tree's sample with replacement when set.
	// Otherwise every tree trains on the full dataset.
	Bootstrap bool

	// Seed primes the sampling generators so a fit is reproducible.
	Seed uint64
}

// NewDefaultForestOptions returns a default set of forest options
func NewDefaultForestOptions() *ForestOptions {
	return &ForestOptions{
		NumTrees:        100,
		MaxDepth:        15,
		MinSamplesSplit: 5,
		MinSamplesLeaf:  2,
		Bootstrap:       true,
	}
}

// Validate runs basic validation on forest options
func (o *ForestOptions) Validate() (*ForestOptions, error) {
	if o == nil {
		return NewDefaultForestOptions(), nil
	}
	if o.NumTrees < 1 {
		return nil, ErrNoTrees
	}
	if o.MaxDepth < 0 {
		return nil, ErrNegativeDepth
	}
	if o.MinSamplesSplit < 2 || o.MinSamplesLeaf < 1 {
		return nil, ErrBadMinSamples
	}
	if o.MaxFeatures < 0 {
		return nil, ErrBadMaxFeatures
	}
	return o, nil
}

// Forest is a bagging ensemble of regression trees. Trees train
// independently on bootstrap samples and predictions average across the
// ensemble.
type Forest struct {
	opt   *ForestOptions
	trees []*treeNode
	nFeat int
}

func NewForest(opt *ForestOptions) (*Forest, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Forest{opt: opt}, nil
}

// Fit trains the forest. Trees fit concurrently with one seeded generator
// per tree, so results do not depend on goroutine scheduling.
func (f *Forest) Fit(x, y mat.Matrix) error {
	if f.opt == nil {
		return ErrNoOptions
	}
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}

	m, n := x.Dims()
	if m == 0 {
		return ErrNoSamples
	}

	rows := matrixToRows(x)
	target, err := targetToSlice(y, m)
	if err != nil {
		return fmt.Errorf("training data has %d rows, %w", m, err)
	}

	topt := treeOptions{
		maxDepth:        f.opt.MaxDepth,
		minSamplesSplit: f.opt.MinSamplesSplit,
		minSamplesLeaf:  f.opt.MinSamplesLeaf,
		maxFeatures:     f.opt.MaxFeatures,
	}

	trees := make([]*treeNode, f.opt.NumTrees)
	var wg sync.WaitGroup
	for t := 0; t < f.opt.NumTrees; t++ {
		wg.Add(1)
		go func(t int) {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(f.opt.Seed, uint64(t)))

			idx := make([]int, m)
			for i := 0; i < m; i++ {
				if f.opt.Bootstrap {
					idx[i] = rng.IntN(m)
				} else {
					idx[i] = i
				}
			}
			trees[t] = growTree(rows, target, idx, 0, topt, rng)
		}(t)
	}
	wg.Wait()

	f.trees = trees
	f.nFeat = n
	return nil
}

// Predict averages the per-tree predictions for every row of the design
// matrix.
func (f *Forest) Predict(x mat.Matrix) ([]float64, error) {
	if len(f.trees) == 0 {
		return nil, ErrNotFitted
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	m, n := x.Dims()
	if n != f.nFeat {
		return nil, fmt.Errorf("design matrix has %d features, model has %d, %w", n, f.nFeat, ErrFeatureLenMismatch)
	}

	rows := matrixToRows(x)
	out := make([]float64, m)
	for i := 0; i < m; i++ {
		var sum float64
		for _, tree := range f.trees {
			sum += tree.predict(rows[i])
		}
		out[i] = sum / float64(len(f.trees))
	}
	return out, nil
}
