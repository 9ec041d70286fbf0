package models

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrBadLearningRate = errors.New("learning rate must be in (0, 1]")
	ErrBadSubsample    = errors.New("subsample fraction must be in (0, 1]")
)

// GBMOptions represents input options to fit a gradient boosting machine
// over regression trees with a squared error objective.
type GBMOptions struct {
	// NumStages is the number of boosting rounds.
	NumStages int

	// LearningRate shrinks each stage's contribution.
	LearningRate float64

	// MaxDepth limits the depth of each stage tree. Boosting wants shallow
	// trees.
	MaxDepth int

	// MinSamplesSplit is the smallest node eligible for splitting.
	MinSamplesSplit int

	// MinSamplesLeaf is the smallest allowed leaf.
	MinSamplesLeaf int

	// Subsample is the fraction of rows drawn without replacement for each
	// stage. 1.0 trains every stage on the full dataset.
	Subsample float64

	// Seed primes the row subsampling so a fit is reproducible.
	Seed uint64
}

// NewDefaultGBMOptions returns a default set of boosting options
func NewDefaultGBMOptions() *GBMOptions {
	return &GBMOptions{
		NumStages:       100,
		LearningRate:    0.1,
		MaxDepth:        3,
		MinSamplesSplit: 5,
		MinSamplesLeaf:  1,
		Subsample:       1.0,
	}
}

// Validate runs basic validation on boosting options
func (o *GBMOptions) Validate() (*GBMOptions, error) {
	if o == nil {
		return NewDefaultGBMOptions(), nil
	}
	if o.NumStages < 1 {
		return nil, ErrNoTrees
	}
	if o.LearningRate <= 0 || o.LearningRate > 1 {
		return nil, ErrBadLearningRate
	}
	if o.MaxDepth < 0 {
		return nil, ErrNegativeDepth
	}
	if o.MinSamplesSplit < 2 || o.MinSamplesLeaf < 1 {
		return nil, ErrBadMinSamples
	}
	if o.Subsample <= 0 || o.Subsample > 1 {
		return nil, ErrBadSubsample
	}
	return o, nil
}

// GBM is a boosting ensemble of shallow regression trees. Each stage fits
// the residual of the running prediction and contributes a shrunken
// correction.
type GBM struct {
	opt   *GBMOptions
	init  float64
	trees []*treeNode
	nFeat int
}

func NewGBM(opt *GBMOptions) (*GBM, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &GBM{opt: opt}, nil
}

// Fit trains the boosting stages sequentially. The stage trees are grown on
// least-squares residuals, optionally over a row subsample drawn from the
// seeded generator.
func (g *GBM) Fit(x, y mat.Matrix) error {
	if g.opt == nil {
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

	var initSum float64
	for _, v := range target {
		initSum += v
	}
	init := initSum / float64(m)

	topt := treeOptions{
		maxDepth:        g.opt.MaxDepth,
		minSamplesSplit: g.opt.MinSamplesSplit,
		minSamplesLeaf:  g.opt.MinSamplesLeaf,
	}

	rng := rand.New(rand.NewPCG(g.opt.Seed, 0))
	sampleSize := int(g.opt.Subsample * float64(m))
	if sampleSize < 1 {
		sampleSize = 1
	}

	pred := make([]float64, m)
	for i := range pred {
		pred[i] = init
	}
	residual := make([]float64, m)
	allIdx := make([]int, m)
	for i := range allIdx {
		allIdx[i] = i
	}

	trees := make([]*treeNode, 0, g.opt.NumStages)
	for stage := 0; stage < g.opt.NumStages; stage++ {
		for i := 0; i < m; i++ {
			residual[i] = target[i] - pred[i]
		}

		idx := allIdx
		if sampleSize < m {
			idx = rng.Perm(m)[:sampleSize]
		}

		tree := growTree(rows, residual, idx, 0, topt, rng)
		trees = append(trees, tree)

		for i := 0; i < m; i++ {
			pred[i] += g.opt.LearningRate * tree.predict(rows[i])
		}
	}

	g.init = init
	g.trees = trees
	g.nFeat = n
	return nil
}

// Predict sums the shrunken stage corrections on top of the initial
// prediction for every row of the design matrix.
func (g *GBM) Predict(x mat.Matrix) ([]float64, error) {
	if len(g.trees) == 0 {
		return nil, ErrNotFitted
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	m, n := x.Dims()
	if n != g.nFeat {
		return nil, fmt.Errorf("design matrix has %d features, model has %d, %w", n, g.nFeat, ErrFeatureLenMismatch)
	}

	rows := matrixToRows(x)
	out := make([]float64, m)
	for i := 0; i < m; i++ {
		pred := g.init
		for _, tree := range g.trees {
			pred += g.opt.LearningRate * tree.predict(rows[i])
		}
		out[i] = pred
	}
	return out, nil
}
