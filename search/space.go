package search

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"bikecast/models"
)

var ErrEmptySpace = errors.New("hyperparameter space has an empty dimension")

// ForestSpace is the bounded hyperparameter space for the bagged forest.
type ForestSpace struct {
	NumTrees        []int
	MaxDepth        []int
	MinSamplesSplit []int
	MinSamplesLeaf  []int
	Bootstrap       []bool
}

// NewDefaultForestSpace returns the forest search bounds tuned for the
// rental data.
func NewDefaultForestSpace() *ForestSpace {
	return &ForestSpace{
		NumTrees:        []int{100, 200, 300},
		MaxDepth:        []int{10, 15, 20},
		MinSamplesSplit: []int{2, 5, 10},
		MinSamplesLeaf:  []int{1, 2, 4},
		Bootstrap:       []bool{true, false},
	}
}

// Validate runs basic validation on the forest space
func (s *ForestSpace) Validate() (*ForestSpace, error) {
	if s == nil {
		return NewDefaultForestSpace(), nil
	}
	if len(s.NumTrees) == 0 || len(s.MaxDepth) == 0 || len(s.MinSamplesSplit) == 0 ||
		len(s.MinSamplesLeaf) == 0 || len(s.Bootstrap) == 0 {
		return nil, ErrEmptySpace
	}
	return s, nil
}

// Sampler returns a candidate sampler drawing uniformly from the space.
func (s *ForestSpace) Sampler() (Sampler, error) {
	s, err := s.Validate()
	if err != nil {
		return nil, err
	}
	return func(rng *rand.Rand) (models.Regressor, string, error) {
		opt := &models.ForestOptions{
			NumTrees:        pickInt(rng, s.NumTrees),
			MaxDepth:        pickInt(rng, s.MaxDepth),
			MinSamplesSplit: pickInt(rng, s.MinSamplesSplit),
			MinSamplesLeaf:  pickInt(rng, s.MinSamplesLeaf),
			Bootstrap:       pickBool(rng, s.Bootstrap),
			Seed:            rng.Uint64(),
		}
		forest, err := models.NewForest(opt)
		if err != nil {
			return nil, "", err
		}
		config := fmt.Sprintf(
			"forest trees=%d depth=%d split=%d leaf=%d bootstrap=%t",
			opt.NumTrees, opt.MaxDepth, opt.MinSamplesSplit, opt.MinSamplesLeaf, opt.Bootstrap,
		)
		return forest, config, nil
	}, nil
}

// GBMSpace is the bounded hyperparameter space for the boosting machine.
type GBMSpace struct {
	NumStages       []int
	MaxDepth        []int
	MinSamplesSplit []int
	MinSamplesLeaf  []int
	LearningRate    []float64
	Subsample       []float64
}

// NewDefaultGBMSpace returns the boosting search bounds tuned for the rental
// data.
func NewDefaultGBMSpace() *GBMSpace {
	return &GBMSpace{
		NumStages:       []int{100, 150, 200},
		MaxDepth:        []int{3, 4, 5},
		MinSamplesSplit: []int{2, 5, 10},
		MinSamplesLeaf:  []int{1, 2, 4},
		LearningRate:    []float64{0.01, 0.05, 0.1},
		Subsample:       []float64{0.8, 1.0},
	}
}

// Validate runs basic validation on the boosting space
func (s *GBMSpace) Validate() (*GBMSpace, error) {
	if s == nil {
		return NewDefaultGBMSpace(), nil
	}
	if len(s.NumStages) == 0 || len(s.MaxDepth) == 0 || len(s.MinSamplesSplit) == 0 ||
		len(s.MinSamplesLeaf) == 0 || len(s.LearningRate) == 0 || len(s.Subsample) == 0 {
		return nil, ErrEmptySpace
	}
	return s, nil
}

// Sampler returns a candidate sampler drawing uniformly from the space.
func (s *GBMSpace) Sampler() (Sampler, error) {
	s, err := s.Validate()
	if err != nil {
		return nil, err
	}
	return func(rng *rand.Rand) (models.Regressor, string, error) {
		opt := &models.GBMOptions{
			NumStages:       pickInt(rng, s.NumStages),
			MaxDepth:        pickInt(rng, s.MaxDepth),
			MinSamplesSplit: pickInt(rng, s.MinSamplesSplit),
			MinSamplesLeaf:  pickInt(rng, s.MinSamplesLeaf),
			LearningRate:    pickFloat(rng, s.LearningRate),
			Subsample:       pickFloat(rng, s.Subsample),
			Seed:            rng.Uint64(),
		}
		gbm, err := models.NewGBM(opt)
		if err != nil {
			return nil, "", err
		}
		config := fmt.Sprintf(
			"gbm stages=%d depth=%d split=%d leaf=%d lr=%g subsample=%g",
			opt.NumStages, opt.MaxDepth, opt.MinSamplesSplit, opt.MinSamplesLeaf, opt.LearningRate, opt.Subsample,
		)
		return gbm, config, nil
	}, nil
}

func pickInt(rng *rand.Rand, vals []int) int {
	return vals[rng.IntN(len(vals))]
}

func pickFloat(rng *rand.Rand, vals []float64) float64 {
	return vals[rng.IntN(len(vals))]
}

func pickBool(rng *rand.Rand, vals []bool) bool {
	return vals[rng.IntN(len(vals))]
}
