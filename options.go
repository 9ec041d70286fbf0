package bikecast

import (
	"errors"
	"math"

	"bikecast/feature"
	"bikecast/search"
)

var (
	ErrBadBlendWeights  = errors.New("fixed blend weights must be two values summing to 1")
	ErrBadCutoffDay     = errors.New("validation cutoff day must be within the month")
	ErrNoForestSpace    = errors.New("no forest hyperparameter space")
	ErrNoBoostingSpace  = errors.New("no boosting hyperparameter space")
	ErrNoSearchOptions  = errors.New("no search options")
	ErrNoFeatureOptions = errors.New("no feature options")
)

// Options configures the full pipeline. All knobs are plain constants with
// working defaults; there is no external configuration surface.
type Options struct {
	// FeatureOptions controls the engineered feature policies.
	FeatureOptions *feature.Options

	// SearchOptions bounds the randomized hyperparameter search. The seed
	// set here drives every random draw in the pipeline.
	SearchOptions *search.Options

	// ForestSpace and GBMSpace are the candidate hyperparameter grids.
	ForestSpace *search.ForestSpace
	GBMSpace    *search.GBMSpace

	// BlendWeights fixes the model combination weights. When nil the
	// weights are refit by least squares against the training counts.
	// When set, the two weights must sum to 1.
	BlendWeights []float64

	// ValidationCutoffDay splits each month for the reported validation
	// scores. Days after the cutoff form the validation set.
	ValidationCutoffDay int
}

// NewDefaultOptions returns a default set of pipeline options
func NewDefaultOptions() *Options {
	return &Options{
		FeatureOptions:      feature.NewDefaultOptions(),
		SearchOptions:       search.NewDefaultOptions(),
		ForestSpace:         search.NewDefaultForestSpace(),
		GBMSpace:            search.NewDefaultGBMSpace(),
		ValidationCutoffDay: 15,
	}
}

// Validate runs basic validation on pipeline options
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}

	featOpt, err := o.FeatureOptions.Validate()
	if err != nil {
		return nil, err
	}
	o.FeatureOptions = featOpt

	searchOpt, err := o.SearchOptions.Validate()
	if err != nil {
		return nil, err
	}
	o.SearchOptions = searchOpt

	forestSpace, err := o.ForestSpace.Validate()
	if err != nil {
		return nil, err
	}
	o.ForestSpace = forestSpace

	gbmSpace, err := o.GBMSpace.Validate()
	if err != nil {
		return nil, err
	}
	o.GBMSpace = gbmSpace

	if o.BlendWeights != nil {
		if len(o.BlendWeights) != 2 {
			return nil, ErrBadBlendWeights
		}
		if math.Abs(o.BlendWeights[0]+o.BlendWeights[1]-1.0) > 1e-9 {
			return nil, ErrBadBlendWeights
		}
	}

	if o.ValidationCutoffDay == 0 {
		o.ValidationCutoffDay = 15
	}
	if o.ValidationCutoffDay < 1 || o.ValidationCutoffDay > 28 {
		return nil, ErrBadCutoffDay
	}
	return o, nil
}
