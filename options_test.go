package bikecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikecast/feature"
)

func TestOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt func() *Options
		err error
	}{
		"nil": {
			opt: func() *Options { return nil },
		},
		"default": {
			opt: NewDefaultOptions,
		},
		"fixed blend weights": {
			opt: func() *Options {
				opt := NewDefaultOptions()
				opt.BlendWeights = []float64{0.6, 0.4}
				return opt
			},
		},
		"single blend weight": {
			opt: func() *Options {
				opt := NewDefaultOptions()
				opt.BlendWeights = []float64{1.0}
				return opt
			},
			err: ErrBadBlendWeights,
		},
		"weights not summing to one": {
			opt: func() *Options {
				opt := NewDefaultOptions()
				opt.BlendWeights = []float64{0.6, 0.6}
				return opt
			},
			err: ErrBadBlendWeights,
		},
		"bad cutoff day": {
			opt: func() *Options {
				opt := NewDefaultOptions()
				opt.ValidationCutoffDay = 31
				return opt
			},
			err: ErrBadCutoffDay,
		},
		"bad rolling window": {
			opt: func() *Options {
				opt := NewDefaultOptions()
				opt.FeatureOptions = &feature.Options{RollingWindow: -1}
				return opt
			},
			err: feature.ErrBadWindow,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt, err := td.opt().Validate()
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, opt.FeatureOptions)
			assert.NotNil(t, opt.SearchOptions)
			assert.NotNil(t, opt.ForestSpace)
			assert.NotNil(t, opt.GBMSpace)
		})
	}
}
