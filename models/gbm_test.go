package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestGBMOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt      *GBMOptions
		err      error
		expected *GBMOptions
	}{
		"nil": {nil, nil, NewDefaultGBMOptions()},
		"valid": {
			&GBMOptions{NumStages: 50, LearningRate: 0.05, MaxDepth: 3, MinSamplesSplit: 2, MinSamplesLeaf: 1, Subsample: 0.8},
			nil,
			&GBMOptions{NumStages: 50, LearningRate: 0.05, MaxDepth: 3, MinSamplesSplit: 2, MinSamplesLeaf: 1, Subsample: 0.8},
		},
		"no stages": {
			&GBMOptions{LearningRate: 0.1, MinSamplesSplit: 2, MinSamplesLeaf: 1, Subsample: 1},
			ErrNoTrees,
			nil,
		},
		"bad learning rate": {
			&GBMOptions{NumStages: 10, LearningRate: 1.5, MinSamplesSplit: 2, MinSamplesLeaf: 1, Subsample: 1},
			ErrBadLearningRate,
			nil,
		},
		"bad subsample": {
			&GBMOptions{NumStages: 10, LearningRate: 0.1, MinSamplesSplit: 2, MinSamplesLeaf: 1, Subsample: 0},
			ErrBadSubsample,
			nil,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt, err := td.opt.Validate()
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.expected, opt)
		})
	}
}

func TestGBMFitPredict(t *testing.T) {
	x, y := stepData()

	gbm, err := NewGBM(&GBMOptions{
		NumStages:       50,
		LearningRate:    0.2,
		MaxDepth:        2,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Subsample:       1.0,
		Seed:            42,
	})
	require.NoError(t, err)
	require.NoError(t, gbm.Fit(x, y))

	preds, err := gbm.Predict(x)
	require.NoError(t, err)
	require.Len(t, preds, 40)

	for i, pred := range preds {
		expected := 5.0
		if i >= 20 {
			expected = 20.0
		}
		assert.InDelta(t, expected, pred, 1.0, "row %d", i)
	}
}

func TestGBMDeterministic(t *testing.T) {
	x, y := stepData()
	opt := &GBMOptions{
		NumStages:       20,
		LearningRate:    0.1,
		MaxDepth:        2,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Subsample:       0.7,
		Seed:            7,
	}

	run := func() []float64 {
		gbm, err := NewGBM(opt)
		require.NoError(t, err)
		require.NoError(t, gbm.Fit(x, y))
		preds, err := gbm.Predict(x)
		require.NoError(t, err)
		return preds
	}

	assert.Equal(t, run(), run())
}

func TestGBMErrors(t *testing.T) {
	x, y := stepData()

	gbm, err := NewGBM(nil)
	require.NoError(t, err)

	_, err = gbm.Predict(x)
	require.ErrorIs(t, err, ErrNotFitted)

	require.ErrorIs(t, gbm.Fit(nil, y), ErrNoTrainingMatrix)
	require.ErrorIs(t, gbm.Fit(x, nil), ErrNoTargetMatrix)

	badY := mat.NewDense(3, 1, []float64{1, 2, 3})
	require.ErrorIs(t, gbm.Fit(x, badY), ErrTargetLenMismatch)

	require.NoError(t, gbm.Fit(x, y))
	badX := mat.NewDense(2, 5, make([]float64, 10))
	_, err = gbm.Predict(badX)
	require.ErrorIs(t, err, ErrFeatureLenMismatch)
}
