package bikecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"bikecast/models"
)

var ErrBlendLenMismatch = errors.New("blend inputs have different lengths")

// Blend combines two log-scale prediction vectors with the given weights,
// inverse-transforms the result back to the count scale and clips it at
// zero. Counts cannot be negative.
func Blend(logA, logB []float64, weights []float64) ([]float64, error) {
	if len(logA) != len(logB) {
		return nil, fmt.Errorf("have %d and %d predictions, %w", len(logA), len(logB), ErrBlendLenMismatch)
	}
	if len(weights) != 2 {
		return nil, ErrBadBlendWeights
	}

	out := make([]float64, len(logA))
	for i := range logA {
		blended := weights[0]*logA[i] + weights[1]*logB[i]
		out[i] = math.Max(0, math.Expm1(blended))
	}
	return out, nil
}

// learnBlendWeights refits the combination weights by least squares of the
// log-scale member predictions against the log-scale training target, with
// no intercept so the blend stays a pure weighting.
func learnBlendWeights(logA, logB, logTarget []float64) ([]float64, error) {
	if len(logA) != len(logB) || len(logA) != len(logTarget) {
		return nil, ErrBlendLenMismatch
	}

	x := mat.NewDense(len(logA), 2, nil)
	for i := range logA {
		x.Set(i, 0, logA[i])
		x.Set(i, 1, logB[i])
	}
	y := mat.NewDense(len(logTarget), 1, logTarget)

	ols, err := models.NewOLS(&models.OLSOptions{FitIntercept: false})
	if err != nil {
		return nil, err
	}
	if err := ols.Fit(x, y); err != nil {
		return nil, fmt.Errorf("unable to fit blend weights, %w", err)
	}
	return ols.Coef(), nil
}
