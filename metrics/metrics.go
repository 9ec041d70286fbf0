// Package metrics implements the regression scores used to tune and report
// on the rental count models. RMSLE is the competition metric.
package metrics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrResLenMismatch = errors.New("predicted and actual have different lengths")
	ErrNoSamples      = errors.New("no samples to score")
	ErrNegativeValue  = errors.New("negative value in count data")
)

// RMSLE computes the root mean squared logarithmic error,
// sqrt(mean((log(1+pred) - log(1+actual))^2)). The +1 offset keeps zero
// counts well defined. Negative inputs are rejected rather than clamped.
func RMSLE(predicted, actual []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}
	if len(actual) == 0 {
		return 0, ErrNoSamples
	}

	var sum float64
	for i := 0; i < len(actual); i++ {
		if predicted[i] < 0 || actual[i] < 0 {
			return 0, fmt.Errorf("sample %d, predicted %f, actual %f, %w", i, predicted[i], actual[i], ErrNegativeValue)
		}
		diff := math.Log1p(predicted[i]) - math.Log1p(actual[i])
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(actual))), nil
}

// MSE computes the mean squared error. A score of 0 means a perfect match
// with no errors.
func MSE(predicted, actual []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}
	if len(actual) == 0 {
		return 0, ErrNoSamples
	}

	var mse float64
	for i := 0; i < len(actual); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		mse += math.Pow(actual[i]-predicted[i], 2.0)
	}
	mse /= float64(len(actual))
	return mse, nil
}

// RSquared computes the r squared value between the predicted and actual where
// 1.0 means perfect fit and 0 represents no relationship
func RSquared(predicted, actual []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}

	predictCopy := make([]float64, 0, len(predicted))
	actualCopy := make([]float64, 0, len(actual))
	for i := 0; i < len(predicted); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		predictCopy = append(predictCopy, predicted[i])
		actualCopy = append(actualCopy, actual[i])
	}
	r2 := stat.RSquaredFrom(predictCopy, actualCopy, nil)
	if math.IsNaN(r2) {
		return 1.0, nil
	}
	return r2, nil
}
