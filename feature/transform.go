package feature

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrAllMissing = errors.New("column has no valid values to interpolate from")
	ErrBadWindow  = errors.New("rolling window must be at least 1")
)

// Log1p applies log(1+v) elementwise. Rental counts are heavily right-skewed
// and the models train on this stabilized scale.
func Log1p(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = math.Log1p(v)
	}
	return out
}

// Expm1 applies exp(v)-1 elementwise, inverting Log1p exactly up to float
// tolerance.
func Expm1(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = math.Expm1(v)
	}
	return out
}

// Interpolate fills NaN gaps by linear interpolation between the nearest
// valid neighbors in row order. Gaps at either boundary take the nearest
// valid value. A column with no valid value at all is an error.
func Interpolate(vals []float64) ([]float64, error) {
	out := make([]float64, len(vals))
	copy(out, vals)

	prev := -1
	for i := 0; i < len(out); i++ {
		if math.IsNaN(out[i]) {
			continue
		}
		switch {
		case prev < 0 && i > 0:
			// leading gap, backfill from the first valid value
			for j := 0; j < i; j++ {
				out[j] = out[i]
			}
		case prev >= 0 && i-prev > 1:
			step := (out[i] - out[prev]) / float64(i-prev)
			for j := prev + 1; j < i; j++ {
				out[j] = out[prev] + step*float64(j-prev)
			}
		}
		prev = i
	}
	if prev < 0 {
		return nil, ErrAllMissing
	}
	// trailing gap, forward fill from the last valid value
	for j := prev + 1; j < len(out); j++ {
		out[j] = out[prev]
	}
	return out, nil
}

// RollingMean smooths vals with a trailing window of the given size in row
// order. The first window-1 rows use the partial prefix window, keeping the
// output fully defined and deterministic.
func RollingMean(vals []float64, window int) ([]float64, error) {
	if window < 1 {
		return nil, fmt.Errorf("window of %d, %w", window, ErrBadWindow)
	}

	out := make([]float64, len(vals))
	var sum float64
	for i := 0; i < len(vals); i++ {
		sum += vals[i]
		n := window
		if i+1 < window {
			n = i + 1
		} else if i >= window {
			sum -= vals[i-window]
		}
		out[i] = sum / float64(n)
	}
	return out, nil
}

// Round applies half-away-from-zero rounding elementwise. Used on
// interpolated integer-valued columns like weather and humidity.
func Round(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = math.Round(v)
	}
	return out
}

func indicator(n int, pred func(i int) bool) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if pred(i) {
			out[i] = 1.0
		}
	}
	return out
}
