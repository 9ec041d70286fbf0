// Package models is a collection of regression fitting implementations used
// to predict log-scaled rental counts. The blending step only sees the
// Regressor interface, so it does not care which concrete algorithm produced
// a prediction vector.
package models

import (
	"gonum.org/v1/gonum/mat"
)

// Regressor is an opaque fit/predict capability over a design matrix.
type Regressor interface {
	Fit(x, y mat.Matrix) error
	Predict(x mat.Matrix) ([]float64, error)
}

// matrixToRows copies a design matrix into per-observation rows.
func matrixToRows(x mat.Matrix) [][]float64 {
	m, n := x.Dims()
	rows := make([][]float64, m)
	for i := 0; i < m; i++ {
		rows[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			rows[i][j] = x.At(i, j)
		}
	}
	return rows
}

// targetToSlice copies a target matrix of m rows and a single column into a
// flat slice.
func targetToSlice(y mat.Matrix, m int) ([]float64, error) {
	ym, yn := y.Dims()
	if ym != m || yn != 1 {
		return nil, ErrTargetLenMismatch
	}
	out := make([]float64, m)
	for i := 0; i < m; i++ {
		out[i] = y.At(i, 0)
	}
	return out, nil
}
