// Package feature turns raw rental observations into the engineered feature
// table consumed by the regression models. Every transform is a pure function
// over ordered rows with an explicit edge-case policy so the same code path
// runs on both the training and test splits.
package feature

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrLabelExists   = errors.New("label already exists in table")
	ErrLenMismatch   = errors.New("column has a different length than the table")
	ErrUnknownLabel  = errors.New("unknown column label")
	ErrEmptyTable    = errors.New("table has no columns")
	ErrInvalidValue  = errors.New("non-finite value in feature column")
	ErrFeatureParity = errors.New("feature columns do not match between tables")
)

// Table is an ordered collection of equal-length feature columns. Column
// order is insertion order and is part of the table's identity: two tables
// are only compatible when their labels match pairwise.
type Table struct {
	n      int
	labels []string
	data   map[string][]float64
}

// NewTable creates an empty feature table expecting columns of n rows.
func NewTable(n int) *Table {
	return &Table{
		n:    n,
		data: make(map[string][]float64),
	}
}

// Add appends a named column. The label must be unique and the column length
// must match the table row count.
func (tb *Table) Add(label string, vals []float64) error {
	if _, exists := tb.data[label]; exists {
		return fmt.Errorf("column %q, %w", label, ErrLabelExists)
	}
	if len(vals) != tb.n {
		return fmt.Errorf("column %q has %d rows, expected %d, %w", label, len(vals), tb.n, ErrLenMismatch)
	}
	tb.labels = append(tb.labels, label)
	tb.data[label] = vals
	return nil
}

func (tb *Table) Len() int {
	return tb.n
}

// Labels returns the column labels in insertion order.
func (tb *Table) Labels() []string {
	labels := make([]string, len(tb.labels))
	copy(labels, tb.labels)
	return labels
}

// Column returns the named column values.
func (tb *Table) Column(label string) ([]float64, error) {
	vals, exists := tb.data[label]
	if !exists {
		return nil, fmt.Errorf("column %q, %w", label, ErrUnknownLabel)
	}
	return vals, nil
}

// Matrix assembles the columns into a row-major design matrix with one row
// per observation and one column per feature, in label order.
func (tb *Table) Matrix() (*mat.Dense, error) {
	if len(tb.labels) == 0 {
		return nil, ErrEmptyTable
	}

	obs := make([]float64, tb.n*len(tb.labels))
	for featNum, label := range tb.labels {
		col := tb.data[label]
		for i := 0; i < tb.n; i++ {
			obs[i*len(tb.labels)+featNum] = col[i]
		}
	}
	return mat.NewDense(tb.n, len(tb.labels), obs), nil
}

// Validate scans every column for NaN or Inf values. Residual missing values
// after interpolation are a data-quality error, not something to feed a model.
func (tb *Table) Validate() error {
	for _, label := range tb.labels {
		for i, v := range tb.data[label] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("column %q row %d, %w", label, i, ErrInvalidValue)
			}
		}
	}
	return nil
}

// CheckParity verifies that other exposes exactly the same columns in the
// same order so a model fit on tb can score other.
func (tb *Table) CheckParity(other *Table) error {
	if len(tb.labels) != len(other.labels) {
		return fmt.Errorf("have %d columns, other has %d, %w", len(tb.labels), len(other.labels), ErrFeatureParity)
	}
	for i, label := range tb.labels {
		if other.labels[i] != label {
			return fmt.Errorf("column %d is %q, other has %q, %w", i, label, other.labels[i], ErrFeatureParity)
		}
	}
	return nil
}
