// Package dataset loads and validates the hourly bike rental observations
// used for training and inference. A training dataset carries the rental
// counts while a test dataset only carries the shared observation schema.
package dataset

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoRows         = errors.New("no observations in dataset")
	ErrNonMonotonic   = errors.New("observation timestamps are not strictly increasing")
	ErrNoTargetColumn = errors.New("dataset has no rental counts")
)

// Observation is a single hour of rental context. The weather measurements
// may be NaN after loading when the source file left them blank; those are
// filled by interpolation during feature engineering.
type Observation struct {
	Timestamp  time.Time
	Season     int
	Holiday    bool
	WorkingDay bool
	Weather    float64
	Temp       float64
	ATemp      float64
	Humidity   float64
	Windspeed  float64

	// Targets, only populated on training data.
	Casual     float64
	Registered float64
	Count      float64
}

// Dataset is an ordered, immutable snapshot of observations. HasTarget
// reports whether the rows carry rental counts.
type Dataset struct {
	Rows      []Observation
	HasTarget bool
}

// New validates the observation ordering and returns a dataset. Timestamps
// must be strictly increasing so interpolation and rolling statistics are
// well defined.
func New(rows []Observation, hasTarget bool) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	var lastT time.Time
	for i, row := range rows {
		if row.Timestamp.Before(lastT) || row.Timestamp.Equal(lastT) {
			return nil, fmt.Errorf("non-monotonic timestamp at row %d, %w", i, ErrNonMonotonic)
		}
		lastT = row.Timestamp
	}

	rowsCopy := make([]Observation, len(rows))
	copy(rowsCopy, rows)
	return &Dataset{
		Rows:      rowsCopy,
		HasTarget: hasTarget,
	}, nil
}

func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Times returns the observation timestamps in row order.
func (d *Dataset) Times() []time.Time {
	t := make([]time.Time, len(d.Rows))
	for i, row := range d.Rows {
		t[i] = row.Timestamp
	}
	return t
}

// Counts returns the rental counts in row order. Fails on a dataset loaded
// without targets.
func (d *Dataset) Counts() ([]float64, error) {
	if !d.HasTarget {
		return nil, ErrNoTargetColumn
	}
	y := make([]float64, len(d.Rows))
	for i, row := range d.Rows {
		y[i] = row.Count
	}
	return y, nil
}

// Copy returns a deep copy so feature engineering can adjust calendar flags
// without mutating the loaded snapshot.
func (d *Dataset) Copy() *Dataset {
	rows := make([]Observation, len(d.Rows))
	copy(rows, d.Rows)
	return &Dataset{
		Rows:      rows,
		HasTarget: d.HasTarget,
	}
}
