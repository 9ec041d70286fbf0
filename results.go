package bikecast

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"bikecast/dataset"
)

var ErrNoResults = errors.New("no prediction results")

// Results holds the predicted rental counts for a batch of test
// observations, along with the per-model predictions that went into the
// blend.
type Results struct {
	T      []time.Time `json:"time"`
	Count  []float64   `json:"count"`
	Forest []float64   `json:"forest"`
	GBM    []float64   `json:"gbm"`
}

// WriteSubmission emits the competition submission table: one identifier
// column matching the test timestamps and one non-negative integer count
// column.
func (r *Results) WriteSubmission(w io.Writer) error {
	if r == nil || len(r.T) == 0 {
		return ErrNoResults
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"datetime", "count"}); err != nil {
		return fmt.Errorf("unable to write submission header, %w", err)
	}
	for i, t := range r.T {
		record := []string{
			t.Format(dataset.TimeLayout),
			strconv.Itoa(int(r.Count[i])),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("unable to write submission row %d, %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Scores reports the validation holdout metrics from a fit. RMSLE is the
// competition metric; MSE and R2 are computed on the blended counts.
type Scores struct {
	ForestRMSLE float64 `json:"forest_rmsle"`
	GBMRMSLE    float64 `json:"gbm_rmsle"`
	BlendRMSLE  float64 `json:"blend_rmsle"`
	MSE         float64 `json:"mean_squared_error"`
	R2          float64 `json:"r_squared"`
}
