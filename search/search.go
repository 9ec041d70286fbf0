// Package search implements seeded randomized hyperparameter search. A
// bounded number of candidate configurations is drawn from a space and each
// is scored by k-fold cross-validated RMSLE on the count scale.
package search

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"bikecast/metrics"
	"bikecast/models"
)

var (
	ErrNoIterations  = errors.New("search needs at least 1 iteration")
	ErrBadFolds      = errors.New("cross validation needs at least 2 folds")
	ErrTooFewSamples = errors.New("not enough samples for the requested folds")
	ErrNoSampler     = errors.New("no candidate sampler")
	ErrNoValidConfig = errors.New("no candidate configuration produced a valid fit")
)

// Sampler draws one random candidate from a bounded hyperparameter space
// along with a short description of the drawn configuration.
type Sampler func(rng *rand.Rand) (models.Regressor, string, error)

// Options represents input options to run a randomized search.
type Options struct {
	// Iterations is the number of candidate configurations to draw.
	Iterations int

	// Folds is the number of cross validation folds per candidate.
	Folds int

	// Seed primes the candidate draws and all model-level sampling, making
	// the whole search reproducible.
	Seed uint64
}

// NewDefaultOptions returns a default set of search options
func NewDefaultOptions() *Options {
	return &Options{
		Iterations: 20,
		Folds:      3,
	}
}

// Validate runs basic validation on search options
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	if o.Iterations < 1 {
		return nil, ErrNoIterations
	}
	if o.Folds < 2 {
		return nil, ErrBadFolds
	}
	return o, nil
}

// Trial records one scored candidate configuration.
type Trial struct {
	Config string  `json:"config"`
	RMSLE  float64 `json:"rmsle"`
}

// Result holds the best candidate refit on the full training data along with
// every scored trial.
type Result struct {
	Best      models.Regressor
	BestTrial Trial
	Trials    []Trial
}

// Run draws opt.Iterations candidates from sample and returns the one with
// the lowest cross-validated RMSLE, refit on all of x. The target y is on
// the log scale; scoring converts predictions back to counts first.
func Run(x *mat.Dense, y []float64, sample Sampler, opt *Options) (*Result, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if sample == nil {
		return nil, ErrNoSampler
	}

	m, _ := x.Dims()
	if len(y) != m {
		return nil, fmt.Errorf("training data has %d rows and target has %d, %w", m, len(y), models.ErrTargetLenMismatch)
	}
	if m < 2*opt.Folds {
		return nil, fmt.Errorf("%d samples for %d folds, %w", m, opt.Folds, ErrTooFewSamples)
	}

	rng := rand.New(rand.NewPCG(opt.Seed, 0))

	res := &Result{
		BestTrial: Trial{RMSLE: math.Inf(1)},
		Trials:    make([]Trial, 0, opt.Iterations),
	}
	var best models.Regressor

	for iter := 0; iter < opt.Iterations; iter++ {
		candidate, config, err := sample(rng)
		if err != nil {
			return nil, fmt.Errorf("unable to sample candidate %d, %w", iter, err)
		}

		score, err := crossValidate(candidate, x, y, opt.Folds)
		if err != nil {
			slog.Warn("skipping candidate", "config", config, "error", err.Error())
			continue
		}

		trial := Trial{Config: config, RMSLE: score}
		res.Trials = append(res.Trials, trial)
		if score < res.BestTrial.RMSLE {
			res.BestTrial = trial
			best = candidate
		}
		slog.Debug("scored candidate", "config", config, "rmsle", score)
	}

	if best == nil {
		return nil, ErrNoValidConfig
	}

	if err := best.Fit(x, mat.NewDense(len(y), 1, y)); err != nil {
		return nil, fmt.Errorf("unable to refit best configuration, %w", err)
	}
	res.Best = best
	return res, nil
}

// crossValidate scores one candidate by contiguous k-fold splits, keeping
// fold assignment independent of the random state.
func crossValidate(candidate models.Regressor, x *mat.Dense, y []float64, folds int) (float64, error) {
	m, _ := x.Dims()

	var sum float64
	for fold := 0; fold < folds; fold++ {
		lo := fold * m / folds
		hi := (fold + 1) * m / folds

		trainIdx := make([]int, 0, m-(hi-lo))
		validIdx := make([]int, 0, hi-lo)
		for i := 0; i < m; i++ {
			if i >= lo && i < hi {
				validIdx = append(validIdx, i)
			} else {
				trainIdx = append(trainIdx, i)
			}
		}

		trainX, trainY := subset(x, y, trainIdx)
		validX, validY := subset(x, y, validIdx)

		if err := candidate.Fit(trainX, mat.NewDense(len(trainY), 1, trainY)); err != nil {
			return 0, fmt.Errorf("fold %d fit, %w", fold, err)
		}
		preds, err := candidate.Predict(validX)
		if err != nil {
			return 0, fmt.Errorf("fold %d predict, %w", fold, err)
		}

		score, err := metrics.RMSLE(toCounts(preds), toCounts(validY))
		if err != nil {
			return 0, fmt.Errorf("fold %d score, %w", fold, err)
		}
		sum += score
	}
	return sum / float64(folds), nil
}

func subset(x *mat.Dense, y []float64, idx []int) (*mat.Dense, []float64) {
	_, n := x.Dims()
	outX := mat.NewDense(len(idx), n, nil)
	outY := make([]float64, len(idx))
	for to, from := range idx {
		outX.SetRow(to, x.RawRowView(from))
		outY[to] = y[from]
	}
	return outX, outY
}

// toCounts maps log-scale values back to the count scale, clipping at zero
// since counts cannot be negative.
func toCounts(logVals []float64) []float64 {
	out := make([]float64, len(logVals))
	for i, v := range logVals {
		out[i] = math.Max(0, math.Expm1(v))
	}
	return out
}
