// Package bikecast predicts hourly bike rental counts from historical usage,
// weather and calendar data. The pipeline is a single batch run: engineer
// features, tune and fit a bagged forest and a gradient boosting machine on
// log-transformed counts, blend the two, and emit a submission table.
package bikecast

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"bikecast/dataset"
	"bikecast/feature"
	"bikecast/metrics"
	"bikecast/models"
	"bikecast/search"
)

var (
	ErrNotFitted    = errors.New("predictor has not been fitted")
	ErrNoEvaluation = errors.New("no validation evaluation, fit skipped the holdout")
)

// Predictor fits the two-model blend and generates count predictions for
// test observations.
type Predictor struct {
	opt *Options

	agg        *feature.Aggregates
	trainTable *feature.Table

	forest      models.Regressor
	gbm         models.Regressor
	forestTrial search.Trial
	gbmTrial    search.Trial

	blendWeights []float64
	scores       *Scores
	eval         *evalSeries
}

type evalSeries struct {
	t         []time.Time
	actual    []float64
	predicted []float64
}

// New creates a new instance of a Predictor using the provided options. If
// no options are provided a default is used.
func New(opt *Options) (*Predictor, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Predictor{opt: opt}, nil
}

// Fit tunes and trains both models on the training dataset, refits the blend
// weights and computes the validation holdout scores.
func (p *Predictor) Fit(train *dataset.Dataset) error {
	if train == nil || train.Len() == 0 {
		return dataset.ErrNoRows
	}
	counts, err := train.Counts()
	if err != nil {
		return fmt.Errorf("unable to read training target, %w", err)
	}

	agg, err := feature.NewAggregates(train)
	if err != nil {
		return fmt.Errorf("unable to compute training aggregates, %w", err)
	}

	tb, err := feature.Build(train, agg, p.opt.FeatureOptions)
	if err != nil {
		return fmt.Errorf("unable to build training features, %w", err)
	}
	x, err := tb.Matrix()
	if err != nil {
		return fmt.Errorf("unable to assemble training matrix, %w", err)
	}
	yLog := feature.Log1p(counts)

	slog.Info("fitting predictor", "rows", train.Len(), "features", len(tb.Labels()))

	forestSampler, err := p.opt.ForestSpace.Sampler()
	if err != nil {
		return err
	}
	forestRes, err := search.Run(x, yLog, forestSampler, p.opt.SearchOptions)
	if err != nil {
		return fmt.Errorf("forest search, %w", err)
	}
	slog.Info("selected forest configuration", "config", forestRes.BestTrial.Config, "rmsle", forestRes.BestTrial.RMSLE)

	gbmSampler, err := p.opt.GBMSpace.Sampler()
	if err != nil {
		return err
	}
	// shift the seed so the boosting draws are decorrelated from the forest
	// draws while still fixed by the pipeline seed
	gbmSearchOpt := *p.opt.SearchOptions
	gbmSearchOpt.Seed++
	gbmRes, err := search.Run(x, yLog, gbmSampler, &gbmSearchOpt)
	if err != nil {
		return fmt.Errorf("boosting search, %w", err)
	}
	slog.Info("selected boosting configuration", "config", gbmRes.BestTrial.Config, "rmsle", gbmRes.BestTrial.RMSLE)

	p.agg = agg
	p.trainTable = tb
	p.forest = forestRes.Best
	p.gbm = gbmRes.Best
	p.forestTrial = forestRes.BestTrial
	p.gbmTrial = gbmRes.BestTrial

	if err := p.validate(train, x, yLog, counts); err != nil {
		return err
	}

	// final fit on the full training data with the blend weights refit on
	// its in-sample member predictions
	if err := p.forest.Fit(x, mat.NewDense(len(yLog), 1, yLog)); err != nil {
		return fmt.Errorf("unable to fit forest on full training data, %w", err)
	}
	if err := p.gbm.Fit(x, mat.NewDense(len(yLog), 1, yLog)); err != nil {
		return fmt.Errorf("unable to fit boosting machine on full training data, %w", err)
	}

	weights := p.opt.BlendWeights
	if weights == nil {
		logF, err := p.forest.Predict(x)
		if err != nil {
			return fmt.Errorf("unable to predict with forest, %w", err)
		}
		logG, err := p.gbm.Predict(x)
		if err != nil {
			return fmt.Errorf("unable to predict with boosting machine, %w", err)
		}
		weights, err = learnBlendWeights(logF, logG, yLog)
		if err != nil {
			return err
		}
	}
	p.blendWeights = weights
	slog.Info("blend weights", "forest", weights[0], "gbm", weights[1])
	return nil
}

// validate refits both tuned models on the rows at or before the day-of-month
// cutoff and scores them on the remaining rows. Skipped with a warning when
// the split leaves either side empty.
func (p *Predictor) validate(train *dataset.Dataset, x *mat.Dense, yLog, counts []float64) error {
	var trainIdx, validIdx []int
	for i, row := range train.Rows {
		if row.Timestamp.Day() <= p.opt.ValidationCutoffDay {
			trainIdx = append(trainIdx, i)
		} else {
			validIdx = append(validIdx, i)
		}
	}
	if len(trainIdx) == 0 || len(validIdx) == 0 {
		slog.Warn("skipping validation scores, day cutoff leaves an empty split",
			"cutoff", p.opt.ValidationCutoffDay, "train", len(trainIdx), "valid", len(validIdx))
		return nil
	}

	_, n := x.Dims()
	subX := mat.NewDense(len(trainIdx), n, nil)
	subYLog := make([]float64, len(trainIdx))
	for to, from := range trainIdx {
		subX.SetRow(to, x.RawRowView(from))
		subYLog[to] = yLog[from]
	}
	validX := mat.NewDense(len(validIdx), n, nil)
	validCounts := make([]float64, len(validIdx))
	validT := make([]time.Time, len(validIdx))
	for to, from := range validIdx {
		validX.SetRow(to, x.RawRowView(from))
		validCounts[to] = counts[from]
		validT[to] = train.Rows[from].Timestamp
	}

	subY := mat.NewDense(len(subYLog), 1, subYLog)
	if err := p.forest.Fit(subX, subY); err != nil {
		return fmt.Errorf("unable to fit forest on validation split, %w", err)
	}
	if err := p.gbm.Fit(subX, subY); err != nil {
		return fmt.Errorf("unable to fit boosting machine on validation split, %w", err)
	}

	validLogF, err := p.forest.Predict(validX)
	if err != nil {
		return fmt.Errorf("unable to predict validation split with forest, %w", err)
	}
	validLogG, err := p.gbm.Predict(validX)
	if err != nil {
		return fmt.Errorf("unable to predict validation split with boosting machine, %w", err)
	}

	forestRMSLE, err := metrics.RMSLE(countScale(validLogF), validCounts)
	if err != nil {
		return fmt.Errorf("unable to score forest, %w", err)
	}
	gbmRMSLE, err := metrics.RMSLE(countScale(validLogG), validCounts)
	if err != nil {
		return fmt.Errorf("unable to score boosting machine, %w", err)
	}

	weights := p.opt.BlendWeights
	if weights == nil {
		subLogF, err := p.forest.Predict(subX)
		if err != nil {
			return fmt.Errorf("unable to predict with forest, %w", err)
		}
		subLogG, err := p.gbm.Predict(subX)
		if err != nil {
			return fmt.Errorf("unable to predict with boosting machine, %w", err)
		}
		weights, err = learnBlendWeights(subLogF, subLogG, subYLog)
		if err != nil {
			return err
		}
	}

	blended, err := Blend(validLogF, validLogG, weights)
	if err != nil {
		return err
	}
	blendRMSLE, err := metrics.RMSLE(blended, validCounts)
	if err != nil {
		return fmt.Errorf("unable to score blend, %w", err)
	}
	mse, err := metrics.MSE(blended, validCounts)
	if err != nil {
		return err
	}
	r2, err := metrics.RSquared(blended, validCounts)
	if err != nil {
		return err
	}

	p.scores = &Scores{
		ForestRMSLE: forestRMSLE,
		GBMRMSLE:    gbmRMSLE,
		BlendRMSLE:  blendRMSLE,
		MSE:         mse,
		R2:          r2,
	}
	p.eval = &evalSeries{
		t:         validT,
		actual:    validCounts,
		predicted: blended,
	}
	slog.Info("validation scores", "forest_rmsle", forestRMSLE, "gbm_rmsle", gbmRMSLE, "blend_rmsle", blendRMSLE)
	return nil
}

// Predict generates blended count predictions for a test dataset. The
// engineered test features must match the training features column for
// column.
func (p *Predictor) Predict(test *dataset.Dataset) (*Results, error) {
	if p.forest == nil || p.gbm == nil {
		return nil, ErrNotFitted
	}
	if test == nil || test.Len() == 0 {
		return nil, dataset.ErrNoRows
	}

	tb, err := feature.Build(test, p.agg, p.opt.FeatureOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to build test features, %w", err)
	}
	if err := p.trainTable.CheckParity(tb); err != nil {
		return nil, err
	}
	x, err := tb.Matrix()
	if err != nil {
		return nil, fmt.Errorf("unable to assemble test matrix, %w", err)
	}

	logF, err := p.forest.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("unable to predict with forest, %w", err)
	}
	logG, err := p.gbm.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("unable to predict with boosting machine, %w", err)
	}

	blended, err := Blend(logF, logG, p.blendWeights)
	if err != nil {
		return nil, err
	}
	count := make([]float64, len(blended))
	for i, v := range blended {
		count[i] = math.Round(v)
	}

	return &Results{
		T:      test.Times(),
		Count:  count,
		Forest: countScale(logF),
		GBM:    countScale(logG),
	}, nil
}

// Scores returns the validation holdout scores from the last fit. Nil when
// the holdout split was degenerate.
func (p *Predictor) Scores() *Scores {
	return p.scores
}

// BlendWeights returns the combination weights in use after a fit.
func (p *Predictor) BlendWeights() []float64 {
	weights := make([]float64, len(p.blendWeights))
	copy(weights, p.blendWeights)
	return weights
}

// Summary describes a completed fit for reporting.
type Summary struct {
	ForestTrial   search.Trial `json:"forest_best"`
	GBMTrial      search.Trial `json:"gbm_best"`
	BlendWeights  []float64    `json:"blend_weights"`
	Scores        *Scores      `json:"validation_scores,omitempty"`
	FeatureLabels []string     `json:"feature_labels"`
}

// Summary reports the selected configurations, blend weights and validation
// scores of the last fit.
func (p *Predictor) Summary() (*Summary, error) {
	if p.forest == nil || p.gbm == nil {
		return nil, ErrNotFitted
	}
	return &Summary{
		ForestTrial:   p.forestTrial,
		GBMTrial:      p.gbmTrial,
		BlendWeights:  p.BlendWeights(),
		Scores:        p.scores,
		FeatureLabels: p.trainTable.Labels(),
	}, nil
}

// countScale maps log-scale predictions back to counts, clipped at zero.
func countScale(logVals []float64) []float64 {
	out := make([]float64, len(logVals))
	for i, v := range logVals {
		out[i] = math.Max(0, math.Expm1(v))
	}
	return out
}
