package bikecast

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikecast/dataset"
	"bikecast/search"
)

// smallOptions keeps the search budget tiny so fits stay fast under test.
func smallOptions() *Options {
	opt := NewDefaultOptions()
	opt.SearchOptions = &search.Options{Iterations: 3, Folds: 2, Seed: 42}
	opt.ForestSpace = &search.ForestSpace{
		NumTrees:        []int{5, 10},
		MaxDepth:        []int{4},
		MinSamplesSplit: []int{2},
		MinSamplesLeaf:  []int{1},
		Bootstrap:       []bool{true},
	}
	opt.GBMSpace = &search.GBMSpace{
		NumStages:       []int{10, 20},
		MaxDepth:        []int{2},
		MinSamplesSplit: []int{2},
		MinSamplesLeaf:  []int{1},
		LearningRate:    []float64{0.2},
		Subsample:       []float64{1.0},
	}
	return opt
}

// constantTraining spans the first 20 days of June so the day-of-month
// cutoff leaves both splits populated. Every row carries the same count.
func constantTraining(t *testing.T, count float64) *dataset.Dataset {
	t.Helper()
	start := time.Date(2011, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]dataset.Observation, 0, 20*24)
	for i := 0; i < 20*24; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		rows = append(rows, dataset.Observation{
			Timestamp:  ts,
			Season:     2,
			WorkingDay: ts.Weekday() != time.Saturday && ts.Weekday() != time.Sunday,
			Weather:    1,
			Temp:       20 + float64(i%10),
			ATemp:      22 + float64(i%10),
			Humidity:   55,
			Windspeed:  8,
			Casual:     count / 4,
			Registered: 3 * count / 4,
			Count:      count,
		})
	}
	ds, err := dataset.New(rows, true)
	require.NoError(t, err)
	return ds
}

func TestPredictorConstantCount(t *testing.T) {
	const k = 30.0
	train := constantTraining(t, k)

	opt := smallOptions()
	opt.BlendWeights = []float64{0.5, 0.5}

	p, err := New(opt)
	require.NoError(t, err)
	require.NoError(t, p.Fit(train))

	// test rows mirror training feature values at later timestamps
	start := time.Date(2011, 6, 25, 0, 0, 0, 0, time.UTC)
	testRows := make([]dataset.Observation, 0, 12)
	for i := 0; i < 12; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		testRows = append(testRows, dataset.Observation{
			Timestamp:  ts,
			Season:     2,
			WorkingDay: true,
			Weather:    1,
			Temp:       20,
			ATemp:      22,
			Humidity:   55,
			Windspeed:  8,
		})
	}
	test, err := dataset.New(testRows, false)
	require.NoError(t, err)

	res, err := p.Predict(test)
	require.NoError(t, err)
	require.Len(t, res.Count, 12)

	for i, count := range res.Count {
		assert.GreaterOrEqual(t, count, 0.0, "row %d", i)
		assert.InDelta(t, k, count, 3.0, "row %d", i)
	}

	scores := p.Scores()
	require.NotNil(t, scores)
	assert.InDelta(t, 0.0, scores.ForestRMSLE, 0.1)
	assert.InDelta(t, 0.0, scores.GBMRMSLE, 0.1)
	assert.InDelta(t, 0.0, scores.BlendRMSLE, 0.1)
}

// varyingTraining carries an hour-of-day demand pattern so the two models
// produce distinct predictions and the blend weight refit is well posed.
func varyingTraining(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds := constantTraining(t, 10)
	rows := make([]dataset.Observation, len(ds.Rows))
	copy(rows, ds.Rows)
	for i := range rows {
		count := 10.0 + 3.0*float64(rows[i].Timestamp.Hour())
		if rows[i].WorkingDay {
			count += 20
		}
		rows[i].Count = count
		rows[i].Registered = count - 5
		rows[i].Casual = 5
	}
	varied, err := dataset.New(rows, true)
	require.NoError(t, err)
	return varied
}

func TestPredictorDeterministic(t *testing.T) {
	train := varyingTraining(t)

	run := func() []float64 {
		p, err := New(smallOptions())
		require.NoError(t, err)
		require.NoError(t, p.Fit(train))

		res, err := p.Predict(trainAsTest(t, train))
		require.NoError(t, err)
		return res.Count
	}

	assert.Equal(t, run(), run())
}

func trainAsTest(t *testing.T, train *dataset.Dataset) *dataset.Dataset {
	t.Helper()
	rows := make([]dataset.Observation, len(train.Rows))
	copy(rows, train.Rows)
	for i := range rows {
		rows[i].Casual = 0
		rows[i].Registered = 0
		rows[i].Count = 0
	}
	ds, err := dataset.New(rows, false)
	require.NoError(t, err)
	return ds
}

func TestPredictorNotFitted(t *testing.T) {
	p, err := New(smallOptions())
	require.NoError(t, err)

	_, err = p.Predict(trainAsTest(t, constantTraining(t, 10)))
	require.ErrorIs(t, err, ErrNotFitted)

	_, err = p.Summary()
	require.ErrorIs(t, err, ErrNotFitted)

	require.ErrorIs(t, p.PlotEval("eval.html"), ErrNoEvaluation)
}

func TestPredictorFitRequiresTarget(t *testing.T) {
	p, err := New(smallOptions())
	require.NoError(t, err)

	test := trainAsTest(t, constantTraining(t, 10))
	require.ErrorIs(t, p.Fit(test), dataset.ErrNoTargetColumn)
}

func TestPredictorSummaryJSON(t *testing.T) {
	train := varyingTraining(t)

	p, err := New(smallOptions())
	require.NoError(t, err)
	require.NoError(t, p.Fit(train))

	summary, err := p.Summary()
	require.NoError(t, err)
	require.NotEmpty(t, summary.FeatureLabels)
	require.Len(t, summary.BlendWeights, 2)

	bytes, err := json.Marshal(summary)
	require.NoError(t, err)

	var decoded Summary
	require.NoError(t, json.Unmarshal(bytes, &decoded))
	assert.Equal(t, summary.FeatureLabels, decoded.FeatureLabels)
	assert.Equal(t, summary.ForestTrial, decoded.ForestTrial)
}
