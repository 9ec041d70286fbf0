package feature

import (
	"errors"
	"fmt"

	"bikecast/dataset"
)

var (
	ErrNoAggregates = errors.New("no training aggregates")
	ErrEmptyDataset = errors.New("no observations to build features from")
)

// Options controls the feature engineering policies.
type Options struct {
	// RollingWindow is the trailing window size of the smoothed temperature.
	RollingWindow int

	// SpecialDays applies the calendar corrections from AdjustSpecialDays.
	SpecialDays bool
}

func NewDefaultOptions() *Options {
	return &Options{
		RollingWindow: 3,
		SpecialDays:   true,
	}
}

func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	if o.RollingWindow < 1 {
		return nil, fmt.Errorf("rolling window of %d, %w", o.RollingWindow, ErrBadWindow)
	}
	return o, nil
}

// Aggregates carries training-set statistics that are joined onto both
// splits. Computing them from training data only keeps the test features
// free of target leakage while preserving column parity.
type Aggregates struct {
	// SeasonCounts is the total rental count per season code.
	SeasonCounts map[int]float64
}

// NewAggregates derives the join statistics from a training dataset.
func NewAggregates(ds *dataset.Dataset) (*Aggregates, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, ErrEmptyDataset
	}
	if !ds.HasTarget {
		return nil, dataset.ErrNoTargetColumn
	}

	seasonCounts := make(map[int]float64)
	for _, row := range ds.Rows {
		seasonCounts[row.Season] += row.Count
	}
	return &Aggregates{SeasonCounts: seasonCounts}, nil
}

// Build produces the engineered feature table for a dataset, one row per
// observation in row order. The same aggregates must be passed for the
// training and test builds so both tables expose identical columns.
func Build(ds *dataset.Dataset, agg *Aggregates, opt *Options) (*Table, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if ds == nil || ds.Len() == 0 {
		return nil, ErrEmptyDataset
	}
	if agg == nil {
		return nil, ErrNoAggregates
	}

	work := ds.Copy()
	if opt.SpecialDays {
		AdjustSpecialDays(work.Rows)
	}

	n := work.Len()
	rows := work.Rows

	weather, err := interpolateColumn(rows, "weather", func(o dataset.Observation) float64 { return o.Weather })
	if err != nil {
		return nil, err
	}
	weather = Round(weather)
	temp, err := interpolateColumn(rows, "temp", func(o dataset.Observation) float64 { return o.Temp })
	if err != nil {
		return nil, err
	}
	atemp, err := interpolateColumn(rows, "atemp", func(o dataset.Observation) float64 { return o.ATemp })
	if err != nil {
		return nil, err
	}
	humidity, err := interpolateColumn(rows, "humidity", func(o dataset.Observation) float64 { return o.Humidity })
	if err != nil {
		return nil, err
	}
	humidity = Round(humidity)
	windspeed, err := interpolateColumn(rows, "windspeed", func(o dataset.Observation) float64 { return o.Windspeed })
	if err != nil {
		return nil, err
	}

	rollingTemp, err := RollingMean(temp, opt.RollingWindow)
	if err != nil {
		return nil, err
	}

	season := make([]float64, n)
	holiday := make([]float64, n)
	workingDay := make([]float64, n)
	hour := make([]float64, n)
	day := make([]float64, n)
	month := make([]float64, n)
	year := make([]float64, n)
	dow := make([]float64, n)
	countSeason := make([]float64, n)
	for i, row := range rows {
		season[i] = float64(row.Season)
		if row.Holiday {
			holiday[i] = 1.0
		}
		if row.WorkingDay {
			workingDay[i] = 1.0
		}
		hour[i] = float64(row.Timestamp.Hour())
		day[i] = float64(row.Timestamp.Day())
		month[i] = float64(row.Timestamp.Month())
		year[i] = float64(row.Timestamp.Year())
		dow[i] = float64(row.Timestamp.Weekday())
		countSeason[i] = agg.SeasonCounts[row.Season]
	}

	tempHumidity := make([]float64, n)
	holidayWorkingDay := make([]float64, n)
	for i := 0; i < n; i++ {
		tempHumidity[i] = temp[i] * humidity[i]
		holidayWorkingDay[i] = holiday[i] * workingDay[i]
	}

	isWeekend := indicator(n, func(i int) bool { return dow[i] == 0 || dow[i] == 6 })
	busyHour := indicator(n, func(i int) bool {
		if workingDay[i] == 1.0 {
			return hour[i] == 8 || (hour[i] >= 17 && hour[i] <= 18)
		}
		return hour[i] >= 10 && hour[i] <= 19
	})
	ideal := indicator(n, func(i int) bool { return temp[i] > 27 && windspeed[i] < 30 })
	sticky := indicator(n, func(i int) bool { return workingDay[i] == 1.0 && humidity[i] >= 60 })

	weatherGood := indicator(n, func(i int) bool { return weather[i] == 1 })
	weatherNormal := indicator(n, func(i int) bool { return weather[i] == 2 })
	weatherBad := indicator(n, func(i int) bool { return weather[i] == 3 })
	weatherSevere := indicator(n, func(i int) bool { return weather[i] >= 4 })

	tb := NewTable(n)
	for _, col := range []struct {
		label string
		vals  []float64
	}{
		{"season", season},
		{"holiday", holiday},
		{"workingday", workingDay},
		{"weather", weather},
		{"temp", temp},
		{"atemp", atemp},
		{"humidity", humidity},
		{"windspeed", windspeed},
		{"hour", hour},
		{"day", day},
		{"month", month},
		{"year", year},
		{"dow", dow},
		{"is_weekend", isWeekend},
		{"rolling_temp", rollingTemp},
		{"temp_humidity", tempHumidity},
		{"holiday_workingday", holidayWorkingDay},
		{"busy_hour", busyHour},
		{"ideal", ideal},
		{"sticky", sticky},
		{"count_season", countSeason},
		{"weather_good", weatherGood},
		{"weather_normal", weatherNormal},
		{"weather_bad", weatherBad},
		{"weather_severe", weatherSevere},
	} {
		if err := tb.Add(col.label, col.vals); err != nil {
			return nil, err
		}
	}

	if err := tb.Validate(); err != nil {
		return nil, err
	}
	return tb, nil
}

func interpolateColumn(rows []dataset.Observation, name string, get func(dataset.Observation) float64) ([]float64, error) {
	vals := make([]float64, len(rows))
	for i, row := range rows {
		vals[i] = get(row)
	}
	out, err := Interpolate(vals)
	if err != nil {
		return nil, fmt.Errorf("column %q, %w", name, err)
	}
	return out, nil
}
