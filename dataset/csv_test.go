package dataset

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trainHeader = "datetime,season,holiday,workingday,weather,temp,atemp,humidity,windspeed,casual,registered,count\n"

const testHeader = "datetime,season,holiday,workingday,weather,temp,atemp,humidity,windspeed\n"

func TestReadTraining(t *testing.T) {
	input := trainHeader +
		"2011-01-01 00:00:00,1,0,0,1,9.84,14.395,81,0.0,3,13,16\n" +
		"2011-01-01 01:00:00,1,0,1,2,9.02,13.635,80,0.0,8,32,40\n"

	ds, err := ReadTraining(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.True(t, ds.HasTarget)

	first := ds.Rows[0]
	assert.Equal(t, time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC), first.Timestamp)
	assert.Equal(t, 1, first.Season)
	assert.False(t, first.Holiday)
	assert.False(t, first.WorkingDay)
	assert.Equal(t, 1.0, first.Weather)
	assert.InDelta(t, 9.84, first.Temp, 1e-12)
	assert.InDelta(t, 16.0, first.Count, 1e-12)

	second := ds.Rows[1]
	assert.True(t, second.WorkingDay)
	assert.InDelta(t, 40.0, second.Count, 1e-12)

	counts, err := ds.Counts()
	require.NoError(t, err)
	assert.Equal(t, []float64{16, 40}, counts)
}

func TestReadTest(t *testing.T) {
	input := testHeader +
		"2011-01-20 00:00:00,1,0,1,1,10.66,11.365,56,26.0027\n"

	ds, err := ReadTest(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	assert.False(t, ds.HasTarget)

	_, err = ds.Counts()
	require.ErrorIs(t, err, ErrNoTargetColumn)
}

func TestReadBlankMeasurement(t *testing.T) {
	input := testHeader +
		"2011-01-20 00:00:00,1,0,1,,10.66,11.365,,26.0027\n"

	ds, err := ReadTest(strings.NewReader(input))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(ds.Rows[0].Weather))
	assert.True(t, math.IsNaN(ds.Rows[0].Humidity))
	assert.InDelta(t, 10.66, ds.Rows[0].Temp, 1e-12)
}

func TestReadErrors(t *testing.T) {
	testData := map[string]struct {
		input string
		train bool
		err   error
	}{
		"empty file": {
			input: "",
			err:   ErrEmptyFile,
		},
		"missing datetime column": {
			input: "season,holiday,workingday,weather,temp,atemp,humidity,windspeed\n",
			err:   ErrMissingColumn,
		},
		"missing count column on training": {
			input: testHeader + "2011-01-20 00:00:00,1,0,1,1,10.66,11.365,56,26.0\n",
			train: true,
			err:   ErrMissingColumn,
		},
		"unparseable timestamp": {
			input: testHeader + "2011/01/20,1,0,1,1,10.66,11.365,56,26.0\n",
			err:   ErrBadTimestamp,
		},
		"non-numeric temperature": {
			input: testHeader + "2011-01-20 00:00:00,1,0,1,1,warm,11.365,56,26.0\n",
			err:   ErrBadNumeric,
		},
		"no rows": {
			input: testHeader,
			err:   ErrNoRows,
		},
		"duplicate timestamp": {
			input: testHeader +
				"2011-01-20 00:00:00,1,0,1,1,10.66,11.365,56,26.0\n" +
				"2011-01-20 00:00:00,1,0,1,1,10.66,11.365,56,26.0\n",
			err: ErrNonMonotonic,
		},
		"out of order timestamps": {
			input: testHeader +
				"2011-01-20 01:00:00,1,0,1,1,10.66,11.365,56,26.0\n" +
				"2011-01-20 00:00:00,1,0,1,1,10.66,11.365,56,26.0\n",
			err: ErrNonMonotonic,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			var err error
			if td.train {
				_, err = ReadTraining(strings.NewReader(td.input))
			} else {
				_, err = ReadTest(strings.NewReader(td.input))
			}
			require.ErrorIs(t, err, td.err)
		})
	}
}

func TestDatasetCopy(t *testing.T) {
	rows := []Observation{
		{Timestamp: time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC), Count: 5},
		{Timestamp: time.Date(2011, 1, 1, 1, 0, 0, 0, time.UTC), Count: 7},
	}
	ds, err := New(rows, true)
	require.NoError(t, err)

	dup := ds.Copy()
	dup.Rows[0].Count = 99
	assert.InDelta(t, 5.0, ds.Rows[0].Count, 1e-12)
}
