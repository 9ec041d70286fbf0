package feature

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestTableAdd(t *testing.T) {
	tb := NewTable(2)
	require.NoError(t, tb.Add("temp", []float64{9.8, 9.0}))

	testData := map[string]struct {
		label string
		vals  []float64
		err   error
	}{
		"duplicate label": {
			label: "temp",
			vals:  []float64{1, 2},
			err:   ErrLabelExists,
		},
		"length mismatch": {
			label: "humidity",
			vals:  []float64{81},
			err:   ErrLenMismatch,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, tb.Add(td.label, td.vals), td.err)
		})
	}
}

func TestTableMatrix(t *testing.T) {
	tb := NewTable(3)
	require.NoError(t, tb.Add("a", []float64{1, 2, 3}))
	require.NoError(t, tb.Add("b", []float64{4, 5, 6}))

	m, err := tb.Matrix()
	require.NoError(t, err)

	expected := mat.NewDense(3, 2, []float64{
		1, 4,
		2, 5,
		3, 6,
	})
	assert.True(t, mat.EqualApprox(expected, m, 1e-12))

	empty := NewTable(3)
	_, err = empty.Matrix()
	require.ErrorIs(t, err, ErrEmptyTable)
}

func TestTableColumn(t *testing.T) {
	tb := NewTable(1)
	require.NoError(t, tb.Add("hour", []float64{13}))

	vals, err := tb.Column("hour")
	require.NoError(t, err)
	assert.Equal(t, []float64{13}, vals)

	_, err = tb.Column("minute")
	require.ErrorIs(t, err, ErrUnknownLabel)
}

func TestTableValidate(t *testing.T) {
	tb := NewTable(2)
	require.NoError(t, tb.Add("temp", []float64{9.8, math.NaN()}))
	require.ErrorIs(t, tb.Validate(), ErrInvalidValue)

	clean := NewTable(2)
	require.NoError(t, clean.Add("temp", []float64{9.8, 9.0}))
	require.NoError(t, clean.Validate())
}

func TestTableCheckParity(t *testing.T) {
	build := func(labels ...string) *Table {
		tb := NewTable(1)
		for _, label := range labels {
			if err := tb.Add(label, []float64{0}); err != nil {
				t.Fatal(err)
			}
		}
		return tb
	}

	testData := map[string]struct {
		a   *Table
		b   *Table
		err error
	}{
		"identical": {
			a: build("temp", "hour"),
			b: build("temp", "hour"),
		},
		"missing column": {
			a:   build("temp", "hour"),
			b:   build("temp"),
			err: ErrFeatureParity,
		},
		"different order": {
			a:   build("temp", "hour"),
			b:   build("hour", "temp"),
			err: ErrFeatureParity,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			err := td.a.CheckParity(td.b)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
		})
	}
}
