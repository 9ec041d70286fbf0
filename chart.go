package bikecast

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// LineTSeries generates an echart multi-line chart for some arbitrary
// time/value combination. Each input series must have the same length as the
// input time slice.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	lineData := make([][]opts.LineData, len(y))
	for i := 0; i < len(y); i++ {
		lineData[i] = make([]opts.LineData, 0, len(y[i]))
		for j := 0; j < len(y[i]); j++ {
			val := y[i][j]
			if math.IsNaN(val) {
				continue
			}
			lineData[i] = append(lineData[i], opts.LineData{Value: val})
		}
	}

	line = line.SetXAxis(t)
	for i, series := range seriesName {
		line = line.AddSeries(series, lineData[i])
	}
	return line
}

// PlotEval uses the Apache Echarts library to generate an html file showing
// the actual versus blended counts on the validation holdout.
func (p *Predictor) PlotEval(path string) error {
	if p.eval == nil {
		return ErrNoEvaluation
	}

	page := components.NewPage()
	page.AddCharts(
		LineTSeries(
			"Validation Holdout",
			[]string{"Actual", "Blended"},
			p.eval.t,
			[][]float64{p.eval.actual, p.eval.predicted},
		),
	)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create evaluation report, %w", err)
	}
	defer file.Close()
	return page.Render(file)
}
