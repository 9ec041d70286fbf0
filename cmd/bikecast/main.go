// Command bikecast runs the full prediction pipeline: read the training and
// test tables, fit the blended model, and write the competition submission
// along with a fit summary and an evaluation report.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/goccy/go-json"

	"bikecast"
	"bikecast/dataset"
)

const (
	trainPath      = "datasets/train_bike.csv"
	testPath       = "datasets/test_bike.csv"
	submissionPath = "submission.csv"
	summaryPath    = "model_summary.json"
	evalPath       = "evaluation.html"
)

func main() {
	if err := run(); err != nil {
		slog.Error("pipeline aborted", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	train, err := readTraining(trainPath)
	if err != nil {
		return err
	}
	test, err := readTest(testPath)
	if err != nil {
		return err
	}

	p, err := bikecast.New(nil)
	if err != nil {
		return err
	}
	if err := p.Fit(train); err != nil {
		return err
	}

	res, err := p.Predict(test)
	if err != nil {
		return err
	}

	file, err := os.Create(submissionPath)
	if err != nil {
		return fmt.Errorf("unable to create %s, %w", submissionPath, err)
	}
	defer file.Close()
	if err := res.WriteSubmission(file); err != nil {
		return fmt.Errorf("unable to write %s, %w", submissionPath, err)
	}
	slog.Info("wrote submission", "path", submissionPath, "rows", len(res.Count))

	summary, err := p.Summary()
	if err != nil {
		return err
	}
	bytes, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal fit summary, %w", err)
	}
	if err := os.WriteFile(summaryPath, bytes, 0o644); err != nil {
		return fmt.Errorf("unable to write %s, %w", summaryPath, err)
	}

	if err := p.PlotEval(evalPath); err != nil {
		if errors.Is(err, bikecast.ErrNoEvaluation) {
			slog.Warn("no evaluation report, validation holdout was skipped")
			return nil
		}
		return err
	}
	slog.Info("wrote evaluation report", "path", evalPath)
	return nil
}

func readTraining(path string) (*dataset.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s, %w", path, err)
	}
	defer file.Close()
	return dataset.ReadTraining(file)
}

func readTest(path string) (*dataset.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s, %w", path, err)
	}
	defer file.Close()
	return dataset.ReadTest(file)
}
