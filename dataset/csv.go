package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the timestamp format used by the competition files.
const TimeLayout = "2006-01-02 15:04:05"

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrBadTimestamp  = errors.New("unparseable timestamp")
	ErrBadNumeric    = errors.New("non-numeric value in numeric column")
	ErrEmptyFile     = errors.New("file has no header row")
)

var sharedColumns = []string{
	"datetime", "season", "holiday", "workingday", "weather",
	"temp", "atemp", "humidity", "windspeed",
}

var targetColumns = []string{"casual", "registered", "count"}

// ReadTraining reads a training CSV which must carry the shared observation
// schema plus the casual, registered and count target columns.
func ReadTraining(r io.Reader) (*Dataset, error) {
	return read(r, true)
}

// ReadTest reads a test CSV carrying only the shared observation schema.
func ReadTest(r io.Reader) (*Dataset, error) {
	return read(r, false)
}

func read(r io.Reader, withTarget bool) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read header, %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(strings.ToLower(name))] = i
	}

	required := sharedColumns
	if withTarget {
		required = append(append([]string{}, sharedColumns...), targetColumns...)
	}
	for _, name := range required {
		if _, exists := colIdx[name]; !exists {
			return nil, fmt.Errorf("column %q, %w", name, ErrMissingColumn)
		}
	}

	var rows []Observation
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read line %d, %w", line, err)
		}

		obs, err := parseRecord(record, colIdx, withTarget)
		if err != nil {
			return nil, fmt.Errorf("line %d, %w", line, err)
		}
		rows = append(rows, obs)
	}
	return New(rows, withTarget)
}

func parseRecord(record []string, colIdx map[string]int, withTarget bool) (Observation, error) {
	var obs Observation

	ts, err := time.Parse(TimeLayout, strings.TrimSpace(record[colIdx["datetime"]]))
	if err != nil {
		return obs, fmt.Errorf("%q, %w", record[colIdx["datetime"]], ErrBadTimestamp)
	}
	obs.Timestamp = ts

	season, err := parseInt(record, colIdx, "season")
	if err != nil {
		return obs, err
	}
	obs.Season = season

	holiday, err := parseFlag(record, colIdx, "holiday")
	if err != nil {
		return obs, err
	}
	obs.Holiday = holiday

	workingDay, err := parseFlag(record, colIdx, "workingday")
	if err != nil {
		return obs, err
	}
	obs.WorkingDay = workingDay

	// Weather measurements may be blank. Blanks become NaN and are filled
	// later by interpolation.
	for _, col := range []struct {
		name string
		dst  *float64
	}{
		{"weather", &obs.Weather},
		{"temp", &obs.Temp},
		{"atemp", &obs.ATemp},
		{"humidity", &obs.Humidity},
		{"windspeed", &obs.Windspeed},
	} {
		val, err := parseMeasurement(record, colIdx, col.name)
		if err != nil {
			return obs, err
		}
		*col.dst = val
	}

	if !withTarget {
		return obs, nil
	}

	for _, col := range []struct {
		name string
		dst  *float64
	}{
		{"casual", &obs.Casual},
		{"registered", &obs.Registered},
		{"count", &obs.Count},
	} {
		val, err := parseFloat(record, colIdx, col.name)
		if err != nil {
			return obs, err
		}
		*col.dst = val
	}
	return obs, nil
}

func parseFloat(record []string, colIdx map[string]int, name string) (float64, error) {
	raw := strings.TrimSpace(record[colIdx[name]])
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("column %q value %q, %w", name, raw, ErrBadNumeric)
	}
	return val, nil
}

func parseMeasurement(record []string, colIdx map[string]int, name string) (float64, error) {
	raw := strings.TrimSpace(record[colIdx[name]])
	if raw == "" {
		return math.NaN(), nil
	}
	return parseFloat(record, colIdx, name)
}

func parseInt(record []string, colIdx map[string]int, name string) (int, error) {
	val, err := parseFloat(record, colIdx, name)
	if err != nil {
		return 0, err
	}
	return int(val), nil
}

func parseFlag(record []string, colIdx map[string]int, name string) (bool, error) {
	val, err := parseFloat(record, colIdx, name)
	if err != nil {
		return false, err
	}
	return val != 0, nil
}
