package sensors

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// timestampLayouts are tried in order when parsing timestamps from CSV
// rows and tool arguments.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTimestamp parses a timestamp string using the same layouts the
// CSV loader accepts.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// LoadCSV reads sensor readings from a CSV file with columns
// timestamp,room,sensor_name,value (header row optional). Rows that
// fail to parse are skipped with a warning rather than aborting the
// load. A nil logger falls back to slog.Default().
func LoadCSV(path string, logger *slog.Logger) ([]Reading, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sensor csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 4

	var readings []Reading
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logger.Warn("sensor csv row skipped", "line", line, "error", err)
			continue
		}

		// Tolerate a header row.
		if line == 1 && record[0] == "timestamp" {
			continue
		}

		ts, err := ParseTimestamp(record[0])
		if err != nil {
			logger.Warn("sensor csv row skipped", "line", line, "error", err)
			continue
		}
		value, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			logger.Warn("sensor csv row skipped", "line", line, "error", err)
			continue
		}

		readings = append(readings, Reading{
			Room:       record[1],
			SensorName: record[2],
			Timestamp:  ts,
			Value:      value,
		})
	}

	return readings, nil
}
