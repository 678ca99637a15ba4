// ABOUTME: Serialization helpers for metrics and timestamps
// ABOUTME: Metrics round-trip through a JSON array column, timestamps through RFC3339 text

package store

import (
	"encoding/json"
	"time"
)

// timestampLayout always includes fractional seconds so that stored
// timestamps sort chronologically under plain string comparison.
const timestampLayout = "2006-01-02T15:04:05.000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// parseTimestamp parses a stored timestamp. It first tries the current
// fractional-seconds layout, then falls back to plain RFC3339 to tolerate
// rows written by an earlier format version.
func parseTimestamp(field, value string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, value)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, &DecodeError{Field: field, Err: err}
	}
	return t, nil
}

// encodeMetrics serializes a goal's metric list to a JSON array literal.
// An empty or nil list encodes to "[]".
func encodeMetrics(metrics []Metric) (string, error) {
	if len(metrics) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(metrics)
	if err != nil {
		return "", &EncodeError{Field: "metrics", Err: err}
	}
	return string(data), nil
}

// decodeMetrics parses the stored array. An empty array decodes to nil so
// that a goal created without metrics compares equal to its fetched copy.
func decodeMetrics(value string) ([]Metric, error) {
	var metrics []Metric
	if err := json.Unmarshal([]byte(value), &metrics); err != nil {
		return nil, &DecodeError{Field: "metrics", Err: err}
	}
	if len(metrics) == 0 {
		return nil, nil
	}
	return metrics, nil
}
