package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRoundTrip(t *testing.T) {
	metrics := []Metric{
		{ID: "m1", Name: "Weekly sessions", Unit: "sessions", TargetValue: floatPtr(4), CurrentValue: floatPtr(2), HigherIsBetter: true},
		{ID: "m2", Name: "Resting heart rate", Unit: "bpm", TargetValue: floatPtr(55), HigherIsBetter: false},
		{ID: "m3", Name: "Notes", Unit: ""},
	}

	encoded, err := encodeMetrics(metrics)
	require.NoError(t, err)

	decoded, err := decodeMetrics(encoded)
	require.NoError(t, err)
	assert.Equal(t, metrics, decoded, "order and values must survive the round trip")
}

func TestEncodeMetrics_Empty(t *testing.T) {
	encoded, err := encodeMetrics(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", encoded)

	encoded, err = encodeMetrics([]Metric{})
	require.NoError(t, err)
	assert.Equal(t, "[]", encoded)
}

func TestDecodeMetrics_EmptyArrayIsNil(t *testing.T) {
	decoded, err := decodeMetrics("[]")
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestDecodeMetrics_Invalid(t *testing.T) {
	_, err := decodeMetrics("{not json")
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "metrics", decErr.Field)
}

func TestTimestampRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	parsed, err := parseTimestamp("created_at", formatTimestamp(now))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(now))
}

func TestParseTimestamp_LegacyFormat(t *testing.T) {
	// Rows written before fractional seconds were introduced
	parsed, err := parseTimestamp("created_at", "2025-06-01T12:30:45Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.June, 1, 12, 30, 45, 0, time.UTC), parsed.UTC())
}

func TestParseTimestamp_Invalid(t *testing.T) {
	_, err := parseTimestamp("updated_at", "yesterday-ish")
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "updated_at", decErr.Field)
}

func TestFormatTimestamp_SortsLexicographically(t *testing.T) {
	earlier := time.Date(2026, time.January, 2, 9, 0, 0, 500000000, time.UTC)
	later := time.Date(2026, time.January, 2, 9, 0, 1, 0, time.UTC)
	assert.Less(t, formatTimestamp(earlier), formatTimestamp(later))
}
