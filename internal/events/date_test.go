package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slateworks/dimsim/internal/events"
)

func TestDateAddDaysCrossesMonthBoundary(t *testing.T) {
	d := events.NewDate(2024, time.January, 31)
	assert.Equal(t, events.NewDate(2024, time.February, 1), d.AddDays(1))
	assert.Equal(t, events.NewDate(2024, time.January, 24), d.AddDays(-7))
}

func TestDateAddDaysHandlesLeapYear(t *testing.T) {
	d := events.NewDate(2024, time.February, 28)
	assert.Equal(t, events.NewDate(2024, time.February, 29), d.AddDays(1))
	assert.Equal(t, events.NewDate(2024, time.March, 1), d.AddDays(2))
}

func TestDateOrdering(t *testing.T) {
	earlier := events.NewDate(2024, time.January, 1)
	later := events.NewDate(2024, time.January, 2)

	assert.True(t, earlier.Before(later))
	assert.True(t, later.After(earlier))
	assert.False(t, earlier.Before(earlier))
	assert.True(t, earlier == events.NewDate(2024, time.January, 1))
}

func TestDateOfTruncatesTime(t *testing.T) {
	ts := time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, events.NewDate(2024, time.March, 15), events.DateOf(ts))
}

func TestDateJSONRoundTrip(t *testing.T) {
	original := events.NewDate(2024, time.December, 9)

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, `"2024-12-09"`, string(data))

	var decoded events.Date
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestDateUnmarshalRejectsGarbage(t *testing.T) {
	var d events.Date
	assert.Error(t, json.Unmarshal([]byte(`"not-a-date"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`20240101`), &d))
}

func TestParseDate(t *testing.T) {
	d, err := events.ParseDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, events.NewDate(2024, time.June, 1), d)

	_, err = events.ParseDate("01/06/2024")
	assert.Error(t, err)
}
