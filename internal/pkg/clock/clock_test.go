package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayRangeIn_CoversWholeLocalDay(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	// 01:30 UTC on March 11 is 08:30 local
	instant := time.Date(2025, 3, 11, 1, 30, 0, 0, time.UTC)
	day := DayRangeIn(instant, loc)

	assert.Equal(t, 2025, day.Date.Year())
	assert.Equal(t, time.March, day.Date.Month())
	assert.Equal(t, 11, day.Date.Day())
	assert.Equal(t, 0, day.Start.Hour())
	assert.Equal(t, 23, day.End.Hour())
	assert.Equal(t, 59, day.End.Minute())
}

// An instant before local midnight but after UTC midnight must land on the
// previous local day.
func TestDayRangeIn_LocalDayDiffersFromUTC(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	// 20:00 UTC on March 10 is 03:00 local on March 11
	instant := time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)
	day := DayRangeIn(instant, loc)

	assert.Equal(t, 11, day.Date.Day())
}

func TestDayRange_Contains(t *testing.T) {
	day := DayRangeIn(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC), time.UTC)

	assert.True(t, day.Contains(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)))
	assert.True(t, day.Contains(time.Date(2025, 3, 10, 23, 59, 59, 0, time.UTC)))
	assert.False(t, day.Contains(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)))
	assert.False(t, day.Contains(time.Date(2025, 3, 9, 23, 59, 59, 0, time.UTC)))
}

func TestFixed_Advance(t *testing.T) {
	clk := &Fixed{Current: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}

	before := clk.Today()
	clk.Advance(16 * time.Hour)
	assert.Equal(t, before, clk.Today())

	clk.Advance(8 * time.Hour)
	assert.Equal(t, before.AddDate(0, 0, 1), clk.Today())
}

func TestNewSystemClock_UnknownTimezoneFallsBackToUTC(t *testing.T) {
	clk := NewSystemClock("Mars/Olympus_Mons")
	assert.Equal(t, time.UTC, clk.Now().Location())
}
