package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayStartNormalizes(t *testing.T) {
	loc := time.UTC
	at := time.Date(2025, 6, 15, 23, 59, 59, 999999999, loc)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, loc), DayStart(at, loc))
}

func TestDayWindowHalfOpen(t *testing.T) {
	loc := time.UTC
	start, end := DayWindow(time.Date(2025, 6, 15, 12, 0, 0, 0, loc), loc)

	lastTick := time.Date(2025, 6, 15, 23, 59, 59, 0, loc)
	assert.False(t, lastTick.Before(start))
	assert.True(t, lastTick.Before(end), "23:59:59 belongs to the day")

	midnight := time.Date(2025, 6, 16, 0, 0, 0, 0, loc)
	assert.False(t, midnight.Before(end), "next midnight belongs to the next day")
}

func TestDayStartRespectsTimezone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	// 03:00 UTC is still the previous evening in New York.
	at := time.Date(2025, 6, 16, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, loc), DayStart(at, loc))
}

func TestParseFragmentType(t *testing.T) {
	for _, in := range []string{"text", "TEXT", " Text "} {
		got, err := ParseFragmentType(in)
		assert.NoError(t, err)
		assert.Equal(t, FragmentText, got)
	}
	_, err := ParseFragmentType("video")
	assert.ErrorIs(t, err, ErrValidation)
}
