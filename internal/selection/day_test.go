package selection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDay(t *testing.T) {
	t1 := time.Date(2026, time.October, 15, 17, 45, 12, 99, berlin)
	assert.Equal(t, time.Date(2026, time.October, 15, 0, 0, 0, 0, berlin), StartOfDay(t1, berlin))

	// 23:30 UTC on the 15th is already the 16th in Berlin.
	utc := time.Date(2026, time.October, 15, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, 16, StartOfDay(utc, berlin).Day())
}

func TestNextDay_AcrossDSTChange(t *testing.T) {
	// Clocks go back in Berlin on 2026-10-25.
	t1 := time.Date(2026, time.October, 24, 12, 0, 0, 0, berlin)
	next := NextDay(t1, berlin)
	assert.Equal(t, 25, next.Day())
	assert.Equal(t, 0, next.Hour())

	after := NextDay(next, berlin)
	assert.Equal(t, 26, after.Day())
	assert.Equal(t, 0, after.Hour())
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, time.October, 15, 0, 0, 0, 0, berlin)
	assert.True(t, SameDay(a, a.Add(23*time.Hour+59*time.Minute), berlin))
	assert.False(t, SameDay(a, a.Add(-time.Nanosecond), berlin))
	assert.False(t, SameDay(a, a.AddDate(0, 0, 1), berlin))
}
