package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAdvanceStreakFirstRecordEver(t *testing.T) {
	current, max, updated := advanceStreak(0, 0, nil, day(2026, time.August, 30))

	assert.Equal(t, 1, current)
	assert.Equal(t, 1, max)
	assert.True(t, updated)
}

func TestAdvanceStreakSameDayIsNoop(t *testing.T) {
	last := day(2026, time.August, 30)
	current, max, updated := advanceStreak(4, 7, &last, day(2026, time.August, 30))

	assert.Equal(t, 4, current)
	assert.Equal(t, 7, max)
	assert.False(t, updated)
}

func TestAdvanceStreakSameDayIgnoresClock(t *testing.T) {
	// A morning record followed by an evening record is still one day.
	last := time.Date(2026, time.August, 30, 8, 15, 0, 0, time.UTC)
	now := time.Date(2026, time.August, 30, 23, 59, 0, 0, time.UTC)

	_, _, updated := advanceStreak(2, 2, &last, now)
	assert.False(t, updated)
}

func TestAdvanceStreakConsecutiveDayExtends(t *testing.T) {
	last := day(2026, time.August, 29)
	current, max, updated := advanceStreak(4, 7, &last, day(2026, time.August, 30))

	assert.Equal(t, 5, current)
	assert.Equal(t, 7, max)
	assert.True(t, updated)
}

func TestAdvanceStreakExtendRaisesMax(t *testing.T) {
	last := day(2026, time.August, 29)
	current, max, updated := advanceStreak(7, 7, &last, day(2026, time.August, 30))

	assert.Equal(t, 8, current)
	assert.Equal(t, 8, max)
	assert.True(t, updated)
}

func TestAdvanceStreakGapResets(t *testing.T) {
	last := day(2026, time.August, 25)
	current, max, updated := advanceStreak(12, 12, &last, day(2026, time.August, 30))

	assert.Equal(t, 1, current)
	assert.Equal(t, 12, max, "max survives a reset")
	assert.True(t, updated)
}

func TestAdvanceStreakAcrossMonthBoundary(t *testing.T) {
	last := day(2026, time.August, 31)
	current, _, updated := advanceStreak(3, 3, &last, day(2026, time.September, 1))

	assert.Equal(t, 4, current)
	assert.True(t, updated)
}
