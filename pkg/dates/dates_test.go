package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "2025-12-01", Format("2025-12-01", DateOnly))
	assert.Equal(t, "2025-12-01", Format("2025-12-01T10:30:00Z", DateOnly))
	assert.Equal(t, "Dec 1, 2025", Format("2025-12-01", "Jan 2, 2006"))
}

func TestFormat_InvalidInputFailsSoft(t *testing.T) {
	assert.Equal(t, "", Format("not-a-date", DateOnly))
	assert.Equal(t, "", Format("", DateOnly))
	assert.Equal(t, "", Format("2025-13-45", DateOnly))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 9, DaysBetween("2025-12-01", "2025-12-10"))
	assert.Equal(t, 9, DaysBetween("2025-12-10", "2025-12-01"))
	assert.Equal(t, 0, DaysBetween("2025-12-01", "2025-12-01"))
}

func TestDaysBetween_InvalidInput(t *testing.T) {
	assert.Equal(t, 0, DaysBetween("garbage", "2025-12-01"))
	assert.Equal(t, 0, DaysBetween("2025-12-01", ""))
}

func TestIsPast(t *testing.T) {
	yesterday := time.Now().AddDate(0, 0, -1).Format(DateOnly)
	tomorrow := time.Now().AddDate(0, 0, 1).Format(DateOnly)

	assert.True(t, IsPast(yesterday))
	assert.False(t, IsPast(tomorrow))
	assert.False(t, IsPast(time.Now().Format(DateOnly)))
	assert.False(t, IsPast("invalid"))
}

func TestIsWithinDays(t *testing.T) {
	in3 := time.Now().AddDate(0, 0, 3).Format(DateOnly)
	in10 := time.Now().AddDate(0, 0, 10).Format(DateOnly)
	past := time.Now().AddDate(0, 0, -2).Format(DateOnly)

	assert.True(t, IsWithinDays(in3, 7))
	assert.False(t, IsWithinDays(in10, 7))
	assert.False(t, IsWithinDays(past, 7))
	assert.False(t, IsWithinDays("invalid", 7))
	assert.False(t, IsWithinDays(in3, -1))
}

func TestValidRange(t *testing.T) {
	assert.True(t, ValidRange("2025-01-01", "2025-06-01"))
	assert.True(t, ValidRange("2025-01-01", "2025-01-01"))
	assert.False(t, ValidRange("2025-06-01", "2025-01-01"))
	assert.False(t, ValidRange("bad", "2025-01-01"))
	assert.False(t, ValidRange("2025-01-01", "bad"))
}
