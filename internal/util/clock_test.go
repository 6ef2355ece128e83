package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatsAreZeroPadded(t *testing.T) {
	ts := time.Date(2026, 1, 5, 7, 3, 42, 0, time.UTC)
	assert.Equal(t, "2026-01-05", FormatDate(ts))
	assert.Equal(t, "07:03", FormatSlot(ts))
	assert.Equal(t, "2026-01-05T07:03:42Z", FormatTimestamp(ts))
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidDate("2026-08-31"))
	assert.False(t, ValidDate("2026-8-31"))
	assert.False(t, ValidDate("31-08-2026"))

	assert.True(t, ValidSlot("09:05"))
	assert.True(t, ValidSlot("23:59"))
	assert.False(t, ValidSlot("9:05"), "unpadded hour must be rejected")
	assert.False(t, ValidSlot("09:5"))
	assert.False(t, ValidSlot("2pm"))
	assert.False(t, ValidSlot("24:00"))
	assert.False(t, ValidSlot("009:05"))
}

func TestSlotTime(t *testing.T) {
	ts, err := SlotTime("2026-01-15", "14:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 15, 14, 30, 0, 0, time.UTC), ts)

	_, err = SlotTime("2026-01-15", "25:00")
	assert.ErrorIs(t, err, ErrInvalidTimeSlot)

	// The combined parse is as strict as the individual validators; an
	// unpadded slot must not slip through here either.
	_, err = SlotTime("2026-01-15", "9:05")
	assert.ErrorIs(t, err, ErrInvalidTimeSlot)

	_, err = SlotTime("2026-1-15", "09:05")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestManualClock(t *testing.T) {
	start := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	clock := NewManualClock(start)
	assert.Equal(t, start, clock.Now())

	clock.Advance(90 * time.Minute)
	assert.Equal(t, start.Add(90*time.Minute), clock.Now())

	clock.Set(start)
	assert.Equal(t, start, clock.Now())
}
