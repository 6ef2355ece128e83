package util

import (
	"sync"
	"time"
)

// Wire formats shared by the documents and the session keys. DateLayout and
// SlotLayout are fixed-width and zero-padded: the continue-learning resolver
// compares "<date>_<time>" keys lexicographically, which is only equivalent to
// "most recent" under a 24-hour zero-padded format.
const (
	DateLayout      = "2006-01-02"
	SlotLayout      = "15:04"
	TimestampLayout = time.RFC3339
)

// Clock supplies the current time. The engine never reads the wall clock
// directly so the simulation harness and tests can substitute a ManualClock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock is a settable clock for deterministic replays.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: now}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// FormatDate renders the ISO calendar date of t.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// FormatSlot renders the minute-truncated HH:MM time slot of t.
func FormatSlot(t time.Time) string { return t.Format(SlotLayout) }

// FormatTimestamp renders the full event timestamp.
func FormatTimestamp(t time.Time) string { return t.Format(TimestampLayout) }

// ValidDate reports whether s is a zero-padded ISO date. time.Parse alone
// accepts unpadded fields, so the width is checked explicitly; an unpadded
// date would corrupt the lexicographic ordering of session keys.
func ValidDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ValidSlot reports whether s is a zero-padded 24-hour HH:MM slot. Width is
// enforced for the same reason as ValidDate: "9:05" would sort above every
// padded slot of its day.
func ValidSlot(s string) bool {
	if len(s) != len(SlotLayout) {
		return false
	}
	_, err := time.Parse(SlotLayout, s)
	return err == nil
}

// SlotTime combines an ISO date and an HH:MM slot into a timestamp at the
// start of that minute. Both parts pass the same strict validation as the
// engine's entry points.
func SlotTime(date, slot string) (time.Time, error) {
	if !ValidDate(date) {
		return time.Time{}, ErrInvalidDate
	}
	if !ValidSlot(slot) {
		return time.Time{}, ErrInvalidTimeSlot
	}
	return time.Parse(DateLayout+" "+SlotLayout, date+" "+slot)
}
