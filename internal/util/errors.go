package util

import "errors"

var (
	ErrInvalidDate       = errors.New("date must be formatted YYYY-MM-DD")
	ErrInvalidTimeSlot   = errors.New("time slot must be formatted HH:MM (24-hour)")
	ErrEmptyBatch        = errors.New("simulation batch contains no results")
	ErrSnapshotsDisabled = errors.New("snapshot storage is not configured")
)
