package domain

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrNoResults   = errors.New("race has no results")
	ErrBatchFailed = errors.New("batch commit failed")
	ErrLockHeld    = errors.New("lock already held")
)
