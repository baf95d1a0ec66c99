package model

import "errors"

// Validation errors. The command layer rejects these first; the core checks again
// before writing so a bad caller cannot corrupt stored state.
var (
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidDueDay    = errors.New("due day must be between 1 and 31")
	ErrInvalidCategory  = errors.New("unknown category")
	ErrInvalidTxType    = errors.New("unknown transaction type")
	ErrInvalidName      = errors.New("name must not be empty")
	ErrInvalidDeadline  = errors.New("deadline days must not be negative")
	ErrInvalidAlertType = errors.New("unknown alert type")
)

// ErrNotFound is returned when an entity is missing or owned by another user.
// The two cases are indistinguishable on purpose.
var ErrNotFound = errors.New("not found")
