package models

import "errors"

// Validation errors surfaced to callers before any write happens.
var (
	ErrInvalidStake        = errors.New("stake must be positive")
	ErrInvalidOutcome      = errors.New("invalid outcome")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchNotOpen        = errors.New("match is not accepting wagers")
	ErrMatchNotCompleted   = errors.New("match is not completed")
	ErrUserNotFound        = errors.New("user not found")
)
