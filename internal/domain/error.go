package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid executor context")

	// Token vault
	ErrTokenNotFound    = errors.New("token not found")
	ErrTokenAlreadyUsed = errors.New("token already used")

	// Batch sessions
	ErrNoActiveSession = errors.New("no active batch session")
	ErrEmptySession    = errors.New("batch session is empty")

	// Batch ranges
	ErrRangeInvalid  = errors.New("batch range is invalid")
	ErrRangeTooLarge = errors.New("batch range exceeds the post limit")
	ErrNotChannelAdmin = errors.New("not an admin of the source channel")
)
