package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrUnknownJobType  = errors.New("unknown job type")
	ErrProviderFailure = errors.New("provider failure")
	ErrUnmatchedTask   = errors.New("unmatched provider task")
)
