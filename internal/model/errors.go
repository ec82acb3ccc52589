package model

import "errors"

// Validation errors. These are fatal: callers must reject the input
// before any write is attempted.
var (
	ErrEmptyID       = errors.New("identifier must not be empty")
	ErrEmptyTitle    = errors.New("title must not be empty")
	ErrTitleTooLong  = errors.New("title must be 500 characters or less")
	ErrInvalidLink   = errors.New("link is not a valid absolute URL")
	ErrInvalidWeight = errors.New("weight must be greater than 0 and at most 10")
	ErrEmptyText     = errors.New("term text must not be empty")
)

const (
	maxTitleLen = 500
	maxBodyLen  = 50000

	// MinWeight and MaxWeight bound an interest term's weight.
	MinWeight = 0.0
	MaxWeight = 10.0
)
