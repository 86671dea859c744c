package core

import (
	"errors"

	"github.com/zeebo/errs"
)

// Error is the error class for publishing and listening failures.
var Error = errs.Class("cityscout")

// Common errors.
var (
	ErrEmptyID     = errors.New("document ID cannot be empty")
	ErrNoSource    = errors.New("no change source configured")
	ErrNoPublisher = errors.New("no publisher configured")
)
