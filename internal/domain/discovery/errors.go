package discovery

import "errors"

var (
	// ErrInvalidInput indicates a blank title or non-positive step.
	ErrInvalidInput = errors.New("invalid discovery input")
	// ErrStepNotFound indicates the guide has no step with that number.
	ErrStepNotFound = errors.New("step not found")
)
