package catalog

import "errors"

var (
	// ErrGuideNotFound indicates no guide is cached under the title.
	ErrGuideNotFound = errors.New("guide not found")
	// ErrInvalidGuide indicates a guide without a title or steps.
	ErrInvalidGuide = errors.New("invalid guide")
	// ErrEmptyQuery indicates a search without any terms.
	ErrEmptyQuery = errors.New("empty search query")
)
