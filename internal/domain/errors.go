package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrItemNotFound indicates the requested anime does not exist upstream
	ErrItemNotFound = errors.New("anime not found")

	// ErrServiceUnavailable indicates an upstream API is unreachable
	ErrServiceUnavailable = errors.New("upstream service is unreachable")

	// ErrNoMatch indicates a reverse image search returned no candidates
	ErrNoMatch = errors.New("no match found for image")

	// ErrEmptyQuery indicates a search was started with no query and no genres
	ErrEmptyQuery = errors.New("empty search query")
)
