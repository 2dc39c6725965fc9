// Package sentinel holds the infrastructure errors that stores and chain
// clients return. Services map them onto domain error codes; request
// validation failures use pkg/domain-errors directly.
package sentinel

import "errors"

var (
	// ErrNotFound reports a chain, asset or cache entry that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable reports a backend (cache, database, chain node) that could
	// not answer, including an open circuit breaker.
	ErrUnavailable = errors.New("unavailable")
)
