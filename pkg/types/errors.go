package types

import "errors"

// Sentinel errors shared across components.
var (
	// ErrPairNotSupported is returned by a venue source when it does not
	// quote the requested pair.
	ErrPairNotSupported = errors.New("pair not supported by venue")

	// ErrVenueUnavailable is returned when a venue adapter is temporarily
	// unable to serve quotes (open circuit breaker, cooldown).
	ErrVenueUnavailable = errors.New("venue unavailable")
)
