package cardstatsdb

import "errors"

var (
	// ErrNotFound is returned when a derived row the caller asked for has not been computed.
	ErrNotFound = errors.New("cardstats row not found")

	// ErrUnknownGranularity is returned for a granularity with no backing table.
	ErrUnknownGranularity = errors.New("unknown card stat granularity")
)
