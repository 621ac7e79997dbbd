package pool

import "errors"

// Sentinel errors for pool construction.
var (
	// ErrNilConnector is returned by New when no Connector is supplied.
	ErrNilConnector = errors.New("pool: connector is nil")

	// ErrInvalidCapacity is returned by New when MaxPerDest is below 1.
	ErrInvalidCapacity = errors.New("pool: MaxPerDest must be at least 1")
)
