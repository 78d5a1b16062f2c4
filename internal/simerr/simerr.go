// Package simerr defines the error taxonomy shared across the scheduler core
// and its surrounding services.
package simerr

import "errors"

// Sentinel errors for the core's error taxonomy. Callers distinguish them
// with errors.Is rather than string matching.
var (
	// ErrInputInvalid marks a malformed payload record, an unknown station
	// id, a weight exceeding MAX_CAPACITY, or a duplicate payload id.
	// Fatal to the run; surfaced before scheduling begins.
	ErrInputInvalid = errors.New("simerr: invalid input")

	// ErrNetworkUnreachable marks a shortest-path query that returned +Inf
	// or an empty path for a required source/destination pair. Logged; the
	// affected payload may remain undelivered; does not abort the run.
	ErrNetworkUnreachable = errors.New("simerr: network unreachable")

	// ErrCapacityOverflow marks an attempted attach that would exceed
	// MAX_CAPACITY. The pickup sub-algorithm must never trigger this; it
	// exists as a defensive rejection.
	ErrCapacityOverflow = errors.New("simerr: capacity overflow")

	// ErrDeadlock marks MAX_STUCK consecutive no-progress ticks. Terminates
	// the run cleanly; not a failure.
	ErrDeadlock = errors.New("simerr: deadlock")

	// ErrBatteryExhausted marks an AGV whose battery reached 0 away from the
	// charging station. Not fatal; other AGVs continue.
	ErrBatteryExhausted = errors.New("simerr: battery exhausted")
)
