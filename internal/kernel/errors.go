package kernel

import "errors"

var (
	// ErrInvalidState is returned when a SystemState fails basic
	// sanity checks (NaN, negative level, out-of-range price). It is
	// the only error that crosses the decide() boundary.
	ErrInvalidState = errors.New("invalid system state")

	// ErrUnknownPump is returned by the pump model for an unrecognized pump_id.
	ErrUnknownPump = errors.New("unknown pump id")

	// ErrFrequencyOutOfBand is returned by the pump model for a
	// frequency outside [0] ∪ [47.8, 50].
	ErrFrequencyOutOfBand = errors.New("frequency out of band")
)
