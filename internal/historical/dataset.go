// Package historical provides the kernel's read-only view over past
// SystemState rows: the state_at(index) operation (spec.md §6) and the
// inflow windows the forecaster consumes. The kernel never writes to
// this dataset.
package historical

import (
	"context"
	"errors"

	"github.com/aosanya/liftkernel/internal/kernel"
)

// ErrOutOfRange is returned when an index has no corresponding row.
var ErrOutOfRange = errors.New("historical: index out of range")

// Dataset is the read-only contract both backends satisfy.
type Dataset interface {
	// StateAt implements state_at(index) → SystemState.
	StateAt(ctx context.Context, index int) (kernel.SystemState, error)
	// InflowWindow returns up to n inflow samples (F1_m3_per_15min)
	// ending at and including index, oldest first. Returns fewer than
	// n samples near the start of the dataset; never errors for that.
	InflowWindow(ctx context.Context, index, n int) ([]float64, error)
	// Len reports the number of rows available.
	Len(ctx context.Context) (int, error)
}
