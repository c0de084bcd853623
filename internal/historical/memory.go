package historical

import (
	"context"

	"github.com/aosanya/liftkernel/internal/kernel"
)

// MemoryDataset is a slice-backed Dataset used by tests and by
// deployments that preload history without a live ArangoDB instance.
type MemoryDataset struct {
	rows []kernel.SystemState
}

// NewMemoryDataset builds a MemoryDataset from rows ordered by index.
func NewMemoryDataset(rows []kernel.SystemState) *MemoryDataset {
	return &MemoryDataset{rows: rows}
}

func (m *MemoryDataset) StateAt(_ context.Context, index int) (kernel.SystemState, error) {
	if index < 0 || index >= len(m.rows) {
		return kernel.SystemState{}, ErrOutOfRange
	}
	return m.rows[index], nil
}

func (m *MemoryDataset) InflowWindow(_ context.Context, index, n int) ([]float64, error) {
	if index < 0 || index >= len(m.rows) {
		return nil, ErrOutOfRange
	}
	start := index - n + 1
	if start < 0 {
		start = 0
	}
	window := make([]float64, 0, index-start+1)
	for i := start; i <= index; i++ {
		window = append(window, m.rows[i].F1M3Per15Min)
	}
	return window, nil
}

func (m *MemoryDataset) Len(_ context.Context) (int, error) {
	return len(m.rows), nil
}
