// Package health reports whether the kernel's pure-computation
// collaborators (forecaster artifact, historical dataset) are loaded
// and reachable, for the process's readiness probe (spec.md §6).
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/aosanya/liftkernel/internal/forecast"
	"github.com/aosanya/liftkernel/internal/historical"
)

// Status is the health state of a single check or of the process overall.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
)

// CheckResult is the outcome of one readiness check.
type CheckResult struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Check is one readiness probe the process performs on demand.
type Check interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// ForecasterCheck reports whether the inflow forecaster has a loaded model.
type ForecasterCheck struct {
	forecaster *forecast.Forecaster
}

// NewForecasterCheck builds the forecaster readiness check.
func NewForecasterCheck(f *forecast.Forecaster) *ForecasterCheck {
	return &ForecasterCheck{forecaster: f}
}

func (c *ForecasterCheck) Name() string { return "forecaster" }

func (c *ForecasterCheck) Check(ctx context.Context) CheckResult {
	if c.forecaster == nil {
		return CheckResult{Name: c.Name(), Status: StatusDown, Message: "forecaster not configured"}
	}
	return CheckResult{Name: c.Name(), Status: StatusHealthy, Message: "inflow model loaded"}
}

// DatasetCheck reports whether the historical dataset backend is reachable.
type DatasetCheck struct {
	dataset historical.Dataset
}

// NewDatasetCheck builds the historical dataset readiness check.
func NewDatasetCheck(d historical.Dataset) *DatasetCheck {
	return &DatasetCheck{dataset: d}
}

func (c *DatasetCheck) Name() string { return "historical_dataset" }

func (c *DatasetCheck) Check(ctx context.Context) CheckResult {
	if c.dataset == nil {
		return CheckResult{Name: c.Name(), Status: StatusDown, Message: "dataset not configured"}
	}
	n, err := c.dataset.Len(ctx)
	if err != nil {
		return CheckResult{Name: c.Name(), Status: StatusDown, Message: fmt.Sprintf("dataset unreachable: %v", err)}
	}
	if n == 0 {
		return CheckResult{Name: c.Name(), Status: StatusDegraded, Message: "dataset loaded but empty"}
	}
	return CheckResult{Name: c.Name(), Status: StatusHealthy, Message: fmt.Sprintf("%d rows loaded", n)}
}

// timeoutGuard bounds a single check so a wedged backend never hangs the
// readiness probe as a whole.
func timeoutGuard(ctx context.Context, c Check, budget time.Duration) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	done := make(chan CheckResult, 1)
	go func() { done <- c.Check(checkCtx) }()

	select {
	case result := <-done:
		return result
	case <-checkCtx.Done():
		return CheckResult{Name: c.Name(), Status: StatusDown, Message: "check timed out"}
	}
}
