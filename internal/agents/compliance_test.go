package agents_test

import (
	"context"
	"testing"
	"time"

	"github.com/aosanya/liftkernel/internal/agents"
	"github.com/aosanya/liftkernel/internal/constraints"
	"github.com/aosanya/liftkernel/internal/kernel"
	"github.com/aosanya/liftkernel/internal/pumpmodel"
	"github.com/aosanya/liftkernel/internal/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplianceAgent_NoViolations(t *testing.T) {
	model := pumpmodel.NewDefault()
	agent := agents.NewComplianceAgent(model, nil)
	tracker := runtime.NewTracker([]string{"P1"}, nil)
	lastEmpty := time.Now().Add(-1 * time.Hour)
	tracker.Commit(nil, kernel.SystemState{Timestamp: lastEmpty, L1M: 0.3}, lastEmpty)

	rec := agent.Assess(context.Background(), agents.AssessInput{
		State: kernel.SystemState{
			Timestamp:    time.Now(),
			L1M:          2.0,
			F1M3Per15Min: 2000,
			F2M3H:        4000,
		},
		Specs:   model.Specs(),
		Runtime: tracker.Snapshot(),
	})

	require.Equal(t, kernel.PriorityLow, rec.Priority)
	assert.False(t, rec.CanVeto)
	violations, ok := rec.Data["violations"].([]string)
	require.True(t, ok)
	assert.Empty(t, violations)
}

func TestComplianceAgent_DetectsLevelViolation(t *testing.T) {
	model := pumpmodel.NewDefault()
	agent := agents.NewComplianceAgent(model, nil)
	tracker := runtime.NewTracker([]string{"P1"}, nil)

	rec := agent.Assess(context.Background(), agents.AssessInput{
		State: kernel.SystemState{
			Timestamp:    time.Now(),
			L1M:          8.5,
			F1M3Per15Min: 2000,
			F2M3H:        4000,
		},
		Specs:   model.Specs(),
		Runtime: tracker.Snapshot(),
	})

	require.Equal(t, kernel.PriorityCritical, rec.Priority)
	assert.True(t, rec.CanVeto)
	violations, ok := rec.Data["violations"].([]string)
	require.True(t, ok)
	assert.NotEmpty(t, violations)
}

func TestComplianceAgent_DetectsEmptyingOverdue(t *testing.T) {
	model := pumpmodel.NewDefault()
	agent := agents.NewComplianceAgent(model, nil)
	tracker := runtime.NewTracker([]string{"P1"}, nil)

	rec := agent.Assess(context.Background(), agents.AssessInput{
		State: kernel.SystemState{
			Timestamp:    time.Now(),
			L1M:          2.0,
			F1M3Per15Min: 500, // dry weather
			F2M3H:        1000,
		},
		Specs:   model.Specs(),
		Runtime: tracker.Snapshot(),
	})

	require.True(t, constraints.IsDryWeather(500))
	require.Equal(t, kernel.PriorityCritical, rec.Priority)
	commands, ok := rec.Data["corrective_commands"].([]kernel.PumpCommand)
	require.True(t, ok)
	started := 0
	for _, c := range commands {
		if c.Start {
			started++
		}
	}
	assert.Equal(t, 1, started)
}
