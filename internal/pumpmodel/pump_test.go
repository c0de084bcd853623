package pumpmodel_test

import (
	"testing"

	"github.com/aosanya/liftkernel/internal/kernel"
	"github.com/aosanya/liftkernel/internal/pumpmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformance_Stopped(t *testing.T) {
	m := pumpmodel.NewDefault()
	res, err := m.Performance("P1", 0, 2.0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.FlowM3H)
	assert.Equal(t, 0.0, res.PowerKW)
	assert.Equal(t, 0.0, res.Efficiency)
}

func TestPerformance_RatedPointWithinTwoPercent(t *testing.T) {
	m := pumpmodel.NewDefault()
	spec := m.Specs()["P1"]
	l1AtRatedHead := pumpmodel.L2M - spec.RatedHeadM

	res, err := m.Performance("P1", 50, l1AtRatedHead)
	require.NoError(t, err)

	assert.InEpsilon(t, spec.RatedFlowM3H, res.FlowM3H, 0.02)
	assert.InEpsilon(t, spec.RatedPowerKW, res.PowerKW, 0.02)
}

func TestPerformance_AffinityLaws(t *testing.T) {
	m := pumpmodel.NewDefault()
	full, err := m.Performance("P1", 50, 2.0)
	require.NoError(t, err)
	half, err := m.Performance("P1", 47.8, 2.0)
	require.NoError(t, err)

	ratio := 47.8 / 50.0
	assert.InDelta(t, full.FlowM3H*ratio, half.FlowM3H, 1e-6)
	assert.InDelta(t, full.PowerKW*ratio*ratio*ratio, half.PowerKW, 1e-6)
}

func TestPerformance_UnknownPump(t *testing.T) {
	m := pumpmodel.NewDefault()
	_, err := m.Performance("P9", 48, 2.0)
	assert.ErrorIs(t, err, kernel.ErrUnknownPump)
}

func TestPerformance_FrequencyOutOfBand(t *testing.T) {
	m := pumpmodel.NewDefault()
	_, err := m.Performance("P1", 30, 2.0)
	assert.ErrorIs(t, err, kernel.ErrFrequencyOutOfBand)

	_, err = m.Performance("P1", -1, 2.0)
	assert.ErrorIs(t, err, kernel.ErrFrequencyOutOfBand)
}

func TestPerformance_ClampsLevelOutOfBox(t *testing.T) {
	m := pumpmodel.NewDefault()
	res, err := m.Performance("P1", 48, 9.0)
	require.NoError(t, err)
	assert.True(t, res.Clamped)

	res, err = m.Performance("P1", 48, -1.0)
	require.NoError(t, err)
	assert.True(t, res.Clamped)
}

func TestPerformance_FallbackForMissingCurve(t *testing.T) {
	specs := map[string]kernel.PumpSpec{
		"X1": {PumpID: "X1", RatedFlowM3H: 1000, RatedPowerKW: 50},
	}
	m := pumpmodel.New(specs)
	res, err := m.Performance("X1", 48, 2.0)
	require.NoError(t, err)
	assert.True(t, res.Approximate)
	assert.Equal(t, 0.80, res.Efficiency)
}

func TestRoundTrip_CommandsReproducePerformance(t *testing.T) {
	m := pumpmodel.NewDefault()
	cmd := kernel.PumpCommand{PumpID: "P2", Start: true, FrequencyHz: 49.0}
	res, err := m.Performance(cmd.PumpID, cmd.FrequencyHz, 3.0)
	require.NoError(t, err)
	cmd.FlowM3H, cmd.PowerKW, cmd.Efficiency = res.FlowM3H, res.PowerKW, res.Efficiency

	replay, err := m.Performance(cmd.PumpID, cmd.FrequencyHz, 3.0)
	require.NoError(t, err)
	assert.Equal(t, cmd.FlowM3H, replay.FlowM3H)
	assert.Equal(t, cmd.PowerKW, replay.PowerKW)
	assert.Equal(t, cmd.Efficiency, replay.Efficiency)
}
