package geometry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/atsc-go/entity"
	"github.com/tsinghua-fib-lab/atsc-go/entity/geometry"
	"github.com/tsinghua-fib-lab/atsc-go/utils/config"
	"github.com/tsinghua-fib-lab/atsc-go/utils/input"
)

func defaultApproach() input.ApproachDoc {
	return input.ApproachDoc{
		Lanes:           2,
		WidthM:          3.5,
		TurnRadiusM:     12,
		StorageLengthM:  80,
		HeavyVehiclePct: 0.15,
	}
}

func newTestManager(t *testing.T) *geometry.GeometryManager {
	rc := config.NewRuntimeConfig(config.Config{})
	m := geometry.NewManager(rc)
	err := m.Init([]input.JunctionDoc{
		{
			ID:   "J001",
			Name: "Test Junction",
			Approaches: map[string]input.ApproachDoc{
				"north": defaultApproach(),
				"south": defaultApproach(),
				"east":  defaultApproach(),
				"west":  defaultApproach(),
			},
			Timing: input.FixedTimingDoc{CycleLengthS: 120},
		},
	})
	assert.NoError(t, err)
	return m
}

func TestSaturationFlowDerivation(t *testing.T) {
	m := newTestManager(t)

	// s = 1900 × 2 × fw(3.5)=0.96 × fHV(0.15)=1/1.225 × fT(12)=0.92
	want := 1900.0 * 2 * 0.96 * (1.0 / 1.225) * 0.92
	got := m.GetSaturationFlow("J001", entity.DirectionNorth)
	assert.InDelta(t, want, got, 1e-6)
	assert.Greater(t, got, 0.0)

	j := m.Get("J001")
	fw, fHV, fT, ok := j.(*geometry.Junction).Factors(entity.DirectionNorth)
	assert.True(t, ok)
	assert.Equal(t, 0.96, fw)
	assert.InDelta(t, 0.8163, fHV, 1e-4)
	assert.Equal(t, 0.92, fT)
}

func TestStorageCapacity(t *testing.T) {
	m := newTestManager(t)

	// floor(80m × 2车道 / (5m+2m)) = 22
	assert.Equal(t, 22, m.GetStorageCapacity("J001", entity.DirectionEast))
}

func TestStorageCapacityMinimum(t *testing.T) {
	rc := config.NewRuntimeConfig(config.Config{})
	m := geometry.NewManager(rc)
	a := defaultApproach()
	a.StorageLengthM = 1 // 过短的存储段仍至少能容纳1辆车
	err := m.Init([]input.JunctionDoc{
		{ID: "J1", Approaches: map[string]input.ApproachDoc{"north": a}},
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, m.GetStorageCapacity("J1", entity.DirectionNorth))
}

func TestUnknownFallbacks(t *testing.T) {
	m := newTestManager(t)

	// 未知路口/方向回退到基准值，不失败
	assert.Equal(t, config.DefaultBaseSaturationFlow, m.GetSaturationFlow("nope", entity.DirectionNorth))
	assert.Equal(t, 20, m.GetStorageCapacity("nope", entity.DirectionNorth))

	_, err := m.GetOrError("nope")
	assert.ErrorIs(t, err, entity.ErrJunctionNotFound)
}

func TestMalformedApproachDefaults(t *testing.T) {
	rc := config.NewRuntimeConfig(config.Config{})
	m := geometry.NewManager(rc)
	err := m.Init([]input.JunctionDoc{
		{
			ID: "J1",
			Approaches: map[string]input.ApproachDoc{
				"north": {Lanes: 0, WidthM: -1, TurnRadiusM: 0, StorageLengthM: 0, HeavyVehiclePct: 2},
			},
		},
	})
	assert.NoError(t, err)
	// 保守默认值保证饱和流量>0、容量>=1
	assert.Greater(t, m.GetSaturationFlow("J1", entity.DirectionNorth), 0.0)
	assert.GreaterOrEqual(t, m.GetStorageCapacity("J1", entity.DirectionNorth), 1)
}

func TestUnknownDirectionRejected(t *testing.T) {
	rc := config.NewRuntimeConfig(config.Config{})
	m := geometry.NewManager(rc)
	err := m.Init([]input.JunctionDoc{
		{ID: "J1", Approaches: map[string]input.ApproachDoc{"northeast": defaultApproach()}},
	})
	assert.ErrorIs(t, err, entity.ErrUnknownDirection)
}
