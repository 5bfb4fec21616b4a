package optimizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/atsc-go/entity"
	"github.com/tsinghua-fib-lab/atsc-go/entity/geometry"
	"github.com/tsinghua-fib-lab/atsc-go/entity/optimizer"
	"github.com/tsinghua-fib-lab/atsc-go/utils/config"
	"github.com/tsinghua-fib-lab/atsc-go/utils/input"
)

func newTestOptimizer(t *testing.T) (*optimizer.WebsterOptimizer, *config.RuntimeConfig) {
	rc := config.NewRuntimeConfig(config.Config{})
	m := geometry.NewManager(rc)
	a := input.ApproachDoc{
		Lanes:           2,
		WidthM:          3.5,
		TurnRadiusM:     12,
		StorageLengthM:  80,
		HeavyVehiclePct: 0.15,
	}
	err := m.Init([]input.JunctionDoc{
		{
			ID:   "J001",
			Name: "Test Junction",
			Approaches: map[string]input.ApproachDoc{
				"north": a, "south": a, "east": a, "west": a,
			},
			Timing: input.FixedTimingDoc{CycleLengthS: 120},
		},
	})
	assert.NoError(t, err)
	return optimizer.New(m, rc), rc
}

// 中等流量场景：周期落在边界之间，绿灯按关键流量比分配
func TestOptimizeModerateDemand(t *testing.T) {
	o, _ := newTestOptimizer(t)

	timing, err := o.Optimize("J001", entity.FlowMap{
		entity.DirectionNorth: 800,
		entity.DirectionSouth: 750,
		entity.DirectionEast:  1200,
		entity.DirectionWest:  1100,
	}, nil)
	assert.NoError(t, err)

	// 饱和流量约2739.7，Y = (800+1200)/2739.7 ≈ 0.730
	assert.InDelta(t, 0.730, timing.SumFlowRatios, 1e-3)
	assert.False(t, timing.IsOversaturated)
	assert.Greater(t, timing.CycleLengthS, int(config.DefaultMinCycleS))
	assert.Less(t, timing.CycleLengthS, int(config.DefaultMaxCycleS))
	assert.Equal(t, 63, timing.CycleLengthS)
	assert.Equal(t, 8, timing.TotalLostTimeS)

	// 可用绿灯55秒按0.4/0.6分配
	assert.Len(t, timing.Phases, 2)
	assert.Equal(t, "NS", timing.Phases[0].Name)
	assert.Equal(t, 22.0, timing.Phases[0].GreenS)
	assert.Equal(t, "EW", timing.Phases[1].Name)
	assert.Equal(t, 33.0, timing.Phases[1].GreenS)
}

// 零流量场景：周期钳制到下界，绿灯均分并受最小绿灯约束
func TestOptimizeZeroDemand(t *testing.T) {
	o, _ := newTestOptimizer(t)

	timing, err := o.Optimize("J001", entity.FlowMap{}, nil)
	assert.NoError(t, err)

	assert.Equal(t, int(config.DefaultMinCycleS), timing.CycleLengthS)
	assert.Equal(t, 0.0, timing.SumFlowRatios)
	assert.False(t, timing.IsOversaturated)
	for _, p := range timing.Phases {
		// 均分11秒低于默认最小绿灯15秒，被抬升
		assert.Equal(t, 15.0, p.GreenS)
		assert.GreaterOrEqual(t, p.RedS, config.DefaultMinRedTimeS)
	}
}

// 极端流量场景：Y封顶到0.95，周期钳制到上界，过饱和标志置位
func TestOptimizeOversaturated(t *testing.T) {
	o, _ := newTestOptimizer(t)

	timing, err := o.Optimize("J001", entity.FlowMap{
		entity.DirectionNorth: 5000,
		entity.DirectionSouth: 5000,
		entity.DirectionEast:  5000,
		entity.DirectionWest:  5000,
	}, nil)
	assert.NoError(t, err)

	assert.True(t, timing.IsOversaturated)
	assert.Equal(t, 0.95, timing.SumFlowRatios)
	assert.Equal(t, int(config.DefaultMaxCycleS), timing.CycleLengthS)
	for _, p := range timing.Phases {
		assert.GreaterOrEqual(t, p.RedS, config.DefaultMinRedTimeS)
		assert.GreaterOrEqual(t, p.GreenS, 0.0)
	}
}

// Y在[0.90, 1.0)之间：置过饱和标志但不封顶
func TestOversaturationFlagWithoutCap(t *testing.T) {
	o, _ := newTestOptimizer(t)

	timing, err := o.Optimize("J001", entity.FlowMap{
		entity.DirectionNorth: 1250,
		entity.DirectionEast:  1300,
	}, nil)
	assert.NoError(t, err)

	assert.True(t, timing.IsOversaturated)
	assert.Less(t, timing.SumFlowRatios, 1.0)
	assert.GreaterOrEqual(t, timing.SumFlowRatios, 0.90)
}

// 任意流量组合下周期与红灯的安全不变量
func TestOptimizeSafetyInvariants(t *testing.T) {
	o, _ := newTestOptimizer(t)

	cases := []entity.FlowMap{
		{},
		{entity.DirectionNorth: 1},
		{entity.DirectionNorth: 300, entity.DirectionEast: 2900},
		{entity.DirectionNorth: 2000, entity.DirectionSouth: 2000},
		{entity.DirectionNorth: 9999, entity.DirectionSouth: 9999, entity.DirectionEast: 9999, entity.DirectionWest: 9999},
	}
	for i, flows := range cases {
		timing, err := o.Optimize("J001", flows, nil)
		assert.NoError(t, err, "case %d", i)
		assert.GreaterOrEqual(t, timing.CycleLengthS, int(config.DefaultMinCycleS), "case %d", i)
		assert.LessOrEqual(t, timing.CycleLengthS, int(config.DefaultMaxCycleS), "case %d", i)
		for _, p := range timing.Phases {
			assert.GreaterOrEqual(t, p.RedS, config.DefaultMinRedTimeS, "case %d phase %s", i, p.Name)
			assert.GreaterOrEqual(t, p.GreenS, 0.0, "case %d phase %s", i, p.Name)
			assert.Equal(t, config.DefaultYellowTimeS, p.YellowS, "case %d phase %s", i, p.Name)
		}
	}
}

// 显式相位定义未给出边界时使用10-60秒默认值
func TestExplicitPhaseDefaultBounds(t *testing.T) {
	o, _ := newTestOptimizer(t)

	phases := []entity.PhaseDefinition{
		{Name: "P1", Approaches: []entity.Direction{entity.DirectionNorth}},
		{Name: "P2", Approaches: []entity.Direction{entity.DirectionEast}},
	}
	timing, err := o.Optimize("J001", entity.FlowMap{entity.DirectionNorth: 800}, phases)
	assert.NoError(t, err)

	// 无流量相位的绿灯被默认最小值抬升到10秒
	assert.Equal(t, 10.0, timing.Phases[1].GreenS)
	assert.Equal(t, 0.0, timing.Phases[1].FlowRatio)
}

func TestOptimizeUnknownJunction(t *testing.T) {
	o, _ := newTestOptimizer(t)

	_, err := o.Optimize("nope", entity.FlowMap{}, nil)
	assert.ErrorIs(t, err, entity.ErrJunctionNotFound)
}

func TestCompareWithFixed(t *testing.T) {
	o, _ := newTestOptimizer(t)

	// 中等流量：优化周期63秒 < 120×0.8，改善潜力HIGH
	cmp, err := o.CompareWithFixed("J001", entity.FlowMap{
		entity.DirectionNorth: 800,
		entity.DirectionSouth: 750,
		entity.DirectionEast:  1200,
		entity.DirectionWest:  1100,
	})
	assert.NoError(t, err)
	assert.Equal(t, 120, cmp.Fixed.CycleLengthS)
	assert.Equal(t, 63, cmp.Optimized.CycleLengthS)
	assert.Equal(t, 57, cmp.CycleReductionS)
	assert.Equal(t, optimizer.ImprovementHigh, cmp.ImprovementPotential)

	// 过饱和：优化周期钳制到120秒，无缩短，改善潜力MODERATE
	cmp, err = o.CompareWithFixed("J001", entity.FlowMap{
		entity.DirectionNorth: 5000,
		entity.DirectionEast:  5000,
	})
	assert.NoError(t, err)
	assert.Equal(t, 0, cmp.CycleReductionS)
	assert.Equal(t, optimizer.ImprovementModerate, cmp.ImprovementPotential)

	_, err = o.CompareWithFixed("nope", entity.FlowMap{})
	assert.ErrorIs(t, err, entity.ErrJunctionNotFound)
}
