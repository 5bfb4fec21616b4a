package geometry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/atsc-go/entity/geometry"
)

func TestLaneWidthFactor(t *testing.T) {
	// 档位边界的精确值
	assert.Equal(t, 1.00, geometry.LaneWidthFactor(3.65))
	assert.Equal(t, 1.00, geometry.LaneWidthFactor(4.0))
	assert.Equal(t, 0.96, geometry.LaneWidthFactor(3.5))
	assert.Equal(t, 0.96, geometry.LaneWidthFactor(3.35))
	assert.Equal(t, 0.91, geometry.LaneWidthFactor(3.05))
	assert.Equal(t, 0.86, geometry.LaneWidthFactor(2.75))
	assert.Equal(t, 0.81, geometry.LaneWidthFactor(2.50))

	// 宽度减小时系数单调不增
	widths := []float64{4.0, 3.65, 3.5, 3.35, 3.2, 3.05, 2.9, 2.75, 2.5, 2.0}
	prev := geometry.LaneWidthFactor(widths[0])
	for _, w := range widths[1:] {
		f := geometry.LaneWidthFactor(w)
		assert.LessOrEqual(t, f, prev, "width %v", w)
		prev = f
	}
}

func TestHeavyVehicleFactor(t *testing.T) {
	// fHV = 1/(1+1.5p)
	assert.Equal(t, 1.00, geometry.HeavyVehicleFactor(0))
	assert.InDelta(t, 0.727, geometry.HeavyVehicleFactor(0.25), 1e-3)
	assert.InDelta(t, 1.0/2.5, geometry.HeavyVehicleFactor(1.0), 1e-9)

	// p增大时严格递减
	prev := geometry.HeavyVehicleFactor(0)
	for p := 0.05; p <= 1.0; p += 0.05 {
		f := geometry.HeavyVehicleFactor(p)
		assert.Less(t, f, prev, "p=%v", p)
		prev = f
	}
}

func TestTurnRadiusFactor(t *testing.T) {
	assert.Equal(t, 0.95, geometry.TurnRadiusFactor(15))
	assert.Equal(t, 0.95, geometry.TurnRadiusFactor(20))
	assert.Equal(t, 0.92, geometry.TurnRadiusFactor(12))
	assert.Equal(t, 0.90, geometry.TurnRadiusFactor(10))
	assert.Equal(t, 0.87, geometry.TurnRadiusFactor(8))
	assert.Equal(t, 0.85, geometry.TurnRadiusFactor(6))
	assert.Equal(t, 0.80, geometry.TurnRadiusFactor(5))
}
