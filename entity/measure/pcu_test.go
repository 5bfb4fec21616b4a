package measure_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/atsc-go/entity"
	"github.com/tsinghua-fib-lab/atsc-go/entity/measure"
)

func TestPCUConversion(t *testing.T) {
	c := measure.NewPCUConverter(nil)

	// 10×1.0 + 25×0.2 + 3×2.5 + 8×0.8 + 2×3.0 = 34.9
	got := c.Convert(entity.VehicleCounts{
		"car":           10,
		"motorcycle":    25,
		"bus":           3,
		"auto_rickshaw": 8,
		"truck":         2,
	})
	assert.InDelta(t, 34.9, got, 1e-9)
}

func TestPCUUnknownType(t *testing.T) {
	c := measure.NewPCUConverter(nil)

	// 未知车型按1.0保守折算
	assert.Equal(t, 1.0, c.Factor("rickshaw_v2"))
	assert.InDelta(t, 7.0, c.Convert(entity.VehicleCounts{"rickshaw_v2": 7}), 1e-9)
}

func TestPCUOverrides(t *testing.T) {
	c := measure.NewPCUConverter(map[string]float64{
		"bus":     3.5,
		"scooter": 0.3,
		"car":     -1, // 非法覆盖被忽略
	})

	assert.Equal(t, 3.5, c.Factor("bus"))
	assert.Equal(t, 0.3, c.Factor("scooter"))
	assert.Equal(t, 1.0, c.Factor("car"))
	assert.Equal(t, 0.2, c.Factor("motorcycle"))
}

func TestPCUIgnoresNonPositiveCounts(t *testing.T) {
	c := measure.NewPCUConverter(nil)

	assert.Equal(t, 0.0, c.Convert(entity.VehicleCounts{"car": 0, "bus": -3}))
}
