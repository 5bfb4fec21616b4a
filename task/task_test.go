package task_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/atsc-go/task"
	"github.com/tsinghua-fib-lab/atsc-go/utils/config"
)

const geometryYAML = `junctions:
  - id: J001
    name: Test Junction
    approaches:
      north: {lanes: 2, width_m: 3.5, turn_radius_m: 12, storage_length_m: 80, heavy_vehicle_pct: 0.15}
      south: {lanes: 2, width_m: 3.5, turn_radius_m: 12, storage_length_m: 80, heavy_vehicle_pct: 0.15}
      east: {lanes: 3, width_m: 3.2, turn_radius_m: 15, storage_length_m: 120, heavy_vehicle_pct: 0.10}
      west: {lanes: 3, width_m: 3.2, turn_radius_m: 15, storage_length_m: 120, heavy_vehicle_pct: 0.10}
    current_timing:
      cycle_length_s: 120
`

func writeGeometry(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "geometry.yml")
	assert.NoError(t, os.WriteFile(path, []byte(geometryYAML), 0o644))
	return path
}

func newTestConfig(t *testing.T) config.Config {
	return config.Config{
		Input: config.Input{
			Geometry: config.InputPath{File: writeGeometry(t)},
		},
		Measure: config.Measure{Scenario: "peak", Seed: 1},
		Control: config.Control{
			Step: config.ControlStep{Start: 0, Total: 100, Interval: 1},
		},
	}
}

// 合成数据源闭环跑通完整控制任务
func TestRunClosedLoop(t *testing.T) {
	ctx, err := task.NewContext(newTestConfig(t))
	assert.NoError(t, err)
	assert.NoError(t, ctx.Init())

	assert.NotNil(t, ctx.Clock())
	assert.NotNil(t, ctx.GeometryManager())
	assert.NotNil(t, ctx.Optimizer())
	assert.NotNil(t, ctx.RiskMonitor())

	ctx.Run()

	// 100步（每步1秒）、控制周期45秒：t=0/45/90共3个周期
	m, ok := ctx.Controller().Metrics("J001")
	assert.True(t, ok)
	assert.Equal(t, 3, m.Optimizations+m.Reversions)
	assert.Greater(t, ctx.Controller().CurrentGreens("J001")[0], 0.0)
}

// 停止指令在控制周期之间生效
func TestStopBetweenCycles(t *testing.T) {
	ctx, err := task.NewContext(newTestConfig(t))
	assert.NoError(t, err)
	assert.NoError(t, ctx.Init())

	ctx.Stop()
	ctx.Run()

	// 首个周期（t=0）已执行，之后立即退出
	m, _ := ctx.Controller().Metrics("J001")
	assert.Equal(t, 1, m.Optimizations)
}

func TestMissingGeometryIsFatal(t *testing.T) {
	c := newTestConfig(t)
	c.Input.Geometry.File = ""
	_, err := task.NewContext(c)
	assert.Error(t, err)

	c.Input.Geometry.File = filepath.Join(t.TempDir(), "nope.yml")
	_, err = task.NewContext(c)
	assert.Error(t, err)
}
