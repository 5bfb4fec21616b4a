package entity

import (
	"github.com/tsinghua-fib-lab/atsc-go/clock"
	"github.com/tsinghua-fib-lab/atsc-go/utils/config"
)

type ITaskContext interface {
	Clock() *clock.Clock
	GeometryManager() IGeometryManager
	Optimizer() IOptimizer
	RiskMonitor() IRiskMonitor
	RuntimeConfig() *config.RuntimeConfig
}
