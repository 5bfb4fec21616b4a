package task

import (
	"flag"
	"sync/atomic"
	"time"

	"github.com/tsinghua-fib-lab/atsc-go/clock"
	"github.com/tsinghua-fib-lab/atsc-go/entity"
	"github.com/tsinghua-fib-lab/atsc-go/entity/controller"
	"github.com/tsinghua-fib-lab/atsc-go/entity/geometry"
	"github.com/tsinghua-fib-lab/atsc-go/entity/measure"
	"github.com/tsinghua-fib-lab/atsc-go/entity/optimizer"
	"github.com/tsinghua-fib-lab/atsc-go/entity/spillback"
	"github.com/tsinghua-fib-lab/atsc-go/utils/config"
	"github.com/tsinghua-fib-lab/atsc-go/utils/input"
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
	// 实时模式：每步按墙钟等待步长时间，对接MQTT等真实数据源时开启
	realtime = flag.Bool("realtime", false, "每步按墙钟等待步长时间")
)

var _ entity.ITaskContext = (*Context)(nil)

// Context 控制任务上下文
// 功能：包含一次控制任务的所有组件和状态，替代全局变量
// 说明：管理时钟、几何容量模型、优化器、风险监测器与控制器的装配和运行
type Context struct {

	// 关闭指令，置位后在当前控制周期结束处退出
	closed atomic.Bool

	// 时钟
	clock *clock.Clock

	// 几何容量管理器
	geometryManager *geometry.GeometryManager
	// 周期优化器
	optimizer *optimizer.WebsterOptimizer
	// 溢出风险监测器
	riskMonitor *spillback.RiskMonitor
	// 自适应控制器
	controller *controller.AdaptiveController
	// 实测数据源
	source entity.IMeasurementSource
	// 配时下发
	sink entity.ITimingSink
	// MQTT数据源（非nil时退出前断开连接）
	mqttSource *measure.MQTTSource

	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig

	// 用于初始化的输入
	initRes *input.GeometryData
}

// NewContext 创建新的控制任务上下文
// 功能：加载几何数据并创建基础组件
// 参数：c-配置对象
// 返回：上下文实例与错误信息，几何数据缺失或非法时返回错误
func NewContext(c config.Config) (*Context, error) {
	ctx := &Context{}
	ctx.clock = clock.New(c.Control.Step)

	// 几何数据是必需输入，加载失败中止
	initRes, err := input.Init(c)
	if err != nil {
		return nil, err
	}
	ctx.initRes = initRes

	ctx.runtimeConfig = config.NewRuntimeConfig(c)
	ctx.geometryManager = geometry.NewManager(ctx.runtimeConfig)
	return ctx, nil
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) GeometryManager() entity.IGeometryManager {
	return ctx.geometryManager
}

func (ctx *Context) Optimizer() entity.IOptimizer {
	return ctx.optimizer
}

func (ctx *Context) RiskMonitor() entity.IRiskMonitor {
	return ctx.riskMonitor
}

func (ctx *Context) Controller() *controller.AdaptiveController {
	return ctx.controller
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

// Init 初始化所有组件
// 功能：构建路口容量数据并装配优化器、风险监测器、数据源与控制器
// 算法说明：
// 1. 重置时钟
// 2. 几何管理器先完成初始化，其余组件都依赖派生容量数据
// 3. 配置了MQTT broker时使用MQTT数据源与下发，否则用合成数据源闭环运行
func (ctx *Context) Init() error {
	ctx.clock.Init()

	log.Infof("Junction: %v", len(ctx.initRes.Junctions))
	if err := ctx.geometryManager.Init(ctx.initRes.Junctions); err != nil {
		return err
	}

	rc := ctx.runtimeConfig
	ctx.optimizer = optimizer.New(ctx.geometryManager, rc)
	ctx.riskMonitor = spillback.NewMonitor(ctx.geometryManager, rc)

	pcu := measure.NewPCUConverter(rc.All.PCUFactors)
	if mc := rc.All.Measure.MQTT; mc.Broker != "" {
		source, sink, err := measure.NewMQTT(mc, pcu)
		if err != nil {
			return err
		}
		ctx.mqttSource = source
		ctx.source, ctx.sink = source, sink
	} else {
		scenario := measure.ParseScenario(rc.All.Measure.Scenario)
		synthetic := measure.NewSyntheticSource(ctx.geometryManager, rc, pcu, scenario, rc.All.Measure.Seed)
		log.Infof("no mqtt broker configured, running closed loop with synthetic %s traffic", scenario)
		ctx.source, ctx.sink = synthetic, synthetic
	}

	ctx.controller = controller.New(ctx.geometryManager, ctx.optimizer, ctx.riskMonitor,
		ctx.source, ctx.sink, rc)
	return nil
}

// step 时间推进一步并按需输出心跳日志
func (ctx *Context) step() {
	ctx.clock.Tick()

	if ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		hour, minute, second := ctx.clock.GetHourMinuteSecond()
		log.Infof(
			"STEP: %d(%d:%d:%.2f)",
			ctx.clock.InternalStep,
			hour, minute, second,
		)
	}
	if *realtime {
		time.Sleep(time.Duration(ctx.clock.DT * float64(time.Second)))
	}
}

// Run 运行控制循环
// 功能：推进时钟并在控制器节拍到达时执行控制周期，直到时间区间结束或收到关闭指令
// 说明：关闭指令只在控制周期之间生效，不打断进行中的周期
func (ctx *Context) Run() {
	if ctx.controller.Due(ctx.clock.T) {
		ctx.controller.RunCycle(ctx.clock.T)
	}
	for {
		if ctx.clock.Done() || ctx.closed.Load() {
			break
		}
		ctx.step()
		if ctx.controller.Due(ctx.clock.T) {
			ctx.controller.RunCycle(ctx.clock.T)
		}
	}
	ctx.logSummary()
	log.Infof("control loop complete")
	ctx.Close()
}

// Stop 请求停止，在当前控制周期结束处生效
func (ctx *Context) Stop() {
	ctx.closed.Store(true)
}

// Close 释放外部连接
func (ctx *Context) Close() {
	if ctx.mqttSource != nil {
		ctx.mqttSource.Close()
		ctx.mqttSource = nil
	}
}

// logSummary 输出各路口的累计控制指标
func (ctx *Context) logSummary() {
	for _, id := range ctx.geometryManager.IDs() {
		m, ok := ctx.controller.Metrics(id)
		if !ok {
			continue
		}
		log.Infof(
			"junction %s: %d optimizations, %d reversions, %d rate-limited, %d spillback events, avg delay %.1fs",
			id, m.Optimizations, m.Reversions, m.RateLimited, m.SpillbackEvents, m.AverageDelayS(),
		)
	}
}
