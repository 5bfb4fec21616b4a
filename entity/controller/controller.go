// 提供带稳定性保障的自适应控制循环
// 每个控制周期按固定次序执行：采集→平滑→劣化检查→优化→限幅→下发
package controller

import (
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/atsc-go/entity"
	"github.com/tsinghua-fib-lab/atsc-go/utils/config"
)

// AdaptiveController 自适应信号控制器
// 功能：按固定节拍对所有路口执行闭环优化，带EMA平滑、调整限幅与劣化回退
// 说明：各路口状态相互独立，一个周期内各路口并行处理，单个路口失败被隔离
type AdaptiveController struct {
	geo    entity.IGeometryManager
	opt    entity.IOptimizer
	risk   entity.IRiskMonitor
	source entity.IMeasurementSource
	sink   entity.ITimingSink
	rc     *config.RuntimeConfig

	ids      []string
	states   map[string]*state
	nextRunT float64 // 下一次控制周期的时刻（秒），首个周期立即触发
}

// 溢出事件判定：排队超过存储容量该比例的进口道计入一次溢出事件
const spillbackEventRatio = 0.85

// New 创建自适应控制器实例
// 参数：geo-几何容量管理器，opt-周期优化器，risk-风险监测器，
// source-实测数据源，sink-配时下发接口，rc-运行时配置
func New(geo entity.IGeometryManager, opt entity.IOptimizer, risk entity.IRiskMonitor,
	source entity.IMeasurementSource, sink entity.ITimingSink, rc *config.RuntimeConfig) *AdaptiveController {
	ids := geo.IDs()
	return &AdaptiveController{
		geo:    geo,
		opt:    opt,
		risk:   risk,
		source: source,
		sink:   sink,
		rc:     rc,
		ids:    ids,
		states: lo.SliceToMap(ids, func(id string) (string, *state) {
			return id, newState(id)
		}),
	}
}

// Due 判断在时刻t是否应执行控制周期
func (c *AdaptiveController) Due(t float64) bool {
	return t >= c.nextRunT
}

// RunCycle 对所有路口执行一个控制周期
// 功能：并行处理所有路口，返回每个路口的显式结果
// 参数：t-当前时刻（秒）
// 返回：按路口列表顺序排列的周期结果，失败以结果携带错误的方式隔离，不中断其他路口
func (c *AdaptiveController) RunCycle(t float64) []CycleOutcome {
	c.nextRunT = t + c.rc.All.Control.Controller.UpdateIntervalS

	outcomes := parallel.GoMap(c.ids, func(id string) CycleOutcome {
		return c.runJunction(id)
	})

	applied, reverted, skipped := 0, 0, 0
	for _, o := range outcomes {
		switch o.Kind {
		case OutcomeApplied:
			applied++
		case OutcomeReverted:
			reverted++
		default:
			skipped++
			if o.Err != nil {
				log.Warnf("junction %s skipped: %v", o.JunctionID, o.Err)
			}
		}
	}
	log.Debugf("cycle at t=%.0fs: %d applied, %d reverted, %d skipped", t, applied, reverted, skipped)
	return outcomes
}

// runJunction 处理单个路口的一个控制周期
// 算法说明（次序固定）：
// 1. 采集实测数据，无数据则跳过本周期
// 2. EMA平滑流量
// 3. 溢出风险分析；排队超过存储容量85%的进口道逐个计入溢出事件
// 4. 劣化检查：平均延误超过上周期的阈值倍数记一次劣化，连续劣化达到
//    稳定窗口后回退到稳定配时快照并重置计数
// 5. Webster优化得到目标绿灯
// 6. 绿灯钳制到控制器边界，相对当前配时限幅（每周期最大调整量），
//    每个被限幅的相位各计一次限幅
// 7. 下发；成功且无劣化时更新稳定配时快照
func (c *AdaptiveController) runJunction(id string) (out CycleOutcome) {
	out = CycleOutcome{JunctionID: id, Kind: OutcomeSkipped}
	// 单路口故障隔离：异常转为该路口的跳过结果
	defer func() {
		if r := recover(); r != nil {
			out.Kind = OutcomeSkipped
			out.Err = fmt.Errorf("junction %s: panic: %v", id, r)
		}
	}()
	s := c.states[id]
	p := c.rc.All.Control.Controller

	m, ok := c.source.Collect(id)
	if !ok {
		out.Err = fmt.Errorf("%w: %s", ErrNoMeasurement, id)
		return
	}

	junction := c.geo.Get(id)
	s.smooth(m.Flows, p.SmoothingAlpha, junction.Directions())

	if rs, err := c.risk.Analyze(id, m.Queues, m.Flows); err == nil {
		out.Risk = rs
	}
	// 溢出事件按进口道逐个计数
	for _, dir := range junction.Directions() {
		capacity := c.geo.GetStorageCapacity(id, dir)
		if float64(m.Queues[dir]) > spillbackEventRatio*float64(capacity) {
			s.metrics.SpillbackEvents++
		}
	}

	// 劣化检查
	delay := m.AverageDelayS()
	s.delayHistory.Push(delay)
	if s.hasDelay && s.lastDelay > 0 && delay > s.lastDelay*p.PerformanceThreshold {
		s.failureCount++
	} else {
		s.failureCount = 0
	}
	s.lastDelay, s.hasDelay = delay, true

	if s.failureCount >= p.StabilityWindow && s.stableGreens != nil {
		if !c.sink.ApplyGreens(id, s.stableGreens) {
			out.Err = fmt.Errorf("%w: %s (revert)", ErrApplyRejected, id)
			return
		}
		s.currentGreens = append([]float64(nil), s.stableGreens...)
		s.metrics.Reversions++
		s.failureCount = 0
		s.metrics.TotalWaitingS += m.TotalWaitingS
		s.metrics.VehicleCount += m.VehicleCount
		out.Kind = OutcomeReverted
		log.Warnf("junction %s: delay degraded %d cycles in a row, reverted to stable timing", id, p.StabilityWindow)
		return
	}

	timing, err := c.opt.Optimize(id, s.smoothed, nil)
	if err != nil {
		out.Err = err
		return
	}

	// 钳制与限幅
	greens := make([]float64, len(timing.Phases))
	for i, phase := range timing.Phases {
		g := math.Max(p.MinGreenS, math.Min(p.MaxGreenS, phase.GreenS))
		if s.currentGreens != nil && i < len(s.currentGreens) {
			if d := g - s.currentGreens[i]; d > p.MaxGreenChangeS {
				g = s.currentGreens[i] + p.MaxGreenChangeS
				s.metrics.RateLimited++
			} else if d < -p.MaxGreenChangeS {
				g = s.currentGreens[i] - p.MaxGreenChangeS
				s.metrics.RateLimited++
			}
		}
		greens[i] = g
	}

	if !c.sink.ApplyGreens(id, greens) {
		out.Err = fmt.Errorf("%w: %s", ErrApplyRejected, id)
		return
	}

	s.currentGreens = greens
	s.metrics.Optimizations++
	if s.failureCount == 0 {
		s.stableGreens = append([]float64(nil), greens...)
	}
	s.metrics.TotalWaitingS += m.TotalWaitingS
	s.metrics.VehicleCount += m.VehicleCount
	out.Kind = OutcomeApplied
	out.Timing = timing
	return
}

// Metrics 获取路口的累计控制指标
// 返回：指标与路口是否存在
func (c *AdaptiveController) Metrics(junctionID string) (Metrics, bool) {
	if s, ok := c.states[junctionID]; ok {
		return s.metrics, true
	}
	return Metrics{}, false
}

// CurrentGreens 获取路口当前下发的各相位绿灯时长（秒）
// 返回：绿灯副本，尚未下发过时为nil
func (c *AdaptiveController) CurrentGreens(junctionID string) []float64 {
	if s, ok := c.states[junctionID]; ok && s.currentGreens != nil {
		return append([]float64(nil), s.currentGreens...)
	}
	return nil
}

// RecentDelayS 获取路口滚动窗口内的平均延误（秒）
func (c *AdaptiveController) RecentDelayS(junctionID string) float64 {
	if s, ok := c.states[junctionID]; ok {
		return s.recentDelayS()
	}
	return 0
}
