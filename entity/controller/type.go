package controller

import (
	"errors"

	"github.com/tsinghua-fib-lab/atsc-go/entity"
)

var (
	// ErrNoMeasurement 本周期无实测数据
	ErrNoMeasurement = errors.New("no measurement this cycle")
	// ErrApplyRejected 配时下发被拒绝
	ErrApplyRejected = errors.New("timing apply rejected")
)

// OutcomeKind 单个路口一次控制周期的处理结果类型
type OutcomeKind int32

const (
	OutcomeSkipped  OutcomeKind = iota // 本周期跳过（无数据或出错，Err说明原因）
	OutcomeApplied                     // 优化配时已下发
	OutcomeReverted                    // 性能劣化，已回退到稳定配时
)

var outcomeNames = map[OutcomeKind]string{
	OutcomeSkipped:  "SKIPPED",
	OutcomeApplied:  "APPLIED",
	OutcomeReverted: "REVERTED",
}

func (k OutcomeKind) String() string {
	if s, ok := outcomeNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// CycleOutcome 单个路口一次控制周期的结果
// 功能：显式携带每个路口的处理结果，单个路口失败不影响其他路口
type CycleOutcome struct {
	JunctionID string                     // 路口ID
	Kind       OutcomeKind                // 结果类型
	Err        error                      // 跳过原因，成功时为nil
	Timing     *entity.SignalTiming       // 下发的配时，跳过或回退时为nil
	Risk       *entity.JunctionRiskStatus // 本周期的溢出风险状态
}

// Metrics 单个路口的累计控制指标
type Metrics struct {
	Optimizations   int     // 成功下发优化配时的次数
	Reversions      int     // 回退到稳定配时的次数
	RateLimited     int     // 被限幅的绿灯调整次数（按相位计）
	SpillbackEvents int     // 排队超过存储容量85%的进口道累计次数（按进口道计）
	TotalWaitingS   float64 // 累计车辆等待时间（秒）
	VehicleCount    int     // 累计观测车辆数
}

// AverageDelayS 计算累计平均每车延误（秒）
func (m Metrics) AverageDelayS() float64 {
	if m.VehicleCount <= 0 {
		return 0
	}
	return m.TotalWaitingS / float64(m.VehicleCount)
}
