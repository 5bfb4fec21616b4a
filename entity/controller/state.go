package controller

import (
	"github.com/tsinghua-fib-lab/atsc-go/entity"
	"github.com/tsinghua-fib-lab/atsc-go/utils/container"
)

// 平均延误滚动历史的窗口长度（控制周期数）
const delayHistoryLen = 5

// state 单个路口的控制状态
// 功能：保存平滑流量、当前与稳定配时、劣化计数和累计指标
// 说明：只被该路口的控制流程访问，不同路口的state可并行处理
type state struct {
	junctionID string

	smoothed      entity.FlowMap // EMA平滑后的流量
	currentGreens []float64      // 最近一次下发的各相位绿灯（秒）
	stableGreens  []float64      // 最近一次无劣化时的配时快照，回退目标
	failureCount  int            // 连续劣化周期数
	lastDelay     float64        // 上一周期的平均延误（秒）
	hasDelay      bool           // lastDelay是否有效

	delayHistory *container.Ring[float64] // 平均延误滚动历史
	metrics      Metrics                  // 累计指标
}

func newState(junctionID string) *state {
	return &state{
		junctionID:   junctionID,
		smoothed:     make(entity.FlowMap),
		delayHistory: container.NewRing[float64](delayHistoryLen),
	}
}

// smooth 用指数移动平均更新平滑流量
// 功能：smoothed = alpha×本周期流量 + (1-alpha)×历史平滑值
// 说明：首个周期直接采用实测值；抑制单周期突发流量引起的配时振荡
func (s *state) smooth(flows entity.FlowMap, alpha float64, dirs []entity.Direction) {
	for _, dir := range dirs {
		v := flows[dir]
		if old, ok := s.smoothed[dir]; ok {
			s.smoothed[dir] = alpha*v + (1-alpha)*old
		} else {
			s.smoothed[dir] = v
		}
	}
}

// recentDelayS 计算滚动窗口内的平均延误（秒）
func (s *state) recentDelayS() float64 {
	values := s.delayHistory.Values()
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
