// 提供进口道排队溢出（spillback）风险监测
// 占用率 = 排队长度/存储容量，按阈值分级并跟踪排队变化趋势
package spillback

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/atsc-go/entity"
	"github.com/tsinghua-fib-lab/atsc-go/utils/config"
	"github.com/tsinghua-fib-lab/atsc-go/utils/container"
)

const (
	// 建议阻断上游放行的占用率阈值
	blockOccupancy = 0.90
	// 趋势判定所需的最少历史样本数（前3个与后3个的均值对比，
	// 样本不足6个时两个窗口允许重叠）
	minTrendSamples = 3
	// 趋势判定的排队变化死区（车辆数），变化在死区内视为稳定
	trendDeadband = 2.0
)

// historyKey 排队历史的键，按（路口，方向）区分
type historyKey struct {
	junctionID string
	dir        entity.Direction
}

// queueSample 一次排队长度采样
type queueSample struct {
	t     time.Time
	queue int
}

// RiskMonitor 排队溢出风险监测器
// 功能：根据排队长度与存储容量评估各进口道的溢出风险，维护有界排队历史
// 说明：历史缓冲区按（路口，方向）惰性创建；多个控制协程并发分析不同路口时由互斥锁保护
type RiskMonitor struct {
	geo entity.IGeometryManager
	rc  *config.RuntimeConfig

	mu      sync.Mutex
	history map[historyKey]*container.Ring[queueSample]
}

// NewMonitor 创建风险监测器实例
// 参数：geo-几何容量管理器，rc-运行时配置
func NewMonitor(geo entity.IGeometryManager, rc *config.RuntimeConfig) *RiskMonitor {
	return &RiskMonitor{
		geo:     geo,
		rc:      rc,
		history: make(map[historyKey]*container.Ring[queueSample]),
	}
}

// Analyze 分析路口的溢出风险
// 功能：对路口所有进口道计算占用率、风险等级与预计溢出时间，生成路口级状态
// 参数：junctionID-路口ID，queues-各方向排队长度（车辆数），inflows-各方向流入流量（PCU/小时）
// 返回：路口风险状态与错误信息，未知路口返回ErrJunctionNotFound
// 算法说明：
// 1. 占用率 = 排队长度/存储容量；>=1.0为SPILLBACK，>=危险阈值为CRITICAL，
//    >=警告阈值为WARNING，否则OK（边界值取高等级）
// 2. 预计溢出时间 = 剩余容量/流入流量×3600秒，仅在有流入且未溢出时给出
// 3. 路口级风险取各进口道最大值；推荐处置列出处于触发等级的全部进口道
// 4. 每次分析将排队长度写入该进口道的环形历史，供趋势判定使用
func (m *RiskMonitor) Analyze(junctionID string, queues entity.QueueMap, inflows entity.FlowMap) (*entity.JunctionRiskStatus, error) {
	junction, err := m.geo.GetOrError(junctionID)
	if err != nil {
		return nil, err
	}
	sp := m.rc.All.Spillback
	now := time.Now()

	status := &entity.JunctionRiskStatus{
		JunctionID: junctionID,
		Timestamp:  now,
		Approaches: make(map[entity.Direction]entity.ApproachRiskStatus),
	}
	// 最严重进口道排名，小顶堆按负占用率排序
	ranking := container.NewPriorityQueue[entity.Direction]()
	var spillbackDirs, criticalDirs []entity.Direction

	for _, dir := range junction.Directions() {
		queue := queues[dir]
		capacity := m.geo.GetStorageCapacity(junctionID, dir)
		occupancy := float64(queue) / float64(capacity)

		level := entity.RiskOK
		switch {
		case occupancy >= 1.0:
			level = entity.RiskSpillback
		case occupancy >= sp.CriticalOccupancy:
			level = entity.RiskCritical
		case occupancy >= sp.WarningOccupancy:
			level = entity.RiskWarning
		}

		var tts *float64
		if level != entity.RiskSpillback {
			if inflow := inflows[dir]; inflow > 0 {
				v := float64(capacity-queue) / inflow * 3600
				tts = &v
			}
		}

		m.record(historyKey{junctionID, dir}, queueSample{t: now, queue: queue})

		status.Approaches[dir] = entity.ApproachRiskStatus{
			Direction:        dir,
			QueueLength:      queue,
			StorageCapacity:  capacity,
			OccupancyPct:     occupancy * 100,
			Level:            level,
			TimeToSpillbackS: tts,
		}
		if level > status.OverallLevel {
			status.OverallLevel = level
		}
		switch level {
		case entity.RiskSpillback:
			spillbackDirs = append(spillbackDirs, dir)
		case entity.RiskCritical:
			criticalDirs = append(criticalDirs, dir)
		}
		ranking.HeapPush(dir, -occupancy)
	}

	worst, _ := ranking.HeapPop()
	status.RecommendedAction = recommend(status.OverallLevel, spillbackDirs, criticalDirs)
	if status.OverallLevel >= entity.RiskCritical {
		log.Warnf("junction %s: %s on %s approach, %s",
			junctionID, status.OverallLevel, worst, status.RecommendedAction)
	}
	return status, nil
}

// recommend 根据风险等级生成确定性的推荐处置文本
// 说明：列出处于触发等级的全部进口道，按方向固定顺序拼接
func recommend(level entity.RiskLevel, spillbackDirs, criticalDirs []entity.Direction) string {
	join := func(dirs []entity.Direction) string {
		return strings.Join(lo.Map(dirs, func(d entity.Direction, _ int) string {
			return d.String()
		}), ", ")
	}
	switch level {
	case entity.RiskSpillback:
		return fmt.Sprintf("URGENT: Extend green for %s. Consider blocking upstream.", join(spillbackDirs))
	case entity.RiskCritical:
		return fmt.Sprintf("Extend green for %s by 10-15s", join(criticalDirs))
	case entity.RiskWarning:
		return "Monitor closely, consider extending green"
	default:
		return "No action needed"
	}
}

// record 将排队样本写入进口道的环形历史
func (m *RiskMonitor) record(key historyKey, s queueSample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ring, ok := m.history[key]
	if !ok {
		ring = container.NewRing[queueSample](m.rc.All.Spillback.HistoryLen)
		m.history[key] = ring
	}
	ring.Push(s)
}

// Trend 获取进口道的排队变化趋势
// 功能：对比历史窗口内前3个与后3个样本的均值，超出死区判定为上升/下降
// 参数：junctionID-路口ID，dir-进口道方向
// 返回：趋势，样本不足3个时返回STABLE；样本不足6个时两个窗口重叠
func (m *RiskMonitor) Trend(junctionID string, dir entity.Direction) entity.Trend {
	m.mu.Lock()
	defer m.mu.Unlock()
	ring, ok := m.history[historyKey{junctionID, dir}]
	if !ok || ring.Len() < minTrendSamples {
		return entity.TrendStable
	}
	samples := ring.Values()

	first, last := 0.0, 0.0
	for i := 0; i < 3; i++ {
		first += float64(samples[i].queue)
		last += float64(samples[len(samples)-3+i].queue)
	}
	diff := (last - first) / 3
	switch {
	case diff > trendDeadband:
		return entity.TrendIncreasing
	case diff < -trendDeadband:
		return entity.TrendDecreasing
	default:
		return entity.TrendStable
	}
}

// ShouldBlockUpstream 判断是否建议阻断上游路口向该进口道放行
// 功能：占用率不低于0.90且排队趋势为上升时返回true
// 说明：两个条件缺一不可，避免对短时高占用的误判
func (m *RiskMonitor) ShouldBlockUpstream(junctionID string, dir entity.Direction) bool {
	m.mu.Lock()
	ring, ok := m.history[historyKey{junctionID, dir}]
	var queue int
	if ok {
		if last, exists := ring.Last(); exists {
			queue = last.queue
		} else {
			ok = false
		}
	}
	m.mu.Unlock()
	if !ok {
		return false
	}

	capacity := m.geo.GetStorageCapacity(junctionID, dir)
	occupancy := float64(queue) / float64(capacity)
	return occupancy >= blockOccupancy && m.Trend(junctionID, dir) == entity.TrendIncreasing
}
