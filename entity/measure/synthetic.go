// 合成实测数据源，用于闭环运行与测试
// 按场景生成车辆到达，排队随下发绿灯演化，构成可复现的反馈回路
package measure

import (
	"sync"

	"github.com/tsinghua-fib-lab/atsc-go/entity"
	"github.com/tsinghua-fib-lab/atsc-go/utils/config"
	"github.com/tsinghua-fib-lab/atsc-go/utils/randengine"
)

// Scenario 合成交通场景
type Scenario string

const (
	ScenarioPeak    Scenario = "peak"    // 高峰
	ScenarioOffPeak Scenario = "offpeak" // 平峰
	ScenarioNight   Scenario = "night"   // 夜间
)

// 各场景相对高峰需求的缩放系数
var scenarioScale = map[Scenario]float64{
	ScenarioPeak:    1.0,
	ScenarioOffPeak: 0.55,
	ScenarioNight:   0.20,
}

// ParseScenario 解析场景名，未知场景回退到平峰并告警
func ParseScenario(s string) Scenario {
	if s == "" {
		return ScenarioOffPeak
	}
	if _, ok := scenarioScale[Scenario(s)]; !ok {
		log.Warnf("unknown scenario %q, using %s", s, ScenarioOffPeak)
		return ScenarioOffPeak
	}
	return Scenario(s)
}

// 生成车辆的车型构成权重
var (
	mixTypes   = []string{"car", "motorcycle", "auto_rickshaw", "bus", "truck"}
	mixWeights = []float64{0.55, 0.25, 0.10, 0.05, 0.05}
)

// 高峰场景下各方向的基准到达需求（车辆/小时）
var baseDemand = entity.FlowMap{
	entity.DirectionNorth: 900,
	entity.DirectionSouth: 850,
	entity.DirectionEast:  1300,
	entity.DirectionWest:  1200,
}

// 未下发过配时时假定的绿信比
const defaultGreenShare = 0.40

var (
	_ entity.IMeasurementSource = (*SyntheticSource)(nil)
	_ entity.ITimingSink        = (*SyntheticSource)(nil)
)

// SyntheticSource 合成数据源
// 功能：同时实现实测数据源与配时下发接口，形成闭环——下发的绿灯越长，
// 对应进口道的排队消散越快
// 说明：每个路口持有独立的随机引擎，相同种子下输出完全可复现
type SyntheticSource struct {
	mu sync.Mutex

	geo   entity.IGeometryManager
	rc    *config.RuntimeConfig
	pcu   *PCUConverter
	scale float64

	engines map[string]*randengine.Engine
	queues  map[string]entity.QueueMap
	greens  map[string][]float64
}

// NewSyntheticSource 创建合成数据源
// 参数：geo-几何容量管理器，rc-运行时配置，pcu-PCU换算器，
// scenario-交通场景，seed-随机种子
func NewSyntheticSource(geo entity.IGeometryManager, rc *config.RuntimeConfig,
	pcu *PCUConverter, scenario Scenario, seed uint64) *SyntheticSource {
	s := &SyntheticSource{
		geo:     geo,
		rc:      rc,
		pcu:     pcu,
		scale:   scenarioScale[scenario],
		engines: make(map[string]*randengine.Engine),
		queues:  make(map[string]entity.QueueMap),
		greens:  make(map[string][]float64),
	}
	for i, id := range geo.IDs() {
		s.engines[id] = randengine.New(seed + uint64(i))
		s.queues[id] = make(entity.QueueMap)
	}
	return s
}

// Collect 生成路口本周期的合成实测数据
// 算法说明：
// 1. 各方向到达量 = 基准需求×场景系数×(0.9~1.1随机抖动)，按车型构成
//    抽样后经PCU换算得到上报流量
// 2. 排队演化：排队 += 到达 - 驶离，驶离量由饱和流量与当前绿信比决定，
//    排队限制在[0, 2×存储容量]内
// 3. 等待时间按排队车辆在整个周期内等待近似
func (s *SyntheticSource) Collect(junctionID string) (entity.Measurement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	eng, ok := s.engines[junctionID]
	if !ok {
		return entity.Measurement{}, false
	}
	junction := s.geo.Get(junctionID)
	interval := s.rc.All.Control.Controller.UpdateIntervalS
	queues := s.queues[junctionID]
	greens := s.greens[junctionID]

	flows := make(entity.FlowMap)
	outQueues := make(entity.QueueMap)
	totalWaiting := 0.0
	vehicles := 0

	for _, dir := range junction.Directions() {
		demand := baseDemand[dir] * s.scale * (0.9 + 0.2*eng.Float64())
		arrived := int(demand*interval/3600 + 0.5)

		counts := make(entity.VehicleCounts)
		for k := 0; k < arrived; k++ {
			counts[mixTypes[eng.DiscreteDistribution(mixWeights)]]++
		}
		arrivedPCU := s.pcu.Convert(counts)
		flows[dir] = arrivedPCU / interval * 3600

		served := int(junction.SaturationFlow(dir) / 3600 * interval * s.greenShare(dir, greens))
		queue := queues[dir] + arrived - served
		if queue < 0 {
			queue = 0
		}
		if limit := 2 * s.geo.GetStorageCapacity(junctionID, dir); queue > limit {
			queue = limit
		}
		queues[dir] = queue
		outQueues[dir] = queue

		totalWaiting += float64(queue) * interval
		vehicles += queue + arrived
	}

	return entity.Measurement{
		Flows:         flows,
		Queues:        outQueues,
		TotalWaitingS: totalWaiting,
		VehicleCount:  vehicles,
	}, true
}

// ApplyGreens 记录下发的配时，作用于后续周期的排队演化
func (s *SyntheticSource) ApplyGreens(junctionID string, greens []float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.engines[junctionID]; !ok {
		return false
	}
	s.greens[junctionID] = append([]float64(nil), greens...)
	return true
}

// greenShare 计算方向所属相位的绿信比
// 说明：配时为南北/东西两相位的绿灯时长，加上两相位的损失时间折算占比
func (s *SyntheticSource) greenShare(dir entity.Direction, greens []float64) float64 {
	if len(greens) < 2 {
		return defaultGreenShare
	}
	lost := 2 * s.rc.All.HCM.LostTimePerPhaseS
	total := greens[0] + greens[1] + lost
	if total <= 0 {
		return defaultGreenShare
	}
	if dir == entity.DirectionNorth || dir == entity.DirectionSouth {
		return greens[0] / total
	}
	return greens[1] / total
}
