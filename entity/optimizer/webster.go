// 提供基于Webster方法的信号周期优化
// 周期公式：C = (1.5L + 5) / (1 - Y)，绿灯按各相位关键流量比的份额分配
package optimizer

import (
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/atsc-go/entity"
	"github.com/tsinghua-fib-lab/atsc-go/utils/config"
)

const (
	// 过饱和判定阈值
	oversaturationY = 0.90
	// Y>=1.0时的封顶值，避免周期公式出现负值或无穷大
	// 这是饱和保护值，不代表真实流量比
	saturationCapY = 0.95

	// 显式相位定义未给出绿灯边界时的默认值（秒）
	defaultPhaseMinGreenS = 10
	defaultPhaseMaxGreenS = 60
	// 默认南北/东西两相位的绿灯边界（秒）
	defaultSplitMinGreenS = 15
	defaultSplitMaxGreenS = 60
)

// WebsterOptimizer 信号周期优化器
// 功能：根据实时流量与几何派生的饱和流量，计算路口的最优周期与绿信分配
// 说明：无内部可变状态，输出为全新的不可变配时对象，可被多个控制循环共享
type WebsterOptimizer struct {
	geo entity.IGeometryManager
	rc  *config.RuntimeConfig
}

// New 创建Webster优化器实例
// 参数：geo-几何容量管理器，rc-运行时配置
func New(geo entity.IGeometryManager, rc *config.RuntimeConfig) *WebsterOptimizer {
	return &WebsterOptimizer{geo: geo, rc: rc}
}

// Optimize 计算路口的最优信号配时
// 功能：执行Webster优化的完整流程
// 参数：junctionID-路口ID，flows-各方向流量（PCU/小时），phases-相位定义（nil时使用默认两相位）
// 返回：配时方案与错误信息，未知路口返回ErrJunctionNotFound
// 算法说明：
// 1. 计算每个相位的关键流量比y（相位内各进口道流量比的最大值）
// 2. Y为各相位y之和；Y>=0.90置过饱和标志，Y>=1.0封顶到0.95
// 3. 总损失时间L = 相位数×每相位损失时间
// 4. 最优周期C = (1.5L+5)/(1-Y)，限制在[minCycle, maxCycle]并取整
// 5. 可用绿灯C-L按各相位y的份额分配（Y为0时均分），并限制在相位边界内
// 6. 红灯 = C-绿灯-黄灯；红灯低于最小安全红灯时压缩绿灯，安全优先于比例公平
func (o *WebsterOptimizer) Optimize(junctionID string, flows entity.FlowMap, phases []entity.PhaseDefinition) (*entity.SignalTiming, error) {
	junction, err := o.geo.GetOrError(junctionID)
	if err != nil {
		return nil, err
	}
	if phases == nil {
		phases = o.DefaultPhases(junction)
	}
	hcm := o.rc.All.HCM

	// 各相位的关键流量比
	ratios := lo.Map(phases, func(p entity.PhaseDefinition, _ int) float64 {
		return o.criticalFlowRatio(junctionID, p, flows)
	})
	Y := lo.Sum(ratios)

	isOversaturated := Y >= oversaturationY
	if Y >= 1.0 {
		Y = saturationCapY
	}

	// 总损失时间
	L := float64(len(phases)) * hcm.LostTimePerPhaseS

	// Webster最优周期
	cOpt := (1.5*L + 5) / (1 - Y)
	cOpt = math.Max(hcm.MinCycleS, math.Min(hcm.MaxCycleS, cOpt))
	cycle := int(math.Round(cOpt))

	// 可用绿灯时间
	availableGreen := float64(cycle) - L

	realized := make([]entity.RealizedPhase, 0, len(phases))
	for i, phase := range phases {
		var green float64
		if Y > 0 {
			green = ratios[i] / Y * availableGreen
		} else {
			green = availableGreen / float64(len(phases))
		}

		minGreen, maxGreen := phaseBounds(phase)
		green = math.Max(minGreen, math.Min(maxGreen, green))
		green = math.Round(green)

		// 红灯安全检查：红灯不足时压缩绿灯
		red := float64(cycle) - green - hcm.YellowTimeS
		if red < hcm.MinRedTimeS {
			green = float64(cycle) - hcm.MinRedTimeS - hcm.YellowTimeS
			red = hcm.MinRedTimeS
		}

		realized = append(realized, entity.RealizedPhase{
			Name:      phase.Name,
			GreenS:    math.Max(0, green),
			YellowS:   hcm.YellowTimeS,
			RedS:      math.Max(hcm.MinRedTimeS, red),
			FlowRatio: ratios[i],
		})
	}

	return &entity.SignalTiming{
		CycleLengthS:    cycle,
		Phases:          realized,
		TotalLostTimeS:  int(L),
		SumFlowRatios:   Y,
		IsOversaturated: isOversaturated,
	}, nil
}

// criticalFlowRatio 计算相位的关键流量比
// 功能：y = max(流量/饱和流量)，对相位内所有进口道取最大值
// 说明：无流量的进口道流量比为0；饱和流量由几何管理器保证大于0
func (o *WebsterOptimizer) criticalFlowRatio(junctionID string, phase entity.PhaseDefinition, flows entity.FlowMap) float64 {
	maxRatio := 0.0
	for _, dir := range phase.Approaches {
		flow := flows[dir]
		if flow <= 0 {
			continue
		}
		saturation := o.geo.GetSaturationFlow(junctionID, dir)
		if saturation > 0 {
			maxRatio = math.Max(maxRatio, flow/saturation)
		}
	}
	return maxRatio
}

// DefaultPhases 生成默认的南北/东西两相位定义
// 功能：按路口实际拥有的方向划分南北、东西两个相位
// 说明：缺失方向的相位保留空放行列表，其流量比为0
func (o *WebsterOptimizer) DefaultPhases(junction entity.IJunction) []entity.PhaseDefinition {
	ns := lo.Filter(junction.Directions(), func(d entity.Direction, _ int) bool {
		return d == entity.DirectionNorth || d == entity.DirectionSouth
	})
	ew := lo.Filter(junction.Directions(), func(d entity.Direction, _ int) bool {
		return d == entity.DirectionEast || d == entity.DirectionWest
	})
	return []entity.PhaseDefinition{
		{Name: "NS", Approaches: ns, MinGreenS: defaultSplitMinGreenS, MaxGreenS: defaultSplitMaxGreenS},
		{Name: "EW", Approaches: ew, MinGreenS: defaultSplitMinGreenS, MaxGreenS: defaultSplitMaxGreenS},
	}
}

// phaseBounds 获取相位的绿灯边界，未设置时使用默认值
func phaseBounds(p entity.PhaseDefinition) (minGreen, maxGreen float64) {
	minGreen = p.MinGreenS
	maxGreen = p.MaxGreenS
	if minGreen <= 0 {
		minGreen = defaultPhaseMinGreenS
	}
	if maxGreen <= 0 {
		maxGreen = defaultPhaseMaxGreenS
	}
	return
}
