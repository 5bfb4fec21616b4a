package optimizer

import "github.com/tsinghua-fib-lab/atsc-go/entity"

// 改善潜力分级
const (
	ImprovementHigh     = "HIGH"
	ImprovementModerate = "MODERATE"
)

// CompareWithFixed 将优化配时与路口的基线固定配时对比
// 功能：用默认两相位执行一次优化，计算相对基线的周期变化与改善潜力
// 参数：junctionID-路口ID，flows-各方向流量（PCU/小时）
// 返回：对比结果与错误信息
// 算法说明：优化周期小于基线周期80%时改善潜力为HIGH，否则为MODERATE；
// 周期缩短量为负值表示优化周期比基线更长（常见于过饱和场景）
func (o *WebsterOptimizer) CompareWithFixed(junctionID string, flows entity.FlowMap) (*entity.TimingComparison, error) {
	junction, err := o.geo.GetOrError(junctionID)
	if err != nil {
		return nil, err
	}
	optimized, err := o.Optimize(junctionID, flows, nil)
	if err != nil {
		return nil, err
	}

	fixed := junction.FixedTiming()
	reduction := fixed.CycleLengthS - optimized.CycleLengthS
	potential := ImprovementModerate
	if float64(optimized.CycleLengthS) < 0.8*float64(fixed.CycleLengthS) {
		potential = ImprovementHigh
	}
	log.Debugf("junction %s: fixed cycle %ds -> optimized %ds (%s)",
		junctionID, fixed.CycleLengthS, optimized.CycleLengthS, potential)

	return &entity.TimingComparison{
		Fixed:                fixed,
		Optimized:            *optimized,
		CycleReductionS:      reduction,
		ImprovementPotential: potential,
	}, nil
}
