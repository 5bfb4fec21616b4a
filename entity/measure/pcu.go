package measure

import "github.com/tsinghua-fib-lab/atsc-go/entity"

// 各车型的标准车当量（PCU）换算系数默认值
var defaultPCUFactors = map[string]float64{
	"motorcycle":    0.2,
	"car":           1.0,
	"auto_rickshaw": 0.8,
	"bus":           2.5,
	"truck":         3.0,
	"bicycle":       0.2,
	"pedestrian":    0.5,
}

// 未知车型的保守换算系数
const unknownPCUFactor = 1.0

// PCUConverter 车型到标准车当量的换算器
// 功能：将按车型分类的车辆计数折算为统一的PCU值，供流量口径归一
// 说明：换算系数可按部署地区在配置中覆盖；未知车型按1.0保守处理并告警
type PCUConverter struct {
	factors map[string]float64
}

// NewPCUConverter 创建换算器
// 参数：overrides-配置中的系数覆盖表，nil或缺失项使用默认值
func NewPCUConverter(overrides map[string]float64) *PCUConverter {
	factors := make(map[string]float64, len(defaultPCUFactors))
	for k, v := range defaultPCUFactors {
		factors[k] = v
	}
	for k, v := range overrides {
		if v <= 0 {
			log.Warnf("pcu factor for %q must be positive, got %v, ignored", k, v)
			continue
		}
		factors[k] = v
	}
	return &PCUConverter{factors: factors}
}

// Factor 获取车型的换算系数，未知车型返回1.0
func (c *PCUConverter) Factor(vehicleType string) float64 {
	if f, ok := c.factors[vehicleType]; ok {
		return f
	}
	log.Warnf("unknown vehicle type %q, using factor %v", vehicleType, unknownPCUFactor)
	return unknownPCUFactor
}

// Convert 将车型计数折算为PCU总量
// 参数：counts-按车型分类的车辆计数
// 返回：PCU总量
func (c *PCUConverter) Convert(counts entity.VehicleCounts) float64 {
	total := 0.0
	for vehicleType, n := range counts {
		if n <= 0 {
			continue
		}
		total += float64(n) * c.Factor(vehicleType)
	}
	return total
}
