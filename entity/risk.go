package entity

import "time"

// RiskLevel 排队溢出风险等级
// 功能：按占用率对进口道排队溢出（spillback）危险程度分级
// 说明：数值越大越严重，路口级状态取所有进口道中的最大值
type RiskLevel int32

const (
	RiskOK        RiskLevel = iota // 占用率低于警告阈值
	RiskWarning                    // 占用率达到警告阈值
	RiskCritical                   // 占用率达到危险阈值
	RiskSpillback                  // 排队超过存储容量，已溢出
)

var riskNames = map[RiskLevel]string{
	RiskOK:        "OK",
	RiskWarning:   "WARNING",
	RiskCritical:  "CRITICAL",
	RiskSpillback: "SPILLBACK",
}

func (l RiskLevel) String() string {
	if s, ok := riskNames[l]; ok {
		return s
	}
	return "UNKNOWN"
}

// Trend 排队长度变化趋势
type Trend int32

const (
	TrendStable     Trend = iota // 稳定
	TrendIncreasing              // 上升
	TrendDecreasing              // 下降
)

var trendNames = map[Trend]string{
	TrendStable:     "STABLE",
	TrendIncreasing: "INCREASING",
	TrendDecreasing: "DECREASING",
}

func (t Trend) String() string {
	if s, ok := trendNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// ApproachRiskStatus 单个进口道的溢出风险状态
type ApproachRiskStatus struct {
	Direction        Direction // 进口道方向
	QueueLength      int       // 当前排队长度（车辆数）
	StorageCapacity  int       // 存储容量（车辆数）
	OccupancyPct     float64   // 占用率（百分比）
	Level            RiskLevel // 风险等级
	TimeToSpillbackS *float64  // 预计溢出时间（秒），无流入数据或已溢出时为nil
}

// JunctionRiskStatus 路口级溢出风险状态
// 功能：一次风险分析的完整输出，包含各进口道状态与推荐处置
type JunctionRiskStatus struct {
	JunctionID        string                           // 路口ID
	Timestamp         time.Time                        // 分析时间
	Approaches        map[Direction]ApproachRiskStatus // 各进口道风险状态
	OverallLevel      RiskLevel                        // 路口级风险等级（各进口道最大值）
	RecommendedAction string                           // 推荐处置（确定性生成的文本）
}
