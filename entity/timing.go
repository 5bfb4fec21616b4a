package entity

// PhaseDefinition 信号相位定义
// 功能：描述一个信号相位包含的进口道方向与绿灯时长的安全边界
type PhaseDefinition struct {
	Name       string      // 相位名（如NS、EW）
	Approaches []Direction // 相位内放行的进口道方向
	MinGreenS  float64     // 最小绿灯时长（秒），安全约束
	MaxGreenS  float64     // 最大绿灯时长（秒），协调约束
}

// RealizedPhase 优化结果中单个相位的实际配时
type RealizedPhase struct {
	Name      string  // 相位名
	GreenS    float64 // 绿灯时长（秒）
	YellowS   float64 // 黄灯时长（秒）
	RedS      float64 // 红灯时长（秒）
	FlowRatio float64 // 决定该相位份额的关键流量比y
}

// SignalTiming 信号配时方案
// 功能：一次周期优化的完整输出，不可变值对象，每次优化重新生成
type SignalTiming struct {
	CycleLengthS    int             // 周期时长（秒）
	Phases          []RealizedPhase // 按相序排列的实际相位配时
	TotalLostTimeS  int             // 周期总损失时间L（秒）
	SumFlowRatios   float64         // 关键流量比之和Y（内部使用的封顶值）
	IsOversaturated bool            // 过饱和标志（Y>=0.90）
}

// FixedPhase 基线固定配时中的单个相位
type FixedPhase struct {
	Name   string  // 相位名
	GreenS float64 // 绿灯时长（秒）
}

// FixedTiming 路口的基线固定配时，用于对比与回退
type FixedTiming struct {
	CycleLengthS int          // 固定周期时长（秒）
	Phases       []FixedPhase // 固定相位列表
}

// TimingComparison 优化配时与基线固定配时的对比结果
type TimingComparison struct {
	Fixed                FixedTiming  // 基线固定配时
	Optimized            SignalTiming // 优化配时
	CycleReductionS      int          // 周期缩短量（秒），负值表示延长
	ImprovementPotential string       // 改善潜力分级（HIGH/MODERATE）
}

// Measurement 单个路口一次控制周期内采集到的实测数据
type Measurement struct {
	Flows         FlowMap  // 各方向流量（PCU/小时）
	Queues        QueueMap // 各方向排队长度（车辆数）
	TotalWaitingS float64  // 路口范围内车辆累计等待时间（秒）
	VehicleCount  int      // 路口范围内车辆数
}

// AverageDelayS 计算平均每车延误（秒）
// 说明：车辆数为0时返回0，避免除零
func (m Measurement) AverageDelayS() float64 {
	if m.VehicleCount <= 0 {
		return 0
	}
	return m.TotalWaitingS / float64(m.VehicleCount)
}
