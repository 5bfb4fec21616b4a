package config

// InputPath 指定路口几何数据来源的配置（MongoDB、文件系统）
// 功能：定义数据输入路径的配置结构，支持多种数据源
// 说明：文件路径的优先级高于MongoDB
type InputPath struct {
	DB   string `yaml:"db"`             // 数据库名
	Col  string `yaml:"col"`            // 集合名
	File string `yaml:"file,omitempty"` // 文件路径（优先级高于MongoDB）
}

// Input 指定几何数据输入的配置项
type Input struct {
	URI      string    `yaml:"uri,omitempty"` // MongoDB连接字符串
	Geometry InputPath `yaml:"geometry"`      // 路口几何数据
}

// HCMParams 饱和流量与周期计算参数
// 功能：定义容量模型与周期优化使用的常数
// 说明：调整系数查找表为规范常数，不在此处配置；此处仅为部署级可覆盖项
type HCMParams struct {
	BaseSaturationFlow float64 `yaml:"base_saturation_flow,omitempty"`  // 基准饱和流量（PCU/小时/车道），默认1900
	MinCycleS          float64 `yaml:"min_cycle_length_s,omitempty"`    // 最小周期时长（秒），默认30
	MaxCycleS          float64 `yaml:"max_cycle_length_s,omitempty"`    // 最大周期时长（秒），默认120
	YellowTimeS        float64 `yaml:"yellow_time_s,omitempty"`         // 黄灯时长（秒），默认3
	MinRedTimeS        float64 `yaml:"min_red_time_s,omitempty"`        // 最小安全红灯时长（秒），默认5
	LostTimePerPhaseS  float64 `yaml:"lost_time_per_phase_s,omitempty"` // 每相位损失时间（秒，启动+清空），默认4
}

// SpillbackParams 排队溢出监测参数
type SpillbackParams struct {
	WarningOccupancy  float64 `yaml:"warning_occupancy_threshold,omitempty"`  // 警告占用率阈值，默认0.70
	CriticalOccupancy float64 `yaml:"critical_occupancy_threshold,omitempty"` // 危险占用率阈值，默认0.85
	AvgVehicleLengthM float64 `yaml:"avg_vehicle_length_m,omitempty"`         // 平均车长（米），默认5.0
	AvgGapM           float64 `yaml:"avg_gap_m,omitempty"`                    // 平均车间距（米），默认2.0
	HistoryLen        int     `yaml:"history_len,omitempty"`                  // 排队历史环形缓冲区容量，默认12
}

// ControllerParams 自适应控制器稳定性参数
// 说明：这些是经验值，作为配置默认项而非硬编码常数
type ControllerParams struct {
	UpdateIntervalS      float64 `yaml:"update_interval_s,omitempty"`     // 控制周期（秒），默认45（周期级而非步级）
	MinGreenS            float64 `yaml:"min_green_s,omitempty"`           // 最小绿灯时长（秒），默认15
	MaxGreenS            float64 `yaml:"max_green_s,omitempty"`           // 最大绿灯时长（秒），默认60
	MaxGreenChangeS      float64 `yaml:"max_green_change_s,omitempty"`    // 单周期绿灯最大调整量（秒），默认10
	SmoothingAlpha       float64 `yaml:"smoothing_alpha,omitempty"`       // EMA平滑系数，默认0.3
	StabilityWindow      int     `yaml:"stability_window,omitempty"`      // 连续劣化多少周期后回退，默认3
	PerformanceThreshold float64 `yaml:"performance_threshold,omitempty"` // 延误劣化判定倍数，默认1.10
}

// MQTT 实测数据与配时下发使用的MQTT连接配置
type MQTT struct {
	Broker       string `yaml:"broker"`                  // broker地址（tcp://host:port）
	ClientID     string `yaml:"client_id,omitempty"`     // 客户端ID
	Username     string `yaml:"username,omitempty"`      // 用户名
	Password     string `yaml:"password,omitempty"`      // 密码
	MeasureTopic string `yaml:"measure_topic,omitempty"` // 实测数据主题前缀，按"前缀/路口ID"订阅
	TimingTopic  string `yaml:"timing_topic,omitempty"`  // 配时下发主题前缀
}

// Measure 实测数据来源配置
// 说明：配置broker时使用MQTT数据源，否则使用合成数据源闭环运行
type Measure struct {
	MQTT     MQTT   `yaml:"mqtt,omitempty"`     // MQTT数据源与下发
	Scenario string `yaml:"scenario,omitempty"` // 合成数据场景（peak/offpeak/night），默认offpeak
	Seed     uint64 `yaml:"seed,omitempty"`     // 合成数据随机种子
}

// ControlStep 指定控制循环时间范围和间隔的配置项
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒）
}

// Control 控制循环配置
type Control struct {
	Step       ControlStep      `yaml:"step"`
	Controller ControllerParams `yaml:"controller,omitempty"`
}

// Config YAML配置文件的根结构
// 功能：定义整个信控系统的配置结构
// 说明：input.geometry为必需项；其余上下文参数缺失时回退到默认值并告警
type Config struct {
	Input      Input              `yaml:"input"`                 // 输入
	Measure    Measure            `yaml:"measure,omitempty"`     // 实测数据来源
	HCM        HCMParams          `yaml:"hcm,omitempty"`         // 容量与周期参数
	Spillback  SpillbackParams    `yaml:"spillback,omitempty"`   // 溢出监测参数
	Control    Control            `yaml:"control"`               // 控制过程
	PCUFactors map[string]float64 `yaml:"pcu_factors,omitempty"` // 车型PCU换算系数
}
