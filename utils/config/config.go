package config

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "config")

// 上下文参数的默认值，配置缺失时回退使用
const (
	DefaultBaseSaturationFlow = 1900.0 // PCU/小时/车道
	DefaultMinCycleS          = 30.0
	DefaultMaxCycleS          = 120.0
	DefaultYellowTimeS        = 3.0
	DefaultMinRedTimeS        = 5.0
	DefaultLostTimePerPhaseS  = 4.0

	DefaultWarningOccupancy  = 0.70
	DefaultCriticalOccupancy = 0.85
	DefaultAvgVehicleLengthM = 5.0
	DefaultAvgGapM           = 2.0
	DefaultHistoryLen        = 12

	DefaultUpdateIntervalS      = 45.0
	DefaultMinGreenS            = 15.0
	DefaultMaxGreenS            = 60.0
	DefaultMaxGreenChangeS      = 10.0
	DefaultSmoothingAlpha       = 0.3
	DefaultStabilityWindow      = 3
	DefaultPerformanceThreshold = 1.10
)

// RuntimeConfig 运行时配置
// 功能：存储控制循环运行时的配置信息，所有上下文参数均已填入默认值
// 说明：上下文参数缺失只产生告警，不中止进程；几何数据缺失的处理在输入层
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：创建运行时配置对象，对缺失的上下文参数填入默认值并告警
// 参数：config-原始配置对象
// 返回：初始化的运行时配置指针
func NewRuntimeConfig(config Config) *RuntimeConfig {
	rc := &RuntimeConfig{}

	rc.All = config
	fillHCM(&rc.All.HCM)
	fillSpillback(&rc.All.Spillback)
	fillController(&rc.All.Control.Controller)
	rc.C = rc.All.Control

	return rc
}

func fillHCM(p *HCMParams) {
	if p.BaseSaturationFlow <= 0 {
		log.Warnf("hcm.base_saturation_flow not set, using default %v", DefaultBaseSaturationFlow)
		p.BaseSaturationFlow = DefaultBaseSaturationFlow
	}
	if p.MinCycleS <= 0 {
		p.MinCycleS = DefaultMinCycleS
	}
	if p.MaxCycleS <= 0 {
		p.MaxCycleS = DefaultMaxCycleS
	}
	if p.YellowTimeS <= 0 {
		p.YellowTimeS = DefaultYellowTimeS
	}
	if p.MinRedTimeS <= 0 {
		p.MinRedTimeS = DefaultMinRedTimeS
	}
	if p.LostTimePerPhaseS <= 0 {
		p.LostTimePerPhaseS = DefaultLostTimePerPhaseS
	}
	if p.MinCycleS > p.MaxCycleS {
		log.Warnf("hcm.min_cycle_length_s %v > max_cycle_length_s %v, using defaults", p.MinCycleS, p.MaxCycleS)
		p.MinCycleS = DefaultMinCycleS
		p.MaxCycleS = DefaultMaxCycleS
	}
}

func fillSpillback(p *SpillbackParams) {
	if p.WarningOccupancy <= 0 {
		p.WarningOccupancy = DefaultWarningOccupancy
	}
	if p.CriticalOccupancy <= 0 {
		p.CriticalOccupancy = DefaultCriticalOccupancy
	}
	if p.AvgVehicleLengthM <= 0 {
		p.AvgVehicleLengthM = DefaultAvgVehicleLengthM
	}
	if p.AvgGapM <= 0 {
		p.AvgGapM = DefaultAvgGapM
	}
	if p.HistoryLen <= 0 {
		p.HistoryLen = DefaultHistoryLen
	}
}

func fillController(p *ControllerParams) {
	if p.UpdateIntervalS <= 0 {
		p.UpdateIntervalS = DefaultUpdateIntervalS
	}
	if p.MinGreenS <= 0 {
		p.MinGreenS = DefaultMinGreenS
	}
	if p.MaxGreenS <= 0 {
		p.MaxGreenS = DefaultMaxGreenS
	}
	if p.MaxGreenChangeS <= 0 {
		p.MaxGreenChangeS = DefaultMaxGreenChangeS
	}
	if p.SmoothingAlpha <= 0 || p.SmoothingAlpha > 1 {
		p.SmoothingAlpha = DefaultSmoothingAlpha
	}
	if p.StabilityWindow <= 0 {
		p.StabilityWindow = DefaultStabilityWindow
	}
	if p.PerformanceThreshold <= 1 {
		p.PerformanceThreshold = DefaultPerformanceThreshold
	}
}
