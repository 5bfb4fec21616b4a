package geometry

// HCM几何调整系数
// 饱和流量：s = s0 × N × fw × fHV × fT
// 查找表为规范常数，必须精确匹配，不是可调参数

// 重型车的小客车当量
const heavyVehicleET = 2.5

// LaneWidthFactor 车道宽度调整系数fw
// 功能：按车道宽度（米）分档返回调整系数，宽度越窄系数越小
func LaneWidthFactor(widthM float64) float64 {
	switch {
	case widthM >= 3.65:
		return 1.00
	case widthM >= 3.35:
		return 0.96
	case widthM >= 3.05:
		return 0.91
	case widthM >= 2.75:
		return 0.86
	default:
		return 0.81
	}
}

// HeavyVehicleFactor 重型车调整系数fHV
// 功能：fHV = 1 / (1 + p*(ET-1))，p为重型车比例，ET=2.5
// 说明：p越大系数越小，p=0时为1.00
func HeavyVehicleFactor(heavyPct float64) float64 {
	return 1.0 / (1.0 + heavyPct*(heavyVehicleET-1.0))
}

// TurnRadiusFactor 转弯半径调整系数fT
// 功能：按转弯半径（米）分档返回调整系数，半径越小车速越低、系数越小
func TurnRadiusFactor(radiusM float64) float64 {
	switch {
	case radiusM >= 15:
		return 0.95
	case radiusM >= 12:
		return 0.92
	case radiusM >= 10:
		return 0.90
	case radiusM >= 8:
		return 0.87
	case radiusM >= 6:
		return 0.85
	default:
		return 0.80
	}
}
