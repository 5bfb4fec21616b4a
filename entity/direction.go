package entity

import "fmt"

// Direction 进口道方向
// 功能：以固定枚举表示路口进口道的方向，替代任意字符串键
// 说明：未知的方向字符串必须在边界处显式拒绝，不允许静默接受
type Direction int32

const (
	DirectionUnspecified Direction = iota // 未指定
	DirectionNorth                        // 北进口
	DirectionSouth                        // 南进口
	DirectionEast                         // 东进口
	DirectionWest                         // 西进口
)

// Directions 全部有效方向，按固定顺序排列
var Directions = []Direction{DirectionNorth, DirectionSouth, DirectionEast, DirectionWest}

var directionNames = map[Direction]string{
	DirectionNorth: "north",
	DirectionSouth: "south",
	DirectionEast:  "east",
	DirectionWest:  "west",
}

var directionValues = map[string]Direction{
	"north": DirectionNorth,
	"south": DirectionSouth,
	"east":  DirectionEast,
	"west":  DirectionWest,
}

// String 获取方向的字符串表示
func (d Direction) String() string {
	if s, ok := directionNames[d]; ok {
		return s
	}
	return fmt.Sprintf("direction(%d)", int32(d))
}

// ParseDirection 将字符串解析为方向枚举
// 功能：解析配置与外部输入中的方向标签
// 参数：s-方向字符串（north/south/east/west）
// 返回：方向枚举与错误信息，未知标签返回ErrUnknownDirection
func ParseDirection(s string) (Direction, error) {
	if d, ok := directionValues[s]; ok {
		return d, nil
	}
	return DirectionUnspecified, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// FlowMap 各方向的流量（PCU/小时）
type FlowMap map[Direction]float64

// QueueMap 各方向的排队长度（车辆数）
type QueueMap map[Direction]int

// VehicleCounts 各车型的车辆数，键为车型名（car/bus/motorcycle等）
type VehicleCounts map[string]int
