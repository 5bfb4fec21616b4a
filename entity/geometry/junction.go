package geometry

import (
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/atsc-go/entity"
	"github.com/tsinghua-fib-lab/atsc-go/utils/input"
)

// Approach 进口道
// 功能：存储单个进口道的几何属性与加载时一次性计算的派生属性
// 说明：加载后不可变；饱和流量恒大于0，存储容量恒不小于1
type Approach struct {
	direction       entity.Direction // 方向
	lanes           int              // 车道数
	widthM          float64          // 车道宽度（米）
	turnRadiusM     float64          // 转弯半径（米）
	storageLengthM  float64          // 存储长度（米）
	heavyVehiclePct float64          // 重型车比例（0-1）

	fw              float64 // 车道宽度系数
	fHV             float64 // 重型车系数
	fT              float64 // 转弯半径系数
	saturationFlow  float64 // 饱和流量（PCU/小时）
	storageCapacity int     // 存储容量（车辆数）
}

// newApproach 创建并初始化一个进口道
// 功能：对配置中的异常值填入保守默认值，并一次性计算HCM系数与派生属性
// 参数：dir-方向，doc-几何数据文档，baseSaturationFlow-基准饱和流量，
// avgVehicleLenM/avgGapM-存储容量计算使用的平均车长与车间距
// 返回：初始化完成的进口道实例
func newApproach(dir entity.Direction, doc input.ApproachDoc, baseSaturationFlow, avgVehicleLenM, avgGapM float64) *Approach {
	a := &Approach{
		direction:       dir,
		lanes:           doc.Lanes,
		widthM:          doc.WidthM,
		turnRadiusM:     doc.TurnRadiusM,
		storageLengthM:  doc.StorageLengthM,
		heavyVehiclePct: doc.HeavyVehiclePct,
	}
	// 异常配置的保守默认值，保证饱和流量>0
	if a.lanes <= 0 {
		log.Warnf("approach %s: invalid lane count %d, using 1", dir, a.lanes)
		a.lanes = 1
	}
	if a.widthM <= 0 {
		log.Warnf("approach %s: invalid lane width %v, using 3.5m", dir, a.widthM)
		a.widthM = 3.5
	}
	if a.heavyVehiclePct < 0 || a.heavyVehiclePct > 1 {
		log.Warnf("approach %s: invalid heavy vehicle fraction %v, using 0", dir, a.heavyVehiclePct)
		a.heavyVehiclePct = 0
	}

	a.fw = LaneWidthFactor(a.widthM)
	a.fHV = HeavyVehicleFactor(a.heavyVehiclePct)
	a.fT = TurnRadiusFactor(a.turnRadiusM)
	a.saturationFlow = baseSaturationFlow * float64(a.lanes) * a.fw * a.fHV * a.fT

	// 存储容量 = floor(存储长度×车道数 / (平均车长+平均车间距))，最小为1
	capacity := int(math.Floor(a.storageLengthM * float64(a.lanes) / (avgVehicleLenM + avgGapM)))
	if capacity < 1 {
		capacity = 1
	}
	a.storageCapacity = capacity
	return a
}

// Junction 路口
// 功能：存储单个路口的几何数据与派生容量数据
// 说明：配置加载时创建一次，进程生命周期内存活，加载后不可变
type Junction struct {
	id          string                               // 路口ID
	name        string                               // 路口名称
	approaches  map[entity.Direction]*Approach       // 各方向进口道
	directions  []entity.Direction                   // 拥有的方向（固定顺序）
	fixedTiming entity.FixedTiming                   // 基线固定配时
}

// newJunction 创建并初始化一个路口
// 功能：解析方向标签并构建各进口道，未知方向标签返回错误
// 参数：doc-路口几何数据文档，baseSaturationFlow/avgVehicleLenM/avgGapM-容量计算参数
// 返回：初始化完成的路口实例与错误信息
func newJunction(doc input.JunctionDoc, baseSaturationFlow, avgVehicleLenM, avgGapM float64) (*Junction, error) {
	j := &Junction{
		id:         doc.ID,
		name:       doc.Name,
		approaches: make(map[entity.Direction]*Approach),
		fixedTiming: entity.FixedTiming{
			CycleLengthS: doc.Timing.CycleLengthS,
			Phases: lo.Map(doc.Timing.Phases, func(p input.FixedPhaseDoc, _ int) entity.FixedPhase {
				return entity.FixedPhase{Name: p.Name, GreenS: p.GreenS}
			}),
		},
	}
	if j.fixedTiming.CycleLengthS <= 0 {
		// 未配置基线周期时的默认值
		j.fixedTiming.CycleLengthS = 120
	}
	for label, a := range doc.Approaches {
		dir, err := entity.ParseDirection(label)
		if err != nil {
			return nil, err
		}
		j.approaches[dir] = newApproach(dir, a, baseSaturationFlow, avgVehicleLenM, avgGapM)
	}
	// 方向列表按固定顺序排列，保证相位推导的确定性
	for _, dir := range entity.Directions {
		if _, ok := j.approaches[dir]; ok {
			j.directions = append(j.directions, dir)
		}
	}
	return j, nil
}

// ID 获取路口ID
func (j *Junction) ID() string {
	return j.id
}

// Name 获取路口名称
func (j *Junction) Name() string {
	return j.name
}

// Directions 获取路口拥有的进口道方向（固定顺序）
func (j *Junction) Directions() []entity.Direction {
	return j.directions
}

// HasDirection 判断路口是否有指定方向的进口道
func (j *Junction) HasDirection(dir entity.Direction) bool {
	_, ok := j.approaches[dir]
	return ok
}

// SaturationFlow 获取进口道的饱和流量（PCU/小时）
// 返回：饱和流量，未知方向返回0（回退逻辑在Manager层）
func (j *Junction) SaturationFlow(dir entity.Direction) float64 {
	if a, ok := j.approaches[dir]; ok {
		return a.saturationFlow
	}
	return 0
}

// StorageCapacity 获取进口道的存储容量（车辆数）
func (j *Junction) StorageCapacity(dir entity.Direction) int {
	if a, ok := j.approaches[dir]; ok {
		return a.storageCapacity
	}
	return 0
}

// StorageLengthM 获取进口道的存储长度（米）
func (j *Junction) StorageLengthM(dir entity.Direction) float64 {
	if a, ok := j.approaches[dir]; ok {
		return a.storageLengthM
	}
	return 0
}

// FixedTiming 获取基线固定配时
func (j *Junction) FixedTiming() entity.FixedTiming {
	return j.fixedTiming
}

// Factors 获取进口道的三个几何调整系数（fw, fHV, fT）
// 返回：三个系数与方向是否存在
func (j *Junction) Factors(dir entity.Direction) (fw, fHV, fT float64, ok bool) {
	a, exist := j.approaches[dir]
	if !exist {
		return 0, 0, 0, false
	}
	return a.fw, a.fHV, a.fT, true
}
