package geometry

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/atsc-go/entity"
	"github.com/tsinghua-fib-lab/atsc-go/utils/config"
	"github.com/tsinghua-fib-lab/atsc-go/utils/input"
)

// 未知路口/方向的存储容量默认值（车辆数）
const defaultStorageCapacity = 20

// GeometryManager 几何容量模型管理器
// 功能：将静态道路几何转换为优化器与风险监测可用的容量数据
// 说明：加载一次后只读，可被多个组件共享引用，无全局状态
type GeometryManager struct {
	rc *config.RuntimeConfig

	data      map[string]*Junction
	junctions []*Junction
}

// NewManager 创建几何管理器实例
// 参数：rc-运行时配置
// 返回：新创建的几何管理器实例
func NewManager(rc *config.RuntimeConfig) *GeometryManager {
	return &GeometryManager{
		rc:        rc,
		data:      make(map[string]*Junction),
		junctions: make([]*Junction, 0),
	}
}

// Init 初始化所有路口及其派生容量数据
// 功能：根据几何数据文档构建所有路口对象，计算HCM系数与存储容量
// 参数：docs-路口几何数据文档列表
// 返回：错误信息，未知方向标签等格式错误会中止初始化
func (m *GeometryManager) Init(docs []input.JunctionDoc) error {
	hcm := m.rc.All.HCM
	sp := m.rc.All.Spillback
	m.junctions = make([]*Junction, 0, len(docs))
	for _, doc := range docs {
		j, err := newJunction(doc, hcm.BaseSaturationFlow, sp.AvgVehicleLengthM, sp.AvgGapM)
		if err != nil {
			return fmt.Errorf("junction %s: %w", doc.ID, err)
		}
		m.junctions = append(m.junctions, j)
	}
	m.data = lo.SliceToMap(m.junctions, func(j *Junction) (string, *Junction) {
		return j.id, j
	})
	return nil
}

// Get 根据ID获取路口实例
// 功能：通过路口ID查找对应的路口对象，如果不存在则panic
// 参数：id-路口的唯一标识符
func (m *GeometryManager) Get(id string) entity.IJunction {
	if junction, ok := m.data[id]; !ok {
		log.Panicf("no id %s in junction data", id)
		return nil
	} else {
		return junction
	}
}

// GetOrError 根据ID获取路口实例（带错误处理）
// 参数：id-路口的唯一标识符
// 返回：路口实例和错误信息，如果不存在则返回nil和ErrJunctionNotFound
func (m *GeometryManager) GetOrError(id string) (entity.IJunction, error) {
	if junction, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrJunctionNotFound, id)
	} else {
		return junction, nil
	}
}

// GetSaturationFlow 获取进口道的饱和流量
// 功能：返回派生的饱和流量；未知路口或方向回退到基准饱和流量
// 说明：不会失败，调用方将未知进口道按全市基准值处理
func (m *GeometryManager) GetSaturationFlow(id string, dir entity.Direction) float64 {
	if j, ok := m.data[id]; ok {
		if s := j.SaturationFlow(dir); s > 0 {
			return s
		}
	}
	return m.rc.All.HCM.BaseSaturationFlow
}

// GetStorageCapacity 获取进口道的存储容量（车辆数）
// 说明：未知路口或方向回退到默认容量，结果恒不小于1
func (m *GeometryManager) GetStorageCapacity(id string, dir entity.Direction) int {
	if j, ok := m.data[id]; ok {
		if c := j.StorageCapacity(dir); c > 0 {
			return c
		}
	}
	return defaultStorageCapacity
}

// IDs 获取所有路口ID
func (m *GeometryManager) IDs() []string {
	return lo.Map(m.junctions, func(j *Junction, _ int) string { return j.id })
}
