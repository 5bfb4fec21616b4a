package entity

// 依赖倒置，表达各组件之间的接口需求

// entity/geometry/junction.go的依赖倒置
type IJunction interface {
	ID() string                           // 获取路口ID
	Name() string                         // 获取路口名称
	Directions() []Direction              // 获取路口拥有的进口道方向（固定顺序）
	HasDirection(dir Direction) bool      // 判断路口是否有指定方向的进口道
	SaturationFlow(dir Direction) float64 // 获取进口道的饱和流量（PCU/小时），未知方向返回0
	StorageCapacity(dir Direction) int    // 获取进口道的存储容量（车辆数），未知方向返回0
	StorageLengthM(dir Direction) float64 // 获取进口道的存储长度（米），未知方向返回0
	FixedTiming() FixedTiming             // 获取基线固定配时
}

// entity/geometry/manager.go的依赖倒置
type IGeometryManager interface {
	// 输入路口ID，查找路口，如果不存在则panic
	Get(id string) IJunction
	// 输入路口ID，查找路口，如果不存在则返回error
	GetOrError(id string) (IJunction, error)

	// 获取进口道的饱和流量，未知路口/方向回退到基准值，不会失败
	GetSaturationFlow(id string, dir Direction) float64
	// 获取进口道的存储容量（车辆数），未知路口/方向回退到默认值，最小为1
	GetStorageCapacity(id string, dir Direction) int

	IDs() []string // 获取所有路口ID
}

// entity/optimizer/webster.go的依赖倒置
type IOptimizer interface {
	// 计算路口的最优信号配时，未知路口返回ErrJunctionNotFound
	// phases为nil时按路口实际拥有的方向生成默认的南北/东西两相位
	Optimize(junctionID string, flows FlowMap, phases []PhaseDefinition) (*SignalTiming, error)
	// 对比优化配时与基线固定配时
	CompareWithFixed(junctionID string, flows FlowMap) (*TimingComparison, error)
}

// entity/spillback/monitor.go的依赖倒置
type IRiskMonitor interface {
	// 分析路口的溢出风险，未知路口返回ErrJunctionNotFound
	// inflows为nil时不估计溢出时间
	Analyze(junctionID string, queues QueueMap, inflows FlowMap) (*JunctionRiskStatus, error)
	// 判断是否应当让上游路口截流（占用率>=0.90且趋势上升，两者缺一不可）
	ShouldBlockUpstream(junctionID string, dir Direction) bool
}

// 实测数据源，由外部协作方实现（模拟、视觉检测、传感器等）
type IMeasurementSource interface {
	// 采集指定路口本周期的实测数据，ok为false表示本周期无数据
	Collect(junctionID string) (m Measurement, ok bool)
}

// 配时下发接口，由外部协作方实现（信号机、模拟器、mock）
type ITimingSink interface {
	// 下发各相位绿灯时长，即发即弃，返回下发是否成功
	ApplyGreens(junctionID string, greens []float64) bool
}
