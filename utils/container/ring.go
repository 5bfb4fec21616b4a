package container

// Ring 固定容量环形缓冲区
// 功能：保存最近N个样本，写满后以O(1)代价覆盖最旧样本
// 说明：支持泛型，用于排队长度、延误等有界滚动历史，避免无界增长
type Ring[T any] struct {
	data  []T // 底层数组，容量固定
	start int // 最旧元素下标
	count int // 当前元素数
}

// NewRing 创建环形缓冲区
// 参数：capacity-最大样本数，必须大于0
// 返回：初始化完成的环形缓冲区指针
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring[T]{data: make([]T, capacity)}
}

// Len 获取当前样本数
func (r *Ring[T]) Len() int {
	return r.count
}

// Cap 获取最大样本数
func (r *Ring[T]) Cap() int {
	return len(r.data)
}

// Push 追加样本
// 功能：将样本追加到缓冲区末尾，缓冲区已满时覆盖最旧样本
// 参数：v-样本值
func (r *Ring[T]) Push(v T) {
	if r.count < len(r.data) {
		r.data[(r.start+r.count)%len(r.data)] = v
		r.count++
	} else {
		r.data[r.start] = v
		r.start = (r.start + 1) % len(r.data)
	}
}

// At 获取第i个样本（0为最旧）
// 说明：越界时panic，调用方负责保证i < Len()
func (r *Ring[T]) At(i int) T {
	if i < 0 || i >= r.count {
		panic("container: ring index out of range")
	}
	return r.data[(r.start+i)%len(r.data)]
}

// Last 获取最新样本
// 返回：最新样本值与是否存在
func (r *Ring[T]) Last() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	return r.At(r.count - 1), true
}

// Values 按从旧到新的顺序导出所有样本
func (r *Ring[T]) Values() []T {
	out := make([]T, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.At(i)
	}
	return out
}
