package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/atsc-go/utils/container"
)

func TestRingInit(t *testing.T) {
	r := container.NewRing[int](3)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 3, r.Cap())
	_, ok := r.Last()
	assert.False(t, ok)
}

func TestRingPushAndEvict(t *testing.T) {
	r := container.NewRing[int](3)

	// 未满时按序追加
	r.Push(1)
	r.Push(2)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []int{1, 2}, r.Values())

	// 写满后覆盖最旧样本
	r.Push(3)
	r.Push(4)
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []int{2, 3, 4}, r.Values())
	assert.Equal(t, 2, r.At(0))

	last, ok := r.Last()
	assert.True(t, ok)
	assert.Equal(t, 4, last)

	r.Push(5)
	r.Push(6)
	assert.Equal(t, []int{4, 5, 6}, r.Values())
}

func TestRingZeroCapacity(t *testing.T) {
	r := container.NewRing[int](0)
	assert.Equal(t, 1, r.Cap())
	r.Push(1)
	r.Push(2)
	assert.Equal(t, []int{2}, r.Values())
}

func TestPriorityQueue(t *testing.T) {
	q := container.NewPriorityQueue[string]()
	q.Push("b", 2)
	q.Push("a", 1)
	q.Push("c", 3)
	q.Heapify()

	v, p := q.HeapPop()
	assert.Equal(t, "a", v)
	assert.Equal(t, 1.0, p)

	q.HeapPush("x", 0.5)
	v, _ = q.HeapPop()
	assert.Equal(t, "x", v)

	v, _ = q.HeapPop()
	assert.Equal(t, "b", v)
	assert.Equal(t, 1, q.Len())
}
