package heap

import (
	"container/heap"
)

// Heap is a generic min-heap ordered by a less function given at creation.
type Heap[T any] struct {
	hi *heapInterface[T]
}

func New[T any](less func(i, j T) bool) *Heap[T] {
	if less == nil {
		return nil
	}
	h := &Heap[T]{
		hi: NewInterface(less),
	}
	heap.Init(h.hi)
	return h
}

func (h *Heap[T]) Len() int {
	return h.hi.Len()
}

func (h *Heap[T]) Push(ele T) {
	heap.Push(h.hi, ele)
}

func (h *Heap[T]) Pop() T {
	c, ok := heap.Pop(h.hi).(T)
	if !ok {
		panic("invariant violated")
	}
	return c
}

// Peek returns a min element without modifying underlying heap.
// It returns a zero value of T if heap is empty.
func (h *Heap[T]) Peek() (p T) {
	c, ok := h.hi.Peek().(T)
	if !ok {
		return
	}
	return c
}
