package heap

func NewInterface[T any](less func(i, j T) bool) *heapInterface[T] {
	if less == nil {
		return nil
	}
	return &heapInterface[T]{
		s:    make([]T, 0),
		less: less,
	}
}

type heapInterface[T any] struct {
	s    []T
	less func(i, j T) bool
}

func (s *heapInterface[T]) Len() int {
	return len(s.s)
}

// Less means j is less than i
func (s *heapInterface[T]) Less(i, j int) bool {
	return s.less(s.s[i], s.s[j])
}

// Swap swaps the elements with indexes i and j.
func (s *heapInterface[T]) Swap(i, j int) {
	s.s[i], s.s[j] = s.s[j], s.s[i]
}

func (s *heapInterface[T]) Push(x any) {
	c, ok := x.(T)
	if !ok {
		panic("invariant violation")
	}
	s.s = append(s.s, c)
}

func (s *heapInterface[T]) Pop() (p any) {
	p, s.s = s.s[len(s.s)-1], s.s[:len(s.s)-1]
	return
}

func (s *heapInterface[T]) Peek() (p any) {
	if len(s.s) != 0 {
		return s.s[0]
	} else {
		return
	}
}
