package recurrent

import "sync/atomic"

// endState is representation of one-way only transition to end state.
type endState struct {
	ended uint32
}

func (s *endState) setEnded() (swapped bool) {
	return atomic.CompareAndSwapUint32(&s.ended, 0, 1)
}

func (s *endState) IsEnded() bool {
	return atomic.LoadUint32(&s.ended) == 1
}
