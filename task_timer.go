package recurrent

import (
	"fmt"
	"sync"
	"time"

	"github.com/ngicks/gommon/pkg/common"
	"github.com/ngicks/recurrent/heap"
)

// taskTimer is a wrapper around the task min-heap and a timer channel.
// It manages the timer to be always reset to the earliest scheduled task.
type taskTimer struct {
	mu     sync.Mutex
	q      *heap.Heap[*Task]
	getNow common.NowGetter
	timer  common.Timer
}

// newTaskTimer creates a taskTimer.
//
// panic: If getNow or timer is nil.
func newTaskTimer(getNow common.NowGetter, timer common.Timer) *taskTimer {
	if getNow == nil || timer == nil {
		panic(
			fmt.Errorf(
				"%w: one or more of arguments is nil. getNow is nil=[%t], timer is nil=[%t]",
				ErrInvalidArg,
				getNow == nil,
				timer == nil,
			),
		)
	}
	return &taskTimer{
		q:      heap.New(taskLess),
		getNow: getNow,
		timer:  timer,
	}
}

// C returns the timer channel
// that emits when the scheduled instant of the earliest task is past.
func (f *taskTimer) C() <-chan time.Time {
	return f.timer.C()
}

// Push pushes task into the underlying heap.
// If task became the new earliest one, the timer is reset to it.
func (f *taskTimer) Push(task *Task) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prevMin := f.q.Peek()
	f.q.Push(task)

	if newMin := f.q.Peek(); prevMin == nil || newMin.scheduledAt.Before(prevMin.scheduledAt) {
		f.reset(newMin.scheduledAt)
	}
}

// PopDue pops tasks whose scheduled instant is at or before t,
// in scheduled order, ties broken by registration order.
// The timer is re-armed to the earliest remaining task if any.
func (f *taskTimer) PopDue(t time.Time) []*Task {
	f.mu.Lock()
	defer f.mu.Unlock()

	var due []*Task
	for {
		min := f.q.Peek()
		if min == nil || min.scheduledAt.After(t) {
			break
		}
		due = append(due, f.q.Pop())
	}

	if min := f.q.Peek(); min != nil {
		f.reset(min.scheduledAt)
	}
	return due
}

func (f *taskTimer) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.q.Len()
}

// Stop stops the timer without touching pending tasks.
func (f *taskTimer) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopTimer()
}

// Drain stops the timer and removes and returns all pending tasks.
func (f *taskTimer) Drain() []*Task {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopTimer()
	var tasks []*Task
	for f.q.Len() > 0 {
		tasks = append(tasks, f.q.Pop())
	}
	return tasks
}

func (f *taskTimer) reset(to time.Time) {
	f.stopTimer()
	f.timer.Reset(to.Sub(f.getNow.GetNow()))
}

func (f *taskTimer) stopTimer() {
	if !f.timer.Stop() {
		// non-blocking receive.
		// in case of racy concurrent receivers.
		select {
		case <-f.timer.C():
		default:
		}
	}
}
