package recurrent

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ngicks/gommon/pkg/common"
)

// WorkFn is user-supplied work of a task.
//
// ctx is cancelled when the owning executor is being torn down.
// scheduled is the instant this run was scheduled for.
// A returned error or a panic is reported through hooks
// and does not cancel the schedule.
//
// WorkFn may call Schedule* on its own executor; registration is
// non-blocking so re-entrant scheduling never deadlocks.
type WorkFn = func(ctx context.Context, scheduled time.Time) error

// Task is the live slot of one registered schedule.
//
// All fields other than the cancellation state are owned by the executor's
// coordinating goroutine. Exactly one run of a task is in flight at a time;
// the task is not re-armed until its previous run completed.
type Task struct {
	id  string
	seq uint64

	schedule Schedule
	work     WorkFn

	scheduledAt time.Time
	startedAt   time.Time
	finishedAt  time.Time

	cancelled uint32
	cancelCh  chan struct{}
}

func newTask(id string, seq uint64, schedule Schedule, work WorkFn) *Task {
	return &Task{
		id:       id,
		seq:      seq,
		schedule: schedule,
		work:     work,
		cancelCh: make(chan struct{}),
	}
}

// Do runs work once, recording run boundaries on the task.
// A panic inside work is recovered into *PanicError.
func (t *Task) Do(ctx context.Context, getNow common.NowGetter) (err error) {
	t.startedAt = getNow.GetNow()
	defer func() {
		t.finishedAt = getNow.GetNow()
		if recovered := recover(); recovered != nil {
			err = &PanicError{Recovered: recovered}
		}
	}()
	return t.work(ctx, t.scheduledAt)
}

func (t *Task) Id() string {
	return t.id
}

func (t *Task) ScheduledAt() time.Time {
	return t.scheduledAt
}

// Cancel sets the cancellation flag.
// The flag is observed by the executor at the task's next state transition;
// a run already in flight completes normally.
func (t *Task) Cancel() (cancelled bool) {
	cancelled = atomic.CompareAndSwapUint32(&t.cancelled, 0, 1)
	if cancelled {
		close(t.cancelCh)
	}
	return
}

func (t *Task) IsCancelled() bool {
	return atomic.LoadUint32(&t.cancelled) == 1
}

// CancelledCh is closed once the task is cancelled.
func (t *Task) CancelledCh() <-chan struct{} {
	return t.cancelCh
}

func (t *Task) info() TaskInfo {
	return TaskInfo{
		Id:          t.id,
		ScheduledAt: t.scheduledAt,
		StartedAt:   t.startedAt,
		FinishedAt:  t.finishedAt,
	}
}

// taskLess orders tasks by scheduled instant,
// ties broken by registration order.
func taskLess(i, j *Task) bool {
	if i.scheduledAt.Equal(j.scheduledAt) {
		return i.seq < j.seq
	}
	return i.scheduledAt.Before(j.scheduledAt)
}

// TaskHandle is a small wrapper around Task handed back to the caller.
// Simply it removes mutating methods other than Cancel from Task.
//
// A handle stays valid after its slot is removed from the executor;
// cancelling a removed slot is a no-op, never an error.
type TaskHandle struct {
	t *Task
}

func (h *TaskHandle) Id() string {
	return h.t.Id()
}

// Cancel requests termination of the task's schedule.
// It is idempotent and non-blocking, and safe from any goroutine.
// It reports whether this call was the one that cancelled the task.
func (h *TaskHandle) Cancel() (cancelled bool) {
	return h.t.Cancel()
}

func (h *TaskHandle) IsCancelled() bool {
	return h.t.IsCancelled()
}
