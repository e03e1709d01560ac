package recurrent

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/ngicks/gommon/pkg/common"
)

// Option mutates an Executor at construction time.
type Option func(e *Executor) *Executor

// WithHooks sets hooks observing task completions, faults and executor abort.
// Hooks are called from the coordinating goroutine and must return promptly.
func WithHooks(hooks ExecutorHooks) Option {
	return func(e *Executor) *Executor {
		e.hooks = hooks
		return e
	}
}

// WithNowGetter swaps out the wall clock. Mainly for testing.
func WithNowGetter(getNow common.NowGetter) Option {
	return func(e *Executor) *Executor {
		e.getNow = getNow
		return e
	}
}

// WithTimer swaps out the timer implementation. Mainly for testing.
func WithTimer(timer common.Timer) Option {
	return func(e *Executor) *Executor {
		e.timer = timer
		return e
	}
}

// WithDispatcher swaps out the dispatcher built by New or NewPooled.
func WithDispatcher(dispatcher Dispatcher) Option {
	return func(e *Executor) *Executor {
		e.dispatcher = dispatcher
		return e
	}
}

// Executor fires registered schedules repeatedly until they are cancelled
// or the executor is shut down.
//
// All methods are safe for concurrent use.
type Executor struct {
	endState

	dispatcher Dispatcher
	hooks      ExecutorHooks
	getNow     common.NowGetter
	timer      common.Timer

	seq    uint64
	queue  *controlEventQueue
	loop   *loop
	cancel context.CancelFunc
	doneCh chan struct{}
}

// New creates a sequential Executor and starts its coordinating goroutine.
//
// Work functions run inline on the coordinating goroutine,
// one at a time. Shut it down with Shutdown.
func New(opts ...Option) (*Executor, error) {
	return newExecutor(SyncDispatcher{}, opts...)
}

// NewPooled creates an Executor whose work functions run on a worker pool
// of poolSize goroutines, and starts its coordinating goroutine.
//
// It returns ErrInvalidArg if poolSize is zero or negative.
func NewPooled(poolSize int, opts ...Option) (*Executor, error) {
	dispatcher, err := NewWorkerPoolDispatcher(poolSize)
	if err != nil {
		return nil, err
	}
	return newExecutor(dispatcher, opts...)
}

func newExecutor(dispatcher Dispatcher, opts ...Option) (*Executor, error) {
	e := &Executor{
		dispatcher: dispatcher,
		hooks:      PassThroughHook{},
		getNow:     common.NowGetterReal{},
		queue:      newControlEventQueue(),
		doneCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		e = opt(e)
	}
	if e.timer == nil {
		e.timer = common.NewTimerReal()
	}
	if e.dispatcher == nil || e.hooks == nil || e.getNow == nil {
		return nil, fmt.Errorf(
			"%w: dispatcher is nil=[%t], hooks is nil=[%t], getNow is nil=[%t]",
			ErrInvalidArg,
			e.dispatcher == nil,
			e.hooks == nil,
			e.getNow == nil,
		)
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.loop = newLoop(e.dispatcher, e.queue, e.hooks, e.getNow, e.timer, func() {
		e.end(false)
	})

	started := make(chan struct{}, 1)
	go e.queue.Run(ctx, started)
	<-started

	go func() {
		defer close(e.doneCh)
		e.loop.run(ctx)
	}()

	return e, nil
}

// ScheduleFixedInterval registers work to run repeatedly with a fixed gap
// of period between the end of one run and the start of the next.
// The first run fires initialDelay after registration.
//
// The returned handle is valid immediately; see TaskHandle.Cancel.
func (e *Executor) ScheduleFixedInterval(initialDelay, period time.Duration, work WorkFn) (*TaskHandle, error) {
	schedule, err := NewFixedInterval(initialDelay, period)
	if err != nil {
		return nil, err
	}
	return e.Schedule(schedule, work)
}

// ScheduleFixedRate registers work to run repeatedly at instants
// initialDelay, initialDelay+period, initialDelay+2*period, ... after
// registration, regardless of how long each run takes.
// When runs overrun, missed fires are collapsed; see FixedRate.
//
// The returned handle is valid immediately; see TaskHandle.Cancel.
func (e *Executor) ScheduleFixedRate(initialDelay, period time.Duration, work WorkFn) (*TaskHandle, error) {
	schedule, err := NewFixedRate(initialDelay, period)
	if err != nil {
		return nil, err
	}
	return e.Schedule(schedule, work)
}

// Schedule registers work under the given schedule policy.
//
// Registration is asynchronous and non-blocking, so work functions may call
// Schedule on their own executor. It returns ErrInvalidArg if schedule or
// work is nil, ErrAlreadyEnded after Shutdown.
func (e *Executor) Schedule(schedule Schedule, work WorkFn) (*TaskHandle, error) {
	if schedule == nil || work == nil {
		return nil, fmt.Errorf(
			"%w: schedule is nil=[%t], work is nil=[%t]",
			ErrInvalidArg,
			schedule == nil,
			work == nil,
		)
	}
	if e.IsEnded() {
		return nil, ErrAlreadyEnded
	}

	task := newTask(uuid.NewString(), atomic.AddUint64(&e.seq, 1), schedule, work)
	e.queue.Push(controlEvent{kind: eventRegister, task: task})
	return &TaskHandle{t: task}, nil
}

// Shutdown stops the executor. Every registered schedule is cancelled and
// no new registrations are accepted.
//
// If drain is true, Shutdown waits until in-flight runs complete and the
// coordinating goroutine exits. If false, it returns immediately;
// in-flight runs see their ctx cancelled and are abandoned.
//
// Shutdown is idempotent. A drain=true call after a drain=false call
// still waits for the coordinating goroutine.
func (e *Executor) Shutdown(drain bool) {
	e.end(drain)
}

func (e *Executor) end(drain bool) {
	if e.setEnded() {
		e.cancel()
		e.dispatcher.Close(drain)
	}
	if drain {
		<-e.doneCh
	}
}
