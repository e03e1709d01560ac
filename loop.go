package recurrent

import (
	"context"
	"errors"
	"fmt"

	"github.com/ngicks/gommon/pkg/common"
	"github.com/ngicks/type-param-common/set"
)

// loop is the coordinating goroutine of an Executor.
//
// It is the sole owner of the registry and the task timer.
// Every slot state transition (arm, fire, re-arm, removal) happens here,
// so no transition ever races with another.
type loop struct {
	dispatcher Dispatcher
	queue      *controlEventQueue
	hooks      ExecutorHooks
	getNow     common.NowGetter
	timer      *taskTimer

	// registry holds every live slot keyed by task id.
	registry map[string]*Task
	// running holds ids of slots whose run is currently in flight.
	running *set.Set[string]

	// onAbort ends the owning executor. Called at most once.
	onAbort func()
}

func newLoop(
	dispatcher Dispatcher,
	queue *controlEventQueue,
	hooks ExecutorHooks,
	getNow common.NowGetter,
	timer common.Timer,
	onAbort func(),
) *loop {
	return &loop{
		dispatcher: dispatcher,
		queue:      queue,
		hooks:      hooks,
		getNow:     getNow,
		timer:      newTaskTimer(getNow, timer),
		registry:   make(map[string]*Task),
		running:    set.New[string](),
		onAbort:    onAbort,
	}
}

func (l *loop) run(ctx context.Context) {
	defer l.teardown()
	for {
		select {
		case <-ctx.Done():
			l.drain(ctx)
			return
		case <-l.timer.C():
			l.fireDue(ctx)
		case event, ok := <-l.queue.Subscribe():
			if !ok {
				return
			}
			l.handleEvent(ctx, event)
		}
	}
}

// drain consumes remaining events until the queue closes its channel,
// which happens after every reserved completion has been delivered.
func (l *loop) drain(ctx context.Context) {
	l.timer.Stop()
	for event := range l.queue.Subscribe() {
		l.handleEvent(ctx, event)
	}
}

func (l *loop) fireDue(ctx context.Context) {
	for _, task := range l.timer.PopDue(l.getNow.GetNow()) {
		if task.IsCancelled() {
			delete(l.registry, task.id)
			continue
		}
		l.dispatch(ctx, task)
	}
}

func (l *loop) dispatch(ctx context.Context, task *Task) {
	// A slot is re-armed only from its own completion event,
	// so it can never be in flight here.
	if l.running.Has(task.id) {
		return
	}

	resultCh, err := l.dispatcher.Dispatch(ctx, func(ctx context.Context) error {
		return task.Do(ctx, l.getNow)
	})
	if err != nil {
		if ctx.Err() != nil {
			// Teardown race. The slot is cancelled with everything else.
			return
		}
		l.hooks.OnAbort(fmt.Errorf("%w: dispatch failed: %v", ErrAborted, err))
		l.onAbort()
		return
	}

	l.running.Add(task.id)
	l.queue.Reserve(task.id, func() controlEvent {
		return controlEvent{kind: eventDone, task: task, err: <-resultCh}
	})
}

func (l *loop) handleEvent(ctx context.Context, event controlEvent) {
	switch event.kind {
	case eventRegister:
		l.handleRegister(ctx, event.task)
	case eventDone:
		l.handleDone(ctx, event.task, event.err)
	}
}

func (l *loop) handleRegister(ctx context.Context, task *Task) {
	if ctx.Err() != nil || task.IsCancelled() {
		task.Cancel()
		return
	}
	l.registry[task.id] = task
	task.scheduledAt = task.schedule.FirstFire(l.getNow.GetNow())
	l.timer.Push(task)
}

func (l *loop) handleDone(ctx context.Context, task *Task, err error) {
	l.running.Delete(task.id)

	if err != nil {
		// Cancellation at teardown is not a task fault.
		if !(errors.Is(err, context.Canceled) && ctx.Err() != nil) {
			l.hooks.OnTaskFault(task.info(), err)
		}
	}
	l.hooks.OnTaskDone(task.info(), err)

	if ctx.Err() != nil || task.IsCancelled() {
		delete(l.registry, task.id)
		task.Cancel()
		return
	}

	task.scheduledAt = task.schedule.NextFire(
		task.scheduledAt,
		task.startedAt,
		task.finishedAt,
		l.getNow.GetNow(),
	)
	l.timer.Push(task)
}

func (l *loop) teardown() {
	l.timer.Drain()
	for id, task := range l.registry {
		task.Cancel()
		delete(l.registry, id)
	}
}
