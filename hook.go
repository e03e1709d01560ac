package recurrent

import "time"

// TaskInfo is a snapshot of a task's identity and run timings,
// handed to hooks after each run.
type TaskInfo struct {
	Id          string
	ScheduledAt time.Time
	StartedAt   time.Time
	FinishedAt  time.Time
}

// ExecutorHooks observes the executor's steady-state events.
//
// Hooks are invoked from the coordinating goroutine.
// They must not block; a slow hook delays every slot of the executor.
type ExecutorHooks interface {
	// OnTaskDone is called after every completed run, err is nil on success.
	OnTaskDone(task TaskInfo, err error)
	// OnTaskFault is called when a run returned a non-nil error or panicked.
	// The schedule is kept; the next fire is armed as usual.
	OnTaskFault(task TaskInfo, err error)
	// OnAbort is called exactly once when the executor tears itself down
	// because the dispatcher refused a task. All slots are cancelled.
	OnAbort(err error)
}

// PassThroughHook is the simplest implementation of ExecutorHooks.
// It does nothing.
type PassThroughHook struct{}

var _ ExecutorHooks = PassThroughHook{}

func (h PassThroughHook) OnTaskDone(_ TaskInfo, _ error)  {}
func (h PassThroughHook) OnTaskFault(_ TaskInfo, _ error) {}
func (h PassThroughHook) OnAbort(_ error)                 {}
