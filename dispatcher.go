package recurrent

import "context"

// Dispatcher hands a unit of work to an execution context.
type Dispatcher interface {
	// Dispatch submits fn for execution.
	// The returned channel emits exactly once with fn's result.
	// A non-nil error means fn was not accepted at all;
	// the executor treats that as fatal to itself.
	Dispatch(ctx context.Context, fn func(ctx context.Context) error) (<-chan error, error)
	// Close releases execution resources.
	// drain decides whether in-flight work is waited for or abandoned.
	Close(drain bool)
}

var _ Dispatcher = SyncDispatcher{}

// SyncDispatcher executes fn inline on the calling goroutine.
//
// Used by the sequential executor: runs happen strictly one at a time on the
// coordinating goroutine, and a long-running work fn delays fires of every
// other slot on that executor. Intended for short tasks only.
type SyncDispatcher struct{}

func (d SyncDispatcher) Dispatch(ctx context.Context, fn func(ctx context.Context) error) (<-chan error, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	ch := make(chan error, 1)
	ch <- fn(ctx)
	return ch, nil
}

func (d SyncDispatcher) Close(drain bool) {}
