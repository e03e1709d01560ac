package recurrent

import (
	"context"
	"fmt"

	"github.com/ngicks/workerpool"
)

type workUnit struct {
	ctx   context.Context
	fn    func(ctx context.Context) error
	errCh chan error
}

var _ workerpool.WorkExecuter[string, workUnit] = poolExecuter{}

type poolExecuter struct{}

func (e poolExecuter) Exec(ctx context.Context, id string, w workUnit) error {
	combined, cancel := context.WithCancel(w.ctx)
	defer cancel()

	go func() {
		select {
		case <-combined.Done():
		case <-ctx.Done():
		}
		cancel()
	}()

	err := w.fn(combined)
	// errCh is buffered; a worker never blocks here even if
	// the completion was dropped at executor teardown.
	w.errCh <- err
	return err
}

var _ Dispatcher = (*WorkerPoolDispatcher)(nil)

// WorkerPoolDispatcher is an in-memory worker pool backed dispatcher.
// At most poolSize work fns run concurrently; excess due work waits for a
// free worker without ever blocking the caller of Dispatch.
type WorkerPoolDispatcher struct {
	size int
	pool *workerpool.Pool[string, workUnit]
}

// NewWorkerPoolDispatcher returns an in-memory worker pool dispatcher
// with poolSize running workers.
//
// It returns ErrInvalidArg if poolSize is zero or negative.
func NewWorkerPoolDispatcher(poolSize int) (*WorkerPoolDispatcher, error) {
	if poolSize <= 0 {
		return nil, fmt.Errorf("%w: pool size must be positive but is %d", ErrInvalidArg, poolSize)
	}
	pool := workerpool.New[string, workUnit](
		poolExecuter{},
		workerpool.NewUuidPool(),
	)
	pool.Add(poolSize)
	return &WorkerPoolDispatcher{
		size: poolSize,
		pool: pool,
	}, nil
}

func (d *WorkerPoolDispatcher) Dispatch(ctx context.Context, fn func(ctx context.Context) error) (<-chan error, error) {
	w := workUnit{
		ctx:   ctx,
		fn:    fn,
		errCh: make(chan error, 1),
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	select {
	case d.pool.Sender() <- w:
	default:
		// All workers are busy. Hand off from a separate goroutine so the
		// coordinating goroutine keeps servicing other slots.
		go func() {
			select {
			case d.pool.Sender() <- w:
			case <-ctx.Done():
				w.errCh <- ctx.Err()
			}
		}()
	}
	return w.errCh, nil
}

func (d *WorkerPoolDispatcher) Close(drain bool) {
	if drain {
		d.pool.Remove(d.size)
		d.pool.Wait()
	} else {
		d.pool.Kill()
	}
}
