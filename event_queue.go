package recurrent

import (
	"context"
	"sync"

	"github.com/ngicks/type-param-common/slice"
)

type eventKind int

const (
	eventRegister eventKind = iota + 1
	eventDone
)

// controlEvent is a message to the coordinating loop:
// a registration pushed from any goroutine, or a run completion.
type controlEvent struct {
	kind eventKind
	task *Task
	err  error
}

// controlEventQueue carries controlEvents into the coordinating loop.
// Push never blocks, so worker goroutines and work functions may
// schedule onto the owning executor re-entrantly without deadlock.
type controlEventQueue struct {
	queue       slice.Deque[*controlEvent]
	mu          sync.Mutex
	isRunning   bool
	beingClosed bool
	hasUpdate   chan struct{}
	eventCh     chan controlEvent
	reserved    map[string]<-chan struct{}
}

func newControlEventQueue() *controlEventQueue {
	return &controlEventQueue{
		reserved: make(map[string]<-chan struct{}),
	}
}

func (q *controlEventQueue) init() {
	q.beingClosed = false
	q.hasUpdate = make(chan struct{}, 1)
	q.eventCh = make(chan controlEvent)
}

// IsClosed reports q is closed (stopped) or being closed.
func (q *controlEventQueue) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.isClosed()
}

func (q *controlEventQueue) isClosed() bool {
	return !q.isRunning || q.beingClosed
}

func (q *controlEventQueue) Push(e controlEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.queue.PushBack(&e)

	if !q.isClosed() {
		select {
		case q.hasUpdate <- struct{}{}:
		default:
		}
	}
}

// Reserve reserves an event. fn is called in a newly created goroutine;
// the event it returns is pushed once fn returns.
// When q is already closed, fn is still run so that whatever it waits on
// is drained, but its event is dropped.
func (q *controlEventQueue) Reserve(id string, fn func() controlEvent) {
	doneCh := make(chan struct{})

	q.mu.Lock()
	if q.isClosed() {
		q.mu.Unlock()
		go func() { _ = fn() }()
		return
	}
	q.reserved[id] = doneCh
	q.mu.Unlock()

	go func() {
		q.Push(fn())
		close(doneCh)

		q.mu.Lock()
		delete(q.reserved, id)
		q.mu.Unlock()
	}()
}

func (q *controlEventQueue) waitReserved() <-chan struct{} {
	q.mu.Lock()

	eventCh := make(chan struct{})
	wg := sync.WaitGroup{}
	for _, doneCh := range q.reserved {
		wg.Add(1)
		go func(doneCh <-chan struct{}) {
			<-doneCh
			eventCh <- struct{}{}
			wg.Done()
		}(doneCh)
	}

	q.mu.Unlock()

	go func() {
		wg.Wait()
		close(eventCh)
	}()

	return eventCh
}

func (q *controlEventQueue) Subscribe() <-chan controlEvent {
	return q.eventCh
}

func (q *controlEventQueue) close() {
	q.mu.Lock()
	if q.isClosed() {
		q.mu.Unlock()
		return
	}
	q.beingClosed = true
	// pushing a nil pointer as a partition.
	// Run stops its iteration when reaching that nil pointer.
	q.queue.PushBack(nil)
	close(q.hasUpdate)
	q.mu.Unlock()
}

// Run pumps pushed events into the Subscribe channel.
// It has no way to stop other than cancelling ctx.
// After cancellation it drains queued and reserved events,
// then closes the Subscribe channel.
func (q *controlEventQueue) Run(ctx context.Context, started chan<- struct{}) {
	q.mu.Lock()
	if q.isRunning {
		q.mu.Unlock()
		panic("calling Run twice")
	}
	q.isRunning = true
	q.init()
	q.mu.Unlock()

	go func() {
		<-ctx.Done()
		q.close()
	}()

	defer func() {
		q.mu.Lock()
		q.isRunning = false
		q.beingClosed = false
		q.mu.Unlock()
	}()

	started <- struct{}{}

	for {
		// hasUpdate is closed when close is called (= ctx passed to this function is cancelled)
		_, ok := <-q.hasUpdate
		q.emitQueued()
		if !ok {
			for range q.waitReserved() {
				q.emitQueued()
			}
			q.emitQueued()
			close(q.eventCh)
			return
		}
	}
}

func (q *controlEventQueue) emitQueued() {
	for {
		event, popped := q.pop()
		if !popped || event == nil {
			break
		}
		q.eventCh <- *event
	}
}

func (q *controlEventQueue) pop() (event *controlEvent, popped bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queue.PopFront()
}
