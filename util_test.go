package recurrent

import (
	"sync"
	"time"

	"github.com/ngicks/gommon/pkg/common"
)

var _ common.NowGetter = new(fakeNowGetter)
var _ common.Timer = new(fakeTimer)

type fakeNowGetter struct {
	mu      sync.Mutex
	current time.Time
}

func (g *fakeNowGetter) GetNow() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

func (g *fakeNowGetter) set(t time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current = t
}

func (g *fakeNowGetter) advance(d time.Duration) time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current = g.current.Add(d)
	return g.current
}

type fakeTimer struct {
	mu        sync.Mutex
	ch        chan time.Time
	resetArg  []time.Duration
	stopCount int
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{
		ch: make(chan time.Time, 1),
	}
}

func (t *fakeTimer) C() <-chan time.Time {
	return t.ch
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopCount++
	return true
}

func (t *fakeTimer) Reset(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetArg = append(t.resetArg, d)
}

// fire emulates timer expiry.
func (t *fakeTimer) fire(at time.Time) {
	t.ch <- at
}

func (t *fakeTimer) lastReset() (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.resetArg) == 0 {
		return 0, false
	}
	return t.resetArg[len(t.resetArg)-1], true
}

func (t *fakeTimer) resetCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.resetArg)
}
