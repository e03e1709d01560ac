package recurrent

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

var scheduleBase = time.Date(
	2023, time.April, 18,
	21, 57, 42,
	123000000, time.UTC,
)

func TestFixedInterval(t *testing.T) {
	assert := assert.New(t)

	sched, err := NewFixedInterval(time.Second, 5*time.Second)
	assert.NoError(err)

	if diff := cmp.Diff(scheduleBase.Add(time.Second), sched.FirstFire(scheduleBase)); diff != "" {
		t.Fatalf("not equal. diff = %s", diff)
	}

	// The gap is measured from the finish of the previous run.
	// A 3 second run pushes the next fire 3 seconds further out.
	scheduledAt := scheduleBase.Add(time.Second)
	startedAt := scheduledAt.Add(10 * time.Millisecond)
	finishedAt := startedAt.Add(3 * time.Second)

	next := sched.NextFire(scheduledAt, startedAt, finishedAt, finishedAt)
	if diff := cmp.Diff(finishedAt.Add(5*time.Second), next); diff != "" {
		t.Fatalf("not equal. diff = %s", diff)
	}
}

func TestFixedRate(t *testing.T) {
	type testCase struct {
		name     string
		overrun  time.Duration
		expected time.Duration
	}

	sched, err := NewFixedRate(0, 10*time.Second)
	assert.NoError(t, err)

	scheduledAt := scheduleBase

	for _, tc := range []testCase{
		{
			// run completed inside the period. next stays on the grid.
			name:     "no overrun",
			overrun:  3 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "exactly one period",
			overrun:  10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			// one missed fire. collapses to the next grid point, not 2 fires.
			name:     "overrun past one fire",
			overrun:  13 * time.Second,
			expected: 20 * time.Second,
		},
		{
			name:     "overrun past many fires",
			overrun:  57 * time.Second,
			expected: 60 * time.Second,
		},
		{
			// landing exactly on a grid point counts as not missed.
			name:     "overrun landing on grid",
			overrun:  30 * time.Second,
			expected: 30 * time.Second,
		},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			now := scheduledAt.Add(tc.overrun)
			next := sched.NextFire(scheduledAt, scheduledAt, now, now)

			if diff := cmp.Diff(scheduledAt.Add(tc.expected), next); diff != "" {
				t.Fatalf("not equal. diff = %s", diff)
			}
			assert.False(t, next.Before(now), "next fire must not be before now")
			// phase check: next must be a whole multiple of the period from the anchor.
			assert.Zero(t, next.Sub(scheduledAt)%(10*time.Second))
		})
	}
}

func TestFixedRate_fastRunsKeepGrid(t *testing.T) {
	assert := assert.New(t)

	sched, err := NewFixedRate(time.Second, 2*time.Second)
	assert.NoError(err)

	fire := sched.FirstFire(scheduleBase)
	assert.Equal(scheduleBase.Add(time.Second), fire)

	// fast runs walk the grid one period at a time.
	for i := 1; i <= 5; i++ {
		finished := fire.Add(100 * time.Millisecond)
		fire = sched.NextFire(fire, fire, finished, finished)
		assert.Equal(scheduleBase.Add(time.Second+time.Duration(i)*2*time.Second), fire)
	}
}

func TestSchedule_invalidArgs(t *testing.T) {
	assert := assert.New(t)

	type testCase struct {
		initialDelay time.Duration
		period       time.Duration
	}

	for _, tc := range []testCase{
		{initialDelay: 0, period: 0},
		{initialDelay: 0, period: -time.Second},
		{initialDelay: -time.Nanosecond, period: time.Second},
	} {
		_, err := NewFixedInterval(tc.initialDelay, tc.period)
		assert.ErrorIs(err, ErrInvalidArg)
		_, err = NewFixedRate(tc.initialDelay, tc.period)
		assert.ErrorIs(err, ErrInvalidArg)
	}

	// zero initial delay is valid: first fire is immediate.
	sched, err := NewFixedInterval(0, time.Second)
	assert.NoError(err)
	assert.Equal(scheduleBase, sched.FirstFire(scheduleBase))
}
