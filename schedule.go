package recurrent

import (
	"fmt"
	"time"
)

// Schedule decides fire instants for a recurring task.
//
// Implementations must be pure: calling them mutates nothing,
// so the executor is free to call them at any point of a task's lifecycle.
type Schedule interface {
	// FirstFire returns the instant of the first fire
	// for a task registered at registeredAt.
	FirstFire(registeredAt time.Time) time.Time
	// NextFire returns the fire instant following a completed run.
	// scheduledAt is the instant the completed run was scheduled for,
	// startedAt / finishedAt are the observed run boundaries,
	// and now is the current time of the scheduling clock.
	NextFire(scheduledAt, startedAt, finishedAt, now time.Time) time.Time
}

// FixedInterval schedules the next run relative to the completion of the previous one:
// next = finishedAt + Period. A run that takes long simply pushes
// all its successors back; runs never overlap and never bunch up.
type FixedInterval struct {
	InitialDelay time.Duration
	Period       time.Duration
}

// NewFixedInterval validates arguments and returns a FixedInterval schedule.
//
// It returns ErrInvalidArg if period is zero or negative, or initialDelay is negative.
func NewFixedInterval(initialDelay, period time.Duration) (FixedInterval, error) {
	if err := validatePolicyArgs(initialDelay, period); err != nil {
		return FixedInterval{}, err
	}
	return FixedInterval{InitialDelay: initialDelay, Period: period}, nil
}

func (s FixedInterval) FirstFire(registeredAt time.Time) time.Time {
	return registeredAt.Add(s.InitialDelay)
}

func (s FixedInterval) NextFire(scheduledAt, startedAt, finishedAt, now time.Time) time.Time {
	return finishedAt.Add(s.Period)
}

// FixedRate schedules runs on a fixed grid anchored at the first fire:
// next = scheduledAt + Period regardless of how long the run took.
// If a run overruns one or more periods, missed fires are collapsed:
// the next fire is moved forward by whole periods until it is not before now,
// so at most one catch-up fire is ever pending and the grid phase is kept.
type FixedRate struct {
	InitialDelay time.Duration
	Period       time.Duration
}

// NewFixedRate validates arguments and returns a FixedRate schedule.
//
// It returns ErrInvalidArg if period is zero or negative, or initialDelay is negative.
func NewFixedRate(initialDelay, period time.Duration) (FixedRate, error) {
	if err := validatePolicyArgs(initialDelay, period); err != nil {
		return FixedRate{}, err
	}
	return FixedRate{InitialDelay: initialDelay, Period: period}, nil
}

func (s FixedRate) FirstFire(registeredAt time.Time) time.Time {
	return registeredAt.Add(s.InitialDelay)
}

func (s FixedRate) NextFire(scheduledAt, startedAt, finishedAt, now time.Time) time.Time {
	next := scheduledAt.Add(s.Period)
	if !next.Before(now) {
		return next
	}
	// The run overran one or more periods.
	// Skip forward keeping the grid phase; no backlog of catch-up fires.
	behind := now.Sub(next)
	next = next.Add(behind / s.Period * s.Period)
	if next.Before(now) {
		next = next.Add(s.Period)
	}
	return next
}

func validatePolicyArgs(initialDelay, period time.Duration) error {
	if period <= 0 {
		return fmt.Errorf("%w: period must be positive but is %s", ErrInvalidArg, period)
	}
	if initialDelay < 0 {
		return fmt.Errorf("%w: initial delay must not be negative but is %s", ErrInvalidArg, initialDelay)
	}
	return nil
}
