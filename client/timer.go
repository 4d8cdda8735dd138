package client

import (
	"sync"
	"time"
)

// TimerState is the lifecycle of a SessionTimer. Expired is terminal.
type TimerState string

const (
	TimerInactive TimerState = "inactive"
	TimerRunning  TimerState = "running"
	TimerStopped  TimerState = "stopped"
	TimerExpired  TimerState = "expired"
)

// SessionTimer counts down to an absolute deadline. The remainder is always
// recomputed from the deadline, never decremented locally, so a suspended or
// throttled process cannot stretch a session past its end.
type SessionTimer struct {
	deadline time.Time

	// Interval between ticks; 1s unless overridden before Start.
	Interval time.Duration

	// OnTick observes the countdown while running.
	OnTick func(remaining time.Duration)
	// OnExpire fires exactly once when the deadline is reached. A deadline
	// already in the past expires immediately on Start.
	OnExpire func()

	mu    sync.Mutex
	state TimerState
	stop  chan struct{}
	done  chan struct{}
}

// NewSessionTimer creates an inactive timer for the given deadline.
func NewSessionTimer(deadline time.Time) *SessionTimer {
	return &SessionTimer{
		deadline: deadline,
		Interval: time.Second,
		state:    TimerInactive,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Remaining returns the time left until the deadline, never negative.
func (t *SessionTimer) Remaining() time.Duration {
	remaining := time.Until(t.deadline)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Deadline returns the absolute session end.
func (t *SessionTimer) Deadline() time.Time {
	return t.deadline
}

// State returns the current lifecycle state.
func (t *SessionTimer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Start launches the countdown. Starting a non-inactive timer is a no-op.
func (t *SessionTimer) Start() {
	t.mu.Lock()
	if t.state != TimerInactive {
		t.mu.Unlock()
		return
	}
	t.state = TimerRunning
	t.mu.Unlock()

	go t.run()
}

// Stop ends the countdown without firing OnExpire. Safe to call repeatedly.
func (t *SessionTimer) Stop() {
	t.mu.Lock()
	if t.state != TimerRunning {
		t.mu.Unlock()
		return
	}
	t.state = TimerStopped
	t.mu.Unlock()

	close(t.stop)
}

// Wait blocks until the timer expires or is stopped.
func (t *SessionTimer) Wait() {
	<-t.done
}

func (t *SessionTimer) run() {
	defer close(t.done)

	if t.expireIfDue() {
		return
	}

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			if t.expireIfDue() {
				return
			}
			if t.OnTick != nil {
				t.OnTick(t.Remaining())
			}
		}
	}
}

// expireIfDue transitions to expired when the deadline has passed and fires
// OnExpire under the state guard, so it cannot fire twice.
func (t *SessionTimer) expireIfDue() bool {
	if t.Remaining() > 0 {
		return false
	}

	t.mu.Lock()
	if t.state != TimerRunning {
		t.mu.Unlock()
		return true
	}
	t.state = TimerExpired
	t.mu.Unlock()

	if t.OnExpire != nil {
		t.OnExpire()
	}
	return true
}
