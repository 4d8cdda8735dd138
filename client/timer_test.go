package client

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionTimerPastDeadlineExpiresImmediately(t *testing.T) {
	// A deadline already behind us must not grant a full countdown.
	timer := NewSessionTimer(time.Now().Add(-time.Second))

	var fired int32
	timer.OnExpire = func() { atomic.AddInt32(&fired, 1) }

	assert.Equal(t, time.Duration(0), timer.Remaining())

	timer.Start()
	timer.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
	assert.Equal(t, TimerExpired, timer.State())
}

func TestSessionTimerFiresExactlyOnce(t *testing.T) {
	timer := NewSessionTimer(time.Now().Add(60 * time.Millisecond))
	timer.Interval = 10 * time.Millisecond

	var fired int32
	timer.OnExpire = func() { atomic.AddInt32(&fired, 1) }

	timer.Start()
	// Second Start must not spawn a second countdown.
	timer.Start()
	timer.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
	assert.Equal(t, TimerExpired, timer.State())
	assert.Equal(t, time.Duration(0), timer.Remaining())
}

func TestSessionTimerStopSuppressesExpire(t *testing.T) {
	timer := NewSessionTimer(time.Now().Add(time.Hour))
	timer.Interval = 10 * time.Millisecond

	var fired int32
	timer.OnExpire = func() { atomic.AddInt32(&fired, 1) }

	timer.Start()
	timer.Stop()
	timer.Wait()

	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
	assert.Equal(t, TimerStopped, timer.State())

	// Stop is idempotent.
	timer.Stop()
}

func TestSessionTimerRemainingTracksDeadline(t *testing.T) {
	deadline := time.Now().Add(80 * time.Millisecond)
	timer := NewSessionTimer(deadline)

	// The remainder comes from the absolute deadline, not a local counter:
	// it shrinks with wall time even though the timer never started.
	first := timer.Remaining()
	assert.Greater(t, first, time.Duration(0))
	assert.LessOrEqual(t, first, 80*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, time.Duration(0), timer.Remaining())
	assert.Equal(t, deadline, timer.Deadline())
}

func TestSessionTimerTicksWhileRunning(t *testing.T) {
	timer := NewSessionTimer(time.Now().Add(120 * time.Millisecond))
	timer.Interval = 20 * time.Millisecond

	var ticks int32
	timer.OnTick = func(remaining time.Duration) {
		assert.GreaterOrEqual(t, remaining, time.Duration(0))
		atomic.AddInt32(&ticks, 1)
	}

	timer.Start()
	timer.Wait()

	assert.Greater(t, atomic.LoadInt32(&ticks), int32(0))
	assert.Equal(t, TimerExpired, timer.State())
}
