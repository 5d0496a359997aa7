package monitor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEveryRunsUntilStopped(t *testing.T) {
	s := New("poll", nil)
	var n atomic.Int32
	s.Every(5*time.Millisecond, func(context.Context) { n.Add(1) })

	assert.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, time.Millisecond)
	assert.True(t, s.Active())

	assert.True(t, s.Stop())
	assert.False(t, s.Active())

	stopped := n.Load()
	time.Sleep(30 * time.Millisecond)
	assert.LessOrEqual(t, n.Load(), stopped+1)
}

func TestStopIsIdempotent(t *testing.T) {
	s := New("timer", nil)
	s.After(time.Hour, func(context.Context) {})

	assert.True(t, s.Stop())
	assert.False(t, s.Stop())
	assert.False(t, s.Active())

	idle := New("idle", nil)
	assert.False(t, idle.Stop())
	assert.False(t, idle.Stop())
}

func TestAfterFiresOnce(t *testing.T) {
	s := New("timer", nil)
	var n atomic.Int32
	s.After(5*time.Millisecond, func(context.Context) { n.Add(1) })

	assert.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, time.Millisecond)
	assert.Eventually(t, func() bool { return !s.Active() }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), n.Load())
}

func TestStartingReplacesRunningTask(t *testing.T) {
	s := New("timer", nil)
	var first, second atomic.Int32
	s.After(20*time.Millisecond, func(context.Context) { first.Add(1) })
	s.After(5*time.Millisecond, func(context.Context) { second.Add(1) })

	assert.Eventually(t, func() bool { return second.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), first.Load())
}

func TestCallbackMayRescheduleItself(t *testing.T) {
	s := New("chain", nil)
	var n atomic.Int32
	var step func(context.Context)
	step = func(context.Context) {
		if n.Add(1) < 3 {
			s.After(time.Millisecond, step)
		}
	}
	s.After(time.Millisecond, step)

	assert.Eventually(t, func() bool { return n.Load() == 3 }, time.Second, time.Millisecond)
	assert.Eventually(t, func() bool { return !s.Active() }, time.Second, time.Millisecond)
}

func TestPanicIsContained(t *testing.T) {
	s := New("panicky", nil)
	var n atomic.Int32
	s.Every(2*time.Millisecond, func(context.Context) {
		n.Add(1)
		panic("boom")
	})

	assert.Eventually(t, func() bool { return n.Load() >= 2 }, time.Second, time.Millisecond)
	s.Stop()
}

func TestEveryWithNonPositiveInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		s := New("poll", nil)
		var n atomic.Int32
		assert.NotPanics(t, func() {
			s.Every(interval, func(context.Context) { n.Add(1) })
		})
		assert.Eventually(t, func() bool { return n.Load() >= 1 }, time.Second, 5*time.Millisecond)
		assert.True(t, s.Stop())
	}
}
