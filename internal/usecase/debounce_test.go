package usecase

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_CoalescesBurst(t *testing.T) {
	clock := &fakeClock{}
	d := NewDebouncer(100*time.Millisecond, clock)

	var calls, last int32
	for i := 1; i <= 5; i++ {
		n := int32(i)
		d.Trigger(func() {
			atomic.AddInt32(&calls, 1)
			atomic.StoreInt32(&last, n)
		})
		clock.Advance(50 * time.Millisecond)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	assert.True(t, d.Pending())

	clock.Advance(50 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, int32(5), atomic.LoadInt32(&last))
	assert.False(t, d.Pending())
	assert.Equal(t, 0, clock.Active())
}

func TestDebouncer_Cancel(t *testing.T) {
	clock := &fakeClock{}
	d := NewDebouncer(time.Second, clock)
	var calls int32
	d.Trigger(func() { atomic.AddInt32(&calls, 1) })
	d.Cancel()
	clock.Advance(2 * time.Second)
	assert.Equal(t, int32(0), calls)
	assert.False(t, d.Pending())
}

func TestDebouncer_FlushRunsNow(t *testing.T) {
	clock := &fakeClock{}
	d := NewDebouncer(time.Second, clock)
	var calls int32
	d.Trigger(func() { atomic.AddInt32(&calls, 1) })
	d.Flush()
	assert.Equal(t, int32(1), calls)

	clock.Advance(2 * time.Second)
	assert.Equal(t, int32(1), calls)

	d.Flush()
	assert.Equal(t, int32(1), calls)
}

func TestDebouncer_StaleTimerIgnored(t *testing.T) {
	clock := &fakeClock{}
	d := NewDebouncer(time.Second, clock)
	var first, second int32
	d.Trigger(func() { atomic.AddInt32(&first, 1) })
	stale := clock.timers[0]
	d.Trigger(func() { atomic.AddInt32(&second, 1) })

	// A timer whose Stop lost the race still calls back.
	stale.fn()
	assert.Equal(t, int32(0), first)
	assert.Equal(t, int32(0), second)

	clock.Advance(time.Second)
	assert.Equal(t, int32(1), second)
}

func TestDebouncer_RealClock(t *testing.T) {
	d := NewDebouncer(10*time.Millisecond, nil)
	done := make(chan struct{})
	d.Trigger(func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced call never ran")
	}
}
