package heartbeat

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickerFiresRepeatedly(t *testing.T) {
	ticker := New(10 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var count int32
	ticker.Start(ctx, func(time.Time) { atomic.AddInt32(&count, 1) })

	time.Sleep(55 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)

	assert.GreaterOrEqual(t, atomic.LoadInt32(&count), int32(3))
}

func TestTickerStopsOnCancel(t *testing.T) {
	ticker := New(5 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	var count int32
	ticker.Start(ctx, func(time.Time) { atomic.AddInt32(&count, 1) })
	time.Sleep(20 * time.Millisecond)
	cancel()
	time.Sleep(10 * time.Millisecond)

	stopped := atomic.LoadInt32(&count)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, atomic.LoadInt32(&count), "no further ticks after cancellation")
}

func TestNewFallsBackToDefaultInterval(t *testing.T) {
	ticker := New(0)
	assert.Equal(t, Interval, ticker.interval)

	ticker = New(-time.Second)
	assert.Equal(t, Interval, ticker.interval)
}
