package hwtest_test

import (
	"sync"
	"testing"
	"time"

	"github.com/db47h/hwdiv/hwtest"
	"github.com/stretchr/testify/assert"
	"go.uber.org/atomic"
)

func TestStop(t *testing.T) {
	s := hwtest.NewStop()
	assert.False(t, s.Stopped())

	var wg sync.WaitGroup
	var first atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Set() {
				first.Inc()
			}
		}()
	}
	wg.Wait()
	assert.True(t, s.Stopped())
	assert.Equal(t, int32(1), first.Load())
	assert.False(t, s.Set())
	assert.True(t, s.Stopped())
}

func TestProgress(t *testing.T) {
	var n atomic.Uint64
	reports := make(chan uint64, 16)
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		hwtest.Progress(done, time.Millisecond, func() uint64 { return n.Inc() }, func(v uint64) {
			select {
			case reports <- v:
			default:
			}
		})
		close(exited)
	}()
	assert.Equal(t, uint64(1), <-reports)
	assert.Equal(t, uint64(2), <-reports)
	close(done)
	select {
	case <-exited:
	case <-time.After(5 * time.Second):
		t.Fatal("Progress did not return")
	}
}

func TestProgress_interval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		exited := make(chan struct{})
		go func() {
			hwtest.Progress(make(chan struct{}), interval, func() uint64 { return 0 }, func(uint64) {
				t.Error("unexpected report")
			})
			close(exited)
		}()
		select {
		case <-exited:
		case <-time.After(5 * time.Second):
			t.Fatalf("Progress did not return for interval %v", interval)
		}
	}
}
