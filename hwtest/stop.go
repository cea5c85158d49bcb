// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtest

import (
	"os"
	"os/signal"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// Stop is a cooperative cancellation token. Once set, it stays set.
// It is safe for concurrent use.
//
type Stop struct {
	f atomic.Bool
}

// NewStop returns a new, unset, Stop.
//
func NewStop() *Stop {
	return new(Stop)
}

// Set sets the token. It returns true if the token was not already set.
//
func (s *Stop) Set() bool {
	return !s.f.Swap(true)
}

// Stopped returns true once the token has been set.
//
func (s *Stop) Stopped() bool {
	return s.f.Load()
}

// NotifyStop sets stop when the process receives any of the given signals.
// It does not block. The returned function stops signal delivery; it is
// safe to call more than once.
//
// If no signals are given, NotifyStop does nothing and returns a no-op release
// function.
//
func NotifyStop(stop *Stop, sig ...os.Signal) (release func()) {
	if len(sig) == 0 {
		return func() {}
	}
	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, sig...)
	go func() {
		for {
			select {
			case s := <-ch:
				if stop.Set() {
					log.WithField("signal", s).Debug("stop requested")
				}
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
		})
	}
}

// Progress calls report with the current value of count every interval,
// until done is closed. It blocks and is meant to run in its own goroutine.
// Progress returns immediately if interval is not positive.
//
func Progress(done <-chan struct{}, interval time.Duration, count func() uint64, report func(uint64)) {
	if interval <= 0 {
		return
	}
	tk := time.NewTicker(interval)
	defer tk.Stop()
	for {
		select {
		case <-tk.C:
			report(count())
		case <-done:
			return
		}
	}
}
