// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/db47h/hwdiv"
	"github.com/db47h/hwdiv/hwlib"
	"github.com/db47h/hwdiv/hwtest"
	"github.com/db47h/hwdiv/vcd"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/term"
)

// Exit statuses.
const (
	exitOK     = 0
	exitFail   = 1
	exitConfig = 2
)

type config struct {
	divisor    uint64
	width      int
	radix      int
	maxCycles  uint64
	clearEvery uint64
	count      uint64
	seed       int64
	progress   time.Duration
	strict     bool
}

func (cfg *config) testConfig() hwtest.Config {
	return hwtest.Config{
		Divisor:    cfg.divisor,
		Width:      cfg.width,
		MaxCycles:  cfg.maxCycles,
		ClearEvery: cfg.clearEvery,
		Count:      cfg.count,
		Seed:       cfg.seed,
	}
}

// run builds the divider, then tests it until interrupted. It returns the
// process exit status.
func run(cfg config, tracePath string, out io.Writer) (code int, err error) {
	tc := cfg.testConfig()
	if err = tc.Validate(); err != nil {
		return exitConfig, errors.Wrap(err, "invalid configuration")
	}
	m, err := hwlib.NewDivider(hwlib.DividerParams{
		Divisor:    cfg.divisor,
		InputWidth: cfg.width,
		RadixWidth: cfg.radix,
	})
	if err != nil {
		return exitConfig, errors.Wrap(err, "invalid divider")
	}
	return test(cfg, m, tracePath, out)
}

// device is a simulated divider that can be traced.
//
type device interface {
	hwtest.Device
	Name() string
	Ports() []hwdiv.Port
}

// test resets dev, then tests it until interrupted or until cfg.count tests
// have been verified. It returns the process exit status.
//
func test(cfg config, dev device, tracePath string, out io.Writer) (code int, err error) {
	tc := cfg.testConfig()
	opts := []hwtest.Option{hwtest.WithOutput(out)}
	if tracePath != "" {
		fmt.Fprintf(out, "VCD trace will be written to %s\n", tracePath)
		var trace *vcd.Writer
		if trace, err = vcd.Create(tracePath, dev.Name(), traceVars(dev)); err != nil {
			return exitFail, err
		}
		defer func() {
			if cerr := trace.Close(); cerr != nil {
				err = multierr.Append(err, cerr)
				if code == exitOK {
					code = exitFail
				}
			}
		}()
		opts = append(opts, hwtest.WithTrace(trace))
	}
	d, err := hwtest.New(dev, tc, opts...)
	if err != nil {
		return exitConfig, err
	}
	log.WithFields(log.Fields{
		"divisor": cfg.divisor,
		"width":   cfg.width,
		"radix":   cfg.radix,
		"seed":    d.Seed(),
	}).Info("testing divider")

	stop := hwtest.NewStop()
	release := hwtest.NotifyStop(stop, os.Interrupt, syscall.SIGTERM)
	defer release()

	done := make(chan struct{})
	var wg sync.WaitGroup
	report, inPlace := progressReporter(out)
	if cfg.progress > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hwtest.Progress(done, cfg.progress, d.Tests, report)
		}()
	}

	d.Reset()
	err = d.Run(stop)
	close(done)
	wg.Wait()
	if inPlace && cfg.progress > 0 {
		fmt.Fprintln(out)
	}
	log.WithFields(log.Fields{
		"tests":  d.Tests(),
		"cycles": d.Cycles(),
	}).Info("done")

	switch err.(type) {
	case nil:
		return exitOK, nil
	case *hwtest.MismatchError:
		if cfg.strict {
			return exitFail, nil
		}
		return exitOK, nil
	default:
		return exitFail, err
	}
}

// traceVars returns trace variables for all the ports of dev.
func traceVars(dev device) []vcd.Var {
	var vs []vcd.Var
	for _, p := range dev.Ports() {
		name := p.Name
		vs = append(vs, vcd.Var{
			Name:  name,
			Width: p.Width,
			Value: func() uint64 { return dev.Get(name) },
		})
	}
	return vs
}

// progressReporter returns a function that reports the number of verified
// tests. On a terminal, the report is updated in place.
func progressReporter(out io.Writer) (report func(uint64), inPlace bool) {
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return func(n uint64) { fmt.Fprintf(out, "\rTest %d", n) }, true
	}
	return func(n uint64) { log.WithField("tests", n).Info("progress") }, false
}
