// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest implements a randomized conformance tester for dividers by a
// constant.
//
// A Driver resets the device under test, then repeatedly feeds it random
// values and checks the quotient and remainder it eventually produces against
// Oracle. It runs until stopped or until the device returns a wrong result.
//
package hwtest

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// NativeWidth is the width of the integers used to compare results. Inputs
// cannot be wider.
//
const NativeWidth = 64

// ResetHalfCycles is the number of half clock cycles during which reset is
// held at startup.
//
const ResetHalfCycles = 4

// ErrLatency is the cause of the error returned by Driver.Do and Driver.Run
// when the device does not produce a result within Config.MaxCycles clock
// cycles.
//
var ErrLatency = errors.New("result not ready after the maximum number of cycles")

// Config holds the Driver configuration.
//
type Config struct {
	Divisor    uint64 // constant divisor, > 0
	Width      int    // input value width in bits, 1 to NativeWidth
	MaxCycles  uint64 // maximum number of clock cycles to wait for a result. 0 means no limit.
	ClearEvery uint64 // clear the trace every ClearEvery verified transactions. 0 means never.
	Count      uint64 // stop after Count verified transactions. 0 means run until stopped.
	Seed       int64  // stimulus seed. 0 seeds from the current time.
}

// Validate checks the configuration.
//
func (cfg *Config) Validate() error {
	if cfg.Divisor == 0 {
		return errors.New("divisor must be positive")
	}
	if cfg.Width < 1 {
		return errors.Errorf("invalid input width %d", cfg.Width)
	}
	if cfg.Width > NativeWidth {
		return errors.Errorf("input width %d exceeds the %d bits native comparison width", cfg.Width, NativeWidth)
	}
	return nil
}

// MismatchError is returned by Driver.Do and Driver.Run when the device returns a wrong
// result.
//
type MismatchError struct {
	Transaction
	GotQuotient  uint64
	GotRemainder uint64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%v but got quotient %d and remainder %d", e.Transaction, e.GotQuotient, e.GotRemainder)
}

// An Option configures a Driver.
//
type Option func(*Driver)

// WithTrace makes the driver dump the device state to r after every
// evaluation step.
//
func WithTrace(r Recorder) Option {
	return func(d *Driver) { d.trace = r }
}

// WithLogger sets the driver's logger. The default is the logrus standard
// logger.
//
func WithLogger(l logrus.FieldLogger) Option {
	return func(d *Driver) { d.log = l }
}

// WithOutput sets where mismatch diagnostics are written. The default is
// os.Stdout.
//
func WithOutput(w io.Writer) Option {
	return func(d *Driver) { d.out = w }
}

// Driver drives a Device through the reset sequence and division
// transactions.
//
// A Driver must be used from a single goroutine, except for Tests and Cycles
// that can be called concurrently.
//
type Driver struct {
	dev   Device
	cfg   Config
	stim  *Stimulus
	trace Recorder
	log   logrus.FieldLogger
	out   io.Writer

	cycles  atomic.Uint64 // evaluation steps
	tests   atomic.Uint64 // verified transactions
	cleared uint64        // value of tests at the last trace clear
}

// New returns a new Driver for dev.
//
func New(dev Device, cfg Config, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	d := &Driver{
		dev:  dev,
		cfg:  cfg,
		stim: NewStimulus(cfg.Width, cfg.Seed),
		log:  logrus.StandardLogger(),
		out:  os.Stdout,
	}
	for _, o := range opts {
		o(d)
	}
	d.log.WithFields(logrus.Fields{
		"divisor": cfg.Divisor,
		"width":   cfg.Width,
		"seed":    cfg.Seed,
	}).Debug("driver ready")
	return d, nil
}

// Tests returns the number of verified transactions.
//
func (d *Driver) Tests() uint64 { return d.tests.Load() }

// Cycles returns the number of evaluation steps since the driver was created.
//
func (d *Driver) Cycles() uint64 { return d.cycles.Load() }

// Seed returns the stimulus seed.
//
func (d *Driver) Seed() int64 { return d.cfg.Seed }

// advance evaluates the device and records the new state.
//
func (d *Driver) advance() {
	d.dev.Eval()
	if d.trace != nil {
		if err := d.trace.Dump(d.cycles.Load()); err != nil {
			d.log.WithError(err).Errorf("trace dump failed at cycle %d, tracing disabled", d.cycles.Load())
			d.trace = nil
		}
	}
	d.cycles.Inc()
}

// Reset puts all inputs in a known state and runs the reset sequence. Reset
// is released when it returns.
//
func (d *Driver) Reset() {
	d.dev.Set(PortClk, 1)
	d.dev.Set(PortRstN, 0)
	d.dev.Set(PortFlush, 0)
	d.dev.Set(PortValidIn, 0)
	d.dev.Set(PortValue, 0)

	// evaluate every half cycle so that the device sees at least two reset
	// pulses whatever its reset sampling edge.
	for i := 0; i < ResetHalfCycles; i++ {
		d.dev.Set(PortRstN, 0)
		d.dev.Set(PortClk, uint64(^i&1))
		d.advance()
	}
	d.dev.Set(PortRstN, 1)
	d.log.Debug("reset released")
}

// Run runs random transactions until stop is set or a transaction fails. If
// Config.Count is not 0, Run sets stop once Count transactions have been
// verified.
//
// A transaction in progress when stop is set is abandoned: it is neither
// counted nor checked, and Run returns nil. Otherwise Run returns the error
// returned by Do.
//
func (d *Driver) Run(stop *Stop) error {
	for !stop.Stopped() {
		d.clearTrace()
		ok, err := d.Do(d.stim.Next(), stop)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if d.cfg.Count != 0 && d.tests.Load() >= d.cfg.Count {
			stop.Set()
		}
	}
	return nil
}

// Do runs a single transaction for value, which must fit in Config.Width bits.
// It returns ok == false, and a nil error, if stop was set before the device
// produced a result.
//
// On a wrong result, Do sets stop, writes a diagnostic to the output, and
// returns a *MismatchError. If Config.MaxCycles is exceeded, Do sets stop and
// returns an error whose cause is ErrLatency.
//
func (d *Driver) Do(value uint64, stop *Stop) (ok bool, err error) {
	tx := NewTransaction(value, d.cfg.Divisor)
	d.drive(tx)

	q, r, ok, err := d.poll(stop)
	if err != nil {
		stop.Set()
		return false, errors.Wrapf(err, "transaction %d, value %d", d.tests.Load()+1, tx.Value)
	}
	if !ok {
		d.log.WithField("value", tx.Value).Debug("transaction abandoned")
		return false, nil
	}
	if q != tx.Quotient || r != tx.Remainder {
		stop.Set()
		merr := &MismatchError{tx, q, r}
		fmt.Fprintf(d.out, "Test fail: %v\n", merr)
		return false, merr
	}
	d.tests.Inc()
	return true, nil
}

// drive presents tx to the device for one clock cycle.
//
func (d *Driver) drive(tx Transaction) {
	// posedge
	d.dev.Set(PortValue, tx.Value)
	d.dev.Set(PortValidIn, 1)
	d.dev.Set(PortClk, 1)
	d.advance()
	// negedge
	d.dev.Set(PortClk, 0)
	d.advance()
	d.dev.Set(PortValue, 0)
	d.dev.Set(PortValidIn, 0)
}

// poll runs clock cycles until the device signals a valid result. The result
// is sampled right after the rising edge. ok is false if stop was set first.
//
func (d *Driver) poll(stop *Stop) (quotient, remainder uint64, ok bool, err error) {
	for n := uint64(0); !stop.Stopped(); n++ {
		if d.cfg.MaxCycles != 0 && n >= d.cfg.MaxCycles {
			return 0, 0, false, ErrLatency
		}
		d.dev.Set(PortClk, 1)
		d.advance()
		valid := d.dev.Get(PortValidOut) != 0
		quotient, remainder = d.dev.Get(PortQuotient), d.dev.Get(PortRemainder)
		d.dev.Set(PortClk, 0)
		d.advance()
		if valid {
			return quotient, remainder, true, nil
		}
	}
	return 0, 0, false, nil
}

// clearTrace clears the trace every ClearEvery verified transactions.
//
func (d *Driver) clearTrace() {
	n := d.tests.Load()
	if d.trace == nil || d.cfg.ClearEvery == 0 || n == 0 || n%d.cfg.ClearEvery != 0 || n == d.cleared {
		return
	}
	d.cleared = n
	if err := d.trace.Clear(); err != nil {
		d.log.WithError(err).Error("trace clear failed, tracing disabled")
		d.trace = nil
		return
	}
	d.log.WithField("tests", n).Debug("trace cleared")
}
