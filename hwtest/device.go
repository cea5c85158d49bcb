// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtest

// Port names of the divider interface.
//
const (
	PortClk       = "clk_i"       // clock
	PortRstN      = "rst_ni"      // active low reset
	PortFlush     = "flush_i"     // abort the current division
	PortValidIn   = "valid_i"     // value_i holds a new input
	PortValue     = "value_i"     // dividend
	PortValidOut  = "valid_o"     // quotient_o and remainder_o hold a result
	PortQuotient  = "quotient_o"  // result quotient
	PortRemainder = "remainder_o" // result remainder
)

// Device is the circuit under test. Implementations must evaluate the circuit
// synchronously in Eval, once per clock level change. Set changes take effect
// on the next call to Eval.
//
// *hwdiv.Module implements Device.
//
type Device interface {
	Set(port string, v uint64)
	Get(port string) uint64
	Eval()
}

// Recorder records the device state after each evaluation step.
//
// Clear discards everything recorded so far.
//
type Recorder interface {
	Dump(t uint64) error
	Clear() error
}
