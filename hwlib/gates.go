// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"github.com/db47h/hwdiv"
)

// Not returns a bitwise NOT gate of the given width.
//
//	Inputs: in[width]
//	Outputs: out[width]
//	Function: out = ^in
//
func Not(width int) hwdiv.NewPartFn {
	return (&hwdiv.PartSpec{
		Name:    suffix("NOT", width),
		Inputs:  pins(width, pIn),
		Outputs: pins(width, pOut),
		Mount: func(s *hwdiv.Socket) []hwdiv.Component {
			in, out := s.Pin(pIn), s.Pin(pOut)
			return []hwdiv.Component{
				func(c *hwdiv.Circuit) { c.Set(out, ^c.Get(in)) },
			}
		},
	}).NewPart
}

// other gates
type gate func(a, b uint64) uint64

func (g gate) mount(s *hwdiv.Socket) []hwdiv.Component {
	a, b, out := s.Pin(pA), s.Pin(pB), s.Pin(pOut)
	return []hwdiv.Component{
		func(c *hwdiv.Circuit) { c.Set(out, g(c.Get(a), c.Get(b))) },
	}
}

func newGate(name string, width int, fn func(a, b uint64) uint64) hwdiv.NewPartFn {
	return (&hwdiv.PartSpec{
		Name:    suffix(name, width),
		Inputs:  pins(width, pA, pB),
		Outputs: pins(width, pOut),
		Mount:   gate(fn).mount,
	}).NewPart
}

// And returns a bitwise AND gate.
//
//	Inputs: a[width], b[width]
//	Outputs: out[width]
//	Function: out = a & b
//
func And(width int) hwdiv.NewPartFn {
	return newGate("AND", width, func(a, b uint64) uint64 { return a & b })
}

// Or returns a bitwise OR gate.
//
//	Inputs: a[width], b[width]
//	Outputs: out[width]
//	Function: out = a | b
//
func Or(width int) hwdiv.NewPartFn {
	return newGate("OR", width, func(a, b uint64) uint64 { return a | b })
}

// Xor returns a bitwise XOR gate.
//
//	Inputs: a[width], b[width]
//	Outputs: out[width]
//	Function: out = a ^ b
//
func Xor(width int) hwdiv.NewPartFn {
	return newGate("XOR", width, func(a, b uint64) uint64 { return a ^ b })
}
