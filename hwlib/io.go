// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"github.com/db47h/hwdiv"
)

// Input creates a function based input of the given width.
//
//	Outputs: out[width]
//	Function: out = f()
//
func Input(width int, f func() uint64) hwdiv.NewPartFn {
	return (&hwdiv.PartSpec{
		Name:    suffix("INPUT", width),
		Outputs: pins(width, pOut),
		Mount: func(s *hwdiv.Socket) []hwdiv.Component {
			pin := s.Pin(pOut)
			return []hwdiv.Component{
				func(c *hwdiv.Circuit) {
					c.Set(pin, f())
				},
			}
		},
	}).NewPart
}

// Output creates an output or probe of the given width. The f function is
// called with the pin state on every circuit step.
//
//	Inputs: in[width]
//	Function: f(in)
//
func Output(width int, f func(uint64)) hwdiv.NewPartFn {
	return (&hwdiv.PartSpec{
		Name:   suffix("OUTPUT", width),
		Inputs: pins(width, pIn),
		Mount: func(s *hwdiv.Socket) []hwdiv.Component {
			in := s.Pin(pIn)
			return []hwdiv.Component{
				func(c *hwdiv.Circuit) { f(c.Get(in)) },
			}
		},
	}).NewPart
}
