// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"github.com/db47h/hwdiv"
)

// Mux returns a multiplexer of the given width.
//
//	Inputs: a[width], b[width], sel
//	Outputs: out[width]
//	Function: if sel == 0 { out = a } else { out = b }
//
func Mux(width int) hwdiv.NewPartFn {
	return (&hwdiv.PartSpec{
		Name:    suffix("MUX", width),
		Inputs:  append(pins(width, pA, pB), hwdiv.Pin{Name: pSel, Width: 1}),
		Outputs: pins(width, pOut),
		Mount: func(s *hwdiv.Socket) []hwdiv.Component {
			a, b, sel, out := s.Pin(pA), s.Pin(pB), s.Pin(pSel), s.Pin(pOut)
			return []hwdiv.Component{func(c *hwdiv.Circuit) {
				if c.Bool(sel) {
					c.Set(out, c.Get(b))
				} else {
					c.Set(out, c.Get(a))
				}
			}}
		},
	}).NewPart
}
