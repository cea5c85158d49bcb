// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import "github.com/db47h/hwdiv"

// Reg returns a clocked register of the given width with an asynchronous
// reset.
//
//	Inputs: clk, rst, d[width]
//	Outputs: q[width]
//	Function: q = 0 while rst != 0
//	          q(t) = d(t-1) // where t is the current clock cycle.
//
func Reg(width int) hwdiv.NewPartFn {
	return (&hwdiv.PartSpec{
		Name:    suffix("REG", width),
		Inputs:  append(pins(1, pClk, pRst), hwdiv.Pin{Name: pD, Width: width}),
		Outputs: pins(width, pQ),
		Mount: func(s *hwdiv.Socket) []hwdiv.Component {
			clk, rst, d, q := s.Pin(pClk), s.Pin(pRst), s.Pin(pD), s.Pin(pQ)
			var cur uint64
			return []hwdiv.Component{
				func(c *hwdiv.Circuit) {
					if c.Latching() {
						switch {
						case c.Bool(rst):
							cur = 0
						case c.Rising(clk):
							cur = c.Get(d)
						}
					}
					c.Set(q, cur)
				}}
		}}).NewPart
}
