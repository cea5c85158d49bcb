// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwdiv

import (
	"github.com/db47h/hwdiv/internal/hdl"
)

// Pin is a part input or output. Width is the number of bits carried by the
// pin, 1 for single wires.
//
type Pin struct {
	Name  string
	Width int
}

// A Connection connects the pin of a part to a wire in its container.
//
type Connection struct {
	Pin  string
	Wire string
}

// ParseIO parses a pin specification string like "clk, rst_n, d[8]".
//
func ParseIO(spec string) ([]Pin, error) {
	ps, err := hdl.ParsePins(spec)
	if err != nil {
		return nil, err
	}
	var out []Pin
	for _, p := range ps {
		out = append(out, Pin{p.Name, p.Width})
	}
	return out, nil
}

// IO is like ParseIO but panics on error. It simplifies declaring
// PartSpec input and output pins.
//
func IO(spec string) []Pin {
	pins, err := ParseIO(spec)
	if err != nil {
		panic(err)
	}
	return pins
}

// ParseConnections parses a connection configuration string like
// "d=state_d, q=state_q" where the left hand side of each assignment is a pin
// name of the part and the right hand side is a wire name in the host chip.
//
func ParseConnections(conns string) ([]Connection, error) {
	cs, err := hdl.ParseConnections(conns)
	if err != nil {
		return nil, err
	}
	var out []Connection
	for _, c := range cs {
		out = append(out, Connection{c.Pin, c.Wire})
	}
	return out, nil
}
