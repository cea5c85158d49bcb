// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwlib provides a library of reusable parts for hwdiv, and the
// model of the radix lookup table divider.
//
package hwlib

import (
	"strconv"

	"github.com/db47h/hwdiv"
)

// common pin names
const (
	pA    = "a"
	pB    = "b"
	pIn   = "in"
	pSel  = "sel"
	pOut  = "out"
	pClk  = "clk"
	pRst  = "rst"
	pD    = "d"
	pQ    = "q"
	pAddr = "addr"
	pData = "data"
)

// pins makes a list of pins of the same width.
func pins(width int, names ...string) []hwdiv.Pin {
	ps := make([]hwdiv.Pin, len(names))
	for i, n := range names {
		ps[i] = hwdiv.Pin{Name: n, Width: width}
	}
	return ps
}

func suffix(name string, width int) string {
	if width == 1 {
		return name
	}
	return name + strconv.Itoa(width)
}
