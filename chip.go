// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwdiv

import (
	"sort"

	"github.com/pkg/errors"
)

type chip struct {
	PartSpec        // PartSpec for this chip
	parts    []Part // sub parts
}

func (c *chip) mount(s *Socket) []Component {
	var cs []Component
	for _, p := range c.parts {
		cs = append(cs, s.Mount(p)...)
	}
	return cs
}

// wire is a chip internal wire as seen while checking a chip's wiring.
type wire struct {
	width  int
	input  bool   // chip input
	output bool   // chip output
	driver string // part pin driving the wire
	used   bool   // connected to at least one part input
}

// Chip composes existing parts into a new part packaged into a chip.
// The pins specified as inputs and outputs will be the inputs
// and outputs of the chip.
//
// A 2 bits register with a load enable could be created like this:
//
//	reg, err := Chip(
//		"LoadReg",
//		"clk, load, in[2]",
//		"out[2]",
//		hwlib.Mux(2)("a=out, b=in, sel=load, out=d"),
//		hwlib.Reg(2)("clk=clk, d=d, q=out"),
//	)
//
// The returned value is a function of type NewPartFn that can be used to
// compose the new part with others into other chips.
//
// Chip checks that:
//
//	- connections refer to existing pins of the parts
//	- wires and the pins they connect have the same width
//	- each wire is driven by exactly one part output or is a chip input
//	- internal wires driven by a part are read by some other part
//
// Chip inputs and part inputs may be left unconnected. Unconnected part inputs
// are tied to False.
//
func Chip(name string, inputs string, outputs string, parts ...Part) (NewPartFn, error) {
	ins, err := ParseIO(inputs)
	if err != nil {
		return nil, errors.Wrap(err, "chip "+name+" inputs")
	}
	outs, err := ParseIO(outputs)
	if err != nil {
		return nil, errors.Wrap(err, "chip "+name+" outputs")
	}

	wires := make(map[string]*wire, len(ins)+len(outs))
	for _, i := range ins {
		wires[i.Name] = &wire{width: i.Width, input: true}
	}
	for _, o := range outs {
		if _, ok := wires[o.Name]; ok {
			return nil, errors.New("pin " + o.Name + " declared as both input and output")
		}
		wires[o.Name] = &wire{width: o.Width, output: true}
	}
	if wires[True] != nil || wires[False] != nil {
		return nil, errors.New("constant pins cannot be used as chip inputs or outputs")
	}

	for _, p := range parts {
		if err := p.check(); err != nil {
			return nil, err
		}
		seen := make(map[string]bool, len(p.Conns))
		for _, cn := range p.Conns {
			pin, isInput, ok := p.pin(cn.Pin)
			if !ok {
				return nil, errors.New("invalid pin name " + cn.Pin + " for part " + p.Name)
			}
			if seen[cn.Pin] {
				return nil, errors.New("pin " + cn.Pin + " of part " + p.Name + " connected more than once")
			}
			seen[cn.Pin] = true

			where := p.Name + "." + cn.Pin + ":" + cn.Wire
			if cn.Wire == True || cn.Wire == False {
				if !isInput {
					return nil, errors.New(where + ": output pin connected to constant " + cn.Wire + " input")
				}
				continue
			}
			w := wires[cn.Wire]
			if w == nil {
				w = &wire{width: pin.Width}
				wires[cn.Wire] = w
			}
			if w.width != pin.Width {
				return nil, errors.Errorf("%s: %d bits pin connected to %d bits wire", where, pin.Width, w.width)
			}
			if isInput {
				w.used = true
				continue
			}
			switch {
			case w.input:
				return nil, errors.New(where + ": chip input pin used as output")
			case w.driver != "":
				return nil, errors.New(where + ": output pin already used as output by " + w.driver)
			}
			w.driver = p.Name + "." + cn.Pin
		}
	}

	names := make([]string, 0, len(wires))
	for n := range wires {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		w := wires[n]
		switch {
		case w.input:
		case w.driver == "":
			return nil, errors.New("pin " + n + " not connected to any output")
		case !w.used && !w.output:
			return nil, errors.New("pin " + n + " not connected to any input")
		}
	}

	c := &chip{
		PartSpec{
			Name:    name,
			Inputs:  ins,
			Outputs: outs,
		},
		parts,
	}
	c.PartSpec.Mount = c.mount
	return c.PartSpec.NewPart, nil
}
