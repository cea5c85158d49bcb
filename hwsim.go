// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwdiv

import (
	"github.com/pkg/errors"
)

// A Component is a component in a circuit that can Get and Set wire states.
//
type Component func(c *Circuit)

// A MountFn mounts a part into socket s. MountFn's should query
// the socket for assigned pin numbers and return closures around
// these pin numbers.
//
// For example, a Not gate can be defined like this:
//
//	not := &PartSpec{
//		Name:    "Not",
//		Inputs:  IO("in"),
//		Outputs: IO("out"),
//		Mount: func(s *Socket) []Component {
//			in, out := s.Pin("in"), s.Pin("out")
//			return []Component{
//				func(c *Circuit) { c.SetBool(out, !c.Bool(in)) },
//			}
//		}}
//
type MountFn func(s *Socket) []Component

// A PartSpec wraps a part specification (its blueprint).
//
type PartSpec struct {
	// Part name.
	Name string
	// Input pins. Use the IO() function to build pin lists from a
	// description like "clk, d[8]".
	Inputs []Pin
	// Output pins.
	Outputs []Pin
	// Mount function (see MountFn).
	Mount MountFn
}

// NewPart is a NewPartFn that wraps p with the given connections into a Part.
// It panics if the connection string cannot be parsed.
//
func (p *PartSpec) NewPart(connections string) Part {
	cs, err := ParseConnections(connections)
	if err != nil {
		panic(err)
	}
	return Part{p, cs}
}

// pin looks up the named pin.
//
func (p *PartSpec) pin(name string) (pin Pin, input bool, ok bool) {
	for _, i := range p.Inputs {
		if i.Name == name {
			return i, true, true
		}
	}
	for _, o := range p.Outputs {
		if o.Name == name {
			return o, false, true
		}
	}
	return Pin{}, false, false
}

func (p *PartSpec) check() error {
	if p.Mount == nil {
		return errors.New("part " + p.Name + " has no mount function")
	}
	seen := make(map[string]bool, len(p.Inputs)+len(p.Outputs))
	for _, l := range [][]Pin{p.Inputs, p.Outputs} {
		for _, n := range l {
			if seen[n.Name] {
				return errors.New("duplicate pin name " + n.Name + " in part " + p.Name)
			}
			if n.Width < 1 || n.Width > 64 {
				return errors.Errorf("pin %s of part %s: invalid width %d", n.Name, p.Name, n.Width)
			}
			seen[n.Name] = true
		}
	}
	return nil
}

// A NewPartFn is a function that takes a connection configuration and returns a
// new Part. See ParseConnections for the syntax of the connection configuration
// string.
//
type NewPartFn func(c string) Part

// A Part wraps a part specification together with its connections within a host
// chip.
//
type Part struct {
	*PartSpec
	Conns []Connection
}

// Circuit is a runnable circuit simulation.
//
// Wire states are double buffered: during a simulation step, components read
// the current frame (s0) and write the next one (s1).
//
type Circuit struct {
	s0   []uint64 // wire states frame #0
	s1   []uint64 // wire states frame #1
	prev []uint64 // wire states at the end of the previous Eval
	mask []uint64
	cs   []Component

	latch bool
	steps uint
}

func newCircuit() *Circuit {
	c := new(Circuit)
	// constant value pins
	c.allocPin(1)
	c.allocPin(1)
	return c
}

// NewCircuit builds a new circuit based on the given parts. Wires that
// are not connected to any part output are tied to 0.
//
func NewCircuit(parts ...Part) (*Circuit, error) {
	if len(parts) == 0 {
		return nil, errors.New("empty part list")
	}
	wrap, err := Chip("CIRCUIT", "", "", parts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create chip wrapper")
	}
	c := newCircuit()
	c.init(wrap("").Mount(newSocket(c)))
	return c, nil
}

func (c *Circuit) init(cs []Component) {
	c.cs = cs
	c.s0 = make([]uint64, len(c.mask))
	c.s1 = make([]uint64, len(c.mask))
	c.prev = make([]uint64, len(c.mask))
	c.s0[cstTrue] = 1
	c.s1[cstTrue] = 1
	c.prev[cstTrue] = 1
}

// allocPin allocates a pin and returns its number.
//
func (c *Circuit) allocPin(width int) int {
	n := len(c.mask)
	c.mask = append(c.mask, widthMask(width))
	return n
}

func widthMask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(width) - 1
}

// Steps returns the value of the step counter.
//
func (c *Circuit) Steps() uint {
	return c.steps
}

// Size returns the component count in the circuit.
//
func (c *Circuit) Size() int { return len(c.cs) }

// Get returns the state of pin n. The value of n should be obtained in a
// MountFn by a call to one of the Socket methods.
//
func (c *Circuit) Get(n int) uint64 {
	return c.s0[n]
}

// Bool returns true if pin n is non-zero.
//
func (c *Circuit) Bool(n int) bool {
	return c.s0[n] != 0
}

// Set sets the state of pin n for the next step. v is truncated to the pin
// width.
//
func (c *Circuit) Set(n int, v uint64) {
	c.s1[n] = v & c.mask[n]
}

// SetBool sets pin n to 1 if b is true, 0 otherwise.
//
func (c *Circuit) SetBool(n int, b bool) {
	if b {
		c.s1[n] = 1
	} else {
		c.s1[n] = 0
	}
}

// Latching returns true during the single step of Eval where edge-sensitive
// components must sample their inputs.
//
func (c *Circuit) Latching() bool {
	return c.latch
}

// Rising returns true if pin n went from 0 to a non-zero value since the
// previous call to Eval.
//
func (c *Circuit) Rising(n int) bool {
	return c.prev[n] == 0 && c.s0[n] != 0
}

// Falling returns true if pin n went from a non-zero value to 0 since the
// previous call to Eval.
//
func (c *Circuit) Falling(n int) bool {
	return c.prev[n] != 0 && c.s0[n] == 0
}

// poke sets pin n in the current frame. It is used to drive circuit inputs
// from outside the simulation.
//
func (c *Circuit) poke(n int, v uint64) {
	c.s0[n] = v & c.mask[n]
}

// Step advances the simulation by one step.
//
func (c *Circuit) Step() {
	copy(c.s1, c.s0)
	for _, f := range c.cs {
		f(c)
	}
	c.steps++
	c.s0, c.s1 = c.s1, c.s0
	if c.s0[cstFalse] != 0 || c.s0[cstTrue] != 1 {
		panic("true or false constants have been overwritten")
	}
}

func (c *Circuit) stable() bool {
	for i, v := range c.s0 {
		if c.s1[i] != v {
			return false
		}
	}
	return true
}

// settle steps the simulation until no wire changes. Signals travel through
// at most one component per step, so a circuit that is still changing after
// Size()+1 steps has a combinational loop.
//
func (c *Circuit) settle() {
	for i := 0; ; i++ {
		c.Step()
		if c.stable() {
			return
		}
		if i > len(c.cs) {
			panic("combinational loop: circuit does not settle")
		}
	}
}

// Eval evaluates the circuit for the current input states. Callers must call
// Eval once per clock level change.
//
func (c *Circuit) Eval() {
	c.settle()
	c.latch = true
	c.Step()
	c.latch = false
	c.settle()
	copy(c.prev, c.s0)
}
