// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwdiv

import (
	"github.com/pkg/errors"
)

// Port describes a module input or output port.
//
type Port struct {
	Name   string
	Width  int
	Output bool
}

// Module is a top level part turned into a runnable device. Its inputs are
// driven with Set, its outputs read with Get, and Eval evaluates the circuit
// for the current input states.
//
// A Module is not safe for concurrent use.
//
type Module struct {
	name  string
	c     *Circuit
	pins  map[string]modulePin
	ports []Port
}

type modulePin struct {
	n      int
	output bool
}

// NewModule builds a circuit for the part p and exposes all its pins as ports.
//
func NewModule(p *PartSpec) (*Module, error) {
	if err := p.check(); err != nil {
		return nil, errors.Wrap(err, "invalid module")
	}
	c := newCircuit()
	s := newSocket(c)
	m := &Module{
		name: p.Name,
		c:    c,
		pins: make(map[string]modulePin, len(p.Inputs)+len(p.Outputs)),
	}
	for _, in := range p.Inputs {
		m.pins[in.Name] = modulePin{s.PinOrNew(in.Name, in.Width), false}
		m.ports = append(m.ports, Port{in.Name, in.Width, false})
	}
	for _, o := range p.Outputs {
		m.pins[o.Name] = modulePin{s.PinOrNew(o.Name, o.Width), true}
		m.ports = append(m.ports, Port{o.Name, o.Width, true})
	}
	c.init(p.Mount(s))
	return m, nil
}

// Name returns the name of the module's part.
//
func (m *Module) Name() string { return m.name }

// Ports returns the module ports, inputs first.
//
func (m *Module) Ports() []Port {
	return m.ports
}

// Circuit returns the underlying circuit.
//
func (m *Module) Circuit() *Circuit { return m.c }

func (m *Module) port(name string) modulePin {
	p, ok := m.pins[name]
	if !ok {
		panic("port " + name + " does not exist in module " + m.name)
	}
	return p
}

// Set sets the value of an input port. The new value is seen by the circuit
// on the next call to Eval. Set panics if the port does not exist or is an
// output.
//
func (m *Module) Set(port string, v uint64) {
	p := m.port(port)
	if p.output {
		panic("port " + port + " of module " + m.name + " is an output")
	}
	m.c.poke(p.n, v)
}

// Get returns the value of a port. After Eval, output ports hold the settled
// outputs for the current inputs.
//
func (m *Module) Get(port string) uint64 {
	return m.c.Get(m.port(port).n)
}

// Eval evaluates the module for the current input states.
//
func (m *Module) Eval() {
	m.c.Eval()
}
