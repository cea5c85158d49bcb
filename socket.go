// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwdiv

// Constant input pin names.
//
var (
	True  = "true"
	False = "false"
)

const (
	cstFalse = iota
	cstTrue
)

// A Socket maps a part's pin names to pin numbers in a circuit.
//
type Socket struct {
	m map[string]int
	c *Circuit
}

func newSocket(c *Circuit) *Socket {
	return &Socket{
		m: map[string]int{False: cstFalse, True: cstTrue},
		c: c,
	}
}

// Mount mounts the given sub-part and allocates new internal pins as necessary
// (according to pin mappings in p.Conns). Unconnected inputs are tied to False
// and unconnected outputs get a private wire.
//
func (s *Socket) Mount(p Part) []Component {
	sub := newSocket(s.c)
	for _, cn := range p.Conns {
		pin, _, ok := p.pin(cn.Pin)
		if !ok {
			panic("pin " + cn.Pin + " does not exist in part " + p.Name)
		}
		sub.m[cn.Pin] = s.PinOrNew(cn.Wire, pin.Width)
	}
	for _, in := range p.Inputs {
		if _, ok := sub.m[in.Name]; !ok {
			sub.m[in.Name] = cstFalse
		}
	}
	for _, o := range p.Outputs {
		if _, ok := sub.m[o.Name]; !ok {
			sub.m[o.Name] = s.c.allocPin(o.Width)
		}
	}
	return p.Mount(sub)
}

// Pin returns the pin number allocated to the given pin name.
// This function panics if the pin does not exist.
//
func (s *Socket) Pin(name string) int {
	n, ok := s.m[name]
	if !ok {
		panic("pin " + name + " does not exist")
	}
	return n
}

// PinOrNew returns the pin number allocated to the given pin name.
// If no such pin exists a new one of the given width is allocated.
//
func (s *Socket) PinOrNew(name string, width int) int {
	n, ok := s.m[name]
	if !ok {
		n = s.c.allocPin(width)
		s.m[name] = n
	}
	return n
}
