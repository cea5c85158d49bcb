/*
Package hwdiv provides a small clocked circuit simulator used to model the
divider under test, and the Module adapter through which a test driver talks
to it.

Circuits are built from parts. A part is described by a PartSpec: its name,
its input and output pins and a Mount function returning the closures
(Components) that compute the part's outputs. Parts are composed into chips
with Chip, and a chip (or any other part) is turned into a runnable device
with NewModule:

	m, err := hwdiv.NewModule(spec)
	m.Set("clk", 1)
	m.Eval()
	out := m.Get("q")

Wires carry unsigned values of 1 to 64 bits. Each call to Eval evaluates one
half clock cycle: combinational logic settles, edge-sensitive components sample
their inputs, and the circuit settles again.
*/
package hwdiv
