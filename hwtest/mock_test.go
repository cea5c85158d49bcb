package hwtest_test

import (
	"github.com/db47h/hwdiv/hwtest"
)

// snapshot is the state of the device inputs at one evaluation step.
type snapshot struct {
	clk, rstN, flush, valid, value uint64
}

// mockDevice is a divider that produces its result a fixed number of clock
// cycles after accepting an input.
type mockDevice struct {
	in map[string]uint64

	latency func() int                         // cycles from accept to result
	result  func(v uint64) (q uint64, r uint64) // computed result
	onEval  func(m *mockDevice)                 // called after each evaluation

	prevClk uint64
	busy    bool
	value   uint64
	wait    int
	valid   bool
	q, r    uint64
	results int

	evals []snapshot
}

func newMock(divisor uint64, latency int) *mockDevice {
	return &mockDevice{
		in:      make(map[string]uint64),
		latency: func() int { return latency },
		result:  func(v uint64) (uint64, uint64) { return hwtest.Oracle(v, divisor) },
	}
}

func (m *mockDevice) Set(port string, v uint64) {
	switch port {
	case hwtest.PortClk, hwtest.PortRstN, hwtest.PortFlush, hwtest.PortValidIn, hwtest.PortValue:
		m.in[port] = v
	default:
		panic("mock: cannot set port " + port)
	}
}

func (m *mockDevice) Get(port string) uint64 {
	switch port {
	case hwtest.PortValidOut:
		if m.valid {
			return 1
		}
		return 0
	case hwtest.PortQuotient:
		return m.q
	case hwtest.PortRemainder:
		return m.r
	}
	return m.in[port]
}

func (m *mockDevice) Eval() {
	clk := m.in[hwtest.PortClk]
	m.evals = append(m.evals, snapshot{
		clk:   clk,
		rstN:  m.in[hwtest.PortRstN],
		flush: m.in[hwtest.PortFlush],
		valid: m.in[hwtest.PortValidIn],
		value: m.in[hwtest.PortValue],
	})
	rising := clk != 0 && m.prevClk == 0
	m.prevClk = clk
	switch {
	case m.in[hwtest.PortRstN] == 0:
		m.busy, m.valid = false, false
	case rising:
		m.valid = false
		switch {
		case m.busy:
			m.wait--
			if m.wait <= 0 {
				m.busy = false
				m.valid = true
				m.q, m.r = m.result(m.value)
				m.results++
			}
		case m.in[hwtest.PortValidIn] != 0:
			m.busy = true
			m.value = m.in[hwtest.PortValue]
			m.wait = m.latency()
		}
	}
	if m.onEval != nil {
		m.onEval(m)
	}
}

// recorder is a hwtest.Recorder keeping track of dump timestamps.
type recorder struct {
	dumps  []uint64
	clears int
	err    error
}

func (r *recorder) Dump(t uint64) error {
	if r.err != nil {
		return r.err
	}
	r.dumps = append(r.dumps, t)
	return nil
}

func (r *recorder) Clear() error {
	r.clears++
	return nil
}
