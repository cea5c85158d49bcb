// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/db47h/hwdiv"
	"github.com/db47h/hwdiv/hwlib"
	"github.com/db47h/hwdiv/hwtest"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDividerParams_Validate(t *testing.T) {
	td := []struct {
		name string
		p    hwlib.DividerParams
		err  string
	}{
		{"ok", hwlib.DividerParams{Divisor: 3, InputWidth: 48, RadixWidth: 4}, ""},
		{"radix_eq", hwlib.DividerParams{Divisor: 4, InputWidth: 8, RadixWidth: 2}, ""},
		{"one", hwlib.DividerParams{Divisor: 1, InputWidth: 1, RadixWidth: 1}, ""},
		{"zero_divisor", hwlib.DividerParams{Divisor: 0, InputWidth: 48, RadixWidth: 4}, "all numeric arguments must be positive"},
		{"zero_width", hwlib.DividerParams{Divisor: 3, InputWidth: 0, RadixWidth: 4}, "all numeric arguments must be positive"},
		{"neg_radix", hwlib.DividerParams{Divisor: 3, InputWidth: 48, RadixWidth: -1}, "all numeric arguments must be positive"},
		{"small_radix", hwlib.DividerParams{Divisor: 3, InputWidth: 48, RadixWidth: 1}, "radix width is smaller than divisor bitwidth"},
		{"wide", hwlib.DividerParams{Divisor: 3, InputWidth: 65, RadixWidth: 4}, "input width 65 exceeds 64 bits"},
		{"huge_lut", hwlib.DividerParams{Divisor: 1 << 20, InputWidth: 64, RadixWidth: 21}, "lookup table too large: 41 address bits (max 20)"},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			err := d.p.Validate()
			if d.err == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, d.err, err.Error())
			_, err = hwlib.Divider(d.p)
			assert.Error(t, err)
		})
	}
}

func TestDividerParams_CarryWidth(t *testing.T) {
	for d, w := range map[uint64]int{1: 1, 2: 1, 3: 2, 4: 2, 5: 3, 8: 3, 9: 4, 1000: 10, 1 << 20: 20} {
		assert.Equal(t, w, hwlib.DividerParams{Divisor: d}.CarryWidth(), "divisor %d", d)
	}
}

func TestDividerParams_Slices(t *testing.T) {
	assert.Equal(t, 12, hwlib.DividerParams{InputWidth: 48, RadixWidth: 4}.Slices())
	assert.Equal(t, 2, hwlib.DividerParams{InputWidth: 5, RadixWidth: 3}.Slices())
	assert.Equal(t, 1, hwlib.DividerParams{InputWidth: 1, RadixWidth: 8}.Slices())
	assert.Equal(t, 64, hwlib.DividerParams{InputWidth: 64, RadixWidth: 1}.Slices())
}

func TestDividerParams_Table(t *testing.T) {
	p := hwlib.DividerParams{Divisor: 3, InputWidth: 8, RadixWidth: 2}
	tbl := p.Table()
	require.Len(t, tbl, 16)
	assert.Equal(t, uint64(0), tbl[0])
	assert.Equal(t, uint64(2), tbl[2])       // 2 = 3*0 + 2
	assert.Equal(t, uint64(1<<2|0), tbl[3])  // 3 = 3*1 + 0
	assert.Equal(t, uint64(2<<2|1), tbl[7])  // 7 = 3*2 + 1
	assert.Equal(t, uint64(3<<2|2), tbl[11]) // 11 = 3*3 + 2
	for i := 12; i < 16; i++ {
		assert.Zero(t, tbl[i], "unreachable entry %d", i)
	}

	// every reachable entry decodes back to its address
	p = hwlib.DividerParams{Divisor: 10, InputWidth: 32, RadixWidth: 4}
	cw := uint(p.CarryWidth())
	for i, e := range p.Table() {
		carry := uint64(i) >> 4
		if carry >= p.Divisor {
			continue
		}
		q, r := e>>cw, e&(1<<cw-1)
		require.True(t, r < p.Divisor)
		require.Equal(t, uint64(i), q*p.Divisor+r, "entry %d", i)
	}
}

func TestDivider_ports(t *testing.T) {
	m, err := hwlib.NewDivider(hwlib.DividerParams{Divisor: 3, InputWidth: 48, RadixWidth: 4})
	require.NoError(t, err)
	assert.Equal(t, "Divider", m.Name())
	assert.Equal(t, []hwdiv.Port{
		{Name: hwtest.PortClk, Width: 1},
		{Name: hwtest.PortRstN, Width: 1},
		{Name: hwtest.PortFlush, Width: 1},
		{Name: hwtest.PortValidIn, Width: 1},
		{Name: hwtest.PortValue, Width: 48},
		{Name: hwtest.PortValidOut, Width: 1, Output: true},
		{Name: "valid_next_o", Width: 1, Output: true},
		{Name: hwtest.PortQuotient, Width: 48, Output: true},
		{Name: hwtest.PortRemainder, Width: 48, Output: true},
	}, m.Ports())
}

func newDividerDriver(t *testing.T, p hwlib.DividerParams, maxCycles uint64) (*hwdiv.Module, *hwtest.Driver, *bytes.Buffer) {
	t.Helper()
	m, err := hwlib.NewDivider(p)
	require.NoError(t, err)
	l := logrus.New()
	l.SetOutput(io.Discard)
	var out bytes.Buffer
	d, err := hwtest.New(m, hwtest.Config{
		Divisor:   p.Divisor,
		Width:     p.InputWidth,
		MaxCycles: maxCycles,
		Seed:      int64(p.Divisor)*1000 + int64(p.InputWidth),
	}, hwtest.WithLogger(l), hwtest.WithOutput(&out))
	require.NoError(t, err)
	d.Reset()
	return m, d, &out
}

func TestDivider(t *testing.T) {
	td := []struct {
		name string
		p    hwlib.DividerParams
	}{
		{"3_48_4", hwlib.DividerParams{Divisor: 3, InputWidth: 48, RadixWidth: 4}},
		{"3_64_2", hwlib.DividerParams{Divisor: 3, InputWidth: 64, RadixWidth: 2}},
		{"10_32_4", hwlib.DividerParams{Divisor: 10, InputWidth: 32, RadixWidth: 4}},
		{"1_8_1", hwlib.DividerParams{Divisor: 1, InputWidth: 8, RadixWidth: 1}},
		{"2_1_1", hwlib.DividerParams{Divisor: 2, InputWidth: 1, RadixWidth: 1}},
		{"7_5_3", hwlib.DividerParams{Divisor: 7, InputWidth: 5, RadixWidth: 3}},
		{"255_64_8", hwlib.DividerParams{Divisor: 255, InputWidth: 64, RadixWidth: 8}},
		{"1000_20_10", hwlib.DividerParams{Divisor: 1000, InputWidth: 20, RadixWidth: 10}},
		{"pow2_16_5", hwlib.DividerParams{Divisor: 16, InputWidth: 16, RadixWidth: 5}},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			_, drv, out := newDividerDriver(t, d.p, uint64(d.p.Slices())+2)
			max := hwtest.NewStimulus(d.p.InputWidth, 1).Max()
			values := []uint64{0, 1, d.p.Divisor - 1, d.p.Divisor, d.p.Divisor + 1, max, max - 1, max / 2}
			stim := hwtest.NewStimulus(d.p.InputWidth, 42)
			for i := 0; i < 300; i++ {
				values = append(values, stim.Next())
			}
			stop := hwtest.NewStop()
			for _, v := range values {
				ok, err := drv.Do(v&max, stop)
				require.NoError(t, err, "value %d", v&max)
				require.True(t, ok)
			}
			assert.Equal(t, uint64(len(values)), drv.Tests())
			assert.Empty(t, out.String())
		})
	}
}

func TestDivider_Run(t *testing.T) {
	p := hwlib.DividerParams{Divisor: 3, InputWidth: 48, RadixWidth: 4}
	_, drv, out := newDividerDriver(t, p, 0)
	stop := hwtest.NewStop()
	done := make(chan error)
	go func() { done <- drv.Run(stop) }()
	for drv.Tests() < 500 {
		select {
		case err := <-done:
			t.Fatalf("Run returned early: %v", err)
		default:
		}
	}
	stop.Set()
	require.NoError(t, <-done)
	assert.Empty(t, out.String())
}

func TestDivider_latency(t *testing.T) {
	p := hwlib.DividerParams{Divisor: 3, InputWidth: 48, RadixWidth: 4}
	td := []struct {
		value  uint64
		cycles uint64 // polling cycles
	}{
		{10, 1},
		{0, 1},
		{2, 1},
		{0x30, 2},
		{0x20, 1}, // leading slice smaller than the divisor becomes the carry
		{1<<48 - 1, 12},
	}
	for _, d := range td {
		_, drv, _ := newDividerDriver(t, p, 0)
		start := drv.Cycles()
		ok, err := drv.Do(d.value, hwtest.NewStop())
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 2+2*d.cycles, drv.Cycles()-start, "value %#x", d.value)
	}
}

// cycle runs a full clock cycle and returns the outputs sampled after the
// rising edge.
func cycle(m *hwdiv.Module) (valid, validNext bool, q, r uint64) {
	m.Set(hwtest.PortClk, 1)
	m.Eval()
	valid, validNext = m.Get(hwtest.PortValidOut) != 0, m.Get("valid_next_o") != 0
	q, r = m.Get(hwtest.PortQuotient), m.Get(hwtest.PortRemainder)
	m.Set(hwtest.PortClk, 0)
	m.Eval()
	return
}

func TestDivider_validNext(t *testing.T) {
	p := hwlib.DividerParams{Divisor: 7, InputWidth: 16, RadixWidth: 3}
	m, _, _ := newDividerDriver(t, p, 0)

	m.Set(hwtest.PortValue, 50000)
	m.Set(hwtest.PortValidIn, 1)
	cycle(m)
	m.Set(hwtest.PortValue, 0)
	m.Set(hwtest.PortValidIn, 0)

	var prevNext bool
	for i := 0; i < p.Slices()+2; i++ {
		valid, next, q, r := cycle(m)
		if valid {
			assert.True(t, prevNext, "valid_next_o not set before valid_o")
			assert.False(t, next)
			assert.Equal(t, uint64(50000/7), q)
			assert.Equal(t, uint64(50000%7), r)
			return
		}
		prevNext = next
	}
	t.Fatal("no result")
}

func TestDivider_flush(t *testing.T) {
	p := hwlib.DividerParams{Divisor: 3, InputWidth: 48, RadixWidth: 2}
	m, drv, _ := newDividerDriver(t, p, 0)

	m.Set(hwtest.PortValue, 1<<48-1)
	m.Set(hwtest.PortValidIn, 1)
	cycle(m)
	m.Set(hwtest.PortValue, 0)
	m.Set(hwtest.PortValidIn, 0)
	for i := 0; i < 3; i++ {
		valid, _, _, _ := cycle(m)
		require.False(t, valid)
	}
	m.Set(hwtest.PortFlush, 1)
	cycle(m)
	m.Set(hwtest.PortFlush, 0)
	for i := 0; i < p.Slices()+2; i++ {
		valid, next, _, _ := cycle(m)
		require.False(t, valid, "result after flush")
		require.False(t, next, "result announced after flush")
	}

	// the divider accepts new inputs after a flush
	ok, err := drv.Do(1234567, hwtest.NewStop())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDivider_reset(t *testing.T) {
	p := hwlib.DividerParams{Divisor: 5, InputWidth: 32, RadixWidth: 3}
	m, drv, _ := newDividerDriver(t, p, 0)

	m.Set(hwtest.PortValue, 1<<32-1)
	m.Set(hwtest.PortValidIn, 1)
	cycle(m)
	m.Set(hwtest.PortValidIn, 0)
	m.Set(hwtest.PortValue, 0)
	cycle(m)

	// reset is asynchronous: outputs clear without a clock edge.
	m.Set(hwtest.PortRstN, 0)
	m.Eval()
	assert.Zero(t, m.Get(hwtest.PortQuotient))
	assert.Zero(t, m.Get(hwtest.PortRemainder))
	assert.Zero(t, m.Get(hwtest.PortValidOut))
	m.Set(hwtest.PortRstN, 1)
	m.Eval()

	for i := 0; i < p.Slices()+2; i++ {
		valid, _, _, _ := cycle(m)
		require.False(t, valid, "result after reset")
	}
	ok, err := drv.Do(99, hwtest.NewStop())
	require.NoError(t, err)
	assert.True(t, ok)
}
