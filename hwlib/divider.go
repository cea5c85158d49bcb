// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/hwdiv"
	"github.com/pkg/errors"
)

// Divider states.
const (
	StateIdle uint64 = iota
	StateWorking
	StateDone
)

const (
	indexWidth = 8  // slice index register width. Enough for 64 slices.
	maxLUTBits = 20 // lookup table address width limit.
)

// DividerParams holds the parameters of a divider by a constant.
//
// The divider splits its input into slices of RadixWidth bits and divides one
// slice per clock cycle, most significant slice first, by looking up
// {carry, slice} in a table of precomputed quotient digits and remainders.
//
type DividerParams struct {
	Divisor    uint64 // constant divisor, > 0
	InputWidth int    // width of the input value, quotient and remainder, in [1, 64]
	RadixWidth int    // number of bits processed per cycle
}

// Validate checks that the divider can be built.
//
func (p DividerParams) Validate() error {
	if p.Divisor == 0 || p.InputWidth <= 0 || p.RadixWidth <= 0 {
		return errors.New("all numeric arguments must be positive")
	}
	if p.InputWidth > 64 {
		return errors.Errorf("input width %d exceeds 64 bits", p.InputWidth)
	}
	if p.RadixWidth < 64 && uint64(1)<<uint(p.RadixWidth) < p.Divisor {
		return errors.New("radix width is smaller than divisor bitwidth")
	}
	if p.RadixWidth+p.CarryWidth() > maxLUTBits {
		return errors.Errorf("lookup table too large: %d address bits (max %d)", p.RadixWidth+p.CarryWidth(), maxLUTBits)
	}
	return nil
}

// CarryWidth returns the number of bits needed to hold a remainder.
//
func (p DividerParams) CarryWidth() int {
	w := 1
	for w < 64 && uint64(1)<<uint(w) < p.Divisor {
		w++
	}
	return w
}

// Slices returns the number of input slices.
//
func (p DividerParams) Slices() int {
	return (p.InputWidth-1)/p.RadixWidth + 1
}

// Table returns the lookup table contents. The table is indexed by
// carry<<RadixWidth | slice and each entry holds quotient<<CarryWidth | remainder.
// Entries that cannot be reached (carry >= Divisor) are 0.
//
func (p DividerParams) Table() []uint64 {
	cw, rw := uint(p.CarryWidth()), uint(p.RadixWidth)
	t := make([]uint64, 1<<(cw+rw))
	lim := uint64(1) << rw * p.Divisor
	for i := range t {
		v := uint64(i)
		if v >= lim {
			continue
		}
		q, r := v/p.Divisor, v%p.Divisor
		t[i] = (q&(1<<rw-1))<<cw | r
	}
	return t
}

func (p DividerParams) slice(v uint64, i int) uint64 {
	if i >= p.Slices() {
		return 0
	}
	return v >> uint(i*p.RadixWidth) & (1<<uint(p.RadixWidth) - 1)
}

// first returns the index of the first slice to process for input v, and the
// initial carry. Leading zero slices are skipped. If the most significant
// non-zero slice is smaller than the divisor, it becomes the initial carry.
//
func (p DividerParams) first(v uint64) (index int, carry uint64) {
	n := p.Slices()
	for j := n - 1; j > 0; j-- {
		if s := p.slice(v, j); s != 0 {
			if s >= p.Divisor {
				index = j
			} else {
				index = j - 1
			}
			break
		}
	}
	if index != n-1 {
		carry = p.slice(v, index+1)
	}
	return index, carry
}

// Divider returns a divider by a constant.
//
//	Inputs: clk_i, rst_ni, flush_i, valid_i, value_i[InputWidth]
//	Outputs: valid_o, valid_next_o, quotient_o[InputWidth], remainder_o[InputWidth]
//
// value_i is sampled on the rising edge of clk_i where valid_i is set. The
// result is available on quotient_o and remainder_o during the single cycle
// where valid_o is set; valid_next_o announces it one cycle ahead. The number
// of cycles depends on the number of significant slices in the input value.
// flush_i aborts the current division and rst_ni is an asynchronous active low
// reset.
//
func Divider(p DividerParams) (*hwdiv.PartSpec, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	w, cw, lw := strconv.Itoa(p.InputWidth), p.CarryWidth(), p.CarryWidth()+p.RadixWidth
	div, err := hwdiv.Chip("Divider",
		"clk_i, rst_ni, flush_i, valid_i, value_i["+w+"]",
		"valid_o, valid_next_o, quotient_o["+w+"], remainder_o["+w+"]",
		Not(1)("in=rst_ni, out=rst"),
		Reg(2)("clk=clk_i, rst=rst, d=state_d, q=state_q"),
		Reg(p.InputWidth)("clk=clk_i, rst=rst, d=value_d, q=value_q"),
		Reg(indexWidth)("clk=clk_i, rst=rst, d=index_d, q=index_q"),
		Reg(cw)("clk=clk_i, rst=rst, d=carry_d, q=carry_q"),
		Reg(p.InputWidth)("clk=clk_i, rst=rst, d=result_d, q=quotient_o"),
		Mux(p.InputWidth)("a=value_q, b=value_i, sel=valid_i, out=value_d"),
		divFirst(p)("value=value_i, index=first_index, carry=first_carry"),
		divSelect(p)("value=value_q, index=index_q, carry=carry_q, addr=lut_addr"),
		ROM(lw, lw, p.Table())("addr=lut_addr, data=lut_data"),
		divControl(p)("state_q=state_q, valid_i=valid_i, index_q=index_q, carry_q=carry_q, result_q=quotient_o, "+
			"lut=lut_data, first_index=first_index, first_carry=first_carry, "+
			"state_n=state_n, index_d=index_d, carry_d=carry_d, result_d=result_d, "+
			"valid_o=valid_o, valid_next_o=valid_next_o, remainder_o=remainder_o"),
		Mux(2)("a=state_n, b=false, sel=flush_i, out=state_d"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build divider")
	}
	return div("").PartSpec, nil
}

// NewDivider returns a divider wrapped into a Module.
//
func NewDivider(p DividerParams) (*hwdiv.Module, error) {
	spec, err := Divider(p)
	if err != nil {
		return nil, err
	}
	return hwdiv.NewModule(spec)
}

// divFirst computes the first slice index and carry for a new input.
func divFirst(p DividerParams) hwdiv.NewPartFn {
	return (&hwdiv.PartSpec{
		Name:    "DivFirst",
		Inputs:  pins(p.InputWidth, "value"),
		Outputs: []hwdiv.Pin{{Name: "index", Width: indexWidth}, {Name: "carry", Width: p.CarryWidth()}},
		Mount: func(s *hwdiv.Socket) []hwdiv.Component {
			value, index, carry := s.Pin("value"), s.Pin("index"), s.Pin("carry")
			return []hwdiv.Component{func(c *hwdiv.Circuit) {
				i, cy := p.first(c.Get(value))
				c.Set(index, uint64(i))
				c.Set(carry, cy)
			}}
		},
	}).NewPart
}

// divSelect computes the lookup table address {carry, value[index]}.
func divSelect(p DividerParams) hwdiv.NewPartFn {
	return (&hwdiv.PartSpec{
		Name: "DivSelect",
		Inputs: []hwdiv.Pin{
			{Name: "value", Width: p.InputWidth},
			{Name: "index", Width: indexWidth},
			{Name: "carry", Width: p.CarryWidth()},
		},
		Outputs: pins(p.CarryWidth()+p.RadixWidth, pAddr),
		Mount: func(s *hwdiv.Socket) []hwdiv.Component {
			value, index, carry, addr := s.Pin("value"), s.Pin("index"), s.Pin("carry"), s.Pin(pAddr)
			rw := uint(p.RadixWidth)
			return []hwdiv.Component{func(c *hwdiv.Circuit) {
				c.Set(addr, c.Get(carry)<<rw|p.slice(c.Get(value), int(c.Get(index))))
			}}
		},
	}).NewPart
}

// divControl is the divider's next state logic.
func divControl(p DividerParams) hwdiv.NewPartFn {
	cw := p.CarryWidth()
	return (&hwdiv.PartSpec{
		Name: "DivControl",
		Inputs: []hwdiv.Pin{
			{Name: "state_q", Width: 2},
			{Name: "valid_i", Width: 1},
			{Name: "index_q", Width: indexWidth},
			{Name: "carry_q", Width: cw},
			{Name: "result_q", Width: p.InputWidth},
			{Name: "lut", Width: cw + p.RadixWidth},
			{Name: "first_index", Width: indexWidth},
			{Name: "first_carry", Width: cw},
		},
		Outputs: []hwdiv.Pin{
			{Name: "state_n", Width: 2},
			{Name: "index_d", Width: indexWidth},
			{Name: "carry_d", Width: cw},
			{Name: "result_d", Width: p.InputWidth},
			{Name: "valid_o", Width: 1},
			{Name: "valid_next_o", Width: 1},
			{Name: "remainder_o", Width: p.InputWidth},
		},
		Mount: func(s *hwdiv.Socket) []hwdiv.Component {
			var (
				stateQ, validI, indexQ, carryQ = s.Pin("state_q"), s.Pin("valid_i"), s.Pin("index_q"), s.Pin("carry_q")
				resultQ, lut                   = s.Pin("result_q"), s.Pin("lut")
				firstIndex, firstCarry         = s.Pin("first_index"), s.Pin("first_carry")
				stateN, indexD, carryD         = s.Pin("state_n"), s.Pin("index_d"), s.Pin("carry_d")
				resultD, validO, validNextO    = s.Pin("result_d"), s.Pin("valid_o"), s.Pin("valid_next_o")
				remainderO                     = s.Pin("remainder_o")
				rw                             = uint(p.RadixWidth)
				digitMask                      = uint64(1)<<rw - 1
			)
			return []hwdiv.Component{func(c *hwdiv.Circuit) {
				var (
					state     = c.Get(stateQ)
					index     = c.Get(indexQ)
					next      = state
					carry     = c.Get(carryQ)
					result    = c.Get(resultQ)
					nextIndex uint64
					valid     bool
					validNext bool
				)
				switch state {
				case StateDone:
					valid = true
					next = StateIdle
					fallthrough
				case StateIdle:
					result = 0
					if c.Bool(validI) {
						carry = c.Get(firstCarry)
						nextIndex = c.Get(firstIndex)
						next = StateWorking
					}
				case StateWorking:
					e := c.Get(lut)
					carry = e & (1<<uint(cw) - 1)
					shift := uint(index) * rw
					result = result&^(digitMask<<shift) | (e>>uint(cw))<<shift
					if index == 0 {
						next = StateDone
						validNext = true
					} else {
						nextIndex = index - 1
					}
				default:
					next = StateIdle
				}
				c.Set(stateN, next)
				c.Set(indexD, nextIndex)
				c.Set(carryD, carry)
				c.Set(resultD, result)
				c.SetBool(validO, valid)
				c.SetBool(validNextO, validNext)
				c.Set(remainderO, c.Get(carryQ))
			}}
		},
	}).NewPart
}
