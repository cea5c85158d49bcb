// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package sv generates the SystemVerilog source of the radix lookup table
// divider modeled by hwlib.Divider.
//
package sv

import (
	"bufio"
	"io"
	"regexp"
	"text/template"

	"github.com/db47h/hwdiv/hwlib"
	"github.com/pkg/errors"
)

var ident = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_$]*$`)

type lutEntry struct {
	Index, Value, Quot, Rem uint64
	Reachable, Last         bool
}

type divider struct {
	Name       string
	Divisor    uint64
	InputWidth int
	InputMSB   int
	RadixWidth int
	CarryWidth int
	Slices     int
	IndexWidth int
	LUTWidth   int
	Table      []lutEntry
}

// WriteDivider writes the SystemVerilog module name implementing a divider
// with parameters p.
//
// The generated module has the same ports and cycle behavior as the model
// returned by hwlib.Divider.
//
func WriteDivider(w io.Writer, name string, p hwlib.DividerParams) error {
	if !ident.MatchString(name) {
		return errors.Errorf("invalid module name %q", name)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	d := divider{
		Name:       name,
		Divisor:    p.Divisor,
		InputWidth: p.InputWidth,
		InputMSB:   p.InputWidth - 1,
		RadixWidth: p.RadixWidth,
		CarryWidth: p.CarryWidth(),
		Slices:     p.Slices(),
		IndexWidth: clog2(p.Slices()),
		LUTWidth:   p.CarryWidth() + p.RadixWidth,
	}
	tbl := p.Table()
	lim := uint64(1) << uint(p.RadixWidth) * p.Divisor
	d.Table = make([]lutEntry, len(tbl))
	// listed from the highest address down, as in a packed array literal.
	for i := range tbl {
		a := uint64(len(tbl) - 1 - i)
		d.Table[i] = lutEntry{
			Index:     a,
			Value:     tbl[a],
			Quot:      a / p.Divisor,
			Rem:       a % p.Divisor,
			Reachable: a < lim && a != 0,
			Last:      a == 0,
		}
	}

	bw := bufio.NewWriter(w)
	if err := moduleTmpl.Execute(bw, &d); err != nil {
		return errors.Wrap(err, "failed to generate module "+name)
	}
	return errors.Wrap(bw.Flush(), "failed to write module "+name)
}

// clog2 returns the number of bits needed to index n items, at least 1.
func clog2(n int) int {
	w := 1
	for 1<<uint(w) < n {
		w++
	}
	return w
}

var moduleTmpl = template.Must(template.New("divider").Parse(moduleSrc))

const moduleSrc = `module {{.Name}} (
  input  logic                clk_i,
  input  logic                rst_ni,
  input  logic                flush_i,
  input  logic                valid_i,
  input  logic [{{.InputMSB}}:0]      value_i,
  output logic                valid_o,
  output logic                valid_next_o, // result will be valid in next cycle
  output logic [{{.InputMSB}}:0]      quotient_o,
  output logic [{{.InputMSB}}:0]      remainder_o
);
localparam int unsigned VALUE_DIVISOR = {{.Divisor}};
localparam int unsigned WIDTH_INPUT   = {{.InputWidth}};
localparam int unsigned WIDTH_RADIX   = {{.RadixWidth}};
localparam int unsigned WIDTH_CARRY   = {{.CarryWidth}};
localparam int unsigned NUM_SLICE     = {{.Slices}};
localparam int unsigned WIDTH_INDEX   = {{.IndexWidth}};

// {carry, slice} -> {quotient digit, remainder}
localparam logic [2**(WIDTH_RADIX+WIDTH_CARRY)-1:0][WIDTH_RADIX+WIDTH_CARRY-1:0] LookupTable = {
{{- range .Table}}
  {{$.LUTWidth}}'d{{.Value}}{{if not .Last}},{{end}}{{if .Reachable}} // value={{.Index}}, quot={{.Quot}}, rem={{.Rem}}{{end}}
{{- end}}
};

logic [NUM_SLICE-1:0][WIDTH_RADIX-1:0] value_e, value_d, value_q;

always_comb begin
  value_e = '0;
  for (int unsigned i = 0; i < WIDTH_INPUT; ++i) begin
    value_e[i/WIDTH_RADIX][i%WIDTH_RADIX] = value_i[i];
  end
end

assign value_d = (valid_i? value_e: value_q);

logic [NUM_SLICE-1:0] slice_zero;
logic [NUM_SLICE-1:0] slice_full;

generate
  for (genvar gi = 0; gi < NUM_SLICE; ++gi) begin
    assign slice_zero[gi] = ~|value_e[gi];
    assign slice_full[gi] = (value_e[gi] >= VALUE_DIVISOR);
  end
endgenerate

logic [WIDTH_INDEX-1:0] slice_index_first, slice_index_next, slice_index_d, slice_index_q;
always_comb begin
  slice_index_first = '0;
  for (int j = NUM_SLICE-1; j > 0; --j) begin
    if (!slice_zero[j]) begin
      slice_index_first = slice_full[j]? j : (j-1);
      break;
    end
  end
end
assign slice_index_next = slice_index_q - 1;

logic [WIDTH_CARRY-1:0] carry_i, carry_d, carry_q;
assign carry_i = (slice_index_first == NUM_SLICE-1)? {WIDTH_CARRY{1'b0}} : value_e[slice_index_first+1][WIDTH_CARRY-1:0];

logic [WIDTH_RADIX+WIDTH_CARRY-1:0] divider_current;
assign divider_current = {carry_q, value_q[slice_index_q]};

logic [WIDTH_RADIX+WIDTH_CARRY-1:0] result_current;
assign result_current = LookupTable[divider_current];
logic [WIDTH_RADIX-1:0] quotient_current;
logic [WIDTH_CARRY-1:0] remainder_current;
assign quotient_current = result_current[WIDTH_RADIX+WIDTH_CARRY-1:WIDTH_CARRY];
assign remainder_current = result_current[WIDTH_CARRY-1:0];

logic [NUM_SLICE-1:0][WIDTH_RADIX-1:0] result_d, result_q;

{{if gt .InputWidth .CarryWidth -}}
assign remainder_o[WIDTH_INPUT-1:WIDTH_CARRY] = '0;
assign remainder_o[WIDTH_CARRY-1:0] = carry_q;
{{- else -}}
assign remainder_o = carry_q[WIDTH_INPUT-1:0];
{{- end}}
always_comb begin
  quotient_o = '0;
  for (int unsigned i = 0; i < WIDTH_INPUT; ++i) begin
    quotient_o[i] = result_q[i/WIDTH_RADIX][i%WIDTH_RADIX];
  end
end

enum logic [1:0] {
  IDLE,
  WORKING,
  DONE
} state_n, state_q;

always_comb begin
  valid_o = '0;
  valid_next_o = '0;

  state_n = state_q;
  carry_d = carry_q;
  result_d = result_q;
  slice_index_d = '0;
  case (state_q)
    IDLE: begin
      result_d = '0;
      if (valid_i) begin
        carry_d = carry_i;
        slice_index_d = slice_index_first;
        state_n = WORKING;
      end
    end
    WORKING: begin
      carry_d = remainder_current;
      result_d[slice_index_q] = quotient_current;
      if (slice_index_q == 0) begin
        state_n = DONE;
        valid_next_o = 1'b1;
      end else begin
        slice_index_d = slice_index_next;
      end
    end
    DONE: begin
      valid_o = 1'b1;
      state_n = IDLE;
      result_d = '0;
      if (valid_i) begin
        carry_d = carry_i;
        slice_index_d = slice_index_first;
        state_n = WORKING;
      end
    end
    default: state_n = IDLE;
  endcase
  if (flush_i) begin
    state_n = IDLE;
  end
end

always_ff @(posedge clk_i or negedge rst_ni) begin
  if (~rst_ni) begin
    state_q       <= IDLE;
    value_q       <= '0;
    slice_index_q <= '0;
    carry_q       <= '0;
    result_q      <= '0;
  end else begin
    state_q       <= state_n;
    value_q       <= value_d;
    slice_index_q <= slice_index_d;
    carry_q       <= carry_d;
    result_q      <= result_d;
  end
end

endmodule
`
