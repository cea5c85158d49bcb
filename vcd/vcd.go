// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package vcd writes Value Change Dump waveform traces.
//
// A Writer samples a fixed set of variables at every call to Dump and writes
// the values that changed since the previous dump.
//
package vcd

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Timescale is the time unit written in trace headers. Dump timestamps are
// expressed in this unit.
//
const Timescale = "1ns"

// ErrNotFile is returned by Writer.Clear for writers not backed by a file.
//
var ErrNotFile = errors.New("trace is not backed by a file")

// A Var is a traced variable. Value is called on every dump and must return a
// value that fits in Width bits.
//
type Var struct {
	Name  string
	Width int
	Value func() uint64
}

// Writer is a VCD trace writer.
//
type Writer struct {
	path  string
	f     *os.File
	w     *bufio.Writer
	scope string
	vars  []Var
	ids   []string
	last  []uint64

	dumped bool // $dumpvars written
	closed bool
}

// New returns a Writer writing a trace to w. The variables are declared in a
// module scope of the given name.
//
// A Writer created with New cannot be cleared.
//
func New(w io.Writer, scope string, vars []Var) (*Writer, error) {
	t, err := newWriter(scope, vars)
	if err != nil {
		return nil, err
	}
	t.w = bufio.NewWriter(w)
	if err = t.header(); err != nil {
		return nil, err
	}
	return t, nil
}

// Create creates or truncates the named file and returns a Writer writing a
// trace to it.
//
func Create(path string, scope string, vars []Var) (*Writer, error) {
	t, err := newWriter(scope, vars)
	if err != nil {
		return nil, err
	}
	t.path = path
	if err = t.open(); err != nil {
		return nil, err
	}
	return t, nil
}

func newWriter(scope string, vars []Var) (*Writer, error) {
	if !validName(scope) {
		return nil, errors.Errorf("invalid scope name %q", scope)
	}
	seen := make(map[string]bool, len(vars))
	for _, v := range vars {
		switch {
		case !validName(v.Name):
			return nil, errors.Errorf("invalid variable name %q", v.Name)
		case seen[v.Name]:
			return nil, errors.Errorf("duplicate variable %s", v.Name)
		case v.Width < 1 || v.Width > 64:
			return nil, errors.Errorf("variable %s: invalid width %d", v.Name, v.Width)
		case v.Value == nil:
			return nil, errors.Errorf("variable %s: nil value function", v.Name)
		}
		seen[v.Name] = true
	}
	t := &Writer{
		scope: scope,
		vars:  vars,
		ids:   make([]string, len(vars)),
		last:  make([]uint64, len(vars)),
	}
	for i := range vars {
		t.ids[i] = code(i)
	}
	return t, nil
}

func validName(s string) bool {
	return s != "" && !strings.ContainsAny(s, " \t\r\n$")
}

// code returns the identifier code of the i-th variable: printable ASCII
// characters from '!' to '~', in little endian base 94.
//
func code(i int) string {
	var b []byte
	for {
		b = append(b, byte('!'+i%94))
		i /= 94
		if i == 0 {
			return string(b)
		}
		i--
	}
}

func (t *Writer) open() error {
	f, err := os.Create(t.path)
	if err != nil {
		return errors.Wrap(err, "failed to create trace file")
	}
	t.f = f
	if t.w == nil {
		t.w = bufio.NewWriter(f)
	} else {
		t.w.Reset(f)
	}
	t.dumped = false
	if err = t.header(); err != nil {
		return multierr.Append(err, f.Close())
	}
	return nil
}

func (t *Writer) header() error {
	w := t.w
	w.WriteString("$version hwdiv $end\n")
	w.WriteString("$timescale " + Timescale + " $end\n")
	w.WriteString("$scope module " + t.scope + " $end\n")
	for i, v := range t.vars {
		w.WriteString("$var wire " + strconv.Itoa(v.Width) + " " + t.ids[i] + " " + v.Name)
		if v.Width > 1 {
			w.WriteString(" [" + strconv.Itoa(v.Width-1) + ":0]")
		}
		w.WriteString(" $end\n")
	}
	w.WriteString("$upscope $end\n")
	_, err := w.WriteString("$enddefinitions $end\n")
	return errors.Wrap(err, "failed to write trace header")
}

func (t *Writer) value(i int, v uint64) {
	if t.vars[i].Width == 1 {
		t.w.WriteString(strconv.FormatUint(v&1, 10) + t.ids[i] + "\n")
		return
	}
	t.w.WriteString("b" + strconv.FormatUint(v, 2) + " " + t.ids[i] + "\n")
}

// Dump samples all variables and writes the values that changed since the
// previous dump, at time ts. The first dump after Create, New or Clear writes
// all values.
//
func (t *Writer) Dump(ts uint64) error {
	if t.closed {
		return errors.New("trace closed")
	}
	stamped := false
	stamp := func() {
		if !stamped {
			t.w.WriteString("#" + strconv.FormatUint(ts, 10) + "\n")
			stamped = true
		}
	}
	if !t.dumped {
		stamp()
		t.w.WriteString("$dumpvars\n")
		for i, v := range t.vars {
			t.last[i] = v.Value()
			t.value(i, t.last[i])
		}
		t.w.WriteString("$end\n")
		t.dumped = true
	} else {
		for i, v := range t.vars {
			if x := v.Value(); x != t.last[i] {
				stamp()
				t.last[i] = x
				t.value(i, x)
			}
		}
	}
	// bufio errors are sticky
	_, err := t.w.WriteString("")
	return errors.Wrapf(err, "failed to write trace at time %d", ts)
}

// Clear discards the trace written so far: the trace file is closed and
// truncated, and a new header is written. It returns ErrNotFile if the Writer
// was created with New.
//
func (t *Writer) Clear() error {
	if t.closed {
		return errors.New("trace closed")
	}
	if t.f == nil {
		return ErrNotFile
	}
	err := multierr.Append(t.w.Flush(), t.f.Close())
	t.f = nil
	if err != nil {
		t.closed = true
		return errors.Wrap(err, "failed to close trace file")
	}
	if err = t.open(); err != nil {
		t.closed = true
		return err
	}
	return nil
}

// Close flushes the trace and closes the underlying file, if any.
//
func (t *Writer) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	err := t.w.Flush()
	if t.f != nil {
		err = multierr.Append(err, t.f.Close())
		t.f = nil
	}
	return errors.Wrap(err, "failed to close trace")
}
