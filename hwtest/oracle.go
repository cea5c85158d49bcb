// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtest

import (
	"math"
	"math/rand"
	"strconv"
)

// Oracle returns the expected quotient and remainder of value / divisor.
// divisor must not be 0.
//
func Oracle(value, divisor uint64) (quotient, remainder uint64) {
	return value / divisor, value % divisor
}

// Transaction is a single division request together with its expected result.
//
type Transaction struct {
	Value     uint64
	Divisor   uint64
	Quotient  uint64
	Remainder uint64
}

// NewTransaction returns a transaction for value / divisor.
//
func NewTransaction(value, divisor uint64) Transaction {
	q, r := Oracle(value, divisor)
	return Transaction{value, divisor, q, r}
}

func (tx Transaction) String() string {
	return strconv.FormatUint(tx.Value, 10) + " = " +
		strconv.FormatUint(tx.Divisor, 10) + " * " +
		strconv.FormatUint(tx.Quotient, 10) + " + " +
		strconv.FormatUint(tx.Remainder, 10)
}

// Stimulus generates random values uniformly distributed in [0, 2^width-1].
//
type Stimulus struct {
	rng  *rand.Rand
	mask uint64
}

// NewStimulus returns a new Stimulus for the given input width (1 to 64 bits).
//
func NewStimulus(width int, seed int64) *Stimulus {
	mask := uint64(math.MaxUint64)
	if width < 64 {
		mask = 1<<uint(width) - 1
	}
	return &Stimulus{rng: rand.New(rand.NewSource(seed)), mask: mask}
}

// Max returns the largest value that Next can return.
//
func (s *Stimulus) Max() uint64 { return s.mask }

// Next returns the next random value.
//
func (s *Stimulus) Next() uint64 {
	return s.rng.Uint64() & s.mask
}
