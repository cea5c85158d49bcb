package hwtest_test

import (
	"math"
	"testing"

	"github.com/db47h/hwdiv/hwtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOracle(t *testing.T) {
	td := []struct {
		v, d, q, r uint64
	}{
		{10, 3, 3, 1},
		{0, 3, 0, 0},
		{2, 3, 0, 2},
		{1<<48 - 1, 3, 93824992236885, 0},
		{math.MaxUint64, 1, math.MaxUint64, 0},
		{math.MaxUint64, 10, 1844674407370955161, 5},
		{math.MaxUint64, math.MaxUint64, 1, 0},
	}
	for _, d := range td {
		q, r := hwtest.Oracle(d.v, d.d)
		assert.Equal(t, d.q, q, "%d / %d", d.v, d.d)
		assert.Equal(t, d.r, r, "%d %% %d", d.v, d.d)
		assert.Equal(t, d.v, q*d.d+r)
		assert.True(t, r < d.d)
	}
}

func TestTransaction_String(t *testing.T) {
	assert.Equal(t, "10 = 3 * 3 + 1", hwtest.NewTransaction(10, 3).String())
	assert.Equal(t, "0 = 7 * 0 + 0", hwtest.NewTransaction(0, 7).String())
}

func TestStimulus(t *testing.T) {
	for w := 1; w <= 64; w++ {
		s := hwtest.NewStimulus(w, int64(w))
		max := uint64(math.MaxUint64)
		if w < 64 {
			max = 1<<uint(w) - 1
		}
		require.Equal(t, max, s.Max())
		var or uint64
		for i := 0; i < 1000; i++ {
			v := s.Next()
			require.True(t, v <= max, "width %d: %d out of range", w, v)
			or |= v
		}
		// with 1000 samples, every bit is set at least once.
		assert.Equal(t, max, or, "width %d", w)
	}
}

func TestStimulus_seed(t *testing.T) {
	a, b := hwtest.NewStimulus(48, 1234), hwtest.NewStimulus(48, 1234)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Next(), b.Next())
	}
}
