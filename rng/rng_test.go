// SPDX-License-Identifier: MIT

package rng_test

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/humap/rng"
)

func TestNew_ZeroSeedPolicy(t *testing.T) {
	a := rng.New(0)
	b := rng.New(rng.DefaultSeed)
	for i := 0; i < 16; i++ {
		assert.Equal(t, a.Int63(), b.Int63())
	}
}

func TestDerive_IndependentAndDeterministic(t *testing.T) {
	c1 := rng.Derive(rng.New(42), 3)
	c2 := rng.Derive(rng.New(42), 3)
	assert.Equal(t, c1.Int63(), c2.Int63(), "same parent and stream give the same child")

	base := rng.New(42)
	d1 := rng.Derive(base, 3)
	d2 := rng.Derive(base, 3)
	assert.NotEqual(t, d1.Int63(), d2.Int63(), "consecutive derivations advance the parent")

	assert.NotEqual(t, rng.DeriveSeed(1, 0), rng.DeriveSeed(1, 1))
}

func TestPerm(t *testing.T) {
	p, err := rng.Perm(50, rng.New(7))
	require.NoError(t, err)
	sorted := append([]int(nil), p...)
	sort.Ints(sorted)
	for i, v := range sorted {
		assert.Equal(t, i, v)
	}

	q, err := rng.Perm(50, rng.New(7))
	require.NoError(t, err)
	assert.Equal(t, p, q)

	_, err = rng.Perm(-1, nil)
	assert.ErrorIs(t, err, rng.ErrNegativeLength)
}

func TestWeightedSample_DistinctAndSized(t *testing.T) {
	w := make([]float64, 200)
	for i := range w {
		w[i] = float64(i%7) + 0.5
	}
	for seed := int64(1); seed <= 20; seed++ {
		got, err := rng.WeightedSample(w, 60, rng.New(seed))
		require.NoError(t, err)
		require.Len(t, got, 60)
		seen := make(map[int]bool, len(got))
		for _, idx := range got {
			require.False(t, seen[idx], "duplicate index %d", idx)
			seen[idx] = true
		}
	}
}

func TestWeightedSample_SkipsZeroWeights(t *testing.T) {
	w := []float64{0, 1, 0, 2, 0}
	got, err := rng.WeightedSample(w, 2, rng.New(3))
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 3}, got)

	_, err = rng.WeightedSample(w, 3, rng.New(3))
	assert.ErrorIs(t, err, rng.ErrInsufficientSupport)
}

func TestWeightedSample_InvalidInput(t *testing.T) {
	_, err := rng.WeightedSample([]float64{1, -1}, 1, nil)
	assert.ErrorIs(t, err, rng.ErrInvalidWeight)
	_, err = rng.WeightedSample([]float64{1, math.NaN()}, 1, nil)
	assert.ErrorIs(t, err, rng.ErrInvalidWeight)
	_, err = rng.WeightedSample([]float64{1}, 2, nil)
	assert.ErrorIs(t, err, rng.ErrInsufficientSupport)

	got, err := rng.WeightedSample([]float64{1}, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

// TestWeightedSample_FavoursHeavyIndices checks the first draw frequency of
// a heavily weighted index against its probability.
func TestWeightedSample_FavoursHeavyIndices(t *testing.T) {
	w := []float64{8, 1, 1}
	src := rng.New(11)
	hits := 0
	const trials = 4000
	for i := 0; i < trials; i++ {
		got, err := rng.WeightedSample(w, 1, src)
		require.NoError(t, err)
		if got[0] == 0 {
			hits++
		}
	}
	assert.InDelta(t, 0.8, float64(hits)/trials, 0.05)
}
