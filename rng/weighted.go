// SPDX-License-Identifier: MIT

package rng

import (
	"container/heap"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidWeight is returned when a weight is negative, NaN or Inf.
	ErrInvalidWeight = errors.New("rng: invalid weight")

	// ErrInsufficientSupport is returned when fewer than k weights are positive.
	ErrInsufficientSupport = errors.New("rng: fewer positive weights than requested draws")
)

// keyed is one candidate of the weighted reservoir.
type keyed struct {
	key   float64
	index int
}

// minKeys is a min-heap on key, holding the k best candidates seen so far.
type minKeys []keyed

func (h minKeys) Len() int { return len(h) }
func (h minKeys) Less(a, b int) bool {
	if h[a].key != h[b].key {
		return h[a].key < h[b].key
	}
	return h[a].index > h[b].index
}
func (h minKeys) Swap(a, b int) { h[a], h[b] = h[b], h[a] }
func (h *minKeys) Push(x any)   { *h = append(*h, x.(keyed)) }
func (h *minKeys) Pop() any {
	old := *h
	x := old[len(old)-1]
	*h = old[:len(old)-1]
	return x
}

// WeightedSample draws k distinct indices from [0, len(weights)) without
// replacement, with the same distribution as drawing one index at a time
// proportionally to the remaining weights. Indices are returned in draw order.
//
// It uses exponential keys: every index gets key log(u)/w with u uniform in
// (0, 1], and the k largest keys win. Zero weights are never drawn.
//
// Complexity: O(n log k) time, O(k) extra space.
func WeightedSample(weights []float64, k int, src Source) ([]int, error) {
	// 1. Validate
	if k < 0 || k > len(weights) {
		return nil, fmt.Errorf("WeightedSample(k=%d, n=%d): %w", k, len(weights), ErrInsufficientSupport)
	}
	positive := 0
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("WeightedSample: weight %d = %v: %w", i, w, ErrInvalidWeight)
		}
		if w > 0 {
			positive++
		}
	}
	if positive < k {
		return nil, fmt.Errorf("WeightedSample: %d positive weights, %d draws: %w", positive, k, ErrInsufficientSupport)
	}
	if k == 0 {
		return []int{}, nil
	}
	if src == nil {
		src = New(0)
	}

	// 2. Keep the k largest keys
	h := make(minKeys, 0, k)
	var (
		u, key float64
		i      int
	)
	for i = range weights {
		// one draw per index keeps the stream position independent of the weights
		u = 1 - src.Float64()
		if weights[i] == 0 {
			continue
		}
		key = math.Log(u) / weights[i]
		if h.Len() < k {
			heap.Push(&h, keyed{key: key, index: i})
			continue
		}
		if key > h[0].key {
			h[0] = keyed{key: key, index: i}
			heap.Fix(&h, 0)
		}
	}

	// 3. Largest key first
	out := make([]int, k)
	for i = k - 1; i >= 0; i-- {
		out[i] = heap.Pop(&h).(keyed).index
	}
	return out, nil
}
