// SPDX-License-Identifier: MIT

package fusion

import (
	"math"
	"sync"

	"github.com/tidwall/btree"
	"gonum.org/v1/gonum/mat"
)

// Accumulator is the symmetric landmark × landmark similarity sum built by
// Fuse. It also remembers, per row, which columns received a contribution.
type Accumulator struct {
	m       int
	dense   *mat.SymDense
	sparse  []btree.Map[int, float64]
	touched []btree.Set[int]
	locks   []sync.Mutex
}

// newAccumulator allocates storage for m landmarks.
func newAccumulator(m, denseLimit, shards int) *Accumulator {
	a := &Accumulator{
		m:       m,
		touched: make([]btree.Set[int], m),
		locks:   make([]sync.Mutex, shards),
	}
	if m > 0 && m <= denseLimit {
		a.dense = mat.NewSymDense(m, nil)
	} else {
		a.sparse = make([]btree.Map[int, float64], m)
	}
	return a
}

// Size returns the number of landmarks m.
func (a *Accumulator) Size() int { return a.m }

// Dense reports whether the accumulator uses dense storage.
func (a *Accumulator) Dense() bool { return a.dense != nil }

// At returns the accumulated similarity of cell (i, j); 0 when untouched or
// out of range.
func (a *Accumulator) At(i, j int) float64 {
	if i < 0 || i >= a.m || j < 0 || j >= a.m {
		return 0
	}
	if a.dense != nil {
		return a.dense.At(i, j)
	}
	v, _ := a.sparse[i].Get(j)
	return v
}

// Touched returns the columns of row i that received a contribution, ascending.
func (a *Accumulator) Touched(i int) []int {
	if i < 0 || i >= a.m {
		return nil
	}
	return a.touched[i].Keys()
}

// IsSymmetric reports whether At(i, j) and At(j, i) agree within tol for
// every touched cell.
func (a *Accumulator) IsSymmetric(tol float64) bool {
	for i := 0; i < a.m; i++ {
		ok := true
		a.touched[i].Scan(func(j int) bool {
			if math.Abs(a.At(i, j)-a.At(j, i)) > tol {
				ok = false
			}
			return ok
		})
		if !ok {
			return false
		}
	}
	return true
}

// add accumulates s into (u, v) and (v, u). On the diagonal both halves land
// in the same cell, which therefore receives 2s.
func (a *Accumulator) add(u, v int, s float64) {
	su, sv := u%len(a.locks), v%len(a.locks)
	if su > sv {
		su, sv = sv, su
	}
	a.locks[su].Lock()
	if sv != su {
		a.locks[sv].Lock()
	}

	if a.dense != nil {
		delta := s
		if u == v {
			delta = 2 * s
		}
		a.dense.SetSym(u, v, a.dense.At(u, v)+delta)
	} else {
		old, _ := a.sparse[u].Get(v)
		a.sparse[u].Set(v, old+s)
		old, _ = a.sparse[v].Get(u)
		a.sparse[v].Set(u, old+s)
	}
	a.touched[u].Insert(v)
	a.touched[v].Insert(u)

	if sv != su {
		a.locks[sv].Unlock()
	}
	a.locks[su].Unlock()
}
