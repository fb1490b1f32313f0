// SPDX-License-Identifier: MIT

package layout

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/humap/graph"
	"github.com/katalvlaran/humap/rng"
)

// SGD is the default Optimizer: UMAP's Euclidean layout optimisation with
// both edge endpoints moving on attraction.
//
// In epoch t every edge e with next[e] <= t is sampled: its endpoints attract,
// then the head is pushed away from int((t − nextNeg[e]) / (eps[e]/rate))
// uniformly drawn points. Every gradient component is clipped to [-4, 4] and
// the learning rate decays as alpha·(1 − t/n_epochs).
//
// With Workers > 1 edges are split across workers; each worker computes its
// moves against the positions at the start of the epoch into a private
// buffer, and buffers are summed after all workers finish.
type SGD struct {
	A, B               float64
	LearningRate       float64
	Repulsion          float64
	NegativeSampleRate int
	Workers            int
}

// NewSGD builds an SGD with the kernel fitted to spread and minDist.
func NewSGD(o Options) (*SGD, error) {
	a, b, err := FitAB(o.Spread, o.MinDist)
	if err != nil {
		return nil, fmt.Errorf("NewSGD: %w", err)
	}
	return &SGD{
		A:                  a,
		B:                  b,
		LearningRate:       o.LearningRate,
		Repulsion:          o.Repulsion,
		NegativeSampleRate: o.NegativeSampleRate,
		Workers:            o.Workers,
	}, nil
}

// schedule is the per-edge sampling state.
type schedule struct {
	eps, epsNeg   []float64
	next, nextNeg []float64
}

func newSchedule(eps []float64, rate int) *schedule {
	s := &schedule{
		eps:     eps,
		epsNeg:  make([]float64, len(eps)),
		next:    append([]float64(nil), eps...),
		nextNeg: make([]float64, len(eps)),
	}
	for e, v := range eps {
		if rate > 0 {
			s.epsNeg[e] = v / float64(rate)
		} else {
			s.epsNeg[e] = math.Inf(1)
		}
		s.nextNeg[e] = s.epsNeg[e]
	}
	return s
}

// Optimize implements Optimizer.
func (s *SGD) Optimize(ctx context.Context, init [][]float64, edges graph.Triplets, eps []float64, nEpochs int, seed int64) ([][]float64, error) {
	// 1. Validate
	n := len(init)
	if len(edges.Rows) != len(eps) || len(edges.Cols) != len(eps) || len(edges.Vals) != len(eps) {
		return nil, fmt.Errorf("SGD.Optimize: %d edges, %d schedule entries: %w", len(edges.Rows), len(eps), ErrLengthMismatch)
	}
	for e := range eps {
		if edges.Rows[e] < 0 || edges.Rows[e] >= n || edges.Cols[e] < 0 || edges.Cols[e] >= n {
			return nil, fmt.Errorf("SGD.Optimize: edge %d (%d,%d) with %d points: %w", e, edges.Rows[e], edges.Cols[e], n, ErrSizeMismatch)
		}
		if !(eps[e] > 0) {
			return nil, fmt.Errorf("SGD.Optimize: edge %d samples every %v epochs: %w", e, eps[e], ErrBadSchedule)
		}
	}

	emb := cloneEmbedding(init)
	if n == 0 || nEpochs <= 0 {
		return emb, nil
	}
	sched := newSchedule(eps, s.NegativeSampleRate)
	src := rng.New(seed)

	// 2. Epochs
	workers := max(s.Workers, 1)
	var streams []*workerState
	if workers > 1 {
		streams = make([]*workerState, workers)
		for w := range streams {
			streams[w] = &workerState{src: rng.Derive(src, uint64(w)), delta: newDelta(n, len(emb[0]))}
		}
	}
	for epoch := 0; epoch < nEpochs; epoch++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		alpha := s.LearningRate * (1 - float64(epoch)/float64(nEpochs))
		if workers == 1 {
			s.epochRange(emb, emb, edges, sched, epoch, alpha, src, 0, len(eps))
			continue
		}
		if err := s.epochParallel(ctx, emb, edges, sched, epoch, alpha, streams); err != nil {
			return nil, err
		}
	}
	return emb, nil
}

// workerState is the private state of one buffered worker.
type workerState struct {
	src   rng.Source
	delta [][]float64
}

func newDelta(n, dim int) [][]float64 {
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, dim)
	}
	return d
}

// epochParallel runs one epoch with per-worker delta buffers.
func (s *SGD) epochParallel(ctx context.Context, emb [][]float64, edges graph.Triplets, sched *schedule, epoch int, alpha float64, streams []*workerState) error {
	nEdges := len(sched.eps)
	chunk := (nEdges + len(streams) - 1) / len(streams)
	if chunk == 0 {
		return nil
	}
	g, _ := errgroup.WithContext(ctx)
	for w, st := range streams {
		lo := w * chunk
		if lo >= nEdges {
			break
		}
		hi := min(lo+chunk, nEdges)
		g.Go(func() error {
			for _, row := range st.delta {
				clear(row)
			}
			s.epochRange(emb, st.delta, edges, sched, epoch, alpha, st.src, lo, hi)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// barrier passed: apply buffers in worker order
	for w, st := range streams {
		if w*chunk >= nEdges {
			break
		}
		for i, row := range st.delta {
			for d, v := range row {
				emb[i][d] += v
			}
		}
	}
	return nil
}

// epochRange processes edges [lo, hi) of one epoch. Positions are read from
// pos and moves are added to out; sequential mode passes the embedding as
// both, buffered mode passes the shared embedding and a private delta.
func (s *SGD) epochRange(pos, out [][]float64, edges graph.Triplets, sched *schedule, epoch int, alpha float64, src rng.Source, lo, hi int) {
	n := len(pos)
	t := float64(epoch)
	twoAB := 2 * s.A * s.B
	var (
		e, j, k, p, d, nNeg int
		current, other      []float64
		distSq, coeff, grad float64
	)
	for e = lo; e < hi; e++ {
		if sched.next[e] > t {
			continue
		}
		j, k = edges.Rows[e], edges.Cols[e]
		current, other = pos[j], pos[k]

		// 1. Attraction
		distSq = sqDist(current, other)
		coeff = 0
		if distSq > 0 {
			coeff = -twoAB * math.Pow(distSq, s.B-1) / (s.A*math.Pow(distSq, s.B) + 1)
		}
		for d = range current {
			grad = clip(coeff * (current[d] - other[d]))
			out[j][d] += grad * alpha
			out[k][d] -= grad * alpha
		}
		sched.next[e] += sched.eps[e]

		// 2. Repulsion
		if math.IsInf(sched.epsNeg[e], 1) {
			continue
		}
		nNeg = int((t - sched.nextNeg[e]) / sched.epsNeg[e])
		for p = 0; p < nNeg; p++ {
			k = src.Intn(n)
			if k == j {
				continue
			}
			other = pos[k]
			distSq = sqDist(current, other)
			coeff = 0
			if distSq > 0 {
				coeff = 2 * s.Repulsion * s.B / ((0.001 + distSq) * (s.A*math.Pow(distSq, s.B) + 1))
			}
			for d = range current {
				if coeff > 0 {
					grad = clip(coeff * (current[d] - other[d]))
				} else {
					grad = gradClip
				}
				out[j][d] += grad * alpha
			}
		}
		if nNeg > 0 {
			sched.nextNeg[e] += float64(nNeg) * sched.epsNeg[e]
		}
	}
}

// sqDist is the squared Euclidean distance.
func sqDist(x, y []float64) float64 {
	sum := 0.0
	for d := range x {
		diff := x[d] - y[d]
		sum += diff * diff
	}
	return sum
}

// clip bounds v to [-gradClip, gradClip].
func clip(v float64) float64 {
	return math.Max(-gradClip, math.Min(gradClip, v))
}
