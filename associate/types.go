// SPDX-License-Identifier: MIT

package associate

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrAssociationFailure indicates a point with no reachable landmark.
	ErrAssociationFailure = errors.New("associate: no reachable landmark")

	// ErrAlreadyResolved indicates a second assignment to a resolved point.
	ErrAlreadyResolved = errors.New("associate: point already resolved")

	// ErrOutOfRange indicates a point index outside the metadata.
	ErrOutOfRange = errors.New("associate: point out of range")

	// ErrInvalidInput indicates inconsistent graph, neighbours, sigmas or landmarks.
	ErrInvalidInput = errors.New("associate: invalid input")
)

// FailureError reports the level and point whose traversal found no landmark.
type FailureError struct {
	Level int
	Point int
}

// Error implements error.
func (e *FailureError) Error() string {
	return fmt.Sprintf("associate: level %d point %d: %v", e.Level, e.Point, ErrAssociationFailure)
}

// Unwrap lets errors.Is match ErrAssociationFailure.
func (e *FailureError) Unwrap() error { return ErrAssociationFailure }

// Association is the ownership record of one point. Owner and Strength are
// meaningful only when Resolved is true.
type Association struct {
	Index    int
	Owner    int
	Strength float64
	Resolved bool
}

// Metadata holds the associations of every point of a level.
// Each point is resolved at most once.
type Metadata struct {
	assoc []Association
}

// NewMetadata returns n unresolved associations.
func NewMetadata(n int) *Metadata {
	m := &Metadata{assoc: make([]Association, n)}
	for i := range m.assoc {
		m.assoc[i].Index = i
	}
	return m
}

// Len returns the number of points.
func (m *Metadata) Len() int { return len(m.assoc) }

// Get returns the association of point i.
func (m *Metadata) Get(i int) (Association, error) {
	if i < 0 || i >= len(m.assoc) {
		return Association{}, fmt.Errorf("Metadata.Get(%d): %w", i, ErrOutOfRange)
	}
	return m.assoc[i], nil
}

// Resolve assigns owner and strength to point i.
// Returns ErrAlreadyResolved if i already has an owner.
func (m *Metadata) Resolve(i, owner int, strength float64) error {
	if i < 0 || i >= len(m.assoc) {
		return fmt.Errorf("Metadata.Resolve(%d): %w", i, ErrOutOfRange)
	}
	if m.assoc[i].Resolved {
		return fmt.Errorf("Metadata.Resolve(%d): owner %d: %w", i, m.assoc[i].Owner, ErrAlreadyResolved)
	}
	m.assoc[i] = Association{Index: i, Owner: owner, Strength: strength, Resolved: true}
	return nil
}

// Resolved reports whether point i has an owner.
func (m *Metadata) Resolved(i int) bool {
	return i >= 0 && i < len(m.assoc) && m.assoc[i].Resolved
}

// Unresolved returns the points without an owner, ascending.
func (m *Metadata) Unresolved() []int {
	var out []int
	for i := range m.assoc {
		if !m.assoc[i].Resolved {
			out = append(out, i)
		}
	}
	return out
}

// All returns a copy of every association.
func (m *Metadata) All() []Association {
	return append([]Association(nil), m.assoc...)
}

// Clone returns a deep copy.
func (m *Metadata) Clone() *Metadata {
	return &Metadata{assoc: m.All()}
}

// Option configures Associate.
type Option func(*Options)

// Options holds traversal parameters.
type Options struct {
	// Ctx allows cancellation; defaults to context.Background().
	Ctx context.Context

	// Workers bounds the goroutines of both passes.
	Workers int

	// MaxDepth limits the traversal stack; 0 means unlimited.
	MaxDepth int
}

// DefaultOptions returns Background context, one worker and no depth limit.
func DefaultOptions() Options {
	return Options{
		Ctx:      context.Background(),
		Workers:  1,
		MaxDepth: 0,
	}
}

// WithContext sets the cancellation context. A nil ctx is ignored.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		if ctx != nil {
			o.Ctx = ctx
		}
	}
}

// WithWorkers sets the worker bound. Panics if n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(fmt.Sprintf("associate: WithWorkers(%d): need at least one worker", n))
	}
	return func(o *Options) { o.Workers = n }
}

// WithMaxDepth limits the traversal stack depth. Panics if d < 0.
func WithMaxDepth(d int) Option {
	if d < 0 {
		panic(fmt.Sprintf("associate: WithMaxDepth(%d): must be non-negative", d))
	}
	return func(o *Options) { o.MaxDepth = d }
}
