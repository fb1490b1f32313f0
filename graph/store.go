// SPDX-License-Identifier: MIT

package graph

import (
	"fmt"
	"sync"
)

// Fit is what a graph builder returns for one dataset: the symmetric
// membership graph, one sigma per point and the k nearest neighbours.
type Fit struct {
	Graph     *Graph
	Sigmas    []float64
	Neighbors *Neighbors
}

// Validate checks that graph, sigmas and neighbours all describe n points.
func (f *Fit) Validate(n int) error {
	if f == nil || f.Graph == nil || f.Neighbors == nil {
		return fmt.Errorf("Fit.Validate: %w", ErrNilLevel)
	}
	if f.Graph.N() != n || len(f.Sigmas) != n {
		return fmt.Errorf("Fit.Validate: graph=%d sigmas=%d want %d: %w",
			f.Graph.N(), len(f.Sigmas), n, ErrLengthMismatch)
	}
	if err := f.Neighbors.Validate(n); err != nil {
		return fmt.Errorf("Fit.Validate: %w", err)
	}
	return nil
}

// Level is one step of the hierarchy.
//   - Landmarks maps every point of this level to its index in the parent
//     level (nil for level 0).
//   - Labels are the caller's labels projected onto this level's points.
type Level struct {
	Index     int
	Dataset   *Dataset
	Graph     *Graph
	Sigmas    []float64
	Neighbors *Neighbors
	Landmarks []int
	Labels    []int
}

// N returns the number of points of the level.
func (l *Level) N() int { return l.Dataset.Len() }

// Store is the ordered list of levels of one hierarchy, finest first.
// It is safe for concurrent readers; Append is serialised.
type Store struct {
	mu     sync.RWMutex
	levels []*Level
}

// NewStore returns an empty Store with room for capHint levels.
func NewStore(capHint int) *Store {
	if capHint < 0 {
		capHint = 0
	}
	return &Store{levels: make([]*Level, 0, capHint)}
}

// Append adds the next level. Its Index is set to its position.
func (s *Store) Append(l *Level) error {
	if l == nil || l.Graph == nil || l.Dataset == nil {
		return fmt.Errorf("Store.Append: %w", ErrNilLevel)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l.Index = len(s.levels)
	s.levels = append(s.levels, l)
	return nil
}

// Len returns the number of stored levels.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.levels)
}

// Level returns level i, or ErrLevelOutOfRange.
func (s *Store) Level(i int) (*Level, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.levels) {
		return nil, fmt.Errorf("Store.Level(%d): %w", i, ErrLevelOutOfRange)
	}
	return s.levels[i], nil
}

// Last returns the coarsest level, or nil when the store is empty.
func (s *Store) Last() *Level {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.levels) == 0 {
		return nil
	}
	return s.levels[len(s.levels)-1]
}
