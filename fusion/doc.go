// SPDX-License-Identifier: MIT

// Package fusion builds the similarity graph of a new level's landmarks from
// the neighbourhoods they share in the parent level.
//
// What:
//
//   - Fuse: every landmark i walks its parent neighbours v (positions 1..k-1).
//     Each v keeps a list of the landmarks that reached it, together with the
//     membership graph(i, v) and the kNN distance d(i, v). When a second or
//     later landmark n reaches v, every earlier contributor c is paired with it:
//
//     s = min(m_c·d_c, m_n·d_n) / max(m_c·d_c, m_n·d_n) / (k-1)
//
//     and s is added to cells (c, n) and (n, c) of a landmark × landmark
//     Accumulator.
//   - CreateSparse: compacts the Accumulator into dissimilarity triplets, one
//     or more per row: touched nonzero cells as 1-s, structural filler 1 for
//     zero cells among the first min(k+5, m) columns, and a 0 self-loop when
//     the diagonal was not emitted.
//
// Concurrency:
//
//   - The landmark loop runs on Workers goroutines (errgroup).
//   - Contributor lists are guarded by sharded mutexes keyed by parent point.
//   - Accumulator rows are guarded by sharded mutexes keyed by landmark row;
//     a cell update locks both row shards in ascending shard order.
//   - With Workers > 1 the order in which contributions are summed may vary,
//     so results can differ in the last bits between runs. Workers == 1 is
//     bit-for-bit reproducible.
//
// Storage:
//
//   - m <= DenseLimit: gonum mat.SymDense, so (u,v) and (v,u) share a cell.
//   - m > DenseLimit: one ordered btree.Map per row, both halves written.
//   - Touched cells per row: btree.Set, giving ascending column order.
//
// Complexity:
//
//   - Fuse: O(m·k·c) cell updates, c = contributors per parent point.
//   - CreateSparse: O(m·(t + k)) with t touched cells per row.
package fusion
