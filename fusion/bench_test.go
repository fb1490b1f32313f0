// SPDX-License-Identifier: MIT

package fusion_test

import (
	"testing"

	"github.com/katalvlaran/humap/fusion"
)

// BenchmarkSparse_Ring20k fuses every fourth point of a 20k ring with k=15.
func BenchmarkSparse_Ring20k(b *testing.B) {
	landmarks := make([]int, 0, 5000)
	for i := 0; i < 20_000; i += 4 {
		landmarks = append(landmarks, i)
	}
	in := ringInput(b, 20_000, 15, landmarks)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := fusion.Sparse(in, fusion.WithWorkers(4)); err != nil {
			b.Fatal(err)
		}
	}
}
