// SPDX-License-Identifier: MIT

// Command humap builds hierarchical embeddings from CSV data.
//
//	humap synth --points 2000 --clusters 5 > blobs.csv
//	humap fit --input blobs.csv --label-column 2 --out-csv out/
//	humap fit --config humap.yaml --input data.csv --out-sqlite runs.db
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
