// SPDX-License-Identifier: MIT

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// NoLabel disables the label column of ReadMatrix and WriteMatrix.
const NoLabel = -1

// ReadMatrix parses a numeric CSV into rows. With labelCol >= 0 that column
// is parsed as an integer label and removed from the row; otherwise labels
// is nil. header skips the first record.
func ReadMatrix(r io.Reader, labelCol int, header bool) (X [][]float64, labels []int, err error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("ReadMatrix: %w", err)
		}
		line++
		if header && line == 1 {
			continue
		}
		if labelCol >= len(rec) {
			return nil, nil, fmt.Errorf("ReadMatrix: line %d has no column %d: %w", line, labelCol, ErrShape)
		}
		row := make([]float64, 0, len(rec))
		for c, field := range rec {
			if c == labelCol {
				y, err := strconv.Atoi(field)
				if err != nil {
					return nil, nil, fmt.Errorf("ReadMatrix: line %d label: %w", line, err)
				}
				labels = append(labels, y)
				continue
			}
			x, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("ReadMatrix: line %d column %d: %w", line, c, err)
			}
			row = append(row, x)
		}
		X = append(X, row)
	}
	return X, labels, nil
}

// WriteMatrix writes rows as CSV, appending labels[i] as the last column of
// row i when labels is non-nil.
func WriteMatrix(w io.Writer, X [][]float64, labels []int) error {
	if labels != nil && len(labels) != len(X) {
		return fmt.Errorf("WriteMatrix: %d labels for %d rows: %w", len(labels), len(X), ErrShape)
	}
	cw := csv.NewWriter(w)
	for i, row := range X {
		rec := make([]string, 0, len(row)+1)
		for _, x := range row {
			rec = append(rec, strconv.FormatFloat(x, 'g', -1, 64))
		}
		if labels != nil {
			rec = append(rec, strconv.Itoa(labels[i]))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("WriteMatrix: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteMatrix: %w", err)
	}
	return nil
}
