// SPDX-License-Identifier: MIT

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// WriteCSV writes one level with the header point,parent,label,x0..x{d-1}.
func WriteCSV(w io.Writer, lv Level) error {
	if err := lv.Validate(); err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}
	cw := csv.NewWriter(w)
	dim := lv.Dim()
	record := make([]string, 3+dim)
	record[0], record[1], record[2] = "point", "parent", "label"
	for d := 0; d < dim; d++ {
		record[3+d] = "x" + strconv.Itoa(d)
	}
	if err := cw.Write(record); err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}
	for i, row := range lv.Embedding {
		record[0] = strconv.Itoa(i)
		record[1] = strconv.Itoa(lv.parent(i))
		record[2] = strconv.Itoa(lv.label(i))
		for d, x := range row {
			record[3+d] = strconv.FormatFloat(x, 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("WriteCSV: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}
	return nil
}

// WriteCSVDir writes every level to dir/level_<l>.csv, creating dir, and
// returns the written paths.
func WriteCSVDir(dir string, levels []Level) ([]string, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("WriteCSVDir: %w", ErrEmpty)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("WriteCSVDir: %w", err)
	}
	paths := make([]string, 0, len(levels))
	for _, lv := range levels {
		path := filepath.Join(dir, fmt.Sprintf("level_%d.csv", lv.Index))
		if err := writeCSVFile(path, lv); err != nil {
			return paths, fmt.Errorf("WriteCSVDir: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCSVFile(path string, lv Level) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteCSV(f, lv)
}

// ReadCSV parses a level written by WriteCSV. index is stored as Level.Index.
func ReadCSV(r io.Reader, index int) (Level, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return Level{}, fmt.Errorf("ReadCSV: %w", err)
	}
	if len(records) == 0 || len(records[0]) < 3 {
		return Level{}, fmt.Errorf("ReadCSV: missing header: %w", ErrShape)
	}
	dim := len(records[0]) - 3
	lv := Level{Index: index}
	hasParent := false
	for _, rec := range records[1:] {
		parent, err := strconv.Atoi(rec[1])
		if err != nil {
			return Level{}, fmt.Errorf("ReadCSV: parent %q: %w", rec[1], err)
		}
		label, err := strconv.Atoi(rec[2])
		if err != nil {
			return Level{}, fmt.Errorf("ReadCSV: label %q: %w", rec[2], err)
		}
		row := make([]float64, dim)
		for d := range row {
			if row[d], err = strconv.ParseFloat(rec[3+d], 64); err != nil {
				return Level{}, fmt.Errorf("ReadCSV: coordinate %q: %w", rec[3+d], err)
			}
		}
		hasParent = hasParent || parent >= 0
		lv.Parents = append(lv.Parents, parent)
		lv.Labels = append(lv.Labels, label)
		lv.Embedding = append(lv.Embedding, row)
	}
	if !hasParent {
		lv.Parents = nil
	}
	return lv, nil
}
