package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// readVectorRows parses a newline-delimited text file of whitespace-
// separated float32 rows: one vector per line. Used both by `query` (a
// single-row query vector file) and `build` (the full --from corpus).
func readVectorRows(path string) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var rows [][]float32
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		row := make([]float32, len(fields))
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: invalid float %q: %w", path, lineNo, field, err)
			}
			row[i] = float32(v)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}

// readSingleVector reads exactly one vector row from path, failing if the
// file holds zero or more than one row.
func readSingleVector(path string) ([]float32, error) {
	rows, err := readVectorRows(path)
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, fmt.Errorf("%s: no vector rows found", path)
	case 1:
		return rows[0], nil
	default:
		return nil, fmt.Errorf("%s: expected exactly one vector row, got %d", path, len(rows))
	}
}
