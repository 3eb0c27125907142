// Package main provides flatvec-fetch, a standalone tool that ingests
// vectors stored as BLOB columns in a SQLite table into a fresh VecDb
// file.
//
// Usage:
//
//	DB_CONNECTION_STRING=./vectors.db DB_TABLE=embeddings flatvec-fetch
//
// Both environment variables are required; per spec.md §6 the core engine
// and the `flatvec` CLI never read environment for engine behavior, but
// this ingestion tool is the one place the original implementation's
// environment-driven configuration is carried forward unchanged.
package main

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"github.com/sunsided/flatvec/internal/output"
	"github.com/sunsided/flatvec/internal/quantity"
	"github.com/sunsided/flatvec/internal/vecdb"
)

// fetchLimit caps how many rows are ingested in one run, matching the
// original implementation's hardcoded LIMIT.
const fetchLimit = 1_000_000

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "flatvec-fetch",
		Short: "Ingest vectors from a SQLite table into a VecDb",
		Long: `flatvec-fetch reads up to 1,000,000 rows of DB_TABLE's BLOB "vector" column
(little-endian float32s, one row per vector) from the SQLite database at
DB_CONNECTION_STRING and writes them out as a fresh VecDb file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "vectors.bin", "Destination VecDb path")

	return cmd
}

func runFetch(cmd *cobra.Command, outputPath string) error {
	connStr := os.Getenv("DB_CONNECTION_STRING")
	if connStr == "" {
		return fmt.Errorf("DB_CONNECTION_STRING environment variable was not set; expected a path to a SQLite database")
	}
	table := os.Getenv("DB_TABLE")
	if table == "" {
		return fmt.Errorf("DB_TABLE environment variable was not set")
	}

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	numVectors, err := countRows(db, table)
	if err != nil {
		return fmt.Errorf("counting rows in %s: %w", table, err)
	}
	if numVectors > fetchLimit {
		numVectors = fetchLimit
	}

	numDims, err := firstRowDimensions(db, table)
	if err != nil {
		return fmt.Errorf("determining dimensionality from %s: %w", table, err)
	}

	out := output.New(cmd.OutOrStdout())
	out.Statusf("", "Fetching %d vectors (%d dims) from %s", numVectors, numDims, table)

	w, err := vecdb.OpenWrite(outputPath, quantity.NumVectors(numVectors), quantity.NumDimensions(numDims))
	if err != nil {
		return fmt.Errorf("creating VecDb at %s: %w", outputPath, err)
	}
	defer w.Close()

	//nolint:gosec // table name comes from a trusted operator-supplied env var, not user input
	query := fmt.Sprintf("SELECT `vector` FROM `%s` ORDER BY `internal_id` ASC LIMIT ?", table)
	rows, err := db.Query(query, numVectors)
	if err != nil {
		return fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close()

	vec := make([]float32, numDims)
	fetched := 0
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return fmt.Errorf("scanning row %d: %w", fetched, err)
		}
		if err := decodeVector(blob, vec); err != nil {
			return fmt.Errorf("row %d: %w", fetched, err)
		}
		if err := w.WriteVec(vec); err != nil {
			return fmt.Errorf("writing row %d: %w", fetched, err)
		}
		fetched++
		out.Progress(fetched, numVectors, "")
	}
	out.ProgressDone()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating rows: %w", err)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing VecDb: %w", err)
	}

	out.Successf("wrote %d vectors to %s", fetched, outputPath)
	return nil
}

func countRows(db *sql.DB, table string) (int, error) {
	//nolint:gosec // table name comes from a trusted operator-supplied env var, not user input
	query := fmt.Sprintf("SELECT COUNT(*) FROM `%s`", table)
	var count int
	if err := db.QueryRow(query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func firstRowDimensions(db *sql.DB, table string) (int, error) {
	//nolint:gosec // table name comes from a trusted operator-supplied env var, not user input
	query := fmt.Sprintf("SELECT `vector` FROM `%s` LIMIT 1", table)
	var blob []byte
	if err := db.QueryRow(query).Scan(&blob); err != nil {
		return 0, err
	}
	if len(blob)%4 != 0 {
		return 0, fmt.Errorf("vector blob length %d is not a multiple of 4", len(blob))
	}
	return len(blob) / 4, nil
}

// decodeVector unpacks a little-endian float32 BLOB into dst, which must
// already have the expected length.
func decodeVector(blob []byte, dst []float32) error {
	if len(blob) != 4*len(dst) {
		return fmt.Errorf("expected %d bytes, got %d", 4*len(dst), len(blob))
	}
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4 : i*4+4]))
	}
	return nil
}
