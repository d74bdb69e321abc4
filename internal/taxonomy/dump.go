// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package taxonomy

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Taxdump file names.
const (
	NodesFile  = "nodes.dmp"
	NamesFile  = "names.dmp"
	MergedFile = "merged.dmp"
)

const scientificName = "scientific name"

// ImportSummary holds counts from a taxdump import.
type ImportSummary struct {
	Nodes  int
	Names  int
	Merged int
}

// Import replaces the database contents with the taxdump files in dir.
// nodes.dmp and names.dmp are required; merged.dmp is optional. Only
// scientific names are kept. The import runs in a single transaction.
func (s *Store) Import(ctx context.Context, dir string, w io.Writer) (ImportSummary, error) {
	var summary ImportSummary

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"nodes", "names", "merged"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return summary, fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	summary.Nodes, err = importFile(ctx, tx, filepath.Join(dir, NodesFile),
		`INSERT INTO nodes (tax_id, parent_id, rank) VALUES (?, ?, ?)`,
		func(f []string) ([]any, bool) {
			if len(f) < 3 {
				return nil, false
			}
			return []any{f[0], f[1], f[2]}, true
		})
	if err != nil {
		return summary, err
	}
	fmt.Fprintf(w, "nodes   %d\n", summary.Nodes)

	summary.Names, err = importFile(ctx, tx, filepath.Join(dir, NamesFile),
		`INSERT OR REPLACE INTO names (tax_id, name, name_fold) VALUES (?, ?, ?)`,
		func(f []string) ([]any, bool) {
			if len(f) < 4 || f[3] != scientificName {
				return nil, false
			}
			return []any{f[0], f[1], foldName(f[1])}, true
		})
	if err != nil {
		return summary, err
	}
	fmt.Fprintf(w, "names   %d\n", summary.Names)

	summary.Merged, err = importFile(ctx, tx, filepath.Join(dir, MergedFile),
		`INSERT OR REPLACE INTO merged (old_id, new_id) VALUES (?, ?)`,
		func(f []string) ([]any, bool) {
			if len(f) < 2 {
				return nil, false
			}
			return []any{f[0], f[1]}, true
		})
	switch {
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintf(w, "merged  skipped (no %s)\n", MergedFile)
	case err != nil:
		return summary, err
	default:
		fmt.Fprintf(w, "merged  %d\n", summary.Merged)
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing import: %w", err)
	}
	return summary, nil
}

// importFile streams one .dmp file into stmtText. row maps split fields to
// statement arguments and reports whether the line should be kept.
func importFile(ctx context.Context, tx *sql.Tx, path, stmtText string, row func([]string) ([]any, bool)) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	stmt, err := tx.PrepareContext(ctx, stmtText)
	if err != nil {
		return 0, fmt.Errorf("preparing insert for %s: %w", filepath.Base(path), err)
	}
	defer stmt.Close()

	n := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; scanner.Scan(); line++ {
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return n, err
			}
		}
		args, ok := row(SplitDumpLine(scanner.Text()))
		if !ok {
			continue
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return n, fmt.Errorf("%s line %d: %w", filepath.Base(path), line, err)
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return n, nil
}

// SplitDumpLine splits a taxdump line ("a\t|\tb\t|\n") into trimmed fields.
func SplitDumpLine(line string) []string {
	line = strings.TrimSuffix(strings.TrimRight(line, "\r\n"), "\t|")
	if line == "" {
		return nil
	}
	fields := strings.Split(line, "\t|\t")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}
