// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package taxonomy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/taxoburst/pkg/types"
)

// Store is a Resolver backed by an SQLite copy of the NCBI taxonomy.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the taxonomy database at path and creates
// the schema if it does not exist.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS nodes (
			tax_id TEXT PRIMARY KEY,
			parent_id TEXT NOT NULL,
			rank TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS names (
			tax_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			name_fold TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_names_name ON names(name)`,
		`CREATE INDEX IF NOT EXISTS idx_names_fold ON names(name_fold)`,
		`CREATE TABLE IF NOT EXISTS merged (
			old_id TEXT PRIMARY KEY,
			new_id TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Count returns the number of taxa in the database.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM nodes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting taxa: %w", err)
	}
	return n, nil
}

const lineageQuery = `
WITH RECURSIVE lin(tax_id, parent_id, rank, depth) AS (
	SELECT tax_id, parent_id, rank, 0 FROM nodes WHERE tax_id = ?
	UNION ALL
	SELECT n.tax_id, n.parent_id, n.rank, lin.depth + 1
	FROM nodes n JOIN lin ON n.tax_id = lin.parent_id
	WHERE lin.tax_id != '1' AND lin.depth < ?
)
SELECT lin.tax_id, lin.parent_id, lin.rank, COALESCE(nm.name, '')
FROM lin LEFT JOIN names nm ON nm.tax_id = lin.tax_id
ORDER BY lin.depth`

type storedNode struct {
	parent, name, rank string
}

// Resolve implements Resolver. Retired IDs listed in merged.dmp resolve
// to their replacement taxon.
func (s *Store) Resolve(ctx context.Context, id string) (types.Taxon, error) {
	if id == types.RootTaxID {
		return buildTaxon(id, nil)
	}

	var newID string
	err := s.db.QueryRowContext(ctx, `SELECT new_id FROM merged WHERE old_id = ?`, id).Scan(&newID)
	switch {
	case err == nil:
		id = newID
	case !errors.Is(err, sql.ErrNoRows):
		return types.Taxon{}, fmt.Errorf("checking merged IDs: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, lineageQuery, id, maxDepth)
	if err != nil {
		return types.Taxon{}, fmt.Errorf("querying lineage of %s: %w", id, err)
	}
	defer rows.Close()

	nodes := make(map[string]storedNode)
	for rows.Next() {
		var taxID string
		var n storedNode
		if err := rows.Scan(&taxID, &n.parent, &n.rank, &n.name); err != nil {
			return types.Taxon{}, fmt.Errorf("scanning lineage row: %w", err)
		}
		nodes[taxID] = n
	}
	if err := rows.Err(); err != nil {
		return types.Taxon{}, fmt.Errorf("reading lineage of %s: %w", id, err)
	}

	return buildTaxon(id, func(cur string) (string, string, string, bool) {
		n, ok := nodes[cur]
		return n.parent, n.name, n.rank, ok
	})
}

// LookupID implements Resolver. An exact scientific-name match wins over
// a case-insensitive one.
func (s *Store) LookupID(ctx context.Context, name string) (string, error) {
	ids, err := s.idsWhere(ctx, `SELECT tax_id FROM names WHERE name = ?`, name)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		ids, err = s.idsWhere(ctx, `SELECT tax_id FROM names WHERE name_fold = ?`, foldName(name))
		if err != nil {
			return "", err
		}
	}
	return pickOne(name, ids)
}

func (s *Store) idsWhere(ctx context.Context, query string, arg string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("looking up name: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning name row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
