// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package taxonomy

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Suggester proposes scientific names for a partial query.
type Suggester interface {
	Suggest(ctx context.Context, query string, limit int) ([]string, error)
}

// suggestCandidates bounds how many prefix matches the Store ranks.
const suggestCandidates = 500

// rankNames orders candidates by fuzzy distance to query and keeps limit.
func rankNames(query string, candidates []string, limit int) []string {
	ranks := fuzzy.RankFindNormalizedFold(query, candidates)
	sort.Stable(ranks)

	out := make([]string, 0, min(limit, len(ranks)))
	for _, r := range ranks {
		if len(out) == limit {
			break
		}
		out = append(out, r.Target)
	}
	return out
}

// Suggest implements Suggester over every known name.
func (m *MemResolver) Suggest(ctx context.Context, query string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return nil, nil
	}
	return rankNames(query, m.Names(), limit), nil
}

// Suggest implements Suggester. Candidates share the query's case-folded
// prefix and are ranked by fuzzy distance.
func (s *Store) Suggest(ctx context.Context, query string, limit int) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return nil, nil
	}
	prefix := foldName(query)

	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM names WHERE name_fold >= ? AND name_fold < ? ORDER BY length(name), name LIMIT ?`,
		prefix, prefix+"\U0010FFFF", suggestCandidates)
	if err != nil {
		return nil, fmt.Errorf("querying name candidates: %w", err)
	}
	defer rows.Close()

	var candidates []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning name candidate: %w", err)
		}
		candidates = append(candidates, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading name candidates: %w", err)
	}
	return rankNames(query, candidates, limit), nil
}
