// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate builds a count-annotated taxonomic tree from gene
// classification records.
//
// A run has four stages:
//
//  1. collectRaw resolves every record and groups records by taxon.
//  2. normalize folds non-canonical ranks into the nearest canonical
//     ancestor and synthesizes canonical ancestors that were never observed.
//  3. Dedup sorts the canonical lineages and drops duplicate paths.
//  4. propagate computes subtree totals, child links and depth indices.
//
// Each run owns its node map; nothing is shared between runs except the
// read-only taxonomy.Resolver.
package aggregate

import (
	"context"
	"errors"
	"slices"

	"go.uber.org/zap"

	"github.com/pdiddy/taxoburst/internal/taxonomy"
	"github.com/pdiddy/taxoburst/pkg/types"
)

// ErrInconsistent reports an internal invariant violation.
var ErrInconsistent = errors.New("inconsistent aggregation state")

// Options describes the optional columns of the input table.
type Options struct {
	ScoresEnabled  bool
	HeadersEnabled bool

	// Logger receives warnings about ambiguous input. Nil discards them.
	Logger *zap.Logger
}

// optional reports whether nodes carry score and header lists. Both lists
// are kept whenever either column is present so they stay index-aligned
// with gene names.
func (o Options) optional() bool {
	return o.ScoresEnabled || o.HeadersEnabled
}

// Run aggregates records into a Result. Any resolver failure aborts the
// run; no partial result is returned. ctx is checked while resolving and
// between stages.
func Run(ctx context.Context, r taxonomy.Resolver, records []types.Record, opts Options) (*types.Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	raw, err := collectRaw(ctx, r, records, opts.optional(), logger)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	nodes, lineages, err := normalize(raw, opts.optional())
	if err != nil {
		return nil, err
	}

	lineages = Dedup(lineages)
	if err := propagate(nodes, lineages); err != nil {
		return nil, err
	}

	return &types.Result{
		Lineages:       lineages,
		Nodes:          nodes,
		Ranks:          slices.Clone(types.CanonicalRanks),
		ScoresEnabled:  opts.ScoresEnabled,
		HeadersEnabled: opts.HeadersEnabled,
	}, nil
}
