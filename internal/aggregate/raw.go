// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/taxoburst/internal/taxonomy"
	"github.com/pdiddy/taxoburst/pkg/types"
)

// ctxCheckInterval is how many records are resolved between context checks.
const ctxCheckInterval = 1024

// rawSet is the output of the raw aggregation stage.
type rawSet struct {
	nodes    map[string]*types.Node
	lineages []types.Lineage

	// lineageOf maps a node key to its entry in lineages.
	lineageOf map[string]int
}

// newNode returns an empty node with every list initialized, so JSON
// output carries [] rather than null.
func newNode(taxID, name, rank string, optional bool) *types.Node {
	n := &types.Node{
		TaxID:     taxID,
		Name:      name,
		Rank:      rank,
		GeneNames: []string{},
		Children:  []string{},
	}
	n.Breakdown = []types.BreakdownEntry{{Label: n.Key(), Cumulative: -1}}
	if optional {
		n.Scores = []*float64{}
		n.Headers = []*string{}
	}
	return n
}

// addRecord attributes one record to n and advances its own breakdown entry.
func addRecord(n *types.Node, rec types.Record, optional bool) {
	n.RawCount++
	n.GeneNames = append(n.GeneNames, rec.GeneName)
	if optional {
		n.Scores = append(n.Scores, rec.Score)
		n.Headers = append(n.Headers, rec.Header)
	}
	n.Breakdown[len(n.Breakdown)-1].Cumulative = len(n.GeneNames) - 1
}

// collectRaw resolves every record and groups records by taxon. Each
// distinct taxon is resolved once; its lineage is recorded in first-seen
// order after the root lineage. Two IDs that resolve to the same name and
// rank share one node and one lineage. For a retired ID and its
// replacement the lineages agree; for homonyms (distinct taxa with one name
// and rank) the smallest lineage by Lineage.Compare wins, so the result
// does not depend on record order.
func collectRaw(ctx context.Context, r taxonomy.Resolver, records []types.Record, optional bool, logger *zap.Logger) (*rawSet, error) {
	root := newNode(types.RootTaxID, types.RootName, types.RootRank, optional)
	raw := &rawSet{
		nodes:     map[string]*types.Node{types.RootKey: root},
		lineages:  []types.Lineage{{types.RootStep}},
		lineageOf: map[string]int{types.RootKey: 0},
	}
	byID := map[string]string{types.RootTaxID: types.RootKey}

	for i, rec := range records {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		id := rec.TaxID
		if id == "" || id == "NA" {
			id = types.RootTaxID
		}

		key, seen := byID[id]
		if !seen {
			taxon, err := r.Resolve(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("resolving taxon %s for gene %q: %w", id, rec.GeneName, err)
			}
			key = types.NodeKey(taxon.Name, taxon.Rank)
			byID[id] = key
			raw.add(key, taxon, optional, logger)
		}
		addRecord(raw.nodes[key], rec, optional)
	}
	return raw, nil
}

// add registers a newly resolved taxon under key, settling homonyms.
func (raw *rawSet) add(key string, taxon types.Taxon, optional bool, logger *zap.Logger) {
	lineage := taxon.FullLineage()
	n, exists := raw.nodes[key]
	if !exists {
		raw.nodes[key] = newNode(taxon.ID, taxon.Name, taxon.Rank, optional)
		raw.lineageOf[key] = len(raw.lineages)
		raw.lineages = append(raw.lineages, lineage)
		return
	}

	idx := raw.lineageOf[key]
	current := raw.lineages[idx]
	cmp := lineage.Compare(current)
	if cmp != 0 {
		logger.Warn("taxa share a name and rank; keeping one lineage",
			zap.String("key", key),
			zap.String("tax_id", taxon.ID),
			zap.String("existing_tax_id", n.TaxID),
			zap.Stringer("lineage", lineage),
			zap.Stringer("existing_lineage", current),
		)
	}
	if cmp < 0 || (cmp == 0 && idLess(taxon.ID, n.TaxID)) {
		raw.lineages[idx] = lineage
		n.TaxID = taxon.ID
	}
}

// idLess orders numeric IDs by value and other IDs lexically.
func idLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
