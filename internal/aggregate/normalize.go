// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"fmt"
	"slices"

	"github.com/pdiddy/taxoburst/pkg/types"
)

// normalizer folds collapsible ranks into their nearest canonical ancestor.
type normalizer struct {
	raw      *rawSet
	out      map[string]*types.Node
	optional bool
}

// normalize returns the canonical node map and, for every raw lineage, its
// canonical-only counterpart. Lineages are processed deepest-first so that
// folded state never carries from one lineage into another.
//
// A collapsible leaf (the observed taxon itself) hands its records to the
// first canonical step above it, however many collapsible steps sit in
// between. Collapsible steps in the middle of a lineage are dropped without
// contributing anything.
func normalize(raw *rawSet, optional bool) (map[string]*types.Node, []types.Lineage, error) {
	n := &normalizer{
		raw:      raw,
		out:      make(map[string]*types.Node, len(raw.nodes)),
		optional: optional,
	}

	lineages := make([]types.Lineage, len(raw.lineages))
	for i := len(raw.lineages) - 1; i >= 0; i-- {
		ln := raw.lineages[i]
		canonical := make(types.Lineage, 0, len(ln))
		var inherited *types.Node

		for j := len(ln) - 1; j >= 0; j-- {
			step := ln[j]
			if types.IsCanonical(step.Rank) {
				node := n.nodeFor(step)
				if inherited != nil {
					n.fold(node, inherited)
					inherited = nil
				}
				canonical = append(canonical, step)
				continue
			}
			if j == len(ln)-1 {
				leaf, ok := raw.nodes[step.Key()]
				if !ok {
					return nil, nil, fmt.Errorf("%w: observed leaf %q has no raw node", ErrInconsistent, step.Key())
				}
				inherited = leaf
			}
		}
		if inherited != nil {
			return nil, nil, fmt.Errorf("%w: lineage %s has no canonical step", ErrInconsistent, ln)
		}

		// canonical was built leaf first.
		slices.Reverse(canonical)
		lineages[i] = canonical
	}
	return n.out, lineages, nil
}

// nodeFor returns the output node for a canonical step. An observed taxon
// enters the output with UnaCount and TotCount equal to its raw count; a
// canonical ancestor that was never observed is synthesized empty.
func (n *normalizer) nodeFor(step types.RankName) *types.Node {
	key := step.Key()
	if node, ok := n.out[key]; ok {
		return node
	}
	node, ok := n.raw.nodes[key]
	if ok {
		node.UnaCount = node.RawCount
		node.TotCount = node.RawCount
	} else {
		node = newNode("", step.Name, step.Rank, n.optional)
	}
	n.out[key] = node
	return node
}

// fold merges a collapsible leaf's records into node.
func (n *normalizer) fold(node, from *types.Node) {
	if from.RawCount == 0 {
		return
	}
	node.UnaCount += from.RawCount
	node.TotCount += from.RawCount
	node.GeneNames = append(node.GeneNames, from.GeneNames...)
	if n.optional {
		node.Scores = append(node.Scores, from.Scores...)
		node.Headers = append(node.Headers, from.Headers...)
	}
	node.Breakdown = append(node.Breakdown, types.BreakdownEntry{
		Label:      from.Key(),
		Cumulative: node.LastCumulative() + from.RawCount,
	})
}
