// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"slices"

	"github.com/pdiddy/taxoburst/pkg/types"
)

// Dedup returns the lineages sorted by leaf name, with ties ordered step by
// step so equal paths sit next to each other, and with exact duplicates
// removed. The result does not depend on input order, and Dedup applied to
// its own output returns the same list. The input slice is not modified.
func Dedup(lineages []types.Lineage) []types.Lineage {
	out := make([]types.Lineage, 0, len(lineages))
	for _, ln := range lineages {
		if len(ln) > 0 {
			out = append(out, ln)
		}
	}
	slices.SortFunc(out, types.Lineage.Compare)
	return slices.CompactFunc(out, types.Lineage.Equal)
}
