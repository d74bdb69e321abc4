// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CanonicalRanks is the fixed rank ladder, root first. Only these ranks
// become tree nodes; every other rank is folded into its nearest canonical
// ancestor.
var CanonicalRanks = []string{
	"root",
	"superkingdom", "kingdom", "subkingdom",
	"superphylum", "phylum", "subphylum",
	"superclass", "class", "subclass",
	"superorder", "order", "suborder",
	"superfamily", "family", "subfamily",
	"supergenus", "genus", "subgenus",
	"superspecies", "species",
}

var canonicalSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(CanonicalRanks))
	for _, r := range CanonicalRanks {
		m[r] = struct{}{}
	}
	return m
}()

// IsCanonical reports whether rank appears on the canonical ladder.
// Ranks such as "no rank" and "clade" are collapsible.
func IsCanonical(rank string) bool {
	_, ok := canonicalSet[rank]
	return ok
}

// Root identifiers.
const (
	RootTaxID = "1"
	RootName  = "root"
	RootRank  = "root"
)

// RootKey is the node key of the universal root.
var RootKey = NodeKey(RootName, RootRank)

// NodeKey returns the key under which a taxon is stored in a Result.
func NodeKey(name, rank string) string {
	return name + " " + rank
}
