// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
)

// BreakdownEntry records how much of a node's gene list comes from one
// source. Cumulative is the zero-based index in Node.GeneNames of the last
// gene attributed to this entry or any earlier one, so an entry that holds
// no genes reads -1.
type BreakdownEntry struct {
	Label      string `yaml:"label"`
	Cumulative int    `yaml:"cumulative"`
}

// MarshalJSON encodes the entry as [label, cumulative].
func (b BreakdownEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{b.Label, b.Cumulative})
}

// UnmarshalJSON decodes a [label, cumulative] pair.
func (b *BreakdownEntry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decoding breakdown entry: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("decoding breakdown entry: want 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &b.Label); err != nil {
		return fmt.Errorf("decoding breakdown label: %w", err)
	}
	if err := json.Unmarshal(pair[1], &b.Cumulative); err != nil {
		return fmt.Errorf("decoding breakdown count: %w", err)
	}
	return nil
}

// Node is one taxon of the aggregated tree.
type Node struct {
	// TaxID is the taxonomy identifier. Empty for nodes synthesized only
	// because they are canonical ancestors of an observed taxon.
	TaxID string `json:"taxID" yaml:"tax_id"`

	Name string `json:"name" yaml:"name"`
	Rank string `json:"rank" yaml:"rank"`

	// RawCount is the number of records that resolved to exactly this taxon.
	RawCount int `json:"rawCount" yaml:"raw_count"`

	// UnaCount is RawCount plus the records folded in from collapsible
	// descendants.
	UnaCount int `json:"unaCount" yaml:"una_count"`

	// TotCount is the sum of UnaCount over this node and its subtree.
	TotCount int `json:"totCount" yaml:"tot_count"`

	// DepthIndex is the node's position within the lineage it terminates.
	DepthIndex int `json:"lnIndex" yaml:"depth_index"`

	Breakdown []BreakdownEntry `json:"names" yaml:"breakdown"`
	GeneNames []string         `json:"geneNames" yaml:"gene_names"`

	// Scores and Headers are index-aligned with GeneNames when the run
	// has either optional column; nil entries mark absent values.
	Scores  []*float64 `json:"eValues,omitempty" yaml:"scores,omitempty"`
	Headers []*string  `json:"fastaHeaders,omitempty" yaml:"headers,omitempty"`

	Children []string `json:"children" yaml:"children"`
}

// Key returns the node's map key.
func (n *Node) Key() string {
	return NodeKey(n.Name, n.Rank)
}

// LastCumulative returns the cumulative value of the last breakdown entry,
// or -1 when the ledger is empty.
func (n *Node) LastCumulative() int {
	if len(n.Breakdown) == 0 {
		return -1
	}
	return n.Breakdown[len(n.Breakdown)-1].Cumulative
}

// Result is the output of one aggregation run.
type Result struct {
	// Lineages is the deduplicated, sorted list of canonical lineages.
	Lineages []Lineage `json:"lns" yaml:"lineages"`

	// Nodes maps node keys to nodes.
	Nodes map[string]*Node `json:"taxSet" yaml:"nodes"`

	// Ranks is the canonical rank ladder.
	Ranks []string `json:"rankPatternFull" yaml:"ranks"`

	ScoresEnabled  bool `json:"eValueEnabled" yaml:"scores_enabled"`
	HeadersEnabled bool `json:"fastaEnabled" yaml:"headers_enabled"`
}

// Root returns the root node, or nil when the result is empty.
func (r *Result) Root() *Node {
	return r.Nodes[RootKey]
}
