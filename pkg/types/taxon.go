// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Record is one row of a classification table.
type Record struct {
	// GeneName is the gene identifier from column 1.
	GeneName string `json:"gene_name" yaml:"gene_name"`

	// TaxID is the taxon identifier from column 2. Empty and "NA" inputs
	// are stored as RootTaxID.
	TaxID string `json:"tax_id" yaml:"tax_id"`

	// Score is the optional numeric score (e-value) from column 3.
	Score *float64 `json:"score,omitempty" yaml:"score,omitempty"`

	// Header is the optional FASTA header from column 4.
	Header *string `json:"header,omitempty" yaml:"header,omitempty"`
}

// RankName is one step of a lineage.
type RankName struct {
	Rank string `yaml:"rank"`
	Name string `yaml:"name"`
}

// Key returns the node key for this step.
func (rn RankName) Key() string {
	return NodeKey(rn.Name, rn.Rank)
}

// MarshalJSON encodes the step as [rank, name].
func (rn RankName) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{rn.Rank, rn.Name})
}

// UnmarshalJSON decodes a [rank, name] pair.
func (rn *RankName) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decoding rank/name pair: %w", err)
	}
	rn.Rank, rn.Name = pair[0], pair[1]
	return nil
}

// RootStep is the synthetic first element of every lineage.
var RootStep = RankName{Rank: RootRank, Name: RootName}

// Lineage is an ordered chain of steps from the universal root to a taxon.
type Lineage []RankName

// Leaf returns the deepest step. It panics on an empty lineage.
func (l Lineage) Leaf() RankName {
	return l[len(l)-1]
}

// Equal reports whether two lineages hold the same steps in the same order.
func (l Lineage) Equal(o Lineage) bool {
	if len(l) != len(o) {
		return false
	}
	for i := range l {
		if l[i] != o[i] {
			return false
		}
	}
	return true
}

// Compare orders lineages by the name of their leaf, then step by step
// by name and rank, then by length. It returns -1, 0 or 1.
func (l Lineage) Compare(o Lineage) int {
	if c := strings.Compare(l.Leaf().Name, o.Leaf().Name); c != 0 {
		return c
	}
	n := min(len(l), len(o))
	for i := 0; i < n; i++ {
		if c := strings.Compare(l[i].Name, o[i].Name); c != 0 {
			return c
		}
		if c := strings.Compare(l[i].Rank, o[i].Rank); c != 0 {
			return c
		}
	}
	switch {
	case len(l) < len(o):
		return -1
	case len(l) > len(o):
		return 1
	}
	return 0
}

// Clone returns a copy that shares no storage with l.
func (l Lineage) Clone() Lineage {
	out := make(Lineage, len(l))
	copy(out, l)
	return out
}

// String renders the lineage as "root;Bacteria;...".
func (l Lineage) String() string {
	names := make([]string, len(l))
	for i, s := range l {
		names[i] = s.Name
	}
	return strings.Join(names, ";")
}

// Taxon is a taxonomy database answer for one identifier.
type Taxon struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Rank    string  `json:"rank" yaml:"rank"`
	Lineage Lineage `json:"lineage" yaml:"lineage"`
}

// FullLineage returns the taxon's lineage prefixed with RootStep when
// missing and terminated by the taxon itself when the database lineage
// stops at an ancestor.
func (t Taxon) FullLineage() Lineage {
	out := make(Lineage, 0, len(t.Lineage)+2)
	if len(t.Lineage) == 0 || t.Lineage[0] != RootStep {
		out = append(out, RootStep)
	}
	out = append(out, t.Lineage...)
	self := RankName{Rank: t.Rank, Name: t.Name}
	if out[len(out)-1] != self {
		out = append(out, self)
	}
	return out
}
