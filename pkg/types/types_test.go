// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCanonical(t *testing.T) {
	for _, r := range CanonicalRanks {
		assert.True(t, IsCanonical(r), r)
	}
	for _, r := range []string{"no rank", "clade", "strain", "subspecies", "parvorder", "Species", ""} {
		assert.False(t, IsCanonical(r), r)
	}
	assert.Equal(t, "root", CanonicalRanks[0])
	assert.Equal(t, "species", CanonicalRanks[len(CanonicalRanks)-1])
}

func TestNodeKey(t *testing.T) {
	assert.Equal(t, "Homo sapiens species", NodeKey("Homo sapiens", "species"))
	assert.Equal(t, "root root", RootKey)
	assert.Equal(t, "Homo genus", RankName{Rank: "genus", Name: "Homo"}.Key())
}

func TestFullLineage(t *testing.T) {
	tests := []struct {
		name  string
		taxon Taxon
		want  Lineage
	}{
		{
			name:  "complete lineage unchanged",
			taxon: Taxon{Name: "Homo", Rank: "genus", Lineage: Lineage{RootStep, {Rank: "genus", Name: "Homo"}}},
			want:  Lineage{RootStep, {Rank: "genus", Name: "Homo"}},
		},
		{
			name:  "root prefixed",
			taxon: Taxon{Name: "Homo", Rank: "genus", Lineage: Lineage{{Rank: "genus", Name: "Homo"}}},
			want:  Lineage{RootStep, {Rank: "genus", Name: "Homo"}},
		},
		{
			name:  "leaf appended",
			taxon: Taxon{Name: "E. coli K-12", Rank: "strain", Lineage: Lineage{RootStep, {Rank: "species", Name: "E. coli"}}},
			want:  Lineage{RootStep, {Rank: "species", Name: "E. coli"}, {Rank: "strain", Name: "E. coli K-12"}},
		},
		{
			name:  "root taxon",
			taxon: Taxon{Name: RootName, Rank: RootRank},
			want:  Lineage{RootStep},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.taxon.FullLineage())
		})
	}
}

func TestLineageCompare(t *testing.T) {
	a := Lineage{RootStep, {Rank: "genus", Name: "Apis"}}
	b := Lineage{RootStep, {Rank: "genus", Name: "Bos"}}
	b2 := Lineage{RootStep, {Rank: "family", Name: "Bovidae"}, {Rank: "genus", Name: "Bos"}}

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, b.Compare(b.Clone()))
	assert.NotEqual(t, 0, b.Compare(b2))
	assert.Equal(t, -b.Compare(b2), b2.Compare(b))
	assert.True(t, b.Equal(b.Clone()))
	assert.False(t, b.Equal(b2))
	assert.Equal(t, "root;Bovidae;Bos", b2.String())
}

func TestJSONShapes(t *testing.T) {
	score := 0.25
	res := Result{
		Lineages: []Lineage{{RootStep, {Rank: "species", Name: "Homo sapiens"}}},
		Nodes: map[string]*Node{
			RootKey: {
				TaxID: "1", Name: "root", Rank: "root",
				Breakdown: []BreakdownEntry{{Label: RootKey, Cumulative: -1}},
				GeneNames: []string{},
				Children:  []string{"Homo sapiens species"},
			},
			"Homo sapiens species": {
				TaxID: "9606", Name: "Homo sapiens", Rank: "species",
				RawCount: 1, UnaCount: 1, TotCount: 1, DepthIndex: 1,
				Breakdown: []BreakdownEntry{{Label: "Homo sapiens species", Cumulative: 0}},
				GeneNames: []string{"g1"},
				Scores:    []*float64{&score},
				Headers:   []*string{nil},
				Children:  []string{},
			},
		},
		Ranks:         CanonicalRanks,
		ScoresEnabled: true,
	}

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(data, &generic))
	assert.Equal(t, []any{[]any{"root", "root"}, []any{"species", "Homo sapiens"}}, generic["lns"].([]any)[0])
	assert.Equal(t, true, generic["eValueEnabled"])
	assert.Equal(t, false, generic["fastaEnabled"])
	assert.Len(t, generic["rankPatternFull"], len(CanonicalRanks))

	nodes := generic["taxSet"].(map[string]any)
	hs := nodes["Homo sapiens species"].(map[string]any)
	assert.Equal(t, []any{[]any{"Homo sapiens species", float64(0)}}, hs["names"])
	assert.Equal(t, []any{0.25}, hs["eValues"])
	assert.Equal(t, []any{nil}, hs["fastaHeaders"])
	assert.Equal(t, float64(1), hs["lnIndex"])

	root := nodes[RootKey].(map[string]any)
	assert.NotContains(t, root, "eValues")
	assert.Equal(t, []any{}, root["geneNames"])

	var back Result
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, res.Lineages, back.Lineages)
	assert.Equal(t, res.Nodes["Homo sapiens species"].Breakdown, back.Nodes["Homo sapiens species"].Breakdown)
}

func TestBreakdownEntryRejectsBadShape(t *testing.T) {
	var b BreakdownEntry
	assert.Error(t, json.Unmarshal([]byte(`["only-label"]`), &b))
	assert.Error(t, json.Unmarshal([]byte(`[1, 2]`), &b))

	var rn RankName
	assert.Error(t, json.Unmarshal([]byte(`{"rank":"genus"}`), &rn))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, DefaultNCBIDumpURL, cfg.Taxonomy.DumpURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Positive(t, cfg.Server.MaxUploadBytes)
}
