// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package taxonomytest provides a small NCBI-shaped taxonomy for tests.
package taxonomytest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/taxoburst/internal/taxonomy"
)

// Taxa is a slice of the NCBI taxonomy. It includes collapsible ranks in
// the middle of lineages (clade, parvorder), collapsible leaves (strain,
// subspecies, no rank) and two genera that share a name.
var Taxa = []taxonomy.MemTaxon{
	{ID: "1", ParentID: "1", Name: "root", Rank: "no rank"},
	{ID: "131567", ParentID: "1", Name: "cellular organisms", Rank: "no rank"},
	{ID: "12908", ParentID: "1", Name: "unclassified sequences", Rank: "no rank"},

	{ID: "2759", ParentID: "131567", Name: "Eukaryota", Rank: "superkingdom"},
	{ID: "33154", ParentID: "2759", Name: "Opisthokonta", Rank: "clade"},
	{ID: "33208", ParentID: "33154", Name: "Metazoa", Rank: "kingdom"},
	{ID: "7711", ParentID: "33208", Name: "Chordata", Rank: "phylum"},
	{ID: "40674", ParentID: "7711", Name: "Mammalia", Rank: "class"},
	{ID: "9443", ParentID: "40674", Name: "Primates", Rank: "order"},
	{ID: "9526", ParentID: "9443", Name: "Catarrhini", Rank: "parvorder"},
	{ID: "9604", ParentID: "9526", Name: "Hominidae", Rank: "family"},
	{ID: "9605", ParentID: "9604", Name: "Homo", Rank: "genus"},
	{ID: "9606", ParentID: "9605", Name: "Homo sapiens", Rank: "species"},
	{ID: "63221", ParentID: "9606", Name: "Homo sapiens neanderthalensis", Rank: "subspecies"},
	{ID: "741158", ParentID: "9606", Name: "Homo sapiens subsp. 'Denisova'", Rank: "subspecies"},
	{ID: "6960", ParentID: "33208", Name: "Hexapoda", Rank: "subphylum"},
	{ID: "55087", ParentID: "6960", Name: "Bacillus", Rank: "genus"},

	{ID: "2", ParentID: "131567", Name: "Bacteria", Rank: "superkingdom"},
	{ID: "1224", ParentID: "2", Name: "Proteobacteria", Rank: "phylum"},
	{ID: "1236", ParentID: "1224", Name: "Gammaproteobacteria", Rank: "class"},
	{ID: "91347", ParentID: "1236", Name: "Enterobacterales", Rank: "order"},
	{ID: "543", ParentID: "91347", Name: "Enterobacteriaceae", Rank: "family"},
	{ID: "561", ParentID: "543", Name: "Escherichia", Rank: "genus"},
	{ID: "562", ParentID: "561", Name: "Escherichia coli", Rank: "species"},
	{ID: "83333", ParentID: "562", Name: "Escherichia coli K-12", Rank: "strain"},
	{ID: "1239", ParentID: "2", Name: "Bacillota", Rank: "phylum"},
	{ID: "1386", ParentID: "1239", Name: "Bacillus", Rank: "genus"},
	{ID: "1783272", ParentID: "2", Name: "Terrabacteria group", Rank: "clade"},
}

// Merged maps retired IDs to current ones.
var Merged = map[string]string{
	"469598": "562",
}

// Resolver returns a MemResolver over Taxa and Merged.
func Resolver(t testing.TB) *taxonomy.MemResolver {
	t.Helper()
	r, err := taxonomy.NewMemResolver(Taxa, Merged)
	if err != nil {
		t.Fatalf("building fixture resolver: %v", err)
	}
	return r
}

// WriteDump writes Taxa and Merged as NCBI taxdump files into dir. Each
// taxon also gets a synonym row so importers must filter name classes.
func WriteDump(t testing.TB, dir string) {
	t.Helper()
	var nodes, names, merged strings.Builder
	for _, tx := range Taxa {
		fmt.Fprintf(&nodes, "%s\t|\t%s\t|\t%s\t|\t\t|\t0\t|\n", tx.ID, tx.ParentID, tx.Rank)
		fmt.Fprintf(&names, "%s\t|\t%s\t|\t\t|\tscientific name\t|\n", tx.ID, tx.Name)
		fmt.Fprintf(&names, "%s\t|\t%s (synonym)\t|\t\t|\tsynonym\t|\n", tx.ID, tx.Name)
	}
	for old, cur := range Merged {
		fmt.Fprintf(&merged, "%s\t|\t%s\t|\n", old, cur)
	}
	for name, body := range map[string]string{
		taxonomy.NodesFile:  nodes.String(),
		taxonomy.NamesFile:  names.String(),
		taxonomy.MergedFile: merged.String(),
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}
