// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package taxonomy_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/taxoburst/internal/taxonomy"
	"github.com/pdiddy/taxoburst/internal/taxonomy/taxonomytest"
	"github.com/pdiddy/taxoburst/pkg/types"
)

// resolvers returns the in-memory fixture and an SQLite store imported
// from the same taxa so every behavior is checked against both.
func resolvers(t *testing.T) map[string]taxonomy.Resolver {
	t.Helper()
	dumpDir := t.TempDir()
	taxonomytest.WriteDump(t, dumpDir)

	store, err := taxonomy.OpenStore(filepath.Join(t.TempDir(), "tax", "taxonomy.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	var buf strings.Builder
	_, err = store.Import(context.Background(), dumpDir, &buf)
	require.NoError(t, err)

	return map[string]taxonomy.Resolver{
		"mem":    taxonomytest.Resolver(t),
		"sqlite": store,
	}
}

func names(l types.Lineage) []string {
	out := make([]string, len(l))
	for i, s := range l {
		out[i] = s.Rank + ":" + s.Name
	}
	return out
}

func TestResolve(t *testing.T) {
	for kind, r := range resolvers(t) {
		t.Run(kind, func(t *testing.T) {
			ctx := context.Background()

			t.Run("species", func(t *testing.T) {
				tx, err := r.Resolve(ctx, "9606")
				require.NoError(t, err)
				assert.Equal(t, "Homo sapiens", tx.Name)
				assert.Equal(t, "species", tx.Rank)
				assert.Equal(t, []string{
					"root:root",
					"no rank:cellular organisms",
					"superkingdom:Eukaryota",
					"clade:Opisthokonta",
					"kingdom:Metazoa",
					"phylum:Chordata",
					"class:Mammalia",
					"order:Primates",
					"parvorder:Catarrhini",
					"family:Hominidae",
					"genus:Homo",
					"species:Homo sapiens",
				}, names(tx.Lineage))
			})

			t.Run("root", func(t *testing.T) {
				tx, err := r.Resolve(ctx, "1")
				require.NoError(t, err)
				assert.Equal(t, types.RootName, tx.Name)
				assert.Equal(t, types.RootRank, tx.Rank)
				assert.Equal(t, types.Lineage{types.RootStep}, tx.Lineage)
			})

			t.Run("direct child of root", func(t *testing.T) {
				tx, err := r.Resolve(ctx, "12908")
				require.NoError(t, err)
				assert.Equal(t, []string{"root:root", "no rank:unclassified sequences"}, names(tx.Lineage))
			})

			t.Run("merged id", func(t *testing.T) {
				tx, err := r.Resolve(ctx, "469598")
				require.NoError(t, err)
				assert.Equal(t, "562", tx.ID)
				assert.Equal(t, "Escherichia coli", tx.Name)
			})

			t.Run("unknown id", func(t *testing.T) {
				_, err := r.Resolve(ctx, "999999")
				assert.ErrorIs(t, err, taxonomy.ErrTaxonNotFound)
			})
		})
	}
}

func TestLookupID(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    string
		wantErr error
	}{
		{"exact", "Homo sapiens", "9606", nil},
		{"case folded", "escherichia COLI", "562", nil},
		{"ambiguous", "Bacillus", "", taxonomy.ErrAmbiguousName},
		{"unknown", "Felis catus", "", taxonomy.ErrNameNotFound},
		{"synonyms are not scientific names", "Homo (synonym)", "", taxonomy.ErrNameNotFound},
	}
	for kind, r := range resolvers(t) {
		for _, tt := range tests {
			t.Run(kind+"/"+tt.name, func(t *testing.T) {
				got, err := r.LookupID(context.Background(), tt.query)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
					assert.Empty(t, got)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			})
		}
	}
}

func TestSuggest(t *testing.T) {
	for kind, r := range resolvers(t) {
		t.Run(kind, func(t *testing.T) {
			s, ok := r.(taxonomy.Suggester)
			require.True(t, ok)

			got, err := s.Suggest(context.Background(), "homo", 5)
			require.NoError(t, err)
			require.NotEmpty(t, got)
			assert.Equal(t, "Homo", got[0])
			for _, name := range got {
				assert.True(t, strings.HasPrefix(strings.ToLower(name), "homo"), name)
			}

			got, err = s.Suggest(context.Background(), "homo", 2)
			require.NoError(t, err)
			assert.Len(t, got, 2)

			got, err = s.Suggest(context.Background(), "  ", 5)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestImportSummary(t *testing.T) {
	dumpDir := t.TempDir()
	taxonomytest.WriteDump(t, dumpDir)

	store, err := taxonomy.OpenStore(filepath.Join(t.TempDir(), "taxonomy.db"))
	require.NoError(t, err)
	defer store.Close()

	var buf strings.Builder
	summary, err := store.Import(context.Background(), dumpDir, &buf)
	require.NoError(t, err)
	assert.Equal(t, len(taxonomytest.Taxa), summary.Nodes)
	assert.Equal(t, len(taxonomytest.Taxa), summary.Names)
	assert.Equal(t, len(taxonomytest.Merged), summary.Merged)
	assert.Contains(t, buf.String(), "nodes")

	// Re-import replaces rather than duplicates.
	summary, err = store.Import(context.Background(), dumpDir, &buf)
	require.NoError(t, err)
	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, summary.Nodes, n)
}

func TestImportWithoutMerged(t *testing.T) {
	dumpDir := t.TempDir()
	taxonomytest.WriteDump(t, dumpDir)
	require.NoError(t, os.Remove(filepath.Join(dumpDir, taxonomy.MergedFile)))

	store, err := taxonomy.OpenStore(filepath.Join(t.TempDir(), "taxonomy.db"))
	require.NoError(t, err)
	defer store.Close()

	var buf strings.Builder
	summary, err := store.Import(context.Background(), dumpDir, &buf)
	require.NoError(t, err)
	assert.Zero(t, summary.Merged)
	assert.Contains(t, buf.String(), "skipped")
}

func TestImportMissingNodes(t *testing.T) {
	store, err := taxonomy.OpenStore(filepath.Join(t.TempDir(), "taxonomy.db"))
	require.NoError(t, err)
	defer store.Close()

	var buf strings.Builder
	_, err = store.Import(context.Background(), t.TempDir(), &buf)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSplitDumpLine(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"9606\t|\t9605\t|\tspecies\t|\tHS\t|\n", []string{"9606", "9605", "species", "HS"}},
		{"1\t|\troot\t|\t\t|\tscientific name\t|", []string{"1", "root", "", "scientific name"}},
		{"469598\t|\t562\t|\r\n", []string{"469598", "562"}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, taxonomy.SplitDumpLine(tt.line), "line %q", tt.line)
	}
}

func TestLoadFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxa.yaml")
	body := `taxa:
  - {id: "2", parent_id: "1", name: Bacteria, rank: superkingdom}
  - {id: "562", parent_id: "2", name: Escherichia coli, rank: species}
merged:
  "469598": "562"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	r, err := taxonomy.LoadFixture(path)
	require.NoError(t, err)

	tx, err := r.Resolve(context.Background(), "469598")
	require.NoError(t, err)
	assert.Equal(t, []string{"root:root", "superkingdom:Bacteria", "species:Escherichia coli"}, names(tx.Lineage))
}

func TestNewMemResolverRejectsDuplicates(t *testing.T) {
	_, err := taxonomy.NewMemResolver([]taxonomy.MemTaxon{
		{ID: "2", ParentID: "1", Name: "Bacteria", Rank: "superkingdom"},
		{ID: "2", ParentID: "1", Name: "Bacteria", Rank: "superkingdom"},
	}, nil)
	assert.Error(t, err)
}

func TestResolveCycleGuard(t *testing.T) {
	r, err := taxonomy.NewMemResolver([]taxonomy.MemTaxon{
		{ID: "10", ParentID: "11", Name: "A", Rank: "genus"},
		{ID: "11", ParentID: "10", Name: "B", Rank: "family"},
	}, nil)
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), "10")
	assert.ErrorContains(t, err, "exceeds")
}
