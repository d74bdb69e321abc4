// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/taxoburst/internal/taxonomy"
	"github.com/pdiddy/taxoburst/pkg/types"
)

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Build and query the local taxonomy database",
	Long: `Taxonomy manages the SQLite copy of the NCBI taxonomy that every
aggregation resolves against. Run "fetch" then "import" once; the other
subcommands query the result.`,
}

// --- fetch subcommand ---

var taxonomyFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the NCBI taxdump archive",
	Long: `Fetch downloads taxdump.tar.gz and extracts nodes.dmp, names.dmp and
merged.dmp into the dump directory. Transient HTTP failures are retried.`,
	Args: cobra.NoArgs,
	RunE: runTaxonomyFetch,
}

func runTaxonomyFetch(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: cfg.Taxonomy.DownloadTimeout}
	files, err := taxonomy.Fetch(cmd.Context(), client, cfg.Taxonomy.DumpURL, cfg.Taxonomy.DumpDir, logger)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Fprintln(cmd.OutOrStdout(), f)
	}
	return nil
}

// --- import subcommand ---

var taxonomyImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Load taxdump files into the taxonomy database",
	Long: `Import replaces the contents of the taxonomy database with the
nodes, scientific names and merged IDs found in the dump directory.`,
	Args: cobra.NoArgs,
	RunE: runTaxonomyImport,
}

func runTaxonomyImport(cmd *cobra.Command, args []string) error {
	store, err := taxonomy.OpenStore(cfg.Taxonomy.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Import(cmd.Context(), cfg.Taxonomy.DumpDir, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	logger.Info("taxonomy imported",
		zap.String("db", cfg.Taxonomy.DBPath),
		zap.Int("nodes", summary.Nodes),
		zap.Int("names", summary.Names),
		zap.Int("merged", summary.Merged),
	)
	return nil
}

// --- resolve subcommand ---

var taxonomyResolveCmd = &cobra.Command{
	Use:   "resolve <taxid>...",
	Short: "Print name, rank and lineage for taxon IDs",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaxonomyResolve,
}

func runTaxonomyResolve(cmd *cobra.Command, args []string) error {
	r, closeResolver, err := openResolver(cmd)
	if err != nil {
		return err
	}
	defer closeResolver()

	taxa := make([]types.Taxon, 0, len(args))
	for _, id := range args {
		t, err := r.Resolve(cmd.Context(), id)
		if err != nil {
			return err
		}
		taxa = append(taxa, t)
	}

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(taxa)
	}
	for _, t := range taxa {
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Rank, t.FullLineage())
	}
	return nil
}

// --- lookup subcommand ---

var taxonomyLookupCmd = &cobra.Command{
	Use:   "lookup <scientific name>",
	Short: "Print the taxon ID for a scientific name",
	Long: `Lookup matches the name exactly, then case-insensitively. A name
shared by several taxa is reported as ambiguous.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTaxonomyLookup,
}

func runTaxonomyLookup(cmd *cobra.Command, args []string) error {
	r, closeResolver, err := openResolver(cmd)
	if err != nil {
		return err
	}
	defer closeResolver()

	id, err := r.LookupID(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}

// --- suggest subcommand ---

var taxonomySuggestCmd = &cobra.Command{
	Use:   "suggest <partial name>",
	Short: "Suggest scientific names for a partial query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaxonomySuggest,
}

func runTaxonomySuggest(cmd *cobra.Command, args []string) error {
	r, closeResolver, err := openResolver(cmd)
	if err != nil {
		return err
	}
	defer closeResolver()

	sg, ok := r.(taxonomy.Suggester)
	if !ok {
		return fmt.Errorf("resolver does not support suggestions")
	}
	limit, _ := cmd.Flags().GetInt("limit")
	names, err := sg.Suggest(cmd.Context(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(cmd.OutOrStdout(), n)
	}
	return nil
}

func init() {
	taxonomyCmd.PersistentFlags().String("dump-dir", "", "directory holding the taxdump files")
	bindFlag("taxonomy.dump_dir", taxonomyCmd.PersistentFlags().Lookup("dump-dir"))

	taxonomyFetchCmd.Flags().String("url", "", "taxdump archive URL")
	bindFlag("taxonomy.dump_url", taxonomyFetchCmd.Flags().Lookup("url"))

	taxonomyResolveCmd.Flags().Bool("json", false, "output taxa as JSON")
	taxonomySuggestCmd.Flags().Int("limit", 10, "maximum suggestions")

	taxonomyCmd.AddCommand(taxonomyFetchCmd)
	taxonomyCmd.AddCommand(taxonomyImportCmd)
	taxonomyCmd.AddCommand(taxonomyResolveCmd)
	taxonomyCmd.AddCommand(taxonomyLookupCmd)
	taxonomyCmd.AddCommand(taxonomySuggestCmd)

	rootCmd.AddCommand(taxonomyCmd)
}
