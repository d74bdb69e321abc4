// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/taxoburst/internal/aggregate"
	"github.com/pdiddy/taxoburst/internal/export"
	"github.com/pdiddy/taxoburst/internal/table"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate <file.tsv>",
	Short: "Aggregate a classification table into a taxonomic tree",
	Long: `Aggregate reads a tab-separated classification table (gene, taxon ID,
optional e-value, optional FASTA header), builds the count-annotated tree
and writes it as JSON or YAML. Use "-" to read from stdin.

Without --output the tree goes to stdout. With --output the format
follows the file extension unless --format is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runAggregate,
}

func runAggregate(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(mustString(cmd, "format"))
	if err != nil {
		return err
	}
	output := mustString(cmd, "output")
	if output != "" && !cmd.Flags().Changed("format") {
		format = export.FormatForPath(output)
	}

	tbl, err := readTable(args[0])
	if err != nil {
		return err
	}

	r, closeResolver, err := openResolver(cmd)
	if err != nil {
		return err
	}
	defer closeResolver()

	res, err := aggregate.Run(cmd.Context(), r, tbl.Records, aggregate.Options{
		ScoresEnabled:  tbl.ScoresEnabled,
		HeadersEnabled: tbl.HeadersEnabled,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	if cfg.Aggregate.Verify {
		if err := aggregate.Verify(res, len(tbl.Records)); err != nil {
			return err
		}
	}
	logger.Info("aggregated",
		zap.String("input", args[0]),
		zap.Int("records", len(tbl.Records)),
		zap.Int("nodes", len(res.Nodes)),
		zap.Int("lineages", len(res.Lineages)),
	)

	if output == "" {
		return export.Write(cmd.OutOrStdout(), res, format)
	}
	if err := export.WriteFile(output, res, format); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
	return nil
}

func readTable(path string) (table.Table, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return table.Table{}, fmt.Errorf("opening table: %w", err)
		}
		defer f.Close()
		r = f
	}
	tbl, err := table.Parse(r)
	if err != nil {
		return table.Table{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return tbl, nil
}

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func init() {
	aggregateCmd.Flags().String("format", "json", "output format: json or yaml")
	aggregateCmd.Flags().StringP("output", "o", "", "write the tree to this file instead of stdout")

	rootCmd.AddCommand(aggregateCmd)
}
