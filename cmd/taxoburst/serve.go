// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/taxoburst/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the aggregation API over HTTP",
	Long: `Serve starts the HTTP API used by the sunburst viewer:

  POST /load_tsv_data  upload a classification table, get the tree
  POST /fetchID        resolve a scientific name to a taxon ID
  GET  /suggest        name suggestions for a partial query
  GET  /health         liveness
  GET  /metrics        Prometheus metrics

The server stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	r, closeResolver, err := openResolver(cmd)
	if err != nil {
		return err
	}
	defer closeResolver()

	return server.New(cfg, r, logger).Run(cmd.Context())
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :5000)")
	bindFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}
