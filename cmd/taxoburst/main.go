// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the taxoburst CLI. It serves the
// aggregation pipeline over HTTP, runs it on local files, and builds the
// local taxonomy database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/taxoburst/internal/logging"
	"github.com/pdiddy/taxoburst/internal/taxonomy"
	"github.com/pdiddy/taxoburst/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg holds the merged configuration after PersistentPreRunE.
	cfg types.Config

	logger = zap.NewNop()
)

// rootCmd is the base command for the taxoburst CLI.
var rootCmd = &cobra.Command{
	Use:   "taxoburst",
	Short: "Aggregate gene classifications into taxonomic sunburst trees",
	Long: `taxoburst turns a table of gene-to-taxon assignments into a
count-annotated taxonomic tree ready for sunburst rendering.

Each gene is resolved against a local copy of the NCBI taxonomy, folded
onto the canonical ranks (superkingdom to species), and counted up the
tree. Build the taxonomy database once with "taxonomy fetch" and
"taxonomy import", then run "serve" or "aggregate".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = c

		l, err := logging.New(cfg.Log)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./taxoburst.yaml or ~/.config/taxoburst/config.yaml)")
	pf.String("db", "", "taxonomy database path")
	pf.String("taxonomy-fixture", "", "YAML taxonomy fixture used instead of the database")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: json or console")
	pf.Bool("verify", false, "re-check tree invariants after every aggregation")

	bindFlag("taxonomy.db_path", pf.Lookup("db"))
	bindFlag("log.level", pf.Lookup("log-level"))
	bindFlag("log.format", pf.Lookup("log-format"))
	bindFlag("aggregate.verify", pf.Lookup("verify"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("taxoburst")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "taxoburst"))
		}
	}

	setDefaults(types.DefaultConfig())
	viper.SetEnvPrefix("TAXOBURST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key so environment variables can override
// settings that appear in no config file.
func setDefaults(d types.Config) {
	viper.SetDefault("server.addr", d.Server.Addr)
	viper.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	viper.SetDefault("server.max_upload_bytes", d.Server.MaxUploadBytes)
	viper.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	viper.SetDefault("taxonomy.db_path", d.Taxonomy.DBPath)
	viper.SetDefault("taxonomy.dump_dir", d.Taxonomy.DumpDir)
	viper.SetDefault("taxonomy.dump_url", d.Taxonomy.DumpURL)
	viper.SetDefault("taxonomy.download_timeout", d.Taxonomy.DownloadTimeout)
	viper.SetDefault("aggregate.verify", d.Aggregate.Verify)
	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.format", d.Log.Format)
}

// loadConfig merges defaults, config file, environment and flags.
func loadConfig() (types.Config, error) {
	c := types.DefaultConfig()
	if err := viper.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	return c, nil
}

// bindFlag binds a flag to a config key. The flag wins only when set.
func bindFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", flag.Name, err))
	}
}

// openResolver returns the fixture resolver when --taxonomy-fixture is set
// and the SQLite store otherwise. The returned func releases it.
func openResolver(cmd *cobra.Command) (taxonomy.Resolver, func() error, error) {
	fixture, _ := cmd.Flags().GetString("taxonomy-fixture")
	if fixture != "" {
		r, err := taxonomy.LoadFixture(fixture)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using taxonomy fixture", zap.String("path", fixture))
		return r, func() error { return nil }, nil
	}

	store, err := taxonomy.OpenStore(cfg.Taxonomy.DBPath)
	if err != nil {
		return nil, nil, err
	}
	n, err := store.Count(cmd.Context())
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	if n == 0 {
		store.Close()
		return nil, nil, fmt.Errorf("taxonomy database %s is empty: run \"taxoburst taxonomy fetch\" and \"taxoburst taxonomy import\" first", cfg.Taxonomy.DBPath)
	}
	logger.Info("opened taxonomy database", zap.String("path", cfg.Taxonomy.DBPath), zap.Int("taxa", n))
	return store, store.Close, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
