// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ServerConfig holds settings for the HTTP transport.
type ServerConfig struct {
	// Addr is the listen address (default ":5000").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// ReadTimeout bounds reading a full request, upload included.
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`

	// MaxUploadBytes caps the size of an uploaded classification table.
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`

	// AllowedOrigins lists CORS origins; "*" allows all.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// TaxonomyConfig holds settings for the taxonomy database.
type TaxonomyConfig struct {
	// DBPath is the SQLite database file built by "taxonomy import".
	DBPath string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`

	// DumpDir holds nodes.dmp, names.dmp and merged.dmp.
	DumpDir string `json:"dump_dir" yaml:"dump_dir" mapstructure:"dump_dir"`

	// DumpURL is the taxdump archive location.
	DumpURL string `json:"dump_url" yaml:"dump_url" mapstructure:"dump_url"`

	// DownloadTimeout bounds the archive download.
	DownloadTimeout time.Duration `json:"download_timeout" yaml:"download_timeout" mapstructure:"download_timeout"`
}

// AggregateConfig holds settings for the aggregation pipeline.
type AggregateConfig struct {
	// Verify re-checks tree invariants after every run.
	Verify bool `json:"verify" yaml:"verify" mapstructure:"verify"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings.
type Config struct {
	Server    ServerConfig    `json:"server" yaml:"server" mapstructure:"server"`
	Taxonomy  TaxonomyConfig  `json:"taxonomy" yaml:"taxonomy" mapstructure:"taxonomy"`
	Aggregate AggregateConfig `json:"aggregate" yaml:"aggregate" mapstructure:"aggregate"`
	Log       LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultNCBIDumpURL is the NCBI taxdump archive.
const DefaultNCBIDumpURL = "https://ftp.ncbi.nih.gov/pub/taxonomy/taxdump.tar.gz"

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":5000",
			ReadTimeout:    30 * time.Second,
			MaxUploadBytes: 64 << 20,
			AllowedOrigins: []string{"*"},
		},
		Taxonomy: TaxonomyConfig{
			DBPath:          "taxonomy/taxonomy.db",
			DumpDir:         "taxonomy/dump",
			DumpURL:         DefaultNCBIDumpURL,
			DownloadTimeout: 10 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
