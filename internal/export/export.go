// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export serializes aggregation results to JSON or YAML.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/taxoburst/pkg/types"
)

// Format selects an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a flag value to a Format. The empty string selects JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported format %q: use json or yaml", s)
}

// FormatForPath infers a format from a file extension, defaulting to JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Write encodes res to w. JSON uses the presentation-layer keys and is
// indented by two spaces.
func Write(w io.Writer, res *types.Result, format Format) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported format %q", format)
}

// WriteFile writes res to path, creating parent directories.
func WriteFile(path string, res *types.Result, format Format) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(f, res, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
