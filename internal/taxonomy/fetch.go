// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package taxonomy

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pdiddy/taxoburst/internal/httputil"
)

// dumpFiles are the archive members Fetch extracts.
var dumpFiles = map[string]bool{
	NodesFile:  true,
	NamesFile:  true,
	MergedFile: true,
}

// Fetch downloads a taxdump tar.gz archive from url and extracts
// nodes.dmp, names.dmp and merged.dmp into destDir. Files are written to a
// temporary name and renamed once complete. It returns the extracted names.
func Fetch(ctx context.Context, client *http.Client, url, destDir string, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating dump directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	logger.Info("downloading taxdump", zap.String("url", url))

	resp, err := httputil.DoWithRetry(ctx, client, req, 0, logger)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading %s: unexpected status %s", url, resp.Status)
	}

	extracted, err := extractDump(resp.Body, destDir)
	if err != nil {
		return extracted, err
	}
	for _, required := range []string{NodesFile, NamesFile} {
		if _, err := os.Stat(filepath.Join(destDir, required)); err != nil {
			return extracted, fmt.Errorf("archive is missing %s", required)
		}
	}
	logger.Info("taxdump extracted", zap.Strings("files", extracted), zap.String("dir", destDir))
	return extracted, nil
}

func extractDump(r io.Reader, destDir string) ([]string, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening gzip stream: %w", err)
	}
	defer gz.Close()

	var extracted []string
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return extracted, fmt.Errorf("reading archive: %w", err)
		}
		name := path.Base(hdr.Name)
		if hdr.Typeflag != tar.TypeReg || !dumpFiles[name] {
			continue
		}
		if err := writeAtomic(filepath.Join(destDir, name), tr); err != nil {
			return extracted, err
		}
		extracted = append(extracted, name)
	}
	return extracted, nil
}

func writeAtomic(dest string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.part")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(dest), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", filepath.Base(dest), err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("renaming %s: %w", filepath.Base(dest), err)
	}
	return nil
}
