// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package taxonomy_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/taxoburst/internal/httputil"
	"github.com/pdiddy/taxoburst/internal/taxonomy"
	"github.com/pdiddy/taxoburst/internal/taxonomy/taxonomytest"
)

// archive packs the fixture dump plus an unrelated member into a tar.gz.
func archive(t *testing.T, skip string) []byte {
	t.Helper()
	dir := t.TempDir()
	taxonomytest.WriteDump(t, dir)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	add := func(name string, data []byte) {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(data)), Typeflag: tar.TypeReg}))
		_, err := tw.Write(data)
		require.NoError(t, err)
	}
	for _, name := range []string{taxonomy.NodesFile, taxonomy.NamesFile, taxonomy.MergedFile} {
		if name == skip {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		add(name, data)
	}
	add("gc.prt", []byte("genetic codes\n"))
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestFetchThenImport(t *testing.T) {
	body := archive(t, "")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	dumpDir := filepath.Join(t.TempDir(), "dump")
	files, err := taxonomy.Fetch(context.Background(), srv.Client(), srv.URL+"/taxdump.tar.gz", dumpDir, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{taxonomy.NodesFile, taxonomy.NamesFile, taxonomy.MergedFile}, files)
	assert.NoFileExists(t, filepath.Join(dumpDir, "gc.prt"))

	store, err := taxonomy.OpenStore(filepath.Join(t.TempDir(), "taxonomy.db"))
	require.NoError(t, err)
	defer store.Close()

	var progress bytes.Buffer
	_, err = store.Import(context.Background(), dumpDir, &progress)
	require.NoError(t, err)

	taxon, err := store.Resolve(context.Background(), "9606")
	require.NoError(t, err)
	assert.Equal(t, "Homo sapiens", taxon.Name)
}

func TestFetchRetriesTransientStatus(t *testing.T) {
	old := httputil.RetryBaseDelay
	httputil.RetryBaseDelay = time.Millisecond
	t.Cleanup(func() { httputil.RetryBaseDelay = old })

	body := archive(t, "")
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write(body)
	}))
	defer srv.Close()

	_, err := taxonomy.Fetch(context.Background(), srv.Client(), srv.URL, t.TempDir(), nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name:    "not found",
			handler: func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) },
		},
		{
			name:    "not gzip",
			handler: func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("plain text")) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := taxonomy.Fetch(context.Background(), srv.Client(), srv.URL, t.TempDir(), nil)
			assert.Error(t, err)
		})
	}

	t.Run("missing names", func(t *testing.T) {
		body := archive(t, taxonomy.NamesFile)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write(body)
		}))
		defer srv.Close()

		_, err := taxonomy.Fetch(context.Background(), srv.Client(), srv.URL, t.TempDir(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), taxonomy.NamesFile)
	})
}
