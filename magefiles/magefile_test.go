//go:build mage

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectStats(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"main.go":               "package main\n\nfunc main() {}\n",
		"internal/a/a.go":       "package a\n\n\t\nvar X = 1\n",
		"internal/a/a_test.go":  "package a\n\nfunc TestX() {}\n",
		"DESIGN.md":             "# Design\n\nthree more words\n",
		"config.yaml":           "log:\n  level: info\n",
		"notes.txt":             "ignored words here\n",
		"_examples/x/x.go":      "package x\n",
		".git/HEAD.md":          "ignored\n",
		"bin/generated_test.go": "package bin\n",
	}
	for name, body := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}

	st, err := collectStats(root)
	require.NoError(t, err)
	assert.Equal(t, codeStats{prodLines: 4, testLines: 2, docWords: 8}, st)
}

func TestNonBlankLines(t *testing.T) {
	assert.Equal(t, 0, nonBlankLines(nil))
	assert.Equal(t, 2, nonBlankLines([]byte("a\n \t\r\n\nb")))
}
