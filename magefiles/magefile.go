//go:build mage

// Package main contains Mage build targets for taxoburst developer tooling.
package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the CLI expects.
var projectDirs = []string{
	"taxonomy/dump",
	"output",
}

// Init creates the project directory structure.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "taxoburst"
	cmdPkg  = "./cmd/taxoburst"
)

// binPath is the built CLI.
var binPath = filepath.Join(binDir, binName)

// Build compiles the CLI binary into bin/. VERSION, when set, is stamped
// into the binary.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	ldflags := "-X main.version=" + version
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", binPath, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", binPath)
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Taxonomy groups targets that build the local taxonomy database.
type Taxonomy mg.Namespace

// Fetch downloads the NCBI taxdump into taxonomy/dump.
func (Taxonomy) Fetch() error {
	mg.Deps(Build, Init)
	return sh.RunV(binPath, "taxonomy", "fetch")
}

// Import loads taxonomy/dump into the SQLite database.
func (Taxonomy) Import() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "taxonomy", "import")
}

// Setup fetches and imports the taxonomy in one step.
func (Taxonomy) Setup() {
	mg.SerialDeps(Taxonomy.Fetch, Taxonomy.Import)
}

// Serve builds the CLI and starts the HTTP API.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "serve")
}

// codeStats holds the totals Stats prints.
type codeStats struct {
	prodLines int
	testLines int
	docWords  int
}

// Stats prints non-blank Go lines (production and test) and the word count
// of Markdown and YAML files.
func Stats() error {
	st, err := collectStats(".")
	if err != nil {
		return err
	}
	fmt.Printf("Lines of code (Go, production): %d\n", st.prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", st.testLines)
	fmt.Printf("Words (documentation):           %d\n", st.docWords)
	return nil
}

func collectStats(root string) (codeStats, error) {
	var st codeStats
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(path)
		switch ext {
		case ".go", ".md", ".yaml", ".yml":
		default:
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		switch {
		case strings.HasSuffix(path, "_test.go"):
			st.testLines += nonBlankLines(data)
		case ext == ".go":
			st.prodLines += nonBlankLines(data)
		default:
			st.docWords += len(bytes.Fields(data))
		}
		return nil
	})
	return st, err
}

func nonBlankLines(data []byte) int {
	n := 0
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) > 0 {
			n++
		}
	}
	return n
}

// skipDir reports whether a walk should not descend into a directory:
// hidden and underscore-prefixed directories and build output.
func skipDir(name string) bool {
	return name == binDir || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}
