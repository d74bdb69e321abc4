// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package table parses tab-separated classification tables into records.
//
// The first line is a header. Column 1 holds a gene identifier, column 2 a
// taxon ID ("NA" or empty for unclassified), and the optional columns 3 and
// 4 hold a numeric score and a free-text FASTA header. Whether the optional
// columns are present is decided by the header alone.
package table

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pdiddy/taxoburst/pkg/types"
)

var (
	// ErrEmptyInput is returned when the table has no header line.
	ErrEmptyInput = errors.New("empty classification table")

	// ErrMalformedRow is returned for a data row with fewer than two columns.
	ErrMalformedRow = errors.New("malformed row")

	// ErrInvalidScore is returned when column 3 is present but not numeric.
	ErrInvalidScore = errors.New("invalid score")
)

// Header keywords, matched case-insensitively as substrings.
const (
	scoreKeyword  = "evalue"
	headerKeyword = "fasta"
)

// Table is a parsed classification table.
type Table struct {
	Records        []types.Record
	ScoresEnabled  bool
	HeadersEnabled bool
}

// Parse reads a whole table from r. Any malformed row aborts the parse;
// no partial table is returned.
func Parse(r io.Reader) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, fmt.Errorf("reading table: %w", err)
	}
	return ParseString(string(data))
}

// ParseString parses a table held in memory.
func ParseString(s string) (Table, error) {
	s = strings.TrimSuffix(s, "\n")
	if strings.TrimSpace(s) == "" {
		return Table{}, ErrEmptyInput
	}

	lines := strings.Split(s, "\n")
	header := strings.ToLower(lines[0])
	t := Table{
		ScoresEnabled:  strings.Contains(header, scoreKeyword),
		HeadersEnabled: strings.Contains(header, headerKeyword),
		Records:        make([]types.Record, 0, len(lines)-1),
	}

	for i, line := range lines[1:] {
		rec, err := parseRow(line)
		if err != nil {
			// Line numbers are 1-based and count the header.
			return Table{}, fmt.Errorf("line %d: %w", i+2, err)
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

func parseRow(line string) (types.Record, error) {
	fields := strings.Split(line, "\t")
	for i := range fields {
		fields[i] = strings.ReplaceAll(fields[i], "\r", "")
	}
	if len(fields) < 2 {
		return types.Record{}, fmt.Errorf("%w: want at least 2 tab-separated columns, got %d", ErrMalformedRow, len(fields))
	}

	rec := types.Record{
		GeneName: fields[0],
		TaxID:    NormalizeTaxID(fields[1]),
	}

	if len(fields) >= 3 && fields[2] != "" {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			return types.Record{}, fmt.Errorf("%w %q: %v", ErrInvalidScore, fields[2], err)
		}
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return types.Record{}, fmt.Errorf("%w %q: not a finite number", ErrInvalidScore, fields[2])
		}
		rec.Score = &v
	}
	if len(fields) >= 4 && fields[3] != "" {
		h := fields[3]
		rec.Header = &h
	}
	return rec, nil
}

// NormalizeTaxID maps the unclassified markers "" and "NA" to the root ID.
func NormalizeTaxID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || id == "NA" {
		return types.RootTaxID
	}
	return id
}
