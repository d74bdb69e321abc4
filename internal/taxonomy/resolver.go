// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package taxonomy resolves taxon IDs to names, ranks and lineages, and
// looks up IDs by scientific name. The SQLite-backed Store is built from
// an NCBI taxdump; MemResolver serves small fixed taxonomies.
package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"golang.org/x/text/cases"

	"github.com/pdiddy/taxoburst/pkg/types"
)

var (
	// ErrTaxonNotFound is returned when an ID is absent from the database.
	ErrTaxonNotFound = errors.New("taxon not found")

	// ErrNameNotFound is returned when no taxon carries the queried name.
	ErrNameNotFound = errors.New("name not found")

	// ErrAmbiguousName is returned when several taxa share the queried name.
	ErrAmbiguousName = errors.New("ambiguous name")
)

// maxDepth bounds parent walks so a corrupt database cannot loop forever.
const maxDepth = 256

// Resolver answers taxonomy queries. Implementations are read-only and
// safe for concurrent use.
type Resolver interface {
	// Resolve returns the taxon for id with its root-first lineage.
	Resolve(ctx context.Context, id string) (types.Taxon, error)

	// LookupID returns the single taxon ID whose scientific name matches
	// name, or ErrNameNotFound / ErrAmbiguousName.
	LookupID(ctx context.Context, name string) (string, error)
}

// foldName normalizes a name for case-insensitive comparison.
func foldName(name string) string {
	return cases.Fold().String(name)
}

// pickOne turns a candidate ID list into a lookup answer.
func pickOne(name string, ids []string) (string, error) {
	ids = slices.Compact(slices.Sorted(slices.Values(ids)))
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %q", ErrNameNotFound, name)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %q matches taxa %v", ErrAmbiguousName, name, ids)
	}
}

// MemTaxon is one row of an in-memory taxonomy.
type MemTaxon struct {
	ID       string `json:"id" yaml:"id"`
	ParentID string `json:"parent_id" yaml:"parent_id"`
	Name     string `json:"name" yaml:"name"`
	Rank     string `json:"rank" yaml:"rank"`
}

// MemResolver is an immutable Resolver over a fixed set of taxa.
type MemResolver struct {
	byID   map[string]MemTaxon
	byName map[string][]string
	byFold map[string][]string
	merged map[string]string
}

// NewMemResolver indexes taxa. The root (ID "1") is added when missing.
// merged maps retired IDs to their replacements and may be nil.
func NewMemResolver(taxa []MemTaxon, merged map[string]string) (*MemResolver, error) {
	m := &MemResolver{
		byID:   make(map[string]MemTaxon, len(taxa)+1),
		byName: make(map[string][]string),
		byFold: make(map[string][]string),
		merged: make(map[string]string, len(merged)),
	}
	for _, t := range taxa {
		if t.ID == "" {
			return nil, fmt.Errorf("taxon %q has no ID", t.Name)
		}
		if _, dup := m.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate taxon ID %s", t.ID)
		}
		m.byID[t.ID] = t
		m.byName[t.Name] = append(m.byName[t.Name], t.ID)
		f := foldName(t.Name)
		m.byFold[f] = append(m.byFold[f], t.ID)
	}
	if _, ok := m.byID[types.RootTaxID]; !ok {
		m.byID[types.RootTaxID] = MemTaxon{ID: types.RootTaxID, ParentID: types.RootTaxID, Name: types.RootName, Rank: "no rank"}
	}
	for k, v := range merged {
		m.merged[k] = v
	}
	return m, nil
}

// Resolve implements Resolver.
func (m *MemResolver) Resolve(ctx context.Context, id string) (types.Taxon, error) {
	if err := ctx.Err(); err != nil {
		return types.Taxon{}, err
	}
	if newID, ok := m.merged[id]; ok {
		id = newID
	}
	return buildTaxon(id, func(cur string) (string, string, string, bool) {
		t, ok := m.byID[cur]
		return t.ParentID, t.Name, t.Rank, ok
	})
}

// LookupID implements Resolver.
func (m *MemResolver) LookupID(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if ids := m.byName[name]; len(ids) > 0 {
		return pickOne(name, ids)
	}
	return pickOne(name, m.byFold[foldName(name)])
}

// Names returns every scientific name, sorted.
func (m *MemResolver) Names() []string {
	names := make([]string, 0, len(m.byName))
	for n := range m.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// nodeFunc fetches the parent, name and rank of one taxon.
type nodeFunc func(id string) (parent, name, rank string, ok bool)

// buildTaxon walks from id up to the root and returns the taxon with a
// root-first lineage. The database root is represented by types.RootStep.
func buildTaxon(id string, node nodeFunc) (types.Taxon, error) {
	if id == types.RootTaxID {
		return types.Taxon{
			ID:      types.RootTaxID,
			Name:    types.RootName,
			Rank:    types.RootRank,
			Lineage: types.Lineage{types.RootStep},
		}, nil
	}

	parent, name, rank, ok := node(id)
	if !ok {
		return types.Taxon{}, fmt.Errorf("%w: %s", ErrTaxonNotFound, id)
	}
	taxon := types.Taxon{ID: id, Name: name, Rank: rank}

	// Leaf first, reversed below.
	steps := types.Lineage{{Rank: rank, Name: name}}
	cur := parent
	for depth := 0; cur != types.RootTaxID; depth++ {
		if depth >= maxDepth {
			return types.Taxon{}, fmt.Errorf("lineage of %s exceeds %d levels", id, maxDepth)
		}
		p, n, r, ok := node(cur)
		if !ok {
			return types.Taxon{}, fmt.Errorf("%w: %s (ancestor of %s)", ErrTaxonNotFound, cur, id)
		}
		steps = append(steps, types.RankName{Rank: r, Name: n})
		cur = p
	}
	steps = append(steps, types.RootStep)
	slices.Reverse(steps)
	taxon.Lineage = steps
	return taxon, nil
}
