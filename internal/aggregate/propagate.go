// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"fmt"

	"github.com/pdiddy/taxoburst/pkg/types"
)

// propagate walks the deduplicated lineages once, adding each leaf's
// UnaCount to every ancestor's TotCount, linking the leaf as a child of
// each ancestor and recording depth indices. Because the lineages are
// unique, no node is counted twice under the same ancestor.
func propagate(nodes map[string]*types.Node, lineages []types.Lineage) error {
	root, ok := nodes[types.RootKey]
	if !ok {
		return fmt.Errorf("%w: missing root node", ErrInconsistent)
	}

	linked := make(map[[2]string]struct{})
	link := func(parent *types.Node, parentKey, childKey string) {
		edge := [2]string{parentKey, childKey}
		if _, dup := linked[edge]; dup {
			return
		}
		linked[edge] = struct{}{}
		parent.Children = append(parent.Children, childKey)
	}

	for _, ln := range lineages {
		leafKey := ln.Leaf().Key()
		leaf, ok := nodes[leafKey]
		if !ok {
			return fmt.Errorf("%w: lineage %s ends at unknown node %q", ErrInconsistent, ln, leafKey)
		}
		leaf.DepthIndex = len(ln) - 1

		for j := len(ln) - 2; j >= 1; j-- {
			key := ln[j].Key()
			ancestor, ok := nodes[key]
			if !ok {
				return fmt.Errorf("%w: lineage %s passes unknown node %q", ErrInconsistent, ln, key)
			}
			ancestor.TotCount += leaf.UnaCount
			link(ancestor, key, leafKey)
			ancestor.DepthIndex = j
		}

		if leafKey != types.RootKey {
			root.TotCount += leaf.UnaCount
			link(root, types.RootKey, leafKey)
		}
	}
	return nil
}
