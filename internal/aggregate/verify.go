// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"fmt"

	"github.com/pdiddy/taxoburst/pkg/types"
)

// Verify checks the tree invariants of res:
//
//   - every node's TotCount equals its UnaCount plus the UnaCount of each
//     distinct node linked beneath it, and is never below UnaCount;
//   - Children hold no duplicates, no self links and no unknown keys;
//   - the root's TotCount equals the sum of UnaCount over all nodes and,
//     when records is not negative, the number of input records;
//   - every lineage starts at the root and ends at a known node.
func Verify(res *types.Result, records int) error {
	root := res.Root()
	if root == nil {
		return fmt.Errorf("%w: missing root node", ErrInconsistent)
	}

	sum := 0
	for key, n := range res.Nodes {
		sum += n.UnaCount
		if n.TotCount < n.UnaCount {
			return fmt.Errorf("%w: %q total %d below own count %d", ErrInconsistent, key, n.TotCount, n.UnaCount)
		}

		seen := make(map[string]struct{}, len(n.Children))
		want := n.UnaCount
		for _, c := range n.Children {
			if c == key {
				return fmt.Errorf("%w: %q lists itself as a child", ErrInconsistent, key)
			}
			if _, dup := seen[c]; dup {
				return fmt.Errorf("%w: %q lists child %q twice", ErrInconsistent, key, c)
			}
			seen[c] = struct{}{}
			child, ok := res.Nodes[c]
			if !ok {
				return fmt.Errorf("%w: %q links unknown child %q", ErrInconsistent, key, c)
			}
			want += child.UnaCount
		}
		if n.TotCount != want {
			return fmt.Errorf("%w: %q total %d, subtree sum %d", ErrInconsistent, key, n.TotCount, want)
		}
	}

	if root.TotCount != sum {
		return fmt.Errorf("%w: root total %d, sum of own counts %d", ErrInconsistent, root.TotCount, sum)
	}
	if records >= 0 && root.TotCount != records {
		return fmt.Errorf("%w: root total %d, %d records", ErrInconsistent, root.TotCount, records)
	}

	for _, ln := range res.Lineages {
		if len(ln) == 0 || ln[0] != types.RootStep {
			return fmt.Errorf("%w: lineage %s does not start at root", ErrInconsistent, ln)
		}
		if _, ok := res.Nodes[ln.Leaf().Key()]; !ok {
			return fmt.Errorf("%w: lineage %s ends at unknown node", ErrInconsistent, ln)
		}
	}
	return nil
}
