// Package tree assembles the flat collection list into a parent/child
// forest and walks it.
package tree

import (
	"slices"
	"strings"

	"github.com/taigrr/raindrop-sync/internal/types"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// PathSeparator joins titles in a display path.
const PathSeparator = " > "

type (
	// Node wraps a collection with its children in source order.
	Node struct {
		Collection types.Collection
		Children   []*Node
	}

	// Tree is a forest of collections plus an id index over every node.
	Tree struct {
		Roots []*Node
		Index map[int]*Node
	}

	// Step is one entry of a traversal plan.
	Step struct {
		Node     *Node
		Depth    int // 1 for roots
		Selected bool
	}
)

// ID returns the wrapped collection id.
func (n *Node) ID() int { return n.Collection.ID }

// Title returns the wrapped collection title.
func (n *Node) Title() string { return n.Collection.Title }

// Build wraps every collection in a node and attaches it to its parent when
// the parent id resolves. Unresolvable parents make a root. A parent link
// that would close a cycle is dropped and the node becomes a root, so every
// collection appears exactly once.
func Build(collections []types.Collection) *Tree {
	t := &Tree{Index: make(map[int]*Node, len(collections))}

	var order []*Node
	for _, c := range collections {
		if n, ok := t.Index[c.ID]; ok {
			n.Collection = c
			continue
		}
		n := &Node{Collection: c}
		t.Index[c.ID] = n
		order = append(order, n)
	}

	attached := make(map[int]int, len(order))
	for _, n := range order {
		if !n.Collection.HasParent() {
			t.Roots = append(t.Roots, n)
			continue
		}
		parentID := *n.Collection.ParentID
		parent, ok := t.Index[parentID]
		if !ok || createsCycle(attached, parentID, n.ID()) {
			t.Roots = append(t.Roots, n)
			continue
		}
		attached[n.ID()] = parentID
		parent.Children = append(parent.Children, n)
	}
	return t
}

// createsCycle reports whether id is reachable walking up from parentID
// through the links attached so far.
func createsCycle(attached map[int]int, parentID, id int) bool {
	visited := map[int]bool{}
	for cur := parentID; ; {
		if cur == id {
			return true
		}
		if visited[cur] {
			return false
		}
		visited[cur] = true
		next, ok := attached[cur]
		if !ok {
			return false
		}
		cur = next
	}
}

// CollectSelected returns, in pre-order, every node under and including
// node whose id is selected. Selection is not inherited from ancestors.
func CollectSelected(node *Node, selected map[int]bool) []*Node {
	var out []*Node
	walk(node, 1, map[*Node]bool{}, func(n *Node, _ int) {
		if selected[n.ID()] {
			out = append(out, n)
		}
	})
	return out
}

// Plan returns the pre-order traversal of root in source order, marking
// which nodes are selected. Unselected nodes are kept so their selected
// descendants keep their depth.
func Plan(root *Node, selected map[int]bool) []Step {
	var steps []Step
	walk(root, 1, map[*Node]bool{}, func(n *Node, depth int) {
		steps = append(steps, Step{Node: n, Depth: depth, Selected: selected[n.ID()]})
	})
	return steps
}

// Descendants returns the ids below id in pre-order, excluding id itself.
func (t *Tree) Descendants(id int) []int {
	n, ok := t.Index[id]
	if !ok {
		return nil
	}
	var ids []int
	walk(n, 1, map[*Node]bool{}, func(d *Node, _ int) {
		if d != n {
			ids = append(ids, d.ID())
		}
	})
	return ids
}

// ResolvePath walks parent links from id to its root and returns the
// " > "-joined title path and the root title. Unknown ids yield empty
// strings.
func (t *Tree) ResolvePath(id int) (path, root string) {
	chain := t.ancestry(id)
	if len(chain) == 0 {
		return "", ""
	}

	titles := make([]string, len(chain))
	for i, n := range chain {
		titles[len(chain)-1-i] = n.Title()
	}
	return strings.Join(titles, PathSeparator), titles[0]
}

// RootOf returns the top-level ancestor of id, the node whose title
// ResolvePath reports as root.
func (t *Tree) RootOf(id int) (*Node, bool) {
	chain := t.ancestry(id)
	if len(chain) == 0 {
		return nil, false
	}
	return chain[len(chain)-1], true
}

// ancestry lists id's node followed by its parents, stopping at a missing
// parent or a repeated id.
func (t *Tree) ancestry(id int) []*Node {
	n, ok := t.Index[id]
	if !ok {
		return nil
	}

	var chain []*Node
	visited := map[int]bool{}
	for n != nil && !visited[n.ID()] {
		visited[n.ID()] = true
		chain = append(chain, n)
		if !n.Collection.HasParent() {
			break
		}
		n = t.Index[*n.Collection.ParentID]
	}
	return chain
}

// Sorted returns a copy of nodes ordered by title for display.
func Sorted(nodes []*Node) []*Node {
	col := collate.New(language.Und, collate.IgnoreCase)
	out := slices.Clone(nodes)
	slices.SortStableFunc(out, func(a, b *Node) int {
		return col.CompareString(a.Title(), b.Title())
	})
	return out
}

func walk(n *Node, depth int, visited map[*Node]bool, fn func(*Node, int)) {
	if n == nil || visited[n] {
		return
	}
	visited[n] = true
	fn(n, depth)
	for _, child := range n.Children {
		walk(child, depth+1, visited, fn)
	}
}
