package dispatch

import "slices"

// Tree is a frozen command tree. It has no mutating methods.
type Tree[S any] struct {
	arena *arena[S]
}

// Root returns the root node
func (t *Tree[S]) Root() *Node[S] { return t.arena.nodes[RootID] }

// Node returns the node with id, or nil.
func (t *Tree[S]) Node(id NodeID) *Node[S] { return t.arena.get(id) }

// Len returns the number of nodes, root included
func (t *Tree[S]) Len() int { return len(t.arena.nodes) }

// Nodes returns all nodes in id order.
func (t *Tree[S]) Nodes() []*Node[S] { return slices.Clone(t.arena.nodes) }

// Path returns the names from the root down to id. The root has an empty path.
func (t *Tree[S]) Path(id NodeID) []string {
	return pathOf(t.arena, id)
}

// FindNode resolves a path of child names starting at the root.
func (t *Tree[S]) FindNode(path ...string) (*Node[S], bool) {
	n := findPath(t.arena, path)
	return n, n != nil
}

// Walk visits every node below and including the root depth first, in
// registration order. Redirects are not followed.
func (t *Tree[S]) Walk(fn func(n *Node[S], depth int)) {
	var walk func(n *Node[S], depth int)
	walk = func(n *Node[S], depth int) {
		fn(n, depth)
		for _, c := range n.Children() {
			walk(c, depth+1)
		}
	}
	walk(t.Root(), 0)
}

func pathOf[S any](a *arena[S], id NodeID) []string {
	var path []string
	for n := a.get(id); n != nil && n.kind != KindRoot; n = a.get(n.parent) {
		path = append(path, n.name)
	}
	slices.Reverse(path)
	return path
}

func findPath[S any](a *arena[S], path []string) *Node[S] {
	n := a.get(RootID)
	for _, name := range path {
		if n = n.Child(name); n == nil {
			return nil
		}
	}
	return n
}
