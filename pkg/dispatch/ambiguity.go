package dispatch

// FindAmbiguities reports every ordered pair of argument siblings where
// some example of the first is valid input for the second. Literal
// children are skipped: a literal is always preferred over its argument
// siblings and literal names are unique, so they never make a parse depend
// on registration order.
func (d *Dispatcher[S]) FindAmbiguities(consumer AmbiguityConsumer[S]) {
	d.tree.Walk(func(n *Node[S], _ int) {
		findAmbiguities(n, consumer)
	})
}

func findAmbiguities[S any](parent *Node[S], consumer AmbiguityConsumer[S]) {
	if len(parent.arguments) < 2 {
		return
	}
	for _, cid := range parent.arguments {
		child := parent.arena.nodes[cid]
		for _, sid := range parent.arguments {
			if sid == cid {
				continue
			}
			sibling := parent.arena.nodes[sid]
			var matches []string
			for _, input := range child.Examples() {
				if sibling.IsValidInput(input) {
					matches = append(matches, input)
				}
			}
			if len(matches) > 0 {
				consumer(parent, child, sibling, matches)
			}
		}
	}
}

// Ambiguity is one pair reported by FindAmbiguities.
type Ambiguity[S any] struct {
	Parent  *Node[S]
	Child   *Node[S]
	Sibling *Node[S]
	Inputs  []string
}

// Ambiguities collects the pairs reported by FindAmbiguities.
func (d *Dispatcher[S]) Ambiguities() []Ambiguity[S] {
	var out []Ambiguity[S]
	d.FindAmbiguities(func(parent, child, sibling *Node[S], inputs []string) {
		out = append(out, Ambiguity[S]{Parent: parent, Child: child, Sibling: sibling, Inputs: inputs})
	})
	return out
}
