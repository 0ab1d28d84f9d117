package dispatch

import (
	"slices"
	"strings"
)

// AllUsage lists one usage line for every executable path and redirect
// below node. With restricted set, nodes source cannot use are skipped.
func (d *Dispatcher[S]) AllUsage(node *Node[S], source S, restricted bool) []string {
	var result []string
	d.allUsage(node, source, &result, "", restricted)
	return result
}

func (d *Dispatcher[S]) allUsage(node *Node[S], source S, result *[]string, prefix string, restricted bool) {
	if restricted && !node.CanUse(source) {
		return
	}
	if node.command != nil {
		*result = append(*result, prefix)
	}
	if target := node.Redirect(); target != nil {
		redirect := d.redirectUsage(target)
		if prefix == "" {
			*result = append(*result, node.UsageText()+" "+redirect)
		} else {
			*result = append(*result, prefix+" "+redirect)
		}
		return
	}
	for _, child := range node.Children() {
		next := child.UsageText()
		if prefix != "" {
			next = prefix + " " + next
		}
		d.allUsage(child, source, result, next, restricted)
	}
}

// NodeUsage is the compact usage of one child.
type NodeUsage[S any] struct {
	Node  *Node[S]
	Usage string
}

// SmartUsage returns a compact usage string for each usable child of node,
// in registration order.
func (d *Dispatcher[S]) SmartUsage(node *Node[S], source S) []NodeUsage[S] {
	var result []NodeUsage[S]
	optional := node.command != nil
	for _, child := range node.Children() {
		if usage, ok := d.smartUsage(child, source, optional, false); ok {
			result = append(result, NodeUsage[S]{Node: child, Usage: usage})
		}
	}
	return result
}

func (d *Dispatcher[S]) smartUsage(node *Node[S], source S, optional, deep bool) (string, bool) {
	if !node.CanUse(source) {
		return "", false
	}

	self := node.UsageText()
	if optional {
		self = UsageOptionalOpen + self + UsageOptionalClose
	}
	if deep {
		return self, true
	}

	childOptional := node.command != nil
	open, closing := UsageRequiredOpen, UsageRequiredClose
	if childOptional {
		open, closing = UsageOptionalOpen, UsageOptionalClose
	}

	if target := node.Redirect(); target != nil {
		return self + " " + d.redirectUsage(target), true
	}

	var children []*Node[S]
	for _, c := range node.Children() {
		if c.CanUse(source) {
			children = append(children, c)
		}
	}

	switch {
	case len(children) == 1:
		if usage, ok := d.smartUsage(children[0], source, childOptional, childOptional); ok {
			return self + " " + usage, true
		}
	case len(children) > 1:
		var distinct []string
		for _, c := range children {
			usage, ok := d.smartUsage(c, source, childOptional, true)
			if ok && !slices.Contains(distinct, usage) {
				distinct = append(distinct, usage)
			}
		}
		if len(distinct) == 1 {
			usage := distinct[0]
			if childOptional {
				usage = UsageOptionalOpen + usage + UsageOptionalClose
			}
			return self + " " + usage, true
		}
		if len(distinct) > 1 {
			texts := make([]string, len(children))
			for i, c := range children {
				texts[i] = c.UsageText()
			}
			return self + " " + open + strings.Join(texts, UsageOr) + closing, true
		}
	}
	return self, true
}

func (d *Dispatcher[S]) redirectUsage(target *Node[S]) string {
	if target.kind == KindRoot {
		return UsageRedirectRoot
	}
	return UsageRedirect + " " + target.UsageText()
}
