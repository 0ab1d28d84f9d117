package dispatch

import (
	"fmt"

	"github.com/NikitaCOEUR/cmdtree/pkg/arguments"
	"github.com/NikitaCOEUR/cmdtree/pkg/cmderr"
	"github.com/NikitaCOEUR/cmdtree/pkg/reader"
	"github.com/NikitaCOEUR/cmdtree/pkg/suggestion"
)

// NodeID addresses a node inside its tree.
type NodeID int

// NoNode marks an absent node reference, such as a missing redirect.
const NoNode NodeID = -1

// RootID is the id of every tree's root node.
const RootID NodeID = 0

// Kind tags the node variant.
type Kind int

const (
	KindRoot Kind = iota
	KindLiteral
	KindArgument
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindLiteral:
		return "literal"
	case KindArgument:
		return "argument"
	}
	return "unknown"
}

// arena owns every node of one tree. Nodes refer to each other by index.
type arena[S any] struct {
	nodes []*Node[S]
}

func (a *arena[S]) get(id NodeID) *Node[S] {
	if id < 0 || int(id) >= len(a.nodes) {
		return nil
	}
	return a.nodes[id]
}

// Node is one vertex of a command tree. Literal and argument specific
// fields are only meaningful for their kind.
type Node[S any] struct {
	arena *arena[S]

	id     NodeID
	parent NodeID
	kind   Kind
	name   string

	children  []NodeID
	literals  map[string]NodeID
	arguments []NodeID

	command     Command[S]
	requirement Requirement[S]

	redirect NodeID
	modifier RedirectModifier[S]
	forks    bool

	argType  arguments.Type
	suggests SuggestionProvider[S]
}

func newNode[S any](a *arena[S], kind Kind, name string) *Node[S] {
	n := &Node[S]{
		arena:    a,
		id:       NodeID(len(a.nodes)),
		parent:   NoNode,
		kind:     kind,
		name:     name,
		literals: make(map[string]NodeID),
		redirect: NoNode,
	}
	a.nodes = append(a.nodes, n)
	return n
}

func (n *Node[S]) ID() NodeID          { return n.id }
func (n *Node[S]) Kind() Kind          { return n.kind }
func (n *Node[S]) Name() string        { return n.name }
func (n *Node[S]) Command() Command[S] { return n.command }
func (n *Node[S]) HasCommand() bool    { return n.command != nil }
func (n *Node[S]) Forks() bool         { return n.forks }

// Type returns the argument type, nil for other kinds
func (n *Node[S]) Type() arguments.Type { return n.argType }

// Modifier returns the redirect modifier, nil when sources pass through
func (n *Node[S]) Modifier() RedirectModifier[S] { return n.modifier }

// Parent returns the node this one was registered under, nil for the root
func (n *Node[S]) Parent() *Node[S] { return n.arena.get(n.parent) }

// Redirect returns the redirect target, nil when the node does not redirect
func (n *Node[S]) Redirect() *Node[S] { return n.arena.get(n.redirect) }

// Children returns the children in registration order.
func (n *Node[S]) Children() []*Node[S] {
	out := make([]*Node[S], len(n.children))
	for i, id := range n.children {
		out[i] = n.arena.nodes[id]
	}
	return out
}

// Child returns the child with the given name.
func (n *Node[S]) Child(name string) *Node[S] {
	for _, id := range n.children {
		if c := n.arena.nodes[id]; c.name == name {
			return c
		}
	}
	return nil
}

// HasLiteralChildren reports whether any child is a literal
func (n *Node[S]) HasLiteralChildren() bool { return len(n.literals) > 0 }

// HasArgumentChildren reports whether any child is an argument
func (n *Node[S]) HasArgumentChildren() bool { return len(n.arguments) > 0 }

// CanUse reports whether source satisfies the node requirement.
func (n *Node[S]) CanUse(source S) bool {
	return n.requirement == nil || n.requirement(source)
}

// UsageText is the node as it appears in usage strings.
func (n *Node[S]) UsageText() string {
	switch n.kind {
	case KindLiteral:
		return n.name
	case KindArgument:
		return UsageRequiredOpen + n.name + UsageRequiredClose
	}
	return ""
}

// Examples returns inputs the node accepts
func (n *Node[S]) Examples() []string {
	switch n.kind {
	case KindLiteral:
		return []string{n.name}
	case KindArgument:
		return n.argType.Examples()
	}
	return nil
}

// IsValidInput reports whether the node alone could match text completely.
func (n *Node[S]) IsValidInput(text string) bool {
	r := reader.New(text)
	switch n.kind {
	case KindLiteral:
		_, ok := n.matchLiteral(r)
		return ok
	case KindArgument:
		if _, err := n.argType.Parse(r); err != nil {
			return false
		}
		return atSeparator(r)
	}
	return false
}

func (n *Node[S]) String() string {
	switch n.kind {
	case KindLiteral:
		return "<literal " + n.name + ">"
	case KindArgument:
		return fmt.Sprintf("<argument %s:%v>", n.name, n.argType)
	}
	return "<root>"
}

// relevantChildren returns the children worth attempting at the cursor: the
// literal named by the next token if there is one, otherwise every argument.
func (n *Node[S]) relevantChildren(r *reader.StringReader) []*Node[S] {
	if len(n.literals) > 0 {
		token := nextToken(r)
		if id, ok := n.literals[token]; ok {
			return []*Node[S]{n.arena.nodes[id]}
		}
	}
	out := make([]*Node[S], len(n.arguments))
	for i, id := range n.arguments {
		out[i] = n.arena.nodes[id]
	}
	return out
}

// parse consumes this node's input and records it into ctx.
func (n *Node[S]) parse(r *reader.StringReader, ctx *ContextBuilder[S]) error {
	start := r.Cursor()
	switch n.kind {
	case KindLiteral:
		end, ok := n.matchLiteral(r)
		if !ok {
			return cmderr.New(cmderr.LiteralIncorrect, r.String(), start).WithValue(n.name)
		}
		ctx.withNode(n, reader.Between(start, end))
	case KindArgument:
		value, err := n.argType.Parse(r)
		if err != nil {
			return err
		}
		parsed := ParsedArgument{Range: reader.Between(start, r.Cursor()), Value: value}
		ctx.withArgument(n.name, parsed)
		ctx.withNode(n, parsed.Range)
	}
	return nil
}

func (n *Node[S]) matchLiteral(r *reader.StringReader) (int, bool) {
	start := r.Cursor()
	if !r.CanRead(len(n.name)) || r.String()[start:start+len(n.name)] != n.name {
		return 0, false
	}
	r.SetCursor(start + len(n.name))
	if !atSeparator(r) {
		r.SetCursor(start)
		return 0, false
	}
	return r.Cursor(), true
}

// listSuggestions completes this node for the text typed since b.Start().
func (n *Node[S]) listSuggestions(ctx *CommandContext[S], b *suggestion.Builder) (*suggestion.Suggestions, error) {
	switch n.kind {
	case KindLiteral:
		return b.SuggestMatching(n.name).Build(), nil
	case KindArgument:
		if n.suggests != nil {
			return n.suggests(ctx, b)
		}
		return arguments.ListSuggestions(n.argType, ctx, b)
	}
	return suggestion.Empty(), nil
}

// nextToken returns the text up to the next separator without moving r.
func nextToken(r *reader.StringReader) string {
	rest := r.Remaining()
	for i := 0; i < len(rest); i++ {
		if rest[i] == ArgumentSeparator {
			return rest[:i]
		}
	}
	return rest
}

func atSeparator(r *reader.StringReader) bool {
	return !r.CanReadRune() || r.Peek() == ArgumentSeparator
}
