package dispatch

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/NikitaCOEUR/cmdtree/pkg/reader"
)

var (
	// ErrNoSuchArgument is returned by Argument for names not parsed.
	ErrNoSuchArgument = errors.New("no such argument")
	// ErrArgumentType is returned by Argument when the value has another type.
	ErrArgumentType = errors.New("argument has a different type")
)

// ParsedArgument is the range and value of one parsed argument.
type ParsedArgument struct {
	Range reader.StringRange
	Value any
}

// ParsedNode is a node matched during parsing and the input it consumed.
type ParsedNode[S any] struct {
	Node  *Node[S]
	Range reader.StringRange
}

// CommandContext is the result of parsing one segment of a command line.
// Each redirect taken starts a new segment linked through Child.
type CommandContext[S any] struct {
	source    S
	input     string
	arguments map[string]ParsedArgument
	command   Command[S]
	rootNode  *Node[S]
	nodes     []ParsedNode[S]
	rng       reader.StringRange
	child     *CommandContext[S]
	modifier  RedirectModifier[S]
	forks     bool
}

func (c *CommandContext[S]) Source() S                     { return c.source }
func (c *CommandContext[S]) Input() string                 { return c.input }
func (c *CommandContext[S]) Range() reader.StringRange     { return c.rng }
func (c *CommandContext[S]) Command() Command[S]           { return c.command }
func (c *CommandContext[S]) RootNode() *Node[S]            { return c.rootNode }
func (c *CommandContext[S]) Nodes() []ParsedNode[S]        { return c.nodes }
func (c *CommandContext[S]) Child() *CommandContext[S]     { return c.child }
func (c *CommandContext[S]) Modifier() RedirectModifier[S] { return c.modifier }
func (c *CommandContext[S]) IsForked() bool                { return c.forks }
func (c *CommandContext[S]) HasNodes() bool                { return len(c.nodes) > 0 }

// LastChild follows the redirect chain to its end.
func (c *CommandContext[S]) LastChild() *CommandContext[S] {
	last := c
	for last.child != nil {
		last = last.child
	}
	return last
}

// ArgumentValue returns the raw value bound to name.
func (c *CommandContext[S]) ArgumentValue(name string) (any, bool) {
	a, ok := c.arguments[name]
	if !ok {
		return nil, false
	}
	return a.Value, true
}

// ParsedArgument returns the range and value bound to name.
func (c *CommandContext[S]) ParsedArgument(name string) (ParsedArgument, bool) {
	a, ok := c.arguments[name]
	return a, ok
}

// ArgumentNames returns the bound argument names in parse order.
func (c *CommandContext[S]) ArgumentNames() []string {
	var names []string
	for _, n := range c.nodes {
		if n.Node.kind == KindArgument {
			names = append(names, n.Node.name)
		}
	}
	return names
}

// CopyFor returns the context with source replaced.
func (c *CommandContext[S]) CopyFor(source S) *CommandContext[S] {
	cp := *c
	cp.source = source
	return &cp
}

// Argument returns the value of argument name as a T.
func Argument[T any, S any](ctx *CommandContext[S], name string) (T, error) {
	var zero T
	raw, ok := ctx.ArgumentValue(name)
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrNoSuchArgument, name)
	}
	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q is %T, not %T", ErrArgumentType, name, raw, zero)
	}
	return v, nil
}

// ContextBuilder accumulates one segment while parsing.
type ContextBuilder[S any] struct {
	source    S
	rootNode  *Node[S]
	arguments map[string]ParsedArgument
	nodes     []ParsedNode[S]
	rng       reader.StringRange
	command   Command[S]
	child     *ContextBuilder[S]
	modifier  RedirectModifier[S]
	forks     bool
}

func newContextBuilder[S any](source S, root *Node[S], start int) *ContextBuilder[S] {
	return &ContextBuilder[S]{
		source:    source,
		rootNode:  root,
		arguments: make(map[string]ParsedArgument),
		rng:       reader.At(start),
	}
}

func (b *ContextBuilder[S]) Source() S                 { return b.source }
func (b *ContextBuilder[S]) RootNode() *Node[S]        { return b.rootNode }
func (b *ContextBuilder[S]) Range() reader.StringRange { return b.rng }
func (b *ContextBuilder[S]) Nodes() []ParsedNode[S]    { return b.nodes }
func (b *ContextBuilder[S]) Command() Command[S]       { return b.command }
func (b *ContextBuilder[S]) Child() *ContextBuilder[S] { return b.child }

// Arguments returns a copy of the bound arguments
func (b *ContextBuilder[S]) Arguments() map[string]ParsedArgument {
	return maps.Clone(b.arguments)
}

// LastChild follows the redirect chain to its end.
func (b *ContextBuilder[S]) LastChild() *ContextBuilder[S] {
	last := b
	for last.child != nil {
		last = last.child
	}
	return last
}

// frontier is the last matched node of the segment, or its root.
func (b *ContextBuilder[S]) frontier() *Node[S] {
	if len(b.nodes) == 0 {
		return b.rootNode
	}
	return b.nodes[len(b.nodes)-1].Node
}

func (b *ContextBuilder[S]) copy() *ContextBuilder[S] {
	cp := *b
	cp.arguments = maps.Clone(b.arguments)
	cp.nodes = slices.Clone(b.nodes)
	return &cp
}

func (b *ContextBuilder[S]) withArgument(name string, a ParsedArgument) {
	b.arguments[name] = a
}

func (b *ContextBuilder[S]) withNode(n *Node[S], r reader.StringRange) {
	b.nodes = append(b.nodes, ParsedNode[S]{Node: n, Range: r})
	b.rng = reader.Encompassing(b.rng, r)
	b.modifier = n.modifier
	b.forks = n.forks
}

// Build freezes the chain into contexts over input.
func (b *ContextBuilder[S]) Build(input string) *CommandContext[S] {
	ctx := &CommandContext[S]{
		source:    b.source,
		input:     input,
		arguments: maps.Clone(b.arguments),
		command:   b.command,
		rootNode:  b.rootNode,
		nodes:     slices.Clone(b.nodes),
		rng:       b.rng,
		modifier:  b.modifier,
		forks:     b.forks,
	}
	if b.child != nil {
		ctx.child = b.child.Build(input)
	}
	return ctx
}

type suggestionContext[S any] struct {
	parent *Node[S]
	start  int
}

// findSuggestionContext locates the node whose children complete the text
// at cursor, and the offset their suggestions replace from.
func (b *ContextBuilder[S]) findSuggestionContext(cursor int) suggestionContext[S] {
	if b.rng.Start > cursor {
		return suggestionContext[S]{parent: b.rootNode, start: b.rng.Start}
	}
	if b.rng.End < cursor {
		if b.child != nil {
			return b.child.findSuggestionContext(cursor)
		}
		if len(b.nodes) > 0 {
			last := b.nodes[len(b.nodes)-1]
			return suggestionContext[S]{parent: last.Node, start: last.Range.End + 1}
		}
		return suggestionContext[S]{parent: b.rootNode, start: b.rng.Start}
	}
	prev := b.rootNode
	for _, n := range b.nodes {
		if n.Range.Start <= cursor && cursor <= n.Range.End {
			return suggestionContext[S]{parent: prev, start: n.Range.Start}
		}
		prev = n.Node
	}
	return suggestionContext[S]{parent: prev, start: b.rng.Start}
}
