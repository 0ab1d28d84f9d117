package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/NikitaCOEUR/cmdtree/pkg/arguments"
)

// Registration errors. These are programmer errors; MustRegister and
// MustBuild panic with them.
var (
	ErrRedirectWithChildren = errors.New("cannot redirect a node that has children")
	ErrChildrenOnRedirect   = errors.New("cannot add children to a redirecting node")
	ErrFrozen               = errors.New("tree is frozen")
	ErrUnknownNode          = errors.New("unknown node")
	ErrInvalidName          = errors.New("invalid node name")
)

// ArgumentBuilder describes a literal or argument node and its subtree
// before registration.
type ArgumentBuilder[S any] struct {
	kind     Kind
	name     string
	argType  arguments.Type
	suggests SuggestionProvider[S]

	children    []*ArgumentBuilder[S]
	command     Command[S]
	requirement Requirement[S]

	redirect NodeID
	modifier RedirectModifier[S]
	forks    bool

	err error
}

// Literal starts a node matching name exactly.
func Literal[S any](name string) *ArgumentBuilder[S] {
	b := &ArgumentBuilder[S]{kind: KindLiteral, name: name, redirect: NoNode}
	if name == "" || strings.ContainsRune(name, ArgumentSeparator) {
		b.err = fmt.Errorf("%w: literal %q", ErrInvalidName, name)
	}
	return b
}

// Arg starts a node parsing one value of typ, bound under name.
func Arg[S any](name string, typ arguments.Type) *ArgumentBuilder[S] {
	b := &ArgumentBuilder[S]{kind: KindArgument, name: name, argType: typ, redirect: NoNode}
	switch {
	case name == "":
		b.err = fmt.Errorf("%w: empty argument name", ErrInvalidName)
	case typ == nil:
		b.err = fmt.Errorf("%w: argument %q has no type", ErrInvalidName, name)
	}
	return b
}

func (b *ArgumentBuilder[S]) fail(err error) *ArgumentBuilder[S] {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Then adds child below this node.
func (b *ArgumentBuilder[S]) Then(child *ArgumentBuilder[S]) *ArgumentBuilder[S] {
	if b.redirect != NoNode {
		return b.fail(fmt.Errorf("%w: %q", ErrChildrenOnRedirect, b.name))
	}
	b.children = append(b.children, child)
	return b
}

// Executes sets the command run when parsing ends here.
func (b *ArgumentBuilder[S]) Executes(cmd Command[S]) *ArgumentBuilder[S] {
	b.command = cmd
	return b
}

// Requires restricts the node to sources satisfying req.
func (b *ArgumentBuilder[S]) Requires(req Requirement[S]) *ArgumentBuilder[S] {
	b.requirement = req
	return b
}

// Suggests overrides the suggestions of an argument node.
func (b *ArgumentBuilder[S]) Suggests(p SuggestionProvider[S]) *ArgumentBuilder[S] {
	b.suggests = p
	return b
}

// Redirect continues parsing at target with the same source.
func (b *ArgumentBuilder[S]) Redirect(target NodeID) *ArgumentBuilder[S] {
	return b.Forward(target, nil, false)
}

// RedirectWith continues parsing at target with the source replaced by modifier.
func (b *ArgumentBuilder[S]) RedirectWith(target NodeID, modifier SingleRedirectModifier[S]) *ArgumentBuilder[S] {
	return b.Forward(target, singleModifier(modifier), false)
}

// Fork continues parsing at target and runs the rest of the command once
// for every source modifier returns.
func (b *ArgumentBuilder[S]) Fork(target NodeID, modifier RedirectModifier[S]) *ArgumentBuilder[S] {
	return b.Forward(target, modifier, true)
}

// Forward sets the redirect target, modifier and fork flag.
func (b *ArgumentBuilder[S]) Forward(target NodeID, modifier RedirectModifier[S], fork bool) *ArgumentBuilder[S] {
	if len(b.children) > 0 {
		return b.fail(fmt.Errorf("%w: %q", ErrRedirectWithChildren, b.name))
	}
	b.redirect = target
	b.modifier = modifier
	b.forks = fork
	return b
}

func singleModifier[S any](m SingleRedirectModifier[S]) RedirectModifier[S] {
	if m == nil {
		return nil
	}
	return func(ctx *CommandContext[S]) ([]S, error) {
		s, err := m(ctx)
		if err != nil {
			return nil, err
		}
		return []S{s}, nil
	}
}

// validate checks the whole subtree before anything is registered.
func (b *ArgumentBuilder[S]) validate(known int) error {
	if b.err != nil {
		return b.err
	}
	if b.redirect != NoNode && (b.redirect < 0 || int(b.redirect) >= known) {
		return fmt.Errorf("%w: %q redirects to %d", ErrUnknownNode, b.name, b.redirect)
	}
	for _, c := range b.children {
		if err := c.validate(known); err != nil {
			return err
		}
	}
	return nil
}

// TreeBuilder assembles a tree. It is not safe for concurrent use.
type TreeBuilder[S any] struct {
	arena  *arena[S]
	frozen bool
}

// NewTreeBuilder creates a builder holding only the root.
func NewTreeBuilder[S any]() *TreeBuilder[S] {
	a := &arena[S]{}
	newNode(a, KindRoot, "")
	return &TreeBuilder[S]{arena: a}
}

// Root returns the root id
func (t *TreeBuilder[S]) Root() NodeID { return RootID }

// Literal is Literal[S] without spelling out the source type.
func (t *TreeBuilder[S]) Literal(name string) *ArgumentBuilder[S] { return Literal[S](name) }

// Arg is Arg[S] without spelling out the source type.
func (t *TreeBuilder[S]) Arg(name string, typ arguments.Type) *ArgumentBuilder[S] {
	return Arg[S](name, typ)
}

// Node returns a registered node, or nil
func (t *TreeBuilder[S]) Node(id NodeID) *Node[S] { return t.arena.get(id) }

// FindNode resolves a path of child names from the root.
func (t *TreeBuilder[S]) FindNode(path ...string) (NodeID, bool) {
	if n := findPath(t.arena, path); n != nil {
		return n.id, true
	}
	return NoNode, false
}

// Register adds b below the root.
func (t *TreeBuilder[S]) Register(b *ArgumentBuilder[S]) (NodeID, error) {
	return t.RegisterUnder(RootID, b)
}

// RegisterUnder adds b below parent. A child with the same name as an
// existing one is merged into it: its command replaces the existing one and
// its children are registered below the existing node.
func (t *TreeBuilder[S]) RegisterUnder(parent NodeID, b *ArgumentBuilder[S]) (NodeID, error) {
	if t.frozen {
		return NoNode, ErrFrozen
	}
	p := t.arena.get(parent)
	if p == nil {
		return NoNode, fmt.Errorf("%w: %d", ErrUnknownNode, parent)
	}
	if p.redirect != NoNode {
		return NoNode, fmt.Errorf("%w: %q", ErrChildrenOnRedirect, p.name)
	}
	if err := b.validate(len(t.arena.nodes)); err != nil {
		return NoNode, err
	}
	if err := checkMerge(p, b); err != nil {
		return NoNode, err
	}
	return t.add(p, b), nil
}

// checkMerge rejects registrations that would add children below an
// existing redirecting node, or merge a literal with an argument of the
// same name.
func checkMerge[S any](parent *Node[S], b *ArgumentBuilder[S]) error {
	existing := parent.Child(b.name)
	if existing == nil {
		return nil
	}
	if existing.kind != b.kind {
		return fmt.Errorf("%w: %q is already registered as %s", ErrInvalidName, b.name, existing.kind)
	}
	if existing.redirect != NoNode && len(b.children) > 0 {
		return fmt.Errorf("%w: %q", ErrChildrenOnRedirect, b.name)
	}
	for _, c := range b.children {
		if err := checkMerge(existing, c); err != nil {
			return err
		}
	}
	return nil
}

func (t *TreeBuilder[S]) add(parent *Node[S], b *ArgumentBuilder[S]) NodeID {
	if existing := parent.Child(b.name); existing != nil {
		if b.command != nil {
			existing.command = b.command
		}
		for _, c := range b.children {
			t.add(existing, c)
		}
		return existing.id
	}

	n := newNode(t.arena, b.kind, b.name)
	n.parent = parent.id
	n.command = b.command
	n.requirement = b.requirement
	n.redirect = b.redirect
	n.modifier = b.modifier
	n.forks = b.forks
	n.argType = b.argType
	n.suggests = b.suggests

	parent.children = append(parent.children, n.id)
	switch n.kind {
	case KindLiteral:
		parent.literals[n.name] = n.id
	case KindArgument:
		parent.arguments = append(parent.arguments, n.id)
	}

	for _, c := range b.children {
		t.add(n, c)
	}
	return n.id
}

// MustRegister is Register that panics on error.
func (t *TreeBuilder[S]) MustRegister(b *ArgumentBuilder[S]) NodeID {
	id, err := t.Register(b)
	if err != nil {
		panic(err)
	}
	return id
}

// SetRedirect makes an already registered childless node redirect to
// target. It lets a host wire redirects to nodes registered after the
// redirecting one.
func (t *TreeBuilder[S]) SetRedirect(id, target NodeID, modifier RedirectModifier[S], fork bool) error {
	if t.frozen {
		return ErrFrozen
	}
	n := t.arena.get(id)
	if n == nil || n.kind == KindRoot {
		return fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	if t.arena.get(target) == nil {
		return fmt.Errorf("%w: %q redirects to %d", ErrUnknownNode, n.name, target)
	}
	if len(n.children) > 0 {
		return fmt.Errorf("%w: %q", ErrRedirectWithChildren, n.name)
	}
	n.redirect = target
	n.modifier = modifier
	n.forks = fork
	return nil
}

// Build freezes the builder and returns the tree. Later calls to Register
// fail with ErrFrozen.
func (t *TreeBuilder[S]) Build() (*Tree[S], error) {
	if t.frozen {
		return nil, ErrFrozen
	}
	for _, n := range t.arena.nodes {
		if n.redirect != NoNode && len(n.children) > 0 {
			return nil, fmt.Errorf("%w: %q", ErrRedirectWithChildren, n.name)
		}
	}
	t.frozen = true
	return &Tree[S]{arena: t.arena}, nil
}

// MustBuild is Build that panics on error.
func (t *TreeBuilder[S]) MustBuild() *Tree[S] {
	tree, err := t.Build()
	if err != nil {
		panic(err)
	}
	return tree
}
