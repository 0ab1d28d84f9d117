// Package grammar compiles a loaded grammar into a frozen command tree over
// config.Source.
package grammar

import (
	"errors"
	"fmt"
	"io"

	"github.com/NikitaCOEUR/cmdtree/internal/condition"
	"github.com/NikitaCOEUR/cmdtree/internal/config"
	"github.com/NikitaCOEUR/cmdtree/internal/derrors"
	"github.com/NikitaCOEUR/cmdtree/internal/logger"
	"github.com/NikitaCOEUR/cmdtree/pkg/dispatch"
)

// AnonymousSource is used when a grammar declares no sources.
const AnonymousSource = "anonymous"

// Options configures Compile.
type Options struct {
	// Out receives the rendered output of run templates. Nil discards it.
	Out    io.Writer
	Logger *logger.Logger
}

// Compiled is a grammar together with the frozen tree built from it.
type Compiled struct {
	Grammar *config.Grammar
	Tree    *dispatch.Tree[config.Source]
	Policy  dispatch.AmbiguityPolicy

	// Warnings are the non-fatal validation findings.
	Warnings []config.ValidationError

	nodes map[dispatch.NodeID]*config.Node
	log   *logger.Logger
}

// Compile validates g and registers its commands. Redirects are wired in a
// second pass so they may point at nodes declared later, or at an ancestor.
func Compile(g *config.Grammar, opts Options) (*Compiled, error) {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}

	result := config.Validate(g)
	if !result.Valid {
		errs := make([]error, len(result.Errors))
		for i, e := range result.Errors {
			errs[i] = derrors.NewValidationError(e.Field, e.Message, nil)
		}
		return nil, errors.Join(errs...)
	}

	c := &compiler{
		g:     g,
		opts:  opts,
		tb:    dispatch.NewTreeBuilder[config.Source](),
		nodes: map[dispatch.NodeID]*config.Node{},
	}
	if err := c.register(c.tb.Root(), "commands", g.Commands); err != nil {
		return nil, err
	}
	if err := c.wireRedirects(); err != nil {
		return nil, err
	}
	tree, err := c.tb.Build()
	if err != nil {
		return nil, derrors.NewValidationError("commands", "cannot build tree", err)
	}

	policy := dispatch.FirstMatch
	if g.Settings.Ambiguity == config.AmbiguityReject {
		policy = dispatch.RejectAmbiguous
	}

	opts.Logger.Debug().
		Int("nodes", tree.Len()-1).
		Int("redirects", len(c.pending)).
		Str("ambiguity", policy.String()).
		Msg("Grammar compiled")

	return &Compiled{
		Grammar:  g,
		Tree:     tree,
		Policy:   policy,
		Warnings: result.Warnings,
		nodes:    c.nodes,
		log:      opts.Logger,
	}, nil
}

// Dispatcher returns a dispatcher over the compiled tree using the grammar's
// ambiguity policy. opts are applied after the defaults.
func (c *Compiled) Dispatcher(opts ...dispatch.Option) *dispatch.Dispatcher[config.Source] {
	all := append([]dispatch.Option{
		dispatch.WithAmbiguityPolicy(c.Policy),
		dispatch.WithLogger(c.log.Logrus()),
	}, opts...)
	return dispatch.New(c.Tree, all...)
}

// Node returns the grammar node a tree node was compiled from.
func (c *Compiled) Node(id dispatch.NodeID) (*config.Node, bool) {
	n, ok := c.nodes[id]
	return n, ok
}

// Source resolves a source by name. The empty name selects the default
// source from settings, then the first declared source.
func (c *Compiled) Source(name string) (config.Source, error) {
	if name == "" {
		name = c.Grammar.Settings.Source
	}
	if name == "" {
		if len(c.Grammar.Sources) == 0 {
			return config.Source{Name: AnonymousSource}, nil
		}
		return c.Grammar.Sources[0], nil
	}
	src, ok := c.Grammar.Source(name)
	if !ok {
		return config.Source{}, derrors.NewNotFoundError("source", fmt.Sprintf("source %q is not declared", name))
	}
	return src, nil
}

type pendingRedirect struct {
	id    dispatch.NodeID
	node  *config.Node
	field string
}

type compiler struct {
	g       *config.Grammar
	opts    Options
	tb      *dispatch.TreeBuilder[config.Source]
	nodes   map[dispatch.NodeID]*config.Node
	pending []pendingRedirect
}

func (c *compiler) register(parent dispatch.NodeID, field string, nodes []config.Node) error {
	for i := range nodes {
		n := &nodes[i]
		f := fmt.Sprintf("%s[%d]", field, i)

		b, err := c.builder(f, n)
		if err != nil {
			return err
		}
		id, err := c.tb.RegisterUnder(parent, b)
		if err != nil {
			return derrors.NewValidationError(f, "cannot register node", err)
		}
		c.nodes[id] = n

		if n.Redirects() {
			c.pending = append(c.pending, pendingRedirect{id: id, node: n, field: f})
			continue
		}
		if err := c.register(id, f+".children", n.Children); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) builder(field string, n *config.Node) (*dispatch.ArgumentBuilder[config.Source], error) {
	var b *dispatch.ArgumentBuilder[config.Source]
	if n.IsLiteral() {
		b = dispatch.Literal[config.Source](n.Literal)
	} else {
		typ, err := ArgumentType(n)
		if err != nil {
			return nil, derrors.NewValidationError(field, "invalid argument type", err)
		}
		b = dispatch.Arg[config.Source](n.Argument, typ)
		switch {
		case len(n.Suggest) > 0:
			b.Suggests(fixedSuggestions(n.Suggest))
		case c.selects(n.Argument) && n.Type != config.TypeEnum:
			b.Suggests(c.sourceSuggestions())
		}
	}

	if n.Requires != nil {
		cond, err := condition.Parse(n.Requires)
		if err != nil {
			return nil, derrors.NewValidationError(field+".requires", "invalid condition", err)
		}
		b.Requires(condition.Requirement(cond))
	}
	if n.Run != nil {
		cmd, err := c.command(field+".run", n)
		if err != nil {
			return nil, err
		}
		b.Executes(cmd)
	}
	return b, nil
}

// selects reports whether some fork or as selector reads the argument name.
func (c *compiler) selects(name string) bool {
	found := false
	var walk func(nodes []config.Node)
	walk = func(nodes []config.Node) {
		for i := range nodes {
			n := &nodes[i]
			if (n.Fork != nil && n.Fork.Select == name) || (n.As != nil && n.As.Select == name) {
				found = true
				return
			}
			walk(n.Children)
		}
	}
	walk(c.g.Commands)
	return found
}

func (c *compiler) wireRedirects() error {
	for _, p := range c.pending {
		target, _ := p.node.RedirectTarget()
		tid, ok := c.tb.FindNode(config.SplitPath(target)...)
		if !ok {
			return derrors.NewValidationError(p.field, fmt.Sprintf("redirect target %q does not exist", target), nil)
		}

		var modifier dispatch.RedirectModifier[config.Source]
		fork := false
		switch {
		case p.node.Fork != nil:
			modifier = c.forkModifier(p.node.Fork.Select)
			fork = true
		case p.node.As != nil:
			modifier = c.asModifier(p.node.As)
		}
		if err := c.tb.SetRedirect(p.id, tid, modifier, fork); err != nil {
			return derrors.NewValidationError(p.field, "cannot set redirect", err)
		}
	}
	return nil
}
