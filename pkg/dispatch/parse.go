package dispatch

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/NikitaCOEUR/cmdtree/pkg/cmderr"
	"github.com/NikitaCOEUR/cmdtree/pkg/reader"
)

// ParseResults is the outcome of Parse. Context always holds the chain
// matched so far, even when Err is set, so suggestions can be computed for
// invalid input.
type ParseResults[S any] struct {
	Context *ContextBuilder[S]
	Reader  *reader.StringReader
	// Errors holds the failure of every child attempted at the frontier.
	Errors map[NodeID]error
	// Err is the positioned error that makes the input unexecutable, or nil.
	Err error
}

// Input returns the full command line
func (p *ParseResults[S]) Input() string { return p.Reader.String() }

// Parse matches input against the tree for source.
func (d *Dispatcher[S]) Parse(input string, source S) *ParseResults[S] {
	return d.ParseReader(reader.New(input), source)
}

// ParseReader matches the input remaining in r. One leading separator is
// skipped and the root context starts after it.
func (d *Dispatcher[S]) ParseReader(r *reader.StringReader, source S) *ParseResults[S] {
	if r.CanReadRune() && r.Peek() == ArgumentSeparator {
		r.Skip()
	}
	ctx := newContextBuilder(source, d.tree.Root(), r.Cursor())
	res := d.parseNodes(d.tree.Root(), r, ctx)
	if res.Err == nil {
		res.Err = classify(res)
	}
	if res.Err != nil {
		d.log.WithFields(logrus.Fields{
			"input": r.String(),
			"error": res.Err.Error(),
		}).Debug("parse failed")
	}
	return res
}

// parseNodes descends from node. Children are tried in relevance order and
// the first one that parses is followed; siblings are never revisited.
func (d *Dispatcher[S]) parseNodes(node *Node[S], original *reader.StringReader, soFar *ContextBuilder[S]) *ParseResults[S] {
	source := soFar.source
	cursor := original.Cursor()
	errs := make(map[NodeID]error)

	candidates := node.relevantChildren(original)
	for i, child := range candidates {
		if !child.CanUse(source) {
			continue
		}
		ctx := soFar.copy()
		r := original.Clone()
		if err := attempt(child, r, ctx); err != nil {
			errs[child.id] = err
			continue
		}

		if d.policy == RejectAmbiguous && child.kind == KindArgument {
			if other := d.otherMatch(candidates[i+1:], original, soFar); other != nil {
				err := cmderr.New(cmderr.AmbiguousInput, original.String(), cursor).
					WithValue(original.String()[cursor:r.Cursor()])
				d.log.WithFields(logrus.Fields{
					"node":    child.name,
					"sibling": other.name,
				}).Debug("ambiguous argument input")
				return &ParseResults[S]{
					Context: soFar,
					Reader:  original,
					Errors:  map[NodeID]error{child.id: err},
					Err:     err,
				}
			}
		}

		ctx.command = child.command
		redirect := child.Redirect()
		need := 2
		if redirect != nil {
			need = 1
		}
		if !r.CanRead(need) {
			return &ParseResults[S]{Context: ctx, Reader: r, Errors: map[NodeID]error{}}
		}

		r.Skip()
		if redirect == nil {
			return d.parseNodes(child, r, ctx)
		}

		d.log.WithFields(logrus.Fields{
			"from": child.name,
			"to":   pathString(d.tree, redirect.id),
			"fork": child.forks,
		}).Debug("following redirect")
		childCtx := newContextBuilder(source, redirect, r.Cursor())
		parsed := d.parseNodes(redirect, r, childCtx)
		ctx.child = parsed.Context
		return &ParseResults[S]{Context: ctx, Reader: parsed.Reader, Errors: parsed.Errors, Err: parsed.Err}
	}

	return &ParseResults[S]{Context: soFar, Reader: original, Errors: errs}
}

// attempt parses child and requires a separator or end of input after it.
func attempt[S any](child *Node[S], r *reader.StringReader, ctx *ContextBuilder[S]) error {
	if err := child.parse(r, ctx); err != nil {
		return err
	}
	if !atSeparator(r) {
		return cmderr.New(cmderr.ExpectedArgumentSeparator, r.String(), r.Cursor())
	}
	return nil
}

// otherMatch returns the first usable argument among siblings that also
// parses the token at original.
func (d *Dispatcher[S]) otherMatch(siblings []*Node[S], original *reader.StringReader, soFar *ContextBuilder[S]) *Node[S] {
	for _, s := range siblings {
		if s.kind != KindArgument || !s.CanUse(soFar.source) {
			continue
		}
		if attempt(s, original.Clone(), soFar.copy()) == nil {
			return s
		}
	}
	return nil
}

// classify turns a finished descent into the error explaining why it cannot
// be executed, or nil.
func classify[S any](res *ParseResults[S]) error {
	r := res.Reader
	last := res.Context.LastChild()
	frontier := last.frontier()

	if r.CanReadRune() {
		if len(res.Errors) == 1 {
			for _, err := range res.Errors {
				return err
			}
		}
		switch {
		case frontier.HasArgumentChildren():
			return cmderr.New(cmderr.UnknownArgument, r.String(), r.Cursor())
		case frontier.HasLiteralChildren():
			return cmderr.New(cmderr.UnknownCommand, r.String(), r.Cursor())
		}
		return cmderr.New(cmderr.TrailingData, r.String(), r.Cursor())
	}

	if last.command != nil {
		return nil
	}
	if len(frontier.children) > 0 || frontier.redirect != NoNode {
		return cmderr.New(cmderr.IncompleteCommand, r.String(), r.TotalLength())
	}
	return cmderr.New(cmderr.UnknownCommand, r.String(), r.Cursor())
}

func pathString[S any](t *Tree[S], id NodeID) string {
	path := t.Path(id)
	if len(path) == 0 {
		return "<root>"
	}
	return strings.Join(path, " ")
}
