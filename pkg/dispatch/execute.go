package dispatch

import (
	"github.com/sirupsen/logrus"

	"github.com/NikitaCOEUR/cmdtree/pkg/cmderr"
)

// Failure is one forked invocation that did not succeed.
type Failure[S any] struct {
	Source S
	Err    error
}

// Outcome summarises the invocations made by Execute.
type Outcome[S any] struct {
	// Result is the sum of the codes returned by successful commands.
	Result int
	// Successes counts successful command invocations.
	Successes int
	// Failures lists forked invocations whose command or modifier failed.
	Failures []Failure[S]
	// Forked reports whether a fork was taken.
	Forked bool
}

// ExecuteInput parses input for source and executes it.
func (d *Dispatcher[S]) ExecuteInput(input string, source S) (Outcome[S], error) {
	return d.Execute(d.Parse(input, source))
}

// Execute runs the command resolved by parse. Once a fork has been taken,
// failures are collected in the outcome instead of stopping execution;
// before that the first error is returned as is.
func (d *Dispatcher[S]) Execute(parse *ParseResults[S]) (Outcome[S], error) {
	var out Outcome[S]
	if parse.Err != nil {
		return out, parse.Err
	}

	input := parse.Input()
	original := parse.Context.Build(input)
	contexts := []*CommandContext[S]{original}
	found := false

	for len(contexts) > 0 {
		var next []*CommandContext[S]
		for _, ctx := range contexts {
			child := ctx.child
			if child != nil {
				out.Forked = out.Forked || ctx.forks
				if !child.HasNodes() {
					continue
				}
				found = true
				if ctx.modifier == nil {
					next = append(next, child.CopyFor(ctx.source))
					continue
				}
				sources, err := ctx.modifier(ctx)
				if err != nil {
					d.consumer(ctx, false, 0)
					if !out.Forked {
						return out, err
					}
					d.log.WithFields(logrus.Fields{"input": input, "error": err.Error()}).Debug("redirect modifier failed")
					out.Failures = append(out.Failures, Failure[S]{Source: ctx.source, Err: err})
					continue
				}
				if out.Forked {
					d.log.WithFields(logrus.Fields{"input": input, "sources": len(sources)}).Debug("forking")
				}
				for _, s := range sources {
					next = append(next, child.CopyFor(s))
				}
				continue
			}

			if ctx.command == nil {
				continue
			}
			found = true
			result, err := ctx.command(ctx)
			if err != nil {
				d.consumer(ctx, false, 0)
				if !out.Forked {
					return out, err
				}
				d.log.WithFields(logrus.Fields{"input": input, "error": err.Error()}).Debug("forked command failed")
				out.Failures = append(out.Failures, Failure[S]{Source: ctx.source, Err: err})
				continue
			}
			d.consumer(ctx, true, result)
			out.Result += result
			out.Successes++
		}
		contexts = next
	}

	if !found {
		d.consumer(original, false, 0)
		return out, cmderr.New(cmderr.UnknownCommand, input, parse.Reader.Cursor())
	}
	return out, nil
}
