package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/NikitaCOEUR/cmdtree/internal/derrors"
	"github.com/NikitaCOEUR/cmdtree/internal/hint"
	"github.com/NikitaCOEUR/cmdtree/internal/render"
	"github.com/NikitaCOEUR/cmdtree/internal/timing"
)

// ErrCommandFailed is returned by Run once the failure has been printed.
var ErrCommandFailed = errors.New("command failed")

// RunParams contains parameters for the Run command
type RunParams struct {
	Common
	Line   string
	Source string
	Timing bool
}

// Run parses and executes one line as the given source.
func Run(p RunParams) error {
	timer := timing.NewTimer()
	comp, err := initializeComponents(p.Common, timer)
	if err != nil {
		return err
	}
	out := p.out()

	src, err := comp.compiled.Source(p.Source)
	if err != nil {
		return err
	}
	d := comp.compiled.Dispatcher()

	stop := timer.Start(timing.PhaseParse)
	parse := d.Parse(p.Line, src)
	stop()

	stop = timer.Start(timing.PhaseExecute)
	outcome, err := d.Execute(parse)
	stop()

	if p.Timing {
		defer fmt.Fprintln(out, render.Timing(timer.Summary()))
	}

	if err != nil {
		fmt.Fprintln(out, render.Error(err))
		if hints := render.Hints(hint.ForParse(parse, hint.DefaultLimit)); hints != "" {
			fmt.Fprintln(out, hints)
		}
		comp.log.Debug().Str("line", p.Line).Str("source", src.Name).Err(err).Msg("Command failed")
		return ErrCommandFailed
	}

	if outcome.Forked || len(outcome.Failures) > 0 {
		fmt.Fprintln(out, render.Outcome(outcome))
	}
	if len(outcome.Failures) > 0 {
		return fmt.Errorf("%w: %d of %d forked invocation(s) failed",
			ErrCommandFailed, len(outcome.Failures), len(outcome.Failures)+outcome.Successes)
	}
	return nil
}

// SuggestParams contains parameters for the Suggest command
type SuggestParams struct {
	Common
	Line   string
	Source string
	// Cursor is the completion position; negative means the end of Line.
	Cursor int
}

// Suggest prints the completions of a line at the cursor.
func Suggest(p SuggestParams) error {
	timer := timing.NewTimer()
	comp, err := initializeComponents(p.Common, timer)
	if err != nil {
		return err
	}
	src, err := comp.compiled.Source(p.Source)
	if err != nil {
		return err
	}

	cursor := p.Cursor
	if cursor < 0 || cursor > len(p.Line) {
		cursor = len(p.Line)
	}

	d := comp.compiled.Dispatcher()
	stop := timer.Start(timing.PhaseSuggest)
	s := d.CompletionSuggestionsAt(d.Parse(p.Line, src), cursor)
	stop()

	comp.log.Debug().Int("cursor", cursor).Int("suggestions", len(s.List)).Dur("took", timer.Elapsed()).Msg("Suggestions computed")
	fmt.Fprintln(p.out(), render.Suggestions(p.Line, s))
	return nil
}

// AnalyzeParams contains parameters for the Analyze command
type AnalyzeParams struct {
	Common
	// Strict fails when an ambiguity is found.
	Strict bool
}

// Analyze reports ambiguous argument siblings and grammar warnings.
func Analyze(p AnalyzeParams) error {
	comp, err := initializeComponents(p.Common, timing.NewTimer())
	if err != nil {
		return err
	}
	out := p.out()

	found := comp.compiled.Dispatcher().Ambiguities()
	fmt.Fprintln(out, render.Ambiguities(comp.compiled.Tree, found))
	for _, w := range comp.compiled.Warnings {
		fmt.Fprintln(out, render.Warning(w.Field+": "+w.Message))
	}

	if p.Strict && len(found) > 0 {
		return fmt.Errorf("%d ambiguous pair(s) found", len(found))
	}
	return nil
}

// UsageParams contains parameters for the Usage command
type UsageParams struct {
	Common
	Path   []string
	Source string
	Smart  bool
}

// Usage prints the usage of the node at Path as seen by the source.
func Usage(p UsageParams) error {
	comp, err := initializeComponents(p.Common, timing.NewTimer())
	if err != nil {
		return err
	}
	src, err := comp.compiled.Source(p.Source)
	if err != nil {
		return err
	}

	node, ok := comp.compiled.Tree.FindNode(p.Path...)
	if !ok {
		return derrors.NewNotFoundError("node", fmt.Sprintf("no node at %q", strings.Join(p.Path, " ")))
	}

	d := comp.compiled.Dispatcher()
	var lines []string
	if p.Smart {
		for _, u := range d.SmartUsage(node, src) {
			lines = append(lines, u.Usage)
		}
	} else {
		lines = d.AllUsage(node, src, true)
	}
	fmt.Fprintln(p.out(), render.Usage(p.Path, lines))
	return nil
}

// Tree prints the compiled command tree.
func Tree(c Common) error {
	comp, err := initializeComponents(c, timing.NewTimer())
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out(), render.Tree(comp.compiled))
	return nil
}
