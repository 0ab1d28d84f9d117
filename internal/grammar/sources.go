package grammar

import (
	"fmt"
	"slices"

	"github.com/NikitaCOEUR/cmdtree/internal/config"
	"github.com/NikitaCOEUR/cmdtree/internal/derrors"
	"github.com/NikitaCOEUR/cmdtree/pkg/dispatch"
	"github.com/NikitaCOEUR/cmdtree/pkg/suggestion"
)

// SelectAll is the selector matching every declared source.
const SelectAll = "*"

// Select returns the sources matched by selector, in declaration order: all
// of them for "*", the one with that name, or else every source carrying the
// selector as a tag.
func Select(g *config.Grammar, selector string) []config.Source {
	if selector == SelectAll {
		return slices.Clone(g.Sources)
	}
	if src, ok := g.Source(selector); ok {
		return []config.Source{src}
	}
	var out []config.Source
	for _, s := range g.Sources {
		if slices.Contains(s.Tags, selector) {
			out = append(out, s)
		}
	}
	return out
}

// selectorValue reads the selecting argument as text.
func selectorValue(ctx *dispatch.CommandContext[config.Source], name string) (string, error) {
	v, ok := ctx.ArgumentValue(name)
	if !ok {
		return "", derrors.NewExecutionError(ctx.Input(), fmt.Sprintf("argument %q was not parsed", name), dispatch.ErrNoSuchArgument)
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return fmt.Sprint(v), nil
}

func (c *compiler) forkModifier(selectArg string) dispatch.RedirectModifier[config.Source] {
	g := c.g
	log := c.opts.Logger
	return func(ctx *dispatch.CommandContext[config.Source]) ([]config.Source, error) {
		sel, err := selectorValue(ctx, selectArg)
		if err != nil {
			return nil, err
		}
		sources := Select(g, sel)
		if len(sources) == 0 {
			return nil, derrors.NewNotFoundError("source", fmt.Sprintf("no source matches %q", sel))
		}
		log.Debug().Str("selector", sel).Int("sources", len(sources)).Msg("Fork selected sources")
		return sources, nil
	}
}

func (c *compiler) asModifier(as *config.As) dispatch.RedirectModifier[config.Source] {
	g := c.g
	return func(ctx *dispatch.CommandContext[config.Source]) ([]config.Source, error) {
		name := as.Source
		if name == "" {
			sel, err := selectorValue(ctx, as.Select)
			if err != nil {
				return nil, err
			}
			name = sel
		}
		src, ok := g.Source(name)
		if !ok {
			return nil, derrors.NewNotFoundError("source", fmt.Sprintf("source %q is not declared", name))
		}
		return []config.Source{src}, nil
	}
}

func fixedSuggestions(list []string) dispatch.SuggestionProvider[config.Source] {
	return func(_ *dispatch.CommandContext[config.Source], b *suggestion.Builder) (*suggestion.Suggestions, error) {
		return b.SuggestMatching(list...).Build(), nil
	}
}

// sourceSuggestions completes selector arguments with source names, tags
// and "*".
func (c *compiler) sourceSuggestions() dispatch.SuggestionProvider[config.Source] {
	var candidates []string
	for _, s := range c.g.Sources {
		candidates = append(candidates, s.Name)
	}
	for _, s := range c.g.Sources {
		for _, t := range s.Tags {
			if !slices.Contains(candidates, t) {
				candidates = append(candidates, t)
			}
		}
	}
	candidates = append(candidates, SelectAll)
	return fixedSuggestions(candidates)
}
