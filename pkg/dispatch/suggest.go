package dispatch

import (
	"github.com/sirupsen/logrus"

	"github.com/NikitaCOEUR/cmdtree/pkg/suggestion"
)

// CompletionSuggestions completes the input of parse at its end.
func (d *Dispatcher[S]) CompletionSuggestions(parse *ParseResults[S]) *suggestion.Suggestions {
	return d.CompletionSuggestionsAt(parse, parse.Reader.TotalLength())
}

// CompletionSuggestionsAt completes the input of parse at cursor. Every
// usable child of the node before the cursor contributes; a provider that
// fails contributes nothing.
func (d *Dispatcher[S]) CompletionSuggestionsAt(parse *ParseResults[S], cursor int) *suggestion.Suggestions {
	fullInput := parse.Input()
	cursor = max(0, min(cursor, len(fullInput)))
	truncated := fullInput[:cursor]

	sc := parse.Context.findSuggestionContext(cursor)
	start := min(sc.start, cursor)
	ctx := parse.Context.Build(truncated)
	source := parse.Context.source

	var all []*suggestion.Suggestions
	for _, child := range sc.parent.Children() {
		if !child.CanUse(source) {
			continue
		}
		s, err := child.listSuggestions(ctx, suggestion.NewBuilder(truncated, start))
		if err != nil {
			d.log.WithFields(logrus.Fields{
				"node":  child.name,
				"error": err.Error(),
			}).Debug("suggestion provider failed")
			continue
		}
		all = append(all, s)
	}
	return suggestion.Merge(fullInput, all)
}

// Suggest parses input for source and completes it at its end.
func (d *Dispatcher[S]) Suggest(input string, source S) *suggestion.Suggestions {
	return d.CompletionSuggestions(d.Parse(input, source))
}
