package dispatch

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikitaCOEUR/cmdtree/pkg/arguments"
	"github.com/NikitaCOEUR/cmdtree/pkg/cmderr"
	"github.com/NikitaCOEUR/cmdtree/pkg/reader"
	"github.com/NikitaCOEUR/cmdtree/pkg/suggestion"
)

func assertSuggestions(t *testing.T, got *suggestion.Suggestions, r reader.StringRange, texts ...string) {
	t.Helper()
	var want []suggestion.Suggestion
	for _, text := range texts {
		want = append(want, suggestion.New(r, text))
	}
	if len(texts) > 0 {
		assert.Equal(t, r, got.Range)
	}
	if diff := cmp.Diff(want, got.List); diff != "" {
		t.Errorf("suggestions mismatch (-want +got):\n%s", diff)
	}
}

func TestSuggest_RootCommands(t *testing.T) {
	tb := NewTreeBuilder[string]()
	tb.MustRegister(tb.Literal("foo"))
	tb.MustRegister(tb.Literal("bar"))
	tb.MustRegister(tb.Literal("baz"))
	d := New(tb.MustBuild())

	assertSuggestions(t, d.Suggest("", ""), reader.At(0), "bar", "baz", "foo")
	assertSuggestions(t, d.Suggest("b", ""), reader.Between(0, 1), "bar", "baz")
	assertSuggestions(t, d.Suggest("B", ""), reader.Between(0, 1), "bar", "baz")
	assert.True(t, d.Suggest("x", "").IsEmpty())
}

func TestSuggest_SubCommands(t *testing.T) {
	tb := NewTreeBuilder[string]()
	tb.MustRegister(tb.Literal("parent").
		Then(tb.Literal("foo")).
		Then(tb.Literal("bar")).
		Then(tb.Literal("baz")))
	d := New(tb.MustBuild())

	assertSuggestions(t, d.Suggest("parent ", ""), reader.At(7), "bar", "baz", "foo")
	assertSuggestions(t, d.Suggest("parent b", ""), reader.Between(7, 8), "bar", "baz")
	assert.True(t, d.Suggest("parent", "").IsEmpty(), "parent is already typed")
}

func TestSuggest_MovingCursor(t *testing.T) {
	tb := NewTreeBuilder[string]()
	tb.MustRegister(tb.Literal("parent_one").
		Then(tb.Literal("faz")).
		Then(tb.Literal("fbz")).
		Then(tb.Literal("gaz")))
	tb.MustRegister(tb.Literal("parent_two"))
	d := New(tb.MustBuild())

	parse := d.Parse("parent_one faz ", "")

	tests := []struct {
		cursor int
		r      reader.StringRange
		texts  []string
	}{
		{cursor: 0, r: reader.At(0), texts: []string{"parent_one", "parent_two"}},
		{cursor: 1, r: reader.Between(0, 1), texts: []string{"parent_one", "parent_two"}},
		{cursor: 7, r: reader.Between(0, 7), texts: []string{"parent_one", "parent_two"}},
		{cursor: 8, r: reader.Between(0, 8), texts: []string{"parent_one"}},
		{cursor: 10, r: reader.At(0)},
		{cursor: 11, r: reader.At(11), texts: []string{"faz", "fbz", "gaz"}},
		{cursor: 12, r: reader.Between(11, 12), texts: []string{"faz", "fbz"}},
		{cursor: 13, r: reader.Between(11, 13), texts: []string{"faz"}},
		{cursor: 14, r: reader.At(0)},
		{cursor: 15, r: reader.At(0)},
	}
	for _, tt := range tests {
		got := d.CompletionSuggestionsAt(parse, tt.cursor)
		assertSuggestions(t, got, tt.r, tt.texts...)
	}
}

func TestSuggest_Redirect(t *testing.T) {
	tb := NewTreeBuilder[string]()
	actual := tb.MustRegister(tb.Literal("actual").Then(tb.Literal("sub")))
	tb.MustRegister(tb.Literal("redirect").Redirect(actual))
	d := New(tb.MustBuild())

	assertSuggestions(t, d.Suggest("redirect ", ""), reader.At(9), "sub")
	assertSuggestions(t, d.Suggest("redirect s", ""), reader.Between(9, 10), "sub")
}

func TestSuggest_RedirectLoop(t *testing.T) {
	tb := NewTreeBuilder[string]()
	loop := tb.MustRegister(tb.Literal("redirect"))
	require.NoError(t, tb.SetRedirect(loop, tb.Root(), nil, false))
	tb.MustRegister(tb.Literal("other"))
	d := New(tb.MustBuild())

	assertSuggestions(t, d.Suggest("redirect redirect o", ""), reader.Between(18, 19), "other")
}

func TestSuggest_ArgumentTypes(t *testing.T) {
	tb := NewTreeBuilder[string]()
	tb.MustRegister(tb.Literal("flag").Then(tb.Arg("v", arguments.Bool()).Executes(ok)))
	tb.MustRegister(tb.Literal("give").Then(
		tb.Arg("target", arguments.Word()).
			Suggests(func(_ *CommandContext[string], b *suggestion.Builder) (*suggestion.Suggestions, error) {
				return b.SuggestMatching("alice", "alex", "bob").Build(), nil
			}).
			Then(tb.Arg("amount", arguments.IntegerRange(1, 64)).Executes(ok))))
	d := New(tb.MustBuild())

	assertSuggestions(t, d.Suggest("flag ", ""), reader.At(5), "false", "true")
	assertSuggestions(t, d.Suggest("flag t", ""), reader.Between(5, 6), "true")
	assertSuggestions(t, d.Suggest("give al", ""), reader.Between(5, 7), "alex", "alice")
	assert.True(t, d.Suggest("give alice ", "").IsEmpty(), "integer has no suggestions")
}

func TestSuggest_ProviderSeesEarlierArguments(t *testing.T) {
	var seenTarget any
	tb := NewTreeBuilder[string]()
	tb.MustRegister(tb.Literal("give").Then(
		tb.Arg("target", arguments.Word()).Then(
			tb.Arg("item", arguments.Word()).
				Suggests(func(ctx *CommandContext[string], b *suggestion.Builder) (*suggestion.Suggestions, error) {
					seenTarget, _ = ctx.ArgumentValue("target")
					return b.Suggest("apple").Build(), nil
				}).
				Executes(ok))))
	d := New(tb.MustBuild())

	assertSuggestions(t, d.Suggest("give bob ", ""), reader.At(9), "apple")
	assert.Equal(t, "bob", seenTarget)
}

func TestSuggest_SkipsUnusableAndFailingNodes(t *testing.T) {
	tb := NewTreeBuilder[string]()
	tb.MustRegister(tb.Literal("status").Executes(ok))
	tb.MustRegister(tb.Literal("stop").Requires(func(s string) bool { return s == "op" }).Executes(ok))
	tb.MustRegister(tb.Arg("broken", arguments.Word()).
		Suggests(func(*CommandContext[string], *suggestion.Builder) (*suggestion.Suggestions, error) {
			return nil, errBoom
		}))
	d := New(tb.MustBuild())

	assertSuggestions(t, d.Suggest("st", "guest"), reader.Between(0, 2), "status")
	assertSuggestions(t, d.Suggest("st", "op"), reader.Between(0, 2), "status", "stop")
}

func TestSuggest_AppliedSuggestionParses(t *testing.T) {
	d, _ := fooBar(t)
	got := d.Suggest("f", "")
	require.Len(t, got.List, 1)

	line := got.List[0].Apply("f")
	assert.Equal(t, "foo", line)
	requireSyntax(t, d.Parse(line, "").Err, cmderr.IncompleteCommand, 3)
}
