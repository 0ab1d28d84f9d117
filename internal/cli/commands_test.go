package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikitaCOEUR/cmdtree/internal/derrors"
	"github.com/NikitaCOEUR/cmdtree/internal/history"
)

const testGrammar = `
settings:
  source: console
sources:
  - name: console
    level: 4
    tags: [ops]
  - name: alice
    tags: [red]
  - name: bob
    level: 1
    tags: [red]
commands:
  - literal: give
    requires: { min_level: 2 }
    children:
      - argument: amount
        type: integer
        min: 1
        run:
          output: "gave {{ .amount }}"
  - literal: say
    children:
      - argument: msg
        type: greedy
        run:
          output: "[{{ .Source.Name }}] {{ .msg }}"
  - literal: stop
    run:
      fail_if: { tag: red }
  - literal: tp
    children:
      - argument: x
        type: integer
        run: {}
      - argument: name
        type: word
        run: {}
  - literal: execute
    children:
      - literal: as
        children:
          - argument: who
            type: selector
            fork: { target: execute, select: who }
      - literal: run
        redirect: ""
`

func setup(t *testing.T) (Common, *bytes.Buffer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cmdtree.yml")
	require.NoError(t, os.WriteFile(path, []byte(testGrammar), 0o644))
	var out bytes.Buffer
	return Common{Grammars: []string{path}, LogLevel: "error", Out: &out}, &out
}

func TestRun(t *testing.T) {
	c, out := setup(t)

	require.NoError(t, Run(RunParams{Common: c, Line: "give 5"}))
	assert.Equal(t, "gave 5\n", out.String())

	out.Reset()
	require.NoError(t, Run(RunParams{Common: c, Line: "say hi", Source: "bob"}))
	assert.Equal(t, "[bob] hi\n", out.String())
}

func TestRun_SyntaxError(t *testing.T) {
	c, out := setup(t)

	err := Run(RunParams{Common: c, Line: "give 0"})
	require.ErrorIs(t, err, ErrCommandFailed)
	assert.Contains(t, out.String(), "at position 5")
	assert.Contains(t, out.String(), "give 0")
	assert.Contains(t, out.String(), "^")
}

func TestRun_Hint(t *testing.T) {
	c, out := setup(t)

	err := Run(RunParams{Common: c, Line: "sy hi"})
	require.ErrorIs(t, err, ErrCommandFailed)
	assert.Contains(t, out.String(), "Did you mean: ")
	assert.Contains(t, out.String(), "say")
}

func TestRun_ForkFailures(t *testing.T) {
	c, out := setup(t)

	err := Run(RunParams{Common: c, Line: "execute as * run stop"})
	require.ErrorIs(t, err, ErrCommandFailed)
	assert.Contains(t, err.Error(), "2 of 3 forked invocation(s) failed")
	assert.Contains(t, out.String(), "forked: 1 succeeded, 2 failed")
}

func TestRun_Timing(t *testing.T) {
	c, out := setup(t)

	require.NoError(t, Run(RunParams{Common: c, Line: "say hi", Timing: true}))
	assert.Contains(t, out.String(), "Total: ")
	assert.Contains(t, out.String(), "parse: ")
	assert.Contains(t, out.String(), "execute: ")
}

func TestRun_UnknownSource(t *testing.T) {
	c, _ := setup(t)

	err := Run(RunParams{Common: c, Line: "say hi", Source: "mallory"})
	var nf *derrors.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestRun_Stdin(t *testing.T) {
	var out bytes.Buffer
	c := Common{
		Grammars: []string{"-"},
		LogLevel: "error",
		Out:      &out,
		Stdin:    strings.NewReader("commands: [{ literal: ping, run: { output: pong } }]"),
	}

	require.NoError(t, Run(RunParams{Common: c, Line: "ping"}))
	assert.Equal(t, "pong\n", out.String())
}

func TestRun_DefaultGrammar(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cmdtree.yml"), []byte(testGrammar), 0o644))
	t.Chdir(dir)

	var out bytes.Buffer
	require.NoError(t, Run(RunParams{Common: Common{LogLevel: "error", Out: &out}, Line: "say hi"}))
	assert.Equal(t, "[console] hi\n", out.String())

	t.Chdir(t.TempDir())
	err := Run(RunParams{Common: Common{Out: &out}, Line: "say hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no grammar file found")
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		cursor int
		source string
		want   []string
		absent []string
	}{
		{name: "end of line", line: "execute as ", cursor: -1, want: []string{"*", "alice", "ops", "red"}},
		{name: "cursor inside", line: "s hi", cursor: 1, want: []string{"say", "stop"}},
		{name: "requirement hides give", line: "", cursor: -1, source: "alice", want: []string{"say"}, absent: []string{"give"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out := setup(t)
			require.NoError(t, Suggest(SuggestParams{Common: c, Line: tt.line, Cursor: tt.cursor, Source: tt.source}))
			for _, w := range tt.want {
				assert.Contains(t, out.String(), w)
			}
			for _, a := range tt.absent {
				assert.NotContains(t, out.String(), a)
			}
		})
	}
}

func TestSuggest_Nothing(t *testing.T) {
	c, out := setup(t)
	require.NoError(t, Suggest(SuggestParams{Common: c, Line: "zzz", Cursor: -1}))
	assert.Contains(t, out.String(), "No suggestions")
}

func TestAnalyze(t *testing.T) {
	c, out := setup(t)

	require.NoError(t, Analyze(AnalyzeParams{Common: c}))
	assert.Contains(t, out.String(), "tp: <x> and <name> both accept")

	err := Analyze(AnalyzeParams{Common: c, Strict: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous pair")
}

func TestUsage(t *testing.T) {
	c, out := setup(t)

	require.NoError(t, Usage(UsageParams{Common: c, Path: []string{"give"}}))
	assert.Contains(t, out.String(), "give <amount>")

	out.Reset()
	require.NoError(t, Usage(UsageParams{Common: c, Smart: true}))
	assert.Contains(t, out.String(), "<root>")
	assert.Contains(t, out.String(), "say <msg>")

	out.Reset()
	require.NoError(t, Usage(UsageParams{Common: c, Source: "alice"}))
	assert.NotContains(t, out.String(), "give")

	var nf *derrors.NotFoundError
	assert.ErrorAs(t, Usage(UsageParams{Common: c, Path: []string{"nope"}}), &nf)
}

func TestTree(t *testing.T) {
	c, out := setup(t)

	require.NoError(t, Tree(c))
	assert.Contains(t, out.String(), "Command tree")
	assert.Contains(t, out.String(), "<who> selector() ⇉ execute")
}

func TestInspect(t *testing.T) {
	c, out := setup(t)
	histPath := filepath.Join(t.TempDir(), "history.json")
	hist, err := history.New(histPath, 0)
	require.NoError(t, err)
	require.NoError(t, hist.Add(history.Entry{Line: "say hi", Source: "console", Success: true}))

	require.NoError(t, Inspect(InspectParams{Common: c, History: histPath}))
	for _, want := range []string{"Grammar files", "cmdtree.yml", "console", "level 4", "ambiguous pair", histPath} {
		assert.Contains(t, out.String(), want)
	}
}

func TestInspect_UnreadableHistory(t *testing.T) {
	c, out := setup(t)
	histPath := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(histPath, []byte("{not json"), 0o600))

	require.NoError(t, Inspect(InspectParams{Common: c, History: histPath}))
	assert.Contains(t, out.String(), histPath)
	assert.Contains(t, out.String(), "failed to read history")
}
