package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikitaCOEUR/cmdtree/internal/derrors"
)

const sampleYAML = `
settings:
  ambiguity: reject
  log_level: debug
  source: console
sources:
  - name: console
    level: 4
    tags: [ops]
  - name: alice
    tags: [red]
commands:
  - literal: give
    requires: { min_level: 2 }
    children:
      - argument: target
        type: word
        suggest: [alice, bob]
        children:
          - argument: amount
            type: integer
            min: 1
            max: 64
            run:
              output: "gave {{ .amount }} to {{ .target }}"
  - literal: execute
    children:
      - literal: as
        children:
          - argument: who
            type: word
            fork: { target: execute, select: who }
      - literal: run
        redirect: ""
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_LoadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "grammar.yml", sampleYAML)

	g, err := New().Load(path)
	require.NoError(t, err)

	assert.Equal(t, AmbiguityReject, g.Settings.Ambiguity)
	assert.Equal(t, "console", g.Settings.Source)
	require.Len(t, g.Sources, 2)
	assert.Equal(t, Source{Name: "console", Level: 4, Tags: []string{"ops"}}, g.Sources[0])

	require.Len(t, g.Commands, 2)
	give := g.Commands[0]
	assert.Equal(t, "give", give.Name())
	assert.True(t, give.IsLiteral())
	require.NotNil(t, give.Requires)
	require.NotNil(t, give.Requires.MinLevel)
	assert.Equal(t, 2, *give.Requires.MinLevel)

	amount := give.Children[0].Children[0]
	assert.Equal(t, "amount", amount.Name())
	assert.Equal(t, TypeInteger, amount.Type)
	require.NotNil(t, amount.Min)
	require.NotNil(t, amount.Max)
	assert.Equal(t, 1.0, *amount.Min)
	assert.Equal(t, 64.0, *amount.Max)
	require.NotNil(t, amount.Run)
	assert.Contains(t, amount.Run.Output, "{{ .amount }}")

	run := g.Commands[1].Children[1]
	require.NotNil(t, run.Redirect)
	target, ok := run.RedirectTarget()
	assert.True(t, ok)
	assert.Equal(t, "", target)

	who := g.Commands[1].Children[0].Children[0]
	require.NotNil(t, who.Fork)
	assert.Equal(t, Fork{Target: "execute", Select: "who"}, *who.Fork)
}

func TestLoader_Formats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"g.toml": `
[[commands]]
literal = "ping"
[commands.run]
output = "pong"
`,
		"g.json": `{"commands":[{"literal":"ping","run":{"output":"pong"}}]}`,
		"g.yaml": "commands:\n  - literal: ping\n    run: { output: pong }\n",
	}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			g, err := New().Load(writeFile(t, dir, name, content))
			require.NoError(t, err)
			require.Len(t, g.Commands, 1)
			assert.Equal(t, "ping", g.Commands[0].Literal)
			require.NotNil(t, g.Commands[0].Run)
			assert.Equal(t, "pong", g.Commands[0].Run.Output)
		})
	}
}

func TestLoader_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := New().Load(filepath.Join(dir, "missing.yml"))
	var ge *derrors.GrammarError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "GRAMMAR_ERROR", ge.Code())

	_, err = New().Load(writeFile(t, dir, "g.ini", "x=1"))
	require.ErrorAs(t, err, &ge)
	assert.Contains(t, err.Error(), "unsupported grammar format")

	_, err = New().Load(writeFile(t, dir, "bad.yml", "commands: [\n"))
	require.ErrorAs(t, err, &ge)
	assert.Contains(t, ge.Path, "bad.yml")
}

func TestLoader_Stdin(t *testing.T) {
	l := New()
	l.Stdin = strings.NewReader("commands:\n  - literal: hello\n    run: {}\n")

	g, err := l.Load(StdinPath)
	require.NoError(t, err)
	require.Len(t, g.Commands, 1)
	assert.Equal(t, "hello", g.Commands[0].Literal)
}

func TestLoadBytes(t *testing.T) {
	g, err := LoadBytes("inline", []byte(`{"sources":[{"name":"bob","level":1}]}`), "json")
	require.NoError(t, err)
	assert.Equal(t, []Source{{Name: "bob", Level: 1}}, g.Sources)

	_, err = LoadBytes("inline", []byte("x"), "xml")
	assert.Error(t, err)
}

func TestLoader_CacheInvalidation(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "g.yml", "commands:\n  - literal: one\n")
	l := New()

	first, err := l.Load(path)
	require.NoError(t, err)
	second, err := l.Load(path)
	require.NoError(t, err)
	assert.Same(t, first, second, "unchanged file is served from cache")

	require.NoError(t, os.WriteFile(path, []byte("commands:\n  - literal: two\n  - literal: three\n"), 0o644))
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	third, err := l.Load(path)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Len(t, third.Commands, 2)

	l.Forget(path)
	fourth, err := l.Load(path)
	require.NoError(t, err)
	assert.NotSame(t, third, fourth)
}

func TestLoader_Hash(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "g.yml", "commands: []\n")
	l := New()

	h1, err := l.Hash(path)
	require.NoError(t, err)
	assert.Len(t, h1, 64)

	_, err = l.Load(path)
	require.NoError(t, err)
	h2, err := l.Hash(path)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	_, err = l.Hash(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}

func TestLoader_LoadAll(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yml", sampleYAML)
	over := writeFile(t, dir, "over.json", `{
		"settings": {"ambiguity": "first_match"},
		"sources": [{"name": "alice", "level": 3}],
		"commands": [{"literal": "give", "children": [{"argument": "target", "type": "word", "suggest": ["carol"]}]}, {"literal": "ping", "run": {}}]
	}`)

	g, err := New().LoadAll([]string{base, over})
	require.NoError(t, err)

	assert.Equal(t, AmbiguityFirstMatch, g.Settings.Ambiguity)
	assert.Equal(t, "debug", g.Settings.LogLevel, "unset settings keep the earlier value")

	alice, ok := g.Source("alice")
	require.True(t, ok)
	assert.Equal(t, 3, alice.Level)

	require.Len(t, g.Commands, 3)
	target := g.Commands[0].Children[0]
	assert.Equal(t, []string{"carol"}, target.Suggest)
	require.Len(t, target.Children, 1, "children of merged nodes are kept")
	assert.Equal(t, "ping", g.Commands[2].Literal)

	_, err = New().LoadAll([]string{base, filepath.Join(dir, "nope.yml")})
	assert.Error(t, err)
}

func TestSplitPath(t *testing.T) {
	assert.Empty(t, SplitPath(""))
	assert.Equal(t, []string{"execute", "as"}, SplitPath(" execute  as "))
}

func TestParserFor(t *testing.T) {
	for _, f := range []string{".yml", "yaml", ".TOML", "json"} {
		p, err := ParserFor(f)
		require.NoError(t, err, f)
		assert.NotNil(t, p)
	}
	_, err := ParserFor(".txt")
	assert.Error(t, err)
}

func TestFindGrammar(t *testing.T) {
	dir := t.TempDir()
	_, ok := FindGrammar(dir)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "cmdtree.toml"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cmdtree.yaml"), []byte(""), 0o644))
	path, ok := FindGrammar(dir)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "cmdtree.yaml"), path)
}
