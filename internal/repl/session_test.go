package repl

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikitaCOEUR/cmdtree/internal/derrors"
	"github.com/NikitaCOEUR/cmdtree/internal/history"
	"github.com/NikitaCOEUR/cmdtree/pkg/cmderr"
)

const consoleGrammar = `
sources:
  - name: console
    level: 4
  - name: alice
commands:
  - literal: give
    requires: { min_level: 2 }
    children:
      - argument: amount
        type: integer
        run: { output: "gave {{ .amount }}" }
  - literal: say
    children:
      - argument: msg
        type: greedy
        run: { output: "[{{ .Source.Name }}] {{ .msg }}" }
  - literal: team
    children:
      - literal: add
        run: { output: added }
      - literal: remove
        run: { output: removed }
`

// syncBuffer is written by the watcher goroutine and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

func newSession(t *testing.T) (*Session, *syncBuffer, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grammar.yml")
	require.NoError(t, os.WriteFile(path, []byte(consoleGrammar), 0o644))

	out := &syncBuffer{}
	s, err := New(Config{Paths: []string{path}, Out: out})
	require.NoError(t, err)
	return s, out, path
}

func TestSession_Eval(t *testing.T) {
	s, out, _ := newSession(t)

	require.NoError(t, s.Eval("say hello there"))
	assert.Contains(t, out.String(), "[console] hello there")

	require.NoError(t, s.Eval("   "))

	entries := s.cfg.History.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "say hello there", entries[0].Line)
	assert.Equal(t, "console", entries[0].Source)
	assert.Equal(t, 1, entries[0].Result)
	assert.True(t, entries[0].Success)
}

func TestSession_EvalErrorWithHint(t *testing.T) {
	s, out, _ := newSession(t)

	err := s.Eval("gvie 1")
	require.ErrorIs(t, err, cmderr.ErrUnknownCommand)
	assert.Contains(t, out.String(), "Did you mean: ")
	assert.Contains(t, out.String(), "give")

	last, ok := s.cfg.History.Last()
	require.True(t, ok)
	assert.False(t, last.Success)
	assert.NotEmpty(t, last.Error)
}

func TestSession_Complete(t *testing.T) {
	s, _, _ := newSession(t)

	tests := []struct {
		name string
		line string
		pos  int
		head string
		want []string
		tail string
	}{
		{name: "literal", line: "te", pos: 2, head: "", want: []string{"team"}},
		{name: "children", line: "team ", pos: 5, head: "team ", want: []string{"add", "remove"}},
		{name: "partial child", line: "team re", pos: 7, head: "team ", want: []string{"remove"}},
		{name: "cursor inside line", line: "team re tail", pos: 7, head: "team ", want: []string{"remove"}, tail: " tail"},
		{name: "console commands", line: ":so", pos: 3, head: "", want: []string{":source", ":sources"}},
		{name: "nothing", line: "zzz", pos: 3, head: "zzz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			head, got, tail := s.Complete(tt.line, tt.pos)
			assert.Equal(t, tt.head, head)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.tail, tail)
		})
	}
}

func TestSession_SwitchSource(t *testing.T) {
	s, out, _ := newSession(t)
	assert.Equal(t, "console> ", s.Prompt())

	require.NoError(t, s.Eval(":source alice"))
	assert.Equal(t, "alice", s.Source().Name)
	assert.Equal(t, "alice> ", s.Prompt())

	err := s.Eval("give 1")
	assert.ErrorIs(t, err, cmderr.ErrUnknownCommand, "alice lacks the level for give")

	out.Reset()
	err = s.Eval(":source mallory")
	var nf *derrors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Contains(t, out.String(), "mallory")
	assert.Equal(t, "alice", s.Source().Name)
}

func TestSession_MetaCommands(t *testing.T) {
	s, out, _ := newSession(t)

	assert.ErrorIs(t, s.Eval(":quit"), ErrQuit)

	require.NoError(t, s.Eval(":help"))
	assert.Contains(t, out.String(), ":reload")

	out.Reset()
	require.NoError(t, s.Eval(":usage team"))
	assert.Contains(t, out.String(), "team add")
	assert.Contains(t, out.String(), "team remove")

	out.Reset()
	require.NoError(t, s.Eval(":sources"))
	assert.Contains(t, out.String(), "alice")

	out.Reset()
	require.NoError(t, s.Eval(":tree"))
	assert.Contains(t, out.String(), "remove ▶ run")

	var nf *derrors.NotFoundError
	assert.ErrorAs(t, s.Eval(":usage nope"), &nf)
	assert.ErrorAs(t, s.Eval(":bogus"), &nf)
}

func TestSession_History(t *testing.T) {
	s, out, _ := newSession(t)
	for _, line := range []string{"team add", "team remove", "say hi"} {
		require.NoError(t, s.Eval(line))
	}

	out.Reset()
	require.NoError(t, s.Eval(":history 2"))
	assert.NotContains(t, out.String(), "team add")
	assert.Contains(t, out.String(), "team remove")
	assert.Contains(t, out.String(), "say hi")

	assert.ErrorIs(t, s.Eval(":history x"), cmderr.ErrInvalidInt)
}

func TestSession_PersistentHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grammar.yml")
	require.NoError(t, os.WriteFile(path, []byte(consoleGrammar), 0o644))
	histPath := filepath.Join(t.TempDir(), "history.json")

	hist, err := history.New(histPath, 10)
	require.NoError(t, err)
	s, err := New(Config{Paths: []string{path}, History: hist})
	require.NoError(t, err)
	require.NoError(t, s.Eval("team add"))

	reopened, err := history.New(histPath, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"team add"}, reopened.Lines())
}

func TestSession_Reload(t *testing.T) {
	s, _, path := newSession(t)
	require.NoError(t, s.Eval(":source alice"))

	updated := consoleGrammar + `
  - literal: ping
    run: { output: pong }
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))
	require.NoError(t, s.Eval(":reload"))
	require.NoError(t, s.Eval("ping"))
	assert.Equal(t, "alice", s.Source().Name, "source survives reload")

	require.NoError(t, os.WriteFile(path, []byte("commands: [{ literal: a, redirect: nowhere }]"), 0o644))
	assert.Error(t, s.Reload())
	assert.NoError(t, s.Eval("ping"), "previous grammar stays active")
}

func TestSession_Watch(t *testing.T) {
	s, out, path := newSession(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Watch(ctx, 20*time.Millisecond))

	updated := consoleGrammar + `
  - literal: ping
    run: { output: pong }
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	require.Eventually(t, func() bool {
		_, ok := s.Compiled().Tree.FindNode("ping")
		return ok
	}, 5*time.Second, 20*time.Millisecond)
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "grammar reloaded")
	}, 5*time.Second, 20*time.Millisecond)
}

func TestSession_WatchStdinOnly(t *testing.T) {
	s, _, _ := newSession(t)
	s.cfg.Paths = []string{"-"}
	assert.NoError(t, s.Watch(context.Background(), 0))
}
