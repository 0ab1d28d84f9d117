package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikitaCOEUR/cmdtree/internal/derrors"
)

const grammar = `
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
`

func runApp(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.Reader = strings.NewReader(stdin)
	err := app.Run(context.Background(), append([]string{"cmdtree"}, args...))
	return out.String(), err
}

func grammarFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grammar.yml")
	require.NoError(t, os.WriteFile(path, []byte(grammar), 0o644))
	return path
}

func TestApp_Run(t *testing.T) {
	path := grammarFile(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "default source", args: []string{"--grammar", path, "run", "give", "3"}, want: "gave 3\n"},
		{name: "source flag", args: []string{"-g", path, "run", "--source", "alice", "say", "hello", "world"}, want: "[alice] hello world\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runApp(t, "", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestApp_RunRequiresLine(t *testing.T) {
	_, err := runApp(t, "", "--grammar", grammarFile(t), "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command line required")
}

func TestApp_RunFromStdin(t *testing.T) {
	out, err := runApp(t, "commands: [{ literal: ping, run: { output: pong } }]", "--grammar", "-", "run", "ping")
	require.NoError(t, err)
	assert.Equal(t, "pong\n", out)
}

func TestApp_MergedGrammars(t *testing.T) {
	base := grammarFile(t)
	override := filepath.Join(t.TempDir(), "override.yml")
	require.NoError(t, os.WriteFile(override, []byte(`
commands:
  - literal: ping
    run: { output: pong }
`), 0o644))

	out, err := runApp(t, "", "-g", base, "-g", override, "run", "ping")
	require.NoError(t, err)
	assert.Equal(t, "pong\n", out)

	out, err = runApp(t, "", "-g", base, "-g", override, "run", "give", "1")
	require.NoError(t, err)
	assert.Equal(t, "gave 1\n", out)
}

func TestApp_Suggest(t *testing.T) {
	out, err := runApp(t, "", "-g", grammarFile(t), "suggest", "--cursor", "1", "s")
	require.NoError(t, err)
	assert.Contains(t, out, "say")
}

func TestApp_Usage(t *testing.T) {
	out, err := runApp(t, "", "-g", grammarFile(t), "usage", "--source", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "say <msg>")
	assert.NotContains(t, out, "give")
}

func TestApp_Validate(t *testing.T) {
	out, err := runApp(t, "", "validate", grammarFile(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Grammar is valid")
}

func TestApp_Schema(t *testing.T) {
	out, err := runApp(t, "", "schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"commands"`)
}

func TestExitCode(t *testing.T) {
	joined := errors.Join(
		derrors.NewValidationError("commands[0]", "missing literal", nil),
		derrors.NewValidationError("commands[1]", "unknown type", nil),
	)
	assert.Equal(t, 2, exitCode(fmt.Errorf("compile: %w", joined)))
	assert.Equal(t, 2, exitCode(derrors.NewGrammarError("g.yml", "bad yaml", nil)))
	assert.Equal(t, 1, exitCode(derrors.NewNotFoundError("source", "no source")))
	assert.Equal(t, 1, exitCode(errors.New("plain")))
}
