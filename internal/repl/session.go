// Package repl implements the interactive cmdtree console: line evaluation,
// tab completion, persistent history and grammar hot reload.
package repl

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/NikitaCOEUR/cmdtree/internal/config"
	"github.com/NikitaCOEUR/cmdtree/internal/derrors"
	"github.com/NikitaCOEUR/cmdtree/internal/grammar"
	"github.com/NikitaCOEUR/cmdtree/internal/hint"
	"github.com/NikitaCOEUR/cmdtree/internal/history"
	"github.com/NikitaCOEUR/cmdtree/internal/logger"
	"github.com/NikitaCOEUR/cmdtree/internal/render"
	"github.com/NikitaCOEUR/cmdtree/pkg/cmderr"
	"github.com/NikitaCOEUR/cmdtree/pkg/dispatch"
)

// ErrQuit is returned by Eval when the user asked to leave.
var ErrQuit = errors.New("quit")

// MetaPrefix starts a console command that is not part of the grammar.
const MetaPrefix = ":"

// Config configures a Session
type Config struct {
	Loader *config.Loader
	Paths  []string
	// Source is the initial source name; empty selects the grammar default.
	Source  string
	Out     io.Writer
	History *history.Store
	Logger  *logger.Logger
}

// engine is one compiled grammar and its dispatcher. It is never modified
// after creation; reloads swap the whole value.
type engine struct {
	compiled   *grammar.Compiled
	dispatcher *dispatch.Dispatcher[config.Source]
}

// Session evaluates console lines against the current grammar.
type Session struct {
	cfg   Config
	state atomic.Pointer[engine]

	mu     sync.Mutex
	source config.Source
}

// New loads and compiles the grammar files and starts a session.
func New(cfg Config) (*Session, error) {
	if cfg.Loader == nil {
		cfg.Loader = config.New()
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	if cfg.History == nil {
		h, err := history.New("", 0)
		if err != nil {
			return nil, err
		}
		cfg.History = h
	}

	s := &Session{cfg: cfg}
	e, err := s.load()
	if err != nil {
		return nil, err
	}
	src, err := e.compiled.Source(cfg.Source)
	if err != nil {
		return nil, err
	}
	s.source = src
	s.state.Store(e)
	return s, nil
}

func (s *Session) load() (*engine, error) {
	for _, p := range s.cfg.Paths {
		s.cfg.Loader.Forget(p)
	}
	g, err := s.cfg.Loader.LoadAll(s.cfg.Paths)
	if err != nil {
		return nil, err
	}
	c, err := grammar.Compile(g, grammar.Options{Out: s.cfg.Out, Logger: s.cfg.Logger})
	if err != nil {
		return nil, err
	}
	return &engine{compiled: c, dispatcher: c.Dispatcher()}, nil
}

// Reload recompiles the grammar files. On failure the previous grammar stays
// active. The current source is kept when the new grammar still declares it.
func (s *Session) Reload() error {
	e, err := s.load()
	if err != nil {
		s.cfg.Logger.Warn().Err(err).Msg("Grammar reload failed, keeping previous grammar")
		return err
	}

	s.mu.Lock()
	src, err := e.compiled.Source(s.source.Name)
	if err != nil {
		src, _ = e.compiled.Source("")
	}
	s.source = src
	s.mu.Unlock()

	s.state.Store(e)
	s.cfg.Logger.Info().
		Int("nodes", e.compiled.Tree.Len()-1).
		Str("source", src.Name).
		Msg("Grammar reloaded")
	return nil
}

// Compiled returns the active grammar.
func (s *Session) Compiled() *grammar.Compiled { return s.state.Load().compiled }

// Source returns the source lines run as.
func (s *Session) Source() config.Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Prompt returns the prompt configured in settings, or "<source>> ".
func (s *Session) Prompt() string {
	if p := s.Compiled().Grammar.Settings.Prompt; p != "" {
		return p
	}
	return s.Source().Name + "> "
}

// Eval evaluates one line. Grammar lines are parsed, executed and recorded
// in the history; their errors are printed and returned. Blank lines do
// nothing.
func (s *Session) Eval(line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	if strings.HasPrefix(line, MetaPrefix) {
		err := s.meta(strings.Fields(line))
		if err != nil && !errors.Is(err, ErrQuit) {
			s.println(render.Error(err))
		}
		return err
	}

	e := s.state.Load()
	src := s.Source()
	parse := e.dispatcher.Parse(line, src)
	outcome, err := e.dispatcher.Execute(parse)

	entry := history.Entry{Line: line, Source: src.Name, Result: outcome.Result, Success: err == nil && len(outcome.Failures) == 0}
	if err != nil {
		entry.Error = err.Error()
		s.println(render.Error(err))
		if hints := render.Hints(hint.ForParse(parse, hint.DefaultLimit)); hints != "" {
			s.println(hints)
		}
	} else if outcome.Forked || len(outcome.Failures) > 0 {
		s.println(render.Outcome(outcome))
	}
	if herr := s.cfg.History.Add(entry); herr != nil {
		s.cfg.Logger.Warn().Err(herr).Msg("Failed to record history")
	}
	return err
}

// Complete is a liner word completer: the completed line is head followed
// by one of the completions and tail.
func (s *Session) Complete(line string, pos int) (head string, completions []string, tail string) {
	pos = max(0, min(pos, len(line)))
	typed, tail := line[:pos], line[pos:]

	if strings.HasPrefix(typed, MetaPrefix) && !strings.Contains(typed, " ") {
		for _, m := range metaCommands {
			if strings.HasPrefix(m.name, typed) {
				completions = append(completions, m.name)
			}
		}
		return "", completions, tail
	}

	sugg := s.state.Load().dispatcher.Suggest(typed, s.Source())
	if sugg.IsEmpty() {
		return typed, nil, tail
	}
	start := max(0, min(sugg.Range.Start, pos))
	return typed[:start], sugg.Texts(), tail
}

type metaCommand struct {
	name  string
	usage string
	help  string
}

var metaCommands = []metaCommand{
	{":help", ":help", "show this help"},
	{":quit", ":quit", "leave the console"},
	{":source", ":source [NAME]", "show or switch the executing source"},
	{":sources", ":sources", "list declared sources"},
	{":usage", ":usage [PATH...]", "show usage of a node for the current source"},
	{":tree", ":tree", "show the compiled command tree"},
	{":history", ":history [N]", "show the last N history entries"},
	{":reload", ":reload", "reload the grammar files"},
}

func (s *Session) meta(args []string) error {
	switch args[0] {
	case ":help":
		rows := make([][2]string, len(metaCommands))
		for i, m := range metaCommands {
			rows[i] = [2]string{m.usage, m.help}
		}
		s.println(render.Help("⌨️  Console commands:", rows))
	case ":quit", ":exit", ":q":
		return ErrQuit
	case ":source":
		if len(args) == 1 {
			s.println(s.Source().Name)
			return nil
		}
		src, err := s.Compiled().Source(args[1])
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.source = src
		s.mu.Unlock()
		s.println(render.Success("running as " + src.Name))
	case ":sources":
		rows := make([][2]string, 0, len(s.Compiled().Grammar.Sources))
		for _, src := range s.Compiled().Grammar.Sources {
			rows = append(rows, [2]string{src.Name, fmt.Sprintf("level %d %s", src.Level, strings.Join(src.Tags, ","))})
		}
		s.println(render.Help("👤 Sources:", rows))
	case ":usage":
		return s.showUsage(args[1:])
	case ":tree":
		s.println(render.Tree(s.Compiled()))
	case ":history":
		return s.showHistory(args[1:])
	case ":reload":
		if err := s.Reload(); err != nil {
			return err
		}
		s.println(render.Success("grammar reloaded"))
	default:
		return derrors.NewNotFoundError("console command", fmt.Sprintf("unknown console command %q, try :help", args[0]))
	}
	return nil
}

func (s *Session) showUsage(path []string) error {
	e := s.state.Load()
	node, ok := e.compiled.Tree.FindNode(path...)
	if !ok {
		return derrors.NewNotFoundError("node", fmt.Sprintf("no node at %q", strings.Join(path, " ")))
	}
	var lines []string
	for _, u := range e.dispatcher.SmartUsage(node, s.Source()) {
		lines = append(lines, u.Usage)
	}
	s.println(render.Usage(path, lines))
	return nil
}

func (s *Session) showHistory(args []string) error {
	n := 10
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return cmderr.New(cmderr.InvalidInt, args[0], 0).WithValue(args[0])
		}
		n = v
	}
	entries := s.cfg.History.Entries()
	offset := max(0, len(entries)-n)
	s.println(render.History(entries[offset:], offset))
	return nil
}

func (s *Session) println(text string) {
	fmt.Fprintln(s.cfg.Out, text)
}
