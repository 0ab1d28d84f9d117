package repl

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/peterh/liner"
)

// Run reads lines from the terminal until :quit, Ctrl+C, Ctrl+D or ctx is
// done. The liner history is seeded from the session history.
func (s *Session) Run(ctx context.Context) error {
	line := liner.NewLiner()
	defer func() { _ = line.Close() }()

	line.SetCtrlCAborts(true)
	line.SetTabCompletionStyle(liner.TabPrints)
	line.SetWordCompleter(s.Complete)
	for _, l := range s.cfg.History.Lines() {
		line.AppendHistory(l)
	}

	s.println("Type :help for console commands, Tab to complete.")
	for {
		if ctx.Err() != nil {
			return nil
		}
		input, err := line.Prompt(s.Prompt())
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(s.cfg.Out)
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		if err := s.Eval(input); errors.Is(err, ErrQuit) {
			return nil
		}
	}
}
