package repl

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/NikitaCOEUR/cmdtree/internal/config"
	"github.com/NikitaCOEUR/cmdtree/internal/render"
)

// DefaultDebounce is how long the watcher waits for a burst of file events
// to settle before reloading.
const DefaultDebounce = 150 * time.Millisecond

// Watch reloads the session whenever one of its grammar files changes,
// until ctx is done. Parent directories are watched so editors that
// replace files on save are seen too. Stdin grammars are not watched.
func (s *Session) Watch(ctx context.Context, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	targets := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, p := range s.cfg.Paths {
		if p == config.StdinPath {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", p, err)
		}
		targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	if len(targets) == 0 {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	go s.watchLoop(ctx, w, targets, debounce)
	return nil
}

func (s *Session) watchLoop(ctx context.Context, w *fsnotify.Watcher, targets map[string]bool, debounce time.Duration) {
	defer func() { _ = w.Close() }()

	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !targets[abs] {
				continue
			}
			s.cfg.Logger.Debug().Str("file", abs).Str("op", event.Op.String()).Msg("Grammar file changed")
			timer.Reset(debounce)

		case <-timer.C:
			if err := s.Reload(); err != nil {
				s.println(render.Error(err))
				continue
			}
			s.println(render.Success("grammar reloaded"))

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.cfg.Logger.Warn().Err(err).Msg("Grammar watcher error")
		}
	}
}
