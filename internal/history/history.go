// Package history stores the command lines executed in the REPL.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/NikitaCOEUR/cmdtree/internal/derrors"
)

// DefaultLimit is the number of entries kept when no limit is configured.
const DefaultLimit = 500

// Entry is one executed command line
type Entry struct {
	Line      string    `json:"line"`
	Source    string    `json:"source"`
	Result    int       `json:"result"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Store manages a capped, file-backed list of entries. An empty path keeps
// the history in memory only.
type Store struct {
	path    string
	limit   int
	mu      sync.RWMutex
	entries []Entry
}

// New opens the history at path, keeping at most limit entries.
func New(path string, limit int) (*Store, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	s := &Store{path: path, limit: limit}
	if path == "" {
		return s, nil
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, derrors.NewHistoryError(path, "failed to create history directory", err)
	}

	// Load existing history if it exists
	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, derrors.NewHistoryError(path, "failed to read history", err)
	}
	return s, nil
}

// DefaultPath returns the history file under the user config directory
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "cmdtree", "history.json")
}

// Path returns the backing file, or "" for an in-memory store
func (s *Store) Path() string { return s.path }

// Add appends e, drops the oldest entries beyond the limit and persists.
func (s *Store) Add(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	s.entries = append(s.entries, e)
	if over := len(s.entries) - s.limit; over > 0 {
		s.entries = slices.Delete(s.entries, 0, over)
	}
	return s.persist()
}

// Entries returns a copy of the entries, oldest first
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries)
}

// Lines returns the entry lines, oldest first, without consecutive repeats.
func (s *Store) Lines() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		if n := len(lines); n > 0 && lines[n-1] == e.Line {
			continue
		}
		lines = append(lines, e.Line)
	}
	return lines
}

// Last returns the newest entry
func (s *Store) Last() (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	return s.entries[len(s.entries)-1], true
}

// Len returns the number of entries
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear removes all entries
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	return s.persist()
}

// load reads history from disk
func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	if over := len(entries) - s.limit; over > 0 {
		entries = entries[over:]
	}
	s.entries = entries
	return nil
}

// persist writes history to disk
func (s *Store) persist() error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return derrors.NewHistoryError(s.path, "failed to encode history", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return derrors.NewHistoryError(s.path, "failed to write history", err)
	}
	return nil
}
