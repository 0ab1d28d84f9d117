// Package config handles loading, merging and validating cmdtree grammar files.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/NikitaCOEUR/cmdtree/internal/derrors"
)

// StdinPath is the grammar path that reads from the loader's stdin.
const StdinPath = "-"

// Ambiguity policy names accepted in settings.
const (
	AmbiguityFirstMatch = "first_match"
	AmbiguityReject     = "reject"
)

// Supported argument type names. A selector reads a source selector: one
// word or "*".
const (
	TypeBool     = "bool"
	TypeInteger  = "integer"
	TypeLong     = "long"
	TypeFloat    = "float"
	TypeDouble   = "double"
	TypeWord     = "word"
	TypeString   = "string"
	TypeGreedy   = "greedy"
	TypeEnum     = "enum"
	TypeSelector = "selector"
)

// KnownTypes lists every argument type name in documentation order.
var KnownTypes = []string{TypeBool, TypeInteger, TypeLong, TypeFloat, TypeDouble, TypeWord, TypeString, TypeGreedy, TypeEnum, TypeSelector}

// SupportedExtensions lists the grammar file extensions ParserFor accepts.
var SupportedExtensions = []string{".yml", ".yaml", ".toml", ".json"}

// DefaultGrammarNames are the file names looked up when no grammar is given.
var DefaultGrammarNames = []string{"cmdtree.yml", "cmdtree.yaml", "cmdtree.toml", "cmdtree.json"}

// FindGrammar returns the first default grammar file present in dir.
func FindGrammar(dir string) (string, bool) {
	for _, name := range DefaultGrammarNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// Grammar is one grammar document, or the merge of several.
type Grammar struct {
	Settings Settings `koanf:"settings" json:"settings,omitempty" jsonschema:"description=Dispatcher and host settings"`
	Sources  []Source `koanf:"sources" json:"sources,omitempty" jsonschema:"description=Named command sources that commands run as"`
	Commands []Node   `koanf:"commands" json:"commands,omitempty" jsonschema:"description=Top level command nodes registered under the root"`
}

// Settings tunes the dispatcher and the host.
type Settings struct {
	Ambiguity    string `koanf:"ambiguity" json:"ambiguity,omitempty" jsonschema:"enum=first_match,enum=reject,description=How sibling arguments that all parse are resolved"`
	LogLevel     string `koanf:"log_level" json:"log_level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,description=Default log level"`
	Source       string `koanf:"source" json:"source,omitempty" jsonschema:"description=Source used when none is given on the command line"`
	History      string `koanf:"history" json:"history,omitempty" jsonschema:"description=Path of the REPL history file"`
	HistoryLimit int    `koanf:"history_limit" json:"history_limit,omitempty" jsonschema:"minimum=0,description=Maximum number of history entries kept"`
	Prompt       string `koanf:"prompt" json:"prompt,omitempty" jsonschema:"description=REPL prompt"`
}

// Source is a named identity commands execute as.
type Source struct {
	Name  string   `koanf:"name" json:"name" jsonschema:"required,minLength=1,description=Unique source name"`
	Level int      `koanf:"level" json:"level,omitempty" jsonschema:"description=Permission level compared by min_level"`
	Tags  []string `koanf:"tags" json:"tags,omitempty" jsonschema:"description=Tags matched by tag conditions and fork selectors"`
}

// Node is one literal or argument node and its subtree.
type Node struct {
	Literal  string `koanf:"literal" json:"literal,omitempty" jsonschema:"description=Keyword matched exactly"`
	Argument string `koanf:"argument" json:"argument,omitempty" jsonschema:"description=Name the parsed value is bound under"`

	Type    string   `koanf:"type" json:"type,omitempty" jsonschema:"enum=bool,enum=integer,enum=long,enum=float,enum=double,enum=word,enum=string,enum=greedy,enum=enum,enum=selector,description=Argument type"`
	Min     *float64 `koanf:"min" json:"min,omitempty" jsonschema:"description=Inclusive lower bound of numeric types"`
	Max     *float64 `koanf:"max" json:"max,omitempty" jsonschema:"description=Inclusive upper bound of numeric types"`
	Choices []string `koanf:"choices" json:"choices,omitempty" jsonschema:"description=Accepted words of the enum type"`
	Suggest []string `koanf:"suggest" json:"suggest,omitempty" jsonschema:"description=Fixed completion candidates"`

	Requires *When `koanf:"requires" json:"requires,omitempty" jsonschema:"description=Condition a source must meet to use the node"`
	Run      *Run  `koanf:"run" json:"run,omitempty" jsonschema:"description=Command executed when input ends here"`

	Redirect *string `koanf:"redirect" json:"redirect,omitempty" jsonschema:"description=Space separated path parsing continues at; empty for the root"`
	Fork     *Fork   `koanf:"fork" json:"fork,omitempty" jsonschema:"description=Redirect that runs the rest once per selected source"`
	As       *As     `koanf:"as" json:"as,omitempty" jsonschema:"description=Redirect that runs the rest as another source"`

	Children []Node `koanf:"children" json:"children,omitempty" jsonschema:"description=Child nodes"`
}

// When is a condition over a source. Atomic conditions at one level are
// combined with AND.
type When struct {
	MinLevel *int   `koanf:"min_level" json:"min_level,omitempty" jsonschema:"description=Source level must be at least this"`
	Tag      string `koanf:"tag" json:"tag,omitempty" jsonschema:"description=Source must carry this tag"`
	Name     string `koanf:"name" json:"name,omitempty" jsonschema:"description=Source must have this name"`
	All      []When `koanf:"all" json:"all,omitempty" jsonschema:"minItems=1,description=All conditions must be true (AND logic)"`
	Any      []When `koanf:"any" json:"any,omitempty" jsonschema:"minItems=1,description=At least one condition must be true (OR logic)"`
}

// Run describes what a command does.
type Run struct {
	Output string `koanf:"output" json:"output,omitempty" jsonschema:"description=text/template rendered with the parsed arguments and sprig functions"`
	Result *int   `koanf:"result" json:"result,omitempty" jsonschema:"description=Result code returned on success (default 1)"`
	FailIf *When  `koanf:"fail_if" json:"fail_if,omitempty" jsonschema:"description=The command fails when the executing source meets this condition"`
	Error  string `koanf:"error" json:"error,omitempty" jsonschema:"description=Message of the failure raised by fail_if"`
}

// Fork redirects once per source selected by an argument value.
type Fork struct {
	Target string `koanf:"target" json:"target" jsonschema:"description=Space separated path of the redirect target; empty for the root"`
	Select string `koanf:"select" json:"select" jsonschema:"required,minLength=1,description=Argument whose value selects sources by name or tag; * selects all"`
}

// As redirects with a single replacement source.
type As struct {
	Target string `koanf:"target" json:"target" jsonschema:"description=Space separated path of the redirect target; empty for the root"`
	Source string `koanf:"source" json:"source,omitempty" jsonschema:"description=Fixed source name"`
	Select string `koanf:"select" json:"select,omitempty" jsonschema:"description=Argument whose value names the source"`
}

// Name returns the literal or argument name.
func (n *Node) Name() string {
	if n.Literal != "" {
		return n.Literal
	}
	return n.Argument
}

// IsLiteral reports whether the node is a literal
func (n *Node) IsLiteral() bool { return n.Literal != "" }

// Redirects reports whether the node continues parsing elsewhere
func (n *Node) Redirects() bool { return n.Redirect != nil || n.Fork != nil || n.As != nil }

// RedirectTarget returns the target path of whichever redirect form is set.
func (n *Node) RedirectTarget() (string, bool) {
	switch {
	case n.Redirect != nil:
		return *n.Redirect, true
	case n.Fork != nil:
		return n.Fork.Target, true
	case n.As != nil:
		return n.As.Target, true
	}
	return "", false
}

// SplitPath splits a space separated node path. The empty path is the root.
func SplitPath(path string) []string {
	return strings.Fields(path)
}

// Source returns the source with name.
func (g *Grammar) Source(name string) (Source, bool) {
	for _, s := range g.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return Source{}, false
}

// cachedGrammar stores a parsed grammar with its modification time and hash
type cachedGrammar struct {
	grammar *Grammar
	modTime time.Time
	size    int64
	hash    string
}

// Loader loads grammar files. It caches parsed files and is safe for
// concurrent use.
type Loader struct {
	// Stdin is read for StdinPath. Defaults to os.Stdin.
	Stdin io.Reader

	mu    sync.Mutex
	cache map[string]*cachedGrammar
}

// New creates a new grammar loader
func New() *Loader {
	return &Loader{
		Stdin: os.Stdin,
		cache: make(map[string]*cachedGrammar),
	}
}

// ParserFor returns the koanf parser for a file extension or format name.
func ParserFor(format string) (koanf.Parser, error) {
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "yml", "yaml":
		return yaml.Parser(), nil
	case "toml":
		return toml.Parser(), nil
	case "json":
		return json.Parser(), nil
	}
	return nil, fmt.Errorf("unsupported grammar format: %q", format)
}

// Load reads and parses a grammar file. StdinPath is read as YAML.
func (l *Loader) Load(path string) (*Grammar, error) {
	if path == StdinPath {
		data, err := io.ReadAll(l.Stdin)
		if err != nil {
			return nil, derrors.NewGrammarError(path, "failed to read stdin", err)
		}
		return LoadBytes(path, data, "yaml")
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, derrors.NewGrammarError(path, "failed to stat grammar", err)
	}

	l.mu.Lock()
	if cached, ok := l.cache[path]; ok {
		if !info.ModTime().After(cached.modTime) && info.Size() == cached.size {
			l.mu.Unlock()
			return cached.grammar, nil
		}
		delete(l.cache, path)
	}
	l.mu.Unlock()

	parser, err := ParserFor(filepath.Ext(path))
	if err != nil {
		return nil, derrors.NewGrammarError(path, "cannot load grammar", err)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, derrors.NewGrammarError(path, "failed to load grammar", err)
	}
	g, err := unmarshal(path, k)
	if err != nil {
		return nil, err
	}

	entry := &cachedGrammar{grammar: g, modTime: info.ModTime(), size: info.Size()}
	if data, err := os.ReadFile(path); err == nil {
		entry.hash = hashBytes(data)
	}
	l.mu.Lock()
	l.cache[path] = entry
	l.mu.Unlock()

	return g, nil
}

// LoadBytes parses an in-memory grammar in format (yaml, toml or json).
// name is only used in errors.
func LoadBytes(name string, data []byte, format string) (*Grammar, error) {
	parser, err := ParserFor(format)
	if err != nil {
		return nil, derrors.NewGrammarError(name, "cannot load grammar", err)
	}
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, derrors.NewGrammarError(name, "failed to parse grammar", err)
	}
	return unmarshal(name, k)
}

func unmarshal(name string, k *koanf.Koanf) (*Grammar, error) {
	g := &Grammar{}
	if err := k.Unmarshal("", g); err != nil {
		return nil, derrors.NewGrammarError(name, "failed to decode grammar", err)
	}
	return g, nil
}

// LoadAll loads paths in order and merges them; later files win.
func (l *Loader) LoadAll(paths []string) (*Grammar, error) {
	merged := &Grammar{}
	for _, path := range paths {
		g, err := l.Load(path)
		if err != nil {
			return nil, err
		}
		merged = Merge(merged, g)
	}
	return merged, nil
}

// Hash computes the SHA-256 hash of a grammar file, reusing the cached
// value while the file is unchanged.
func (l *Loader) Hash(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if cached, ok := l.cache[path]; ok {
		if !info.ModTime().After(cached.modTime) && info.Size() == cached.size && cached.hash != "" {
			return cached.hash, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	hash := hashBytes(data)
	if cached, ok := l.cache[path]; ok {
		cached.hash = hash
	}
	return hash, nil
}

// Forget drops path from the cache
func (l *Loader) Forget(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, path)
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
