// Package dispatch is the command tree engine: it builds frozen trees of
// literal and argument nodes, parses input lines against them, executes the
// resolved commands across redirects and forks, and computes completion
// suggestions and usage strings.
//
// A tree is built once with a TreeBuilder and frozen with Build. A frozen
// Tree and the Dispatcher serving it are safe for concurrent use.
package dispatch

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/NikitaCOEUR/cmdtree/pkg/suggestion"
)

const (
	// ArgumentSeparator separates tokens of a command line.
	ArgumentSeparator = ' '
	// SingleSuccess is the conventional result of a command that succeeded.
	SingleSuccess = 1
)

// Usage grammar tokens
const (
	UsageOptionalOpen  = "["
	UsageOptionalClose = "]"
	UsageRequiredOpen  = "<"
	UsageRequiredClose = ">"
	UsageOr            = "|"
	UsageRedirectRoot  = "..."
	UsageRedirect      = "->"
)

// Command runs when parsing ends at its node. It returns a result code.
type Command[S any] func(ctx *CommandContext[S]) (int, error)

// Requirement decides whether a source may use a node.
type Requirement[S any] func(source S) bool

// RedirectModifier derives the sources a redirect continues with.
type RedirectModifier[S any] func(ctx *CommandContext[S]) ([]S, error)

// SingleRedirectModifier derives exactly one source.
type SingleRedirectModifier[S any] func(ctx *CommandContext[S]) (S, error)

// SuggestionProvider overrides the suggestions of an argument node.
type SuggestionProvider[S any] func(ctx *CommandContext[S], b *suggestion.Builder) (*suggestion.Suggestions, error)

// ResultConsumer observes every command invocation.
type ResultConsumer[S any] func(ctx *CommandContext[S], success bool, result int)

// AmbiguityConsumer receives sibling nodes that accept the same inputs.
type AmbiguityConsumer[S any] func(parent, child, sibling *Node[S], inputs []string)

// AmbiguityPolicy selects how Parse treats input that more than one
// argument sibling accepts.
type AmbiguityPolicy int

const (
	// FirstMatch takes the first argument child, in registration order, that parses.
	FirstMatch AmbiguityPolicy = iota
	// RejectAmbiguous fails with AmbiguousInput when a later sibling parses too.
	RejectAmbiguous
)

func (p AmbiguityPolicy) String() string {
	if p == RejectAmbiguous {
		return "reject"
	}
	return "first_match"
}

type options struct {
	log      logrus.FieldLogger
	policy   AmbiguityPolicy
	consumer any
}

// Option configures a Dispatcher.
type Option func(*options)

// WithLogger sets the logger used for debug traces.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithAmbiguityPolicy sets how ambiguous argument input is handled.
func WithAmbiguityPolicy(p AmbiguityPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithResultConsumer registers fn to observe invocations. New panics when
// S does not match the dispatcher source type.
func WithResultConsumer[S any](fn ResultConsumer[S]) Option {
	return func(o *options) { o.consumer = fn }
}

// Dispatcher serves parse, execute, suggestion and usage requests against
// one frozen tree.
type Dispatcher[S any] struct {
	tree     *Tree[S]
	log      logrus.FieldLogger
	policy   AmbiguityPolicy
	consumer ResultConsumer[S]
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// New creates a dispatcher for tree.
func New[S any](tree *Tree[S], opts ...Option) *Dispatcher[S] {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = discardLogger()
	}
	d := &Dispatcher[S]{
		tree:     tree,
		log:      o.log,
		policy:   o.policy,
		consumer: func(*CommandContext[S], bool, int) {},
	}
	if o.consumer != nil {
		fn, ok := o.consumer.(ResultConsumer[S])
		if !ok {
			panic(fmt.Sprintf("dispatch: result consumer %T does not accept %T sources", o.consumer, *new(S)))
		}
		if fn != nil {
			d.consumer = fn
		}
	}
	return d
}

// Tree returns the tree being served
func (d *Dispatcher[S]) Tree() *Tree[S] { return d.tree }

// Root returns the tree root
func (d *Dispatcher[S]) Root() *Node[S] { return d.tree.Root() }

// Policy returns the ambiguity policy
func (d *Dispatcher[S]) Policy() AmbiguityPolicy { return d.policy }
