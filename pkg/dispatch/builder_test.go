package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikitaCOEUR/cmdtree/pkg/arguments"
)

func TestTreeBuilder_Register(t *testing.T) {
	tb := NewTreeBuilder[string]()
	id, err := tb.Register(tb.Literal("foo").Then(tb.Arg("bar", arguments.Integer()).Executes(ok)))
	require.NoError(t, err)

	tree := tb.MustBuild()
	foo := tree.Node(id)
	require.NotNil(t, foo)
	assert.Equal(t, KindLiteral, foo.Kind())
	assert.Equal(t, "foo", foo.Name())
	assert.False(t, foo.HasCommand())
	assert.Same(t, tree.Root(), foo.Parent())

	bar := foo.Child("bar")
	require.NotNil(t, bar)
	assert.Equal(t, KindArgument, bar.Kind())
	assert.True(t, bar.HasCommand())
	assert.Equal(t, "<bar>", bar.UsageText())
	assert.Equal(t, "integer", bar.Type().(interface{ String() string }).String())
	assert.Equal(t, 3, tree.Len())
}

func TestTreeBuilder_MergesByName(t *testing.T) {
	tb := NewTreeBuilder[string]()
	first := tb.MustRegister(tb.Literal("foo").Then(tb.Literal("a")))
	second := tb.MustRegister(tb.Literal("foo").Executes(ok).Then(tb.Literal("b")))
	tree := tb.MustBuild()

	assert.Equal(t, first, second)
	foo := tree.Node(first)
	assert.True(t, foo.HasCommand())
	var names []string
	for _, c := range foo.Children() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"a", "b"}, names)
	assert.Len(t, tree.Root().Children(), 1)
}

func TestTreeBuilder_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func(tb *TreeBuilder[string]) error
		want  error
	}{
		{
			name: "children after redirect",
			build: func(tb *TreeBuilder[string]) error {
				_, err := tb.Register(tb.Literal("a").Redirect(tb.Root()).Then(tb.Literal("b")))
				return err
			},
			want: ErrChildrenOnRedirect,
		},
		{
			name: "redirect after children",
			build: func(tb *TreeBuilder[string]) error {
				_, err := tb.Register(tb.Literal("a").Then(tb.Literal("b")).Redirect(tb.Root()))
				return err
			},
			want: ErrRedirectWithChildren,
		},
		{
			name: "nested invalid child",
			build: func(tb *TreeBuilder[string]) error {
				_, err := tb.Register(tb.Literal("a").Then(tb.Literal("b").Redirect(tb.Root()).Then(tb.Literal("c"))))
				return err
			},
			want: ErrChildrenOnRedirect,
		},
		{
			name: "merge into redirecting node",
			build: func(tb *TreeBuilder[string]) error {
				tb.MustRegister(tb.Literal("a").Redirect(tb.Root()))
				_, err := tb.Register(tb.Literal("a").Then(tb.Literal("b")))
				return err
			},
			want: ErrChildrenOnRedirect,
		},
		{
			name: "unknown redirect target",
			build: func(tb *TreeBuilder[string]) error {
				_, err := tb.Register(tb.Literal("a").Redirect(NodeID(42)))
				return err
			},
			want: ErrUnknownNode,
		},
		{
			name: "unknown parent",
			build: func(tb *TreeBuilder[string]) error {
				_, err := tb.RegisterUnder(NodeID(42), tb.Literal("a"))
				return err
			},
			want: ErrUnknownNode,
		},
		{
			name: "literal with separator",
			build: func(tb *TreeBuilder[string]) error {
				_, err := tb.Register(tb.Literal("a b"))
				return err
			},
			want: ErrInvalidName,
		},
		{
			name: "argument without type",
			build: func(tb *TreeBuilder[string]) error {
				_, err := tb.Register(tb.Arg("x", nil))
				return err
			},
			want: ErrInvalidName,
		},
		{
			name: "argument named like a literal sibling",
			build: func(tb *TreeBuilder[string]) error {
				tb.MustRegister(tb.Literal("tp"))
				_, err := tb.Register(tb.Arg("tp", arguments.Word()))
				return err
			},
			want: ErrInvalidName,
		},
		{
			name: "literal named like a nested argument",
			build: func(tb *TreeBuilder[string]) error {
				tb.MustRegister(tb.Literal("tp").Then(tb.Arg("x", arguments.Integer())))
				_, err := tb.Register(tb.Literal("tp").Then(tb.Literal("x")))
				return err
			},
			want: ErrInvalidName,
		},
		{
			name: "set redirect on branching node",
			build: func(tb *TreeBuilder[string]) error {
				id := tb.MustRegister(tb.Literal("a").Then(tb.Literal("b")))
				return tb.SetRedirect(id, tb.Root(), nil, false)
			},
			want: ErrRedirectWithChildren,
		},
		{
			name: "register after build",
			build: func(tb *TreeBuilder[string]) error {
				tb.MustBuild()
				_, err := tb.Register(tb.Literal("late"))
				return err
			},
			want: ErrFrozen,
		},
		{
			name: "build twice",
			build: func(tb *TreeBuilder[string]) error {
				tb.MustBuild()
				_, err := tb.Build()
				return err
			},
			want: ErrFrozen,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.build(NewTreeBuilder[string]()), tt.want)
		})
	}
}

func TestTreeBuilder_FailedRegisterLeavesTreeUntouched(t *testing.T) {
	tb := NewTreeBuilder[string]()
	_, err := tb.Register(tb.Literal("a").Then(tb.Literal("ok")).Then(tb.Literal("bad").Redirect(NodeID(99))))
	require.Error(t, err)

	_, found := tb.FindNode("a")
	assert.False(t, found)
}

func TestTreeBuilder_MustPanics(t *testing.T) {
	tb := NewTreeBuilder[string]()
	assert.Panics(t, func() {
		tb.MustRegister(tb.Literal("a").Then(tb.Literal("b")).Redirect(tb.Root()))
	})
	tb.MustBuild()
	assert.Panics(t, func() { tb.MustBuild() })
}

func TestTreeBuilder_SetRedirect(t *testing.T) {
	tb := NewTreeBuilder[string]()
	target := tb.MustRegister(tb.Literal("target").Executes(ok))
	alias := tb.MustRegister(tb.Literal("alias"))
	require.NoError(t, tb.SetRedirect(alias, target, nil, false))

	_, err := tb.RegisterUnder(alias, tb.Literal("child"))
	assert.ErrorIs(t, err, ErrChildrenOnRedirect)

	tree := tb.MustBuild()
	assert.Same(t, tree.Node(target), tree.Node(alias).Redirect())
}

func TestTree_PathAndFindNode(t *testing.T) {
	tb := NewTreeBuilder[string]()
	tb.MustRegister(tb.Literal("a").Then(tb.Literal("b").Then(tb.Arg("c", arguments.Word()))))
	tree := tb.MustBuild()

	c, found := tree.FindNode("a", "b", "c")
	require.True(t, found)
	assert.Equal(t, []string{"a", "b", "c"}, tree.Path(c.ID()))
	assert.Empty(t, tree.Path(RootID))

	root, found := tree.FindNode()
	require.True(t, found)
	assert.Equal(t, KindRoot, root.Kind())

	_, found = tree.FindNode("a", "x")
	assert.False(t, found)
}

func TestTree_Walk(t *testing.T) {
	tb := NewTreeBuilder[string]()
	tb.MustRegister(tb.Literal("a").Then(tb.Literal("b")))
	tb.MustRegister(tb.Literal("c"))
	tree := tb.MustBuild()

	var visited []string
	tree.Walk(func(n *Node[string], depth int) {
		visited = append(visited, n.Kind().String()+":"+n.Name())
		_ = depth
	})
	assert.Equal(t, []string{"root:", "literal:a", "literal:b", "literal:c"}, visited)
}

func TestNode_IsValidInput(t *testing.T) {
	tb := NewTreeBuilder[string]()
	tb.MustRegister(tb.Literal("foo"))
	tb.MustRegister(tb.Arg("n", arguments.Integer()))
	tree := tb.MustBuild()

	foo, _ := tree.FindNode("foo")
	n, _ := tree.FindNode("n")

	assert.True(t, foo.IsValidInput("foo"))
	assert.True(t, foo.IsValidInput("foo bar"))
	assert.False(t, foo.IsValidInput("food"))
	assert.True(t, n.IsValidInput("123"))
	assert.False(t, n.IsValidInput("12a"))
	assert.False(t, tree.Root().IsValidInput(""))
}
