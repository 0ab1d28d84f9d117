package render

import (
	"fmt"
	"strings"

	"github.com/NikitaCOEUR/cmdtree/internal/config"
	"github.com/NikitaCOEUR/cmdtree/internal/grammar"
	"github.com/NikitaCOEUR/cmdtree/internal/history"
	"github.com/NikitaCOEUR/cmdtree/pkg/dispatch"
	"github.com/NikitaCOEUR/cmdtree/pkg/suggestion"
)

// Suggestions renders completion candidates with the range they replace.
func Suggestions(input string, s *suggestion.Suggestions) string {
	if s.IsEmpty() {
		return subtleStyle.Render("No suggestions")
	}
	var b strings.Builder
	b.WriteString(sectionStyle.Render(fmt.Sprintf("💬 Suggestions for %q", s.Range.Get(input))) +
		subtleStyle.Render(" "+s.Range.String()) + "\n")
	for _, sg := range s.List {
		b.WriteString(indent + valueStyle.Render(sg.Text))
		if sg.Tooltip != "" {
			b.WriteString(subtleStyle.Render("  " + sg.Tooltip))
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Usage renders usage lines under a heading naming the node path.
func Usage(path []string, lines []string) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("📖 Usage of "+pathLabel(path)+":") + "\n")
	if len(lines) == 0 {
		b.WriteString(indent + subtleStyle.Render("No usable commands"))
		return b.String()
	}
	prefix := strings.Join(path, " ")
	if prefix != "" {
		prefix += " "
	}
	for _, l := range lines {
		b.WriteString(indent + keyStyle.Render(prefix) + valueStyle.Render(l) + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func pathLabel(path []string) string {
	if len(path) == 0 {
		return "<root>"
	}
	return strings.Join(path, " ")
}

// Ambiguities renders the report of the ambiguity analyzer.
func Ambiguities[S any](tree *dispatch.Tree[S], found []dispatch.Ambiguity[S]) string {
	if len(found) == 0 {
		return successStyle.Render("✓ No ambiguous siblings")
	}
	var b strings.Builder
	b.WriteString(warningStyle.Render(fmt.Sprintf("⚠️  %d ambiguous pair(s):", len(found))) + "\n")
	for _, a := range found {
		fmt.Fprintf(&b, "%s%s %s %s %s %s\n",
			indent,
			keyStyle.Render(pathLabel(tree.Path(a.Parent.ID()))+":"),
			valueStyle.Render(a.Child.UsageText()),
			subtleStyle.Render("and"),
			valueStyle.Render(a.Sibling.UsageText()),
			subtleStyle.Render("both accept "+strings.Join(a.Inputs, ", ")))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Outcome renders the result of Execute.
func Outcome(o dispatch.Outcome[config.Source]) string {
	var b strings.Builder
	status := successStyle.Render("✓")
	if len(o.Failures) > 0 {
		status = warningStyle.Render("⚠")
	}
	b.WriteString(status + " " + keyStyle.Render("result: ") + valueStyle.Render(fmt.Sprint(o.Result)))
	if o.Forked {
		b.WriteString(subtleStyle.Render(fmt.Sprintf(" (forked: %d succeeded, %d failed)", o.Successes, len(o.Failures))))
	}
	for _, f := range o.Failures {
		b.WriteString("\n" + indent + errorStyle.Render("✗ "+f.Source.Name+": ") + valueStyle.Render(f.Err.Error()))
	}
	return b.String()
}

// Tree renders the compiled command tree, one node per line, with the
// type, guard, run and redirect of each node.
func Tree(c *grammar.Compiled) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("🌳 Command tree:") + "\n")
	c.Tree.Walk(func(n *dispatch.Node[config.Source], depth int) {
		if n.Kind() == dispatch.KindRoot {
			return
		}
		b.WriteString(indent + strings.Repeat("  ", depth-1))
		switch n.Kind() {
		case dispatch.KindLiteral:
			b.WriteString(valueStyle.Render(n.Name()))
		case dispatch.KindArgument:
			b.WriteString(valueStyle.Render(n.UsageText()) + subtleStyle.Render(fmt.Sprintf(" %v", n.Type())))
		}

		if cfg, ok := c.Node(n.ID()); ok {
			if cfg.Requires != nil {
				b.WriteString(warningStyle.Render(" [requires " + config.SummarizeWhen(cfg.Requires) + "]"))
			}
			if cfg.Run != nil {
				b.WriteString(successStyle.Render(" ▶ run"))
			}
		}
		if r := n.Redirect(); r != nil {
			arrow := " → "
			if n.Forks() {
				arrow = " ⇉ "
			}
			b.WriteString(keyStyle.Render(arrow + pathLabel(c.Tree.Path(r.ID()))))
		}
		b.WriteString("\n")
	})
	return strings.TrimSuffix(b.String(), "\n")
}

// Success renders a one-line confirmation.
func Success(msg string) string {
	return successStyle.Render("✓ " + msg)
}

// Help renders a two column list of names and descriptions.
func Help(title string, rows [][2]string) string {
	width := 0
	for _, r := range rows {
		width = max(width, len(r[0]))
	}
	var b strings.Builder
	b.WriteString(sectionStyle.Render(title) + "\n")
	for _, r := range rows {
		b.WriteString(indent + keyStyle.Render(fmt.Sprintf("%-*s", width, r[0])) + "  " + subtleStyle.Render(r[1]) + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// History renders the most recent entries, oldest first, numbered from
// their position in the full history.
func History(entries []history.Entry, offset int) string {
	if len(entries) == 0 {
		return subtleStyle.Render("History is empty")
	}
	var b strings.Builder
	for i, e := range entries {
		mark := successStyle.Render("✓")
		if !e.Success {
			mark = errorStyle.Render("✗")
		}
		fmt.Fprintf(&b, "%s%s %s %s%s\n",
			indent,
			subtleStyle.Render(fmt.Sprintf("%4d", offset+i+1)),
			mark,
			valueStyle.Render(e.Line),
			subtleStyle.Render(" ("+e.Source+")"))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Warning renders a one-line warning.
func Warning(msg string) string {
	return warningStyle.Render("⚠️  " + msg)
}

// Timing renders a phase summary line.
func Timing(summary string) string {
	return subtleStyle.Render("⏱  " + summary)
}
