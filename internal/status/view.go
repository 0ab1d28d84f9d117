package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/NikitaCOEUR/cmdtree/internal/config"
)

var (
	// Colors and styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Render renders the inspect data to a string
func Render(data *Data) string {
	var b strings.Builder

	b.WriteString(renderHeader(data))
	b.WriteString("\n")

	b.WriteString(renderFiles(data))
	b.WriteString("\n")

	if data.CompileErr != nil {
		b.WriteString(renderCompileError(data))
		b.WriteString("\n")
	}

	b.WriteString(renderSettings(data))
	b.WriteString("\n")

	b.WriteString(renderSources(data))
	b.WriteString("\n")

	b.WriteString(renderStats(data))
	b.WriteString("\n")

	b.WriteString(renderAnalysis(data))

	if data.History != nil {
		b.WriteString("\n")
		b.WriteString(renderHistory(data))
	}

	return b.String()
}

func renderHeader(data *Data) string {
	version := data.Version
	if data.GitCommit != "" && data.GitCommit != "unknown" {
		version += " (" + data.GitCommit + ")"
	}
	return titleStyle.Render("📦 Version: ") + valueStyle.Render(version)
}

func renderFiles(data *Data) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("📝 Grammar files:") + "\n")

	if len(data.Files) == 0 {
		b.WriteString("   " + subtleStyle.Render("No grammar files given"))
		return b.String()
	}

	for i, f := range data.Files {
		status := successStyle.Render("✓")
		note := ""
		switch {
		case f.Err != nil:
			status = errorStyle.Render("✗")
			note = subtleStyle.Render(" (" + f.Err.Error() + ")")
		case f.Path == config.StdinPath:
			note = subtleStyle.Render(" (stdin)")
		default:
			note = subtleStyle.Render(fmt.Sprintf(" (%s, %s, %s)", f.Format, formatBytes(f.Size), shortHash(f.Hash)))
		}
		b.WriteString(fmt.Sprintf("   %d. %s %s%s\n", i+1, valueStyle.Render(f.Path), status, note))
	}

	// Remove trailing newline
	return strings.TrimSuffix(b.String(), "\n")
}

func renderCompileError(data *Data) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("❌ Errors:") + "\n")
	for _, line := range strings.Split(data.CompileErr.Error(), "\n") {
		b.WriteString("   " + errorStyle.Render(line) + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderSettings(data *Data) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("⚙️  Settings:") + "\n")

	s := data.Settings
	ambiguity := data.Ambiguity
	if ambiguity == "" {
		ambiguity = orDefault(s.Ambiguity, config.AmbiguityFirstMatch)
	}
	b.WriteString("   " + keyStyle.Render("Ambiguity: ") + valueStyle.Render(ambiguity) + "\n")
	b.WriteString("   " + keyStyle.Render("Log level: ") + valueStyle.Render(orDefault(s.LogLevel, "info")) + "\n")
	b.WriteString("   " + keyStyle.Render("Default source: ") + valueStyle.Render(orDefault(s.Source, "first declared")))
	if s.Prompt != "" {
		b.WriteString("\n   " + keyStyle.Render("Prompt: ") + valueStyle.Render(s.Prompt))
	}
	return b.String()
}

func renderSources(data *Data) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("👤 Sources:") + "\n")

	if len(data.Sources) == 0 {
		b.WriteString("   " + subtleStyle.Render("No sources declared"))
		return b.String()
	}
	for _, s := range data.Sources {
		b.WriteString(fmt.Sprintf("   %s %s",
			keyStyle.Render(s.Name),
			valueStyle.Render(fmt.Sprintf("level %d", s.Level))))
		if len(s.Tags) > 0 {
			b.WriteString(" " + subtleStyle.Render("["+strings.Join(s.Tags, ", ")+"]"))
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderStats(data *Data) string {
	var b strings.Builder
	s := data.Stats
	b.WriteString(sectionStyle.Render("🌳 Commands:") + "\n")
	b.WriteString("   " + keyStyle.Render("Top level: ") + valueStyle.Render(fmt.Sprintf("%d", s.Commands)) + "\n")
	b.WriteString("   " + keyStyle.Render("Nodes: ") + valueStyle.Render(fmt.Sprintf("%d (%d literals, %d arguments)", s.Nodes(), s.Literals, s.Arguments)) + "\n")
	b.WriteString("   " + keyStyle.Render("Runs: ") + valueStyle.Render(fmt.Sprintf("%d", s.Runs)) + "\n")
	b.WriteString("   " + keyStyle.Render("Redirects: ") + valueStyle.Render(fmt.Sprintf("%d (%d forks)", s.Redirects+s.Forks, s.Forks)) + "\n")
	b.WriteString("   " + keyStyle.Render("Guarded: ") + valueStyle.Render(fmt.Sprintf("%d", s.Guarded)))
	return b.String()
}

func renderAnalysis(data *Data) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("🔍 Analysis:") + "\n")

	if data.CompileErr != nil {
		b.WriteString("   " + errorStyle.Render("✗ Grammar does not compile"))
		return b.String()
	}

	if data.Ambiguities == 0 {
		b.WriteString("   " + successStyle.Render("✓ No ambiguous siblings") + "\n")
	} else {
		b.WriteString("   " + warningStyle.Render(fmt.Sprintf("⚠ %d ambiguous pair(s), run 'cmdtree analyze'", data.Ambiguities)) + "\n")
	}
	for _, w := range data.Warnings {
		b.WriteString("   " + warningStyle.Render("⚠ ") + keyStyle.Render(w.Field+": ") + subtleStyle.Render(w.Message) + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderHistory(data *Data) string {
	var b strings.Builder
	h := data.History
	b.WriteString(sectionStyle.Render("💾 History:") + "\n")

	if h.Err != nil {
		b.WriteString("   " + keyStyle.Render("Path: ") + subtleStyle.Render(h.Path) + "\n")
		b.WriteString("   " + errorStyle.Render("✗ "+h.Err.Error()))
		return b.String()
	}
	if h.Path == "" {
		b.WriteString("   " + keyStyle.Render("Path: ") + subtleStyle.Render("in memory") + "\n")
	} else {
		b.WriteString("   " + keyStyle.Render("Path: ") + subtleStyle.Render(h.Path) + "\n")
		b.WriteString("   " + keyStyle.Render("Size: ") + valueStyle.Render(formatBytes(h.Size)) + "\n")
	}
	b.WriteString("   " + keyStyle.Render("Entries: ") + valueStyle.Render(fmt.Sprintf("%d", h.Entries)))
	if !h.Last.IsZero() {
		b.WriteString("\n   " + keyStyle.Render("Last: ") + valueStyle.Render(h.Last.Format("2006-01-02 15:04:05")))
	}
	return b.String()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
