package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jekabs-s/urlookup/internal/engine"
	"github.com/jekabs-s/urlookup/internal/engine/batch"
)

// printer is the locale-aware message printer for number formatting.
// Uses English locale for consistent thousand separators.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// DefaultFailureLimit caps the failure lines printed after a summary.
const DefaultFailureLimit = 20

// FormatNumber formats an integer with thousand separators.
// Example: FormatNumber(18248) returns "18,248".
func FormatNumber(n int) string {
	return printer.Sprintf("%d", n)
}

// RenderSummary renders the boxed run summary. output is the written workbook
// path and is omitted when empty.
func RenderSummary(s engine.Summary, elapsed time.Duration, output string) string {
	var content strings.Builder

	content.WriteString(HeaderStyle.Render("LOOKUP SUMMARY"))
	content.WriteString("\n")

	writeLine(&content, "Names:     ", ValueStyle.Render(FormatNumber(s.Names)))
	writeLine(&content, "Matched:   ", OKStyle.Render(FormatNumber(s.Matched))+
		LabelStyle.Render(fmt.Sprintf("  (%s without records)", FormatNumber(s.NoRecords))))
	writeLine(&content, "Exhausted: ", countStyle(s.Exhausted, WarningStyle).Render(FormatNumber(s.Exhausted)))
	writeLine(&content, "Rejected:  ", countStyle(s.Rejected, ErrorStyle).Render(FormatNumber(s.Rejected)))
	writeLine(&content, "Records:   ", ValueStyle.Render(FormatNumber(s.Records)))
	writeLine(&content, "Elapsed:   ", ValueStyle.Render(elapsed.Round(time.Millisecond).String()))
	if output != "" {
		content.WriteString(SubtleStyle.Render("Written to " + output))
	}

	return BoxStyle.Render(strings.TrimRight(content.String(), "\n"))
}

// RenderFailures lists names that did not match, at most limit of them.
// Returns "" when there are none.
func RenderFailures(failures []engine.NameResult, limit int) string {
	if len(failures) == 0 {
		return ""
	}
	if limit <= 0 {
		limit = DefaultFailureLimit
	}

	var sb strings.Builder
	sb.WriteString(HeaderStyle.Render("FAILED LOOKUPS"))
	sb.WriteString("\n")
	for i, f := range failures {
		if i == limit {
			sb.WriteString(SubtleStyle.Render(fmt.Sprintf("... and %s more", FormatNumber(len(failures)-limit))))
			sb.WriteString("\n")
			break
		}
		style := WarningStyle
		if f.Outcome == engine.OutcomeRejected {
			style = ErrorStyle
		}
		sb.WriteString(style.Render(fmt.Sprintf("%-9s", f.Outcome)))
		sb.WriteString(" ")
		sb.WriteString(ValueStyle.Render(f.Name))
		if f.Reason != "" {
			sb.WriteString(LabelStyle.Render(" - " + f.Reason))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// RenderProgress renders a one-line progress update for a completed shard.
// The estimate is omitted once nothing remains.
func RenderProgress(p batch.ProgressSnapshot) string {
	line := fmt.Sprintf("shard %d/%d done, %s/%s names (%.1f%%), %s elapsed",
		p.ProcessedShards, p.TotalShards,
		FormatNumber(p.ProcessedItems), FormatNumber(p.TotalItems),
		p.PercentComplete, p.ElapsedTime.Round(time.Second))
	if p.Remaining > 0 {
		line += fmt.Sprintf(", ~%s left", p.Remaining.Round(time.Second))
	}
	return line
}

func writeLine(sb *strings.Builder, label, value string) {
	sb.WriteString(LabelStyle.Render(label))
	sb.WriteString(value)
	sb.WriteString("\n")
}

func countStyle(n int, nonZero lipgloss.Style) lipgloss.Style {
	if n == 0 {
		return ValueStyle
	}
	return nonZero
}
