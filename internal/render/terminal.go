package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/peternemser-ui/font-scanner-sub013/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#2563EB")).
			Padding(0, 1)

	scoreGood = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00D26A"))
	scoreWarn = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFB800"))
	scoreBad  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF3838"))

	severityStyles = map[string]lipgloss.Style{
		"critical": lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true),
		"high":     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		"medium":   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD93D")),
		"low":      lipgloss.NewStyle().Foreground(lipgloss.Color("#6BCB77")),
	}

	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	lockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB800")).Italic(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// TerminalRenderer prints a styled report card. Recommendations are the
// gated "pro" section: a locked report shows a teaser line instead.
type TerminalRenderer struct {
	Out io.Writer
}

func (r *TerminalRenderer) Render(rc *model.ReportContext) error {
	var b strings.Builder
	res := rc.Result

	b.WriteString(titleStyle.Render(rc.Title()) + "\n\n")

	if res.Score != nil {
		b.WriteString(fmt.Sprintf("Score: %s", scoreStyle(*res.Score).Render(fmt.Sprintf("%.0f", *res.Score))))
		if res.Grade != "" {
			b.WriteString(fmt.Sprintf("  Grade: %s", scoreStyle(*res.Score).Render(res.Grade)))
		}
		b.WriteString("\n\n")
	}

	if len(res.Summary) > 0 {
		b.WriteString(headerStyle.Render("Summary") + "\n")
		keys := make([]string, 0, len(res.Summary))
		for k := range res.Summary {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(fmt.Sprintf("  %s: %v\n", k, res.Summary[k]))
		}
		b.WriteString("\n")
	}

	if len(res.Findings) > 0 {
		b.WriteString(headerStyle.Render("Findings") + "\n")
		for _, f := range res.Findings {
			sev := strings.ToLower(f.Severity)
			label := sev
			if label == "" {
				label = "info"
			}
			style, ok := severityStyles[sev]
			if !ok {
				style = mutedStyle
			}
			b.WriteString(fmt.Sprintf("  [%s] %s", style.Render(label), f.Message))
			if f.URL != "" {
				b.WriteString(" " + mutedStyle.Render(f.URL))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(res.Recommendations) > 0 {
		b.WriteString(headerStyle.Render("Recommendations") + "\n")
		if rc.Unlocked {
			for _, rec := range res.Recommendations {
				b.WriteString("  • " + rec + "\n")
			}
		} else {
			b.WriteString(lockedStyle.Render(fmt.Sprintf(
				"  %d recommendations available — unlock this report to view them", len(res.Recommendations))) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(mutedStyle.Render("report id: "+rc.ReportID) + "\n")

	_, err := io.WriteString(r.Out, b.String())
	return err
}

func scoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= 80:
		return scoreGood
	case score >= 50:
		return scoreWarn
	default:
		return scoreBad
	}
}
