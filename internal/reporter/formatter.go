package reporter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"WealthSentinel/internal/model"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	totalStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// FormatSummary renders the report as a boxed console table.
func FormatSummary(r model.Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("WealthSentinel report"))
	b.WriteString(fmt.Sprintf("  run %s | %s\n\n", shortID(r.RunID), r.GeneratedAt.Format("2006-01-02 15:04")))

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-22s %-8s %-7s %12s %12s", "Stream", "Type", "Status", "Earned", "Target/mo")))
	b.WriteString("\n")
	for _, s := range r.Streams {
		line := fmt.Sprintf("%-22s %-8s %-7s %12s %12s",
			s.Name, s.Kind, s.Status, money(s.CurrentEarnings), money(s.MonthlyTarget))
		if s.Status == model.StatusPaused {
			line = pausedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(totalStyle.Render(fmt.Sprintf("Total earnings: %s", money(r.TotalEarnings))))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Cycles: %d | Runtime: %.2fh | Active streams: %d\n", r.CycleCount, r.RuntimeHours, r.ActiveStreams))
	b.WriteString(fmt.Sprintf("Monthly projection: %s | Annual: %s\n", money(r.MonthlyProjection), money(r.AnnualProjection)))
	b.WriteString(fmt.Sprintf("Efficiency: %.1f%%", r.Efficiency))

	return boxStyle.Render(b.String())
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
