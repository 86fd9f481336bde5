package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")).Width(12)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#45475A")).
			Padding(0, 1)
)

// printSummary writes the report path, styled when w is a terminal.
func printSummary(w io.Writer, report *domain.Report, path string) {
	if !isTerminal(w) {
		fmt.Fprintf(w, "Actions file path: %s\n", path)
		return
	}
	fmt.Fprintln(w, renderSummary(report, path))
}

func renderSummary(report *domain.Report, path string) string {
	scope := report.Organization
	if scope == "" {
		scope = report.User
	}

	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Discovery complete"),
		"",
		row("Scope", scope),
		row("Actions", fmt.Sprintf("%d", len(report.Actions))),
		row("Workflows", fmt.Sprintf("%d", len(report.Workflows))),
		row("Updated", report.LastUpdated),
		row("Report", path),
	)
	return boxStyle.Render(body)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
