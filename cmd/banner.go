package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	bannerTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#654FF0"))
	bannerLabel = lipgloss.NewStyle().Faint(true).Width(8)
	bannerValue = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
)

// printBanner writes the startup banner. It is the only output visible in
// the terminal during normal operation; structured logs go to the log file.
func printBanner(w io.Writer, title string, rows [][2]string) {
	var b strings.Builder
	b.WriteString(bannerTitle.Render(title))
	b.WriteString("\n\n")
	for _, row := range rows {
		b.WriteString(bannerLabel.Render(row[0]))
		b.WriteString(bannerValue.Render(row[1]))
		b.WriteString("\n")
	}
	fmt.Fprintln(w, b.String())
}
