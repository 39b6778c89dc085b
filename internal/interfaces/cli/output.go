package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/mitchellh/go-wordwrap"
)

// wrapWidth is the column long descriptions are wrapped at
const wrapWidth = 78

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// renderTable renders rows under headers with a rounded border
func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}

// printTable writes a table, or a muted note when there are no rows
func printTable(w io.Writer, empty string, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render(empty))
		return
	}
	fmt.Fprintln(w, renderTable(headers, rows))
}

func printOK(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, okStyle.Render(fmt.Sprintf(format, args...)))
}

func printWarn(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf(format, args...)))
}

// field renders a "label: value" line with the value wrapped under the label
func field(label, value string) string {
	prefix := fmt.Sprintf("%-14s", label+":")
	wrapped := wordwrap.WrapString(value, uint(wrapWidth-len(prefix)))
	lines := strings.Split(wrapped, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = strings.Repeat(" ", len(prefix)) + lines[i]
	}
	return titleStyle.Render(prefix) + strings.Join(lines, "\n")
}

func formatSize(size int64) string {
	if size < 0 {
		return "?"
	}
	return humanize.Bytes(uint64(size))
}

func formatAge(t time.Time) string {
	return humanize.Time(t)
}
