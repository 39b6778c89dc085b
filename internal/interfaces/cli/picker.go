package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

// ErrPickCancelled is returned when the picker is closed without a choice
var ErrPickCancelled = errors.New("no game selected")

// GameChoice is one discovered game offered by the picker
type GameChoice struct {
	Name string
	Path string
}

// gameChoices turns discovered games into choices sorted by name
func gameChoices(games map[string]string) []GameChoice {
	out := make([]GameChoice, 0, len(games))
	for path, name := range games {
		out = append(out, GameChoice{Name: name, Path: path})
	}
	sort.Slice(out, func(i, j int) bool {
		if a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name); a != b {
			return a < b
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// runPicker lets the user choose a game in the terminal
func runPicker(in io.Reader, out io.Writer, title string, choices []GameChoice) (GameChoice, error) {
	if len(choices) == 0 {
		return GameChoice{}, fmt.Errorf("no games found")
	}

	program := tea.NewProgram(newPickerModel(title, choices), tea.WithInput(in), tea.WithOutput(out))
	final, err := program.Run()
	if err != nil {
		return GameChoice{}, fmt.Errorf("picker failed: %w", err)
	}

	m := final.(pickerModel)
	if m.chosen == nil {
		return GameChoice{}, ErrPickCancelled
	}
	return *m.chosen, nil
}

// pickerModel holds the state of the Bubble Tea game picker
type pickerModel struct {
	title        string
	choices      []GameChoice
	filter       string
	visible      []int
	cursor       int
	chosen       *GameChoice
	windowHeight int
}

func newPickerModel(title string, choices []GameChoice) pickerModel {
	m := pickerModel{title: title, choices: choices}
	m.applyFilter()
	return m
}

// Init implements the Bubble Tea init method
func (m pickerModel) Init() tea.Cmd {
	return nil
}

// Update implements the Bubble Tea update method
func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowHeight = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			if len(m.visible) > 0 {
				choice := m.choices[m.visible[m.cursor]]
				m.chosen = &choice
			}
			return m, tea.Quit

		case tea.KeyUp:
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case tea.KeyDown:
			if m.cursor < len(m.visible)-1 {
				m.cursor++
			}
			return m, nil

		case tea.KeyBackspace:
			if m.filter != "" {
				runes := []rune(m.filter)
				m.filter = string(runes[:len(runes)-1])
				m.applyFilter()
			}
			return m, nil

		case tea.KeySpace:
			m.filter += " "
			m.applyFilter()
			return m, nil

		case tea.KeyRunes:
			m.filter += string(msg.Runes)
			m.applyFilter()
			return m, nil
		}
	}

	return m, nil
}

// applyFilter keeps the choices whose name contains the filter
func (m *pickerModel) applyFilter() {
	needle := strings.ToLower(m.filter)
	visible := make([]int, 0, len(m.choices))
	for i, c := range m.choices {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			visible = append(visible, i)
		}
	}
	m.visible = visible
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// View implements the Bubble Tea view method
func (m pickerModel) View() string {
	if m.chosen != nil {
		return ""
	}

	header := titleStyle.Render(m.title)
	filter := mutedStyle.Render("Filter: ") + m.filter

	rows := []string{header, filter, ""}
	if len(m.visible) == 0 {
		rows = append(rows, mutedStyle.Render("  No matching games"))
	}

	start, end := m.window()
	for i := start; i < end; i++ {
		c := m.choices[m.visible[i]]
		name := fmt.Sprintf("%-32s", truncateString(c.Name, 32))
		if i == m.cursor {
			name = cursorStyle.Render("> " + name)
		} else {
			name = "  " + name
		}
		rows = append(rows, name+" "+mutedStyle.Render(c.Path))
	}

	rows = append(rows, "", mutedStyle.Render("Controls: [↑↓] Navigate | type to filter | [Enter] Select | [Esc] Cancel"))
	return lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n"
}

// window returns the range of visible rows that fits the terminal
func (m pickerModel) window() (int, int) {
	maxRows := len(m.visible)
	if m.windowHeight > 6 && m.windowHeight-6 < maxRows {
		maxRows = m.windowHeight - 6
	}
	start := 0
	if m.cursor >= maxRows {
		start = m.cursor - maxRows + 1
	}
	return start, start + maxRows
}

// truncateString truncates a string to the specified length
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
