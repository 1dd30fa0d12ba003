package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/cmakegraph/pkg/graph"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listSkippedStyle  = lipgloss.NewStyle().Foreground(colorDim).Strikethrough(true)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// TargetPickerModel - Interactive target selection
// =============================================================================

// pickRow is one target shown by the picker.
type pickRow struct {
	Name      string
	Kind      graph.Kind
	Dependers int
	Frequent  bool
}

// TargetPickerModel is the bubbletea model for choosing targets to skip.
type TargetPickerModel struct {
	Rows    []pickRow
	Skipped map[int]bool
	Cursor  int
	Height  int
	Offset  int

	// Confirmed is set when the user accepted the selection with enter.
	Confirmed bool
}

// NewTargetPickerModel lists the targets of a in declaration order.
func NewTargetPickerModel(a *graph.Annotated) TargetPickerModel {
	var rows []pickRow
	for _, n := range a.Nodes() {
		rows = append(rows, pickRow{
			Name:      n.DisplayName(),
			Kind:      n.Kind,
			Dependers: a.Dependers(n.ID),
			Frequent:  a.Frequent(n.ID),
		})
	}
	return TargetPickerModel{Rows: rows, Skipped: make(map[int]bool), Height: 15}
}

// SkippedNames returns the names of the targets marked for skipping, in
// list order.
func (m TargetPickerModel) SkippedNames() []string {
	var names []string
	for i, r := range m.Rows {
		if m.Skipped[i] {
			names = append(names, r.Name)
		}
	}
	return names
}

func (m TargetPickerModel) Init() tea.Cmd {
	return nil
}

func (m TargetPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Rows) > 0 {
				m.Skipped[m.Cursor] = !m.Skipped[m.Cursor]
			}
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m TargetPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Targets to Skip"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  ⏎ apply  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Rows))

	var rows [][]string
	for i := m.Offset; i < end; i++ {
		r := m.Rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := "[ ]"
		if m.Skipped[i] {
			mark = "[x]"
		}
		freq := ""
		if r.Frequent {
			freq = "★"
		}
		rows = append(rows, []string{cursor + mark, r.Name, r.Kind.String(), strconv.Itoa(r.Dependers), freq})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Target", "Kind", "Dependers", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			switch {
			case idx >= len(m.Rows):
				return lipgloss.NewStyle()
			case m.Skipped[idx]:
				return listSkippedStyle
			case idx == m.Cursor:
				return listSelectedStyle
			case m.Rows[idx].Frequent:
				return StyleFrequent
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d skipped", m.Cursor+1, len(m.Rows), len(m.SkippedNames()))))

	return b.String()
}
