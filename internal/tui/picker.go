package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marqo-ai/compat-runner/internal/cases"
)

// Action represents the action to take after picker selection
type Action int

const (
	ActionNone Action = iota
	ActionRun
	ActionQuit
)

// PickerResult holds the result of the picker
type PickerResult struct {
	Action Action
	Cases  []string
}

// caseItem implements list.Item for case display
type caseItem struct {
	c        cases.Case
	selected bool
}

func (i caseItem) Title() string {
	mark := "[ ]"
	if i.selected {
		mark = "[x]"
	}
	return mark + " " + i.c.Name
}

func (i caseItem) Description() string {
	var phases []string
	if i.c.Prepare != nil {
		phases = append(phases, "prepare")
	}
	if i.c.Test != nil {
		phases = append(phases, "test")
	}

	desc := fmt.Sprintf("%s | declared %s", strings.Join(phases, "+"), i.c.DeclaredVersion())
	if i.c.Description != "" {
		desc += " | " + i.c.Description
	}
	return desc
}

func (i caseItem) FilterValue() string {
	return i.c.Name
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)
)

// Model is the bubbletea model for the case picker
type Model struct {
	list     list.Model
	result   PickerResult
	quitting bool
	width    int
	height   int
}

// NewPicker creates a case picker. title names the scenario being set up.
func NewPicker(cs []cases.Case, title string) Model {
	items := buildGroupedItems(cs)

	l := list.New(items, newGroupedDelegate(), 80, 20)
	l.Title = title
	l.SetShowStatusBar(true)
	l.SetStatusBarItemName("case", "cases")
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	skipHeaders(&l, 1)

	return Model{list: l}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// selectedNames returns the checked cases in list order, or the case under
// the cursor when nothing is checked.
func (m Model) selectedNames() []string {
	var names []string
	for _, item := range m.list.Items() {
		if ci, ok := item.(caseItem); ok && ci.selected {
			names = append(names, ci.c.Name)
		}
	}
	if len(names) == 0 {
		if ci, ok := m.list.SelectedItem().(caseItem); ok {
			names = append(names, ci.c.Name)
		}
	}
	return names
}

func (m *Model) toggleCurrent() {
	if ci, ok := m.list.SelectedItem().(caseItem); ok {
		ci.selected = !ci.selected
		m.list.SetItem(m.list.Index(), ci)
	}
}

// toggleAll checks every case, or clears them when all are checked.
func (m *Model) toggleAll() {
	items := m.list.Items()
	all := true
	for _, item := range items {
		if ci, ok := item.(caseItem); ok && !ci.selected {
			all = false
			break
		}
	}
	for i, item := range items {
		if ci, ok := item.(caseItem); ok {
			ci.selected = !all
			m.list.SetItem(i, ci)
		}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		// Don't handle keys if filtering
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			if names := m.selectedNames(); len(names) > 0 {
				m.result = PickerResult{Action: ActionRun, Cases: names}
				m.quitting = true
				return m, tea.Quit
			}

		case " ", "space", "x":
			m.toggleCurrent()
			return m, nil

		case "a":
			m.toggleAll()
			return m, nil

		case "q", "esc":
			m.result = PickerResult{Action: ActionQuit}
			m.quitting = true
			return m, tea.Quit
		}

		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		skipHeaders(&m.list, navigationDirection(msg))
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("[space] Toggle  [a] All  [enter] Run  [/] Filter  [q] Quit")

	return m.list.View() + "\n" + help
}

// Result returns the picker result
func (m Model) Result() PickerResult {
	return m.result
}

// RunPicker runs the interactive case picker
func RunPicker(cs []cases.Case, title string) (PickerResult, error) {
	if len(cs) == 0 {
		return PickerResult{Action: ActionQuit}, nil
	}

	m := NewPicker(cs, title)
	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return PickerResult{}, err
	}

	return finalModel.(Model).Result(), nil
}

// SimplePicker is a non-interactive listing of the cases
func SimplePicker(cs []cases.Case, title string) string {
	var sb strings.Builder

	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("─", 60) + "\n\n")

	if len(cs) == 0 {
		sb.WriteString("No compatibility cases match these versions.\n")
		return sb.String()
	}

	items := buildGroupedItems(cs)
	n := 0
	for _, item := range items {
		switch it := item.(type) {
		case headerItem:
			sb.WriteString(it.label + "\n")
		case caseItem:
			n++
			sb.WriteString(fmt.Sprintf("  %d. %s\n", n, it.c.Name))
			sb.WriteString(fmt.Sprintf("     %s\n", it.Description()))
		}
	}
	sb.WriteString(fmt.Sprintf("\n%d case(s)\n", caseCount(items)))

	return sb.String()
}
