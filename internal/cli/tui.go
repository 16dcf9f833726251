package cli

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listQuestionStyle = lipgloss.NewStyle().Foreground(colorYellow)
)

// errPromptCanceled is returned when the user quits a prompt.
var errPromptCanceled = errors.New("canceled")

// =============================================================================
// ChecklistModel - Interactive multi-selection
// =============================================================================

// ChecklistModel is the bubbletea model for choosing any number of items,
// used for deployment configurations.
type ChecklistModel struct {
	Title    string
	Items    []string
	Checked  []bool
	Cursor   int
	Done     bool
	Canceled bool
}

// NewChecklistModel creates a checklist with the items of checked already
// ticked, compared case-insensitively.
func NewChecklistModel(title string, items, checked []string) ChecklistModel {
	m := ChecklistModel{Title: title, Items: items, Checked: make([]bool, len(items))}
	for i, item := range items {
		for _, c := range checked {
			if strings.EqualFold(item, c) {
				m.Checked[i] = true
			}
		}
	}
	return m
}

func (m ChecklistModel) Init() tea.Cmd {
	return nil
}

func (m ChecklistModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		m.Canceled = true
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Items)-1 {
			m.Cursor++
		}
	case " ", "x":
		if len(m.Items) > 0 {
			m.Checked[m.Cursor] = !m.Checked[m.Cursor]
		}
	case "a":
		m.setAll(true)
	case "t":
		m.setAll(false)
	case "enter":
		m.Done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m ChecklistModel) setAll(v bool) {
	for i := range m.Checked {
		m.Checked[i] = v
	}
}

// Selected returns the ticked items in list order.
func (m ChecklistModel) Selected() []string {
	out := []string{}
	for i, item := range m.Items {
		if m.Checked[i] {
			out = append(out, item)
		}
	}
	return out
}

func (m ChecklistModel) View() string {
	var b strings.Builder

	b.WriteString(listQuestionStyle.Render("? " + m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("space toggle  a all  t none  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	for i, item := range m.Items {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := "[ ]"
		if m.Checked[i] {
			box = StyleSuccess.Render("[" + iconSuccess + "]")
		}
		line := fmt.Sprintf("%s%s %s", cursor, box, item)
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// SelectModel - Interactive single selection
// =============================================================================

// SelectModel is the bubbletea model for choosing one option, used for the
// git client and yes/no questions.
type SelectModel struct {
	Title    string
	Options  []string
	Labels   []string // shown instead of Options when set
	Cursor   int
	Selected *string
}

// NewSelectModel creates a selection with the cursor on current, or on the
// first option.
func NewSelectModel(title string, options []string, current string) SelectModel {
	m := SelectModel{Title: title, Options: options}
	for i, o := range options {
		if o == current {
			m.Cursor = i
		}
	}
	return m
}

func (m SelectModel) Init() tea.Cmd {
	return nil
}

func (m SelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Options)-1 {
			m.Cursor++
		}
	case "enter":
		if len(m.Options) > 0 {
			m.Selected = &m.Options[m.Cursor]
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m SelectModel) label(i int) string {
	if i < len(m.Labels) && m.Labels[i] != "" {
		return m.Labels[i]
	}
	if m.Options[i] == "" {
		return "None"
	}
	return m.Options[i]
}

func (m SelectModel) View() string {
	var b strings.Builder

	b.WriteString(listQuestionStyle.Render("? " + m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i := range m.Options {
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render("▸ " + m.label(i)))
		} else {
			b.WriteString(listNormalStyle.Render("  " + m.label(i)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// Prompts
// =============================================================================

// chooseMany asks for any number of items.
func chooseMany(title string, items, checked []string) ([]string, error) {
	final, err := tea.NewProgram(NewChecklistModel(title, items, checked)).Run()
	if err != nil {
		return nil, err
	}
	m := final.(ChecklistModel)
	if m.Canceled || !m.Done {
		return nil, errPromptCanceled
	}
	return m.Selected(), nil
}

// chooseOne asks for one of options.
func chooseOne(title string, options []string, current string) (string, error) {
	final, err := tea.NewProgram(NewSelectModel(title, options, current)).Run()
	if err != nil {
		return "", err
	}
	m := final.(SelectModel)
	if m.Selected == nil {
		return "", errPromptCanceled
	}
	return *m.Selected, nil
}

// confirm asks a yes/no question.
func confirm(title string, def bool) (bool, error) {
	current := "no"
	if def {
		current = "yes"
	}
	m := NewSelectModel(title, []string{"yes", "no"}, current)
	m.Labels = []string{"Yes", "No"}
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return false, err
	}
	sel := final.(SelectModel).Selected
	if sel == nil {
		return false, errPromptCanceled
	}
	return *sel == "yes", nil
}
