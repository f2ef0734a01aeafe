package preview

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fpenna/blog-rss/pkg/feed"
)

// ViewMode represents the current view mode
type ViewMode int

// View modes for the preview TUI
const (
	ListViewMode ViewMode = iota
	DetailViewMode
	XMLViewMode
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12")).Bold(true)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Model is the Bubble Tea model for the preview TUI
type Model struct {
	items     []feed.Item
	generator *feed.Generator
	cursor    int
	viewMode  ViewMode
	height    int
	now       func() time.Time
}

// NewModel creates a preview of items as generator would publish them
func NewModel(generator *feed.Generator, items []feed.Item) Model {
	return Model{
		items:     items,
		generator: generator,
		viewMode:  ListViewMode,
		now:       time.Now,
	}
}

// Cursor returns the index of the highlighted item
func (m Model) Cursor() int {
	return m.cursor
}

// Mode returns the active view
func (m Model) Mode() ViewMode {
	return m.viewMode
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

		if m.viewMode == ListViewMode {
			return m.updateList(msg), nil
		}
		return m.updateItem(msg), nil
	}

	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = max(len(m.items)-1, 0)
	case "enter":
		if len(m.items) > 0 {
			m.viewMode = DetailViewMode
		}
	case "x":
		if len(m.items) > 0 {
			m.viewMode = XMLViewMode
		}
	}
	return m
}

func (m Model) updateItem(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc", "backspace":
		m.viewMode = ListViewMode
	case "x":
		if m.viewMode == DetailViewMode {
			m.viewMode = XMLViewMode
		} else {
			m.viewMode = DetailViewMode
		}
	}
	return m
}

// View implements tea.Model
func (m Model) View() string {
	switch m.viewMode {
	case DetailViewMode:
		return m.renderItem(FormatDetailedItem(m.items[m.cursor], m.now()), "esc: back to list • x: XML view • q: quit")
	case XMLViewMode:
		body := headerStyle.Render("RSS item") + "\n\n" + FormatXMLItem(m.generator, m.items[m.cursor]) + "\n"
		return m.renderItem(body, "esc: back to list • x: detail view • q: quit")
	default:
		return m.renderList()
	}
}

// visibleRange keeps the cursor roughly centred when the list is taller than the terminal
func (m Model) visibleRange() (int, int) {
	maxVisible := m.height - 6
	if m.height <= 0 || maxVisible >= len(m.items) {
		return 0, len(m.items)
	}
	maxVisible = max(maxVisible, 1)

	start := min(max(m.cursor-maxVisible/2, 0), len(m.items)-maxVisible)
	return start, start + maxVisible
}

func (m Model) renderList() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("%s (%d items)", m.generator.Title, len(m.items))))
	b.WriteString("\n\n")

	start, end := m.visibleRange()
	for i := start; i < end; i++ {
		line := FormatCompactListItem(i, m.items[i])
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("→ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render("↑/↓ or j/k: navigate • enter: details • x: XML • q: quit"))
	return b.String()
}

func (m Model) renderItem(body, help string) string {
	return body + "\n" + footerStyle.Render(help)
}

// Run starts the interactive preview
func Run(generator *feed.Generator, items []feed.Item) error {
	if len(items) == 0 {
		fmt.Println("No items to preview")
		return nil
	}

	_, err := tea.NewProgram(NewModel(generator, items), tea.WithAltScreen()).Run()
	return err
}
