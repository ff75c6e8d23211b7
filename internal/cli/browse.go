package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Reorder layers and groups interactively",
		Long: `Browse the layer stack in paint order. Moving a grouped layer moves its whole
group, and nothing is ever dropped inside another group.

Keys: ↑/↓ select, K/J move up/down, u ungroup, c compact, s save, q quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.open(cmd.Context())
			if err != nil {
				return err
			}

			p := tea.NewProgram(newBrowseModel(f))
			final, err := p.Run()
			if err != nil {
				return err
			}
			if m, ok := final.(browseModel); ok && m.dirty {
				printWarning("Quit with unsaved changes")
			}
			return nil
		},
	}
}

// =============================================================================
// browseModel - Interactive stack editor
// =============================================================================

// savedMsg reports the result of writing the document.
type savedMsg struct{ err error }

// browseModel is the bubbletea model for the browse command. It edits the
// opened style file in memory; s writes it back.
type browseModel struct {
	file     *styleFile
	cursor   int
	offset   int
	height   int
	dirty    bool
	quitting bool // q pressed once with unsaved changes
	status   string
	err      error
}

func newBrowseModel(f *styleFile) browseModel {
	return browseModel{file: f, height: 20}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if key != "q" && key != "esc" {
			m.quitting = false
		}
		switch key {
		case "ctrl+c":
			return m, tea.Quit
		case "q", "esc":
			if m.dirty && !m.quitting {
				m.quitting = true
				m.status = "Unsaved changes: press q again to discard, s to save"
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			m.setCursor(m.cursor - 1)
		case "down", "j":
			m.setCursor(m.cursor + 1)
		case "K", "shift+up":
			m.apply(m.moveUp)
		case "J", "shift+down":
			m.apply(m.moveDown)
		case "u":
			m.apply(m.ungroup)
		case "c":
			m.apply(m.compact)
		case "s":
			m.status = "Saving..."
			return m, m.save()
		}
	case savedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			return m, nil
		}
		m.dirty = false
		m.err = nil
		m.status = "Saved " + m.file.path
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
		m.setCursor(m.cursor)
	}
	return m, nil
}

// save writes the document outside the update loop.
func (m browseModel) save() tea.Cmd {
	f := m.file
	return func() tea.Msg {
		return savedMsg{err: f.save()}
	}
}

// apply runs an edit that keeps the cursor on the selected layer.
func (m *browseModel) apply(edit func(id string) (string, error)) {
	layers := m.file.stack.Layers()
	if len(layers) == 0 {
		return
	}
	id := layers[m.cursor].ID
	status, err := edit(id)
	if err != nil {
		m.err = err
		m.status = ""
		return
	}
	m.err = nil
	if status == "" {
		return
	}
	m.status = status
	m.dirty = true
	m.setCursor(m.file.stack.Index(id))
}

func (m *browseModel) setCursor(i int) {
	n := m.file.stack.Len()
	m.cursor = min(max(i, 0), max(n-1, 0))
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// moveUp places the selected layer, or its whole group, before the block
// above it. A block is a single ungrouped layer or a group.
func (m *browseModel) moveUp(id string) (string, error) {
	gm := m.file.groups
	layers := m.file.stack.Layers()

	g, grouped := gm.GroupOf(id)
	start := m.file.stack.Index(id)
	if grouped {
		start = gm.FirstIndex(g)
	}
	if start <= 0 {
		return "", nil
	}
	before := gm.ResolveAnchor(layers[start-1].ID)
	if grouped {
		if err := gm.MoveGroup(g, before); err != nil {
			return "", err
		}
		return fmt.Sprintf("Moved %s up", g), nil
	}
	if err := m.file.stack.MoveLayer(id, before); err != nil {
		return "", err
	}
	return fmt.Sprintf("Moved %s up", id), nil
}

// moveDown places the selected layer, or its whole group, after the block
// below it.
func (m *browseModel) moveDown(id string) (string, error) {
	gm := m.file.groups
	layers := m.file.stack.Layers()

	g, grouped := gm.GroupOf(id)
	end := m.file.stack.Index(id)
	if grouped {
		end = gm.LastIndex(g)
	}
	if end >= len(layers)-1 {
		return "", nil
	}
	after := end + 1
	if h, ok := gm.GroupOf(layers[after].ID); ok {
		after = max(gm.LastIndex(h), after)
	}
	before := ""
	if after+1 < len(layers) {
		before = gm.ResolveAnchor(layers[after+1].ID)
	}
	if grouped {
		if err := gm.MoveGroup(g, before); err != nil {
			return "", err
		}
		return fmt.Sprintf("Moved %s down", g), nil
	}
	if err := m.file.stack.MoveLayer(id, before); err != nil {
		return "", err
	}
	return fmt.Sprintf("Moved %s down", id), nil
}

func (m *browseModel) ungroup(id string) (string, error) {
	g, ok := m.file.groups.GroupOf(id)
	if !ok || !m.file.groups.RemoveLayerFromGroup(g, id) {
		return "", nil
	}
	return fmt.Sprintf("Removed %s from %s", id, g), nil
}

func (m *browseModel) compact(string) (string, error) {
	fragmented := m.file.groups.Fragmented()
	for _, g := range fragmented {
		if err := m.file.groups.MoveGroup(g, g); err != nil {
			return "", err
		}
	}
	if len(fragmented) == 0 {
		return "", nil
	}
	return fmt.Sprintf("Compacted %d groups", len(fragmented)), nil
}

func (m browseModel) View() string {
	var b strings.Builder

	title := m.file.doc.Name
	if title == "" {
		title = m.file.path
	}
	if m.dirty {
		title += " *"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ select  K/J move  u ungroup  c compact  s save  q quit"))
	b.WriteString("\n\n")

	layers := m.file.stack.Layers()
	fragmented := make(map[string]bool)
	for _, g := range m.file.groups.Fragmented() {
		fragmented[g] = true
	}

	end := min(m.offset+m.height, len(layers))
	for i := m.offset; i < end; i++ {
		l := layers[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		g := l.Group()
		tag := groupTag(g, fragmented[g])

		line := fmt.Sprintf("%s%3d %-28s", cursor, i, l.ID)
		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		if tag != "" {
			b.WriteString(" " + tag)
		}
		if l.Type != "" {
			b.WriteString(" " + listDimStyle.Render(l.Type))
		}
		b.WriteString("\n")
	}
	if len(layers) == 0 {
		b.WriteString(listDimStyle.Render("  (no layers)"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(iconError + " " + m.err.Error())
	case m.status != "":
		b.WriteString(iconInfo + " " + m.status)
	}
	b.WriteString("\n")

	return b.String()
}
