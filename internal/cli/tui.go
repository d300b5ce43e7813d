package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/mdtouml/pkg/markdown"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorFaint)
)

// =============================================================================
// BlockListModel - Interactive Mermaid block selection
// =============================================================================

// BlockListModel is the bubbletea model for picking a Mermaid block.
type BlockListModel struct {
	Blocks   []markdown.Block
	Source   string
	Cursor   int
	Selected *markdown.Block
	Height   int
	Offset   int
}

// NewBlockListModel creates a new block list model.
func NewBlockListModel(source string, blocks []markdown.Block) BlockListModel {
	return BlockListModel{
		Blocks: blocks,
		Source: source,
		Height: 15,
	}
}

func (m BlockListModel) Init() tea.Cmd {
	return nil
}

func (m BlockListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Blocks)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Blocks) == 0 {
				return m, tea.Quit
			}
			block := m.Blocks[m.Cursor]
			m.Selected = &block
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m BlockListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Diagram"))
	if m.Source != "" {
		b.WriteString(" " + listDimStyle.Render(m.Source))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Blocks) {
		end = len(m.Blocks)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, append([]string{cursor}, blockRow(m.Blocks[i])...))
	}

	t := blockTable(rows, func(row int) bool { return m.Offset+row == m.Cursor }, 1).
		Headers(append([]string{""}, blockHeaders...)...)

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Blocks))))

	return b.String()
}

// =============================================================================
// Block Table
// =============================================================================

var blockHeaders = []string{"#", "Line", "Kind", "Lines", "Opens with"}

// maxHeaderWidth truncates long opening lines in tables.
const maxHeaderWidth = 48

func blockRow(blk markdown.Block) []string {
	header := blk.Header
	if header == "" {
		header = "(empty)"
	}
	if len([]rune(header)) > maxHeaderWidth {
		header = string([]rune(header)[:maxHeaderWidth-1]) + "…"
	}
	return []string{
		strconv.Itoa(blk.Index + 1),
		strconv.Itoa(blk.Line),
		blk.Kind.String(),
		strconv.Itoa(blk.Lines()),
		header,
	}
}

// blockTable renders rows with the kind column colored. highlight marks the
// current row; kindCol is the offset of the block columns within a row.
func blockTable(rows [][]string, highlight func(row int) bool, kindCol int) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers(blockHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if col == kindCol+2 && row < len(rows) {
				if style, ok := kindStyles[rows[row][col]]; ok {
					base = style.Padding(0, 1)
				}
			} else if col < kindCol+2 {
				base = base.Foreground(colorMuted)
			}
			if highlight != nil && highlight(row) {
				return base.Bold(true)
			}
			return base
		})
}
