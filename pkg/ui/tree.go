// tree.go - outline view: the decompression window as an indented list
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/eva/pkg/layout"
)

// OutlineModel renders the visible nodes of a layout.Tree one per row, with
// branch characters like a file tree. The selected row is kept on screen.
type OutlineModel struct {
	theme  Theme
	width  int
	height int

	// rows of the last Build, in pre-order
	rows   []outlineRow
	cursor int // index of the selected row, -1 if none
	offset int // first row shown
}

type outlineRow struct {
	id     layout.NodeID
	prefix string
	label  string
	node   *layout.Node
	hidden bool
}

// NewOutlineModel creates an empty outline.
func NewOutlineModel(theme Theme) OutlineModel {
	return OutlineModel{theme: theme, cursor: -1}
}

// SetSize updates the available dimensions.
func (o *OutlineModel) SetSize(width, height int) {
	o.width = width
	o.height = height
	o.scrollToCursor()
}

// Build recomputes the rows from t's current window.
func (o *OutlineModel) Build(t *layout.Tree) {
	o.rows = o.rows[:0]
	o.cursor = -1
	if t == nil {
		return
	}
	cont := map[layout.NodeID]string{}
	t.Visible(func(id layout.NodeID, n *layout.Node) bool {
		prefix := ""
		if n.Parent != layout.NoNode {
			branch, next := "├── ", "│   "
			if isLastVisibleChild(t, id) {
				branch, next = "└── ", "    "
			}
			prefix = cont[n.Parent] + branch
			cont[id] = cont[n.Parent] + next
		}
		label, _, _ := strings.Cut(n.Label, "\n")
		if n.Selected {
			o.cursor = len(o.rows)
		}
		o.rows = append(o.rows, outlineRow{
			id:     id,
			prefix: prefix,
			label:  label,
			node:   n,
			hidden: t.HasHiddenChildren(id),
		})
		return true
	})
	o.scrollToCursor()
}

// Len returns the number of rows.
func (o *OutlineModel) Len() int {
	return len(o.rows)
}

// NodeAt returns the node shown on screen row y, or NoNode.
func (o *OutlineModel) NodeAt(y int) layout.NodeID {
	i := o.offset + y
	if y < 0 || i >= len(o.rows) {
		return layout.NoNode
	}
	return o.rows[i].id
}

func (o *OutlineModel) scrollToCursor() {
	if o.cursor < 0 || o.height <= 0 {
		o.offset = 0
		return
	}
	if o.cursor < o.offset {
		o.offset = o.cursor
	}
	if o.cursor >= o.offset+o.height {
		o.offset = o.cursor - o.height + 1
	}
}

// View renders the visible slice of rows.
func (o *OutlineModel) View() string {
	if len(o.rows) == 0 {
		return o.renderEmptyState()
	}
	r := o.theme.Renderer
	treeStyle := r.NewStyle().Foreground(o.theme.Muted)
	indicatorStyle := r.NewStyle().Foreground(o.theme.Secondary)

	end := len(o.rows)
	if o.height > 0 {
		end = min(end, o.offset+o.height)
	}
	var sb strings.Builder
	for i := o.offset; i < end; i++ {
		row := o.rows[i]
		var line strings.Builder
		line.WriteString(treeStyle.Render(row.prefix))
		line.WriteString(indicatorStyle.Render(expandIndicator(row)))
		line.WriteString(" ")

		label := row.label
		if o.width > 0 {
			label = truncateLabel(label, o.width-lipgloss.Width(row.prefix)-2)
		}
		switch {
		case i == o.cursor:
			label = o.theme.Selected.Render(label)
		case row.node.IsComment:
			label = r.NewStyle().Foreground(o.theme.Comment).Italic(true).Render(label)
		case row.node.IsStringAtom:
			label = r.NewStyle().Foreground(o.theme.String).Render(label)
		}
		line.WriteString(label)

		if i > o.offset {
			sb.WriteString("\n")
		}
		sb.WriteString(line.String())
	}
	return sb.String()
}

func (o *OutlineModel) renderEmptyState() string {
	r := o.theme.Renderer
	titleStyle := r.NewStyle().Foreground(o.theme.Primary).Bold(true)
	mutedStyle := r.NewStyle().Foreground(o.theme.Muted)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Outline"))
	sb.WriteString("\n\n")
	sb.WriteString(mutedStyle.Render("No tree to display."))
	sb.WriteString("\n\n")
	sb.WriteString(mutedStyle.Render("Press : and enter a term, or :load a file."))
	return sb.String()
}

// expandIndicator is • for leaves, ▸ when children are compressed and ▾
// when the node is fully open.
func expandIndicator(row outlineRow) string {
	switch {
	case row.node.IsLeaf():
		return "•"
	case row.hidden:
		return "▸"
	default:
		return "▾"
	}
}

func isLastVisibleChild(t *layout.Tree, id layout.NodeID) bool {
	for s := t.NextSibling(id); s != layout.NoNode; s = t.NextSibling(s) {
		if !t.Node(s).Compressed {
			return false
		}
	}
	return true
}

// truncateLabel shortens s to at most maxLen cells with an ellipsis.
func truncateLabel(s string, maxLen int) string {
	if maxLen <= 1 {
		return "…"
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > maxLen {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
