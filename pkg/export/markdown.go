package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vanderheijden86/eva/pkg/layout"
)

// GenerateMarkdown creates a Markdown report of the visible window: a
// summary, the outline of visible nodes and the selected node's properties.
func GenerateMarkdown(t *layout.Tree, title string) string {
	var sb strings.Builder

	if title == "" {
		title = "Derivation tree"
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format(time.RFC1123)))

	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Nodes**: %d\n", t.Len()))
	sb.WriteString(fmt.Sprintf("- **Visible**: %d\n", t.VisibleCount()))
	sb.WriteString(fmt.Sprintf("- **Depth**: %d\n", t.WindowDepth()))
	if sel := t.Selected(); sel != layout.NoNode {
		sb.WriteString(fmt.Sprintf("- **Selected**: `%s` at %s\n", firstLine(t.Node(sel).Label), PathString(t.Path(sel))))
	}
	sb.WriteString("\n## Outline\n\n")
	WriteOutline(&sb, t)

	if sel := t.Selected(); sel != layout.NoNode && t.Node(sel).Properties != "" {
		sb.WriteString("\n## Properties\n\n")
		sb.WriteString(t.Node(sel).Properties)
		sb.WriteString("\n")
	}
	return sb.String()
}

// WriteOutline writes the visible nodes as a nested Markdown list. Nodes with
// compressed children end in " …"; the selection is bold.
func WriteOutline(w io.Writer, t *layout.Tree) error {
	var err error
	depth := map[layout.NodeID]int{}
	t.Visible(func(id layout.NodeID, n *layout.Node) bool {
		if err != nil {
			return false
		}
		if n.Parent != layout.NoNode {
			depth[id] = depth[n.Parent] + 1
		}
		label := "`" + strings.ReplaceAll(firstLine(n.Label), "`", "'") + "`"
		if n.Selected {
			label = "**" + label + "**"
		}
		if t.HasHiddenChildren(id) {
			label += " …"
		}
		_, err = fmt.Fprintf(w, "%s- %s\n", strings.Repeat("  ", depth[id]), label)
		return err == nil
	})
	return err
}

// PathString renders a child-index path as the REPL's :select syntax.
func PathString(path []int) string {
	if len(path) == 0 {
		return "root"
	}
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ".")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
