package ui

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/eva/pkg/layout"
	"github.com/vanderheijden86/eva/pkg/model"
)

// newTreeTestTheme renders without colour so views compare as plain text.
func newTreeTestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(io.Discard))
}

// sampleLayout is f(a, g(b, c), "s", % note) with the root selected at
// depth 1.
func sampleLayout(t *testing.T) *layout.Tree {
	t.Helper()
	term := &model.Term{Label: "f", Children: []*model.Term{
		{Label: "a"},
		{Label: "g", Properties: "rule R2", Children: []*model.Term{{Label: "b"}, {Label: "c"}}},
		{Label: `"s"`, IsStringAtom: true},
		{Label: "% note\nsecond", IsComment: true},
	}}
	tree := layout.FromTerm(term, layout.CellConfig())
	tree.Select(tree.Root(), 1)
	tree.Settle()
	return tree
}

// TestOutlineBuildEmpty verifies Build() handles a nil tree
func TestOutlineBuildEmpty(t *testing.T) {
	o := NewOutlineModel(newTreeTestTheme())
	o.Build(nil)

	if o.Len() != 0 {
		t.Errorf("expected 0 rows, got %d", o.Len())
	}
	if o.NodeAt(0) != layout.NoNode {
		t.Error("expected NoNode on an empty outline")
	}
	if !strings.Contains(o.View(), "No tree to display") {
		t.Errorf("expected empty state, got %q", o.View())
	}
}

// TestOutlineView verifies prefixes, indicators and first-line labels
func TestOutlineView(t *testing.T) {
	o := NewOutlineModel(newTreeTestTheme())
	o.Build(sampleLayout(t))

	want := strings.Join([]string{
		"▾ f",
		"├── • a",
		"├── ▸ g",
		`├── • "s"`,
		"└── • % note",
	}, "\n")
	if got := o.View(); got != want {
		t.Errorf("outline mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

// TestOutlineViewNested verifies continuation bars under an open subtree
func TestOutlineViewNested(t *testing.T) {
	tree := sampleLayout(t)
	tree.Select(tree.Resolve([]int{1, 1}), 1)
	tree.Settle()

	o := NewOutlineModel(newTreeTestTheme())
	o.Build(tree)

	want := strings.Join([]string{
		"▾ f",
		"├── • a",
		"├── ▾ g",
		"│   ├── • b",
		"│   └── • c",
		`├── • "s"`,
		"└── • % note",
	}, "\n")
	if got := o.View(); got != want {
		t.Errorf("outline mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
	if o.cursor != 4 {
		t.Errorf("expected cursor on c (row 4), got %d", o.cursor)
	}
}

// TestOutlineScrollsToSelection verifies the selected row stays on screen
func TestOutlineScrollsToSelection(t *testing.T) {
	tree := sampleLayout(t)
	tree.Select(tree.Resolve([]int{3}), 1)

	o := NewOutlineModel(newTreeTestTheme())
	o.SetSize(40, 2)
	o.Build(tree)

	if got := o.NodeAt(0); got != tree.Resolve([]int{2}) {
		t.Errorf("row 0: expected the string atom, got %d", got)
	}
	if got := o.NodeAt(1); got != tree.Resolve([]int{3}) {
		t.Errorf("row 1: expected the comment, got %d", got)
	}
	if got := o.NodeAt(2); got != layout.NoNode {
		t.Errorf("row 2: expected NoNode, got %d", got)
	}
	if got := o.NodeAt(-1); got != layout.NoNode {
		t.Errorf("row -1: expected NoNode, got %d", got)
	}
	if lines := strings.Count(o.View(), "\n") + 1; lines != 2 {
		t.Errorf("expected 2 rendered rows, got %d", lines)
	}
}

func TestOutlineTruncatesToWidth(t *testing.T) {
	tree := layout.FromTerm(&model.Term{Label: "root", Children: []*model.Term{
		{Label: "a_really_long_constructor_name"},
	}}, layout.CellConfig())
	tree.Select(tree.Root(), 1)

	o := NewOutlineModel(newTreeTestTheme())
	o.SetSize(16, 10)
	o.Build(tree)

	for _, line := range strings.Split(o.View(), "\n") {
		if w := lipgloss.Width(line); w > 16 {
			t.Errorf("line %q is %d wide, want <= 16", line, w)
		}
	}
}

func TestExpandIndicator(t *testing.T) {
	leaf := &layout.Node{}
	branch := &layout.Node{Children: []layout.NodeID{1}}

	tests := []struct {
		name string
		row  outlineRow
		want string
	}{
		{"leaf", outlineRow{node: leaf}, "•"},
		{"compressed", outlineRow{node: branch, hidden: true}, "▸"},
		{"open", outlineRow{node: branch}, "▾"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandIndicator(tt.row); got != tt.want {
				t.Errorf("expandIndicator = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateLabel(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 6, "hello…"},
		{"日本語テキスト", 5, "日本…"},
		{"anything", 1, "…"},
		{"anything", 0, "…"},
	}
	for _, tt := range tests {
		if got := truncateLabel(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncateLabel(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}
