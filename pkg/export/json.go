package export

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/eva/pkg/layout"
)

// LayoutDoc is the JSON form of a laid-out window, for external renderers.
type LayoutDoc struct {
	Depth    int           `json:"depth"`
	Selected []int         `json:"selected"`
	Total    int           `json:"total_nodes"`
	Config   layout.Config `json:"config"`
	Nodes    []LayoutNode  `json:"nodes"`
}

// LayoutNode carries everything needed to draw one visible node.
type LayoutNode struct {
	Index        int      `json:"index"` // position among its parent's children
	Label        string   `json:"label"`
	Lines        []string `json:"lines"`
	X            float64  `json:"x"`
	Y            float64  `json:"y"`
	Width        float64  `json:"width"`
	Height       float64  `json:"height"`
	NumLeaves    int      `json:"num_leaves"`
	Expansion    float64  `json:"expansion"`
	Selected     bool     `json:"selected,omitempty"`
	IsComment    bool     `json:"is_comment,omitempty"`
	IsStringAtom bool     `json:"is_string_atom,omitempty"`
	HasHidden    bool     `json:"has_hidden_children,omitempty"`
	Parent       int      `json:"parent"` // index into Nodes, -1 for the root
}

// BuildLayoutDoc collects the visible window in pre-order.
func BuildLayoutDoc(t *layout.Tree) LayoutDoc {
	doc := LayoutDoc{
		Depth:    t.WindowDepth(),
		Selected: t.Path(t.Selected()),
		Total:    t.Len(),
		Config:   t.Config(),
	}
	index := map[layout.NodeID]int{}
	t.Visible(func(id layout.NodeID, n *layout.Node) bool {
		parent := -1
		if n.Parent != layout.NoNode {
			parent = index[n.Parent]
		}
		index[id] = len(doc.Nodes)

		box := t.CollisionBox(id)
		doc.Nodes = append(doc.Nodes, LayoutNode{
			Index:        n.Index,
			Label:        n.Label,
			Lines:        n.Lines,
			X:            box.X,
			Y:            box.Y,
			Width:        box.W,
			Height:       box.H,
			NumLeaves:    n.NumLeaves,
			Expansion:    n.Expansion,
			Selected:     n.Selected,
			IsComment:    n.IsComment,
			IsStringAtom: n.IsStringAtom,
			HasHidden:    t.HasHiddenChildren(id),
			Parent:       parent,
		})
		return true
	})
	return doc
}

// WriteJSON writes BuildLayoutDoc(t) as indented JSON.
func WriteJSON(w io.Writer, t *layout.Tree) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildLayoutDoc(t))
}
