package layout

import "github.com/vanderheijden86/eva/pkg/model"

// FromTerm builds a tree from the rewriter's term representation. Child order
// is preserved; every node starts expanded and unselected, with no layout
// until the first Select. A nil term yields an empty tree.
func FromTerm(term *model.Term, cfg Config) *Tree {
	t := New(cfg)
	if term == nil {
		return t
	}
	t.nodes = make([]Node, 0, term.Count())

	type frame struct {
		term   *model.Term
		parent NodeID
	}
	// children are pushed in reverse so they are appended in sibling order
	stack := []frame{{term, NoNode}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		id := t.AddNode(top.parent, top.term.Label)
		n := &t.nodes[id]
		n.IsComment = top.term.IsComment
		n.IsStringAtom = top.term.IsStringAtom
		n.Properties = top.term.Properties

		for i := len(top.term.Children) - 1; i >= 0; i-- {
			if c := top.term.Children[i]; c != nil {
				stack = append(stack, frame{c, id})
			}
		}
	}
	return t
}

// ToTerm converts the tree back into the rewriter's representation.
func (t *Tree) ToTerm() *model.Term {
	root := t.Root()
	if root == NoNode {
		return nil
	}
	terms := make([]*model.Term, len(t.nodes))
	for i := range t.nodes {
		n := &t.nodes[i]
		terms[i] = &model.Term{
			Label:        n.Label,
			IsComment:    n.IsComment,
			IsStringAtom: n.IsStringAtom,
			Properties:   n.Properties,
		}
	}
	for i := range t.nodes {
		for _, c := range t.nodes[i].Children {
			terms[i].Children = append(terms[i].Children, terms[c])
		}
	}
	return terms[root]
}

// Relayout rebuilds t with different geometry, keeping the selection and
// window depth. Animation state is settled in the copy.
func (t *Tree) Relayout(cfg Config) *Tree {
	out := FromTerm(t.ToTerm(), cfg)
	if sel := t.Selected(); sel != NoNode {
		out.Select(out.Resolve(t.Path(sel)), t.depth)
	}
	out.Settle()
	return out
}
