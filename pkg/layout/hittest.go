package layout

// HitTest returns the first visible node whose box contains p, searching in
// pre-order from the root, or NoNode. Compressed children and children whose
// subtree bounds do not span p.Y are skipped without descending, so a hit
// costs O(depth × fan-out) instead of a walk over every visible node.
func (t *Tree) HitTest(p Point) NodeID {
	root := t.Root()
	if root == NoNode {
		return NoNode
	}
	stack := t.stack[:0]
	stack = append(stack, root)
	defer func() { t.stack = stack[:0] }()

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if t.CollisionBox(id).Contains(p) {
			return id
		}
		children := t.nodes[id].Children
		for i := len(children) - 1; i >= 0; i-- {
			c := &t.nodes[children[i]]
			if c.Compressed || p.Y < c.SubtreeUpperY || p.Y > c.SubtreeLowerY {
				continue
			}
			stack = append(stack, children[i])
		}
	}
	return NoNode
}

// Visible calls fn for every node in the decompression window in pre-order,
// starting at the root. Returning false from fn skips that node's children.
func (t *Tree) Visible(fn func(id NodeID, n *Node) bool) {
	root := t.Root()
	if root == NoNode {
		return
	}
	var stack []NodeID
	stack = append(stack, root)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(id, &t.nodes[id]) {
			continue
		}
		children := t.nodes[id].Children
		for i := len(children) - 1; i >= 0; i-- {
			if !t.nodes[children[i]].Compressed {
				stack = append(stack, children[i])
			}
		}
	}
}

// HasHiddenChildren reports whether id is visible but some of its children
// are compressed; renderers mark such nodes as expandable.
func (t *Tree) HasHiddenChildren(id NodeID) bool {
	n := t.Node(id)
	if n == nil || n.Compressed {
		return false
	}
	for _, c := range n.Children {
		if t.nodes[c].Compressed {
			return true
		}
	}
	return false
}

// Bounds returns the rectangle covering every visible box.
func (t *Tree) Bounds() Rect {
	var (
		r     Rect
		first = true
	)
	t.Visible(func(id NodeID, _ *Node) bool {
		box := t.CollisionBox(id)
		if first {
			r, first = box, false
		} else {
			r = r.Union(box)
		}
		return true
	})
	return r
}

// VisibleCount returns the size of the decompression window.
func (t *Tree) VisibleCount() int {
	count := 0
	t.Visible(func(NodeID, *Node) bool {
		count++
		return true
	})
	return count
}
