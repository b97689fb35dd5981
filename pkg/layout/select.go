package layout

// Select makes id the selected node and rebuilds the decompression window
// around it: every ancestor is expanded, every node within depth levels
// below an ancestor (or below id itself) is expanded, and the children at the
// window's boundary are compressed. Leaf counts and coordinates are then
// recomputed from the root.
//
// Selecting NoNode or an unknown id is a no-op; clicks on empty space end up
// here routinely.
func (t *Tree) Select(id NodeID, depth int) {
	if !t.valid(id) {
		return
	}
	if depth < 0 {
		depth = 0
	}

	if t.valid(t.selected) {
		t.nodes[t.selected].Selected = false
	}
	t.nodes[id].Selected = true
	t.selected = id
	t.depth = depth

	// The subtree we climbed out of was resolved one level down; skipping it
	// keeps each call proportional to the old and new windows, not the tree.
	skipped := NoNode
	for ancestor := id; ancestor != NoNode; ancestor = t.nodes[ancestor].Parent {
		t.decompressToDepth(ancestor, skipped, depth)
		skipped = ancestor
	}

	root := t.Root()
	t.CountLeaves(root)
	t.ComputeLayout(root)
}

// SetDepth re-selects the current node with a new window depth.
func (t *Tree) SetDepth(depth int) {
	t.Select(t.selected, depth)
}

// WindowDepth returns the depth used by the last Select.
func (t *Tree) WindowDepth() int {
	return t.depth
}

// decompressToDepth expands id and its descendants (other than skip) down to
// n levels, compressing the children found at the boundary.
func (t *Tree) decompressToDepth(id, skip NodeID, n int) {
	t.setCompressed(id, false)
	if n <= 0 {
		t.compressChildren(id, skip)
		return
	}
	for _, child := range t.nodes[id].Children {
		if child == skip {
			continue
		}
		t.decompressToDepth(child, NoNode, n-1)
	}
}

// compressChildren marks every descendant of id compressed, except skip's
// subtree. Traversal stops at nodes that are already compressed: compression
// is closed downward, so their descendants are compressed too.
func (t *Tree) compressChildren(id, skip NodeID) {
	stack := t.stack[:0]
	for _, child := range t.nodes[id].Children {
		if child != skip && !t.nodes[child].Compressed {
			stack = append(stack, child)
		}
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t.setCompressed(top, true)
		for _, child := range t.nodes[top].Children {
			if !t.nodes[child].Compressed {
				stack = append(stack, child)
			}
		}
	}
	t.stack = stack[:0]
}

func (t *Tree) setCompressed(id NodeID, compressed bool) {
	n := &t.nodes[id]
	if n.Compressed == compressed {
		return
	}
	n.Compressed = compressed
	t.moving = append(t.moving, id)
}
