package layout

// visibleOrder lists id and its decompressed descendants in pre-order,
// children in sibling order. The returned slice is a reused buffer.
func (t *Tree) visibleOrder(id NodeID) []NodeID {
	order := t.order[:0]
	stack := t.stack[:0]
	stack = append(stack, id)
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, top)
		children := t.nodes[top].Children
		for i := len(children) - 1; i >= 0; i-- {
			if !t.nodes[children[i]].Compressed {
				stack = append(stack, children[i])
			}
		}
	}
	t.order, t.stack = order, stack[:0]
	return order
}

// CountLeaves recomputes NumLeaves for id and its decompressed descendants
// and returns id's count. Each node counts max(1, child leaves) over its
// decompressed children, at least 1, and at least as many leaves as its extra
// label lines need.
func (t *Tree) CountLeaves(id NodeID) int {
	if !t.valid(id) {
		return 0
	}
	order := t.visibleOrder(id)
	// reverse pre-order visits every child before its parent
	for i := len(order) - 1; i >= 0; i-- {
		n := &t.nodes[order[i]]
		leaves := 0
		for _, child := range n.Children {
			c := &t.nodes[child]
			if c.Compressed {
				continue
			}
			leaves += max(1, c.NumLeaves)
		}
		if floor := int(t.excessHeight(n)/t.cfg.LineHeight + 0.5); floor > leaves {
			leaves = floor
		}
		n.NumLeaves = max(1, leaves)
	}
	return t.nodes[id].NumLeaves
}

// ComputeLayout assigns OffsetY and world coordinates to id's decompressed
// descendants, and returns the vertical extent of id's visible subtree.
// When id is the root it is first placed at the tree origin.
//
// Each child is centred on its own leaf weight, shifted by the weight of the
// siblings stacked before it and balanced against the parent's total, so
// subtrees with more visible leaves get proportionally more room.
func (t *Tree) ComputeLayout(id NodeID) (upper, lower float64) {
	if !t.valid(id) {
		return 0, 0
	}
	if id == t.Root() {
		t.nodes[id].WorldX, t.nodes[id].WorldY = t.X, t.Y
	}

	order := t.visibleOrder(id)
	for _, pid := range order {
		p := &t.nodes[pid]
		box := t.CollisionBox(pid)
		p.SubtreeUpperY, p.SubtreeLowerY = box.Y, box.Y+box.H

		parentWeight := max(p.NumLeaves-1, 0)
		accumulated := 0
		for _, cid := range p.Children {
			c := &t.nodes[cid]
			if c.Compressed {
				continue
			}
			childWeight := max(c.NumLeaves-1, 0)
			c.OffsetY = float64(childWeight+accumulated-parentWeight) * t.cfg.YGap / 2
			accumulated += childWeight * 2

			x, y := t.ChildPosition(pid, c.Index)
			c.WorldX = p.WorldX + p.Width + x
			c.WorldY = p.WorldY + y
		}
	}

	// fold bounds upward; reverse pre-order finishes a subtree before its parent
	for i := len(order) - 1; i > 0; i-- {
		c := &t.nodes[order[i]]
		p := &t.nodes[c.Parent]
		p.SubtreeUpperY = min(p.SubtreeUpperY, c.SubtreeUpperY)
		p.SubtreeLowerY = max(p.SubtreeLowerY, c.SubtreeLowerY)
	}

	n := &t.nodes[id]
	return n.SubtreeUpperY, n.SubtreeLowerY
}
