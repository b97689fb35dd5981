package layout

// Point is a position in world coordinates.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in world coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether p lies inside r (edges inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Center returns the middle of r.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Union returns the smallest rectangle covering r and o.
func (r Rect) Union(o Rect) Rect {
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1, y1 := max(r.X+r.W, o.X+o.W), max(r.Y+r.H, o.Y+o.H)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// LongestSiblingWidth returns the widest box among id's parent's children,
// or id's own width for the root. Children of one fan-out start their edges
// at a common column no matter how long each label is.
func (t *Tree) LongestSiblingWidth(id NodeID) float64 {
	n := t.Node(id)
	if n == nil {
		return 0
	}
	if n.Parent == NoNode {
		return n.Width
	}
	longest := 0.0
	for _, sib := range t.nodes[n.Parent].Children {
		longest = max(longest, t.nodes[sib].Width)
	}
	return longest
}

// ChildPosition returns the position of id's i-th child relative to the
// right edge of id's box. Wider sibling columns and more visible leaves push
// children further right; children stack at YGap intervals and are then
// nudged by their OffsetY.
func (t *Tree) ChildPosition(id NodeID, i int) (x, y float64) {
	n := t.Node(id)
	if n == nil || i < 0 || i >= len(n.Children) {
		return 0, 0
	}
	x = t.LongestSiblingWidth(id) - n.Width + t.cfg.XGap + t.cfg.FanOutPerLeaf*float64(n.NumLeaves)
	y = t.cfg.YGap*float64(i) + t.nodes[n.Children[i]].OffsetY
	return x, y
}

// CollisionBox returns id's box in world coordinates. The box is vertically
// centred on WorldY so edges attach at mid-height.
func (t *Tree) CollisionBox(id NodeID) Rect {
	n := t.Node(id)
	if n == nil {
		return Rect{}
	}
	return Rect{X: n.WorldX, Y: n.WorldY - n.Height/2, W: n.Width, H: n.Height}
}

// excessHeight is how much taller than one line the node's box is.
func (t *Tree) excessHeight(n *Node) float64 {
	return n.Height - t.cfg.LineHeight
}
