package layout

// NodeID addresses a node inside its Tree's arena.
type NodeID int

// NoNode is the absent node: the root's parent, a miss in HitTest, an empty
// selection.
const NoNode NodeID = -1

// Node is one vertex of the derivation tree together with its decompression
// state and layout outputs.
type Node struct {
	Label        string
	Lines        []string // Label after wrapping
	Width        float64
	Height       float64
	IsComment    bool
	IsStringAtom bool
	Properties   string

	Parent   NodeID
	Children []NodeID
	Index    int // position in the parent's Children

	Compressed bool
	Selected   bool
	NumLeaves  int

	OffsetY       float64
	WorldX        float64
	WorldY        float64
	SubtreeUpperY float64
	SubtreeLowerY float64

	// Expansion eases toward 1 (visible) or 0 (compressed). Cosmetic only.
	Expansion float64
}

// IsLeaf reports whether the node has no children at all.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Tree owns the node arena, the selection and the world origin of the root.
type Tree struct {
	X, Y float64

	cfg      Config
	nodes    []Node
	selected NodeID
	depth    int

	// scratch buffers reused across passes; a Tree is single-threaded
	order  []NodeID
	stack  []NodeID
	moving []NodeID
}

// New creates an empty tree with the given geometry.
func New(cfg Config) *Tree {
	return &Tree{
		cfg:      cfg.normalized(),
		selected: NoNode,
	}
}

// Config returns the geometry the tree was built with.
func (t *Tree) Config() Config {
	return t.cfg
}

// AddNode appends a new node under parent and returns its id.
// Passing NoNode creates the root; that only works on an empty tree, otherwise
// NoNode is returned. Sibling order is insertion order and never changes.
func (t *Tree) AddNode(parent NodeID, label string) NodeID {
	if parent == NoNode {
		if len(t.nodes) != 0 {
			return NoNode
		}
	} else if !t.valid(parent) {
		return NoNode
	}

	id := NodeID(len(t.nodes))
	lines, w, h := Measure(label, t.cfg)
	t.nodes = append(t.nodes, Node{
		Label:     label,
		Lines:     lines,
		Width:     w,
		Height:    h,
		Parent:    parent,
		Expansion: 1,
	})
	if parent != NoNode {
		p := &t.nodes[parent]
		t.nodes[id].Index = len(p.Children)
		p.Children = append(p.Children, id)
	}
	return id
}

// Node returns the node with the given id, or nil.
func (t *Tree) Node(id NodeID) *Node {
	if !t.valid(id) {
		return nil
	}
	return &t.nodes[id]
}

// Root returns the root id, or NoNode for an empty tree.
func (t *Tree) Root() NodeID {
	if len(t.nodes) == 0 {
		return NoNode
	}
	return 0
}

// Len returns the number of nodes in the arena.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Selected returns the selected node, or NoNode before the first selection.
func (t *Tree) Selected() NodeID {
	return t.selected
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Parent returns id's parent, or NoNode.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.valid(id) {
		return NoNode
	}
	return t.nodes[id].Parent
}

// FirstChild returns id's first child regardless of compression, or NoNode.
func (t *Tree) FirstChild(id NodeID) NodeID {
	if !t.valid(id) || len(t.nodes[id].Children) == 0 {
		return NoNode
	}
	return t.nodes[id].Children[0]
}

// PrevSibling returns the sibling before id, or NoNode.
func (t *Tree) PrevSibling(id NodeID) NodeID {
	return t.sibling(id, -1)
}

// NextSibling returns the sibling after id, or NoNode.
func (t *Tree) NextSibling(id NodeID) NodeID {
	return t.sibling(id, 1)
}

func (t *Tree) sibling(id NodeID, delta int) NodeID {
	if !t.valid(id) || t.nodes[id].Parent == NoNode {
		return NoNode
	}
	siblings := t.nodes[t.nodes[id].Parent].Children
	i := t.nodes[id].Index + delta
	if i < 0 || i >= len(siblings) {
		return NoNode
	}
	return siblings[i]
}

// Depth returns the number of edges between id and the root.
func (t *Tree) Depth(id NodeID) int {
	d := 0
	for id = t.Parent(id); id != NoNode; id = t.Parent(id) {
		d++
	}
	return d
}

// Path returns the sibling indexes leading from the root to id.
// The root's path is empty; an invalid id yields nil.
func (t *Tree) Path(id NodeID) []int {
	if !t.valid(id) {
		return nil
	}
	path := []int{}
	for ; t.nodes[id].Parent != NoNode; id = t.nodes[id].Parent {
		path = append(path, t.nodes[id].Index)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Resolve is the inverse of Path. Out-of-range steps yield NoNode.
func (t *Tree) Resolve(path []int) NodeID {
	id := t.Root()
	for _, step := range path {
		if id == NoNode {
			return NoNode
		}
		children := t.nodes[id].Children
		if step < 0 || step >= len(children) {
			return NoNode
		}
		id = children[step]
	}
	return id
}
