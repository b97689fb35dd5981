package layout

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"
)

type nodeState struct {
	Label      string
	Compressed bool
	Selected   bool
	NumLeaves  int
	OffsetY    float64
	WorldX     float64
	WorldY     float64
	UpperY     float64
	LowerY     float64
}

func snapshot(tree *Tree) []nodeState {
	out := make([]nodeState, tree.Len())
	for i := range out {
		n := tree.Node(NodeID(i))
		out[i] = nodeState{
			Label:      n.Label,
			Compressed: n.Compressed,
			Selected:   n.Selected,
			NumLeaves:  n.NumLeaves,
			OffsetY:    n.OffsetY,
			WorldX:     n.WorldX,
			WorldY:     n.WorldY,
			UpperY:     n.SubtreeUpperY,
			LowerY:     n.SubtreeLowerY,
		}
	}
	return out
}

func diffSnapshots(a, b []nodeState) string {
	return cmp.Diff(a, b)
}

var labelPool = []string{
	"x", "f", "add", "$x.$y", "\"a string atom\"", "mul(2, 3)",
	"a two\nline label", "three\nline\nlabel", "a rather long operator application label that wraps",
}

// drawTree draws a random tree: node i > 0 hangs under a random earlier node.
func drawTree(t *rapid.T) *Tree {
	n := rapid.IntRange(1, 60).Draw(t, "nodes")
	tree := New(DefaultConfig())
	tree.AddNode(NoNode, rapid.SampledFrom(labelPool).Draw(t, "label0"))
	for i := 1; i < n; i++ {
		parent := rapid.IntRange(0, i-1).Draw(t, fmt.Sprintf("parent%d", i))
		tree.AddNode(NodeID(parent), rapid.SampledFrom(labelPool).Draw(t, fmt.Sprintf("label%d", i)))
	}
	return tree
}

func drawNode(t *rapid.T, tree *Tree, label string) NodeID {
	return NodeID(rapid.IntRange(0, tree.Len()-1).Draw(t, label))
}

// expectedWindow returns the ids that must be expanded after selecting s with
// the given depth: v is visible iff its distance below its lowest common
// ancestor with s is at most depth.
func expectedWindow(tree *Tree, s NodeID, depth int) map[NodeID]bool {
	ancestors := map[NodeID]bool{}
	for a := s; a != NoNode; a = tree.Parent(a) {
		ancestors[a] = true
	}
	window := map[NodeID]bool{}
	for i := 0; i < tree.Len(); i++ {
		v, dist := NodeID(i), 0
		for !ancestors[v] {
			v = tree.Parent(v)
			dist++
		}
		if dist <= depth {
			window[NodeID(i)] = true
		}
	}
	return window
}

func TestPropertyWindowMatchesSelection(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tree := drawTree(t)
		steps := rapid.IntRange(1, 6).Draw(t, "steps")
		for step := 0; step < steps; step++ {
			s := drawNode(t, tree, fmt.Sprintf("select%d", step))
			depth := rapid.IntRange(0, 3).Draw(t, fmt.Sprintf("depth%d", step))
			tree.Select(s, depth)

			want := expectedWindow(tree, s, depth)
			for i := 0; i < tree.Len(); i++ {
				id := NodeID(i)
				if got := !tree.Node(id).Compressed; got != want[id] {
					t.Fatalf("step %d select(%d,%d): node %d expanded=%v, want %v", step, s, depth, id, got, want[id])
				}
			}
		}
	})
}

func TestPropertySelectIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tree := drawTree(t)
		tree.Select(drawNode(t, tree, "warmup"), rapid.IntRange(0, 3).Draw(t, "warmupDepth"))

		s := drawNode(t, tree, "target")
		depth := rapid.IntRange(0, 3).Draw(t, "depth")
		tree.Select(s, depth)
		first := snapshot(tree)
		tree.Select(s, depth)

		if diff := diffSnapshots(first, snapshot(tree)); diff != "" {
			t.Fatalf("second select(%d,%d) drifted:\n%s", s, depth, diff)
		}
	})
}

func TestPropertyCompressionClosedDownward(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tree := drawTree(t)
		steps := rapid.IntRange(1, 5).Draw(t, "steps")
		for step := 0; step < steps; step++ {
			tree.Select(drawNode(t, tree, fmt.Sprintf("s%d", step)), rapid.IntRange(0, 3).Draw(t, fmt.Sprintf("d%d", step)))
		}

		selected := 0
		for i := 0; i < tree.Len(); i++ {
			n := tree.Node(NodeID(i))
			if n.Selected {
				selected++
			}
			if n.Parent != NoNode && tree.Node(n.Parent).Compressed && !n.Compressed {
				t.Fatalf("node %d is expanded under compressed parent %d", i, n.Parent)
			}
			if !n.Compressed && n.NumLeaves < 1 {
				t.Fatalf("visible node %d has %d leaves", i, n.NumLeaves)
			}
		}
		if selected != 1 {
			t.Fatalf("expected exactly one selected node, got %d", selected)
		}
	})
}

func TestPropertyHitTestFindsVisibleCentres(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tree := drawTree(t)
		tree.X = rapid.Float64Range(-500, 500).Draw(t, "x")
		tree.Y = rapid.Float64Range(-500, 500).Draw(t, "y")
		tree.Select(drawNode(t, tree, "s"), rapid.IntRange(1, 3).Draw(t, "depth"))

		tree.Visible(func(id NodeID, _ *Node) bool {
			if got := tree.HitTest(tree.CollisionBox(id).Center()); got != id {
				t.Fatalf("centre of node %d hit %d", id, got)
			}
			return true
		})

		b := tree.Bounds()
		outside := Point{X: b.X + b.W + 1, Y: b.Y - 1}
		if got := tree.HitTest(outside); got != NoNode {
			t.Fatalf("point outside bounds hit %d", got)
		}
	})
}

func TestPropertyFromTermRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tree := drawTree(t)
		term := tree.ToTerm()

		first := FromTerm(term, DefaultConfig())
		second := FromTerm(term.Clone(), DefaultConfig())

		if diff := cmp.Diff(snapshot(first), snapshot(second)); diff != "" {
			t.Fatalf("rebuilding the same term differs:\n%s", diff)
		}
		if diff := cmp.Diff(term, second.ToTerm()); diff != "" {
			t.Fatalf("term round trip differs:\n%s", diff)
		}
	})
}
