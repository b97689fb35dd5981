package layout

import "math"

// settleEpsilon is the distance at which an easing node snaps to its target.
const settleEpsilon = 1e-3

// Animate moves the Expansion of every node whose compression state changed
// a step of rate toward its target (1 expanded, 0 compressed) and reports
// whether any node is still moving. Layout and hit-testing never read
// Expansion, so callers that do not animate can ignore it.
func (t *Tree) Animate(rate float64) bool {
	if rate <= 0 || rate > 1 {
		rate = 0.1
	}
	t.moving = dedupe(t.moving)
	still := t.moving[:0]
	for _, id := range t.moving {
		n := &t.nodes[id]
		target := 1.0
		if n.Compressed {
			target = 0
		}
		diff := target - n.Expansion
		if math.Abs(diff) < settleEpsilon {
			n.Expansion = target
			continue
		}
		n.Expansion += diff * rate
		still = append(still, id)
	}
	t.moving = still
	return len(t.moving) > 0
}

// Settle snaps every node to its target expansion.
func (t *Tree) Settle() {
	for _, id := range t.moving {
		n := &t.nodes[id]
		if n.Compressed {
			n.Expansion = 0
		} else {
			n.Expansion = 1
		}
	}
	t.moving = t.moving[:0]
}

// dedupe drops repeated ids; a node flipped twice between frames is queued
// twice.
func dedupe(ids []NodeID) []NodeID {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[NodeID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
