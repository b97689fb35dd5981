package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/eva/pkg/layout"
)

// Camera maps world cells onto the canvas. X and Y are the world cell shown
// in the canvas' top-left corner; PanX and PanY are the user's scroll offset
// on top of that.
type Camera struct {
	X, Y       int
	PanX, PanY int
}

// CenterOn returns a camera that shows p in the middle of a w×h canvas.
func CenterOn(p layout.Point, w, h int) Camera {
	return Camera{
		X: int(math.Floor(p.X)) - w/2,
		Y: int(math.Floor(p.Y)) - h/2,
	}
}

func (c Camera) origin() (int, int) {
	return c.X + c.PanX, c.Y + c.PanY
}

// ToWorld returns the world point at the centre of canvas cell (sx, sy).
func (c Camera) ToWorld(sx, sy int) layout.Point {
	ox, oy := c.origin()
	return layout.Point{X: float64(ox+sx) + 0.5, Y: float64(oy+sy) + 0.5}
}

type cellClass uint8

const (
	classEmpty cellClass = iota
	classEdge
	classNode
	classSelected
	classComment
	classString
	classHidden
	classFading
)

// Edge cells record which directions a line leaves them in; the glyph is
// picked once every edge is drawn so crossings and forks join up.
const (
	up uint8 = 1 << iota
	down
	left
	right
)

var boxGlyphs = [16]rune{
	0:                        ' ',
	up:                       '│',
	down:                     '│',
	up | down:                '│',
	left:                     '─',
	right:                    '─',
	left | right:             '─',
	down | right:             '┌',
	down | left:              '┐',
	up | right:               '└',
	up | left:                '┘',
	up | down | right:        '├',
	up | down | left:         '┤',
	down | left | right:      '┬',
	up | left | right:        '┴',
	up | down | left | right: '┼',
}

type cell struct {
	r     rune
	mask  uint8
	class cellClass
	cont  bool // right half of a wide rune
}

type grid struct {
	w, h  int
	cells []cell
}

func newGrid(w, h int) *grid {
	return &grid{w: w, h: h, cells: make([]cell, w*h)}
}

func (g *grid) at(x, y int) *cell {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return nil
	}
	return &g.cells[y*g.w+x]
}

func (g *grid) hline(y, x0, x1 int) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	for x := max(x0, 0); x <= min(x1, g.w-1); x++ {
		c := g.at(x, y)
		if c == nil {
			return
		}
		if x > x0 || x == x1 {
			c.mask |= left
		}
		if x < x1 || x == x0 {
			c.mask |= right
		}
		c.class = classEdge
	}
}

func (g *grid) vline(x, y0, y1 int) {
	if y0 == y1 {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := max(y0, 0); y <= min(y1, g.h-1); y++ {
		c := g.at(x, y)
		if c == nil {
			return
		}
		if y > y0 {
			c.mask |= up
		}
		if y < y1 {
			c.mask |= down
		}
		c.class = classEdge
	}
}

// text writes s from (x, y) and returns the column after it.
func (g *grid) text(x, y int, s string, class cellClass) int {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if c := g.at(x, y); c != nil {
			if w == 2 && x+1 >= g.w {
				r, w = ' ', 1
			}
			*c = cell{r: r, class: class}
			if w == 2 {
				if next := g.at(x+1, y); next != nil {
					*next = cell{cont: true, class: class}
				}
			}
		}
		x += w
	}
	return x
}

// renderCanvas draws the visible window of t as seen through cam.
func renderCanvas(t *layout.Tree, cam Camera, w, h int, theme Theme) string {
	if w <= 0 || h <= 0 {
		return ""
	}
	g := newGrid(w, h)
	ox, oy := cam.origin()
	row := func(y float64) int { return int(math.Floor(y)) - oy }
	col := func(x float64) int { return int(math.Floor(x)) - ox }

	t.Visible(func(id layout.NodeID, n *layout.Node) bool {
		if n.Parent == layout.NoNode {
			return true
		}
		p := t.Node(n.Parent)
		x1, y1 := col(p.WorldX+p.Width), row(p.WorldY)
		x2, y2 := col(n.WorldX)-1, row(n.WorldY)
		if x2 < x1 {
			return true
		}
		mid := x1 + (x2-x1)/2
		g.hline(y1, x1, mid)
		g.vline(mid, y1, y2)
		g.hline(y2, mid, x2)
		return true
	})

	t.Visible(func(id layout.NodeID, n *layout.Node) bool {
		box := t.CollisionBox(id)
		top := int(math.Floor(box.Y+0.5)) - oy
		x := col(box.X)
		if top >= h || top+len(n.Lines) < 0 || x >= w || x+int(box.W) < 0 {
			return true
		}

		class := classNode
		switch {
		case n.Selected:
			class = classSelected
		case n.Expansion < 0.99:
			class = classFading
		case n.IsComment:
			class = classComment
		case n.IsStringAtom:
			class = classString
		}
		for i, line := range n.Lines {
			g.text(x, top+i, line, class)
		}
		if t.HasHiddenChildren(id) && !hasVisibleChild(t, id) {
			g.text(col(box.X+box.W), row(n.WorldY), "▸", classHidden)
		}
		return true
	})

	styles := map[cellClass]lipgloss.Style{
		classEmpty:    theme.Renderer.NewStyle(),
		classEdge:     theme.Edge,
		classNode:     theme.Node,
		classSelected: theme.Selected,
		classComment:  theme.Renderer.NewStyle().Foreground(theme.Comment).Italic(true),
		classString:   theme.Renderer.NewStyle().Foreground(theme.String),
		classHidden:   theme.Hidden,
		classFading:   theme.Fading,
	}

	var out strings.Builder
	var run strings.Builder
	for y := 0; y < h; y++ {
		if y > 0 {
			out.WriteByte('\n')
		}
		current := classEmpty
		flush := func() {
			if run.Len() > 0 {
				out.WriteString(styles[current].Render(run.String()))
				run.Reset()
			}
		}
		for x := 0; x < w; x++ {
			c := g.at(x, y)
			if c.cont {
				continue
			}
			r := c.r
			switch {
			case c.class == classEdge:
				r = boxGlyphs[c.mask]
			case r == 0:
				r = ' '
			}
			if c.class != current {
				flush()
				current = c.class
			}
			run.WriteRune(r)
		}
		flush()
	}
	return out.String()
}

func hasVisibleChild(t *layout.Tree, id layout.NodeID) bool {
	for _, c := range t.Node(id).Children {
		if !t.Node(c).Compressed {
			return true
		}
	}
	return false
}
