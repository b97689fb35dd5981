package export

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/vanderheijden86/eva/pkg/layout"
)

// Colours shared by the image exporters.
const (
	colorBackground = "#ffffff"
	colorEdge       = "#9ca3af"
	colorBox        = "#f3f4f6"
	colorBorder     = "#6b7280"
	colorSelected   = "#fde68a"
	colorSelBorder  = "#b45309"
	colorText       = "#111827"
	colorComment    = "#6b7280"
	colorString     = "#047857"
	colorHidden     = "#2563eb"
)

// fontAscent matches basicfont.Face7x13.
const fontAscent = 11

func nodeColors(t *layout.Tree, id layout.NodeID) (fill, stroke, text string) {
	n := t.Node(id)
	fill, stroke, text = colorBox, colorBorder, colorText
	switch {
	case n.IsComment:
		text = colorComment
	case n.IsStringAtom:
		text = colorString
	}
	if n.Selected {
		fill, stroke = colorSelected, colorSelBorder
	}
	if t.HasHiddenChildren(id) {
		stroke = colorHidden
	}
	return fill, stroke, text
}

func px(v float64) int {
	return int(math.Round(v))
}

// WriteSVG draws the visible window as an SVG document.
func WriteSVG(w io.Writer, t *layout.Tree, opts Options) error {
	cfg := t.Config()
	fr := newFrame(t, opts.Padding)

	canvas := svg.New(w)
	canvas.Start(px(fr.w), px(fr.h))
	if opts.Title != "" {
		canvas.Title(opts.Title)
	}
	canvas.Rect(0, 0, px(fr.w), px(fr.h), "fill:"+colorBackground)

	canvas.Gid("edges")
	t.Visible(func(id layout.NodeID, n *layout.Node) bool {
		for _, c := range n.Children {
			if t.Node(c).Compressed {
				continue
			}
			e := edge(t, id, c)
			canvas.Bezier(
				px(e[0].X+fr.dx), px(e[0].Y+fr.dy),
				px(e[1].X+fr.dx), px(e[1].Y+fr.dy),
				px(e[2].X+fr.dx), px(e[2].Y+fr.dy),
				px(e[3].X+fr.dx), px(e[3].Y+fr.dy),
				"fill:none;stroke:"+colorEdge+";stroke-width:1.5")
		}
		return true
	})
	canvas.Gend()

	canvas.Gid("nodes")
	t.Visible(func(id layout.NodeID, n *layout.Node) bool {
		box := t.CollisionBox(id)
		fill, stroke, text := nodeColors(t, id)
		x, y := box.X+fr.dx, box.Y+fr.dy
		canvas.Roundrect(px(x)-2, px(y)-1, px(box.W)+4, px(box.H)+2, 3, 3,
			fmt.Sprintf("fill:%s;stroke:%s", fill, stroke))
		for i, line := range n.Lines {
			baseline := y + float64(i)*cfg.LineHeight + fontAscent
			canvas.Text(px(x), px(baseline), line,
				fmt.Sprintf("fill:%s;font-family:monospace;font-size:%dpx;white-space:pre", text, px(cfg.LineHeight)))
		}
		return true
	})
	canvas.Gend()

	canvas.End()
	return nil
}
