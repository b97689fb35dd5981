package export

import (
	"errors"
	"fmt"
	"io"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/eva/pkg/layout"
)

// maxPNGSide caps the image size; huge windows should be exported as SVG.
const maxPNGSide = 16384

// ErrTooLarge is returned when the visible window does not fit in a PNG.
var ErrTooLarge = errors.New("window too large for PNG, export as SVG or lower the depth")

// WritePNG rasterises the visible window with the 7x13 bitmap font the
// pixel layout preset is measured for.
func WritePNG(w io.Writer, t *layout.Tree, opts Options) error {
	cfg := t.Config()
	fr := newFrame(t, opts.Padding)
	width, height := px(fr.w), px(fr.h)
	if width > maxPNGSide || height > maxPNGSide {
		return fmt.Errorf("%w: %dx%d pixels", ErrTooLarge, width, height)
	}

	dc := gg.NewContext(width, height)
	dc.SetHexColor(colorBackground)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetHexColor(colorEdge)
	dc.SetLineWidth(1.5)
	t.Visible(func(id layout.NodeID, n *layout.Node) bool {
		for _, c := range n.Children {
			if t.Node(c).Compressed {
				continue
			}
			e := edge(t, id, c)
			dc.MoveTo(e[0].X+fr.dx, e[0].Y+fr.dy)
			dc.CubicTo(e[1].X+fr.dx, e[1].Y+fr.dy, e[2].X+fr.dx, e[2].Y+fr.dy, e[3].X+fr.dx, e[3].Y+fr.dy)
			dc.Stroke()
		}
		return true
	})

	dc.SetLineWidth(1)
	t.Visible(func(id layout.NodeID, n *layout.Node) bool {
		box := t.CollisionBox(id)
		fill, stroke, text := nodeColors(t, id)
		x, y := box.X+fr.dx, box.Y+fr.dy

		dc.DrawRoundedRectangle(x-2, y-1, box.W+4, box.H+2, 3)
		dc.SetHexColor(fill)
		dc.FillPreserve()
		dc.SetHexColor(stroke)
		dc.Stroke()

		dc.SetHexColor(text)
		for i, line := range n.Lines {
			dc.DrawString(line, x, y+float64(i)*cfg.LineHeight+fontAscent)
		}
		return true
	})

	return dc.EncodePNG(w)
}
