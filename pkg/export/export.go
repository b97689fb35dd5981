// Package export writes the visible part of a laid-out tree to files: SVG and
// PNG pictures, a Markdown outline, or the raw layout as JSON.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/eva/pkg/layout"
)

// Format is an export file type.
type Format string

const (
	FormatSVG      Format = "svg"
	FormatPNG      Format = "png"
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
)

// Formats lists the supported formats in menu order.
var Formats = []Format{FormatSVG, FormatPNG, FormatMarkdown, FormatJSON}

// ErrUnknownFormat is returned for unsupported format names or extensions.
var ErrUnknownFormat = errors.New("unknown export format")

// ErrEmptyTree is returned when there is nothing to draw.
var ErrEmptyTree = errors.New("tree is empty")

// ParseFormat maps a format name or extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "svg":
		return FormatSVG, nil
	case "png":
		return FormatPNG, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatForPath picks the format from the file extension.
func FormatForPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Options controls an export.
type Options struct {
	Format Format
	Title  string
	// Padding around the drawing in pixels, for image formats.
	Padding float64
}

const defaultPadding = 16

// Write renders t in opts.Format. Image formats are drawn with pixel
// geometry: t is relaid with layout.DefaultConfig if it was built for
// terminal cells.
func Write(w io.Writer, t *layout.Tree, opts Options) error {
	if t == nil || t.Root() == layout.NoNode {
		return ErrEmptyTree
	}
	if opts.Padding <= 0 {
		opts.Padding = defaultPadding
	}
	switch opts.Format {
	case FormatSVG:
		return WriteSVG(w, pixelTree(t), opts)
	case FormatPNG:
		return WritePNG(w, pixelTree(t), opts)
	case FormatMarkdown:
		_, err := io.WriteString(w, GenerateMarkdown(t, opts.Title))
		return err
	case FormatJSON:
		return WriteJSON(w, t)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
}

// WriteFile exports t to path. An empty opts.Format is taken from the
// extension.
func WriteFile(path string, t *layout.Tree, opts Options) error {
	if opts.Format == "" {
		f, err := FormatForPath(path)
		if err != nil {
			return err
		}
		opts.Format = f
	}
	if opts.Title == "" {
		opts.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, t, opts); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func pixelTree(t *layout.Tree) *layout.Tree {
	if t.Config() == layout.DefaultConfig() {
		return t
	}
	cfg := layout.DefaultConfig()
	cfg.DefaultDepth = t.Config().DefaultDepth
	return t.Relayout(cfg)
}

// frame maps world coordinates onto an image with the visible bounds at the
// padding offset.
type frame struct {
	dx, dy float64
	w, h   float64
}

func newFrame(t *layout.Tree, padding float64) frame {
	b := t.Bounds()
	return frame{
		dx: padding - b.X,
		dy: padding - b.Y,
		w:  b.W + 2*padding,
		h:  b.H + 2*padding,
	}
}

// edge returns the cubic curve from the right middle of parent to the left
// middle of child: start, two control points, end.
func edge(t *layout.Tree, parent, child layout.NodeID) [4]layout.Point {
	p, c := t.Node(parent), t.Node(child)
	start := layout.Point{X: p.WorldX + p.Width, Y: p.WorldY}
	end := layout.Point{X: c.WorldX, Y: c.WorldY}
	mid := (start.X + end.X) / 2
	return [4]layout.Point{start, {X: mid, Y: start.Y}, {X: mid, Y: end.Y}, end}
}
