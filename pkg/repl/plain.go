package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/vanderheijden86/eva/pkg/export"
	"github.com/vanderheijden86/eva/pkg/layout"
)

// ErrNoTree is reported for commands that need a tree before one exists.
var ErrNoTree = errors.New("no tree yet")

// Layout builds the laid-out tree for a result that carries one: the
// selection is r.SelectPath when it resolves, the root otherwise. It returns
// nil when r has no tree.
func (r Result) Layout(cfg layout.Config) *layout.Tree {
	if r.Tree == nil {
		return nil
	}
	t := layout.FromTerm(r.Tree, cfg)
	sel := t.Root()
	if r.SelectPath != nil {
		if id := t.Resolve(r.SelectPath); id != layout.NoNode {
			sel = id
		}
	}
	t.Select(sel, r.Depth)
	return t
}

// PlainOptions configures RunPlain.
type PlainOptions struct {
	Prompt string
	Layout layout.Config
}

var (
	promptColor   = color.New(color.FgCyan, color.Bold)
	errorColor    = color.New(color.FgRed)
	selectedColor = color.New(color.FgYellow, color.Bold)
	hiddenColor   = color.New(color.FgBlue)
)

// RunPlain is the line-mode REPL used when stdin is not a terminal. Each tree
// is printed as an indented outline of its visible window. It returns when
// in is exhausted, on :quit, or when ctx is done between lines.
func RunPlain(ctx context.Context, in io.Reader, out io.Writer, ev *Evaluator, opts PlainOptions) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var tree *layout.Tree
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		promptColor.Fprint(out, opts.Prompt)
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}

		res := ev.Eval(ctx, sc.Text())
		if res.Quit {
			return nil
		}
		if res.Err != nil {
			errorColor.Fprintf(out, "error: %v\n", res.Err)
			continue
		}
		if res.Output != "" {
			fmt.Fprintln(out, res.Output)
		}

		redraw := false
		switch {
		case res.Tree != nil:
			tree, redraw = res.Layout(opts.Layout), true
		case res.SelectPath != nil:
			if tree == nil {
				errorColor.Fprintf(out, "error: %v\n", ErrNoTree)
				continue
			}
			id := tree.Resolve(res.SelectPath)
			if id == layout.NoNode {
				errorColor.Fprintf(out, "error: no node at %s\n", export.PathString(res.SelectPath))
				continue
			}
			tree.Select(id, res.Depth)
			redraw = true
		case tree != nil && res.Depth != tree.WindowDepth():
			tree.SetDepth(res.Depth)
			redraw = true
		}
		if redraw {
			if err := WriteASCII(out, tree); err != nil {
				return err
			}
		}

		if res.ExportPath != "" {
			if tree == nil {
				errorColor.Fprintf(out, "error: %v\n", ErrNoTree)
				continue
			}
			if err := export.WriteFile(res.ExportPath, tree, export.Options{}); err != nil {
				errorColor.Fprintf(out, "error: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "wrote %s\n", res.ExportPath)
		}
	}
}

// WriteASCII draws the visible window with box-drawing connectors. The
// selection is starred and nodes with compressed children end in " …".
func WriteASCII(w io.Writer, t *layout.Tree) error {
	var err error
	indent := map[layout.NodeID]string{}
	t.Visible(func(id layout.NodeID, n *layout.Node) bool {
		prefix := ""
		if n.Parent != layout.NoNode {
			last := lastVisibleChild(t, n.Parent) == id
			branch, cont := "├── ", "│   "
			if last {
				branch, cont = "└── ", "    "
			}
			prefix = indent[n.Parent] + branch
			indent[id] = indent[n.Parent] + cont
		}

		label := n.Label
		if head, _, multi := strings.Cut(label, "\n"); multi {
			label = head + " …"
		}
		if n.Selected {
			label = selectedColor.Sprint("* " + label)
		}
		if t.HasHiddenChildren(id) {
			label += hiddenColor.Sprint(" …")
		}
		_, err = fmt.Fprintln(w, prefix+label)
		return err == nil
	})
	return err
}

func lastVisibleChild(t *layout.Tree, id layout.NodeID) layout.NodeID {
	children := t.Node(id).Children
	for i := len(children) - 1; i >= 0; i-- {
		if !t.Node(children[i]).Compressed {
			return children[i]
		}
	}
	return layout.NoNode
}
