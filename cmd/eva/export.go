package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/eva/pkg/export"
	"github.com/vanderheijden86/eva/pkg/layout"
	"github.com/vanderheijden86/eva/pkg/loader"
	"github.com/vanderheijden86/eva/pkg/repl"
)

type exportOptions struct {
	output     string
	format     string
	selectPath string
	depth      int
	title      string
}

func newExportCommand(a *app) *cobra.Command {
	var opts exportOptions
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write a tree window as SVG, PNG, Markdown or JSON",
		Long: `Lay out FILE, select a node and write the visible window around it.
The format follows the output extension unless --format is given. When
stdin is a terminal, missing options are asked for.`,
		Example: `  eva export proof.json -o proof.svg
  eva export proof.jsonl --format md --select 0.2 --depth 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExport(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: "+formatList())
	cmd.Flags().StringVarP(&opts.selectPath, "select", "s", "", "child-index path of the node to centre on, e.g. 0.2.1")
	cmd.Flags().IntVarP(&opts.depth, "depth", "d", -1, "window depth around the selection (default from config)")
	cmd.Flags().StringVar(&opts.title, "title", "", "document title (default: the input file name)")
	return cmd
}

func formatList() string {
	names := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func (a *app) runExport(cmd *cobra.Command, file string, opts exportOptions) error {
	req := export.Request{Path: opts.output, Depth: a.depth(opts.depth)}
	if opts.format != "" {
		f, err := export.ParseFormat(opts.format)
		if err != nil {
			return err
		}
		req.Format = f
	}

	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	if (req.Path == "" || req.Format == "") && isTerminal(cmd.InOrStdin()) {
		if err := req.Ask(base); err != nil {
			if errors.Is(err, export.ErrAborted) {
				fmt.Fprintln(cmd.OutOrStdout(), "export aborted")
				return nil
			}
			return err
		}
	} else if err := req.Complete(base); err != nil {
		return err
	}

	term, err := loader.LoadFile(file)
	if err != nil {
		return err
	}
	tree := layout.FromTerm(term, a.cfg.Layout)

	sel := tree.Root()
	if opts.selectPath != "" {
		path, err := repl.ParsePath(opts.selectPath)
		if err != nil {
			return err
		}
		if sel = tree.Resolve(path); sel == layout.NoNode {
			return fmt.Errorf("no node at %s", opts.selectPath)
		}
	}
	tree.Select(sel, req.Depth)
	tree.Settle()

	title := opts.title
	if title == "" {
		title = filepath.Base(file)
	}
	if err := export.WriteFile(req.Path, tree, export.Options{Format: req.Format, Title: title}); err != nil {
		return err
	}

	a.logger.Info("exported", "input", file, "output", req.Path, "format", req.Format, "depth", req.Depth)
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s of %s nodes)\n",
		req.Path, humanize.Comma(int64(tree.VisibleCount())), humanize.Comma(int64(tree.Len())))
	return nil
}
