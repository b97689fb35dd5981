package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/eva/pkg/layout"
	"github.com/vanderheijden86/eva/pkg/loader"
	"github.com/vanderheijden86/eva/pkg/repl"
	"github.com/vanderheijden86/eva/pkg/store"
	"github.com/vanderheijden86/eva/pkg/ui"
)

type viewOptions struct {
	watch bool
	depth int
}

func addViewFlags(cmd *cobra.Command, opts *viewOptions) {
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "reload the tree when the file changes")
	cmd.Flags().IntVarP(&opts.depth, "depth", "d", -1, "window depth around the selection (default from config)")
}

func newViewCommand(a *app) *cobra.Command {
	var opts viewOptions
	cmd := &cobra.Command{
		Use:   "view [FILE]",
		Short: "Open a tree file in the viewer",
		Long: `Open a .json, .yaml or .jsonl tree in the terminal viewer. Without a
file the viewer starts at the prompt.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runView(cmd, args, opts)
		},
	}
	addViewFlags(cmd, &opts)
	return cmd
}

func (a *app) runView(cmd *cobra.Command, args []string, opts viewOptions) error {
	var file string
	if len(args) == 1 {
		file = args[0]
	}
	if opts.watch && file == "" {
		return errors.New("--watch needs a file")
	}
	depth := a.depth(opts.depth)

	var tree *layout.Tree
	if file != "" {
		term, err := loader.LoadFile(file)
		if err != nil {
			return err
		}
		tree = layout.FromTerm(term, a.cfg.Layout)
		tree.Select(tree.Root(), depth)
		a.logger.Info("tree loaded", "file", file, "nodes", tree.Len())
	}
	if !isTerminal(cmd.OutOrStdout()) || !isTerminal(cmd.InOrStdin()) {
		return errNotTerminal
	}

	st := a.openHistory()
	if st != nil {
		defer st.Close()
	}
	return a.runProgram(cmd.Context(), tree, file, opts.watch, depth, st)
}

// runProgram runs the viewer and, when watching, the file worker next to it.
// Whichever fails first stops the other.
func (a *app) runProgram(ctx context.Context, tree *layout.Tree, file string, watch bool, depth int, st *store.Store) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	var worker *ui.TreeWorker
	if watch {
		w, err := ui.NewTreeWorker(ui.WorkerConfig{
			Path:   file,
			Layout: a.cfg.Layout,
			Depth:  depth,
			Logger: a.logger,
		})
		if err != nil {
			return fmt.Errorf("watching %s: %w", file, err)
		}
		worker = w
	}

	model := ui.NewModel(tree, ui.Options{
		Context:   gctx,
		Layout:    a.cfg.Layout,
		Prompt:    a.cfg.REPL.Prompt,
		Animate:   a.cfg.UI.Animate,
		Mouse:     a.cfg.UI.Mouse,
		Evaluator: a.newEvaluator(st, depth),
		History:   uiHistory(st),
		Worker:    worker,
		Source:    file,
		Logger:    a.logger,
	})

	progOpts := []tea.ProgramOption{tea.WithContext(gctx)}
	if a.cfg.UI.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	if a.cfg.UI.Mouse {
		progOpts = append(progOpts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(model, progOpts...)

	if worker != nil {
		worker.SetProgram(p)
		g.Go(func() error {
			defer worker.Stop()
			if err := worker.Start(); err != nil {
				return fmt.Errorf("watching %s: %w", file, err)
			}
			<-gctx.Done()
			return nil
		})
	}
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	return g.Wait()
}

func newReplCommand(a *app) *cobra.Command {
	var plain bool
	var depth int
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Evaluate terms interactively",
		Long: `Start the viewer at the prompt. With --plain, or when stdin is not a
terminal, read one line at a time and print each tree as an indented outline.

` + repl.HelpText,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := a.depth(depth)
			st := a.openHistory()
			if st != nil {
				defer st.Close()
			}
			if !plain && isTerminal(cmd.InOrStdin()) && isTerminal(cmd.OutOrStdout()) {
				return a.runProgram(cmd.Context(), nil, "", false, d, st)
			}
			return repl.RunPlain(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), a.newEvaluator(st, d), repl.PlainOptions{
				Prompt: a.cfg.REPL.Prompt,
				Layout: a.cfg.Layout,
			})
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "line mode without the full-screen viewer")
	cmd.Flags().IntVarP(&depth, "depth", "d", -1, "window depth around the selection (default from config)")
	return cmd
}
