package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/eva/pkg/store"
)

func newHistoryCommand(a *app) *cobra.Command {
	var (
		n     int
		trees bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past REPL input or archived trees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := store.Open(a.cfg.DataDir)
			if err != nil {
				return err
			}
			defer st.Close()

			if trees {
				return printTrees(cmd.OutOrStdout(), st, n)
			}
			return printCmds(cmd.OutOrStdout(), st, n)
		},
	}
	cmd.Flags().IntVarP(&n, "number", "n", 20, "how many entries to show")
	cmd.Flags().BoolVar(&trees, "trees", false, "list archived trees instead of input lines")
	return cmd
}

func newTable(out io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(table.StyleLight)
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.DrawBorder = false
	return tw
}

func printCmds(out io.Writer, st *store.Store, n int) error {
	if n <= 0 {
		return errors.New("-n must be positive")
	}
	cmds, err := st.LastCmds(n)
	if err != nil {
		return err
	}
	if len(cmds) == 0 {
		fmt.Fprintln(out, "no history yet")
		return nil
	}

	tw := newTable(out)
	tw.AppendHeader(table.Row{"#", "When", "Input"})
	for _, c := range cmds {
		tw.AppendRow(table.Row{c.Seq, humanize.Time(c.Time), c.Text})
	}
	tw.Render()
	return nil
}

func printTrees(out io.Writer, st *store.Store, n int) error {
	if n <= 0 {
		return errors.New("-n must be positive")
	}
	infos, err := st.ListTrees(n)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Fprintln(out, "no trees archived yet")
		return nil
	}

	tw := newTable(out)
	tw.AppendHeader(table.Row{"ID", "Source", "Nodes", "Created"})
	for _, info := range infos {
		tw.AppendRow(table.Row{info.ID, info.Source, humanize.Comma(int64(info.Nodes)), humanize.Time(info.Created)})
	}
	tw.Render()
	return nil
}
