// Package main provides the entry point for the eva tree viewer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = ""
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}
	var opts viewOptions

	rootCmd := &cobra.Command{
		Use:   "eva [FILE]",
		Short: "Eva - windowed derivation tree viewer",
		Long: `Eva shows large derivation trees a few levels at a time around a
selected node. Run it on a tree file, or start the REPL and type terms.

Commands:
  view      open a tree file in the viewer (default)
  repl      evaluate terms interactively
  export    write a tree window as SVG, PNG, Markdown or JSON
  history   list past REPL input and archived trees
  config    create or show the configuration`,
		Args:               cobra.MaximumNArgs(1),
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runView(cmd, args, opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: discovered .eva/config.yaml)")
	addViewFlags(rootCmd, &opts)

	rootCmd.AddCommand(newViewCommand(a))
	rootCmd.AddCommand(newReplCommand(a))
	rootCmd.AddCommand(newExportCommand(a))
	rootCmd.AddCommand(newHistoryCommand(a))
	rootCmd.AddCommand(newConfigCommand(a))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "eva %s (commit: %s, built: %s)\n", binaryVersion(), commit, date)
		},
	}
}

// binaryVersion prefers the linker-injected version and falls back to the
// module version recorded by go install.
func binaryVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}
