package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/eva/pkg/config"
)

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or show the configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init [DIR]",
		Short: "Write the default config to DIR/.eva/config.yaml",
		Long: `Write the default config to DIR/.eva/config.yaml, or to the project
root when DIR is not given, and add .eva/ to .gitignore.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := initDir(args)
			if err != nil {
				return err
			}
			path, err := config.Init(dir)
			if err != nil {
				return err
			}
			a.logger.Info("config created", "path", path)
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := a.cfg.Marshal()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.cfg.Path != "" {
				fmt.Fprintf(out, "# %s\n", a.cfg.Path)
			} else {
				fmt.Fprintln(out, "# built-in defaults")
			}
			_, err = out.Write(data)
			return err
		},
	})
	return cmd
}

func initDir(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if root, ok := config.DetectProjectRoot(); ok {
		return root, nil
	}
	return os.Getwd()
}
