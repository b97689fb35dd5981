package main

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/eva/pkg/config"
	"github.com/vanderheijden86/eva/pkg/repl"
	"github.com/vanderheijden86/eva/pkg/store"
	"github.com/vanderheijden86/eva/pkg/ui"
)

var errNotTerminal = errors.New("the viewer needs a terminal; use 'eva repl --plain' or 'eva export' instead")

// app carries what every command shares once the config is loaded.
type app struct {
	configPath string

	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	logger, closer, err := cfg.Logging.OpenLogger()
	if err != nil {
		return err
	}
	a.cfg, a.logger, a.logCloser = cfg, logger, closer
	a.logger.Debug("config loaded", "path", cfg.Path, "data_dir", cfg.DataDir, "command", cmd.Name())
	return nil
}

func (a *app) teardown(*cobra.Command, []string) error {
	if a.logCloser == nil {
		return nil
	}
	return a.logCloser.Close()
}

// depth resolves a --depth flag, where a negative value means the configured
// default.
func (a *app) depth(flag int) int {
	if flag < 0 {
		return a.cfg.Layout.DefaultDepth
	}
	return flag
}

// openHistory opens the store in the data directory. History is optional:
// when the store cannot be opened the commands carry on without it.
func (a *app) openHistory() *store.Store {
	st, err := store.Open(a.cfg.DataDir)
	if err != nil {
		a.logger.Warn("history disabled", "data_dir", a.cfg.DataDir, "error", err)
		return nil
	}
	return st
}

func (a *app) newEvaluator(st *store.Store, depth int) *repl.Evaluator {
	opts := []repl.Option{
		repl.WithDepth(depth),
		repl.WithLogger(a.logger),
	}
	if st != nil {
		opts = append(opts, repl.WithHistory(st, a.cfg.REPL.HistoryLimit))
	}
	if len(a.cfg.REPL.RewriterCommand) > 0 {
		rw, err := repl.NewExecRewriter(a.cfg.REPL.RewriterCommand, a.cfg.REPL.RewriterTimeout)
		if err != nil {
			a.logger.Warn("rewriter unavailable, showing terms as typed", "command", a.cfg.REPL.RewriterCommand, "error", err)
		} else {
			opts = append(opts, repl.WithRewriter(rw))
		}
	}
	return repl.New(opts...)
}

// uiHistory keeps a nil store from becoming a non-nil interface.
func uiHistory(st *store.Store) ui.HistoryStore {
	if st == nil {
		return nil
	}
	return st
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
