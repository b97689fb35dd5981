package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/vanderheijden86/eva/pkg/loader"
	"github.com/vanderheijden86/eva/pkg/model"
	"github.com/vanderheijden86/eva/pkg/store"
)

// History is the persistence the evaluator records into. *store.Store
// implements it.
type History interface {
	AddCmd(cmd string) (int, error)
	LastCmds(n int) ([]store.Cmd, error)
	TrimCmds(keep int) error
	SaveTree(source string, t *model.Term) (int64, error)
	LoadTree(id int64) (*model.Term, error)
	ListTrees(n int) ([]store.TreeInfo, error)
	TrimTrees(keep int) error
}

// ErrUnknownCommand is returned for meta commands the evaluator does not know.
var ErrUnknownCommand = errors.New("unknown command")

const defaultListLen = 20

// Result is the outcome of evaluating one line. At most one of Tree, Output
// and Err is the main payload; Depth is always the evaluator's current depth.
type Result struct {
	Line   string
	Tree   *model.Term
	Source string
	TreeID int64

	Depth      int
	SelectPath []int
	ExportPath string
	Output     string
	Quit       bool
	Err        error
}

// Evaluator dispatches input lines. Eval may run on a worker goroutine while
// the UI adjusts the depth.
type Evaluator struct {
	rewriter     Rewriter
	history      History
	historyLimit int
	logger       *slog.Logger

	mu    sync.Mutex
	depth int
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithRewriter sets the engine plain lines are sent to.
func WithRewriter(r Rewriter) Option {
	return func(e *Evaluator) { e.rewriter = r }
}

// WithHistory records lines and trees into h, keeping at most limit lines
// and limit trees (0 keeps everything).
func WithHistory(h History, limit int) Option {
	return func(e *Evaluator) {
		e.history = h
		e.historyLimit = limit
	}
}

// WithDepth sets the initial decompression depth.
func WithDepth(depth int) Option {
	return func(e *Evaluator) { e.depth = max(0, depth) }
}

// WithLogger sets the logger for persistence warnings.
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = l }
}

// New creates an Evaluator. Without options it parses literals and keeps no
// history.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		rewriter: LiteralRewriter{},
		depth:    1,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Depth returns the current decompression depth.
func (e *Evaluator) Depth() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.depth
}

// SetDepth changes the decompression depth, clamped at zero.
func (e *Evaluator) SetDepth(depth int) {
	e.mu.Lock()
	e.depth = max(0, depth)
	e.mu.Unlock()
}

// Eval evaluates one input line.
func (e *Evaluator) Eval(ctx context.Context, line string) Result {
	line = strings.TrimSpace(line)
	res := Result{Line: line, Depth: e.Depth()}
	if line == "" {
		return res
	}
	e.record(line)

	if strings.HasPrefix(line, ":") {
		e.meta(line, &res)
		res.Depth = e.Depth()
		return res
	}

	term, err := e.rewriter.Rewrite(ctx, line)
	if err != nil {
		res.Err = err
		return res
	}
	res.Tree, res.Source = term, line
	res.TreeID = e.archive(line, term)
	return res
}

func (e *Evaluator) meta(line string, res *Result) {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	switch name {
	case ":help", ":h", ":?":
		res.Output = HelpText
	case ":quit", ":q":
		res.Quit = true
	case ":depth", ":d":
		if len(args) != 1 {
			res.Output = fmt.Sprintf("depth is %d", e.Depth())
			return
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			res.Err = fmt.Errorf(":depth wants a non-negative integer, got %q", args[0])
			return
		}
		e.SetDepth(n)
		res.Output = fmt.Sprintf("depth set to %d", n)
	case ":select", ":s":
		path, err := ParsePath(strings.Join(args, ""))
		if err != nil {
			res.Err = err
			return
		}
		res.SelectPath = path
	case ":load", ":l":
		if len(args) != 1 {
			res.Err = errors.New(":load wants a file name")
			return
		}
		term, err := loader.LoadFile(args[0])
		if err != nil {
			res.Err = err
			return
		}
		res.Tree, res.Source = term, args[0]
		res.TreeID = e.archive(args[0], term)
	case ":export", ":w":
		if len(args) != 1 {
			res.Err = errors.New(":export wants a file name")
			return
		}
		res.ExportPath = args[0]
	case ":history":
		res.Output, res.Err = e.listHistory(args)
	case ":trees":
		res.Output, res.Err = e.listTrees(args)
	case ":open":
		e.open(args, res)
	default:
		res.Err = fmt.Errorf("%w %s (try :help)", ErrUnknownCommand, name)
	}
}

func (e *Evaluator) record(line string) {
	if e.history == nil {
		return
	}
	if _, err := e.history.AddCmd(line); err != nil {
		e.logger.Warn("recording history failed", "error", err)
		return
	}
	if err := e.history.TrimCmds(e.historyLimit); err != nil {
		e.logger.Warn("trimming history failed", "error", err)
	}
}

func (e *Evaluator) archive(source string, term *model.Term) int64 {
	if e.history == nil {
		return 0
	}
	id, err := e.history.SaveTree(source, term)
	if err != nil {
		e.logger.Warn("archiving tree failed", "source", source, "error", err)
		return 0
	}
	if err := e.history.TrimTrees(e.historyLimit); err != nil {
		e.logger.Warn("trimming tree archive failed", "error", err)
	}
	return id
}

func listLen(args []string) (int, error) {
	if len(args) == 0 {
		return defaultListLen, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("want a positive count, got %q", args[0])
	}
	return n, nil
}

func (e *Evaluator) listHistory(args []string) (string, error) {
	if e.history == nil {
		return "no history store", nil
	}
	n, err := listLen(args)
	if err != nil {
		return "", err
	}
	cmds, err := e.history.LastCmds(n)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, c := range cmds {
		fmt.Fprintf(&b, "%5d  %s\n", c.Seq, c.Text)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (e *Evaluator) listTrees(args []string) (string, error) {
	if e.history == nil {
		return "no history store", nil
	}
	n, err := listLen(args)
	if err != nil {
		return "", err
	}
	trees, err := e.history.ListTrees(n)
	if err != nil {
		return "", err
	}
	if len(trees) == 0 {
		return "no archived trees", nil
	}
	var b strings.Builder
	for _, t := range trees {
		fmt.Fprintf(&b, "%5d  %-12s %6s nodes  %s\n", t.ID, humanize.Time(t.Created), humanize.Comma(int64(t.Nodes)), t.Source)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (e *Evaluator) open(args []string, res *Result) {
	if e.history == nil {
		res.Err = errors.New("no history store")
		return
	}
	if len(args) != 1 {
		res.Err = errors.New(":open wants a tree id")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		res.Err = fmt.Errorf(":open wants a tree id, got %q", args[0])
		return
	}
	term, err := e.history.LoadTree(id)
	if err != nil {
		res.Err = err
		return
	}
	res.Tree, res.Source, res.TreeID = term, fmt.Sprintf("tree %d", id), id
}

// ParsePath reads a child-index path such as "0.2.1". The empty string is
// the root.
func ParsePath(s string) ([]int, error) {
	s = strings.Trim(strings.TrimSpace(s), ".")
	if s == "" {
		return []int{}, nil
	}
	parts := strings.Split(s, ".")
	path := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("bad path element %q", p)
		}
		path[i] = n
	}
	return path, nil
}

// HelpText lists the meta commands.
const HelpText = `Enter a term to see its derivation tree. Meta commands:
  :depth N      decompress N levels around the selection
  :select PATH  select the node at a child-index path, e.g. 0.2.1
  :load FILE    show a tree from a .json, .yaml or .jsonl file
  :export FILE  write the visible tree as .svg, .png, .md or .json
  :history [N]  list the last N input lines
  :trees [N]    list archived trees
  :open ID      reopen an archived tree
  :help         show this help
  :quit         leave`
