package ui

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-json"

	"github.com/vanderheijden86/eva/pkg/layout"
	"github.com/vanderheijden86/eva/pkg/loader"
	"github.com/vanderheijden86/eva/pkg/model"
	"github.com/vanderheijden86/eva/pkg/watcher"
)

// WorkerState represents the current state of the tree worker.
type WorkerState int

const (
	// WorkerIdle means the worker is waiting for file changes.
	WorkerIdle WorkerState = iota
	// WorkerProcessing means the worker is building a new tree.
	WorkerProcessing
	// WorkerStopped means the worker has been stopped.
	WorkerStopped
)

// WorkerError wraps errors with phase and retry context.
type WorkerError struct {
	Phase   string // "load" or "layout"
	Cause   error
	Time    time.Time
	Retries int
}

func (e WorkerError) Error() string {
	return fmt.Sprintf("%s failed: %v (retries: %d)", e.Phase, e.Cause, e.Retries)
}

func (e WorkerError) Unwrap() error {
	return e.Cause
}

// TreeWorker reloads a tree file off the UI goroutine. It owns the file
// watcher, coalesces bursts of changes and hands finished layout trees to
// the program as TreeReadyMsg.
type TreeWorker struct {
	path     string
	debounce time.Duration
	layout   layout.Config
	logger   *slog.Logger

	mu         sync.RWMutex
	state      WorkerState
	dirty      bool
	started    bool
	tree       *layout.Tree
	lastHash   string
	lastError  *WorkerError
	errorCount int
	selectPath []int
	depth      int
	program    *tea.Program

	watcher *watcher.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// WorkerConfig configures a TreeWorker.
type WorkerConfig struct {
	Path          string
	DebounceDelay time.Duration
	Layout        layout.Config
	Depth         int
	Program       *tea.Program
	Logger        *slog.Logger
}

// NewTreeWorker creates a worker for cfg.Path. An empty path gives a worker
// that never produces anything.
func NewTreeWorker(cfg WorkerConfig) (*TreeWorker, error) {
	ctx, cancel := context.WithCancel(context.Background())
	if cfg.DebounceDelay == 0 {
		cfg.DebounceDelay = watcher.DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	w := &TreeWorker{
		path:     cfg.Path,
		debounce: cfg.DebounceDelay,
		layout:   cfg.Layout,
		logger:   cfg.Logger,
		depth:    cfg.Depth,
		program:  cfg.Program,
		state:    WorkerIdle,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	if cfg.Path != "" {
		fw, err := watcher.New(cfg.Path,
			watcher.WithDebounce(cfg.DebounceDelay),
			watcher.WithLogger(cfg.Logger),
		)
		if err != nil {
			cancel()
			return nil, err
		}
		w.watcher = fw
	}
	return w, nil
}

// SetProgram sets where TreeReadyMsg and TreeErrorMsg are sent.
func (w *TreeWorker) SetProgram(p *tea.Program) {
	w.mu.Lock()
	w.program = p
	w.mu.Unlock()
}

// SetView records the selection path and depth to restore in the next tree.
func (w *TreeWorker) SetView(path []int, depth int) {
	w.mu.Lock()
	w.selectPath = append([]int(nil), path...)
	w.depth = depth
	w.mu.Unlock()
}

// Start begins watching. It is idempotent.
func (w *TreeWorker) Start() error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	w.started = true
	w.mu.Unlock()

	if w.watcher == nil {
		close(w.done)
		return nil
	}
	if err := w.watcher.Start(w.ctx); err != nil {
		return err
	}
	go w.processLoop()
	return nil
}

// Stop halts the worker. It is idempotent.
func (w *TreeWorker) Stop() {
	w.mu.Lock()
	if w.state == WorkerStopped {
		w.mu.Unlock()
		return
	}
	w.state = WorkerStopped
	wasStarted := w.started
	w.mu.Unlock()

	w.cancel()
	if w.watcher != nil {
		w.watcher.Stop()
	}
	if wasStarted {
		select {
		case <-w.done:
		case <-time.After(2 * time.Second):
		}
	}
}

// TriggerRefresh reloads the file now, even if its content is unchanged.
func (w *TreeWorker) TriggerRefresh() {
	w.mu.Lock()
	if w.state == WorkerStopped {
		w.mu.Unlock()
		return
	}
	w.lastHash = ""
	if w.state == WorkerProcessing {
		w.dirty = true
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()
	go w.process()
}

// Tree returns the last tree built (may be nil).
func (w *TreeWorker) Tree() *layout.Tree {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tree
}

// State returns the current worker state.
func (w *TreeWorker) State() WorkerState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// LastError returns the most recent error, nil after a success.
func (w *TreeWorker) LastError() *WorkerError {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastError
}

// LastHash returns the content hash of the last tree built.
func (w *TreeWorker) LastHash() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastHash
}

func (w *TreeWorker) processLoop() {
	defer close(w.done)
	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.watcher.Changed():
			w.process()
		}
	}
}

func (w *TreeWorker) process() {
	w.mu.Lock()
	if w.state != WorkerIdle {
		if w.state == WorkerProcessing {
			w.dirty = true
		}
		w.mu.Unlock()
		return
	}
	w.state = WorkerProcessing
	w.dirty = false
	w.mu.Unlock()

	tree := w.buildTree()

	w.mu.Lock()
	if w.state == WorkerStopped {
		w.mu.Unlock()
		return
	}
	if tree != nil {
		w.tree = tree
	}
	wasDirty := w.dirty
	w.state = WorkerIdle
	program := w.program
	w.mu.Unlock()

	if program != nil && tree != nil {
		program.Send(TreeReadyMsg{Tree: tree, Source: w.path})
	}
	if wasDirty {
		go w.process()
	}
}

// safeCompute runs fn, turning errors and panics into a WorkerError.
func (w *TreeWorker) safeCompute(phase string, fn func() error) *WorkerError {
	var result *WorkerError
	func() {
		defer func() {
			if r := recover(); r != nil {
				result = &WorkerError{
					Phase: phase,
					Cause: fmt.Errorf("panic: %v\n%s", r, debug.Stack()),
					Time:  time.Now(),
				}
			}
		}()
		if err := fn(); err != nil {
			result = &WorkerError{Phase: phase, Cause: err, Time: time.Now()}
		}
	}()
	return result
}

func (w *TreeWorker) recordError(err *WorkerError) {
	w.mu.Lock()
	w.lastError = err
	if err != nil {
		w.errorCount++
		err.Retries = w.errorCount
	} else {
		w.errorCount = 0
	}
	program := w.program
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("tree rebuild failed", "path", w.path, "phase", err.Phase, "error", err.Cause)
		if program != nil {
			program.Send(TreeErrorMsg{Err: err, Recoverable: true})
		}
	}
}

// buildTree loads the file and lays it out. It returns nil on error or when
// the content has not changed since the last build.
func (w *TreeWorker) buildTree() *layout.Tree {
	if w.path == "" {
		return nil
	}
	start := time.Now()

	var term *model.Term
	if err := w.safeCompute("load", func() error {
		var err error
		term, err = loader.LoadFile(w.path)
		return err
	}); err != nil {
		w.recordError(err)
		return nil
	}

	hash, err := termHash(term)
	if err != nil {
		w.recordError(&WorkerError{Phase: "load", Cause: err, Time: time.Now()})
		return nil
	}
	w.mu.RLock()
	unchanged := hash == w.lastHash && w.lastHash != ""
	path, depth := w.selectPath, w.depth
	w.mu.RUnlock()
	if unchanged {
		w.logger.Debug("tree unchanged, skipping rebuild", "hash", hashPrefix(hash))
		w.recordError(nil)
		return nil
	}

	var tree *layout.Tree
	if err := w.safeCompute("layout", func() error {
		tree = layout.FromTerm(term, w.layout)
		sel := tree.Resolve(path)
		if sel == layout.NoNode {
			sel = tree.Root()
		}
		tree.Select(sel, depth)
		return nil
	}); err != nil {
		w.recordError(err)
		return nil
	}

	w.recordError(nil)
	w.mu.Lock()
	w.lastHash = hash
	w.mu.Unlock()

	w.logger.Info("tree rebuilt", "path", w.path, "nodes", tree.Len(),
		"elapsed", time.Since(start), "hash", hashPrefix(hash))
	return tree
}

func termHash(t *model.Term) (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// hashPrefix returns up to 16 characters of hash for logging.
func hashPrefix(hash string) string {
	if len(hash) > 16 {
		return hash[:16]
	}
	return hash
}

// TreeReadyMsg delivers a fully built tree to the UI. The UI replaces its
// tree with Tree and never touches the previous one again.
type TreeReadyMsg struct {
	Tree   *layout.Tree
	Source string
	TreeID int64
	Line   string
}

// TreeErrorMsg is sent when a rebuild fails.
type TreeErrorMsg struct {
	Err         error
	Recoverable bool
}
