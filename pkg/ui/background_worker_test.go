package ui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/eva/pkg/layout"
)

const workerTree = `{"label":"f","children":[{"label":"a"},{"label":"g","children":[{"label":"b"}]}]}`

func writeTreeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
}

func newTestWorker(t *testing.T, path string) *TreeWorker {
	t.Helper()
	worker, err := NewTreeWorker(WorkerConfig{
		Path:          path,
		DebounceDelay: 50 * time.Millisecond,
		Layout:        layout.CellConfig(),
		Depth:         1,
	})
	if err != nil {
		t.Fatalf("NewTreeWorker failed: %v", err)
	}
	t.Cleanup(worker.Stop)
	return worker
}

// waitFor polls cond until it holds or two seconds pass.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestTreeWorker_NewWithoutPath(t *testing.T) {
	worker := newTestWorker(t, "")

	if worker.State() != WorkerIdle {
		t.Errorf("Expected idle state, got %v", worker.State())
	}
	if worker.Tree() != nil {
		t.Error("Expected nil tree initially")
	}
	if err := worker.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	worker.TriggerRefresh()
	time.Sleep(50 * time.Millisecond)
	if worker.Tree() != nil {
		t.Error("A worker without a path should never build a tree")
	}
}

func TestTreeWorker_StartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	writeTreeFile(t, path, workerTree)
	worker := newTestWorker(t, path)

	if err := worker.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := worker.Start(); err != nil {
		t.Fatalf("Second Start should be a no-op: %v", err)
	}

	worker.Stop()
	if worker.State() != WorkerStopped {
		t.Errorf("Expected stopped state, got %v", worker.State())
	}
	worker.Stop()

	worker.TriggerRefresh()
	time.Sleep(50 * time.Millisecond)
	if worker.Tree() != nil {
		t.Error("A stopped worker should not build")
	}
}

func TestTreeWorker_TriggerRefresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	writeTreeFile(t, path, workerTree)
	worker := newTestWorker(t, path)

	worker.TriggerRefresh()
	waitFor(t, "first tree", func() bool { return worker.Tree() != nil })

	tree := worker.Tree()
	if tree.Len() != 4 {
		t.Errorf("Expected 4 nodes, got %d", tree.Len())
	}
	if tree.Selected() != tree.Root() {
		t.Errorf("Expected root selected, got %d", tree.Selected())
	}
	if tree.WindowDepth() != 1 {
		t.Errorf("Expected depth 1, got %d", tree.WindowDepth())
	}
	if !tree.HasHiddenChildren(tree.Resolve([]int{1})) {
		t.Error("Expected g's child to be compressed at depth 1")
	}
}

func TestTreeWorker_ContentHashDedup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	writeTreeFile(t, path, workerTree)
	worker := newTestWorker(t, path)

	worker.TriggerRefresh()
	waitFor(t, "first tree", func() bool { return worker.Tree() != nil })
	tree1, hash1 := worker.Tree(), worker.LastHash()
	if hash1 == "" {
		t.Fatal("Expected non-empty hash after first refresh")
	}

	// Reformatting the file does not change the term.
	writeTreeFile(t, path, strings.ReplaceAll(workerTree, ",", ", "))
	worker.process()

	if worker.LastHash() != hash1 {
		t.Errorf("Hash changed unexpectedly: %s -> %s", hash1, worker.LastHash())
	}
	if worker.Tree() != tree1 {
		t.Error("Tree pointer changed when content was unchanged - dedup failed")
	}
}

func TestTreeWorker_ContentHashChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	writeTreeFile(t, path, workerTree)
	worker := newTestWorker(t, path)

	worker.process()
	tree1, hash1 := worker.Tree(), worker.LastHash()
	if tree1 == nil {
		t.Fatal("Expected tree after first build")
	}

	writeTreeFile(t, path, `{"label":"h","children":[{"label":"x"}]}`)
	worker.process()

	if worker.LastHash() == hash1 {
		t.Error("Hash should change when the term changes")
	}
	tree2 := worker.Tree()
	if tree2 == tree1 {
		t.Fatal("Expected a new tree after the content changed")
	}
	if got := tree2.Node(tree2.Root()).Label; got != "h" {
		t.Errorf("Expected root label h, got %q", got)
	}
}

func TestTreeWorker_TriggerRefreshRebuildsUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	writeTreeFile(t, path, workerTree)
	worker := newTestWorker(t, path)

	worker.process()
	tree1 := worker.Tree()

	worker.TriggerRefresh()
	waitFor(t, "forced rebuild", func() bool { return worker.Tree() != tree1 })
}

func TestTreeWorker_SetViewRestoresSelection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	writeTreeFile(t, path, workerTree)
	worker := newTestWorker(t, path)

	worker.SetView([]int{1, 0}, 0)
	worker.process()

	tree := worker.Tree()
	if tree == nil {
		t.Fatal("Expected tree")
	}
	if got := tree.Path(tree.Selected()); len(got) != 2 || got[0] != 1 || got[1] != 0 {
		t.Errorf("Expected selection at [1 0], got %v", got)
	}
	if tree.WindowDepth() != 0 {
		t.Errorf("Expected depth 0, got %d", tree.WindowDepth())
	}

	// A path that no longer resolves falls back to the root.
	writeTreeFile(t, path, `{"label":"h"}`)
	worker.process()
	tree = worker.Tree()
	if tree.Selected() != tree.Root() {
		t.Errorf("Expected root selected after the path vanished, got %v", tree.Path(tree.Selected()))
	}
}

func TestTreeWorker_WatcherChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	writeTreeFile(t, path, workerTree)
	worker := newTestWorker(t, path)

	if err := worker.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	writeTreeFile(t, path, `{"label":"changed"}`)
	waitFor(t, "rebuild after write", func() bool {
		tree := worker.Tree()
		return tree != nil && tree.Node(tree.Root()).Label == "changed"
	})
}

func TestWorkerError_String(t *testing.T) {
	err := WorkerError{
		Phase:   "load",
		Cause:   os.ErrNotExist,
		Time:    time.Now(),
		Retries: 3,
	}

	s := err.Error()
	if !strings.Contains(s, "load") {
		t.Errorf("Error() should contain phase 'load': %s", s)
	}
	if !strings.Contains(s, "3") {
		t.Errorf("Error() should contain retry count: %s", s)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("Unwrap() should return underlying error")
	}
}

func TestTreeWorker_LoadError(t *testing.T) {
	worker := newTestWorker(t, filepath.Join(t.TempDir(), "missing.json"))

	worker.process()
	if worker.Tree() != nil {
		t.Error("Expected nil tree when the file doesn't exist")
	}
	lastErr := worker.LastError()
	if lastErr == nil {
		t.Fatal("Expected error to be recorded")
	}
	if lastErr.Phase != "load" {
		t.Errorf("Expected phase 'load', got %q", lastErr.Phase)
	}
	if lastErr.Retries != 1 {
		t.Errorf("Expected 1 retry, got %d", lastErr.Retries)
	}

	worker.process()
	if got := worker.LastError().Retries; got != 2 {
		t.Errorf("Expected retries to count up to 2, got %d", got)
	}
}

func TestTreeWorker_ErrorRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	writeTreeFile(t, path, `{"label":`)
	worker := newTestWorker(t, path)

	worker.process()
	if worker.Tree() != nil {
		t.Error("Expected nil tree for malformed input")
	}
	if worker.LastError() == nil {
		t.Fatal("Expected error to be recorded")
	}

	writeTreeFile(t, path, workerTree)
	worker.process()
	if worker.Tree() == nil {
		t.Fatal("Expected tree after the file was fixed")
	}
	if worker.LastError() != nil {
		t.Error("Expected error to be cleared on success")
	}
}

func TestTreeWorker_SafeCompute(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	writeTreeFile(t, path, workerTree)
	worker := newTestWorker(t, path)

	werr := worker.safeCompute("test", func() error {
		panic("intentional panic for testing")
	})
	if werr == nil {
		t.Fatal("safeCompute should catch panics")
	}
	if werr.Phase != "test" {
		t.Errorf("Expected phase 'test', got %q", werr.Phase)
	}
	if !strings.Contains(werr.Error(), "intentional panic") {
		t.Errorf("Expected panic value in error: %v", werr)
	}

	worker.process()
	if worker.Tree() == nil {
		t.Error("Worker should still be functional after panic recovery")
	}
}

func TestHashPrefix(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"short string", "abc", "abc"},
		{"exactly 16 chars", "1234567890123456", "1234567890123456"},
		{"longer than 16 chars", "8b423072ec4730921a2b3c4d5e6f7890", "8b423072ec473092"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hashPrefix(tt.input); got != tt.expected {
				t.Errorf("hashPrefix(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTreeWorker_ConcurrentTrigger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	writeTreeFile(t, path, workerTree)
	worker := newTestWorker(t, path)

	if err := worker.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		go worker.TriggerRefresh()
	}

	waitFor(t, "tree after concurrent triggers", func() bool { return worker.Tree() != nil })
	waitFor(t, "worker to go idle", func() bool { return worker.State() == WorkerIdle })
}
