package repl

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/vanderheijden86/eva/pkg/layout"
)

func noColor(t *testing.T) {
	t.Helper()
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })
}

func TestResultLayout(t *testing.T) {
	res := New(WithDepth(0)).Eval(context.Background(), "f(a, g(b))")
	if res.Err != nil {
		t.Fatal(res.Err)
	}

	tree := res.Layout(layout.CellConfig())
	if tree.Selected() != tree.Root() {
		t.Errorf("expected root selected, got %d", tree.Selected())
	}
	if tree.VisibleCount() != 1 {
		t.Errorf("expected only the root visible at depth 0, got %d", tree.VisibleCount())
	}

	res.SelectPath = []int{1, 0}
	tree = res.Layout(layout.CellConfig())
	if got := tree.Node(tree.Selected()).Label; got != "b" {
		t.Errorf("expected b selected, got %q", got)
	}

	res.SelectPath = []int{7}
	tree = res.Layout(layout.CellConfig())
	if tree.Selected() != tree.Root() {
		t.Error("unresolvable path should fall back to the root")
	}

	if (Result{}).Layout(layout.CellConfig()) != nil {
		t.Error("expected nil tree for a result without one")
	}
}

func TestWriteASCII(t *testing.T) {
	noColor(t)
	res := New().Eval(context.Background(), "f(a, g(b, c), \"s\")")
	tree := res.Layout(layout.CellConfig())

	var buf bytes.Buffer
	if err := WriteASCII(&buf, tree); err != nil {
		t.Fatal(err)
	}
	want := "* f\n" +
		"├── a\n" +
		"├── g …\n" +
		"└── \"s\"\n"
	if buf.String() != want {
		t.Errorf("outline mismatch\n got:\n%s\nwant:\n%s", buf.String(), want)
	}

	tree.Select(tree.Resolve([]int{1, 1}), 1)
	buf.Reset()
	if err := WriteASCII(&buf, tree); err != nil {
		t.Fatal(err)
	}
	want = "f\n" +
		"├── a\n" +
		"├── g\n" +
		"│   ├── b\n" +
		"│   └── * c\n" +
		"└── \"s\"\n"
	if buf.String() != want {
		t.Errorf("outline mismatch\n got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestRunPlain(t *testing.T) {
	noColor(t)
	out := filepath.Join(t.TempDir(), "out.md")
	in := strings.Join([]string{
		"f(a, g(b))",
		":depth 0",
		":select 1",
		":select 5",
		"f(",
		":export " + out,
		":quit",
		"never evaluated",
	}, "\n")

	var buf bytes.Buffer
	err := RunPlain(context.Background(), strings.NewReader(in), &buf, New(), PlainOptions{Layout: layout.CellConfig()})
	if err != nil {
		t.Fatalf("RunPlain: %v", err)
	}

	want := "* f\n├── a\n└── g …\n" +
		"depth set to 0\n* f …\n" +
		"f …\n└── * g …\n" +
		"error: no node at 5\n" +
		"error: offset 2: expected term, got end of input\n" +
		"wrote " + out + "\n"
	if buf.String() != want {
		t.Errorf("transcript mismatch\n got:\n%s\nwant:\n%s", buf.String(), want)
	}

	md, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(md), "**`g`** …") {
		t.Errorf("expected exported outline with g selected, got:\n%s", md)
	}
}

func TestRunPlainNeedsTree(t *testing.T) {
	noColor(t)
	var buf bytes.Buffer
	in := ":select 0\n:export x.svg\n"
	if err := RunPlain(context.Background(), strings.NewReader(in), &buf, New(), PlainOptions{Prompt: "> "}); err != nil {
		t.Fatal(err)
	}
	want := "> error: no tree yet\n> error: no tree yet\n> \n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestRunPlainStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunPlain(ctx, strings.NewReader("f(x)\n"), &bytes.Buffer{}, New(), PlainOptions{})
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
