package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/eva/pkg/config"
)

const treeJSON = `{"label": "f", "children": [
	{"label": "a"},
	{"label": "g", "properties": "rule R2", "children": [{"label": "b"}]}
]}`

// isolate points config discovery and the data directory at a temp dir and
// runs the test from there.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("EVA_DATA_DIR", filepath.Join(dir, "data"))
	t.Chdir(dir)
	return dir
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTree(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "tree.json")
	require.NoError(t, os.WriteFile(path, []byte(treeJSON), 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "eva "), "got %q", out)
	assert.Contains(t, out, "commit:")
}

func TestBinaryVersionPrefersLdflags(t *testing.T) {
	old := version
	t.Cleanup(func() { version = old })

	version = "v1.2.3"
	assert.Equal(t, "v1.2.3", binaryVersion())

	version = ""
	assert.NotEmpty(t, binaryVersion())
}

func TestConfigInitAndShow(t *testing.T) {
	dir := isolate(t)

	out, err := run(t, "", "config", "init", dir)
	require.NoError(t, err)
	path := filepath.Join(dir, config.DirName, config.FileName)
	assert.Contains(t, out, "wrote "+path)
	assert.FileExists(t, path)

	_, err = run(t, "", "config", "init", dir)
	assert.ErrorIs(t, err, config.ErrConfigExists)

	out, err = run(t, "", "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# "+path)
	assert.Contains(t, out, "line_height: 1")
	assert.Contains(t, out, "history_limit:")
}

func TestConfigShowDefaults(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# built-in defaults")
	assert.Contains(t, out, "data_dir:")
}

func TestInvalidConfigFails(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("layout:\n  line_height: 0\n"), 0o644))

	_, err := run(t, "", "--config", path, "version")
	assert.ErrorIs(t, err, config.ErrInvalidLineHeight)
}

func TestExportCommand(t *testing.T) {
	dir := isolate(t)
	file := writeTree(t, dir)

	t.Run("svg by extension", func(t *testing.T) {
		target := filepath.Join(dir, "out.svg")
		out, err := run(t, "", "export", file, "-o", target)
		require.NoError(t, err)
		assert.Contains(t, out, "wrote "+target)

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Contains(t, string(data), "<svg")
	})

	t.Run("markdown named after the input", func(t *testing.T) {
		out, err := run(t, "", "export", file, "--format", "md", "--select", "1", "--depth", "1")
		require.NoError(t, err)
		assert.Contains(t, out, "wrote tree.md (4 of 4 nodes)")

		data, err := os.ReadFile(filepath.Join(dir, "tree.md"))
		require.NoError(t, err)
		md := string(data)
		assert.Contains(t, md, "# tree.json")
		assert.Contains(t, md, "**`g`**")
		assert.Contains(t, md, "rule R2")
	})

	t.Run("depth zero hides children", func(t *testing.T) {
		out, err := run(t, "", "export", file, "-o", filepath.Join(dir, "root.md"), "-d", "0")
		require.NoError(t, err)
		assert.Contains(t, out, "(1 of 4 nodes)")
	})

	t.Run("bad select path", func(t *testing.T) {
		_, err := run(t, "", "export", file, "-o", filepath.Join(dir, "x.json"), "--select", "7")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no node at 7")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := run(t, "", "export", file, "--format", "gif")
		assert.Error(t, err)
	})

	t.Run("needs output or format", func(t *testing.T) {
		_, err := run(t, "", "export", file)
		assert.Error(t, err)
	})
}

func TestReplPlainAndHistory(t *testing.T) {
	isolate(t)

	out, err := run(t, "f(a, g(b))\n:depth 0\n", "repl", "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "* f")
	assert.Contains(t, out, "├── a")
	assert.Contains(t, out, "depth set to 0")

	out, err = run(t, "", "history", "-n", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "f(a, g(b))")
	assert.Contains(t, out, ":depth 0")
	assert.Contains(t, out, "INPUT")

	out, err = run(t, "", "history", "--trees")
	require.NoError(t, err)
	assert.Contains(t, out, "f(a, g(b))")
	assert.Contains(t, out, "NODES")

	_, err = run(t, "", "history", "-n", "0")
	assert.Error(t, err)
}

func TestHistoryEmpty(t *testing.T) {
	isolate(t)

	out, err := run(t, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "no history yet")

	out, err = run(t, "", "history", "--trees")
	require.NoError(t, err)
	assert.Contains(t, out, "no trees archived yet")
}

func TestViewErrors(t *testing.T) {
	dir := isolate(t)
	file := writeTree(t, dir)

	_, err := run(t, "", "view", filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	_, err = run(t, "", "view", "--watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--watch needs a file")

	_, err = run(t, "", "view", file)
	assert.ErrorIs(t, err, errNotTerminal)

	_, err = run(t, "", file)
	assert.ErrorIs(t, err, errNotTerminal, "the root command opens files like view")
}
