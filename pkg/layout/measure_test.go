package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeasureSingleLine(t *testing.T) {
	cfg := DefaultConfig()
	lines, w, h := Measure("add", cfg)
	assert.Equal(t, []string{"add"}, lines)
	assert.Equal(t, 3*cfg.CharWidth, w)
	assert.Equal(t, cfg.LineHeight, h)
}

func TestMeasureEmptyLabelKeepsOneCell(t *testing.T) {
	cfg := CellConfig()
	lines, w, h := Measure("", cfg)
	assert.Equal(t, []string{""}, lines)
	assert.Equal(t, 1.0, w)
	assert.Equal(t, 1.0, h)
}

func TestMeasureHardBreaks(t *testing.T) {
	lines, w, h := Measure("ab\r\nlonger\nc", CellConfig())
	assert.Equal(t, []string{"ab", "longer", "c"}, lines)
	assert.Equal(t, 6.0, w)
	assert.Equal(t, 3.0, h)
}

func TestMeasureSoftWrapPrefersSpaces(t *testing.T) {
	cfg := CellConfig()
	cfg.MaxLabelCols = 10
	lines, w, _ := Measure("alpha beta gamma", cfg)
	assert.Equal(t, []string{"alpha beta", "gamma"}, lines)
	assert.Equal(t, 10.0, w)
}

func TestMeasureSoftWrapWithoutSpaces(t *testing.T) {
	cfg := CellConfig()
	cfg.MaxLabelCols = 4
	lines, _, _ := Measure(strings.Repeat("x", 10), cfg)
	assert.Equal(t, []string{"xxxx", "xxxx", "xx"}, lines)
}

func TestMeasureWideRunes(t *testing.T) {
	cfg := CellConfig()
	cfg.MaxLabelCols = 4
	lines, w, _ := Measure("日本語", cfg)
	assert.Equal(t, []string{"日本", "語"}, lines)
	assert.Equal(t, 4.0, w)
}

func TestWrapLineDisabled(t *testing.T) {
	long := strings.Repeat("y", 100)
	if got := wrapLine(long, 0); len(got) != 1 || got[0] != long {
		t.Errorf("expected a single unwrapped line, got %v", got)
	}
}
