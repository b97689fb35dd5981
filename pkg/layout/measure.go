package layout

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Measure wraps label into display lines and returns the box size.
// Lines break at explicit newlines, then soft-wrap at cfg.MaxLabelCols cells,
// preferring the last space that fits. Width is the widest line in cells
// times CharWidth (at least one cell so empty labels stay clickable); height
// is one LineHeight per line.
func Measure(label string, cfg Config) (lines []string, width, height float64) {
	cfg = cfg.normalized()
	label = strings.ReplaceAll(label, "\r\n", "\n")
	for _, hard := range strings.Split(label, "\n") {
		lines = append(lines, wrapLine(hard, cfg.MaxLabelCols)...)
	}

	cells := 1
	for _, l := range lines {
		cells = max(cells, runewidth.StringWidth(l))
	}
	return lines, float64(cells) * cfg.CharWidth, float64(len(lines)) * cfg.LineHeight
}

// wrapLine splits s into pieces no wider than limit cells. A limit of 0
// disables wrapping.
func wrapLine(s string, limit int) []string {
	if limit <= 0 || runewidth.StringWidth(s) <= limit {
		return []string{s}
	}

	var out []string
	runes := []rune(s)
	for len(runes) > 0 {
		width, cut, lastSpace := 0, 0, -1
		for cut < len(runes) {
			w := runewidth.RuneWidth(runes[cut])
			if width+w > limit && cut > 0 {
				break
			}
			if runes[cut] == ' ' {
				lastSpace = cut
			}
			width += w
			cut++
		}
		if cut < len(runes) && runes[cut] == ' ' {
			lastSpace = cut
		}
		if cut < len(runes) && lastSpace > 0 {
			out = append(out, strings.TrimRight(string(runes[:lastSpace]), " "))
			runes = runes[lastSpace+1:]
			continue
		}
		out = append(out, string(runes[:cut]))
		runes = runes[cut:]
	}
	return out
}
