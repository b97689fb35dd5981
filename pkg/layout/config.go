// Package layout implements the windowed tree layout behind the eva viewer.
//
// A Tree holds an arbitrarily large derivation tree in an arena of Nodes and
// keeps a bounded "decompression window" around the selected node: the
// selection's ancestors are always expanded, nodes within a fixed depth of the
// ancestor chain are expanded, and everything else is compressed. After every
// selection the visible part is recounted (leaf weights) and laid out again
// (y-offsets, world coordinates, subtree bounds for hit-testing).
//
// The package has no dependency on any rendering backend. Geometry constants
// come in through Config; measuring a label only needs cell widths.
package layout

// Config carries the geometry constants used by measurement and layout.
// All lengths share one unit: pixels for image export, cells for the TUI.
type Config struct {
	LineHeight    float64 `yaml:"line_height" json:"line_height" mapstructure:"line_height"`
	CharWidth     float64 `yaml:"char_width" json:"char_width" mapstructure:"char_width"`
	XGap          float64 `yaml:"x_gap" json:"x_gap" mapstructure:"x_gap"`
	YGap          float64 `yaml:"y_gap" json:"y_gap" mapstructure:"y_gap"`
	FanOutPerLeaf float64 `yaml:"fan_out_per_leaf" json:"fan_out_per_leaf" mapstructure:"fan_out_per_leaf"`
	MaxLabelCols  int     `yaml:"max_label_cols" json:"max_label_cols" mapstructure:"max_label_cols"` // 0 = no soft wrap
	DefaultDepth  int     `yaml:"default_depth" json:"default_depth" mapstructure:"default_depth"`
}

// DefaultConfig returns the pixel preset used for image export.
// Glyph metrics match x/image's basicfont 7x13 face.
func DefaultConfig() Config {
	return Config{
		LineHeight:    13,
		CharWidth:     7,
		XGap:          24,
		YGap:          30,
		FanOutPerLeaf: 5,
		MaxLabelCols:  40,
		DefaultDepth:  1,
	}
}

// CellConfig returns the terminal preset: one unit is one character cell.
func CellConfig() Config {
	return Config{
		LineHeight:    1,
		CharWidth:     1,
		XGap:          4,
		YGap:          2,
		FanOutPerLeaf: 0.5,
		MaxLabelCols:  28,
		DefaultDepth:  1,
	}
}

// normalized replaces unusable zero values so the layout arithmetic never
// divides by zero.
func (c Config) normalized() Config {
	if c.LineHeight <= 0 {
		c.LineHeight = 1
	}
	if c.CharWidth <= 0 {
		c.CharWidth = 1
	}
	if c.YGap <= 0 {
		c.YGap = 2 * c.LineHeight
	}
	if c.XGap < 0 {
		c.XGap = 0
	}
	if c.MaxLabelCols < 0 {
		c.MaxLabelCols = 0
	}
	if c.DefaultDepth < 0 {
		c.DefaultDepth = 0
	}
	return c
}
