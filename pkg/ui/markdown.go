package ui

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

// MarkdownRenderer renders the properties pane with glamour styles coloured
// from the viewer theme. It keeps one renderer per width and rebuilds it
// only when the width changes.
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
	theme    Theme
}

// NewMarkdownRendererWithTheme colours headings, code and text from theme.
func NewMarkdownRendererWithTheme(width int, theme Theme) *MarkdownRenderer {
	mr := &MarkdownRenderer{width: width, theme: theme}
	mr.rebuild()
	return mr
}

// Render converts markdown to ANSI text. Without a renderer the input is
// returned unchanged.
func (mr *MarkdownRenderer) Render(md string) (string, error) {
	if mr.renderer == nil {
		return md, nil
	}
	return mr.renderer.Render(md)
}

// SetWidth changes the wrap width. Non-positive widths are ignored.
func (mr *MarkdownRenderer) SetWidth(width int) {
	if width <= 0 || width == mr.width {
		return
	}
	mr.width = width
	mr.rebuild()
}

// IsDarkMode reports the terminal background the styles were picked for.
func (mr *MarkdownRenderer) IsDarkMode() bool {
	if mr.theme.Renderer != nil {
		return mr.theme.Renderer.HasDarkBackground()
	}
	return lipgloss.HasDarkBackground()
}

func (mr *MarkdownRenderer) rebuild() {
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(buildStyleFromTheme(mr.theme, mr.IsDarkMode())),
		glamour.WithWordWrap(mr.width),
	)
	if err != nil {
		mr.renderer = nil
		return
	}
	mr.renderer = r
}

func extractHex(c lipgloss.AdaptiveColor, dark bool) string {
	if dark {
		return c.Dark
	}
	return c.Light
}

func buildStyleFromTheme(theme Theme, dark bool) ansi.StyleConfig {
	cfg := styles.LightStyleConfig
	if dark {
		cfg = styles.DarkStyleConfig
	}
	text := extractHex(theme.Text, dark)
	primary := extractHex(theme.Primary, dark)
	str := extractHex(theme.String, dark)
	muted := extractHex(theme.Muted, dark)
	bold := true

	cfg.Document.Color = &text
	cfg.Document.Margin = nil
	cfg.Heading.Color = &primary
	cfg.Heading.Bold = &bold
	cfg.H1.Color = &primary
	cfg.H1.BackgroundColor = nil
	cfg.Code.Color = &str
	cfg.Code.BackgroundColor = nil
	cfg.BlockQuote.Color = &muted
	return cfg
}
