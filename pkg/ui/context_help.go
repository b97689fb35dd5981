package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/eva/pkg/repl"
)

// Context identifies which part of the viewer has focus; the help overlay
// adds a short note for it.
type Context string

const (
	ContextCanvas  Context = "canvas"
	ContextOutline Context = "outline"
	ContextPrompt  Context = "prompt"
)

// ContextHelpContent holds the per-context notes shown above the key list.
var ContextHelpContent = map[Context]string{
	ContextCanvas:  contextHelpCanvas,
	ContextOutline: contextHelpOutline,
	ContextPrompt:  contextHelpPrompt,
}

// GetContextHelp returns the note for ctx, or the canvas note.
func GetContextHelp(ctx Context) string {
	if content, ok := ContextHelpContent[ctx]; ok {
		return content
	}
	return contextHelpCanvas
}

// RenderContextHelp renders the help modal: the context note, every key
// binding and the REPL meta commands.
func RenderContextHelp(ctx Context, keys keyMap, h help.Model, theme Theme, width int) string {
	r := theme.Renderer

	modalWidth := 72
	if modalWidth > width-4 {
		modalWidth = width - 4
	}
	if modalWidth < 20 {
		modalWidth = 20
	}

	titleStyle := r.NewStyle().Bold(true).Foreground(theme.Primary)
	contentStyle := r.NewStyle().Foreground(theme.Subtext)
	footerStyle := r.NewStyle().Foreground(theme.Muted).Italic(true)

	h.ShowAll = true
	h.Width = modalWidth - 4

	var b strings.Builder
	b.WriteString(titleStyle.Render("Quick Reference"))
	b.WriteString("\n")
	b.WriteString(r.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", modalWidth-4)))
	b.WriteString("\n\n")
	b.WriteString(contentStyle.Render(GetContextHelp(ctx)))
	b.WriteString("\n\n")
	b.WriteString(h.View(keys))
	b.WriteString("\n\n")
	b.WriteString(contentStyle.Render(repl.HelpText))
	b.WriteString("\n\n")
	b.WriteString(footerStyle.Render("? or Esc to close"))

	modalStyle := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Secondary).
		Padding(1, 2).
		Width(modalWidth)

	return modalStyle.Render(b.String())
}

const contextHelpCanvas = `The tree is drawn left to right around the selection.
Only nodes near the selected path are expanded; ▸ marks
a node whose children are compressed. Click a node to
select it.`

const contextHelpOutline = `The outline lists the same window as the canvas, one
node per row. ▾ is fully open, ▸ has compressed children,
• is a leaf.`

const contextHelpPrompt = `Type a term such as f(a, g(b)) or a : command.
↑/↓ walk the history starting with what you typed;
Esc returns to the tree.`
