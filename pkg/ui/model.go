// Package ui is the terminal viewer: a canvas of the decompression window
// around the selected node, an outline mode, a properties pane and a REPL
// prompt.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/vanderheijden86/eva/pkg/export"
	"github.com/vanderheijden86/eva/pkg/layout"
	"github.com/vanderheijden86/eva/pkg/repl"
)

const (
	SplitViewThreshold = 100

	animationInterval = 33 * time.Millisecond
	animationRate     = 0.35
	panStep           = 3
)

type focus int

const (
	focusCanvas focus = iota
	focusOutline
	focusPrompt
)

// Options configures the viewer.
type Options struct {
	Context   context.Context
	Layout    layout.Config
	Prompt    string
	Animate   bool
	Mouse     bool
	Evaluator *repl.Evaluator
	History   HistoryStore
	Worker    *TreeWorker
	Source    string
	Renderer  *lipgloss.Renderer
	Logger    *slog.Logger
	Clipboard func(string) error
}

type evalMsg struct {
	res repl.Result
}

type exportDoneMsg struct {
	path string
	err  error
}

type statusMsg struct {
	text string
	err  bool
}

type animTickMsg struct{}

// Model is the bubbletea model of the viewer.
type Model struct {
	opts     Options
	ctx      context.Context
	theme    Theme
	keys     keyMap
	pkeys    promptKeys
	help     help.Model
	input    textinput.Model
	viewport viewport.Model
	markdown *MarkdownRenderer
	outline  OutlineModel
	walker   historyWalker

	tree   *layout.Tree
	source string
	treeID int64
	depth  int
	panX   int
	panY   int

	focused     focus
	lastFocus   focus
	showHelp    bool
	showProps   bool
	isSplitView bool
	ready       bool
	width       int
	height      int
	canvasW     int
	bodyH       int

	evaluating bool
	animating  bool
	status     string
	statusErr  bool
}

// NewModel creates the viewer for tree, which may be nil until the first
// evaluation. A tree without a selection gets its root selected.
func NewModel(tree *layout.Tree, opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Renderer == nil {
		opts.Renderer = lipgloss.DefaultRenderer()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Prompt == "" {
		opts.Prompt = "eva> "
	}
	theme := DefaultTheme(opts.Renderer)

	input := textinput.New()
	input.Prompt = opts.Prompt
	input.PromptStyle = opts.Renderer.NewStyle().Foreground(theme.Primary).Bold(true)
	input.Placeholder = "f(a, g(b))  or  :help"

	depth := opts.Layout.DefaultDepth
	if opts.Evaluator != nil {
		depth = opts.Evaluator.Depth()
	}

	m := Model{
		opts:     opts,
		ctx:      opts.Context,
		theme:    theme,
		keys:     defaultKeyMap(),
		pkeys:    defaultPromptKeys(),
		help:     help.New(),
		input:    input,
		viewport: viewport.New(0, 0),
		markdown: NewMarkdownRendererWithTheme(40, theme),
		outline:  NewOutlineModel(theme),
		walker:   historyWalker{store: opts.History},
		source:   opts.Source,
		depth:    depth,
		focused:  focusCanvas,
	}
	if tree != nil {
		if tree.Selected() == layout.NoNode {
			tree.Select(tree.Root(), depth)
		}
		m.depth = tree.WindowDepth()
		m.tree = tree
		if !opts.Animate {
			tree.Settle()
		}
		m.refresh()
	} else {
		m.focused = focusPrompt
		m.input.Focus()
	}
	return m
}

// Init starts the cursor blink when the prompt has focus.
func (m Model) Init() tea.Cmd {
	if m.focused == focusPrompt {
		return textinput.Blink
	}
	return nil
}

// Tree returns the tree on screen.
func (m Model) Tree() *layout.Tree {
	return m.tree
}

// Depth returns the current window depth.
func (m Model) Depth() int {
	return m.depth
}

// Status returns the status bar message.
func (m Model) Status() string {
	return m.status
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case TreeReadyMsg:
		if msg.Line != "" {
			m.evaluating = false
		}
		m.setTree(msg.Tree, msg.Source, msg.TreeID)
		if msg.Line != "" {
			m.setStatus(fmt.Sprintf("%s nodes", humanize.Comma(int64(msg.Tree.Len()))), false)
		} else {
			m.setStatus("reloaded "+msg.Source, false)
		}
		cmd := m.animate()
		return m, cmd

	case TreeErrorMsg:
		m.setStatus(msg.Err.Error(), true)
		return m, nil

	case evalMsg:
		m.evaluating = false
		return m.applyResult(msg.res)

	case exportDoneMsg:
		if msg.err != nil {
			m.setStatus("export failed: "+msg.err.Error(), true)
		} else {
			m.setStatus("wrote "+msg.path, false)
		}
		return m, nil

	case statusMsg:
		m.setStatus(msg.text, msg.err)
		return m, nil

	case animTickMsg:
		if m.tree == nil || !m.tree.Animate(animationRate) {
			m.animating = false
			return m, nil
		}
		return m, tick()

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.focused == focusPrompt {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		case "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}
	if m.focused == focusPrompt {
		return m.handlePromptKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.Prompt):
		m.lastFocus = m.focused
		m.focused = focusPrompt
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Outline):
		if m.focused == focusOutline {
			m.focused = focusCanvas
		} else {
			m.focused = focusOutline
		}
		return m, nil
	case key.Matches(msg, m.keys.Properties):
		m.showProps = !m.showProps
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		if m.opts.Worker == nil {
			m.setStatus("not watching a file", true)
			return m, nil
		}
		m.opts.Worker.TriggerRefresh()
		m.setStatus("reloading…", false)
		return m, nil
	}

	switch msg.String() {
	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case "esc":
		m.showProps = false
		m.panX, m.panY = 0, 0
		return m, nil
	}

	if m.tree == nil {
		return m, nil
	}
	sel := m.tree.Selected()
	switch {
	case key.Matches(msg, m.keys.Parent):
		cmd := m.selectNode(m.tree.Parent(sel))
		return m, cmd
	case key.Matches(msg, m.keys.Child):
		cmd := m.selectNode(m.tree.FirstChild(sel))
		return m, cmd
	case key.Matches(msg, m.keys.PrevSibling):
		cmd := m.selectNode(m.tree.PrevSibling(sel))
		return m, cmd
	case key.Matches(msg, m.keys.NextSibling):
		cmd := m.selectNode(m.tree.NextSibling(sel))
		return m, cmd
	case key.Matches(msg, m.keys.Root):
		cmd := m.selectNode(m.tree.Root())
		return m, cmd
	case key.Matches(msg, m.keys.Deeper):
		cmd := m.setDepth(m.depth + 1)
		return m, cmd
	case key.Matches(msg, m.keys.Shallower):
		cmd := m.setDepth(m.depth - 1)
		return m, cmd
	case key.Matches(msg, m.keys.Copy):
		cmd := m.copySelected()
		return m, cmd
	}
	return m, nil
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.pkeys.Abandon):
		return m, tea.Quit
	case key.Matches(msg, m.pkeys.Cancel):
		if m.tree == nil {
			return m, nil
		}
		m.input.Blur()
		m.walker.reset()
		m.focused = m.lastFocus
		return m, nil
	case key.Matches(msg, m.pkeys.Older):
		line, ok, err := m.walker.older(m.input.Value())
		m.applyHistory(line, ok, err)
		return m, nil
	case key.Matches(msg, m.pkeys.Newer):
		line, ok, err := m.walker.newer()
		m.applyHistory(line, ok, err)
		return m, nil
	case key.Matches(msg, m.pkeys.Submit):
		line := strings.TrimSpace(m.input.Value())
		if line == "" {
			return m, nil
		}
		if m.opts.Evaluator == nil {
			m.setStatus("no evaluator configured", true)
			return m, nil
		}
		if m.evaluating {
			m.setStatus("still evaluating the previous line", true)
			return m, nil
		}
		m.input.Reset()
		m.walker.reset()
		m.evaluating = true
		m.setStatus("evaluating…", false)
		return m, m.evalCmd(line)
	}

	m.walker.reset()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) applyHistory(line string, ok bool, err error) {
	if err != nil {
		m.opts.Logger.Warn("history lookup failed", "error", err)
		m.setStatus("history unavailable", true)
		return
	}
	if ok {
		m.input.SetValue(line)
		m.input.CursorEnd()
	}
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.opts.Mouse || m.tree == nil || m.showHelp {
		return m, nil
	}
	inBody := msg.X >= 0 && msg.X < m.canvasW && msg.Y >= 0 && msg.Y < m.bodyH
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.panY -= panStep
	case tea.MouseButtonWheelDown:
		m.panY += panStep
	case tea.MouseButtonWheelLeft:
		m.panX -= panStep
	case tea.MouseButtonWheelRight:
		m.panX += panStep
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress || !inBody {
			return m, nil
		}
		var id layout.NodeID
		if m.focused == focusOutline {
			id = m.outline.NodeAt(msg.Y)
		} else {
			id = m.tree.HitTest(m.camera().ToWorld(msg.X, msg.Y))
		}
		if m.focused == focusPrompt {
			m.input.Blur()
			m.focused = m.lastFocus
		}
		cmd := m.selectNode(id)
		return m, cmd
	}
	return m, nil
}

func (m Model) evalCmd(line string) tea.Cmd {
	ev, cfg, ctx := m.opts.Evaluator, m.opts.Layout, m.ctx
	return func() tea.Msg {
		res := ev.Eval(ctx, line)
		if res.Tree != nil {
			return TreeReadyMsg{Tree: res.Layout(cfg), Source: res.Source, TreeID: res.TreeID, Line: res.Line}
		}
		return evalMsg{res: res}
	}
}

func (m Model) applyResult(res repl.Result) (tea.Model, tea.Cmd) {
	if res.Quit {
		return m, tea.Quit
	}
	if res.Err != nil {
		m.setStatus(res.Err.Error(), true)
		return m, nil
	}

	var cmds []tea.Cmd
	if res.Depth != m.depth {
		cmds = append(cmds, m.setDepth(res.Depth))
	}
	if res.Output != "" {
		if strings.Contains(res.Output, "\n") {
			m.viewport.SetContent(res.Output)
			m.viewport.GotoTop()
			m.showProps = true
			m.setStatus(res.Line, false)
		} else {
			m.setStatus(res.Output, false)
		}
	}
	if res.SelectPath != nil {
		if m.tree == nil {
			m.setStatus(repl.ErrNoTree.Error(), true)
			return m, nil
		}
		id := m.tree.Resolve(res.SelectPath)
		if id == layout.NoNode {
			m.setStatus("no node at "+export.PathString(res.SelectPath), true)
			return m, nil
		}
		cmds = append(cmds, m.selectNode(id))
	}
	if res.ExportPath != "" {
		cmds = append(cmds, m.exportCmd(res.ExportPath))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) exportCmd(path string) tea.Cmd {
	if m.tree == nil {
		m.setStatus(repl.ErrNoTree.Error(), true)
		return nil
	}
	snapshot := m.tree.Relayout(m.tree.Config())
	m.setStatus("exporting "+path+"…", false)
	return func() tea.Msg {
		return exportDoneMsg{path: path, err: export.WriteFile(path, snapshot, export.Options{})}
	}
}

func (m *Model) copySelected() tea.Cmd {
	sel := m.tree.Selected()
	if sel == layout.NoNode {
		return nil
	}
	label := m.tree.Node(sel).Label
	copyFn := m.opts.Clipboard
	return func() tea.Msg {
		if err := copyFn(label); err != nil {
			return statusMsg{text: "copy failed: " + err.Error(), err: true}
		}
		return statusMsg{text: "copied " + truncateLabel(label, 40)}
	}
}

// selectNode moves the selection; NoNode is ignored.
func (m *Model) selectNode(id layout.NodeID) tea.Cmd {
	if m.tree == nil || id == layout.NoNode {
		return nil
	}
	m.tree.Select(id, m.depth)
	m.panX, m.panY = 0, 0
	m.refresh()
	return m.animate()
}

func (m *Model) setDepth(depth int) tea.Cmd {
	m.depth = max(0, depth)
	if m.opts.Evaluator != nil {
		m.opts.Evaluator.SetDepth(m.depth)
	}
	m.setStatus(fmt.Sprintf("depth %d", m.depth), false)
	if m.tree == nil {
		return nil
	}
	m.tree.SetDepth(m.depth)
	m.refresh()
	return m.animate()
}

func (m *Model) setTree(t *layout.Tree, source string, id int64) {
	if t == nil {
		return
	}
	m.tree = t
	if source != "" {
		m.source = source
	}
	m.treeID = id
	m.depth = t.WindowDepth()
	m.panX, m.panY = 0, 0
	m.refresh()
}

// refresh rebuilds everything derived from the selection.
func (m *Model) refresh() {
	m.outline.Build(m.tree)
	m.updateViewportContent()
	if m.opts.Worker != nil && m.tree != nil {
		m.opts.Worker.SetView(m.tree.Path(m.tree.Selected()), m.depth)
	}
}

func (m *Model) animate() tea.Cmd {
	if m.tree == nil {
		return nil
	}
	if !m.opts.Animate {
		m.tree.Settle()
		return nil
	}
	if m.animating {
		return nil
	}
	m.animating = true
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(animationInterval, func(time.Time) tea.Msg { return animTickMsg{} })
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.ready = true
	m.isSplitView = width > SplitViewThreshold

	m.bodyH = max(1, height-2)
	paneW := width
	m.canvasW = width
	if m.isSplitView {
		paneW = int(float64(width) * 0.38)
		m.canvasW = width - paneW
	}
	m.viewport.Width = max(1, paneW-4)
	m.viewport.Height = max(1, m.bodyH-2)
	m.markdown.SetWidth(m.viewport.Width)
	m.outline.SetSize(m.canvasW, m.bodyH)
	m.input.Width = max(1, width-lipgloss.Width(m.opts.Prompt)-1)
	m.help.Width = width
	m.updateViewportContent()
}

func (m *Model) camera() Camera {
	var cam Camera
	if m.tree != nil && m.tree.Selected() != layout.NoNode {
		cam = CenterOn(m.tree.CollisionBox(m.tree.Selected()).Center(), m.canvasW, m.bodyH)
	}
	cam.PanX, cam.PanY = m.panX, m.panY
	return cam
}

func (m *Model) updateViewportContent() {
	if m.tree == nil || m.tree.Selected() == layout.NoNode {
		m.viewport.SetContent("No node selected")
		return
	}
	rendered, err := m.markdown.Render(nodeMarkdown(m.tree, m.tree.Selected()))
	if err != nil {
		m.viewport.SetContent(fmt.Sprintf("Error rendering markdown: %v", err))
		return
	}
	m.viewport.SetContent(rendered)
}

// nodeMarkdown describes one node for the properties pane.
func nodeMarkdown(t *layout.Tree, id layout.NodeID) string {
	n := t.Node(id)
	var sb strings.Builder

	head, _, multi := strings.Cut(n.Label, "\n")
	sb.WriteString(fmt.Sprintf("# %s\n\n", strings.ReplaceAll(head, "#", `\#`)))

	kind := "term"
	switch {
	case n.IsComment:
		kind = "comment"
	case n.IsStringAtom:
		kind = "string"
	case n.IsLeaf():
		kind = "atom"
	}
	sb.WriteString("| Path | Depth | Kind | Children | Leaves |\n|---|---|---|---|---|\n")
	sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s |\n\n",
		export.PathString(t.Path(id)),
		t.Depth(id),
		kind,
		humanize.Comma(int64(len(n.Children))),
		humanize.Comma(int64(n.NumLeaves)),
	))

	if multi {
		sb.WriteString("### Label\n\n```\n" + n.Label + "\n```\n\n")
	}
	if n.Properties != "" {
		sb.WriteString("### Properties\n\n")
		sb.WriteString(n.Properties + "\n")
	}
	return sb.String()
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	body := m.renderBody()
	view := lipgloss.JoinVertical(lipgloss.Left, body, m.input.View(), m.renderFooter())
	if m.showHelp {
		ctx := ContextCanvas
		switch m.focused {
		case focusOutline:
			ctx = ContextOutline
		case focusPrompt:
			ctx = ContextPrompt
		}
		modal := RenderContextHelp(ctx, m.keys, m.help, m.theme, m.width)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
	}
	return m.theme.Renderer.NewStyle().MaxWidth(m.width).MaxHeight(m.height).Render(view)
}

func (m Model) renderBody() string {
	r := m.theme.Renderer
	panel := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Border).
		Padding(0, 1)

	if m.showProps && !m.isSplitView {
		return panel.Width(m.width - 2).Height(m.bodyH - 2).Render(m.viewport.View())
	}

	var main string
	switch {
	case m.tree == nil:
		main = m.outline.View()
	case m.focused == focusOutline || (m.focused == focusPrompt && m.lastFocus == focusOutline):
		main = m.outline.View()
	default:
		main = renderCanvas(m.tree, m.camera(), m.canvasW, m.bodyH, m.theme)
	}
	main = r.NewStyle().Width(m.canvasW).Height(m.bodyH).MaxHeight(m.bodyH).Render(main)

	if !m.isSplitView {
		return main
	}
	side := panel.Width(m.width - m.canvasW - 2).Height(m.bodyH - 2).Render(m.viewport.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, main, side)
}

func (m Model) renderFooter() string {
	r := m.theme.Renderer

	mode := "TREE"
	switch m.focused {
	case focusOutline:
		mode = "OUTLINE"
	case focusPrompt:
		mode = "PROMPT"
	}
	modeSection := r.NewStyle().Bold(true).Foreground(m.theme.BarBg).Background(m.theme.Primary).Padding(0, 1).Render(mode)

	stats := " no tree "
	if m.tree != nil {
		stats = fmt.Sprintf(" %s nodes · %s visible · depth %d ",
			humanize.Comma(int64(m.tree.Len())), humanize.Comma(int64(m.tree.VisibleCount())), m.depth)
		if m.source != "" {
			stats = " " + truncateLabel(m.source, 30) + " ·" + stats
		}
	}
	statsSection := r.NewStyle().Background(m.theme.BarBg).Foreground(m.theme.Text).Render(stats)

	statusStyle := r.NewStyle().Foreground(m.theme.Subtext).Padding(0, 1)
	if m.statusErr {
		statusStyle = statusStyle.Foreground(m.theme.Error)
	}
	statusSection := statusStyle.Render(truncateLabel(m.status, max(10, m.width/3)))

	keysSection := r.NewStyle().Padding(0, 1).Render(m.help.ShortHelpView(m.keys.ShortHelp()))

	leftWidth := lipgloss.Width(modeSection) + lipgloss.Width(statsSection) + lipgloss.Width(statusSection)
	remaining := m.width - leftWidth - lipgloss.Width(keysSection)
	if remaining < 0 {
		keysSection = ""
		remaining = max(0, m.width-leftWidth)
	}
	filler := r.NewStyle().Width(remaining).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, modeSection, statsSection, statusSection, filler, keysSection)
}
