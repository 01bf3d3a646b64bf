package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/appshelf/internal/async"
	"github.com/Aman-CERP/appshelf/internal/backend"
	"github.com/Aman-CERP/appshelf/internal/catalog"
	"github.com/Aman-CERP/appshelf/internal/output"
	"github.com/Aman-CERP/appshelf/internal/search"
)

// Poster accepts catalog events. *catalog.App implements it.
type Poster interface {
	Post(ev catalog.Event) bool
}

// BrowserOptions configures a Browser.
type BrowserOptions struct {
	Locale   string
	Progress *async.LoadProgress
	// QueueSize bounds events waiting to be posted (default 256).
	QueueSize int
}

// Browser is the interactive catalog view. Catalog notifications go in
// through Emit; user actions come out as catalog events, posted in order by
// a forwarding goroutine so the UI never blocks on the catalog inbox.
type Browser struct {
	cfg     Config
	model   *browserModel
	program *tea.Program
	queue   chan catalog.Event
}

// NewBrowser creates a browser. Call Bind before Run.
func NewBrowser(cfg Config, opts BrowserOptions) *Browser {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Progress == nil {
		opts.Progress = async.NewLoadProgress()
	}

	b := &Browser{cfg: cfg, queue: make(chan catalog.Event, opts.QueueSize)}
	b.model = newBrowserModel(opts.Locale, opts.Progress, b.enqueue)
	if cfg.NoColor {
		b.model.styles = NoColorStyles()
	}

	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.Input != nil {
		progOpts = append(progOpts, tea.WithInput(cfg.Input))
	}
	if cfg.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(cfg.Output))
	}
	b.program = tea.NewProgram(b.model, progOpts...)
	return b
}

// Emit forwards a catalog notification to the view. It is meant to be used
// as catalog.Options.Emit.
func (b *Browser) Emit(n catalog.Notification) {
	b.program.Send(notificationMsg{n})
}

// Run forwards events to p and shows the browser until the user quits or ctx
// is cancelled.
func (b *Browser) Run(ctx context.Context, p Poster) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		b.program.Quit()
	}()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-b.queue:
				if !p.Post(ev) {
					return
				}
			}
		}
	}()

	_, err := b.program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("browser: %w", err)
	}
	return nil
}

func (b *Browser) enqueue(ev catalog.Event) {
	select {
	case b.queue <- ev:
	default:
		slog.Warn("browser event queue full, dropping event", slog.String("event", fmt.Sprintf("%T", ev)))
	}
}

type notificationMsg struct {
	catalog.Notification
}

type focus int

const (
	focusSearch focus = iota
	focusList
)

// browserModel is the bubbletea model. It mirrors catalog state from
// notifications and never changes it directly.
type browserModel struct {
	locale   string
	progress *async.LoadProgress
	post     func(catalog.Event)

	backends  []string
	installed []backend.InstalledPackage
	results   []search.Result
	query     string
	selected  *catalog.Selected

	focus   focus
	cursor  int
	input   textinput.Model
	spinner spinner.Model
	detail  viewport.Model
	styles  Styles
	width   int
	height  int
}

func newBrowserModel(locale string, progress *async.LoadProgress, post func(catalog.Event)) *browserModel {
	in := textinput.New()
	in.Placeholder = "Search applications"
	in.Prompt = "/ "
	in.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime))

	m := &browserModel{
		locale:   locale,
		progress: progress,
		post:     post,
		input:    in,
		spinner:  s,
		detail:   viewport.New(40, 16),
		styles:   DefaultStyles(),
		width:    80,
		height:   24,
	}
	return m
}

// Init implements tea.Model.
func (m *browserModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update implements tea.Model.
func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.onKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()

	case notificationMsg:
		m.onNotification(msg.Notification)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *browserModel) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.clear()
		return m, nil
	case "tab":
		m.toggleFocus()
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}

	if m.focus == focusSearch {
		switch msg.String() {
		case "enter":
			m.post(catalog.SearchSubmit{})
			return m, nil
		case "down":
			m.toggleFocus()
			return m, nil
		}
		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if after := m.input.Value(); after != before {
			m.post(catalog.SearchInput{Text: after})
		}
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.toggleFocus()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.rows()-1 {
			m.cursor++
		}
	case "enter":
		m.selectCursor()
	}
	return m, nil
}

func (m *browserModel) onNotification(n catalog.Notification) {
	switch n := n.(type) {
	case catalog.BackendsReady:
		m.backends = n.Names
	case catalog.InstalledReady:
		m.installed = n.Packages
		if m.results == nil {
			m.clampCursor()
		}
	case catalog.SearchReady:
		m.results = n.Results
		m.query = n.Query
		m.cursor = 0
	case catalog.SearchCleared:
		m.results = nil
		m.query = ""
		m.input.SetValue("")
		m.cursor = 0
	case catalog.SelectionReady:
		sel := n.Selected
		m.selected = &sel
		m.detail.SetContent(m.renderSelected())
		m.detail.GotoTop()
	case catalog.SelectionCleared:
		m.selected = nil
		m.detail.SetContent("")
	}
}

// clear drops the search first, then the selection.
func (m *browserModel) clear() {
	if m.input.Value() != "" || m.results != nil {
		m.input.SetValue("")
		m.post(catalog.SearchClear{})
		return
	}
	if m.selected != nil {
		m.post(catalog.SelectNone{})
	}
}

func (m *browserModel) toggleFocus() {
	if m.focus == focusSearch {
		m.focus = focusList
		m.input.Blur()
		return
	}
	m.focus = focusSearch
	m.input.Focus()
}

func (m *browserModel) selectCursor() {
	if m.rows() == 0 {
		return
	}
	if m.results != nil {
		m.post(catalog.SelectSearchResult{Index: m.cursor})
		return
	}
	m.post(catalog.SelectInstalled{Index: m.cursor})
}

// rows is the length of the visible list: results while a search is shown,
// the installed list otherwise.
func (m *browserModel) rows() int {
	if m.results != nil {
		return len(m.results)
	}
	return len(m.installed)
}

func (m *browserModel) clampCursor() {
	if m.cursor >= m.rows() {
		m.cursor = max(0, m.rows()-1)
	}
}

func (m *browserModel) layout() {
	m.detail.Width = max(20, m.width-m.listWidth()-6)
	m.detail.Height = m.listHeight()
	if m.selected != nil {
		m.detail.SetContent(m.renderSelected())
	}
}

func (m *browserModel) listWidth() int {
	return max(24, m.width/2-4)
}

func (m *browserModel) listHeight() int {
	return max(5, m.height-8)
}

// View implements tea.Model.
func (m *browserModel) View() string {
	header := m.styles.Header.Render("AppShelf") + "  " + m.renderStatus()

	list := m.styles.Panel
	detail := m.styles.Panel
	if m.focus == focusList {
		list = m.styles.PanelFocus
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		list.Width(m.listWidth()).Render(m.renderList()),
		detail.Width(m.detail.Width).Render(m.renderDetail()),
	)

	help := m.styles.Dim.Render("tab switch focus • enter search/select • esc clear • q quit")
	return strings.Join([]string{header, m.input.View(), body, help}, "\n")
}

func (m *browserModel) renderStatus() string {
	if m.progress.IsLoading() {
		stage := m.progress.Snapshot().Stage
		return m.spinner.View() + " " + m.styles.Label.Render("Loading "+stage+"...")
	}
	if len(m.backends) == 0 {
		return m.styles.Warning.Render("no backends")
	}
	return m.styles.Label.Render(fmt.Sprintf("%d installed • %s", len(m.installed), strings.Join(m.backends, ", ")))
}

func (m *browserModel) renderList() string {
	var title string
	var names []string
	switch {
	case m.results != nil:
		title = fmt.Sprintf("Results for %q (%d)", m.query, len(m.results))
		for _, r := range m.results {
			names = append(names, r.Name)
		}
	default:
		title = fmt.Sprintf("Installed (%d)", len(m.installed))
		for _, p := range m.installed {
			names = append(names, p.Name+" "+m.styles.Dim.Render(p.Backend))
		}
	}

	lines := []string{m.styles.Label.Render(title)}
	if len(names) == 0 {
		lines = append(lines, m.styles.Dim.Render("nothing to show"))
		return strings.Join(lines, "\n")
	}

	height := m.listHeight() - 1
	start := max(0, m.cursor-height+1)
	end := min(len(names), start+height)
	for i := start; i < end; i++ {
		if i == m.cursor {
			lines = append(lines, m.styles.Cursor.Render("> "+names[i]))
		} else {
			lines = append(lines, "  "+names[i])
		}
	}
	return strings.Join(lines, "\n")
}

func (m *browserModel) renderDetail() string {
	if m.selected == nil {
		return m.styles.Dim.Render("Select an application to see its details.")
	}
	return m.detail.View()
}

func (m *browserModel) renderSelected() string {
	var sb strings.Builder
	output.New(&sb).Selected(*m.selected, m.locale)
	return lipgloss.NewStyle().Width(m.detail.Width).Render(sb.String())
}
