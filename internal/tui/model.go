package tui

import (
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/evanschultz/tasklist/internal/app"
	"github.com/evanschultz/tasklist/internal/domain"
)

// palette shared by every view.
var (
	accentColor = lipgloss.Color("62")
	mutedColor  = lipgloss.Color("241")
	dimColor    = lipgloss.Color("239")
)

// ConfigReloadedMsg carries runtime settings loaded from disk, either on
// request or after the config file changed.
type ConfigReloadedMsg struct {
	Config RuntimeConfig
	Err    error
}

// clipboardMsg reports the outcome of a yank.
type clipboardMsg struct {
	name string
	err  error
}

// Model is the root bubbletea model. It owns the container, mounts the three
// components and routes their signals into the container.
type Model struct {
	container *app.Container

	filterEvents app.FilterEvents
	listEvents   app.ListEvents
	modalEvents  app.ModalEvents
	disconnect   func()

	filters *filterPanel
	list    *taskList
	modal   *taskModal

	showFilters    bool
	filtersFocused bool

	help   help.Model
	keys   keyMap
	status string

	ready  bool
	width  int
	height int

	runtime       RuntimeConfig
	markdownStyle string
	now           func() time.Time
	clipboard     ClipboardFunc
	reloadConfig  ReloadConfigFunc
}

// NewModel builds the root model around container.
func NewModel(container *app.Container, opts ...Option) Model {
	if container == nil {
		container = app.NewContainer(app.SeedTasks(), app.ContainerConfig{})
	}
	h := help.New()
	h.ShowAll = false
	m := Model{
		container:    container,
		filterEvents: app.NewFilterEvents(),
		listEvents:   app.NewListEvents(),
		modalEvents:  app.NewModalEvents(),
		help:         h,
		keys:         newKeyMap(),
		status:       "ready",
		runtime:      DefaultRuntimeConfig(),
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}

	m.filters = newFilterPanel(m.filterEvents, container.Labels())
	m.list = newTaskList(m.listEvents, container.Badges(), container.Labels())
	m.list.renderer.style = m.markdownStyle
	m.modal = newTaskModal(m.modalEvents, container.Labels(), m.now)
	m.disconnect = container.Connect(m.filterEvents, m.listEvents, m.modalEvents)

	m.applyRuntimeConfig(m.runtime)
	m.sync()
	return m
}

// Close releases the container subscriptions and the filter panel's draft subscription.
func (m Model) Close() {
	if m.filters != nil {
		m.filters.destroy()
	}
	if m.disconnect != nil {
		m.disconnect()
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(max(0, m.width-2))
		m.filters.setWidth(m.width)
		m.modal.setWidth(m.modalWidth())
		return m, nil

	case ConfigReloadedMsg:
		if msg.Err != nil {
			m.status = "reload config failed: " + msg.Err.Error()
			return m, nil
		}
		m.applyRuntimeConfig(msg.Config)
		m.status = "config reloaded"
		return m, m.sync()

	case clipboardMsg:
		if msg.err != nil {
			m.status = "copy failed: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("copied %q", msg.name)
		return m, nil

	case tea.KeyPressMsg:
		var cmd tea.Cmd
		switch {
		case m.container.ModalOpen():
			before := len(m.container.Tasks())
			cmd = m.modal.update(msg)
			if !m.container.ModalOpen() {
				m.status = "task creation cancelled"
				if len(m.container.Tasks()) > before {
					m.status = "task created"
				}
			}
		case m.help.ShowAll:
			m.handleHelpKey(msg)
		case m.filtersFocused:
			var done bool
			cmd, done = m.filters.update(msg)
			if done {
				m.filtersFocused = false
				m.status = "ready"
			}
		default:
			var quit bool
			cmd, quit = m.handleListKey(msg)
			if quit {
				return m, tea.Quit
			}
		}
		return m, tea.Batch(cmd, m.sync())

	case tea.MouseClickMsg:
		if m.container.ModalOpen() && msg.Button == tea.MouseLeft && m.onBackdrop(msg.X, msg.Y) {
			m.modal.cancel()
			m.status = "task creation cancelled"
			return m, m.sync()
		}
		return m, nil

	default:
		return m, nil
	}
}

func (m *Model) handleHelpKey(msg tea.KeyPressMsg) {
	if key.Matches(msg, m.keys.toggleHelp) || msg.String() == "esc" {
		m.help.ShowAll = false
		m.status = "ready"
	}
}

// handleListKey runs list-mode bindings. quit reports a quit request.
func (m *Model) handleListKey(msg tea.KeyPressMsg) (cmd tea.Cmd, quit bool) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return nil, true
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = true
		m.status = "help"
	case key.Matches(msg, m.keys.moveUp):
		m.list.move(-1)
	case key.Matches(msg, m.keys.moveDown):
		m.list.move(1)
	case key.Matches(msg, m.keys.toggleCompleted):
		if !m.list.toggleCompleted() {
			m.status = "no task selected"
		}
	case key.Matches(msg, m.keys.toggleDescription):
		if !m.list.toggleDescription() {
			m.status = "no task selected"
		}
	case key.Matches(msg, m.keys.newTask):
		m.container.OpenAddModal()
		m.status = "new task"
	case key.Matches(msg, m.keys.focusFilters):
		m.setFiltersVisible(true)
		m.filtersFocused = true
		m.status = "filters"
		return m.filters.focus(), false
	case key.Matches(msg, m.keys.clearFilters):
		m.filters.clear()
		m.status = "filters cleared"
	case key.Matches(msg, m.keys.toggleFilters):
		m.setFiltersVisible(!m.showFilters)
	case key.Matches(msg, m.keys.yank):
		return m.yankSelected(), false
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading config..."
		return m.reloadRuntimeConfigCmd(), false
	}
	return nil, false
}

// setFiltersVisible mounts the panel on show and destroys it on hide.
func (m *Model) setFiltersVisible(visible bool) {
	if visible == m.showFilters {
		return
	}
	m.showFilters = visible
	if visible {
		m.filters.mount()
		return
	}
	m.filters.destroy()
	m.filtersFocused = false
}

// sync pushes container state down into the components. Filters are
// mirrored quietly and the modal receives the open flag.
func (m *Model) sync() tea.Cmd {
	m.filters.setFilters(m.container.Filters())
	m.list.setTasks(m.container.VisibleTasks())
	return m.modal.setOpen(m.container.ModalOpen())
}

func (m *Model) applyRuntimeConfig(cfg RuntimeConfig) {
	WithRuntimeConfig(cfg)(m)
	m.container.SetLookupTables(cfg.Labels, cfg.Badges)
	labels := m.container.Labels()
	m.filters.setLabels(labels)
	m.list.setTables(m.container.Badges(), labels)
	m.list.setMarkdown(cfg.MarkdownDescriptions)
	m.modal.setLabels(labels)
	m.keys = newKeyMap()
	m.keys.applyConfig(cfg.Keys)
	m.setFiltersVisible(cfg.ShowFilters)
}

// reloadRuntimeConfigCmd reloads runtime settings through the configured callback.
func (m Model) reloadRuntimeConfigCmd() tea.Cmd {
	if m.reloadConfig == nil {
		return func() tea.Msg {
			return ConfigReloadedMsg{Err: fmt.Errorf("config reload callback is unavailable")}
		}
	}
	reload := m.reloadConfig
	return func() tea.Msg {
		cfg, err := reload()
		if err != nil {
			return ConfigReloadedMsg{Err: err}
		}
		return ConfigReloadedMsg{Config: cfg}
	}
}

// yankSelected copies the selected task off the update loop.
func (m *Model) yankSelected() tea.Cmd {
	task, ok := m.list.selectedTask()
	if !ok {
		m.status = "no task selected"
		return nil
	}
	if m.clipboard == nil {
		m.status = "clipboard unavailable"
		return nil
	}
	text := taskClipboardText(*task)
	name := task.Name
	write := m.clipboard
	return func() tea.Msg {
		return clipboardMsg{name: name, err: write(text)}
	}
}

// taskClipboardText formats a task as a markdown checklist item.
func taskClipboardText(task domain.Task) string {
	check := " "
	if task.Status == domain.StatusCompleted {
		check = "x"
	}
	text := fmt.Sprintf("- [%s] %s (%s, %s)", check, task.Name, task.Date, task.Status)
	if desc := strings.TrimSpace(task.Description); desc != "" {
		text += "\n\n" + desc
	}
	return text
}

func (m Model) modalWidth() int {
	return clamp(m.width-8, 40, 80)
}

// onBackdrop reports whether a click at (x, y) lands outside the centred modal box.
func (m Model) onBackdrop(x, y int) bool {
	box := m.modal.view(m.modalWidth(), accentColor, mutedColor, dimColor)
	w, h := lipgloss.Width(box), lipgloss.Height(box)
	if m.width <= 0 || m.height <= 0 {
		return false
	}
	left := max(0, (m.width-w)/2)
	top := max(0, (m.height-h)/2)
	return x < left || x >= left+w || y < top || y >= top+h
}

func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// render builds the full frame as a string.
func (m Model) render() string {
	if !m.ready {
		return "loading..."
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dimColor)

	visible := m.container.VisibleTasks()
	total := len(m.container.Tasks())
	header := titleStyle.Render("tasklist") + statusStyle.Render(fmt.Sprintf("  %d of %d tasks", len(visible), total))
	if f := m.container.Filters(); !f.IsZero() {
		header += statusStyle.Render("  filtered: " + describeFilters(f, m.container.Labels()))
	}

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(mutedColor).
		BorderTop(true).
		BorderForeground(dimColor).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	sections := []string{header, ""}
	if m.showFilters {
		sections = append(sections, m.filters.view(m.width, accentColor, mutedColor, dimColor))
	}
	statusLine := ""
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		statusLine = statusStyle.Render(m.status)
	}

	used := lipgloss.Height(strings.Join(sections, "\n")) + lipgloss.Height(helpLine)
	if statusLine != "" {
		used++
	}
	listHeight := 0
	if m.height > 0 {
		listHeight = max(1, m.height-used)
	}
	sections = append(sections, m.list.view(m.width, listHeight, mutedColor, dimColor))
	if statusLine != "" {
		sections = append(sections, statusLine)
	}
	content := strings.Join(sections, "\n")
	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	fullContent := content + "\n" + helpLine

	overlay := ""
	switch {
	case m.container.ModalOpen():
		overlay = m.modal.view(m.modalWidth(), accentColor, mutedColor, dimColor)
	case m.help.ShowAll:
		overlay = m.renderHelpOverlay(m.width - 8)
	}
	if overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}
	return fullContent
}

// describeFilters summarizes active criteria for the header.
func describeFilters(f domain.Filters, labels app.StatusLabels) string {
	f = f.Normalize()
	parts := make([]string, 0, 3)
	if f.Name != "" {
		parts = append(parts, fmt.Sprintf("name~%q", f.Name))
	}
	if f.Date != "" {
		parts = append(parts, "date="+f.Date)
	}
	if f.Status != domain.StatusAll {
		parts = append(parts, "status="+labels.Label(f.Status))
	}
	return strings.Join(parts, " ")
}

func (m Model) renderHelpOverlay(maxWidth int) string {
	width := clamp(maxWidth, 48, 90)
	hb := m.help
	hb.ShowAll = true
	hb.SetWidth(width - 4)

	title := lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("tasklist help")
	workflow := []string{
		lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Workflows"),
		"1. n new task  •  tab moves between fields  •  enter or ctrl+s creates",
		"2. / edit filters  •  ←/→ cycles status  •  esc returns to the list",
		"3. " + m.keys.clearFilters.Help().Key + " clears every filter  •  " + m.keys.toggleFilters.Help().Key + " hides the panel",
		"4. click outside the form or press esc to cancel it",
	}
	lines := []string{
		title,
		"",
		hb.View(m.keys),
		"",
		lipgloss.NewStyle().Foreground(mutedColor).Render(strings.Join(workflow, "\n")),
		lipgloss.NewStyle().Foreground(mutedColor).Render("press ? or esc to close"),
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(0, 1).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

func wrapIndex(current int, delta int, total int) int {
	if total <= 0 {
		return 0
	}
	next := current + delta
	for next < 0 {
		next += total
	}
	for next >= total {
		next -= total
	}
	return next
}

func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines pads or truncates content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centres overlay above base on a lipgloss canvas, leaving
// the base visible around it.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	x := max(0, (width-lipgloss.Width(overlay))/2)
	y := max(0, (height-lipgloss.Height(overlay))/2)
	overlayLayer := lipgloss.NewLayer(overlay).X(x).Y(y).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate shortens s to limit display cells with a trailing ellipsis.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	return ansi.Truncate(s, limit, "…")
}
