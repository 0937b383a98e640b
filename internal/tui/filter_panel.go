package tui

import (
	"image/color"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/evanschultz/tasklist/internal/app"
	"github.com/evanschultz/tasklist/internal/domain"
)

// filter-panel field indexes in focus order.
const (
	filterFieldName = iota
	filterFieldDate
	filterFieldStatus
	filterFieldCount
)

// filterPanel edits a local draft of the filter criteria and publishes it upward.
type filterPanel struct {
	events app.FilterEvents

	draftChanged *app.Signal[domain.Filters]
	unsubscribe  func()
	syncing      bool

	nameInput textinput.Model
	dateInput textinput.Model
	options   []domain.StatusFilter
	statusIdx int
	labels    app.StatusLabels

	focused bool
	field   int
}

func newFilterPanel(events app.FilterEvents, labels app.StatusLabels) *filterPanel {
	return &filterPanel{
		events:       events,
		draftChanged: app.NewSignal[domain.Filters](),
		nameInput:    newModalInput("", "name contains", "", domain.MaxNameLength),
		dateInput:    newModalInput("", "YYYY-MM-DD", "", len(domain.DateLayout)),
		options:      domain.StatusFilters(),
		labels:       labels.Clone(),
	}
}

// mount starts forwarding draft edits as FiltersChanged. Repeated calls keep one subscription.
func (p *filterPanel) mount() {
	if p.unsubscribe != nil {
		return
	}
	p.unsubscribe = p.draftChanged.Subscribe(func(draft domain.Filters) {
		p.events.FiltersChanged.Emit(draft.Normalize())
	})
}

// destroy releases the draft subscription.
func (p *filterPanel) destroy() {
	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
	p.blur()
}

func (p *filterPanel) mounted() bool {
	return p.unsubscribe != nil
}

// draft returns the raw, unnormalized panel state.
func (p *filterPanel) draft() domain.Filters {
	return domain.Filters{
		Name:   p.nameInput.Value(),
		Date:   p.dateInput.Value(),
		Status: p.options[clamp(p.statusIdx, 0, len(p.options)-1)],
	}
}

// editDraft applies edit and publishes the draft when it changed. Edits made
// while syncing are never published.
func (p *filterPanel) editDraft(edit func()) {
	before := p.draft()
	edit()
	if p.syncing || p.draft() == before {
		return
	}
	p.draftChanged.Emit(p.draft())
}

// setFilters mirrors the container criteria into the draft without publishing.
// A draft that already normalizes to f is left alone so in-progress typing
// such as a trailing space survives the round trip.
func (p *filterPanel) setFilters(f domain.Filters) {
	f = f.Normalize()
	if p.draft().Normalize() == f {
		return
	}
	p.syncing = true
	defer func() { p.syncing = false }()

	p.editDraft(func() {
		p.nameInput.SetValue(f.Name)
		p.nameInput.CursorEnd()
		p.dateInput.SetValue(f.Date)
		p.dateInput.CursorEnd()
		p.statusIdx = 0
		for idx, opt := range p.options {
			if opt == f.Status {
				p.statusIdx = idx
				break
			}
		}
	})
}

// clear resets the draft quietly, then reports the cleared criteria and the clear request.
func (p *filterPanel) clear() {
	cleared := domain.DefaultFilters()
	p.setFilters(cleared)
	p.events.FiltersChanged.Emit(cleared)
	p.events.ClearRequested.Emit(struct{}{})
}

func (p *filterPanel) setLabels(labels app.StatusLabels) {
	p.labels = labels.Clone()
}

func (p *filterPanel) focus() tea.Cmd {
	p.focused = true
	return p.focusField(filterFieldName)
}

func (p *filterPanel) blur() {
	p.focused = false
	p.nameInput.Blur()
	p.dateInput.Blur()
}

func (p *filterPanel) focusField(idx int) tea.Cmd {
	p.field = wrapIndex(idx, 0, filterFieldCount)
	p.nameInput.Blur()
	p.dateInput.Blur()
	switch p.field {
	case filterFieldName:
		return p.nameInput.Focus()
	case filterFieldDate:
		return p.dateInput.Focus()
	}
	return nil
}

// cycleStatus moves the status selection and publishes the draft.
func (p *filterPanel) cycleStatus(delta int) {
	p.editDraft(func() {
		p.statusIdx = wrapIndex(p.statusIdx, delta, len(p.options))
	})
}

// update handles keys while the panel has focus. done reports that focus
// should return to the list.
func (p *filterPanel) update(msg tea.KeyPressMsg) (cmd tea.Cmd, done bool) {
	switch msg.String() {
	case "esc", "enter":
		p.blur()
		return nil, true
	case "tab", "down":
		return p.focusField(p.field + 1), false
	case "shift+tab", "up":
		return p.focusField(p.field - 1), false
	case "ctrl+r":
		p.clear()
		return nil, false
	}

	if p.field == filterFieldStatus {
		switch msg.String() {
		case "left", "h":
			p.cycleStatus(-1)
		case "right", "l", "space":
			p.cycleStatus(1)
		}
		return nil, false
	}

	p.editDraft(func() {
		if p.field == filterFieldName {
			p.nameInput, cmd = p.nameInput.Update(msg)
		} else {
			p.dateInput, cmd = p.dateInput.Update(msg)
		}
	})
	return cmd, false
}

func (p *filterPanel) setWidth(width int) {
	p.nameInput.SetWidth(max(8, width-16))
	p.dateInput.SetWidth(len(domain.DateLayout) + 1)
}

func (p *filterPanel) view(width int, accent, muted, dim color.Color) string {
	accentStyle := lipgloss.NewStyle().Foreground(accent)
	mutedStyle := lipgloss.NewStyle().Foreground(muted)

	label := func(idx int, text string) string {
		if p.focused && p.field == idx {
			return accentStyle.Render("› " + text)
		}
		return mutedStyle.Render("  " + text)
	}
	statuses := make([]string, 0, len(p.options))
	for idx, opt := range p.options {
		text := p.labels.Label(opt)
		if idx == p.statusIdx {
			statuses = append(statuses, accentStyle.Bold(true).Render("["+text+"]"))
			continue
		}
		statuses = append(statuses, mutedStyle.Render(" "+text+" "))
	}

	lines := []string{
		label(filterFieldName, "name:   ") + p.nameInput.View(),
		label(filterFieldDate, "date:   ") + p.dateInput.View(),
		label(filterFieldStatus, "status: ") + strings.Join(statuses, " "),
	}
	if p.focused {
		lines = append(lines, lipgloss.NewStyle().Foreground(dim).Render("tab next field • ←/→ status • ctrl+r clear • esc done"))
	}

	border := dim
	if p.focused {
		border = accent
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(max(0, width)).
		Render(strings.Join(lines, "\n"))
}
