package tui

import (
	"errors"
	"image/color"
	"strings"
	"time"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/evanschultz/tasklist/internal/app"
	"github.com/evanschultz/tasklist/internal/domain"
)

// task-modal field indexes in focus order.
const (
	modalFieldName = iota
	modalFieldDate
	modalFieldStatus
	modalFieldDescription
	modalFieldCount
)

// fieldState tracks interaction with one form control.
type fieldState struct {
	touched bool
	dirty   bool
}

// taskModal owns the creation form. It reports Created or Cancelled and
// never touches the task collection.
type taskModal struct {
	events app.ModalEvents
	now    func() time.Time

	open     bool
	labels   app.StatusLabels
	statuses []domain.Status

	nameInput textinput.Model
	dateInput textinput.Model
	statusIdx int
	descInput textarea.Model

	field  int
	fields [modalFieldCount]fieldState
}

func newTaskModal(events app.ModalEvents, labels app.StatusLabels, now func() time.Time) *taskModal {
	if now == nil {
		now = time.Now
	}
	desc := textarea.New()
	desc.ShowLineNumbers = false
	desc.Placeholder = "optional, markdown supported"
	desc.CharLimit = 2000
	desc.SetHeight(4)
	m := &taskModal{
		events:    events,
		now:       now,
		labels:    labels.Clone(),
		statuses:  domain.Statuses(),
		nameInput: newModalInput("", "what needs doing", "", 0),
		dateInput: newModalInput("", "YYYY-MM-DD", "", len(domain.DateLayout)),
		descInput: desc,
	}
	m.reset()
	return m
}

// setOpen applies the container's modal flag. Only a closed-to-open
// transition resets the form.
func (m *taskModal) setOpen(open bool) tea.Cmd {
	if open == m.open {
		return nil
	}
	m.open = open
	if !open {
		m.blurAll()
		return nil
	}
	m.reset()
	return m.focusField(modalFieldName)
}

func (m *taskModal) setLabels(labels app.StatusLabels) {
	m.labels = labels.Clone()
}

func (m *taskModal) reset() {
	m.nameInput.Reset()
	m.dateInput.Reset()
	m.descInput.Reset()
	m.statusIdx = 0
	for idx, status := range m.statuses {
		if status == domain.StatusPlanned {
			m.statusIdx = idx
			break
		}
	}
	m.fields = [modalFieldCount]fieldState{}
	m.field = modalFieldName
	m.blurAll()
}

func (m *taskModal) blurAll() {
	m.nameInput.Blur()
	m.dateInput.Blur()
	m.descInput.Blur()
}

// focusField moves focus to idx. Leaving a field marks it touched.
func (m *taskModal) focusField(idx int) tea.Cmd {
	next := wrapIndex(idx, 0, modalFieldCount)
	if m.focusedInput() && next != m.field {
		m.fields[m.field].touched = true
	}
	m.field = next
	m.blurAll()
	switch m.field {
	case modalFieldName:
		return m.nameInput.Focus()
	case modalFieldDate:
		return m.dateInput.Focus()
	case modalFieldDescription:
		return m.descInput.Focus()
	}
	return nil
}

// focusedInput reports whether the current field has received focus since the last reset.
func (m *taskModal) focusedInput() bool {
	switch m.field {
	case modalFieldName:
		return m.nameInput.Focused()
	case modalFieldDate:
		return m.dateInput.Focused()
	case modalFieldDescription:
		return m.descInput.Focused()
	}
	return true
}

func (m *taskModal) nameError() error {
	return domain.ValidateName(m.nameInput.Value())
}

func (m *taskModal) dateError() error {
	return domain.ValidateDate(m.dateInput.Value(), m.now())
}

func (m *taskModal) valid() bool {
	return m.nameError() == nil && m.dateError() == nil
}

// controlInvalid reports whether field should show its error.
func (m *taskModal) controlInvalid(field int) bool {
	state := m.fields[field]
	if !state.touched && !state.dirty {
		return false
	}
	switch field {
	case modalFieldName:
		return m.nameError() != nil
	case modalFieldDate:
		return m.dateError() != nil
	}
	return false
}

func (m *taskModal) markAllTouched() {
	for idx := range m.fields {
		m.fields[idx].touched = true
	}
}

// submit emits Created for a valid form. An invalid form only marks every field touched.
func (m *taskModal) submit() bool {
	if !m.valid() {
		m.markAllTouched()
		return false
	}
	task, err := domain.NewTask(domain.TaskInput{
		Name:        m.nameInput.Value(),
		Status:      m.statuses[m.statusIdx],
		Date:        m.dateInput.Value(),
		Description: m.descInput.Value(),
	}, m.now())
	if err != nil {
		m.markAllTouched()
		return false
	}
	m.events.Created.Emit(task)
	return true
}

func (m *taskModal) cancel() {
	m.events.Cancelled.Emit(struct{}{})
}

func (m *taskModal) cycleStatus(delta int) {
	m.statusIdx = wrapIndex(m.statusIdx, delta, len(m.statuses))
	m.fields[modalFieldStatus].dirty = true
}

func (m *taskModal) update(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.cancel()
		return nil
	case "ctrl+s":
		m.submit()
		return nil
	case "tab":
		return m.focusField(m.field + 1)
	case "shift+tab":
		return m.focusField(m.field - 1)
	case "enter":
		if m.field != modalFieldDescription {
			m.submit()
			return nil
		}
	}

	var cmd tea.Cmd
	switch m.field {
	case modalFieldName:
		before := m.nameInput.Value()
		m.nameInput, cmd = m.nameInput.Update(msg)
		if m.nameInput.Value() != before {
			m.fields[modalFieldName].dirty = true
		}
	case modalFieldDate:
		before := m.dateInput.Value()
		m.dateInput, cmd = m.dateInput.Update(msg)
		if m.dateInput.Value() != before {
			m.fields[modalFieldDate].dirty = true
		}
	case modalFieldStatus:
		switch msg.String() {
		case "left", "h":
			m.cycleStatus(-1)
		case "right", "l", "space":
			m.cycleStatus(1)
		}
	case modalFieldDescription:
		before := m.descInput.Value()
		m.descInput, cmd = m.descInput.Update(msg)
		if m.descInput.Value() != before {
			m.fields[modalFieldDescription].dirty = true
		}
	}
	return cmd
}

func (m *taskModal) setWidth(width int) {
	inner := max(20, width-16)
	m.nameInput.SetWidth(inner)
	m.dateInput.SetWidth(len(domain.DateLayout) + 1)
	m.descInput.SetWidth(inner)
}

// errorText maps validation failures to inline messages.
func errorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidName):
		return "Name is required."
	case errors.Is(err, domain.ErrNameTooLong):
		return "Name must be at most 120 characters."
	case errors.Is(err, domain.ErrDateRequired):
		return "Date is required."
	case errors.Is(err, domain.ErrDateInPast):
		return "Date cannot be in the past."
	case err != nil:
		return err.Error()
	}
	return ""
}

func (m *taskModal) view(width int, accent, muted, dim color.Color) string {
	accentStyle := lipgloss.NewStyle().Foreground(accent)
	mutedStyle := lipgloss.NewStyle().Foreground(muted)
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	label := func(idx int, text string) string {
		if m.field == idx {
			return accentStyle.Render("› " + text)
		}
		return mutedStyle.Render("  " + text)
	}
	statuses := make([]string, 0, len(m.statuses))
	for idx, status := range m.statuses {
		text := m.labels.Label(domain.StatusFilter(status))
		if idx == m.statusIdx {
			statuses = append(statuses, accentStyle.Bold(true).Render("["+text+"]"))
			continue
		}
		statuses = append(statuses, mutedStyle.Render(" "+text+" "))
	}

	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(accent).Render("New task"),
		"",
		label(modalFieldName, "name:        ") + m.nameInput.View(),
	}
	if m.controlInvalid(modalFieldName) {
		lines = append(lines, errorStyle.Render("  "+errorText(m.nameError())))
	}
	lines = append(lines, label(modalFieldDate, "date:        ")+m.dateInput.View())
	if m.controlInvalid(modalFieldDate) {
		lines = append(lines, errorStyle.Render("  "+errorText(m.dateError())))
	}
	lines = append(lines,
		label(modalFieldStatus, "status:      ")+strings.Join(statuses, " "),
		label(modalFieldDescription, "description:"),
		m.descInput.View(),
		"",
		lipgloss.NewStyle().Foreground(dim).Render("tab next field • enter/ctrl+s create • esc cancel"),
	)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(clamp(width, 40, 80)).
		Render(strings.Join(lines, "\n"))
}
