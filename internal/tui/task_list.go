package tui

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/evanschultz/tasklist/internal/app"
	"github.com/evanschultz/tasklist/internal/domain"
)

// renderedDescription caches one expanded description body.
type renderedDescription struct {
	source string
	width  int
	text   string
}

// taskList renders the visible tasks and reports toggle requests. It never
// mutates the tasks it is given.
type taskList struct {
	events app.ListEvents

	tasks    []*domain.Task
	badges   app.BadgeClasses
	labels   app.StatusLabels
	cursor   int
	selected *domain.Task

	markdown     bool
	renderer     markdownRenderer
	descriptions map[string]renderedDescription
}

func newTaskList(events app.ListEvents, badges app.BadgeClasses, labels app.StatusLabels) *taskList {
	return &taskList{
		events:       events,
		badges:       badges.Clone(),
		labels:       labels.Clone(),
		markdown:     true,
		descriptions: map[string]renderedDescription{},
	}
}

// setTasks replaces the rendered set and keeps the cursor on the same task when it is still visible.
func (l *taskList) setTasks(tasks []*domain.Task) {
	l.tasks = tasks
	if l.selected != nil {
		for idx, task := range tasks {
			if task == l.selected {
				l.cursor = idx
				return
			}
		}
	}
	l.cursor = clamp(l.cursor, 0, len(tasks)-1)
	l.selected = nil
	if len(tasks) > 0 {
		l.selected = tasks[l.cursor]
	}
}

func (l *taskList) setTables(badges app.BadgeClasses, labels app.StatusLabels) {
	l.badges = badges.Clone()
	l.labels = labels.Clone()
}

func (l *taskList) setMarkdown(enabled bool) {
	if l.markdown != enabled {
		clear(l.descriptions)
	}
	l.markdown = enabled
}

func (l *taskList) move(delta int) {
	if len(l.tasks) == 0 {
		return
	}
	l.cursor = clamp(l.cursor+delta, 0, len(l.tasks)-1)
	l.selected = l.tasks[l.cursor]
}

func (l *taskList) selectedTask() (*domain.Task, bool) {
	if l.selected == nil {
		return nil, false
	}
	return l.selected, true
}

func (l *taskList) toggleCompleted() bool {
	task, ok := l.selectedTask()
	if !ok {
		return false
	}
	l.events.CompletedToggled.Emit(task)
	return true
}

func (l *taskList) toggleDescription() bool {
	task, ok := l.selectedTask()
	if !ok {
		return false
	}
	l.events.DescriptionToggled.Emit(task)
	return true
}

// badgeColor resolves the badge colour for status, with a neutral fallback.
func (l *taskList) badgeColor(status domain.Status) color.Color {
	return lipgloss.Color(l.badges.Class(status))
}

// description renders task's description, reusing the cached body for its row key.
func (l *taskList) description(task domain.Task, width int) string {
	body := strings.TrimSpace(task.Description)
	if body == "" {
		return ""
	}
	if !l.markdown {
		return lipgloss.NewStyle().Width(max(1, width)).Render(body)
	}
	key := domain.RowKey(task)
	if cached, ok := l.descriptions[key]; ok && cached.source == body && cached.width == width {
		return cached.text
	}
	text := l.renderer.render(body, width)
	l.descriptions[key] = renderedDescription{source: body, width: width, text: text}
	return text
}

func (l *taskList) view(width, height int, muted, dim color.Color) string {
	if len(l.tasks) == 0 {
		return fitLines(lipgloss.NewStyle().Foreground(muted).Render("  no tasks match the current filters"), height)
	}

	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	completedStyle := lipgloss.NewStyle().Foreground(muted).Strikethrough(true)
	dateStyle := lipgloss.NewStyle().Foreground(muted)
	descWidth := max(1, width-6)

	lines := make([]string, 0, len(l.tasks)*2)
	selectedStart, selectedEnd := -1, -1
	for idx, task := range l.tasks {
		selected := idx == l.cursor
		prefix := "  "
		if selected {
			prefix = "│ "
		}
		marker := "▸"
		if task.IsExpanded {
			marker = "▾"
		}
		check := "[ ]"
		if task.Status == domain.StatusCompleted {
			check = "[x]"
		}
		statusLabel := l.labels.Label(domain.StatusFilter(task.Status))
		badge := lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(l.badgeColor(task.Status)).
			Padding(0, 1).
			Render(statusLabel)
		date := dateStyle.Render(task.Date)
		fixed := lipgloss.Width(prefix) + lipgloss.Width(check) + lipgloss.Width(badge) + lipgloss.Width(date) + 6
		name := truncate(task.Name, max(1, width-fixed))
		switch {
		case selected:
			name = selectedStyle.Render(name)
		case task.Status == domain.StatusCompleted:
			name = completedStyle.Render(name)
		}

		rowStart := len(lines)
		lines = append(lines, strings.Join([]string{prefix + marker, check, name, date, badge}, " "))
		if task.IsExpanded {
			desc := l.description(*task, descWidth)
			if desc == "" {
				desc = lipgloss.NewStyle().Foreground(dim).Italic(true).Render("(no description)")
			}
			for _, line := range strings.Split(desc, "\n") {
				lines = append(lines, prefix+"    "+line)
			}
		}
		if selected {
			selectedStart = rowStart
			selectedEnd = len(lines) - 1
		}
	}

	if height <= 0 {
		return strings.Join(lines, "\n")
	}
	scrollTop := 0
	if selectedEnd >= height {
		scrollTop = selectedEnd - height + 1
	}
	if selectedStart >= 0 && selectedStart < scrollTop {
		scrollTop = selectedStart
	}
	scrollTop = clamp(scrollTop, 0, max(0, len(lines)-height))
	if len(lines) > height {
		lines = lines[scrollTop : scrollTop+height]
	}
	return fitLines(strings.Join(lines, "\n"), height)
}
