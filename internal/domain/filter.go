package domain

import (
	"strings"
)

// StatusFilter is a task status or StatusAll.
type StatusFilter string

const StatusAll StatusFilter = "all"

// StatusFilters returns filter options in display order, "all" first.
func StatusFilters() []StatusFilter {
	out := []StatusFilter{StatusAll}
	for _, s := range validStatuses {
		out = append(out, StatusFilter(s))
	}
	return out
}

// Filters narrows the displayed task set.
type Filters struct {
	Name   string
	Date   string
	Status StatusFilter
}

// DefaultFilters returns the cleared criteria.
func DefaultFilters() Filters {
	return Filters{Status: StatusAll}
}

// Normalize trims the name and defaults an unset status to StatusAll. Date passes through.
func (f Filters) Normalize() Filters {
	f.Name = strings.TrimSpace(f.Name)
	if f.Status == "" {
		f.Status = StatusAll
	}
	return f
}

// IsZero reports whether the criteria match every task.
func (f Filters) IsZero() bool {
	n := f.Normalize()
	return n.Name == "" && n.Date == "" && n.Status == StatusAll
}

// Matches applies the name, date and status conjuncts.
func (f Filters) Matches(t Task) bool {
	name := strings.ToLower(strings.TrimSpace(f.Name))
	if name != "" && !strings.Contains(strings.ToLower(t.Name), name) {
		return false
	}
	if f.Date != "" && t.Date != f.Date {
		return false
	}
	if f.Status != "" && f.Status != StatusAll && Status(f.Status) != t.Status {
		return false
	}
	return true
}

// FilterTasks returns the tasks matching f, preserving order and pointer identity.
func FilterTasks(tasks []*Task, f Filters) []*Task {
	out := make([]*Task, 0, len(tasks))
	for _, task := range tasks {
		if task == nil || !f.Matches(*task) {
			continue
		}
		out = append(out, task)
	}
	return out
}
