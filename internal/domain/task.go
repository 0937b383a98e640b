package domain

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

type Status string

const (
	StatusCompleted Status = "Completed"
	StatusPending   Status = "Pending"
	StatusPlanned   Status = "Planned"
)

// MaxNameLength bounds task names in runes.
const MaxNameLength = 120

// DateLayout is the ISO calendar date layout used for Task.Date.
const DateLayout = "2006-01-02"

var validStatuses = []Status{StatusCompleted, StatusPending, StatusPlanned}

// Statuses returns the selectable task statuses in display order.
func Statuses() []Status {
	return slices.Clone(validStatuses)
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return slices.Contains(validStatuses, s)
}

// Task is one to-do item. Identity is the pointer; ID only correlates log lines.
type Task struct {
	ID          string
	Name        string
	Status      Status
	Date        string
	Description string
	IsExpanded  bool
}

type TaskInput struct {
	Name        string
	Status      Status
	Date        string
	Description string
}

// NewTask validates a draft against the creation rules and builds a collapsed task.
func NewTask(in TaskInput, now time.Time) (Task, error) {
	if err := ValidateName(in.Name); err != nil {
		return Task{}, err
	}
	if err := ValidateDate(in.Date, now); err != nil {
		return Task{}, err
	}
	if in.Status == "" {
		in.Status = StatusPlanned
	}
	if !in.Status.Valid() {
		return Task{}, ErrInvalidStatus
	}
	return Task{
		Name:        strings.TrimSpace(in.Name),
		Status:      in.Status,
		Date:        strings.TrimSpace(in.Date),
		Description: strings.TrimSpace(in.Description),
		IsExpanded:  false,
	}, nil
}

// ToggleCompleted flips Completed to Planned and everything else to Completed.
func (t *Task) ToggleCompleted() {
	if t.Status == StatusCompleted {
		t.Status = StatusPlanned
		return
	}
	t.Status = StatusCompleted
}

func (t *Task) ToggleExpanded() {
	t.IsExpanded = !t.IsExpanded
}

// RowKey derives the list rendering key. Tasks sharing name, date and status collide.
func RowKey(t Task) string {
	return t.Name + "-" + t.Date + "-" + string(t.Status)
}

// ValidateName enforces the required and maximum-length rules.
func ValidateName(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return ErrInvalidName
	}
	if utf8.RuneCountInString(raw) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// ValidateDate requires an ISO date no earlier than local midnight of now.
// Unparseable input is reported the same way as a past date.
func ValidateDate(raw string, now time.Time) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrDateRequired
	}
	loc := now.Location()
	selected, err := time.ParseInLocation(DateLayout, raw, loc)
	if err != nil {
		return ErrDateInPast
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if selected.Before(today) {
		return ErrDateInPast
	}
	return nil
}
