package app

import (
	"github.com/evanschultz/tasklist/internal/domain"
)

// Logger receives debug traces of container state transitions.
type Logger interface {
	Debug(msg string, keyvals ...any)
}

// IDGenerator returns unique identifiers for new tasks.
type IDGenerator func() string

// ContainerConfig holds optional collaborators for a container.
type ContainerConfig struct {
	IDGen  IDGenerator
	Logger Logger
	Labels StatusLabels
	Badges BadgeClasses
}

// Container is the single source of truth for the task collection, the
// filter criteria and the add-modal flag. Child components never mutate it
// directly; they emit signals that Connect routes here.
type Container struct {
	tasks     []*domain.Task
	filters   domain.Filters
	modalOpen bool

	labels StatusLabels
	badges BadgeClasses

	idGen  IDGenerator
	logger Logger
}

// NewContainer seeds a container with copies of seed.
func NewContainer(seed []domain.Task, cfg ContainerConfig) *Container {
	if cfg.IDGen == nil {
		cfg.IDGen = func() string { return "" }
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}
	if cfg.Labels == nil {
		cfg.Labels = DefaultStatusLabels()
	}
	if cfg.Badges == nil {
		cfg.Badges = DefaultBadgeClasses()
	}
	c := &Container{
		tasks:   make([]*domain.Task, 0, len(seed)),
		filters: domain.DefaultFilters(),
		labels:  cfg.Labels.Clone(),
		badges:  cfg.Badges.Clone(),
		idGen:   cfg.IDGen,
		logger:  cfg.Logger,
	}
	for _, task := range seed {
		if task.ID == "" {
			task.ID = c.idGen()
		}
		c.tasks = append(c.tasks, &task)
	}
	return c
}

// Tasks returns the canonical collection. The slice header changes whenever
// a task is appended; callers must not modify it.
func (c *Container) Tasks() []*domain.Task {
	return c.tasks
}

// Filters returns the current criteria.
func (c *Container) Filters() domain.Filters {
	return c.filters
}

// ModalOpen reports whether the add-task modal is visible.
func (c *Container) ModalOpen() bool {
	return c.modalOpen
}

// Labels returns a copy of the status label table.
func (c *Container) Labels() StatusLabels {
	return c.labels.Clone()
}

// Badges returns a copy of the status badge table.
func (c *Container) Badges() BadgeClasses {
	return c.badges.Clone()
}

// SetLookupTables replaces the label and badge tables.
func (c *Container) SetLookupTables(labels StatusLabels, badges BadgeClasses) {
	if labels != nil {
		c.labels = labels.Clone()
	}
	if badges != nil {
		c.badges = badges.Clone()
	}
}

// VisibleTasks derives the filtered view. It is recomputed on every call.
func (c *Container) VisibleTasks() []*domain.Task {
	return domain.FilterTasks(c.tasks, c.filters)
}

// ApplyFilterChange replaces the filter state wholesale.
func (c *Container) ApplyFilterChange(next domain.Filters) {
	c.filters = next
	c.logger.Debug("filters changed", "name", next.Name, "date", next.Date, "status", next.Status)
}

// ClearFilters resets the criteria so every task is visible.
func (c *Container) ClearFilters() {
	c.filters = domain.DefaultFilters()
	c.logger.Debug("filters cleared")
}

// ToggleCompleted flips the status of task in place.
func (c *Container) ToggleCompleted(task *domain.Task) {
	if task == nil {
		return
	}
	from := task.Status
	task.ToggleCompleted()
	c.logger.Debug("task status toggled", "task_id", task.ID, "from", from, "to", task.Status)
}

// ToggleDescription flips the expansion flag of task in place.
func (c *Container) ToggleDescription(task *domain.Task) {
	if task == nil {
		return
	}
	task.ToggleExpanded()
	c.logger.Debug("task description toggled", "task_id", task.ID, "expanded", task.IsExpanded)
}

func (c *Container) OpenAddModal() {
	c.modalOpen = true
	c.logger.Debug("add modal opened")
}

func (c *Container) CloseAddModal() {
	c.modalOpen = false
	c.logger.Debug("add modal closed")
}

// HandleTaskCreated appends task into a freshly allocated collection and closes the modal.
func (c *Container) HandleTaskCreated(task domain.Task) {
	if task.ID == "" {
		task.ID = c.idGen()
	}
	next := make([]*domain.Task, len(c.tasks), len(c.tasks)+1)
	copy(next, c.tasks)
	c.tasks = append(next, &task)
	c.logger.Debug("task created", "task_id", task.ID, "name", task.Name, "date", task.Date, "status", task.Status, "count", len(c.tasks))
	c.CloseAddModal()
}

// HandleCreationCancelled closes the modal without touching the collection.
func (c *Container) HandleCreationCancelled() {
	c.logger.Debug("task creation cancelled")
	c.CloseAddModal()
}

// FilterEvents are the outbound signals of a filter panel.
type FilterEvents struct {
	FiltersChanged *Signal[domain.Filters]
	ClearRequested *Signal[struct{}]
}

// ListEvents are the outbound signals of a task list.
type ListEvents struct {
	CompletedToggled   *Signal[*domain.Task]
	DescriptionToggled *Signal[*domain.Task]
}

// ModalEvents are the outbound signals of a creation modal.
type ModalEvents struct {
	Created   *Signal[domain.Task]
	Cancelled *Signal[struct{}]
}

func NewFilterEvents() FilterEvents {
	return FilterEvents{
		FiltersChanged: NewSignal[domain.Filters](),
		ClearRequested: NewSignal[struct{}](),
	}
}

func NewListEvents() ListEvents {
	return ListEvents{
		CompletedToggled:   NewSignal[*domain.Task](),
		DescriptionToggled: NewSignal[*domain.Task](),
	}
}

func NewModalEvents() ModalEvents {
	return ModalEvents{
		Created:   NewSignal[domain.Task](),
		Cancelled: NewSignal[struct{}](),
	}
}

// Connect subscribes the container to every child signal and returns a
// function that releases all of those subscriptions.
func (c *Container) Connect(f FilterEvents, l ListEvents, m ModalEvents) func() {
	unsubs := []func(){
		f.FiltersChanged.Subscribe(c.ApplyFilterChange),
		f.ClearRequested.Subscribe(func(struct{}) { c.ClearFilters() }),
		l.CompletedToggled.Subscribe(c.ToggleCompleted),
		l.DescriptionToggled.Subscribe(c.ToggleDescription),
		m.Created.Subscribe(c.HandleTaskCreated),
		m.Cancelled.Subscribe(func(struct{}) { c.HandleCreationCancelled() }),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

// nopLogger discards container traces.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
