package app

import (
	"maps"

	"github.com/evanschultz/tasklist/internal/domain"
)

// NeutralBadge is the badge colour used for statuses missing from a BadgeClasses table.
const NeutralBadge = "245"

// StatusLabels maps filter options (statuses plus "all") to display labels.
type StatusLabels map[domain.StatusFilter]string

// BadgeClasses maps statuses to lipgloss colour specs. The empty status key
// overrides NeutralBadge as the fallback.
type BadgeClasses map[domain.Status]string

// DefaultStatusLabels returns the built-in English label table.
func DefaultStatusLabels() StatusLabels {
	return StatusLabels{
		domain.StatusAll:                           "All",
		domain.StatusFilter(domain.StatusCompleted): "Completed",
		domain.StatusFilter(domain.StatusPending):   "Pending",
		domain.StatusFilter(domain.StatusPlanned):   "Planned",
	}
}

// DefaultBadgeClasses returns the built-in badge colours.
func DefaultBadgeClasses() BadgeClasses {
	return BadgeClasses{
		domain.StatusCompleted: "42",
		domain.StatusPending:   "214",
		domain.StatusPlanned:   NeutralBadge,
	}
}

// Label returns the display label for opt, falling back to the raw value.
func (l StatusLabels) Label(opt domain.StatusFilter) string {
	if label, ok := l[opt]; ok && label != "" {
		return label
	}
	return string(opt)
}

// Class returns the badge colour for status, falling back to the neutral colour.
func (b BadgeClasses) Class(status domain.Status) string {
	if class, ok := b[status]; ok && class != "" {
		return class
	}
	if class := b[""]; class != "" {
		return class
	}
	return NeutralBadge
}

// Clone copies the table.
func (l StatusLabels) Clone() StatusLabels {
	return maps.Clone(l)
}

// Clone copies the table.
func (b BadgeClasses) Clone() BadgeClasses {
	return maps.Clone(b)
}
