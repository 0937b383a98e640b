package app

import "github.com/evanschultz/tasklist/internal/domain"

// SeedTasks returns the fixed example tasks loaded at startup.
func SeedTasks() []domain.Task {
	return []domain.Task{
		{
			Name:        "Zrobić zakupy spożywcze",
			Status:      domain.StatusCompleted,
			Date:        "2025-05-01",
			Description: "Muszę kupić mleko, mąkę i jajka.",
		},
		{
			Name:        "Opłacić rachunki",
			Status:      domain.StatusPending,
			Date:        "2025-05-10",
			Description: "Tylko nie odkładaj tego na inny dzień!",
		},
		{
			Name:        "Urodziny mamy",
			Status:      domain.StatusPlanned,
			Date:        "2025-05-15",
			Description: "Kupić kwiaty i tort.",
		},
	}
}
