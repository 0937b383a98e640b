package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/evanschultz/tasklist/internal/app"
	"github.com/evanschultz/tasklist/internal/config"
	"github.com/evanschultz/tasklist/internal/domain"
	"github.com/spf13/cobra"
)

// listOptions holds the filter flags of the list command.
type listOptions struct {
	name   string
	date   string
	status string
}

func newListCmd(opts *rootOptions, stdout io.Writer) *cobra.Command {
	listOpts := &listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the tasks matching the given filters",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runList(*opts, *listOpts, stdout)
		},
	}
	cmd.Flags().StringVar(&listOpts.name, "name", "", "case-insensitive name substring")
	cmd.Flags().StringVar(&listOpts.date, "date", "", "exact date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&listOpts.status, "status", string(domain.StatusAll), "all, completed, pending or planned")
	return cmd
}

func runList(opts rootOptions, listOpts listOptions, stdout io.Writer) error {
	status, err := parseStatusFilter(listOpts.status)
	if err != nil {
		return err
	}
	paths, err := resolvePaths(opts)
	if err != nil {
		return err
	}
	configPath := resolveConfigPath(opts, paths)
	cfg, err := config.Load(configPath, config.Default())
	if err != nil {
		return fmt.Errorf("load config %q: %w", configPath, err)
	}
	runtimeCfg := toTUIRuntimeConfig(cfg)

	container := app.NewContainer(app.SeedTasks(), app.ContainerConfig{
		Labels: runtimeCfg.Labels,
		Badges: runtimeCfg.Badges,
	})
	container.ApplyFilterChange(domain.Filters{
		Name:   listOpts.name,
		Date:   strings.TrimSpace(listOpts.date),
		Status: status,
	}.Normalize())

	_, err = fmt.Fprintln(stdout, renderTaskTable(container))
	return err
}

// parseStatusFilter matches raw against the filter options case-insensitively.
func parseStatusFilter(raw string) (domain.StatusFilter, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.StatusAll, nil
	}
	for _, opt := range domain.StatusFilters() {
		if strings.EqualFold(raw, string(opt)) {
			return opt, nil
		}
	}
	return "", fmt.Errorf("invalid --status %q", raw)
}

// renderTaskTable draws the container's visible tasks with status badges.
func renderTaskTable(container *app.Container) string {
	visible := container.VisibleTasks()
	labels := container.Labels()
	badges := container.Badges()

	rows := make([][]string, 0, len(visible))
	for _, task := range visible {
		check := " "
		if task.Status == domain.StatusCompleted {
			check = "x"
		}
		rows = append(rows, []string{check, task.Name, task.Date, labels.Label(domain.StatusFilter(task.Status))})
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("239"))).
		Headers("", "NAME", "DATE", "STATUS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 3 && row >= 0 && row < len(visible) {
				return cellStyle.Foreground(lipgloss.Color(badges.Class(visible[row].Status)))
			}
			return cellStyle
		})

	summary := fmt.Sprintf("%d of %d tasks", len(visible), len(container.Tasks()))
	return t.Render() + "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(summary)
}
