package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/launchmap/launchmap/internal/tui"
	"github.com/launchmap/launchmap/pkg/engine"
	"github.com/launchmap/launchmap/pkg/errors"
)

// newMapCmd creates the map command running the interactive explorer.
func newMapCmd() *cobra.Command {
	var (
		projectID string
		demo      bool
	)

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Explore the project topology interactively",
		Long: `Explore the project topology interactively.

The explorer lists services under their groups and supports the canvas
controls from the keyboard: focus, group collapse, view modes, grouping
taxonomies, and search.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg := configFromContext(ctx)

			if projectID == "" {
				projectID = cfg.Project
			}
			if projectID == "" && demo {
				projectID = demoProjectID
			}
			if projectID == "" {
				return errors.New(errors.ErrCodeInvalidInput, "no project: pass --project or set it in the config")
			}

			st, err := openStore(ctx, cfg, demo)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			ca, err := openCache(ctx, cfg)
			if err != nil {
				return err
			}
			defer ca.Close()

			eng := engine.New(st, engine.Options{
				RootLabel: cfg.RootLabel,
				Layout:    layoutOptions(cfg),
				Cache:     ca,
				Logger:    logger,
			})
			if err := eng.Refresh(ctx, projectID); err != nil {
				return err
			}

			program := tea.NewProgram(tui.New(eng, projectID), tea.WithContext(ctx))
			_, err = program.Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&projectID, "project", "p", "", "project ID (defaults to config)")
	cmd.Flags().BoolVar(&demo, "demo", false, "use the seeded demo project")

	return cmd
}
