package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/launchmap/launchmap/pkg/connect"
	"github.com/launchmap/launchmap/pkg/errors"
	"github.com/launchmap/launchmap/pkg/store"
)

// newSuggestCmd creates the suggest command.
func newSuggestCmd() *cobra.Command {
	var (
		projectID string
		apply     bool
		demo      bool
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "List or apply auto-connect suggestions",
		Long: `List or apply auto-connect suggestions.

Suggestions are derived from catalog dependency rules whose endpoints the
project has both adopted and not yet connected. With --apply, every
suggestion is created as a user connection; pairs connected concurrently
are skipped.`,
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

			snap, err := store.LoadSnapshot(ctx, st, projectID)
			if err != nil {
				return err
			}

			suggestions := connect.Suggest(snap)
			if len(suggestions) == 0 {
				printInfo("no suggestions: every adopted dependency pair is connected")
				return nil
			}

			names := make(map[string]string, len(snap.Services))
			for _, inst := range snap.Services {
				names[inst.ServiceID] = inst.Service.Name
			}

			t := table.New().Headers("SOURCE", "TARGET", "TYPE", "REASON")
			for _, s := range suggestions {
				t.Row(names[s.SourceServiceID], names[s.TargetServiceID], s.ConnectionType, s.Reason)
			}
			fmt.Println(t)

			if !apply {
				printInfo("run with --apply to create these connections")
				return nil
			}

			client := connect.NewClient(st, logger)
			p := newProgress(logger)
			res, err := client.ApplySuggestions(ctx, projectID, suggestions)
			if err != nil {
				return err
			}
			p.done(fmt.Sprintf("created %d connection(s), skipped %d", res.Created, res.Skipped))
			printSuccess("applied %d suggestion(s)", res.Created)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectID, "project", "p", "", "project ID (defaults to config)")
	cmd.Flags().BoolVar(&apply, "apply", false, "create the suggested connections")
	cmd.Flags().BoolVar(&demo, "demo", false, "use the seeded demo project")

	return cmd
}
