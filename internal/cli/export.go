package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/launchmap/launchmap/pkg/engine"
	"github.com/launchmap/launchmap/pkg/errors"
	"github.com/launchmap/launchmap/pkg/export"
	"github.com/launchmap/launchmap/pkg/topo"
)

// newExportCmd creates the export command.
func newExportCmd() *cobra.Command {
	var (
		projectID string
		format    string
		output    string
		grouping  string
		viewMode  string
		demo      bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the positioned topology as JSON, DOT, or SVG",
		Long: `Write the positioned topology as JSON, DOT, or SVG.

JSON carries the full positioned graph for other tooling; DOT and SVG are
rendered through Graphviz for documentation. Output goes to stdout unless
--output names a file.`,
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

			groupingMode, err := topo.ParseGroupingMode(grouping)
			if err != nil {
				return err
			}
			mode, err := topo.ParseViewMode(viewMode)
			if err != nil {
				return err
			}

			st, err := openStore(ctx, cfg, demo)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			eng := engine.New(st, engine.Options{
				RootLabel: cfg.RootLabel,
				Layout:    layoutOptions(cfg),
				Logger:    logger,
			})
			eng.SetGroupingMode(groupingMode)
			eng.SetViewMode(mode)

			p := newProgress(logger)
			if err := eng.Refresh(ctx, projectID); err != nil {
				return err
			}
			view, err := eng.View(ctx)
			if err != nil {
				return err
			}
			p.done(fmt.Sprintf("derived %d nodes, %d edges", len(view.Graph.Nodes), len(view.Graph.Edges)))

			var data []byte
			switch strings.ToLower(format) {
			case "json":
				data, err = export.ToJSON(export.Document{
					ProjectID: projectID,
					Grouping:  view.Grouping,
					ViewMode:  view.ViewMode,
					Health:    view.Health,
					Graph:     view.Graph,
				})
			case "dot":
				data = []byte(export.ToDOT(view.Graph, export.DOTOptions{
					Detailed: true,
					RankDir:  cfg.Layout.Direction,
				}))
			case "svg":
				dot := export.ToDOT(view.Graph, export.DOTOptions{RankDir: cfg.Layout.Direction})
				data, err = export.RenderSVG(ctx, dot)
			default:
				return errors.New(errors.ErrCodeInvalidFormat,
					"invalid format %q (must be json, dot, or svg)", format)
			}
			if err != nil {
				return err
			}

			if output == "" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return err
			}
			printSuccess("wrote %s (%d bytes)", output, len(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectID, "project", "p", "", "project ID (defaults to config)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&grouping, "grouping", "category", "grouping mode: category, domain, simplified")
	cmd.Flags().StringVar(&viewMode, "view", "all", "view mode: all, connections, dependencies")
	cmd.Flags().BoolVar(&demo, "demo", false, "use the seeded demo project")

	return cmd
}
