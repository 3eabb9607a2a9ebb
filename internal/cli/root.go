package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/launchmap/launchmap/internal/config"
	"github.com/launchmap/launchmap/pkg/buildinfo"
)

// Execute runs the launchmap CLI and returns an error if any command
// fails. Logging defaults to info level on stderr; --verbose switches to
// debug. The logger and the loaded config are attached to the command
// context.
func Execute(ctx context.Context) error {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          "launchmap",
		Short:        "Launchmap visualizes a project's service topology",
		Long:         `Launchmap derives an interactive service topology map from a project's adopted services, catalog dependency rules, and user-drawn connections.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			logger := newLogger(os.Stderr, level)

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			cmdCtx := withLogger(cmd.Context(), logger)
			cmdCtx = withConfig(cmdCtx, cfg)
			cmd.SetContext(cmdCtx)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default launchmap.toml)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newMapCmd())
	root.AddCommand(newSuggestCmd())
	root.AddCommand(newExportCmd())

	return root.ExecuteContext(ctx)
}

const configKey ctxKey = 1

func withConfig(ctx context.Context, cfg config.Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

func configFromContext(ctx context.Context) config.Config {
	if cfg, ok := ctx.Value(configKey).(config.Config); ok {
		return cfg
	}
	return config.Default()
}
