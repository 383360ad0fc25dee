// Package commands holds the portalcal command line.
package commands

import (
	"github.com/spf13/cobra"

	"portalcal/internal/config"
	appLog "portalcal/internal/log"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configPath string
	debug      bool

	cfg *config.Config
}

func New() *cobra.Command {
	ro := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "portalcal",
		Short: "Calendar, agenda and page directory for the university portal.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if ro.debug {
				appLog.SetLevel(appLog.LevelDebug)
			}
			cfg, err := config.Load(ro.configPath)
			if err != nil {
				return err
			}
			ro.cfg = cfg
			appLog.Debug("config loaded",
				"path", ro.configPath,
				"timezone", cfg.Timezone,
				"week_start", cfg.WeekStart,
				"db", cfg.DBPath,
				"feeds", len(cfg.Feeds),
			)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&ro.configPath, "config", "portalcal.yaml", "path to the YAML config file (created with defaults if missing)")
	cmd.PersistentFlags().BoolVar(&ro.debug, "debug", false, "enable debug logging")

	addCommands(cmd, ro)
	return cmd
}

func addCommands(topLevel *cobra.Command, ro *rootOptions) {
	addServe(topLevel, ro)
	addMonth(topLevel, ro)
	addAgenda(topLevel, ro)
	addSync(topLevel, ro)
	addImport(topLevel, ro)
	addSnapshot(topLevel, ro)
}
