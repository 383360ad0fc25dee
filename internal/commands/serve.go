package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	appLog "portalcal/internal/log"
	"portalcal/internal/web"
)

func addServe(topLevel *cobra.Command, ro *rootOptions) {
	var listen string
	var noSync bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calendar page and the JSON API",
		Long: `Serve starts the HTTP server and, unless --no-sync is given, the cron
schedule that imports the configured ICS feeds.

Examples:
  portalcal serve
  portalcal serve --listen :9000 --no-sync`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			cfg := ro.cfg
			if listen != "" {
				cfg.Listen = listen
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case sig := <-sigCh:
					appLog.Info("signal received, shutting down", "signal", sig.String())
					cancel()
				case <-ctx.Done():
				}
			}()

			be, closeFn, err := openBackend(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			var syncer web.Syncer
			if len(cfg.Feeds) > 0 {
				s := newSyncer(cfg, be)
				syncer = s
				if !noSync {
					done, err := s.Start(ctx, cfg.RefreshCron)
					if err != nil {
						return err
					}
					// Runs before closeFn: no sync may write to a closed store.
					defer func() {
						cancel()
						<-done
					}()
				}
			}

			appLog.Info("portalcal starting",
				"listen", cfg.Listen,
				"timezone", cfg.Timezone,
				"week_start", cfg.WeekStart,
				"feeds", len(cfg.Feeds),
				"basic_auth", cfg.BasicAuth != nil,
			)
			err = web.NewServer(cfg, be, syncer, ro.debug).Start(ctx)
			appLog.Info("portalcal exiting")
			return err
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides the config file)")
	cmd.Flags().BoolVar(&noSync, "no-sync", false, "do not schedule feed imports")
	topLevel.AddCommand(cmd)
}
