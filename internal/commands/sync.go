package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func addSync(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Import the configured ICS feeds once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			cfg := ro.cfg
			if len(cfg.Feeds) == 0 {
				return errors.New("no feeds configured")
			}
			be, closeFn, err := openBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			results, err := newSyncer(cfg, be).RunOnce(cmd.Context())
			out := cmd.OutOrStdout()
			for _, r := range results {
				status := "ok"
				switch {
				case r.Err != nil:
					status = "failed: " + r.Err.Error()
				case r.FromCache:
					status = "ok (cached)"
				}
				fmt.Fprintf(out, "%-12s %4d events  %s\n", r.ID, r.Events, status)
				for _, uid := range r.Truncated {
					fmt.Fprintf(out, "%-12s recurrence truncated: %s\n", "", uid)
				}
			}
			return err
		},
	}
	topLevel.AddCommand(cmd)
}
