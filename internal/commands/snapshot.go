package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"portalcal/internal/calendar"
	"portalcal/internal/capture"
)

func addSnapshot(topLevel *cobra.Command, ro *rootOptions) {
	var output, url string

	cmd := &cobra.Command{
		Use:   "snapshot [YYYY-MM]",
		Short: "Save a PNG of the month page from a running server",
		Long: `Snapshot opens the month page of a running "portalcal serve" in headless
Chromium and writes a screenshot.

Examples:
  portalcal snapshot
  portalcal snapshot 2025-05 --output may.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			var month calendar.YearMonth
			if len(args) == 1 {
				ym, err := calendar.ParseYearMonth(args[0])
				if err != nil {
					return err
				}
				month = ym
			}
			opts := capture.OptionsFromConfig(ro.cfg, month)
			if url != "" {
				opts.URL = capture.PageURL(url, month)
			}
			if output != "" {
				opts.OutputPath = output
			}
			if err := capture.CalendarPNG(cmd.Context(), opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", opts.OutputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "PNG path (overrides the config file)")
	cmd.Flags().StringVar(&url, "url", "", "base URL of the server, e.g. http://host:8080")
	topLevel.AddCommand(cmd)
}
