package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"portalcal/internal/calendar"
	"portalcal/internal/config"
	"portalcal/internal/termview"
)

// viewOptions are the filters shared by month and agenda.
type viewOptions struct {
	kind      string
	sort      string
	query     string
	completed string
	pending   bool
	plain     bool
}

func (o *viewOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.kind, "kind", "", "only show task or event items")
	cmd.Flags().StringVar(&o.sort, "sort", "", "agenda order: oldest or newest (default newest for events, oldest otherwise)")
	cmd.Flags().StringVarP(&o.query, "query", "q", "", "case-insensitive search over title and details")
	cmd.Flags().StringVar(&o.completed, "completed", "", "true or false to filter tasks by completion")
	cmd.Flags().BoolVar(&o.plain, "plain", false, "print without colors")
}

func (o *viewOptions) styles() termview.Styles {
	if o.plain {
		return termview.PlainStyles()
	}
	return termview.DefaultStyles()
}

// renderOptions validates the flags and folds them into cfg's options.
func (o *viewOptions) renderOptions(cfg *config.Config) (calendar.RenderOptions, calendar.Kind, error) {
	opts := cfg.RenderOptions()
	kind, err := calendar.ParseKind(o.kind)
	if err != nil {
		return opts, "", err
	}
	if opts.Agenda.Sort, err = calendar.ParseSortOrder(o.sort, kind); err != nil {
		return opts, "", err
	}
	if opts.Agenda.Completion, err = calendar.ParseCompletionFilter(o.completed); err != nil {
		return opts, "", err
	}
	opts.Agenda.Query = o.query
	if o.pending {
		opts.Bind.Filter = calendar.PendingOnly
	}
	return opts, kind, nil
}

// loadView renders month from a fresh snapshot. It returns the agenda lines
// with their details attached.
func loadView(ctx context.Context, cfg *config.Config, state calendar.ViewState, o *viewOptions) (calendar.View, []termview.AgendaLine, error) {
	opts, kind, err := o.renderOptions(cfg)
	if err != nil {
		return calendar.View{}, nil, err
	}
	be, closeFn, err := openBackend(ctx, cfg)
	if err != nil {
		return calendar.View{}, nil, err
	}
	defer closeFn()

	snap, err := be.Snapshot(ctx)
	if err != nil {
		return calendar.View{}, nil, err
	}
	items := snap.Items()
	if kind != "" {
		keep := calendar.OfKind(kind)
		filtered := items[:0:0]
		for _, it := range items {
			if keep(it) {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}

	loc := cfg.Location()
	v := calendar.Render(state, items, time.Now().In(loc), opts)

	priority := make(map[string]calendar.Priority, len(snap.Tasks))
	for _, t := range snap.Tasks {
		priority[t.ID] = t.Priority
	}
	org := make(map[string]string, len(snap.Events))
	for _, e := range snap.Events {
		org[e.ID] = e.Org
	}
	lines := make([]termview.AgendaLine, 0, len(v.Agenda))
	for _, it := range v.Agenda {
		it.Date = it.Date.In(loc)
		lines = append(lines, termview.AgendaLine{Item: it, Priority: priority[it.ID], Org: org[it.ID]})
	}
	return v, lines, nil
}

func addMonth(topLevel *cobra.Command, ro *rootOptions) {
	o := &viewOptions{}

	cmd := &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Print a month grid",
		Long: `Month prints the calendar grid for a month, the current one by default.

Examples:
  portalcal month
  portalcal month 2025-03 --pending
  portalcal month --kind event`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			var state calendar.ViewState
			if len(args) == 1 {
				ym, err := calendar.ParseYearMonth(args[0])
				if err != nil {
					return err
				}
				state.Month = ym
			}
			v, _, err := loadView(cmd.Context(), ro.cfg, state, o)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, termview.Month(v, o.styles()))
			fmt.Fprintf(out, "\n%d pending task(s)\n", v.Pending)
			for _, w := range v.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			return nil
		},
	}

	o.addFlags(cmd)
	cmd.Flags().BoolVar(&o.pending, "pending", false, "only mark days with open tasks")
	topLevel.AddCommand(cmd)
}

func addAgenda(topLevel *cobra.Command, ro *rootOptions) {
	o := &viewOptions{}

	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Print the agenda list",
		Long: `Agenda lists every dated task and event, filtered and sorted.

Examples:
  portalcal agenda --sort newest
  portalcal agenda --kind event -q gala
  portalcal agenda --kind task --completed false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			_, lines, err := loadView(cmd.Context(), ro.cfg, calendar.ViewState{}, o)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), termview.Agenda(lines, o.styles()))
			return nil
		},
	}

	o.addFlags(cmd)
	topLevel.AddCommand(cmd)
}
