package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"portalcal/internal/calendar"
	appLog "portalcal/internal/log"
	"portalcal/internal/model"
)

// importer is the part of the store an import writes to.
type importer interface {
	CreateTask(ctx context.Context, t model.Task) (model.Task, error)
	CreateEvent(ctx context.Context, e model.Event) (model.Event, error)
}

func addImport(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import dated records from a JSON file",
		Long: `Import reads a JSON array of records and stores them as tasks and events.

Each record has an id, kind ("task" or "event"), date, title, completed and
keywords. For events the first keyword is the organizer. Records with a
missing or unparseable date are skipped with a warning.

Example:
  portalcal import legacy.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			records, err := readRecords(args[0])
			if err != nil {
				return err
			}
			be, closeFn, err := openBackend(cmd.Context(), ro.cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			n, warnings, err := importRecords(cmd.Context(), be, records, ro.cfg.Location(), time.Now())
			for _, w := range warnings {
				appLog.Warn("record skipped", "id", w.ItemID, "reason", w.Reason)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d record(s)\n", n, len(records))
			return err
		},
	}
	topLevel.AddCommand(cmd)
}

func readRecords(path string) ([]calendar.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []calendar.Record
	if err := sonic.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return records, nil
}

// importRecords validates the records' dates in loc and stores the usable
// ones. Records of unknown kind are stored as events.
func importRecords(ctx context.Context, w importer, records []calendar.Record, loc *time.Location, now time.Time) (int, []calendar.Warning, error) {
	items, warnings := calendar.FromRecords(records, loc)
	n := 0
	for _, it := range items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			title = "(untitled)"
		}
		switch it.Kind {
		case calendar.KindTask:
			_, err := w.CreateTask(ctx, model.Task{
				Title:       title,
				Description: strings.Join(it.Keywords, "\n"),
				DueDate:     it.Date,
				Priority:    calendar.PriorityImportant,
				Completed:   it.Completed,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
			if err != nil {
				return n, warnings, fmt.Errorf("record %s: %w", it.ID, err)
			}
		default:
			org := "Imported"
			var desc []string
			if len(it.Keywords) > 0 {
				org = it.Keywords[0]
				desc = it.Keywords[1:]
			}
			_, err := w.CreateEvent(ctx, model.Event{
				Title:       title,
				Description: strings.Join(desc, "\n"),
				Org:         org,
				Date:        it.Date,
				Source:      model.SourceCustom,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
			if err != nil {
				return n, warnings, fmt.Errorf("record %s: %w", it.ID, err)
			}
		}
		n++
	}
	return n, warnings, nil
}
