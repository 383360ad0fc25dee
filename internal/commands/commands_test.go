package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portalcal/internal/calendar"
	"portalcal/internal/model"
	"portalcal/internal/store"
)

const recordsJSON = `[
  {"id": "a", "kind": "task", "date": "2025-03-15", "title": "Enrollment Day", "keywords": ["bring form 5"]},
  {"id": "b", "kind": "event", "date": "2025-03-13T18:00", "title": "Opening Gala", "keywords": ["Sciences Federation", "A night of celebration"]},
  {"id": "c", "kind": "task", "date": "", "title": "No date"},
  {"id": "d", "date": "15/03/2025", "title": "Bad date"}
]`

func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "portalcal.db")
	cfgPath := filepath.Join(dir, "config.yaml")
	raw := "timezone: UTC\ndb_path: " + dbPath + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(raw), 0o600))
	return cfgPath, dbPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

type fakeImporter struct {
	tasks  []model.Task
	events []model.Event
}

func (f *fakeImporter) CreateTask(_ context.Context, t model.Task) (model.Task, error) {
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeImporter) CreateEvent(_ context.Context, e model.Event) (model.Event, error) {
	f.events = append(f.events, e)
	return e, nil
}

func TestImportRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(recordsJSON), 0o600))
	records, err := readRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 4)

	f := &fakeImporter{}
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	n, warnings, err := importRecords(context.Background(), f, records, time.UTC, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, warnings, 2)
	assert.Equal(t, "c", warnings[0].ItemID)
	assert.Equal(t, "missing date", warnings[0].Reason)
	assert.Equal(t, "d", warnings[1].ItemID)

	require.Len(t, f.tasks, 1)
	assert.Equal(t, "Enrollment Day", f.tasks[0].Title)
	assert.Equal(t, "bring form 5", f.tasks[0].Description)
	assert.Equal(t, calendar.PriorityImportant, f.tasks[0].Priority)

	require.Len(t, f.events, 1)
	assert.Equal(t, "Sciences Federation", f.events[0].Org)
	assert.Equal(t, "A night of celebration", f.events[0].Description)
	assert.Equal(t, 18, f.events[0].Date.Hour())
}

func TestReadRecordsRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not": "a list"`), 0o600))
	_, err := readRecords(path)
	assert.Error(t, err)
}

func TestImportThenAgendaAndMonth(t *testing.T) {
	cfgPath, dbPath := writeConfig(t)
	recPath := filepath.Join(filepath.Dir(cfgPath), "records.json")
	require.NoError(t, os.WriteFile(recPath, []byte(recordsJSON), 0o600))

	out, err := run(t, "--config", cfgPath, "import", recPath)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 of 4 record(s)")

	out, err = run(t, "--config", cfgPath, "agenda", "--plain", "--sort", "newest")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[I] Enrollment Day")
	assert.Contains(t, lines[1], "Opening Gala · Sciences Federation")

	out, err = run(t, "--config", cfgPath, "agenda", "--plain", "--kind", "event", "-q", "GALA")
	require.NoError(t, err)
	assert.NotContains(t, out, "Enrollment Day")
	assert.Contains(t, out, "Opening Gala")

	out, err = run(t, "--config", cfgPath, "month", "2025-03", "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "March 2025")
	assert.Contains(t, out, "Enrollment D…")
	assert.Contains(t, out, "1 pending task(s)")

	_, err = run(t, "--config", cfgPath, "month", "March")
	assert.Error(t, err)
	_, err = run(t, "--config", cfgPath, "agenda", "--sort", "random")
	assert.Error(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	tasks, err := st.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestSyncWithoutFeeds(t *testing.T) {
	cfgPath, _ := writeConfig(t)
	_, err := run(t, "--config", cfgPath, "sync")
	assert.EqualError(t, err, "no feeds configured")
}
