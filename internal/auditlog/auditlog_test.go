package auditlog

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2026, 10, 15, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp: testTime,
		Action:    ActionAddEntry,
		Details:   "expense 2026-10-15 Fuel 300.00 KES, Cash",
	}
}

func TestAppend_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "audit.csv")
	require.NoError(t, Append(path, []Entry{testEntry()}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Header+"\n2026-10-15T10:30:00Z,add_entry,\"expense 2026-10-15 Fuel 300.00 KES, Cash\"\n", string(data))
}

func TestAppend_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	require.NoError(t, Append(path, []Entry{testEntry()}))

	e2 := testEntry()
	e2.Action = ActionDeleteEntry
	require.NoError(t, Append(path, []Entry{e2}))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionAddEntry, entries[0].Action)
	assert.Equal(t, ActionDeleteEntry, entries[1].Action)
}

func TestRead_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	original := testEntry()
	require.NoError(t, Append(path, []Entry{original}))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, original.Timestamp.Equal(entries[0].Timestamp))
	assert.Equal(t, original.Details, entries[0].Details)
}

func TestRead_NotFound(t *testing.T) {
	entries, err := Read(filepath.Join(t.TempDir(), "missing.csv"))
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_HeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	require.NoError(t, os.WriteFile(path, []byte(Header+"\n"), 0o644))

	entries, err := Read(path)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	_, err := UnmarshalEntry([]string{"one", "two"})
	assert.ErrorContains(t, err, "expected 3 fields")

	_, err = UnmarshalEntry([]string{"yesterday", ActionStart, ""})
	assert.ErrorContains(t, err, "parsing timestamp")
}

func TestLogger_Record(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	l := New(path, nil)
	l.now = func() time.Time { return testTime.Add(500 * time.Millisecond) }

	l.Record(ActionStart, "")
	l.Recordf(ActionRenameCategory, "expense %s -> %s", "Fuel", "Petrol")

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Timestamp: testTime, Action: ActionStart}, entries[0])
	assert.Equal(t, "expense Fuel -> Petrol", entries[1].Details)
}

func TestLogger_FailureOnlyWarns(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	var buf bytes.Buffer
	l := New(filepath.Join(blocker, "audit.csv"), slog.New(slog.NewTextHandler(&buf, nil)))
	l.Record(ActionStop, "")

	assert.Contains(t, buf.String(), "audit log write failed")
	assert.Contains(t, buf.String(), "component=auditlog")
}

func TestLogger_Disabled(t *testing.T) {
	var nilLogger *Logger
	nilLogger.Record(ActionStart, "")
	New("", nil).Record(ActionStart, "")
}
