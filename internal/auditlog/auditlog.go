// Package auditlog appends a CSV trail of user-visible actions.
package auditlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Actions recorded by the commands.
const (
	ActionStart          = "start"
	ActionStop           = "stop"
	ActionAddEntry       = "add_entry"
	ActionDeleteEntry    = "delete_entry"
	ActionAddCategory    = "add_category"
	ActionRenameCategory = "rename_category"
	ActionDeleteCategory = "delete_category"
	ActionSavingsSwitch  = "savings_switch"
	ActionIdentity       = "identity"
	ActionImportBatch    = "import_batch"
	ActionImportSkip     = "import_skip"
	ActionImportReject   = "import_reject"
)

// Entry is one row in the audit log.
type Entry struct {
	Timestamp time.Time
	Action    string
	Details   string
}

// Header is the CSV header written to a new log file.
const Header = "timestamp,action,details"

const (
	numFields    = 3
	colTimestamp = 0
	colAction    = 1
	colDetails   = 2
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colAction] = e.Action
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	return Entry{
		Timestamp: ts,
		Action:    record[colAction],
		Details:   record[colDetails],
	}, nil
}

// Append writes entries to the log at path, creating the file and header if
// needed.
func Append(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries in the log at path. A missing file yields no
// entries.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Logger records actions to one log file. Write failures are reported to
// the slog logger and otherwise ignored.
type Logger struct {
	path string
	log  *slog.Logger
	now  func() time.Time
}

// New returns a Logger writing to path. An empty path disables recording.
func New(path string, log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{path: path, log: log.With("component", "auditlog"), now: time.Now}
}

// Record appends one action. It never fails.
func (l *Logger) Record(action, details string) {
	if l == nil || l.path == "" {
		return
	}
	e := Entry{Timestamp: l.now().UTC().Truncate(time.Second), Action: action, Details: details}
	if err := Append(l.path, []Entry{e}); err != nil {
		l.log.Warn("audit log write failed", "action", action, "error", err)
	}
}

// Recordf is Record with a formatted details string.
func (l *Logger) Recordf(action, format string, args ...any) {
	l.Record(action, fmt.Sprintf(format, args...))
}
