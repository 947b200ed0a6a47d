package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchLines() []string {
	return []string{
		received("QA00000001", "1,000.00", "JOHN DOE 0712345678", "1,000.00"),
		paid("QA00000002", "200.00", "SHELL KAREN", "800.00"),
		sent("QA00000003", "100.00", "JANE WANJIKU 0722000111", "700.00"),
	}
}

func TestImport_SkipPolicy(t *testing.T) {
	dir := initDir(t)
	file := filepath.Join(t.TempDir(), "messages.txt")
	writeMessages(t, file, batchLines()...)

	out := mustRun(t, dir, "import", "--policy", "skip", file)
	assert.Contains(t, out, "line 1: income 2026-10-15 Offline 1000.00 KES (M-Pesa QA00000001) JOHN DOE")
	assert.Contains(t, out, "line 2: expense 2026-10-15 Fuel 200.00 KES (M-Pesa QA00000002)")
	assert.Contains(t, out, "line 3: skipped QA00000003")
	assert.Contains(t, out, "2 of 3 lines applied")

	out = mustRun(t, dir, "contacts", "list")
	assert.Contains(t, out, "2026-10-15 15:45  +254712345678  JOHN DOE")
	assert.Contains(t, out, "2026-10-15 16:00  +254722000111  JANE WANJIKU")

	log := readFile(t, filepath.Join(dir, "logs", "audit.csv"))
	assert.Contains(t, log, ",import_skip,")
	assert.Contains(t, log, "2 applied, 1 skipped, 0 rejected")

	out = mustRun(t, dir, "import", "--policy", "skip", file)
	assert.Contains(t, out, "line 1: duplicate")
	assert.Contains(t, out, "line 3: skipped QA00000003")
	assert.Contains(t, out, "0 of 3 lines applied")
}

func TestImport_PromptPolicy(t *testing.T) {
	dir := initDir(t)
	file := filepath.Join(t.TempDir(), "messages.txt")
	writeMessages(t, file, batchLines()...)

	out, err := runBoda(t, dir, "e\nrent\n", "import", file)
	require.NoError(t, err, out)
	assert.Contains(t, out, "JANE WANJIKU")
	assert.Contains(t, out, "line 3: expense 2026-10-15 Rent 100.00 KES (M-Pesa QA00000003)")
	assert.Contains(t, out, "3 of 3 lines applied")

	out = mustRun(t, dir, "contacts", "list")
	assert.Contains(t, out, "+254722000111  JANE WANJIKU  [Rent]")
}

func TestImport_PromptSuggestsLastCategory(t *testing.T) {
	dir := initDir(t)
	first := filepath.Join(t.TempDir(), "first.txt")
	writeMessages(t, first, batchLines()...)
	_, err := runBoda(t, dir, "s\n1\n", "import", first)
	require.NoError(t, err)

	second := filepath.Join(t.TempDir(), "second.txt")
	writeMessages(t, second, sent("QA00000004", "50.00", "JANE WANJIKU 0722000111", "650.00"))
	out, err := runBoda(t, dir, "\n", "import", second)
	require.NoError(t, err, out)
	assert.Contains(t, out, "last used: EmergencySavings")
	assert.Contains(t, out, "line 1: savings 2026-10-15 EmergencySavings 50.00 KES")
}

func TestImport_PromptEndsEarly(t *testing.T) {
	dir := initDir(t)
	file := filepath.Join(t.TempDir(), "messages.txt")
	writeMessages(t, file, batchLines()...)

	out, err := runBoda(t, dir, "", "import", file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, out, "2 of 2 lines applied")

	out = mustRun(t, dir, "income", "list")
	assert.Contains(t, out, "1. 2026-10-15 Offline 1000.00 KES", "applied lines are kept")
}

func TestImport_Stdin(t *testing.T) {
	dir := initDir(t)
	stdin := batchLines()[0] + "\n\nnot a message\n"

	out, err := runBoda(t, dir, stdin, "import", "--policy", "skip", "-")
	require.NoError(t, err, out)
	assert.Contains(t, out, "stdin:")
	assert.Contains(t, out, "line 2: unparseable")
	assert.Contains(t, out, "1 of 2 lines applied")
}

func TestImport_StdinCannotPrompt(t *testing.T) {
	dir := initDir(t)
	_, err := runBoda(t, dir, "", "import", "--policy", "prompt", "-")
	assert.ErrorContains(t, err, "cannot prompt while reading messages from stdin")
}

func TestImport_RejectsBalanceMismatch(t *testing.T) {
	dir := initDir(t)
	file := filepath.Join(t.TempDir(), "messages.txt")
	writeMessages(t, file, received("QA00000001", "1,000.00", "UBER BV", "1,450.00"))

	out := mustRun(t, dir, "import", "--policy", "skip", file)
	assert.Contains(t, out, "line 1: rejected: balance mismatch: QA00000001 expected balance 1000.00, message claims 1450.00")

	log := readFile(t, filepath.Join(dir, "logs", "audit.csv"))
	assert.Contains(t, log, ",import_reject,")
}

func TestImport_ToleranceFromConfig(t *testing.T) {
	dir := initDir(t)
	t.Setenv("BODA_TOLERANCE", "500")
	file := filepath.Join(t.TempDir(), "messages.txt")
	writeMessages(t, file, received("QA00000001", "1,000.00", "UBER BV", "1,450.00"))

	out := mustRun(t, dir, "import", "--policy", "skip", file)
	assert.Contains(t, out, "line 1: income 2026-10-15 Uber 1000.00 KES")
}

func TestImport_ScansImportDir(t *testing.T) {
	dir := initDir(t)
	writeMessages(t, filepath.Join(dir, "import", "oct.txt"), batchLines()...)

	out := mustRun(t, dir, "import", "--policy", "skip")
	assert.Contains(t, out, "oct.txt:")

	_, err := os.Stat(filepath.Join(dir, "import", "oct.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "import", "processed", "oct.txt"))
	assert.NoError(t, err)

	out = mustRun(t, dir, "import", "--policy", "skip")
	assert.Contains(t, out, "Nothing to import.")
}

func TestImport_QueuePolicy(t *testing.T) {
	dir := initDir(t)
	file := filepath.Join(t.TempDir(), "messages.txt")
	writeMessages(t, file, batchLines()...)

	mustRun(t, dir, "import", "--policy", "queue", file)

	queued := readFile(t, filepath.Join(dir, "review", "queue.txt"))
	assert.Equal(t, batchLines()[2]+"\n", queued)
}

func TestImport_QueueSurvivesRetry(t *testing.T) {
	dir := initDir(t)
	file := filepath.Join(t.TempDir(), "messages.txt")
	writeMessages(t, file, batchLines()...)
	queuePath := filepath.Join(dir, "review", "queue.txt")

	mustRun(t, dir, "import", "--policy", "queue", file)

	for range 2 {
		out := mustRun(t, dir, "import", "--policy", "queue")
		assert.Contains(t, out, "line 1: skipped QA00000003")
		assert.Equal(t, batchLines()[2]+"\n", readFile(t, queuePath))
	}
	assert.NoFileExists(t, filepath.Join(dir, "import", "processed", "queue.txt"))

	out, err := runBoda(t, dir, "e\nrent\n", "import")
	require.NoError(t, err, out)
	assert.Contains(t, out, "line 1: expense 2026-10-15 Rent 100.00 KES (M-Pesa QA00000003)")
	assert.NoFileExists(t, queuePath)

	out = mustRun(t, dir, "import", "--policy", "queue")
	assert.Contains(t, out, "Nothing to import.")
}

func TestImport_QueueInsideImportDir(t *testing.T) {
	dir := initDir(t)
	t.Setenv("BODA_QUEUE_FILE", filepath.Join("import", "review.txt"))
	file := filepath.Join(t.TempDir(), "messages.txt")
	writeMessages(t, file, batchLines()...)
	queuePath := filepath.Join(dir, "import", "review.txt")

	mustRun(t, dir, "import", "--policy", "queue", file)
	out := mustRun(t, dir, "import", "--policy", "queue")

	assert.Contains(t, out, "line 1: skipped QA00000003")
	assert.Equal(t, batchLines()[2]+"\n", readFile(t, queuePath))
	assert.NoFileExists(t, filepath.Join(dir, "import", "processed", "review.txt"))
}

func TestImport_SQLiteContacts(t *testing.T) {
	dir := initDir(t)
	t.Setenv("BODA_CONTACTS_BACKEND", "sqlite")
	t.Setenv("BODA_CONTACTS_PATH", "contacts.db")
	file := filepath.Join(t.TempDir(), "messages.txt")
	writeMessages(t, file, batchLines()...)

	mustRun(t, dir, "import", "--policy", "skip", file)

	_, err := os.Stat(filepath.Join(dir, "contacts.db"))
	require.NoError(t, err)
	out := mustRun(t, dir, "contacts", "list")
	assert.Contains(t, out, "+254712345678  JOHN DOE")
}

func TestImport_BadPolicy(t *testing.T) {
	dir := initDir(t)
	_, err := runBoda(t, dir, "", "import", "--policy", "later")
	assert.ErrorContains(t, err, `unknown policy "later"`)
}
