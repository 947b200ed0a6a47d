package commands_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boda-dev/boda/internal/ledger"
	"github.com/boda-dev/boda/internal/validate"
)

func TestExpense_AddListDelete(t *testing.T) {
	dir := initDir(t)

	out := mustRun(t, dir, "expense", "add", "--amount", "300", "--category", "fu", "--date", "2026-10-14", "--notes", "full tank")
	assert.Empty(t, out)

	mustRun(t, dir, "expense", "add", "--amount", "150.5", "--category", "2", "--mode", "m", "--code", "qa12bc34de")

	out = mustRun(t, dir, "expense", "list")
	assert.Contains(t, out, "1. 2026-10-14 Fuel 300.00 KES (Cash) full tank")
	assert.Contains(t, out, "2. 2026-10-15 Airtime 150.50 KES (M-Pesa QA12BC34DE)")

	out = mustRun(t, dir, "expense", "delete", "1")
	assert.Contains(t, out, "Deleted expense: 2026-10-14 Fuel")

	out = mustRun(t, dir, "expense", "list")
	assert.Contains(t, out, "1. 2026-10-15 Airtime")
	assert.NotContains(t, out, "Fuel")

	log := readFile(t, filepath.Join(dir, "logs", "audit.csv"))
	assert.Contains(t, log, ",add_entry,expense 2026-10-14 Fuel 300.00 KES (Cash) full tank\n")
	assert.Contains(t, log, ",delete_entry,")
}

func TestIncome_AddPlatform(t *testing.T) {
	dir := initDir(t)
	mustRun(t, dir, "income", "add", "--amount", "1200", "--platform", "b", "--date", "14")
	out := mustRun(t, dir, "income", "list")
	assert.Contains(t, out, "1. 2026-10-14 Bolt 1200.00 KES (Cash)")
}

func TestEntryAdd_ReportsEveryBadFlag(t *testing.T) {
	dir := initDir(t)

	_, err := runBoda(t, dir, "", "income", "add", "--amount=-5", "--platform", "z", "--date", "2026-10-20", "--mode", "cash", "--code", "QA12BC34DE")
	require.Error(t, err)
	assert.ErrorIs(t, err, validate.ErrInvalidAmount)
	assert.ErrorIs(t, err, validate.ErrInvalidPlatform)
	assert.ErrorIs(t, err, validate.ErrFutureDate)
	assert.ErrorIs(t, err, validate.ErrInvalidTransactionCode)

	out := mustRun(t, dir, "income", "list")
	assert.Contains(t, out, "No income entries.")
}

func TestEntryAdd_UnknownCategory(t *testing.T) {
	dir := initDir(t)
	_, err := runBoda(t, dir, "", "savings", "add", "--amount", "100", "--category", "holiday")
	assert.ErrorIs(t, err, validate.ErrInvalidCategory)
}

func TestEntryAdd_MissingRequiredFlag(t *testing.T) {
	dir := initDir(t)
	_, err := runBoda(t, dir, "", "expense", "add", "--category", "fuel")
	assert.ErrorContains(t, err, `required flag(s) "amount" not set`)
}

func TestEntryAdd_DuplicateCode(t *testing.T) {
	dir := initDir(t)
	mustRun(t, dir, "income", "add", "--amount", "100", "--platform", "uber", "--mode", "mpesa", "--code", "QA12BC34DE")
	_, err := runBoda(t, dir, "", "expense", "add", "--amount", "50", "--category", "food", "--mode", "mpesa", "--code", "QA12BC34DE")
	assert.ErrorIs(t, err, ledger.ErrDuplicateTransactionCode)
}

func TestEntryDelete_OutOfRange(t *testing.T) {
	dir := initDir(t)
	_, err := runBoda(t, dir, "", "expense", "delete", "1")
	assert.ErrorIs(t, err, validate.ErrInvalidIndex)
}
