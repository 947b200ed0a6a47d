package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boda-dev/boda/internal/ledger"
)

func TestCategory_ListAddRenameDelete(t *testing.T) {
	dir := initDir(t)

	out := mustRun(t, dir, "category", "list")
	assert.Contains(t, out, "1. BikeHire (0 entries)")
	assert.Contains(t, out, "7. Clothes (0 entries)")

	out = mustRun(t, dir, "category", "add", "  motor   insurance ")
	assert.Contains(t, out, "Added expense category Motor Insurance")

	mustRun(t, dir, "expense", "add", "--amount", "300", "--category", "fuel")
	mustRun(t, dir, "expense", "add", "--amount", "200", "--category", "fuel")

	out = mustRun(t, dir, "category", "rename", "3", "petrol")
	assert.Contains(t, out, "Renamed expense category Fuel to Petrol (2 entries updated)")
	out = mustRun(t, dir, "expense", "list")
	assert.Contains(t, out, "1. 2026-10-15 Petrol 300.00 KES")

	_, err := runBoda(t, dir, "", "category", "delete", "3")
	var inUse *ledger.InUseError
	require.ErrorAs(t, err, &inUse)
	assert.Equal(t, 2, inUse.Count)
	assert.ErrorIs(t, err, ledger.ErrCategoryInUse)

	out = mustRun(t, dir, "category", "delete", "8")
	assert.Contains(t, out, "Deleted expense category Motor Insurance")
}

func TestCategory_Savings(t *testing.T) {
	dir := initDir(t)
	mustRun(t, dir, "category", "add", "--kind", "savings", "school fees")

	out := mustRun(t, dir, "category", "list", "--kind", "savings")
	assert.Contains(t, out, "1. EmergencySavings")
	assert.Contains(t, out, "2. School Fees")
}

func TestCategory_DuplicateIgnoresCase(t *testing.T) {
	dir := initDir(t)
	_, err := runBoda(t, dir, "", "category", "add", "FUEL")
	assert.ErrorIs(t, err, ledger.ErrDuplicateCategory)
}

func TestCategory_IncomeIsFixed(t *testing.T) {
	dir := initDir(t)

	out := mustRun(t, dir, "category", "list", "--kind", "income")
	assert.Contains(t, out, "4. Offline")

	_, err := runBoda(t, dir, "", "category", "add", "--kind", "income", "Faras")
	assert.ErrorIs(t, err, ledger.ErrNoCategories)
	_, err = runBoda(t, dir, "", "category", "rename", "--kind", "income", "1", "Faras")
	assert.ErrorIs(t, err, ledger.ErrNoCategories)
}

func TestCategory_UnknownKind(t *testing.T) {
	_, err := runBoda(t, t.TempDir(), "", "category", "list", "--kind", "loans")
	assert.ErrorIs(t, err, ledger.ErrUnknownKind)
}
