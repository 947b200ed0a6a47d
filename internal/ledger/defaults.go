package ledger

// DefaultExpenseCategories returns the expense categories of a new ledger.
func DefaultExpenseCategories() []string {
	return []string{"BikeHire", "Airtime", "Fuel", "Food", "Rent", "Debts", "Clothes"}
}

// DefaultSavingsCategories returns the savings categories of a new ledger.
func DefaultSavingsCategories() []string {
	return []string{"EmergencySavings"}
}
