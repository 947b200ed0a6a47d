package model

// Identity is the owner of the M-Pesa line the ledger reconciles against.
type Identity struct {
	Name  string
	Phone string
}

// Settings are the ledger-wide switches read by reporting and reconciliation.
type Settings struct {
	// SavingsSwitch folds income left over after expenses into reported savings.
	SavingsSwitch bool
	Identity      Identity
}
