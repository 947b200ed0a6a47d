// Package contacts keeps the append-only log of M-Pesa counterparties.
package contacts

import (
	"context"
	"fmt"

	"github.com/boda-dev/boda/internal/model"
)

// Store appends and lists contact sightings.
type Store interface {
	Append(ctx context.Context, c model.Contact) error
	List(ctx context.Context) ([]model.Contact, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Open returns the store for backend at path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendJSON, "":
		return NewJSONStore(path), nil
	case BackendSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown contacts backend %q (want json or sqlite)", backend)
	}
}

// Latest returns the most recent sighting of phone.
func Latest(contacts []model.Contact, phone string) (model.Contact, bool) {
	for i := len(contacts) - 1; i >= 0; i-- {
		if contacts[i].Phone == phone {
			return contacts[i], true
		}
	}
	return model.Contact{}, false
}

// LatestCategory returns the category of the most recent categorized
// sighting of phone, or "".
func LatestCategory(contacts []model.Contact, phone string) string {
	for i := len(contacts) - 1; i >= 0; i-- {
		if contacts[i].Phone == phone && contacts[i].Category != "" {
			return contacts[i].Category
		}
	}
	return ""
}
