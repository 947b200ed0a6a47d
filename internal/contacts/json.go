package contacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/boda-dev/boda/internal/model"
)

// JSONStore keeps contacts as a flat JSON list in one file.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSONStore at path. The file is created on first
// Append.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// List reads every contact in file order.
func (s *JSONStore) List(_ context.Context) ([]model.Contact, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading contacts: %w", err)
	}
	var contacts []model.Contact
	if err := json.Unmarshal(data, &contacts); err != nil {
		return nil, fmt.Errorf("parsing contacts %s: %w", s.path, err)
	}
	return contacts, nil
}

// Append adds c to the end of the list and rewrites the file.
func (s *JSONStore) Append(ctx context.Context, c model.Contact) error {
	contacts, err := s.List(ctx)
	if err != nil {
		return err
	}
	contacts = append(contacts, c)

	data, err := json.MarshalIndent(contacts, "", "    ")
	if err != nil {
		return fmt.Errorf("marshaling contacts: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating contacts dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing contacts: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing contacts: %w", err)
	}
	return nil
}

// Close is a no-op.
func (s *JSONStore) Close() error { return nil }
