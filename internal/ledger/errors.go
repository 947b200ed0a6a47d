package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateCategory        = errors.New("category already exists")
	ErrEmptyCategory            = errors.New("category name is empty")
	ErrCategoryInUse            = errors.New("category in use")
	ErrNoCategories             = errors.New("income platforms are fixed and have no category list")
	ErrUnknownKind              = errors.New("unknown entry kind")
	ErrDuplicateTransactionCode = errors.New("transaction code already recorded")
)

// ValidationError is one violated entry invariant.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// InUseError reports how many entries still reference a category.
type InUseError struct {
	Category string
	Count    int
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("category %q is used by %d entries", e.Category, e.Count)
}

func (e *InUseError) Is(target error) bool { return target == ErrCategoryInUse }
