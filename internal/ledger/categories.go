package ledger

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/boda-dev/boda/internal/model"
	"github.com/boda-dev/boda/internal/validate"
)

// Categories returns the category names for kind. Income returns the fixed
// platform names.
func (d *Document) Categories(kind model.Kind) []string {
	if kind == model.KindIncome {
		out := make([]string, len(model.Platforms))
		for i, p := range model.Platforms {
			out[i] = string(p)
		}
		return out
	}
	src := d.categories[kind]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// AddCategory appends a new category and returns its stored name.
func (d *Document) AddCategory(kind model.Kind, name string) (string, error) {
	if err := editable(kind); err != nil {
		return "", err
	}
	name, err := normalizeName(name)
	if err != nil {
		return "", err
	}
	if i := indexFold(d.categories[kind], name); i >= 0 {
		return "", fmt.Errorf("%w: %q", ErrDuplicateCategory, d.categories[kind][i])
	}
	d.categories[kind] = append(d.categories[kind], name)
	return name, nil
}

// RenameCategory renames the category at a 0-based index and rewrites every
// entry that references it. Either both the list and the entries change or
// nothing does.
func (d *Document) RenameCategory(kind model.Kind, index int, name string) (oldName, newName string, err error) {
	if err := editable(kind); err != nil {
		return "", "", err
	}
	list := d.categories[kind]
	if index < 0 || index >= len(list) {
		return "", "", fmt.Errorf("%w: %d (1-%d)", validate.ErrInvalidIndex, index+1, len(list))
	}
	newName, err = normalizeName(name)
	if err != nil {
		return "", "", err
	}
	if i := indexFold(list, newName); i >= 0 && i != index {
		return "", "", fmt.Errorf("%w: %q", ErrDuplicateCategory, list[i])
	}
	oldName = list[index]

	categories := make([]string, len(list))
	copy(categories, list)
	categories[index] = newName

	entries := make([]model.Entry, len(d.entries[kind]))
	copy(entries, d.entries[kind])
	for i := range entries {
		if entries[i].Category == oldName {
			entries[i].Category = newName
		}
	}

	d.categories[kind] = categories
	d.entries[kind] = entries
	return oldName, newName, nil
}

// DeleteCategory removes the category at a 0-based index. A category that
// entries still reference is kept and an *InUseError is returned.
func (d *Document) DeleteCategory(kind model.Kind, index int) (string, error) {
	if err := editable(kind); err != nil {
		return "", err
	}
	list := d.categories[kind]
	if index < 0 || index >= len(list) {
		return "", fmt.Errorf("%w: %d (1-%d)", validate.ErrInvalidIndex, index+1, len(list))
	}
	name := list[index]
	if n := d.References(kind, name); n > 0 {
		return "", &InUseError{Category: name, Count: n}
	}
	d.categories[kind] = append(list[:index:index], list[index+1:]...)
	return name, nil
}

// References counts the entries of kind whose category is name.
func (d *Document) References(kind model.Kind, name string) int {
	n := 0
	for _, e := range d.entries[kind] {
		if e.Category == name {
			n++
		}
	}
	return n
}

func editable(kind model.Kind) error {
	switch kind {
	case model.KindExpense, model.KindSavings:
		return nil
	case model.KindIncome:
		return ErrNoCategories
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func normalizeName(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "", ErrEmptyCategory
	}
	return cases.Title(language.Und).String(name), nil
}

func indexOf(list []string, name string) int {
	for i, c := range list {
		if c == name {
			return i
		}
	}
	return -1
}

func indexFold(list []string, name string) int {
	for i, c := range list {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}
