package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boda-dev/boda/internal/auditlog"
	"github.com/boda-dev/boda/internal/ledger"
	"github.com/boda-dev/boda/internal/model"
	"github.com/boda-dev/boda/internal/validate"
)

func newCategoryCommand(e *env) *cobra.Command {
	var kindName string

	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage expense and savings categories",
	}
	cmd.PersistentFlags().StringVar(&kindName, "kind", string(model.KindExpense), "expense or savings (list also accepts income)")

	kind := func() (model.Kind, error) {
		switch k := model.Kind(kindName); k {
		case model.KindIncome, model.KindExpense, model.KindSavings:
			return k, nil
		default:
			return "", fmt.Errorf("%w: %q", ledger.ErrUnknownKind, kindName)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List categories with their numbers",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				k, err := kind()
				if err != nil {
					return err
				}
				return e.run(cmd, func(a *app) error {
					doc, err := a.store.Load()
					if err != nil {
						return err
					}
					for i, name := range doc.Categories(k) {
						printf(cmd, "%d. %s (%d entries)\n", i+1, name, doc.References(k, name))
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "add <name>",
			Short: "Add a category",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				k, err := kind()
				if err != nil {
					return err
				}
				return e.run(cmd, func(a *app) error {
					var added string
					err := a.update(func(d *ledger.Document) error {
						var err error
						added, err = d.AddCategory(k, args[0])
						return err
					})
					if err != nil {
						return err
					}
					a.audit.Recordf(auditlog.ActionAddCategory, "%s %s", k, added)
					printf(cmd, "Added %s category %s\n", k, added)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "rename <number> <name>",
			Short: "Rename a category and every entry that uses it",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				k, err := kind()
				if err != nil {
					return err
				}
				return e.run(cmd, func(a *app) error {
					var oldName, newName string
					var moved int
					err := a.update(func(d *ledger.Document) error {
						i, err := categoryIndex(d, k, args[0])
						if err != nil {
							return err
						}
						moved = d.References(k, d.Categories(k)[i])
						oldName, newName, err = d.RenameCategory(k, i, args[1])
						return err
					})
					if err != nil {
						return err
					}
					a.audit.Recordf(auditlog.ActionRenameCategory, "%s %s -> %s (%d entries)", k, oldName, newName, moved)
					printf(cmd, "Renamed %s category %s to %s (%d entries updated)\n", k, oldName, newName, moved)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "delete <number>",
			Short: "Delete a category no entry uses",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				k, err := kind()
				if err != nil {
					return err
				}
				return e.run(cmd, func(a *app) error {
					var removed string
					err := a.update(func(d *ledger.Document) error {
						i, err := categoryIndex(d, k, args[0])
						if err != nil {
							return err
						}
						removed, err = d.DeleteCategory(k, i)
						return err
					})
					if err != nil {
						return err
					}
					a.audit.Recordf(auditlog.ActionDeleteCategory, "%s %s", k, removed)
					printf(cmd, "Deleted %s category %s\n", k, removed)
					return nil
				})
			},
		},
	)
	return cmd
}

// categoryIndex resolves a 1-based category number. Income has no list to
// index into.
func categoryIndex(d *ledger.Document, k model.Kind, text string) (int, error) {
	if k == model.KindIncome {
		return 0, ledger.ErrNoCategories
	}
	return validate.Index(text, len(d.Categories(k)))
}
