package commands

import (
	"github.com/spf13/cobra"

	"github.com/boda-dev/boda/internal/contacts"
	"github.com/boda-dev/boda/internal/model"
	"github.com/boda-dev/boda/internal/validate"
)

func newContactsCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Counterparties seen in imported messages",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every recorded sighting, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(a *app) error {
				list, err := listContacts(cmd, a)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					printf(cmd, "No contacts yet.\n")
					return nil
				}
				for _, c := range list {
					printf(cmd, "%s %s  %s  %s", c.Date, c.Time, c.Phone, c.Name)
					if c.Category != "" {
						printf(cmd, "  [%s]", c.Category)
					}
					printf(cmd, "\n")
				}
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <phone>",
		Short: "Show the latest sighting of a phone number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(a *app) error {
				phone, err := validate.Phone(args[0])
				if err != nil {
					return err
				}
				list, err := listContacts(cmd, a)
				if err != nil {
					return err
				}
				c, ok := contacts.Latest(list, phone)
				if !ok {
					printf(cmd, "No contact with phone %s.\n", phone)
					return nil
				}
				category := contacts.LatestCategory(list, phone)
				if category == "" {
					category = "(none)"
				}
				printf(cmd, "%s  %s\nLast seen: %s %s\nCategory: %s\n", c.Phone, c.Name, c.Date, c.Time, category)
				return nil
			})
		},
	})
	return cmd
}

func listContacts(cmd *cobra.Command, a *app) ([]model.Contact, error) {
	store, err := contacts.Open(a.cfg.Contacts.Backend, a.cfg.Resolve(a.cfg.Contacts.Path))
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.List(cmd.Context())
}
