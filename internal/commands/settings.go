package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/boda-dev/boda/internal/auditlog"
	"github.com/boda-dev/boda/internal/ledger"
)

func newSettingsCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show and change ledger settings",
	}
	cmd.AddCommand(
		newSettingsShowCommand(e),
		newSavingsSwitchCommand(e),
		newIdentityCommand(e),
	)
	return cmd
}

func newSettingsShowCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(a *app) error {
				doc, err := a.store.Load()
				if err != nil {
					return err
				}
				s := doc.Settings()
				printf(cmd, "Savings switch: %s\n", onOff(s.SavingsSwitch))
				printf(cmd, "Identity: %s %s\n", orNone(s.Identity.Name), orNone(s.Identity.Phone))
				printf(cmd, "Ledger: %s\n", a.store.Path())
				printf(cmd, "Contacts: %s (%s)\n", a.cfg.Resolve(a.cfg.Contacts.Path), a.cfg.Contacts.Backend)
				printf(cmd, "Import policy: %s\n", a.cfg.Import.Policy)
				return nil
			})
		},
	}
}

func newSavingsSwitchCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:       "savings-switch on|off",
		Short:     "Count income left after expenses as savings in reports",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			on := args[0] == "on"
			return e.run(cmd, func(a *app) error {
				err := a.update(func(d *ledger.Document) error {
					d.SetSavingsSwitch(on)
					return nil
				})
				if err != nil {
					return err
				}
				a.audit.Record(auditlog.ActionSavingsSwitch, onOff(on))
				printf(cmd, "Savings switch %s\n", onOff(on))
				return nil
			})
		},
	}
}

func newIdentityCommand(e *env) *cobra.Command {
	var name, phone string

	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Record the owner of the M-Pesa line; omitted flags keep their value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(a *app) error {
				var who string
				err := a.update(func(d *ledger.Document) error {
					id := d.Settings().Identity
					n, p := id.Name, id.Phone
					if cmd.Flags().Changed("name") {
						n = name
					}
					if cmd.Flags().Changed("phone") {
						p = phone
					}
					if err := d.SetIdentity(n, p); err != nil {
						return err
					}
					id = d.Settings().Identity
					who = strings.TrimSpace(fmt.Sprintf("%s %s", id.Name, id.Phone))
					return nil
				})
				if err != nil {
					return err
				}
				a.audit.Record(auditlog.ActionIdentity, who)
				printf(cmd, "Identity set to %s\n", orNone(who))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "account holder name")
	cmd.Flags().StringVar(&phone, "phone", "", "M-Pesa phone number, e.g. 0712345678")
	cmd.MarkFlagsOneRequired("name", "phone")

	return cmd
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
