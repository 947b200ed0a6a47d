package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/boda-dev/boda/internal/auditlog"
	"github.com/boda-dev/boda/internal/categorize"
	"github.com/boda-dev/boda/internal/contacts"
	"github.com/boda-dev/boda/internal/message"
	"github.com/boda-dev/boda/internal/reconcile"
)

func newImportCommand(e *env) *cobra.Command {
	var policyName string

	cmd := &cobra.Command{
		Use:   "import [file ...]",
		Short: "Reconcile pasted M-Pesa messages into the ledger",
		Long: `Reads M-Pesa notification messages, one per line, verifies each against
the running M-Pesa balance and records the accepted ones.

With no arguments the review queue is retried first, then every .txt file
in the import directory is processed and moved to import/processed. Use -
to read from standard input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(a *app) error {
				name := policyName
				if name == "" {
					name = a.cfg.Import.Policy
				}
				policy, err := reconcile.ParsePolicy(name)
				if err != nil {
					return err
				}
				if policy == reconcile.PolicyPrompt && slices.Contains(args, "-") {
					return errors.New("cannot prompt while reading messages from stdin; use --policy skip or queue")
				}
				return runImport(cmd, a, policy, args)
			})
		},
	}

	cmd.Flags().StringVar(&policyName, "policy", "", "uncategorized transactions: prompt, skip or queue (default from config)")

	return cmd
}

// importSource is one batch of lines and what to do once it is stored.
type importSource struct {
	name  string
	lines []string
	done  func() error
}

func runImport(cmd *cobra.Command, a *app, policy reconcile.Policy, args []string) error {
	ctx := cmd.Context()

	sources, err := importSources(cmd, a, args)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		printf(cmd, "Nothing to import.\n")
		return nil
	}

	rules, err := categorize.Load(a.cfg.Resolve(a.cfg.Categories.RulesFile))
	if err != nil {
		return err
	}
	tolerance, err := a.cfg.Tolerance()
	if err != nil {
		return err
	}

	store, err := contacts.Open(a.cfg.Contacts.Backend, a.cfg.Resolve(a.cfg.Contacts.Path))
	if err != nil {
		return err
	}
	defer store.Close()
	known, err := store.List(ctx)
	if err != nil {
		return err
	}

	var decider reconcile.Decider
	switch policy {
	case reconcile.PolicyPrompt:
		d := reconcile.NewPromptDecider(cmd.InOrStdin(), cmd.OutOrStdout())
		d.Strict = a.cfg.Categories.StrictPrefix
		decider = d
	default:
		decider = reconcile.PolicyDecider{Policy: policy, QueuePath: a.cfg.Resolve(a.cfg.Import.QueueFile)}
	}

	proc := reconcile.NewProcessor(message.NewParser(), rules, decider,
		reconcile.WithTolerance(tolerance),
		reconcile.WithSuggestions(func(phone string) string { return contacts.LatestCategory(known, phone) }),
		reconcile.WithClock(a.now),
		reconcile.WithLogger(a.logger.With("component", "reconcile")),
	)

	for _, src := range sources {
		doc, err := a.store.Load()
		if err != nil {
			return err
		}
		res, runErr := proc.Run(ctx, doc, src.lines)

		// Whatever was applied before a failure is kept.
		if res.Count(reconcile.StatusApplied) > 0 {
			if err := a.store.Save(doc); err != nil {
				return err
			}
		}
		for _, c := range res.Contacts {
			if err := store.Append(ctx, c); err != nil {
				return err
			}
			known = append(known, c)
		}

		recordOutcomes(a.audit, src.name, res)
		printOutcomes(cmd, src.name, res)

		if runErr != nil {
			return fmt.Errorf("importing %s: %w", src.name, runErr)
		}
		if src.done != nil {
			if err := src.done(); err != nil {
				return err
			}
		}
	}
	return nil
}

func importSources(cmd *cobra.Command, a *app, args []string) ([]importSource, error) {
	if len(args) == 0 {
		var sources []importSource

		// Queued messages are older than anything new in the import dir.
		queuePath := a.cfg.Resolve(a.cfg.Import.QueueFile)
		queue, err := message.ReadQueue(queuePath)
		if err != nil {
			return nil, err
		}
		if len(queue.Lines) > 0 {
			sources = append(sources, importSource{
				name:  a.cfg.Import.QueueFile,
				lines: queue.Lines,
				done:  queue.Consume,
			})
		}

		dir := a.cfg.Resolve(a.cfg.Import.Dir)
		files, err := message.Scan(dir)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if filepath.Clean(f.Path) == filepath.Clean(queuePath) {
				continue
			}
			lines, err := readLines(f.Path)
			if err != nil {
				return nil, err
			}
			sources = append(sources, importSource{
				name:  f.Name,
				lines: lines,
				done:  func() error { return message.MarkProcessed(dir, f.Name) },
			})
		}
		return sources, nil
	}

	var sources []importSource
	for _, arg := range args {
		if arg == "-" {
			lines, err := message.ParseBatch(cmd.InOrStdin())
			if err != nil {
				return nil, fmt.Errorf("reading stdin: %w", err)
			}
			sources = append(sources, importSource{name: "stdin", lines: lines})
			continue
		}
		lines, err := readLines(arg)
		if err != nil {
			return nil, err
		}
		sources = append(sources, importSource{name: arg, lines: lines})
	}
	return sources, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	lines, err := message.ParseBatch(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}

func recordOutcomes(audit *auditlog.Logger, source string, res *reconcile.Result) {
	for _, o := range res.Outcomes {
		switch o.Status {
		case reconcile.StatusSkipped:
			audit.Recordf(auditlog.ActionImportSkip, "%s %s", res.BatchID, o.Transaction.TransactionCode)
		case reconcile.StatusRejected:
			audit.Recordf(auditlog.ActionImportReject, "%s %s: %v", res.BatchID, o.Transaction.TransactionCode, o.Err)
		}
	}
	audit.Recordf(auditlog.ActionImportBatch, "%s %s: %d applied, %d skipped, %d rejected, %d duplicate, %d unparseable, %d invalid",
		res.BatchID, source,
		res.Count(reconcile.StatusApplied), res.Count(reconcile.StatusSkipped), res.Count(reconcile.StatusRejected),
		res.Count(reconcile.StatusDuplicate), res.Count(reconcile.StatusUnparseable), res.Count(reconcile.StatusInvalid))
}

func printOutcomes(cmd *cobra.Command, source string, res *reconcile.Result) {
	printf(cmd, "\n%s:\n", source)
	for _, o := range res.Outcomes {
		switch o.Status {
		case reconcile.StatusApplied:
			printf(cmd, "  line %d: %s %s\n", o.Line, o.Entry.Kind, describeEntry(o.Entry))
		case reconcile.StatusSkipped:
			printf(cmd, "  line %d: skipped %s\n", o.Line, o.Transaction.TransactionCode)
		default:
			printf(cmd, "  line %d: %s: %v\n", o.Line, o.Status, o.Err)
		}
	}
	printf(cmd, "%d of %d lines applied\n", res.Count(reconcile.StatusApplied), len(res.Outcomes))
}
