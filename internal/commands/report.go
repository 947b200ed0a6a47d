package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/boda-dev/boda/internal/isoweek"
	"github.com/boda-dev/boda/internal/report"
	"github.com/boda-dev/boda/internal/validate"
)

func newReportCommand(e *env) *cobra.Command {
	var date, week, month string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show balances and breakdowns for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(a *app) error {
				f, err := reportFilter(date, week, month, a.today())
				if err != nil {
					return err
				}
				doc, err := a.store.Load()
				if err != nil {
					return err
				}
				r := report.Compute(doc, f, doc.Settings())
				return report.Render(cmd.OutOrStdout(), r, f.Period())
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "a single day: YYYY-MM-DD, MM-DD or DD")
	cmd.Flags().StringVar(&week, "week", "", "an ISO week: YYYY-Www")
	cmd.Flags().StringVar(&month, "month", "", "a calendar month: YYYY-MM")
	cmd.MarkFlagsMutuallyExclusive("date", "week", "month")

	return cmd
}

func reportFilter(date, week, month string, today time.Time) (report.Filter, error) {
	switch {
	case date != "":
		d, err := validate.ParseDate(date, today)
		if err != nil {
			return report.Filter{}, err
		}
		return report.OnDate(d), nil
	case week != "":
		y, w, err := isoweek.Parse(week)
		if err != nil {
			return report.Filter{}, err
		}
		return report.InWeek(y, w), nil
	case month != "":
		m, err := time.Parse("2006-01", month)
		if err != nil {
			return report.Filter{}, fmt.Errorf("invalid month %q, use YYYY-MM", month)
		}
		return report.InMonth(m.Year(), m.Month()), nil
	default:
		return report.All(), nil
	}
}
