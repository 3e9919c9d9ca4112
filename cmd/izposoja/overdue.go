package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/pricing"
)

func newOverdueCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "List active rentals past their scheduled return date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDatabase(opts.cfg.DBPath)
			if err != nil {
				return err
			}
			defer database.Close()

			eng, err := newEngine(database, opts.cfg)
			if err != nil {
				return err
			}

			rentals, err := eng.rentals.ListOverdue(cmd.Context())
			if err != nil {
				return err
			}
			return printOverdue(cmd.OutOrStdout(), rentals, eng.rentals.Policy().DailyLateFee, time.Now())
		},
	}
}

// printOverdue writes one line per rental with the late fee accrued up to now.
func printOverdue(w io.Writer, rentals []model.Rental, dailyRate decimal.Decimal, now time.Time) error {
	if len(rentals) == 0 {
		_, err := fmt.Fprintln(w, "No overdue rentals.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCUSTOMER\tCOSTUME\tQTY\tDUE\tDAYS LATE\tLATE FEE")
	for _, r := range rentals {
		fee := pricing.LateFee(dailyRate, r.ScheduledReturn, now, r.Quantity)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%d\t%s\n",
			r.ID, r.CustomerName, r.CostumeName, r.Quantity,
			r.ScheduledReturn.Format("2006-01-02"),
			pricing.DaysLate(r.ScheduledReturn, now),
			pricing.FormatIDR(fee))
	}
	return tw.Flush()
}
