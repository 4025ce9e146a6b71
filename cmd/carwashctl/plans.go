package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aquaclean/carwash-api/internal/domain"
)

func newPlansCmd() *cobra.Command {
	var duration string
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Price every subscription plan for a duration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := domain.Duration(duration)
			if !d.Valid() {
				return fmt.Errorf("unknown duration %q (expected 1-month, 6-month or 1-year)", duration)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Plans for %s (%d months)\n\n", d, d.Months())
			for _, p := range domain.Plans() {
				q := p.Quote(d)
				fmt.Fprintf(w, "  %-14s $%8.2f total  $%6.2f/mo", p.Name, q.Total, q.MonthlyEquivalent)
				if q.Savings > 0 {
					color.New(color.FgGreen).Fprintf(w, "  save $%.2f", q.Savings)
				}
				fmt.Fprintln(w)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&duration, "duration", "d", string(domain.DurationOneMonth), "subscription duration: 1-month, 6-month or 1-year")
	return cmd
}
