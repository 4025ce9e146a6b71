package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "carwashctl",
		Short:         "Operator tooling for the car wash API",
		Long:          `carwashctl prices subscription plans, explains route guard decisions and prints dashboard analytics.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPlansCmd())
	root.AddCommand(newRouteCmd())
	root.AddCommand(newAnalyticsCmd())
	return root
}
