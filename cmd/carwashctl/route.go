package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aquaclean/carwash-api/internal/app/guard"
)

func newRouteCmd() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "route <path>",
		Short: "Show what the route guard does for a client path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p guard.Principal
			switch role {
			case "anonymous", "":
				p = guard.Anonymous
			case "user":
				p = guard.Customer
			case "admin":
				p = guard.Admin
			default:
				return fmt.Errorf("unknown role %q (expected anonymous, user or admin)", role)
			}

			d := guard.Decide(args[0], p)
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s as %s: ", args[0], role)
			switch d.Outcome {
			case guard.Render:
				color.New(color.FgGreen).Fprint(w, d.Outcome)
			case guard.NotFound:
				color.New(color.FgRed).Fprint(w, d.Outcome)
			default:
				color.New(color.FgYellow).Fprint(w, d.Outcome)
			}
			if d.Location != "" {
				fmt.Fprintf(w, " -> %s", d.Location)
			}
			fmt.Fprintln(w)
			return nil
		},
	}
	cmd.Flags().StringVarP(&role, "role", "r", "anonymous", "caller role: anonymous, user or admin")
	return cmd
}
