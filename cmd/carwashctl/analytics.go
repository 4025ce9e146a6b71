package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	memnotifications "github.com/aquaclean/carwash-api/internal/adapters/memory/notificationrepo"
	memrevenue "github.com/aquaclean/carwash-api/internal/adapters/memory/revenuerepo"
	memusers "github.com/aquaclean/carwash-api/internal/adapters/memory/userrepo"
	postgres "github.com/aquaclean/carwash-api/internal/adapters/postgres"
	pgrevenue "github.com/aquaclean/carwash-api/internal/adapters/postgres/revenuerepo"
	pgusers "github.com/aquaclean/carwash-api/internal/adapters/postgres/userrepo"
	"github.com/aquaclean/carwash-api/internal/adapters/seed"
	"github.com/aquaclean/carwash-api/internal/app/analytics"
	"github.com/aquaclean/carwash-api/internal/app/auth"
	"github.com/aquaclean/carwash-api/internal/domain"
	"github.com/aquaclean/carwash-api/internal/platform/config"
)

func newAnalyticsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Print the admin dashboard analytics",
		Long: `Reads users and revenue from Postgres when STORAGE_BACKEND=postgres.
Otherwise the demo dataset is loaded into memory and summarized.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			svc, closeFn, err := analyticsService(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			sum, err := svc.Summary(ctx)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), sum)
			return nil
		},
	}
}

func analyticsService(ctx context.Context, cfg config.Config) (*analytics.Service, func(), error) {
	if cfg.StorageBackend == config.BackendPostgres {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		return analytics.NewService(pgusers.NewRepo(pool), pgrevenue.NewRepo(pool)), pool.Close, nil
	}

	users := memusers.NewRepo()
	revenue := memrevenue.NewRepo()
	target := seed.Target{Users: users, Revenue: revenue, Notifications: memnotifications.NewRepo()}
	if _, err := seed.Load(ctx, target, auth.NewBcryptHasher(4), cfg.DemoPassword, time.Now().UTC()); err != nil {
		return nil, nil, fmt.Errorf("seed: %w", err)
	}
	return analytics.NewService(users, revenue), func() {}, nil
}

func printSummary(w io.Writer, s analytics.Summary) {
	bold := color.New(color.Bold)

	bold.Fprintln(w, "Overview")
	fmt.Fprintf(w, "  Users:                %d\n", s.TotalUsers)
	fmt.Fprintf(w, "  Active subscriptions: %d\n", s.ActiveSubscriptions)
	fmt.Fprintf(w, "  Cars:                 %d\n", s.TotalCars)
	fmt.Fprintf(w, "  Revenue:              $%.2f\n", s.TotalRevenue)
	fmt.Fprintf(w, "  Average rating:       %.1f\n", s.AverageRating)

	fmt.Fprintln(w)
	bold.Fprintln(w, "Subscriptions")
	for _, t := range domain.Tiers {
		fmt.Fprintf(w, "  %-8s %d\n", t, s.SubscriptionDistribution[t])
	}

	fmt.Fprintln(w)
	bold.Fprintln(w, "Popular models")
	if len(s.PopularModels) == 0 {
		color.New(color.FgYellow).Fprintln(w, "  no cars registered")
	}
	for _, m := range s.PopularModels {
		fmt.Fprintf(w, "  %-20s %d\n", m.Model, m.Count)
	}

	fmt.Fprintln(w)
	bold.Fprintln(w, "Revenue by month")
	for _, r := range s.RevenueData {
		fmt.Fprintf(w, "  %s  $%9.2f  basic $%.2f  premium $%.2f  luxury $%.2f\n", r.Month, r.Total, r.Basic, r.Premium, r.Luxury)
	}
}
