package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	amqpevents "github.com/aquaclean/carwash-api/internal/adapters/amqp/events"
	"github.com/aquaclean/carwash-api/internal/adapters/httpapi"
	memevents "github.com/aquaclean/carwash-api/internal/adapters/memory/events"
	memidempotency "github.com/aquaclean/carwash-api/internal/adapters/memory/idempotency"
	memnotifications "github.com/aquaclean/carwash-api/internal/adapters/memory/notificationrepo"
	memrevenue "github.com/aquaclean/carwash-api/internal/adapters/memory/revenuerepo"
	memsessions "github.com/aquaclean/carwash-api/internal/adapters/memory/sessionstore"
	memusers "github.com/aquaclean/carwash-api/internal/adapters/memory/userrepo"
	postgres "github.com/aquaclean/carwash-api/internal/adapters/postgres"
	pgidempotency "github.com/aquaclean/carwash-api/internal/adapters/postgres/idempotency"
	pgnotifications "github.com/aquaclean/carwash-api/internal/adapters/postgres/notificationrepo"
	pgrevenue "github.com/aquaclean/carwash-api/internal/adapters/postgres/revenuerepo"
	pgsessions "github.com/aquaclean/carwash-api/internal/adapters/postgres/sessionstore"
	pgusers "github.com/aquaclean/carwash-api/internal/adapters/postgres/userrepo"
	redissessions "github.com/aquaclean/carwash-api/internal/adapters/redis/sessionstore"
	"github.com/aquaclean/carwash-api/internal/adapters/seed"
	"github.com/aquaclean/carwash-api/internal/app/admin"
	"github.com/aquaclean/carwash-api/internal/app/analytics"
	"github.com/aquaclean/carwash-api/internal/app/auth"
	"github.com/aquaclean/carwash-api/internal/app/customer"
	platformclock "github.com/aquaclean/carwash-api/internal/platform/clock"
	"github.com/aquaclean/carwash-api/internal/platform/config"
	"github.com/aquaclean/carwash-api/internal/platform/logging"
	"github.com/aquaclean/carwash-api/internal/ports/out/events"
	idempotencyport "github.com/aquaclean/carwash-api/internal/ports/out/idempotency"
	notificationport "github.com/aquaclean/carwash-api/internal/ports/out/notificationrepo"
	revenueport "github.com/aquaclean/carwash-api/internal/ports/out/revenuerepo"
	sessionport "github.com/aquaclean/carwash-api/internal/ports/out/sessionstore"
	userport "github.com/aquaclean/carwash-api/internal/ports/out/userrepo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	if err := run(cfg, log); err != nil {
		log.Error("api exited", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := platformclock.NewSystemClock()

	var (
		users         userport.Repository
		notifications notificationport.Repository
		revenue       revenueport.Repository
		sessions      sessionport.Store
		idemStore     idempotencyport.Store
		publisher     events.Publisher
	)

	var pool *pgxpool.Pool
	if cfg.StorageBackend == config.BackendPostgres || cfg.SessionBackend == config.BackendPostgres {
		p, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer p.Close()
		if err := postgres.Migrate(ctx, p); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		pool = p
	}

	switch cfg.StorageBackend {
	case config.BackendPostgres:
		users = pgusers.NewRepo(pool)
		notifications = pgnotifications.NewRepo(pool)
		revenue = pgrevenue.NewRepo(pool)
		idemStore = pgidempotency.NewStore(pool)
	default:
		users = memusers.NewRepo()
		notifications = memnotifications.NewRepo()
		revenue = memrevenue.NewRepo()
		idemStore = memidempotency.NewStore()
	}

	switch cfg.SessionBackend {
	case config.BackendRedis:
		client, err := redissessions.Connect(ctx, redissessions.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer func() { _ = client.Close() }()
		sessions = redissessions.NewStore(client, clk)
	case config.BackendPostgres:
		sessions = pgsessions.NewStore(pool)
	default:
		sessions = memsessions.NewStore()
	}

	switch cfg.EventsBackend {
	case config.BackendAMQP:
		p, err := amqpevents.Dial(cfg.AMQPURL, cfg.NotificationsQueue, log)
		if err != nil {
			return fmt.Errorf("amqp: %w", err)
		}
		defer func() { _ = p.Close() }()
		publisher = p
	default:
		publisher = memevents.NewRecorder()
	}

	hasher := auth.NewBcryptHasher(0)
	if cfg.SeedDemoData {
		st, err := seed.Load(ctx, seed.Target{Users: users, Revenue: revenue, Notifications: notifications}, hasher, cfg.DemoPassword, clk.Now())
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		log.Info("demo data loaded",
			zap.Int("users", st.Users),
			zap.Int("revenue_months", st.Revenue),
			zap.Int("notifications", st.Notifications),
		)
	}

	authSvc := auth.NewService(users, sessions, clk, hasher, auth.Config{
		AdminEmail:         cfg.AdminEmail,
		AdminPassword:      cfg.AdminPassword,
		SessionTTL:         cfg.SessionTTL,
		SignupEnabled:      cfg.SignupEnabled,
		LoginRatePerMinute: cfg.LoginRatePerMinute,
		LoginBurst:         cfg.LoginBurst,
	}, log.Named("auth"))
	adminSvc := admin.NewService(admin.Deps{
		Accounts:      authSvc,
		Users:         users,
		Notifications: notifications,
		Revenue:       revenue,
		Publisher:     publisher,
		Clock:         clk,
		Logger:        log.Named("admin"),
	}, admin.Settings{
		Business: admin.Business{
			Name:    cfg.BusinessName,
			Email:   cfg.BusinessEmail,
			Phone:   cfg.BusinessPhone,
			Address: cfg.BusinessAddress,
		},
		SessionTimeoutMinutes: int(cfg.SessionTTL / time.Minute),
		AllowUserRegistration: cfg.SignupEnabled,
	})

	api := httpapi.NewServer(
		authSvc,
		customer.NewService(authSvc, notifications, clk),
		adminSvc,
		analytics.NewService(users, revenue),
		idemStore,
		clk,
		log.Named("http"),
	)
	handler := httpapi.NewRouter(api, httpapi.RouterOptions{
		Logger:         log.Named("http"),
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	go purgeIdempotencyRecords(ctx, idemStore, clk, cfg.IdempotencyTTL, log.Named("idempotency"))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("api listening",
			zap.String("addr", srv.Addr),
			zap.String("storage", cfg.StorageBackend),
			zap.String("sessions", cfg.SessionBackend),
			zap.String("events", cfg.EventsBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// purgeIdempotencyRecords drops replayable responses older than ttl, once per hour until ctx ends.
func purgeIdempotencyRecords(ctx context.Context, store idempotencyport.Store, clk platformclock.SystemClock, ttl time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		n, err := store.Purge(ctx, clk.Now().Add(-ttl))
		switch {
		case err != nil && ctx.Err() == nil:
			log.Warn("purge failed", zap.Error(err))
		case n > 0:
			log.Info("purged idempotency records", zap.Int("count", n))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
