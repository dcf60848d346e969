// @title Pulse Social API
// @version 1.0
// @description Multi-platform social posting with usage-limited plans.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.apikey CronSecret
// @in header
// @name Authorization
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

	"github.com/pulsesocial/pulse/internal/api/handlers"
	"github.com/pulsesocial/pulse/internal/api/middleware"
	"github.com/pulsesocial/pulse/internal/api/router"
	"github.com/pulsesocial/pulse/internal/config"
	"github.com/pulsesocial/pulse/internal/pkg/logger"
	"github.com/pulsesocial/pulse/internal/pkg/validator"
	"github.com/pulsesocial/pulse/internal/providers"
	"github.com/pulsesocial/pulse/internal/repository/postgres"
	"github.com/pulsesocial/pulse/internal/services"
	"github.com/pulsesocial/pulse/migrations"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pulse: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	schema, err := migrations.GetFS(cfg.Database.Driver)
	if err != nil {
		return err
	}
	applied, err := postgres.RunMigrations(ctx, db, schema)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if len(applied) > 0 {
		log.With("migrations", applied).Info("Applied migrations")
	}

	// Repositories
	accountRepo := postgres.NewAccountRepository(db)
	postRepo := postgres.NewPostLogRepository(db)

	// External providers
	late := providers.NewLateClient(providers.LateConfig{
		BaseURL: cfg.Late.BaseURL,
		APIKey:  cfg.Late.APIKey,
		Timeout: cfg.Late.Timeout,
	}, log)
	stripeGateway := providers.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, nil, log)

	// Services
	accountService := services.NewAccountService(accountRepo, postRepo, cfg.Auth.TrialPeriod, cfg.Auth.BCryptCost, log)
	postService := services.NewPostService(accountRepo, postRepo, late, log)
	billingService := services.NewBillingService(accountRepo, stripeGateway, services.BillingConfig{
		AppURL:      cfg.Stripe.AppURL,
		TrialDays:   cfg.Stripe.TrialDays,
		PlanPrices:  cfg.Stripe.PlanPrices,
		AddonPrices: cfg.Stripe.AddonPrices,
	}, log)
	maintenanceService := services.NewMaintenanceService(accountRepo, log)
	profileService := services.NewProfileService(accountRepo, late, log)
	analyticsService := services.NewAnalyticsService(accountRepo, late, log)

	var jobs handlers.JobLister
	if cfg.Cron.Enabled {
		scheduler := services.NewScheduler(maintenanceService, services.SchedulerConfig{
			MonthlyResetSpec: cfg.Cron.MonthlyResetSpec,
			TrialExpirySpec:  cfg.Cron.TrialExpirySpec,
		}, log)
		if err := scheduler.Start(); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer scheduler.Stop()
		jobs = scheduler
	}

	val := validator.New()
	h := &router.Handlers{
		Health:      handlers.NewHealthHandler(db, late, log),
		Auth:        handlers.NewAuthHandler(accountService, cfg, log, val),
		Post:        handlers.NewPostHandler(postService, accountService, log, val),
		Billing:     handlers.NewBillingHandler(billingService, log, val),
		Webhook:     handlers.NewWebhookHandler(stripeGateway, billingService, log),
		Maintenance: handlers.NewMaintenanceHandler(maintenanceService, jobs, log),
		Profile:     handlers.NewProfileHandler(profileService, log, val),
		Analytics:   handlers.NewAnalyticsHandler(analyticsService, log),
	}

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	go limiter.Run(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.New(cfg, log, limiter, h),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithFields(map[string]interface{}{
			"addr":        srv.Addr,
			"environment": cfg.Server.Environment,
			"cron":        cfg.Cron.Enabled,
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
