package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voicedrop/voicedrop-api/internal/config"
	"github.com/voicedrop/voicedrop-api/internal/delivery"
	"github.com/voicedrop/voicedrop-api/internal/email"
	authhandler "github.com/voicedrop/voicedrop-api/internal/handler/auth"
	billinghandler "github.com/voicedrop/voicedrop-api/internal/handler/billing"
	campaignhandler "github.com/voicedrop/voicedrop-api/internal/handler/campaign"
	customerhandler "github.com/voicedrop/voicedrop-api/internal/handler/customer"
	dashboardhandler "github.com/voicedrop/voicedrop-api/internal/handler/dashboard"
	orghandler "github.com/voicedrop/voicedrop-api/internal/handler/organization"
	webhookhandler "github.com/voicedrop/voicedrop-api/internal/handler/webhook"
	"github.com/voicedrop/voicedrop-api/internal/identity"
	"github.com/voicedrop/voicedrop-api/internal/middleware"
	"github.com/voicedrop/voicedrop-api/internal/repository"
	"github.com/voicedrop/voicedrop-api/internal/repository/postgres"
	"github.com/voicedrop/voicedrop-api/internal/router"
	accountService "github.com/voicedrop/voicedrop-api/internal/service/account"
	authService "github.com/voicedrop/voicedrop-api/internal/service/auth"
	billingService "github.com/voicedrop/voicedrop-api/internal/service/billing"
	campaignService "github.com/voicedrop/voicedrop-api/internal/service/campaign"
	customerService "github.com/voicedrop/voicedrop-api/internal/service/customer"
	dashboardService "github.com/voicedrop/voicedrop-api/internal/service/dashboard"
	"github.com/voicedrop/voicedrop-api/pkg/auth"
	"github.com/voicedrop/voicedrop-api/pkg/logger"
	"github.com/voicedrop/voicedrop-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:  logger.InfoLevel,
		Pretty: cfg.Server.IsDevelopment(),
	})
	zl := log.Zerolog()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics("voicedrop")

	orgRepo := postgres.NewOrganizationRepository(db)
	customerRepo := postgres.NewCustomerRepository(db)
	campaignRepo := postgres.NewCampaignRepository(db)
	dropRepo := postgres.NewDropRepository(db)
	statsRepo := postgres.NewStatsRepository(db)

	// Demo mode swaps the identity, delivery and email backends for local
	// fakes; everything downstream is wired identically.
	var (
		userRepo     repository.UserRepository
		identityProv identity.Provider
		deliveryProv delivery.Provider
		emailSvc     email.Service
	)
	if cfg.Server.DemoMode {
		log.Warn("running in demo mode, do not use in production")
		userRepo = identity.NewDemoUserRepository()
		identityProv = identity.NewDemoProvider()
		deliveryProv = delivery.NewDemoProvider()
		emailSvc = email.NoopService{}
	} else {
		userRepo = postgres.NewUserRepository(db)
		identityProv = identity.NewPostgresProvider(db, userRepo)
		deliveryProv = delivery.NewHTTPProvider(cfg.Delivery)
		emailSvc = email.NewService(cfg.SMTP)
	}

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry)

	authSvc := authService.NewService(identityProv, userRepo, jwtSvc, zl)
	accountSvc := accountService.NewService(identityProv, orgRepo, emailSvc, jwtSvc, zl)
	customerSvc := customerService.NewService(customerRepo)
	dashboardSvc := dashboardService.NewService(statsRepo, zl)
	campaignSvc := campaignService.NewService(campaignRepo, dropRepo, customerRepo, orgRepo, deliveryProv, dashboardSvc, m, zl)
	billingSvc := billingService.NewService(orgRepo, cfg.Stripe, m, zl)

	authMW := middleware.NewAuthMiddleware(authSvc, cfg.JWT.CookieName)
	callWindow, err := middleware.NewCallWindow(cfg.Compliance, m)
	if err != nil {
		log.Fatal(err, "failed to initialize call window")
	}
	limiter := middleware.NewWindowLimiter(cfg.RateLimit.Window, m)

	handlers := router.Handlers{
		Auth: authhandler.NewHandler(authSvc, accountSvc, cfg.JWT.CookieName,
			int(cfg.JWT.Expiry.Seconds()), !cfg.Server.IsDevelopment()),
		Customer:     customerhandler.NewHandler(customerSvc),
		Campaign:     campaignhandler.NewHandler(campaignSvc),
		Billing:      billinghandler.NewHandler(billingSvc, accountSvc),
		Webhook:      webhookhandler.NewHandler(billingSvc, campaignSvc),
		Dashboard:    dashboardhandler.NewHandler(dashboardSvc),
		Organization: orghandler.NewHandler(accountSvc),
	}

	r := router.New(cfg, zl, authMW, callWindow, limiter, handlers, db)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "forced shutdown")
	}
	log.Info("server stopped")
}
