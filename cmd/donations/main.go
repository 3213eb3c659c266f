package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rookgm/donations/config"
	"github.com/rookgm/donations/internal/auth"
	"github.com/rookgm/donations/internal/gateway"
	handler "github.com/rookgm/donations/internal/handler/http"
	"github.com/rookgm/donations/internal/logger"
	"github.com/rookgm/donations/internal/middleware"
	"github.com/rookgm/donations/internal/notify"
	"github.com/rookgm/donations/internal/repository"
	"github.com/rookgm/donations/internal/repository/postgres"
	"github.com/rookgm/donations/internal/service"
	"github.com/rookgm/donations/internal/worker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {

	// create new config
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// initialize logger
	logger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// create context
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// initialize database
	db, err := postgres.New(ctx, cfg.DatabaseURI)
	if err != nil {
		logger.Fatal("Error initializing database", zap.Error(err))
	}
	defer db.Close()

	// migrate database
	err = db.Migrate()
	if err != nil {
		logger.Fatal("Error migrating database", zap.Error(err))
	}

	// payment gateway
	authURL, baseURL, err := gateway.URLs(cfg.Gateway.Environment)
	if err != nil {
		logger.Fatal("Error resolving gateway urls", zap.Error(err))
	}
	if cfg.Gateway.AuthURL != "" {
		authURL = cfg.Gateway.AuthURL
	}
	if cfg.Gateway.BaseURL != "" {
		baseURL = cfg.Gateway.BaseURL
	}
	gw := gateway.NewClient(gateway.Config{
		AuthURL:        authURL,
		BaseURL:        baseURL,
		ClientID:       cfg.Gateway.ClientID,
		ClientSecret:   cfg.Gateway.ClientSecret,
		ClientVersion:  cfg.Gateway.ClientVersion,
		OrderExpiry:    cfg.Gateway.OrderExpiry,
		Timeout:        cfg.Gateway.Timeout,
		PaymentMessage: "Donation to " + cfg.Organization,
	})
	logger.Info("Payment gateway configured",
		zap.String("environment", cfg.Gateway.Environment),
		zap.String("merchant_id", cfg.Gateway.MerchantID))

	token := auth.NewAuthToken(cfg.TokenKey(), cfg.Admin.TokenTTL)

	// dependency injection
	// notifications
	feed := notify.NewFeed(cfg.Feed.AllowedOrigins, logger)
	mailer := notify.NewMailer(notify.MailConfig{
		APIURL: cfg.Mail.APIURL,
		APIKey: cfg.Mail.APIKey,
		From:   cfg.Mail.From,
	}, logger)
	ledgerRepo := repository.NewLedgerRepository(db)
	dispatcher := notify.NewDispatcher(ledgerRepo, mailer, feed, notify.Config{
		Organization: cfg.Organization,
		AdminTo:      cfg.Mail.AdminTo,
	}, logger)

	// donation
	orderRepo := repository.NewOrderRepository(db)
	webhookRepo := repository.NewWebhookEventRepository(db)
	donationService := service.NewDonationService(orderRepo, gw, dispatcher, webhookRepo, service.DonationConfig{
		BaseURL:         cfg.BaseURL,
		MinimumMinor:    cfg.Donation.MinimumMinor,
		PollAttempts:    cfg.Donation.PollAttempts,
		PollInterval:    cfg.Donation.PollInterval,
		OrderExpiry:     cfg.Gateway.OrderExpiry,
		StaleAfter:      cfg.Reconcile.StaleAfter,
		BatchSize:       cfg.Reconcile.BatchSize,
		WebhookUsername: cfg.Webhook.Username,
		WebhookPassword: cfg.Webhook.Password,
	}, logger)
	donationHandler := handler.NewDonationHandler(donationService, logger)

	// forms
	formRepo := repository.NewFormRepository(db)
	formService := service.NewFormService(formRepo, dispatcher, logger)
	formHandler := handler.NewFormHandler(formService, logger)

	// admin
	authService := service.NewAuthService(service.AdminCredentials{
		Login:        cfg.Admin.Login,
		PasswordHash: cfg.Admin.PasswordHash,
	}, token)
	adminHandler := handler.NewAdminHandler(authService, donationService, cfg.Admin.TokenTTL, logger)

	router := chi.NewRouter()

	router.Use(middleware.Logging(logger))

	router.Post("/api/phonepe/create-order", donationHandler.CreateOrder())
	router.Post("/api/phonepe/verify", donationHandler.VerifyPayment())
	router.Post("/api/phonepe/webhook", donationHandler.Webhook())
	router.Get("/api/phonepe/webhook", donationHandler.WebhookHealth())
	router.Get("/api/donations/{merchantOrderID}/qr", donationHandler.CheckoutQR())
	router.Handle("/api/donations/feed", feed)

	router.Post("/api/contact", formHandler.Contact())
	router.Post("/api/volunteer", formHandler.Volunteer())
	router.Post("/api/partnership", formHandler.Partnership())

	router.Post("/api/admin/login", adminHandler.Login())

	// routes that require authentication
	router.Group(func(group chi.Router) {
		group.Use(middleware.Auth(token))
		group.Get("/api/admin/orders/{merchantOrderID}", adminHandler.GetOrder())
		group.Post("/api/admin/reconcile", adminHandler.Reconcile())
	})

	// reconciliation worker
	reconciler := worker.NewReconciler(donationService, cfg.Reconcile.Interval, logger)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		reconciler.Run(ctx)
	}()

	srv := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           otelhttp.NewHandler(router, "donations"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Running server", zap.String("addr", cfg.RunAddress))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Error starting server", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down server", zap.Error(err))
	}
	feed.Close()
	<-workerDone
	dispatcher.Wait()
}
