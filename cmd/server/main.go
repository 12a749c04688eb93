package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dhakanet/ispconsole/internal"
	"github.com/dhakanet/ispconsole/internal/api"
	"github.com/dhakanet/ispconsole/internal/export"
	"github.com/dhakanet/ispconsole/internal/handler"
	"github.com/dhakanet/ispconsole/internal/metrics"
	"github.com/dhakanet/ispconsole/internal/middleware"
	"github.com/dhakanet/ispconsole/internal/poller"
	"github.com/dhakanet/ispconsole/internal/service"
	"github.com/dhakanet/ispconsole/internal/session"
	"github.com/dhakanet/ispconsole/internal/storage"
	"github.com/dhakanet/ispconsole/web"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection (console sessions live here)
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	isDev := cfg.Env == "development"
	isSecure := !isDev

	// Session store and billing platform API client
	sessions := session.NewStore(db, logger)
	client := api.New(cfg.BillingAPIURL, sessions, logger,
		api.WithTimeout(cfg.BillingAPITimeout))

	// Initialize storage for exports
	var store storage.Storage
	switch cfg.StorageProvider {
	case storage.ProviderR2:
		store, err = storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		}, logger)
	default:
		store, err = storage.NewLocalStorage(storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
			BaseURL:  cfg.LocalStorageURL,
		}, logger)
	}
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}
	exporter := export.NewExporter(store, logger)

	// Initialize template renderer. Development reads templates from disk
	// so edits show up on reload; production uses the embedded copies.
	var templatesFS fs.FS
	if isDev {
		templatesFS = os.DirFS("web/templates")
	} else {
		templatesFS, err = fs.Sub(web.Files, "templates")
		if err != nil {
			return fmt.Errorf("embedded templates unavailable: %w", err)
		}
	}
	renderer, err := handler.NewRenderer(handler.RendererConfig{
		FS:     templatesFS,
		Logger: logger,
		IsDev:  isDev,
	})
	if err != nil {
		return fmt.Errorf("renderer initialization failed: %w", err)
	}

	// Initialize services
	authService := service.NewAuthService(client, logger)
	customerService := service.NewCustomerService(client, logger)
	zoneService := service.NewZoneService(client, logger)
	connTypeService := service.NewConnectionTypeService(client, logger)
	packageService := service.NewPackageService(client, logger)
	subscriptionService := service.NewSubscriptionService(client, logger)
	billService := service.NewBillService(client, logger)
	paymentService := service.NewPaymentService(client, logger)
	invoiceService := service.NewInvoiceService(client, logger)
	discountService := service.NewDiscountService(client, logger)
	refundService := service.NewRefundService(client, logger)
	feeService := service.NewConnectionFeeService(client, logger)
	userService := service.NewUserService(client, logger)
	routerService := service.NewRouterService(client, logger)
	scheduleService := service.NewScheduleService(client, logger)
	dashboardService := service.NewDashboardService(client, logger)

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(sessions, logger, isSecure)
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	authLimiter := middleware.NewAuthRateLimiter(logger)
	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, sessions, renderer, logger, isSecure)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, renderer, logger, isSecure)
	customerHandler := handler.NewCustomerHandler(customerService, zoneService, connTypeService, exporter, renderer, logger, isSecure)
	zoneHandler := handler.NewZoneHandler(zoneService, connTypeService, renderer, logger, isSecure)
	connTypeHandler := handler.NewConnectionTypeHandler(connTypeService, renderer, logger, isSecure)
	packageHandler := handler.NewPackageHandler(packageService, renderer, logger, isSecure)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService, customerService, packageService, routerService, renderer, logger, isSecure)
	billHandler := handler.NewBillHandler(billService, exporter, renderer, logger, isSecure)
	paymentHandler := handler.NewPaymentHandler(paymentService, customerService, exporter, renderer, logger, isSecure)
	billingHandler := handler.NewBillingExtrasHandler(invoiceService, discountService, refundService, feeService, customerService, renderer, logger, isSecure)
	userHandler := handler.NewUserHandler(userService, renderer, logger, isSecure)
	routerHandler := handler.NewRouterHandler(routerService, packageService, zoneService, renderer, logger, isSecure)
	scheduleHandler := handler.NewScheduleHandler(scheduleService, renderer, logger, isSecure)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Static files
	if isDev {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	} else {
		staticFS, err := fs.Sub(web.Files, "static")
		if err != nil {
			return fmt.Errorf("embedded static assets unavailable: %w", err)
		}
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics, behind basic auth when credentials are configured
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	// Auth routes (public)
	mux.HandleFunc("GET /login", authHandler.ShowLogin)
	mux.Handle("POST /login", authLimiter.LimitLogin(http.HandlerFunc(authHandler.Login)))

	// Middleware stacks for signed-in and admin-only routes
	protected := middleware.Stack(authMw.RequireSession)
	admin := middleware.Stack(authMw.RequireSession, authMw.RequireAdmin)

	route := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, protected(h))
	}
	adminRoute := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, admin(h))
	}

	// Exported CSV files when running on local storage. R2 serves its
	// own URLs, so no route is needed there.
	if cfg.StorageProvider == storage.ProviderLocal {
		exportFiles := handler.NewExportFileHandler(store, logger)
		route("GET /files/{key...}", exportFiles.Download)
	}

	// Dashboard
	route("GET /{$}", dashboardHandler.Index)

	// Account
	route("POST /logout", authHandler.Logout)
	route("GET /profile", authHandler.Profile)
	mux.Handle("POST /profile/password",
		protected(authLimiter.LimitChangePassword(http.HandlerFunc(authHandler.ChangePassword))))

	// Customers
	route("GET /customers", customerHandler.List)
	route("GET /customers/export", customerHandler.Export)
	route("GET /customers/new", customerHandler.New)
	route("POST /customers", customerHandler.Create)
	route("GET /customers/{id}", customerHandler.Show)
	route("GET /customers/{id}/edit", customerHandler.Edit)
	route("POST /customers/{id}", customerHandler.Update)
	route("POST /customers/{id}/delete", customerHandler.Delete)

	// Zones
	route("GET /zones", zoneHandler.List)
	route("GET /zones/new", zoneHandler.New)
	route("POST /zones", zoneHandler.Create)
	route("GET /zones/{id}/edit", zoneHandler.Edit)
	route("POST /zones/{id}", zoneHandler.Update)
	route("POST /zones/{id}/delete", zoneHandler.Delete)

	// Connection types
	route("GET /connection-types", connTypeHandler.List)
	route("POST /connection-types", connTypeHandler.Create)
	route("POST /connection-types/{id}", connTypeHandler.Update)
	route("POST /connection-types/{id}/delete", connTypeHandler.Delete)

	// Packages
	route("GET /packages", packageHandler.List)
	route("GET /packages/new", packageHandler.New)
	route("POST /packages", packageHandler.Create)
	route("GET /packages/{id}/edit", packageHandler.Edit)
	route("POST /packages/{id}", packageHandler.Update)
	route("POST /packages/{id}/delete", packageHandler.Delete)

	// Subscriptions
	route("GET /subscriptions", subscriptionHandler.List)
	route("GET /subscriptions/connections", subscriptionHandler.ActiveConnections)
	route("GET /subscriptions/new", subscriptionHandler.New)
	route("POST /subscriptions", subscriptionHandler.Create)
	route("GET /subscriptions/{id}", subscriptionHandler.Show)
	route("GET /subscriptions/{id}/edit", subscriptionHandler.Edit)
	route("POST /subscriptions/{id}", subscriptionHandler.Update)
	route("POST /subscriptions/{id}/delete", subscriptionHandler.Delete)
	route("POST /subscriptions/{id}/activate", subscriptionHandler.Activate)
	route("POST /subscriptions/{id}/suspend", subscriptionHandler.Suspend)
	route("POST /subscriptions/{id}/sync", subscriptionHandler.Sync)

	// Bills
	route("GET /bills", billHandler.List)
	route("GET /bills/export", billHandler.Export)
	route("POST /bills/generate", billHandler.GenerateMonthly)
	route("GET /bills/{id}", billHandler.Show)
	route("POST /bills/{id}/payments", billHandler.AddPayment)
	route("POST /bills/{id}/delete", billHandler.Delete)

	// Payments
	route("GET /payments", paymentHandler.List)
	route("GET /payments/export", paymentHandler.Export)
	route("GET /payments/{id}", paymentHandler.Show)
	route("POST /payments/{id}/delete", paymentHandler.Delete)
	route("GET /advance-payments", paymentHandler.ListAdvance)
	route("POST /advance-payments", paymentHandler.CreateAdvance)
	route("POST /advance-payments/{id}/delete", paymentHandler.DeleteAdvance)

	// Invoices, discounts, refunds, connection fees
	route("GET /invoices", billingHandler.ListInvoices)
	route("POST /invoices", billingHandler.CreateInvoice)
	route("POST /invoices/{id}/delete", billingHandler.DeleteInvoice)
	route("GET /discounts", billingHandler.ListDiscounts)
	route("POST /discounts", billingHandler.CreateDiscount)
	route("POST /discounts/{id}", billingHandler.UpdateDiscount)
	route("POST /discounts/{id}/delete", billingHandler.DeleteDiscount)
	route("GET /refunds", billingHandler.ListRefunds)
	route("POST /refunds", billingHandler.CreateRefund)
	route("POST /refunds/{id}/approve", billingHandler.ApproveRefund)
	route("POST /refunds/{id}/reject", billingHandler.RejectRefund)
	route("POST /refunds/{id}/complete", billingHandler.CompleteRefund)
	route("POST /refunds/{id}/delete", billingHandler.DeleteRefund)
	route("GET /connection-fees", billingHandler.ListFees)
	route("POST /connection-fees", billingHandler.CreateFee)
	route("POST /connection-fees/{id}/delete", billingHandler.DeleteFee)

	// Routers
	route("GET /routers", routerHandler.List)
	route("GET /routers/new", routerHandler.New)
	route("POST /routers", routerHandler.Create)
	route("GET /routers/{id}", routerHandler.Show)
	route("GET /routers/{id}/edit", routerHandler.Edit)
	route("POST /routers/{id}", routerHandler.Update)
	route("POST /routers/{id}/delete", routerHandler.Delete)
	route("POST /routers/{id}/test", routerHandler.Test)
	route("POST /routers/{id}/sync-package", routerHandler.SyncPackage)
	route("GET /queue-profiles", routerHandler.QueueProfiles)
	route("GET /sync-logs", routerHandler.SyncLogs)

	// Scheduler
	route("GET /schedule", scheduleHandler.List)
	route("GET /schedule/stats", scheduleHandler.Stats)
	route("GET /schedule/{jobId}/edit", scheduleHandler.Edit)
	route("POST /schedule/{jobId}", scheduleHandler.Update)
	route("POST /schedule/{jobId}/toggle", scheduleHandler.Toggle)

	// Operator accounts (admin only)
	adminRoute("GET /users", userHandler.List)
	adminRoute("GET /users/new", userHandler.New)
	adminRoute("POST /users", userHandler.Create)
	adminRoute("GET /users/{id}/edit", userHandler.Edit)
	adminRoute("POST /users/{id}", userHandler.Update)
	adminRoute("POST /users/{id}/delete", userHandler.Delete)

	// Outer stack applied to every request
	base := middleware.Stack(
		securityMw.Handler,
		loggingMw.Handler,
		metrics.Middleware,
		authMw.WithSession,
	)

	// ==========================================================================
	// Background poller
	// ==========================================================================

	var bgPoller *poller.Poller
	if cfg.PollerEnabled {
		pollerCfg := poller.DefaultConfig()
		pollerCfg.Interval = cfg.PollerInterval
		bgPoller, err = poller.New(pollerCfg, logger)
		if err != nil {
			return fmt.Errorf("poller initialization failed: %w", err)
		}
		bgPoller.Register(poller.NewRouterStatusTask(routerService, logger))
		bgPoller.Register(poller.NewSessionCleanupTask(sessions, logger))
		bgPoller.Register(poller.NewExportCleanupTask(store, cfg.ExportRetention, logger))
		bgPoller.Start(ctx)
	}

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: base(mux),
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if bgPoller != nil {
		bgPoller.Stop()
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
