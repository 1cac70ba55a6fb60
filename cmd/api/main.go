package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/hyunwoo-dev/elkmart/internal/audit"
	"github.com/hyunwoo-dev/elkmart/internal/config"
	"github.com/hyunwoo-dev/elkmart/internal/handler"
	"github.com/hyunwoo-dev/elkmart/internal/logging"
	"github.com/hyunwoo-dev/elkmart/internal/metrics"
	"github.com/hyunwoo-dev/elkmart/internal/middleware"
	"github.com/hyunwoo-dev/elkmart/internal/repository"
	"github.com/hyunwoo-dev/elkmart/internal/service"
	"github.com/hyunwoo-dev/elkmart/internal/service/purchase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	auditSink := audit.NewSink(cfg.AuditIndexURL)
	logging.Init("elkmart-api", cfg.LogLevel, cfg.AppEnv, auditSink)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancelConnect := context.WithTimeout(ctx, 30*time.Second)
	db, err := repository.NewPostgresDB(connectCtx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	cancelConnect()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	productRepo := repository.NewProductRepository(db)
	shipmentRepo := repository.NewShipmentRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	userSvc := service.NewUserService(userRepo, accountRepo, db)
	accountSvc := service.NewAccountService(accountRepo, ledgerRepo, db)
	catalogSvc := service.NewCatalogService(storeRepo, productRepo, userRepo)
	shippingSvc := service.NewShippingService(shipmentRepo, productRepo, userRepo, outboxRepo, db)
	purchaseSvc := purchase.NewService(userRepo, productRepo, accountSvc, shipmentRepo, outboxRepo, db)

	mailer := service.NewMailerClient(cfg.MailGatewayURL, cfg.MailFromAddress)
	dispatcher := service.NewDispatcher(outboxRepo, mailer, slog.Default(),
		time.Duration(cfg.DispatchInterval)*time.Second)

	go auditSink.Start(ctx)
	go dispatcher.Start(ctx)

	jwtExpiry := time.Duration(cfg.JWTExpiryH) * time.Hour
	authHandler := handler.NewAuthHandler(userSvc, cfg.JWTSecret, jwtExpiry)
	accountHandler := handler.NewAccountHandler(accountSvc)
	purchaseHandler := handler.NewPurchaseHandler(purchaseSvc)
	shipmentHandler := handler.NewShipmentHandler(shippingSvc, shipmentRepo)
	storeHandler := handler.NewStoreHandler(catalogSvc)
	userHandler := handler.NewUserHandler(userSvc)
	healthHandler := handler.NewHealthHandler(db)

	authn := middleware.Auth(cfg.JWTSecret)
	idempotent := middleware.Idempotency(idempotencyRepo)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/signup", authHandler.SignUp)
	mux.HandleFunc("POST /auth/login", authHandler.Login)
	mux.Handle("POST /auth/logout", authn(http.HandlerFunc(authHandler.Logout)))

	mux.Handle("GET /users/{id}", authn(http.HandlerFunc(userHandler.GetByID)))
	mux.Handle("GET /users/{id}/balance", authn(http.HandlerFunc(accountHandler.Balance)))
	mux.Handle("GET /users/{id}/transactions", authn(http.HandlerFunc(accountHandler.Transactions)))
	mux.Handle("POST /users/{id}/deposits", authn(http.HandlerFunc(accountHandler.Deposit)))
	mux.Handle("POST /users/{id}/withdrawals", authn(http.HandlerFunc(accountHandler.Withdraw)))

	mux.Handle("POST /purchases", authn(idempotent(http.HandlerFunc(purchaseHandler.Create))))

	mux.Handle("GET /shipments", authn(http.HandlerFunc(shipmentHandler.List)))
	mux.Handle("POST /shipments/{id}/ready", authn(http.HandlerFunc(shipmentHandler.MarkReady)))
	mux.Handle("POST /shipments/{id}/status", authn(http.HandlerFunc(shipmentHandler.AdvanceStatus)))

	mux.Handle("POST /stores", authn(http.HandlerFunc(storeHandler.Create)))
	mux.Handle("POST /stores/products", authn(http.HandlerFunc(storeHandler.CreateProducts)))

	mux.HandleFunc("GET /health/live", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)
	mux.Handle("GET /metrics", metrics.Handler())

	root := middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
