package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"festival-settlement/config"
	"festival-settlement/internal/adapter/gateway"
	httpHandler "festival-settlement/internal/adapter/http/handler"
	pgStorage "festival-settlement/internal/adapter/storage/postgres"
	redisStorage "festival-settlement/internal/adapter/storage/redis"
	"festival-settlement/internal/core/ports"
	"festival-settlement/internal/service"
	"festival-settlement/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Festival Settlement Service")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	accountRepo := pgStorage.NewAccountRepo(pool)
	walletRepo := pgStorage.NewWalletRepo(pool)
	ledgerRepo := pgStorage.NewLedgerRepo(pool)
	orderRepo := pgStorage.NewOrderRepo(pool)
	refundRepo := pgStorage.NewRefundRepo(pool)
	commissionRepo := pgStorage.NewCommissionRepo(pool)
	festivalRepo := pgStorage.NewFestivalRepo(pool)
	bankRepo := pgStorage.NewBankRepo(pool)
	idempotencyRepo := pgStorage.NewIdempotencyRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	sigSvc := service.NewHMACSignatureService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	checkoutGateway := gateway.NewCheckoutClient(cfg.Gateway, log)

	// Initialize business services
	authSvc := service.NewAuthService(accountRepo, walletRepo, hashSvc, tokenSvc)
	settlementSvc := service.NewSettlementService(
		orderRepo,
		walletRepo,
		ledgerRepo,
		festivalRepo,
		idempotencyRepo,
		idempotencyCache,
		checkoutGateway,
		sigSvc,
		transactor,
		cfg.Gateway.Secret,
		log,
	)
	commissionSvc := service.NewCommissionService(commissionRepo, festivalRepo, walletRepo, ledgerRepo, transactor, log)
	refundSvc := service.NewRefundService(refundRepo, walletRepo, ledgerRepo, transactor, cfg.Settlement.RefundMinBalance, log)
	accountSvc := service.NewAccountService(accountRepo, bankRepo, encSvc)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		SettlementSvc:  settlementSvc,
		CommissionSvc:  commissionSvc,
		RefundSvc:      refundSvc,
		AccountSvc:     accountSvc,
		WalletRepo:     walletRepo,
		LedgerRepo:     ledgerRepo,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
