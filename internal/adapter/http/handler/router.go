package handler

import (
	"festival-settlement/internal/adapter/http/middleware"
	redisStore "festival-settlement/internal/adapter/storage/redis"
	"festival-settlement/internal/core/domain"
	"festival-settlement/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	SettlementSvc  ports.SettlementService
	CommissionSvc  ports.CommissionService
	RefundSvc      ports.RefundService
	AccountSvc     ports.AccountService
	WalletRepo     ports.WalletRepository
	LedgerRepo     ports.LedgerRepository
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// Gateway return callback authenticates by HMAC signature, not JWT.
	settlementHandler := NewSettlementHandler(deps.SettlementSvc)
	v1.POST("/settlements/return", settlementHandler.ConfirmReturn)

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	staffOnly := middleware.RequireRoles(domain.RoleStaff, domain.RoleAdmin)
	adminOnly := middleware.RequireRoles(domain.RoleAdmin)

	settlements := v1.Group("/settlements", jwtAuth, staffOnly)
	{
		settlements.POST("", rl("settlements"), settlementHandler.Settle)
	}

	walletHandler := NewWalletHandler(deps.WalletRepo, deps.SettlementSvc)
	wallets := v1.Group("/wallets", jwtAuth)
	{
		wallets.GET("/balance", walletHandler.GetBalance)
		wallets.POST("/topup", rl("wallets_topup"), walletHandler.Topup)
	}

	ledgerHandler := NewLedgerHandler(deps.LedgerRepo)
	v1.GET("/ledger", jwtAuth, ledgerHandler.List)

	commissionHandler := NewCommissionHandler(deps.CommissionSvc)
	festivals := v1.Group("/festivals", jwtAuth, adminOnly)
	{
		festivals.GET("/:id/commission", commissionHandler.Status)
		festivals.POST("/:id/commission", commissionHandler.Withdraw)
	}

	refundHandler := NewRefundHandler(deps.RefundSvc)
	refunds := v1.Group("/refund-requests", jwtAuth)
	{
		refunds.POST("", rl("refund_create"), refundHandler.Create)
		refunds.GET("", adminOnly, refundHandler.List)
		refunds.POST("/:id/process", adminOnly, rl("refund_process"), refundHandler.Process)
		refunds.DELETE("/:id", adminOnly, refundHandler.Delete)
	}

	accountHandler := NewAccountHandler(deps.AccountSvc)
	accounts := v1.Group("/accounts", jwtAuth)
	{
		accounts.GET("/lookup", staffOnly, accountHandler.Lookup)
		accounts.PUT("/me/bank-details", accountHandler.UpdateBankDetails)
	}
	v1.GET("/banks", jwtAuth, accountHandler.ListBanks)

	return r
}
