package api

import (
	"context"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/microloans/loan-system/internal/api/handler"
	"github.com/microloans/loan-system/internal/api/middleware"
	"github.com/microloans/loan-system/internal/core/domain"
	"github.com/microloans/loan-system/internal/core/service"
	mongodb "github.com/microloans/loan-system/internal/infrastructure/db/mongo"
	redisdb "github.com/microloans/loan-system/internal/infrastructure/db/redis"
	"github.com/microloans/loan-system/internal/infrastructure/queue"
	"github.com/microloans/loan-system/internal/pkg/config"
)

// Router bundles the Echo instance with the concrete auth service so the
// entrypoint can seed the admin account.
type Router struct {
	Echo *echo.Echo
	Auth *service.AuthService
}

// NewRouter builds the Echo instance with all dependencies wired and routes
// registered. The audit dispatcher's workers run until ctx is cancelled.
func NewRouter(ctx context.Context, cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *Router {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("loans_http"))

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(db)
	loanRepo := mongodb.NewLoanRepository(db)
	installmentRepo := mongodb.NewInstallmentRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)

	// --- Audit trail workers ---
	recorder := service.NewAuditRecorder(auditRepo, log)
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, recorder, log)
	dispatcher.Start(ctx)

	// --- Services ---
	guard := redisdb.NewApprovalGuard(rdb)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	loanService := service.NewLoanService(loanRepo, installmentRepo, guard, dispatcher, log)
	paymentService := service.NewPaymentService(installmentRepo, loanRepo, dispatcher, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	loanHandler := handler.NewLoanHandler(loanService)
	paymentHandler := handler.NewPaymentHandler(paymentService)

	authMiddleware := middleware.Auth(cfg.JWTSecret)

	// --- Auth routes ---
	e.POST("/user/register/", authHandler.Register)
	e.POST("/user/login/", authHandler.Login)

	// --- Loan routes ---
	loans := e.Group("/loans", authMiddleware)
	loans.POST("/create", loanHandler.Create)
	loans.GET("/", loanHandler.List)
	loans.POST("/decision", loanHandler.Decide, middleware.RBAC(domain.RoleAdmin))

	// --- Payment routes ---
	payments := e.Group("/payments", authMiddleware)
	payments.POST("/make-payment/", paymentHandler.Make)
	payments.GET("/pending-earliest-due-date", paymentHandler.NextDue)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return &Router{Echo: e, Auth: authService}
}
