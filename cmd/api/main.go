package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"roadrescue/internal/adapter/api"
	"roadrescue/internal/adapter/api/handler"
	apimiddleware "roadrescue/internal/adapter/api/middleware"
	"roadrescue/internal/adapter/api/router"
	"roadrescue/internal/adapter/repository"
	"roadrescue/internal/infrastructure/firestore"
	"roadrescue/internal/infrastructure/jwt"
	"roadrescue/internal/infrastructure/metrics"
	"roadrescue/internal/infrastructure/password"
	"roadrescue/internal/infrastructure/ratelimit"
	"roadrescue/internal/infrastructure/revocation"
	"roadrescue/internal/infrastructure/websocket"
	"roadrescue/internal/seed"
	"roadrescue/internal/usecase"
	"roadrescue/pkg/config"
	"roadrescue/pkg/logger"
	"roadrescue/pkg/response"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}
	logger.Init(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]handler.Pinger{}

	var repos *repository.Repositories
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		repos = repository.NewMemoryRepositories()
	default:
		firestoreClient, err := firestore.NewClient(ctx, cfg)
		if err != nil {
			logger.Fatal("Failed to initialize Firestore: %v", err)
		}
		defer firestoreClient.Close()
		repos = repository.NewFirestoreRepositories(firestoreClient)
		checks["firestore"] = repository.NewFirestoreHealth(firestoreClient)
	}

	var revoker usecase.TokenRevoker
	if cfg.RedisAddr != "" {
		redisRevoker := revocation.NewRedisRevoker(cfg.RedisAddr, cfg.RedisPassword)
		if err := redisRevoker.Ping(ctx); err != nil {
			logger.Fatal("Failed to connect to Redis at %s: %v", cfg.RedisAddr, err)
		}
		defer redisRevoker.Close()
		revoker = redisRevoker
		checks["redis"] = redisRevoker
	} else {
		logger.Info("REDIS_ADDR not set, revoked tokens are kept in memory")
		revoker = revocation.NewMemoryRevoker()
	}

	reportLocation, err := time.LoadLocation(cfg.ReportTimezone)
	if err != nil {
		logger.Warn("Unknown REPORT_TIMEZONE %q, falling back to UTC: %v", cfg.ReportTimezone, err)
		reportLocation = time.UTC
	}

	m := metrics.New()

	hub := websocket.NewHub(m)
	hub.Start(ctx)

	httpLimiter := ratelimit.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	httpLimiter.StartCleanupRoutine(ctx)
	chatLimiter := ratelimit.NewPerMinute(cfg.ChatPerMinute)
	chatLimiter.StartCleanupRoutine(ctx)

	tokens := jwt.NewTokenService(cfg.JWTSecret, time.Duration(cfg.JWTExpiry)*time.Second)
	hasher := password.NewBcryptHasher(0)

	authUseCase := usecase.NewAuthUseCase(repos.Users, hasher, tokens, revoker)
	categoryUseCase := usecase.NewCategoryUseCase(repos.Categories)
	companyUseCase := usecase.NewCompanyUseCase(repos.Users, repos.Categories)
	requestUseCase := usecase.NewRequestUseCase(repos.Requests, repos.Users, repos.Categories, hub, m)
	companyRequestUseCase := usecase.NewCompanyRequestUseCase(repos.Requests, repos.Users, repos.Categories, hub, m)
	chatUseCase := usecase.NewChatUseCase(repos.Requests, repos.Chats, repos.Users, hub, chatLimiter, m)
	communityUseCase := usecase.NewCommunityUseCase(repos.Topics, repos.Tips, repos.Users)
	adminUseCase := usecase.NewAdminUseCase(repos.Users)
	reportUseCase := usecase.NewReportUseCase(repos.Users, repos.Requests, repos.Categories, reportLocation)

	if cfg.StorageDriver == config.StorageMemory {
		seedMemory(ctx, cfg, repos, authUseCase, communityUseCase)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = response.ErrorHandler
	e.IPExtractor = api.NewIPExtractor(cfg.TrustProxy)

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.CORSOrigin},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(apimiddleware.RequestLogger())
	e.Use(apimiddleware.Metrics(m))
	e.Use(apimiddleware.RateLimit("http", httpLimiter, m))

	authMiddleware := apimiddleware.NewAuthMiddleware(authUseCase)
	companyMiddleware := apimiddleware.NewCompanyMiddleware(repos.Users)

	router.Setup(e, router.Handlers{
		Auth:           handler.NewAuthHandler(authUseCase),
		Category:       handler.NewCategoryHandler(categoryUseCase),
		Company:        handler.NewCompanyHandler(companyUseCase),
		Request:        handler.NewRequestHandler(requestUseCase),
		CompanyRequest: handler.NewCompanyRequestHandler(companyRequestUseCase),
		Chat:           handler.NewChatHandler(chatUseCase),
		Community:      handler.NewCommunityHandler(communityUseCase),
		Admin:          handler.NewAdminHandler(adminUseCase, reportUseCase),
		Health:         handler.NewHealthHandler(checks),
		WebSocket:      handler.NewWebSocketHandler(hub, cfg.CORSOrigin),
	}, authMiddleware, companyMiddleware, m.Handler())

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}

// seedMemory loads reference data so a memory-backed server is usable
// straight away.
func seedMemory(ctx context.Context, cfg *config.Config, repos *repository.Repositories, auth *usecase.AuthUseCase, community *usecase.CommunityUseCase) {
	if _, err := seed.Categories(ctx, repos.Categories, time.Now()); err != nil {
		logger.Fatal("Failed to seed categories: %v", err)
	}
	admin, err := seed.Admin(ctx, auth, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		logger.Fatal("Failed to seed admin: %v", err)
	}
	if _, err := seed.Tips(ctx, repos.Tips, community, admin.ID); err != nil {
		logger.Fatal("Failed to seed community tips: %v", err)
	}
}
