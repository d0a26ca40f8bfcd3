package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/terraincognita07/ledgerly/internal/api"
	"github.com/terraincognita07/ledgerly/internal/cache"
	"github.com/terraincognita07/ledgerly/internal/config"
	"github.com/terraincognita07/ledgerly/internal/db"
	"github.com/terraincognita07/ledgerly/internal/logging"
	"github.com/terraincognita07/ledgerly/internal/services"
)

func main() {
	if err := run(); err != nil {
		slog.Error("ledgerly exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(slog.Default())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	location, err := cfg.Location()
	if err != nil {
		slog.Warn("falling back to UTC", "error", err)
	}
	time.Local = location

	database, err := db.Open(db.Options{Driver: cfg.DBDriver, SQLitePath: cfg.DBPath, PostgresDSN: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("database init: %w", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	defer sqlDB.Close()

	sessionCache, err := newSessionCache(cfg)
	if err != nil {
		return err
	}
	if sessionCache != nil {
		defer sessionCache.Close()
	}

	repos := db.NewRepositories(database)
	authService, ledgerService := newServices(cfg, repos, sessionCache, location)
	handler := api.NewHandler(authService, ledgerService, cfg.CookieSecure)

	app := newApp(cfg, handler)

	lifecycleCtx, cancelLifecycle := context.WithCancel(context.Background())
	defer cancelLifecycle()
	janitorDone := services.NewSessionJanitor(authService, cfg.JanitorInterval).Start(lifecycleCtx)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		cancelLifecycle()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("ledgerly listening", "port", cfg.Port, "db_driver", cfg.DBDriver, "tz", location.String())
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}

	cancelLifecycle()
	<-janitorDone
	return nil
}

func newServices(cfg *config.Config, repos *db.Repositories, sessionCache cache.SessionCache, location *time.Location) (*services.AuthService, *services.LedgerService) {
	authOptions := services.AuthOptions{
		SecretKey: []byte(cfg.SecretKey),
		CacheTTL:  cfg.SessionCacheTTL,
	}
	if sessionCache != nil {
		authOptions.Cache = sessionCache
	}

	authService := services.NewAuthService(services.AuthRepositories{
		Transactor:         repos.Transactor,
		Users:              repos.Users,
		Sessions:           repos.Sessions,
		VerificationTokens: repos.VerificationTokens,
		Accounts:           repos.Accounts,
	}, authOptions)

	ledgerService := services.NewLedgerService(services.LedgerRepositories{
		Transactor:   repos.Transactor,
		Accounts:     repos.Accounts,
		Transactions: repos.Transactions,
		Tags:         repos.Tags,
	}, location)

	return authService, ledgerService
}

// newSessionCache picks Redis when REDIS_ADDR is set, an in-process map when
// only a TTL is configured, and no cache when SESSION_CACHE_TTL is zero.
func newSessionCache(cfg *config.Config) (cache.SessionCache, error) {
	if cfg.SessionCacheTTL == 0 {
		return nil, nil
	}
	if cfg.RedisAddr == "" {
		return cache.NewMemoryCache(0), nil
	}

	redisCache := cache.NewRedisCache(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, "", slog.Default())

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisCache.Ping(pingCtx); err != nil {
		_ = redisCache.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return redisCache, nil
}

func newApp(cfg *config.Config, handler *api.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Ledgerly",
		DisableStartupMessage: true,
		ErrorHandler:          jsonErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(api.RateLimit(cfg.RateLimitMax, cfg.RateLimitWindow))
	app.Use(csrf.New(csrfMiddlewareConfig(cfg.CookieSecure)))

	api.RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app
}

func csrfMiddlewareConfig(cookieSecure bool) csrf.Config {
	return csrf.Config{
		KeyLookup:      "header:X-CSRF-Token",
		CookieName:     "ledgerly_csrf",
		CookieSameSite: "Lax",
		CookieHTTPOnly: true,
		CookieSecure:   cookieSecure,
		ContextKey:     "csrf",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "invalid csrf token"})
		},
	}
}

func jsonErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal error"
	if fiberError, ok := err.(*fiber.Error); ok {
		status = fiberError.Code
		message = fiberError.Message
	}
	if status == fiber.StatusInternalServerError {
		slog.ErrorContext(c.UserContext(), "unhandled request error", "path", c.Path(), "error", err)
		message = "internal error"
	}
	return c.Status(status).JSON(fiber.Map{"error": message})
}
