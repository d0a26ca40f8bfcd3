package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/terraincognita07/ledgerly/internal/cache"
	"github.com/terraincognita07/ledgerly/internal/cli"
	"github.com/terraincognita07/ledgerly/internal/config"
	"github.com/terraincognita07/ledgerly/internal/db"
	"github.com/terraincognita07/ledgerly/internal/logging"
	"github.com/terraincognita07/ledgerly/internal/services"
)

func main() {
	err := run(os.Args[1:])
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return
	case errors.Is(err, cli.ErrUsage):
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(slog.Default())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	location, err := cfg.Location()
	if err != nil {
		slog.Warn("falling back to UTC", "error", err)
	}

	database, err := db.Open(db.Options{Driver: cfg.DBDriver, SQLitePath: cfg.DBPath, PostgresDSN: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("database init: %w", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	defer sqlDB.Close()

	authOptions := services.AuthOptions{
		SecretKey: []byte(cfg.SecretKey),
		CacheTTL:  cfg.SessionCacheTTL,
	}
	// Only a shared Redis cache can be evicted from here; a server's
	// in-process cache keeps revoked entries until SESSION_CACHE_TTL passes.
	if cfg.RedisAddr != "" && cfg.SessionCacheTTL > 0 {
		redisCache := cache.NewRedisCache(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, "", slog.Default())
		defer redisCache.Close()
		authOptions.Cache = redisCache
	}

	repos := db.NewRepositories(database)
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	return cli.Run(ctx, cli.Dependencies{
		Auth:   authService,
		Ledger: ledgerService,
		Users:  repos.Users,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, args)
}
