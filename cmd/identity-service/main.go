package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"github.com/andressep95/identity-service/internal/auth"
	"github.com/andressep95/identity-service/internal/cache"
	"github.com/andressep95/identity-service/internal/config"
	"github.com/andressep95/identity-service/internal/handler"
	"github.com/andressep95/identity-service/internal/handler/middleware"
	"github.com/andressep95/identity-service/internal/keys"
	"github.com/andressep95/identity-service/internal/metrics"
	"github.com/andressep95/identity-service/internal/mfa"
	"github.com/andressep95/identity-service/internal/repository/postgres"
	"github.com/andressep95/identity-service/internal/service"
	"github.com/andressep95/identity-service/pkg/email"
	"github.com/andressep95/identity-service/pkg/hash"
	"github.com/andressep95/identity-service/pkg/jwt"
	"github.com/andressep95/identity-service/pkg/validator"
)

func main() {
	flagSet := pflag.NewFlagSet("identity-service", pflag.ExitOnError)
	envFile := flagSet.String("env-file", "", "path to a .env file (default: ./.env when present)")
	_ = flagSet.Parse(os.Args[1:])

	// Load configuration
	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
		}
	}()
	log.Println("✓ Database connection established")

	// Initialize Redis client
	redisClient, err := initRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
	}()
	log.Println("✓ Redis connection established")

	// Initialize repositories
	domainRepo := postgres.NewDomainRepository(db)
	secretRepo := postgres.NewDomainSecretRepository(db)
	workspaceRepo := postgres.NewWorkspaceRepository(db)
	userRepo := postgres.NewUserRepository(db)
	appRepo := postgres.NewAppRepository(db)
	apiKeyRepo := postgres.NewAPIKeyRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	bindingRepo := postgres.NewRoleBindingRepository(db)
	projectRepo := postgres.NewProjectRepository(db)

	stateCache := cache.NewRedisCache(redisClient)
	keyProvider := keys.NewRepositoryProvider(secretRepo, keys.WithTTL(cfg.Cache.KeyTTL))
	hasher := hash.NewHasher(hash.DefaultConfig)
	collectors := metrics.New()

	// Initialize email sender
	sender, err := initEmailSender(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize email sender: %v", err)
	}
	log.Printf("✓ Email sender initialized (%s)", cfg.Email.Provider)

	verifiers := mfa.NewRegistry(
		mfa.NewEmailVerifier(redisClient, sender, cfg.MFA.CodeTTL, cfg.MFA.SendTimeout),
	)

	authenticators := auth.NewRegistry(
		auth.NewLocalAuthenticator(userRepo, hasher),
		auth.NewExternalAuthenticator(cfg.External.Endpoint, cfg.External.Timeout, domainRepo, userRepo),
		auth.NewAPIKeyAuthenticator(apiKeyRepo, userRepo, appRepo, hasher, time.Now),
		auth.NewGrantAuthenticator(cfg.Token.RootDomainID),
	)
	if cfg.External.Endpoint == "" {
		log.Println("ℹ EXTERNAL auth disabled (set EXTERNAL_AUTH_ENDPOINT to enable)")
	}

	// Initialize services
	tokenService := service.NewTokenService(
		keyProvider,
		service.NewStateChecker(domainRepo, workspaceRepo, stateCache, cfg.Cache.TTL),
		authenticators,
		verifiers,
		userRepo,
		service.NewRoleResolver(bindingRepo),
		service.NewPermissionResolver(roleRepo, projectRepo, stateCache, cfg.Cache.TTL),
		jwt.NewCodec(cfg.Token.Issuer, time.Now),
		service.TokenPolicy{
			RootDomainID:         cfg.Token.RootDomainID,
			DefaultAccessTimeout: cfg.Token.DefaultAccessTimeout,
			MaxAccessTimeout:     cfg.Token.MaxAccessTimeout,
			RefreshTimeout:       cfg.Token.RefreshTimeout,
		},
		service.WithObserver(collectors),
	)
	domainService := service.NewDomainService(domainRepo, keyProvider)

	// Initialize handlers
	validate := validator.NewValidator()
	tokenHandler := handler.NewTokenHandler(tokenService, validate)
	domainHandler := handler.NewDomainHandler(domainService)
	jwksHandler := handler.NewJWKSHandler(domainService)
	healthHandler := handler.NewHealthHandler(map[string]handler.Check{
		"database": db.PingContext,
		"cache": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	})

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Identity Service",
		ErrorHandler: customErrorHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Setup global middlewares
	app.Use(middleware.RecoveryMiddleware())
	app.Use(middleware.LoggerMiddleware())
	app.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))
	app.Use(middleware.MetricsMiddleware(collectors))

	// Setup routes
	handler.SetupRoutes(
		app,
		tokenHandler,
		domainHandler,
		jwksHandler,
		healthHandler,
		collectors.Handler(),
		middleware.RateLimitMiddleware(ctx, cfg.RateLimit.Burst, cfg.RateLimit.RPS),
	)

	// Start server in goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		log.Printf("🚀 Server starting on http://localhost%s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		if err := app.Listen(addr); err != nil {
			log.Printf("❌ Server failed to start: %v", err)
			stop()
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	log.Println("⏳ Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✓ Server stopped")
}

// initDB initializes PostgreSQL database connection with retry logic
func initDB(cfg *config.Config) (*sqlx.DB, error) {
	dsn := cfg.Database.DSN()

	var db *sqlx.DB
	var err error

	maxRetries := 5
	retryInterval := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			break
		}

		log.Printf("Failed to connect to database (attempt %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// initRedis initializes Redis client and verifies connection
func initRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			log.Printf("Error closing Redis after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

// initEmailSender picks the MFA mail transport
func initEmailSender(cfg *config.Config) (email.Sender, error) {
	emailConfig := &email.EmailConfig{
		APIKey:    cfg.Email.APIKey,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
		BaseURL:   cfg.Email.RelayURL,
		Timeout:   cfg.Email.Timeout,
	}

	switch cfg.Email.Provider {
	case config.EmailProviderResend:
		return email.NewResendSender(emailConfig)
	case config.EmailProviderRelay:
		return email.NewRelaySender(emailConfig)
	case config.EmailProviderLog:
		return email.LogSender{}, nil
	}
	return nil, fmt.Errorf("unknown email provider %q", cfg.Email.Provider)
}

// customErrorHandler handles errors fiber raises itself, such as unknown routes
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	log.Printf("Error handling request [%s %s]: %v", c.Method(), c.Path(), err)

	return c.Status(code).JSON(fiber.Map{
		"error": message,
		"code":  "ERROR_UNKNOWN",
	})
}
