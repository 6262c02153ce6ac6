package main

import (
	"context"   // Shutdown and background workers
	"errors"    // Server close detection
	"net/http"  // HTTP server
	"os"        // Signals
	"os/signal" // Graceful shutdown
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"finance_tracker/internal/api"        // Router and handlers
	"finance_tracker/internal/config"     // Configuration
	"finance_tracker/internal/db"         // Database connection and migration
	"finance_tracker/internal/events"     // Ledger events
	"finance_tracker/internal/graph"      // GraphQL schema
	"finance_tracker/internal/middleware" // CSRF guard
	"finance_tracker/internal/ratelimit"  // Request limiters
	"finance_tracker/internal/service"    // Business logic
	"finance_tracker/internal/store"      // Persistence

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"golang.org/x/sync/errgroup"   // Server and worker lifecycle
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	// Setup logger
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(lvl)
	}

	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("failed to migrate: %v", err)
	}
	st := store.New(gdb)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	// Redis is optional: caching and shared rate limits
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
	}

	var globalLimiter, authLimiter ratelimit.Limiter
	if redisClient != nil {
		globalLimiter = ratelimit.NewRedisLimiter(redisClient, "global", cfg.RateLimitMax, cfg.RateLimitWindow)
		authLimiter = ratelimit.NewRedisLimiter(redisClient, "auth", cfg.AuthRateLimitMax, cfg.AuthRateLimitWindow)
	} else {
		gl := ratelimit.NewMemoryLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
		al := ratelimit.NewMemoryLimiter(cfg.AuthRateLimitMax, cfg.AuthRateLimitWindow)
		g.Go(func() error { gl.Run(ctx, time.Minute); return nil })
		g.Go(func() error { al.Run(ctx, time.Minute); return nil })
		globalLimiter, authLimiter = gl, al
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logrus.Fatalf("failed to connect to AMQP: %v", err)
		}
		defer p.Close()
		publisher = p
	}

	auth := service.NewAuthService(st, service.AuthConfig{
		JWTSecret:         cfg.JWTSecret,
		JWTIssuer:         cfg.JWTIssuer,
		AccessTokenTTL:    cfg.AccessTokenTTL,
		RefreshTokenTTL:   cfg.RefreshTokenTTL,
		PasswordPolicy:    cfg.PasswordPolicy,
		HashPolicy:        cfg.HashPolicy,
		BcryptCost:        cfg.BcryptCost,
		RevealLoginErrors: cfg.RevealLoginErrors,
	})
	fin := service.NewFinanceService(st, redisClient, cfg.CacheTTL, publisher)
	schema, err := graph.New(auth, fin)
	if err != nil {
		logrus.Fatalf("failed to build GraphQL schema: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}
	r, err := api.NewRouter(api.Deps{
		Auth:           auth,
		Schema:         schema,
		DB:             st,
		GlobalLimiter:  globalLimiter,
		AuthLimiter:    authLimiter,
		CSRF:           middleware.NewCSRF(cfg.CSRFSecret, cfg.CSRFEnabled, cfg.CookieSecure, cfg.CookieDomain),
		Cookies:        api.CookieConfig{Secure: cfg.CookieSecure, Domain: cfg.CookieDomain, MaxAge: cfg.RefreshTokenTTL},
		CORSOrigins:    cfg.CORSOrigins,
		TrustedProxies: []string{"127.0.0.1"},
		HSTS:           cfg.IsProd,
		Started:        time.Now(),
	})
	if err != nil {
		logrus.Fatalf("failed to build router: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		logrus.Info("Server running on " + cfg.AppPort) // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logrus.Info("Shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logrus.Errorf("server stopped: %v", err)
	}
}
