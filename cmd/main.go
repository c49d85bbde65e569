package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/IVYLIFE/Authly/config"
	"github.com/IVYLIFE/Authly/internal/auth/handler"
	"github.com/IVYLIFE/Authly/internal/auth/service"
	"github.com/IVYLIFE/Authly/internal/metrics"
	"github.com/IVYLIFE/Authly/internal/ratelimit"
	"github.com/IVYLIFE/Authly/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const serviceName = "authly"

func main() {
	cfg := config.Load()

	log := logger.New(serviceName, logger.ParseLevel(cfg.LogLevel))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	userRepo, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("store unavailable", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	tokenService := service.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessExpiryMin, cfg.RefreshExpiryMin)
	userService := service.NewUserService(userRepo, tokenService, service.NewBcryptHasher(cfg.BcryptCost))

	m := metrics.New()
	authHandler := handler.NewAuthHandler(userService, handler.Options{
		SecureCookie: cfg.IsProduction(),
		RefreshTTL:   tokenService.GetRefreshTokenExpiry(),
		Metrics:      m,
		Logger:       log,
	})

	if len(cfg.ClientURLs) == 0 {
		log.Warn("CLIENT_URLS is empty, cross-origin requests will be rejected")
	}

	limiter := newLoginLimiter(cfg, log)
	defer limiter.Close()

	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ErrorHandler:          handler.ErrorHandler(log),
		ProxyHeader:           cfg.ProxyHeader,
		DisableStartupMessage: true,
	})
	app.Use(
		recover.New(),
		helmet.New(),
		cors.New(corsConfig(cfg.ClientURLs)),
		fiberlogger.New(),
		m.Middleware(),
	)

	app.Get("/healthz", handler.Health(userRepo, log))
	app.Get("/metrics", m.Handler())

	handler.RegisterRoutes(app, authHandler, handler.RouteOptions{
		BasePath:         cfg.BasePath,
		SelfAccessRoutes: cfg.SelfAccessRoutes,
		LoginLimiter: ratelimit.New(ratelimit.Config{
			Limiter: limiter,
			Max:     cfg.LoginMaxAttempts,
			Window:  time.Duration(cfg.LoginWindowMinutes) * time.Minute,
			Scope:   "login",
			OnLimitReached: func(c *fiber.Ctx) {
				m.RecordRateLimitHit("login")
				log.Warn("login rate limit reached", "ip", c.IP())
			},
		}),
	})
	app.Use(handler.NotFound)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("shutdown failed", "error", err)
		}
	}()

	log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver, "base_path", cfg.BasePath)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error("server stopped", "error", err)
	}
}

// corsConfig allows credentialed requests from the listed origins only. An
// empty list rejects every cross-origin request.
func corsConfig(origins []string) cors.Config {
	if len(origins) == 0 {
		return cors.Config{
			AllowOriginsFunc: func(string) bool { return false },
		}
	}
	return cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowCredentials: true,
	}
}
