// Package main Trading Academy API
//
// @title           Trading Academy API
// @version         1.0
// @description     API платформы обучения трейдингу: тарифы, подписки, ручная проверка платежей, курсы.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/magabrotheeeer/trading-academy/docs"
	"github.com/magabrotheeeer/trading-academy/internal/app/academy"
	"github.com/magabrotheeeer/trading-academy/internal/config"
	"github.com/magabrotheeeer/trading-academy/internal/lib/logger"
	"github.com/magabrotheeeer/trading-academy/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	log := logger.Setup(cfg.Env)

	log.Info("starting academy", slog.String("env", cfg.Env))
	log.Debug("config loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := academy.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("academy stopped gracefully")
}
