package academy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/trading-academy/internal/cache"
	"github.com/magabrotheeeer/trading-academy/internal/config"
	"github.com/magabrotheeeer/trading-academy/internal/lib/jwt"
	"github.com/magabrotheeeer/trading-academy/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/trading-academy/internal/lib/sl"
	"github.com/magabrotheeeer/trading-academy/internal/migrations"
	authservice "github.com/magabrotheeeer/trading-academy/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/trading-academy/internal/services/catalog"
	courseservice "github.com/magabrotheeeer/trading-academy/internal/services/course"
	dashboardservice "github.com/magabrotheeeer/trading-academy/internal/services/dashboard"
	notificationservice "github.com/magabrotheeeer/trading-academy/internal/services/notification"
	paymentservice "github.com/magabrotheeeer/trading-academy/internal/services/payment"
	progressservice "github.com/magabrotheeeer/trading-academy/internal/services/progress"
	subservice "github.com/magabrotheeeer/trading-academy/internal/services/subscription"
	userservice "github.com/magabrotheeeer/trading-academy/internal/services/users"
	"github.com/magabrotheeeer/trading-academy/internal/storage"
	"github.com/magabrotheeeer/trading-academy/internal/storage/proofs"
)

const shutdownTimeout = 15 * time.Second

// App HTTP API платформы и ресурсы, которыми оно владеет.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New подключает зависимости, применяет миграции и собирает маршруты.
// При ошибке уже открытые ресурсы закрываются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (app *App, err error) {
	a := &App{logger: logger}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	a.db, err = storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(a.db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	a.cache, err = cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	a.conn, err = rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, err
	}
	a.ch, err = rabbitmq.SetupChannel(a.conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		return nil, err
	}

	s3Client, err := proofs.NewS3Client(ctx, cfg.Proofs)
	if err != nil {
		return nil, err
	}
	proofStore := proofs.New(s3Client, cfg.Proofs.Bucket, cfg.Proofs.MaxSize)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	notifier := notificationservice.NewNotificationService(rabbitmq.NewPublisher(a.ch), logger)

	svc := Services{
		Auth:         authservice.NewAuthService(a.db, jwtMaker, logger),
		Catalog:      catalogservice.NewCatalogService(a.db, a.cache, logger),
		Subscription: subservice.NewSubscriptionService(a.db, a.cache, logger),
		Payment:      paymentservice.New(a.db, a.cache, notifier, proofStore, logger),
		Users:        userservice.NewUserService(a.db, logger),
		Course:       courseservice.NewCourseService(a.db, logger),
		Progress:     progressservice.NewProgressService(a.db, logger),
		Dashboard:    dashboardservice.NewDashboardService(a.db),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, svc, RouteOptions{
		RateLimit:    cfg.RateLimit,
		RateBurst:    cfg.RateBurst,
		MaxProofSize: cfg.Proofs.MaxSize,
		DB:           a.db.DB,
	})

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return a, nil
}

// Run запускает HTTP сервер и блокируется до отмены ctx или ошибки сервера.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		if err != nil {
			return fmt.Errorf("academy.Run: %w", err)
		}
		return nil
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close cache", sl.Err(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close database", sl.Err(err))
		}
	}
}
