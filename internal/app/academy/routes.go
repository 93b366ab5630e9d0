// Package academy собирает HTTP API платформы: зависимости, маршруты и сервер.
package academy

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/trading-academy/internal/access"
	"github.com/magabrotheeeer/trading-academy/internal/http/handlers/admin/dashboard"
	"github.com/magabrotheeeer/trading-academy/internal/http/handlers/admin/navigation"
	"github.com/magabrotheeeer/trading-academy/internal/http/handlers/admin/userlist"
	"github.com/magabrotheeeer/trading-academy/internal/http/handlers/admin/userrole"
	"github.com/magabrotheeeer/trading-academy/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/trading-academy/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/trading-academy/internal/http/handlers/course/coursecreate"
	"github.com/magabrotheeeer/trading-academy/internal/http/handlers/course/courselessons"
	"github.com/magabrotheeeer/trading-academy/internal/http/handlers/health"
	"github.com/magabrotheeeer/trading-academy/internal/http/handlers/payment/paymentlist"
	"github.com/magabrotheeeer/trading-academy/internal/http/handlers/payment/paymentproof"
	"github.com/magabrotheeeer/trading-academy/internal/http/handlers/payment/paymentreview"
	"github.com/magabrotheeeer/trading-academy/internal/http/handlers/payment/paymentsubmit"
	"github.com/magabrotheeeer/trading-academy/internal/http/handlers/plan/plancreate"
	"github.com/magabrotheeeer/trading-academy/internal/http/handlers/plan/planlist"
	"github.com/magabrotheeeer/trading-academy/internal/http/handlers/plan/planupdate"
	"github.com/magabrotheeeer/trading-academy/internal/http/handlers/progress/progresscomplete"
	"github.com/magabrotheeeer/trading-academy/internal/http/handlers/progress/progressget"
	"github.com/magabrotheeeer/trading-academy/internal/http/handlers/subscription/subscriptionselect"
	"github.com/magabrotheeeer/trading-academy/internal/http/handlers/subscription/subscriptionstatus"
	"github.com/magabrotheeeer/trading-academy/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/trading-academy/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/trading-academy/internal/services/catalog"
	courseservice "github.com/magabrotheeeer/trading-academy/internal/services/course"
	dashboardservice "github.com/magabrotheeeer/trading-academy/internal/services/dashboard"
	paymentservice "github.com/magabrotheeeer/trading-academy/internal/services/payment"
	progressservice "github.com/magabrotheeeer/trading-academy/internal/services/progress"
	subservice "github.com/magabrotheeeer/trading-academy/internal/services/subscription"
	userservice "github.com/magabrotheeeer/trading-academy/internal/services/users"
)

// Services набор сервисов, которые обслуживает HTTP API.
type Services struct {
	Auth         *authservice.AuthService
	Catalog      *catalogservice.CatalogService
	Subscription *subservice.SubscriptionService
	Payment      *paymentservice.PaymentService
	Users        *userservice.UserService
	Course       *courseservice.CourseService
	Progress     *progressservice.ProgressService
	Dashboard    *dashboardservice.DashboardService
}

// RouteOptions параметры маршрутов, зависящие от конфигурации.
type RouteOptions struct {
	RateLimit    float64
	RateBurst    int
	MaxProofSize int64
	DB           health.Pinger
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc Services, opts RouteOptions) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Get("/health", health.New(logger, opts.DB).ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, opts.RateLimit, opts.RateBurst))

		// Открытые конечные точки
		r.Post("/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)
		r.Get("/plans", planlist.New(logger, svc.Catalog).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.Auth, logger))

			r.Post("/subscriptions", subscriptionselect.New(logger, svc.Subscription).ServeHTTP)
			r.Get("/subscriptions/me", subscriptionstatus.New(logger, svc.Subscription).ServeHTTP)

			r.Post("/payments", paymentsubmit.New(logger, svc.Payment).ServeHTTP)
			r.Post("/payments/proof", paymentproof.New(logger, svc.Payment, opts.MaxProofSize).ServeHTTP)
			r.Get("/payments/me", paymentlist.New(logger, svc.Payment).ServeHTTP)

			// Платный контент
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.ActiveSubscriptionMiddleware(logger, svc.Subscription))
				r.Get("/courses/{slug}/lessons", courselessons.New(logger, svc.Course).ServeHTTP)
				r.Post("/progress", progresscomplete.New(logger, svc.Progress).ServeHTTP)
				r.Get("/progress/{courseID}", progressget.New(logger, svc.Progress).ServeHTTP)
			})

			// Админ-панель: каждый раздел закрыт своей категорией
			r.Route("/admin", func(r chi.Router) {
				r.Get("/navigation", navigation.New(logger, svc.Dashboard).ServeHTTP)

				r.With(middlewarectx.RequireAccess(logger, access.Dashboard)).
					Get("/dashboard", dashboard.New(logger, svc.Dashboard).ServeHTTP)

				r.With(middlewarectx.RequireAccess(logger, access.Users)).
					Get("/users", userlist.New(logger, svc.Users).ServeHTTP)
				r.With(middlewarectx.RequireAccess(logger, access.RoleManagement)).
					Put("/users/{id}/role", userrole.New(logger, svc.Users).ServeHTTP)

				r.Group(func(r chi.Router) {
					r.Use(middlewarectx.RequireAccess(logger, access.Pricing))
					r.Post("/plans", plancreate.New(logger, svc.Catalog).ServeHTTP)
					r.Put("/plans/{id}", planupdate.New(logger, svc.Catalog).ServeHTTP)
				})

				r.Group(func(r chi.Router) {
					r.Use(middlewarectx.RequireAccess(logger, access.Payments))
					r.Get("/payments", paymentlist.NewReviewQueue(logger, svc.Payment).ServeHTTP)
					r.Post("/payments/{id}/review", paymentreview.New(logger, svc.Payment).ServeHTTP)
				})

				r.With(middlewarectx.RequireAccess(logger, access.Content)).
					Post("/courses", coursecreate.New(logger, svc.Course).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
