package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/trading-academy/internal/access"
	"github.com/magabrotheeeer/trading-academy/internal/http/response"
	"github.com/magabrotheeeer/trading-academy/internal/lib/sl"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

// SubscriptionResolver вычисляет эффективный статус подписки пользователя.
type SubscriptionResolver interface {
	Effective(ctx context.Context, userID string) (models.EffectiveStatus, error)
}

// ActiveSubscriptionMiddleware пропускает к платному контенту только пользователей
// с эффективно активной подпиской. Персонал с доступом к content проходит без подписки.
func ActiveSubscriptionMiddleware(log *slog.Logger, subs SubscriptionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.ActiveSubscriptionMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			actor, ok := ActorFrom(r.Context())
			if !ok {
				log.Error("user identification missing")
				response.RenderStatus(w, r, http.StatusUnauthorized, "user identification missing")
				return
			}
			if access.CanAccess(actor.Role, access.Content) {
				next.ServeHTTP(w, r)
				return
			}

			status, err := subs.Effective(r.Context(), actor.ID)
			if err != nil {
				log.Error("failed to resolve subscription status", sl.Err(err))
				response.RenderStatus(w, r, http.StatusInternalServerError, "internal service error")
				return
			}
			if status != models.EffectiveActive {
				log.Info("subscription is not active", slog.String("status", string(status)))
				response.RenderStatus(w, r, http.StatusForbidden, "active subscription required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
