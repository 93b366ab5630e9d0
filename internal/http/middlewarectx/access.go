package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/trading-academy/internal/access"
	"github.com/magabrotheeeer/trading-academy/internal/http/response"
	"github.com/magabrotheeeer/trading-academy/internal/metrics"
)

// RequireAccess пропускает запрос, только если роль участника имеет доступ к категории c.
// Ответ при отказе одинаков для любых ресурсов.
func RequireAccess(log *slog.Logger, c access.Category) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r.Context())
			if !ok {
				response.RenderStatus(w, r, http.StatusUnauthorized, "user identification missing")
				return
			}
			if !access.CanAccess(actor.Role, c) {
				metrics.AccessDenied.WithLabelValues(string(c)).Inc()
				log.Warn("access denied",
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("user_id", actor.ID),
					slog.String("role", string(actor.Role)),
					slog.String("category", string(c)),
				)
				response.RenderStatus(w, r, http.StatusForbidden, "access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
