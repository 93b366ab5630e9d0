// Package middlewarectx содержит HTTP middleware платформы: проверку JWT,
// ролевую проверку доступа к разделам, проверку активной подписки и
// ограничение частоты запросов.
//
// JWTMiddleware кладёт в контекст запроса models.Actor; остальные middleware
// и обработчики достают его через ActorFrom.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/trading-academy/internal/http/response"
	"github.com/magabrotheeeer/trading-academy/internal/lib/jwt"
	"github.com/magabrotheeeer/trading-academy/internal/lib/sl"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// ActorKey — ключ аутентифицированного участника в контексте.
const ActorKey Key = "actor"

// TokenValidator описывает сервис проверки JWT токена.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (models.Actor, error)
}

// WithActor возвращает контекст с участником запроса.
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// ActorFrom достаёт участника запроса из контекста.
func ActorFrom(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(models.Actor)
	if !ok || actor.ID == "" {
		return models.Actor{}, false
	}
	return actor, true
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
//
// Если токен валиден, добавляет участника запроса в контекст. Недействительный
// токен даёт 401 Unauthorized, сбой при чтении пользователя — 500.
func JWTMiddleware(auth TokenValidator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Warn("missing or invalid authorization header")
				response.RenderStatus(w, r, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}

			actor, err := auth.ValidateToken(r.Context(), strings.TrimPrefix(authHeader, "Bearer "))
			if errors.Is(err, jwt.ErrInvalidToken) {
				log.Warn("invalid or expired token", sl.Err(err))
				response.RenderStatus(w, r, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			if err != nil {
				log.Error("failed to resolve token owner", sl.Err(err))
				response.RenderStatus(w, r, http.StatusInternalServerError, "internal service error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}
