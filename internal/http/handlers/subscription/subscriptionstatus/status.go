// Package subscriptionstatus реализует HTTP-обработчик статуса подписки текущего пользователя.
package subscriptionstatus

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/trading-academy/internal/http/middlewarectx"
	"github.com/magabrotheeeer/trading-academy/internal/http/response"
	"github.com/magabrotheeeer/trading-academy/internal/lib/sl"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

// Service описывает чтение статуса подписки.
type Service interface {
	Status(ctx context.Context, userID string) (*models.SubscriptionView, error)
}

// Handler отдаёт подписку пользователя и её эффективный статус.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Статус подписки
// @Tags Subscriptions
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} response.Response
// @Router /subscriptions/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.status"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.ActorFrom(r.Context())
	if !ok {
		log.Error("user identification missing")
		response.RenderStatus(w, r, http.StatusUnauthorized, "user identification missing")
		return
	}

	view, err := h.service.Status(r.Context(), actor.ID)
	if err != nil {
		log.Error("failed to read subscription status", sl.Err(err))
		response.RenderError(w, r, err, "could not read subscription")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(view))
}
