// Package userlist реализует HTTP-обработчик списка пользователей для персонала.
package userlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/trading-academy/internal/http/middlewarectx"
	"github.com/magabrotheeeer/trading-academy/internal/http/paging"
	"github.com/magabrotheeeer/trading-academy/internal/http/response"
	"github.com/magabrotheeeer/trading-academy/internal/lib/sl"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

// Service описывает чтение пользователей.
type Service interface {
	List(ctx context.Context, actor models.Actor, limit, offset int) ([]*models.User, error)
}

// Handler отдаёт страницу пользователей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Пользователи
// @Tags Admin
// @Security BearerAuth
// @Produce  json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Router /admin/users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.ActorFrom(r.Context())
	if !ok {
		response.RenderStatus(w, r, http.StatusUnauthorized, "user identification missing")
		return
	}
	limit, offset, err := paging.FromRequest(r)
	if err != nil {
		response.RenderError(w, r, err, "invalid paging")
		return
	}

	users, err := h.service.List(r.Context(), actor, limit, offset)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		response.RenderError(w, r, err, "could not list users")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"users": users,
	}))
}
