// Package dashboard реализует HTTP-обработчик сводной статистики админ-панели.
package dashboard

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

// Service описывает чтение статистики.
type Service interface {
	Stats(ctx context.Context, actor models.Actor) (*models.DashboardStats, error)
}

// Handler отдаёт статистику.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Статистика платформы
// @Tags Admin
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Router /admin/dashboard [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.dashboard"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.ActorFrom(r.Context())
	if !ok {
		response.RenderStatus(w, r, http.StatusUnauthorized, "user identification missing")
		return
	}

	stats, err := h.service.Stats(r.Context(), actor)
	if err != nil {
		log.Error("failed to load dashboard stats", sl.Err(err))
		response.RenderError(w, r, err, "could not load stats")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(stats))
}
