// Package navigation реализует HTTP-обработчик меню админ-панели:
// список разделов, доступных роли текущего пользователя.
package navigation

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/trading-academy/internal/access"
	"github.com/magabrotheeeer/trading-academy/internal/http/middlewarectx"
	"github.com/magabrotheeeer/trading-academy/internal/http/response"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

// Service описывает построение меню.
type Service interface {
	Navigation(actor models.Actor) []access.Category
}

// Handler отдаёт доступные разделы.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Разделы админ-панели
// @Tags Admin
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} response.Response
// @Router /admin/navigation [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	actor, ok := middlewarectx.ActorFrom(r.Context())
	if !ok {
		response.RenderStatus(w, r, http.StatusUnauthorized, "user identification missing")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"role":       actor.Role,
		"categories": h.service.Navigation(actor),
	}))
}
