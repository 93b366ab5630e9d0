// Package userrole реализует HTTP-обработчик смены роли пользователя.
// Доступен только ролям с доступом к roleManagement.
package userrole

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/trading-academy/internal/http/middlewarectx"
	"github.com/magabrotheeeer/trading-academy/internal/http/params"
	"github.com/magabrotheeeer/trading-academy/internal/http/response"
	"github.com/magabrotheeeer/trading-academy/internal/lib/sl"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

// Service описывает смену роли.
type Service interface {
	SetRole(ctx context.Context, actor models.Actor, userID string, role models.Role) error
}

// Handler обрабатывает смену роли.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Смена роли пользователя
// @Tags Admin
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param id path string true "ID пользователя"
// @Param request body models.DummyRole true "Роль"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Попытка сменить собственную роль"
// @Router /admin/users/{id}/role [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userrole"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.ActorFrom(r.Context())
	if !ok {
		response.RenderStatus(w, r, http.StatusUnauthorized, "user identification missing")
		return
	}
	userID, err := params.UUID(r, "id", "user not found")
	if err != nil {
		log.Info("malformed user id", slog.String("user_id", chi.URLParam(r, "id")))
		response.RenderError(w, r, err, "user not found")
		return
	}

	var req models.DummyRole
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.RenderStatus(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		response.RenderValidation(w, r, err)
		return
	}

	if err := h.service.SetRole(r.Context(), actor, userID, models.Role(req.Role)); err != nil {
		log.Error("failed to set role", sl.Err(err))
		response.RenderError(w, r, err, "could not change role")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"id":   userID,
		"role": req.Role,
	}))
}
