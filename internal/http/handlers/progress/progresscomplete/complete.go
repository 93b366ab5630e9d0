// Package progresscomplete реализует HTTP-обработчик отметки урока пройденным.
// Повторная отметка того же урока не является ошибкой.
package progresscomplete

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/trading-academy/internal/http/middlewarectx"
	"github.com/magabrotheeeer/trading-academy/internal/http/response"
	"github.com/magabrotheeeer/trading-academy/internal/lib/sl"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

// Service описывает отметку урока.
type Service interface {
	Complete(ctx context.Context, userID string, req models.DummyProgress) error
}

// Handler обрабатывает отметку урока.
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
// @Summary Отметка урока пройденным
// @Tags Progress
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body models.DummyProgress true "Урок"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /progress [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.progress.complete"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.ActorFrom(r.Context())
	if !ok {
		response.RenderStatus(w, r, http.StatusUnauthorized, "user identification missing")
		return
	}

	var req models.DummyProgress
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

	if err := h.service.Complete(r.Context(), actor.ID, req); err != nil {
		log.Error("failed to mark lesson", sl.Err(err))
		response.RenderError(w, r, err, "could not save progress")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"lesson_id": req.LessonID,
		"completed": true,
	}))
}
