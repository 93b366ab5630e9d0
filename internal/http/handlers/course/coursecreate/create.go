// Package coursecreate реализует HTTP-обработчик создания курса вместе с уроками.
package coursecreate

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

// Service описывает создание курса.
type Service interface {
	Create(ctx context.Context, actor models.Actor, req models.DummyCourse) (*models.Course, error)
}

// Handler обрабатывает создание курса.
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
// @Summary Создание курса
// @Tags Courses
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body models.DummyCourse true "Курс с уроками"
// @Success 201 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /admin/courses [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.ActorFrom(r.Context())
	if !ok {
		response.RenderStatus(w, r, http.StatusUnauthorized, "user identification missing")
		return
	}

	var req models.DummyCourse
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

	course, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		log.Error("failed to create course", sl.Err(err))
		response.RenderError(w, r, err, "could not create course")
		return
	}

	log.Info("course created", slog.String("slug", course.Slug))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"course": course,
	}))
}
