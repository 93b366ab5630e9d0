// Package courselessons реализует HTTP-обработчик уроков курса.
// Маршрут закрыт проверкой активной подписки.
package courselessons

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/trading-academy/internal/http/response"
	"github.com/magabrotheeeer/trading-academy/internal/lib/sl"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

// Service описывает чтение курса и его уроков.
type Service interface {
	Lessons(ctx context.Context, courseSlug string) (*models.Course, []*models.Lesson, error)
}

// Handler отдаёт курс и его уроки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Уроки курса
// @Tags Courses
// @Security BearerAuth
// @Produce  json
// @Param slug path string true "Slug курса"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse "Нет активной подписки"
// @Failure 404 {object} response.ErrorResponse
// @Router /courses/{slug}/lessons [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.lessons"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	course, lessons, err := h.service.Lessons(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		log.Error("failed to load lessons", sl.Err(err))
		response.RenderError(w, r, err, "could not load lessons")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"course":  course,
		"lessons": lessons,
	}))
}
