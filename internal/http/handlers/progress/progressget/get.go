// Package progressget реализует HTTP-обработчик прогресса пользователя по курсу.
package progressget

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/trading-academy/internal/http/middlewarectx"
	"github.com/magabrotheeeer/trading-academy/internal/http/params"
	"github.com/magabrotheeeer/trading-academy/internal/http/response"
	"github.com/magabrotheeeer/trading-academy/internal/lib/sl"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

// Service описывает чтение прогресса.
type Service interface {
	Course(ctx context.Context, userID, courseID string) (*models.CourseProgress, error)
}

// Handler отдаёт прогресс по курсу.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Прогресс по курсу
// @Tags Progress
// @Security BearerAuth
// @Produce  json
// @Param courseID path string true "ID курса"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /progress/{courseID} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.progress.get"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.ActorFrom(r.Context())
	if !ok {
		response.RenderStatus(w, r, http.StatusUnauthorized, "user identification missing")
		return
	}

	courseID, err := params.UUID(r, "courseID", "course not found")
	if err != nil {
		log.Info("malformed course id", slog.String("course_id", chi.URLParam(r, "courseID")))
		response.RenderError(w, r, err, "course not found")
		return
	}

	progress, err := h.service.Course(r.Context(), actor.ID, courseID)
	if err != nil {
		log.Error("failed to read progress", sl.Err(err))
		response.RenderError(w, r, err, "could not read progress")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(progress))
}
