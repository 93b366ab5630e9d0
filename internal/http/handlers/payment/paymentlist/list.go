// Package paymentlist реализует HTTP-обработчики списков платежей:
// собственная история пользователя и очередь проверки для персонала.
package paymentlist

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

// Service описывает чтение платежей.
type Service interface {
	ListMine(ctx context.Context, userID string, limit, offset int) ([]*models.Payment, error)
	ListByStatus(ctx context.Context, actor models.Actor, status models.PaymentStatus, limit, offset int) ([]*models.Payment, error)
}

// Handler отдаёт платежи текущего пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler истории платежей пользователя.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary История платежей
// @Tags Payments
// @Security BearerAuth
// @Produce  json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response
// @Router /payments/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.list"

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
	limit, offset, err := paging.FromRequest(r)
	if err != nil {
		response.RenderError(w, r, err, "invalid paging")
		return
	}

	payments, err := h.service.ListMine(r.Context(), actor.ID, limit, offset)
	if err != nil {
		log.Error("failed to list payments", sl.Err(err))
		response.RenderError(w, r, err, "could not list payments")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"payments": payments,
	}))
}

// ReviewQueueHandler отдаёт платежи по статусу для персонала.
type ReviewQueueHandler struct {
	log     *slog.Logger
	service Service
}

// NewReviewQueue создает ReviewQueueHandler.
func NewReviewQueue(log *slog.Logger, service Service) *ReviewQueueHandler {
	return &ReviewQueueHandler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Платежи по статусу
// @Description По умолчанию возвращает платежи, ожидающие проверки, начиная с самых старых.
// @Tags Admin
// @Security BearerAuth
// @Produce  json
// @Param status query string false "pending | approved | rejected"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Router /admin/payments [get]
func (h *ReviewQueueHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.queue"

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
	limit, offset, err := paging.FromRequest(r)
	if err != nil {
		response.RenderError(w, r, err, "invalid paging")
		return
	}
	status := models.PaymentStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = models.PaymentPending
	}

	payments, err := h.service.ListByStatus(r.Context(), actor, status, limit, offset)
	if err != nil {
		log.Error("failed to list payments", sl.Err(err))
		response.RenderError(w, r, err, "could not list payments")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"payments": payments,
	}))
}
