// Package paymentreview реализует HTTP-обработчик проверки платежа персоналом.
//
// Решение approved активирует подписку, rejected оставляет её ожидающей оплаты.
// Повторная проверка того же платежа отклоняется с 409.
package paymentreview

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

// Service описывает проверку платежа.
type Service interface {
	Review(ctx context.Context, actor models.Actor, paymentID string, req models.DummyReview) (*models.Payment, error)
}

// Handler обрабатывает решение по платежу.
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
// @Summary Проверка платежа
// @Tags Admin
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param id path string true "ID платежа"
// @Param request body models.DummyReview true "Решение"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Платёж не найден"
// @Failure 409 {object} response.ErrorResponse "Платёж уже проверен"
// @Failure 422 {object} response.ErrorResponse
// @Router /admin/payments/{id}/review [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.review"

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
	paymentID, err := params.UUID(r, "id", "payment not found")
	if err != nil {
		log.Info("malformed payment id", slog.String("payment_id", chi.URLParam(r, "id")))
		response.RenderError(w, r, err, "payment not found")
		return
	}

	var req models.DummyReview
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

	payment, err := h.service.Review(r.Context(), actor, paymentID, req)
	if err != nil {
		log.Error("failed to review payment", slog.String("payment_id", paymentID), sl.Err(err))
		response.RenderError(w, r, err, "could not review payment")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"payment": payment,
	}))
}
