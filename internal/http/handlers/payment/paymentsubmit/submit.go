// Package paymentsubmit реализует HTTP-обработчик отправки платежа на проверку.
package paymentsubmit

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

// Service описывает приём платежа.
type Service interface {
	Submit(ctx context.Context, userID string, req models.DummyPayment) (*models.Payment, error)
}

// Handler обрабатывает отправку платежа.
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
// @Summary Отправка платежа
// @Description Создаёт платёж в статусе pending по подписке, ожидающей оплаты.
// @Tags Payments
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body models.DummyPayment true "Платёж"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 409 {object} response.ErrorResponse "Подписка не ожидает оплаты"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /payments [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.submit"

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

	var req models.DummyPayment
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

	payment, err := h.service.Submit(r.Context(), actor.ID, req)
	if err != nil {
		log.Error("failed to submit payment", sl.Err(err))
		response.RenderError(w, r, err, "could not submit payment")
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"payment": payment,
	}))
}
