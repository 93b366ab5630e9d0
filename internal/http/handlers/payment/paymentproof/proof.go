// Package paymentproof реализует HTTP-обработчик загрузки изображения
// подтверждения оплаты. Возвращает ключ объекта, который передаётся
// в proof_key при отправке платежа.
package paymentproof

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/trading-academy/internal/http/middlewarectx"
	"github.com/magabrotheeeer/trading-academy/internal/http/response"
	"github.com/magabrotheeeer/trading-academy/internal/lib/sl"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

// FormField имя поля multipart-формы с файлом.
const FormField = "proof"

// Service описывает загрузку подтверждения оплаты.
type Service interface {
	UploadProof(ctx context.Context, actor models.Actor, r io.Reader) (string, error)
}

// Handler обрабатывает загрузку подтверждения.
type Handler struct {
	log     *slog.Logger
	service Service
	maxSize int64
}

// New создает Handler. Тело запроса больше maxSize отклоняется до чтения файла.
func New(log *slog.Logger, service Service, maxSize int64) *Handler {
	return &Handler{log: log, service: service, maxSize: maxSize}
}

// ServeHTTP godoc
// @Summary Загрузка подтверждения оплаты
// @Tags Payments
// @Security BearerAuth
// @Accept  multipart/form-data
// @Produce  json
// @Param proof formData file true "Скриншот или PDF"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /payments/proof [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.proof"

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

	// запас на заголовки multipart
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+64<<10)
	file, _, err := r.FormFile(FormField)
	if err != nil {
		log.Error("failed to read proof file", sl.Err(err))
		response.RenderStatus(w, r, http.StatusBadRequest, "proof file is required")
		return
	}
	defer file.Close()

	key, err := h.service.UploadProof(r.Context(), actor, file)
	if err != nil {
		log.Error("failed to upload proof", sl.Err(err))
		response.RenderError(w, r, err, "could not upload proof")
		return
	}

	log.Info("proof uploaded", slog.String("key", key))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"proof_key": key,
	}))
}
