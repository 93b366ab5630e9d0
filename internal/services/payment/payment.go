// Package services реализует приём платежей и их проверку персоналом.
//
// Платёж создаётся в статусе pending и один раз переходит в approved или
// rejected. Одобрение в той же транзакции активирует подписку и обновляет
// денормализованный статус пользователя.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/trading-academy/internal/access"
	"github.com/magabrotheeeer/trading-academy/internal/cache"
	"github.com/magabrotheeeer/trading-academy/internal/lib/apperr"
	"github.com/magabrotheeeer/trading-academy/internal/lib/sl"
	"github.com/magabrotheeeer/trading-academy/internal/lifecycle"
	"github.com/magabrotheeeer/trading-academy/internal/metrics"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

// PaymentRepository определяет методы хранилища для платежей.
// UpdatePaymentStatus, ActivateSubscription и UpdateUserSubscriptionCache
// вызываются внутри одного InTx.
type PaymentRepository interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error

	GetSubscriptionByID(ctx context.Context, id string) (*models.Subscription, error)
	GetPlanBySubscription(ctx context.Context, subscriptionID string) (*models.SubscriptionPlan, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	CreatePayment(ctx context.Context, p models.Payment) (string, error)
	UpdatePaymentStatus(ctx context.Context, review models.Review, adminID string, at time.Time) (*models.Payment, error)
	ActivateSubscription(ctx context.Context, subscriptionID string, start, end time.Time) error
	UpdateUserSubscriptionCache(ctx context.Context, userID string, status models.EffectiveStatus) error

	ListPaymentsByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Payment, error)
	ListPaymentsByStatus(ctx context.Context, status models.PaymentStatus, limit, offset int) ([]*models.Payment, error)
}

// Cache инвалидирует закешированные подписки.
type Cache interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// Notifier отправляет уведомление о решении по платежу.
type Notifier interface {
	PaymentReviewed(ctx context.Context, event models.PaymentReviewedEvent) error
}

// ProofStore сохраняет изображение подтверждения оплаты и возвращает его ключ.
type ProofStore interface {
	Upload(ctx context.Context, username string, r io.Reader) (string, error)
}

// PaymentService реализует отправку и проверку платежей.
type PaymentService struct {
	repo     PaymentRepository
	cache    Cache
	notifier Notifier
	proofs   ProofStore
	log      *slog.Logger
	now      func() time.Time
}

// Option настраивает PaymentService.
type Option func(*PaymentService)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *PaymentService) { s.now = now }
}

// New создает новый экземпляр PaymentService.
func New(repo PaymentRepository, cache Cache, notifier Notifier, proofs ProofStore, log *slog.Logger, opts ...Option) *PaymentService {
	s := &PaymentService{
		repo:     repo,
		cache:    cache,
		notifier: notifier,
		proofs:   proofs,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UploadProof сохраняет файл подтверждения оплаты пользователя.
func (s *PaymentService) UploadProof(ctx context.Context, actor models.Actor, r io.Reader) (string, error) {
	const op = "services.PaymentService.UploadProof"
	key, err := s.proofs.Upload(ctx, actor.Username, r)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return key, nil
}

// Submit создаёт платёж в статусе pending по подписке пользователя.
func (s *PaymentService) Submit(ctx context.Context, userID string, req models.DummyPayment) (*models.Payment, error) {
	const op = "services.PaymentService.Submit"

	method := models.PaymentMethod(req.Method)
	if req.Amount <= 0 {
		return nil, apperr.Validation("amount is required")
	}
	if !method.Valid() {
		return nil, apperr.Validation("method must be crypto or bank")
	}

	sub, err := s.repo.GetSubscriptionByID(ctx, req.SubscriptionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if sub.UserID != userID {
		return nil, apperr.Validation("subscription does not belong to user")
	}
	if sub.Status != models.SubscriptionPending {
		return nil, apperr.InvalidState("subscription is not awaiting payment")
	}

	p := models.Payment{
		ID:             uuid.NewString(),
		SubscriptionID: sub.ID,
		UserID:         userID,
		Amount:         req.Amount,
		Method:         method,
		ProofKey:       req.ProofKey,
		Status:         models.PaymentPending,
		CreatedAt:      s.now().UTC(),
	}
	if _, err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.PaymentsSubmitted.WithLabelValues(string(method)).Inc()
	s.log.Info("payment submitted",
		slog.String("payment_id", p.ID),
		slog.String("subscription_id", sub.ID),
		slog.String("method", string(method)),
	)
	return &p, nil
}

// Review применяет решение персонала к платежу в статусе pending.
//
// Изменение платежа, активация подписки и обновление статуса пользователя
// выполняются атомарно. Повторная или параллельная проверка того же платежа
// завершается InvalidState и ничего не меняет. Уведомление отправляется после
// фиксации транзакции; его ошибка не отменяет решения.
func (s *PaymentService) Review(ctx context.Context, actor models.Actor, paymentID string, req models.DummyReview) (*models.Payment, error) {
	const op = "services.PaymentService.Review"

	if err := access.Authorize(actor.Role, access.Payments); err != nil {
		return nil, err
	}
	decision := models.PaymentStatus(req.Decision)
	if !decision.IsDecision() {
		return nil, apperr.Validation("decision must be approved or rejected")
	}

	now := s.now().UTC()
	review := models.Review{PaymentID: paymentID, Decision: decision, AdminNotes: req.AdminNotes}

	var (
		payment *models.Payment
		plan    *models.SubscriptionPlan
		endDate *time.Time
	)
	err := s.repo.InTx(ctx, func(ctx context.Context) error {
		var err error
		payment, err = s.repo.UpdatePaymentStatus(ctx, review, actor.ID, now)
		if err != nil {
			return err
		}
		if decision != models.PaymentApproved {
			return nil
		}
		plan, err = s.repo.GetPlanBySubscription(ctx, payment.SubscriptionID)
		if err != nil {
			return err
		}

		start, end := lifecycle.Window(now, plan.DurationDays)
		if err := s.repo.ActivateSubscription(ctx, payment.SubscriptionID, start, end); err != nil {
			return err
		}
		if err := s.repo.UpdateUserSubscriptionCache(ctx, payment.UserID, models.EffectiveActive); err != nil {
			return err
		}
		endDate = &end
		return nil
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, apperr.ErrInvalidState) {
			outcome = "conflict"
		}
		metrics.PaymentReviews.WithLabelValues(string(decision), outcome).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.PaymentReviews.WithLabelValues(string(decision), "ok").Inc()

	s.log.Info("payment reviewed",
		slog.String("payment_id", payment.ID),
		slog.String("decision", string(decision)),
		slog.String("admin_id", actor.ID),
	)

	if err := s.cache.Invalidate(ctx, cache.SubscriptionKey(payment.UserID)); err != nil {
		s.log.Warn("failed to invalidate subscription cache", slog.String("user_id", payment.UserID), sl.Err(err))
	}
	s.notify(ctx, payment, plan, endDate)

	return payment, nil
}

// notify публикует событие о решении по платежу. plan равен nil для отклонённого
// платежа: тогда тариф читается уже после коммита.
func (s *PaymentService) notify(ctx context.Context, p *models.Payment, plan *models.SubscriptionPlan, endDate *time.Time) {
	user, err := s.repo.GetUserByID(ctx, p.UserID)
	if err != nil {
		s.log.Error("failed to load user for notification", slog.String("payment_id", p.ID), sl.Err(err))
		return
	}
	if plan == nil {
		plan, err = s.repo.GetPlanBySubscription(ctx, p.SubscriptionID)
		if err != nil {
			s.log.Error("failed to load plan for notification", slog.String("payment_id", p.ID), sl.Err(err))
			return
		}
	}
	event := models.PaymentReviewedEvent{
		PaymentID:  p.ID,
		Email:      user.Email,
		Username:   user.Username,
		PlanName:   plan.Name,
		Decision:   p.Status,
		AdminNotes: p.AdminNotes,
		EndDate:    endDate,
	}
	if err := s.notifier.PaymentReviewed(ctx, event); err != nil {
		s.log.Error("failed to publish payment reviewed event", slog.String("payment_id", p.ID), sl.Err(err))
	}
}

// ListMine возвращает платежи пользователя.
func (s *PaymentService) ListMine(ctx context.Context, userID string, limit, offset int) ([]*models.Payment, error) {
	return s.repo.ListPaymentsByUser(ctx, userID, limit, offset)
}

// ListByStatus возвращает платежи в статусе status. Требует доступа к разделу payments.
func (s *PaymentService) ListByStatus(ctx context.Context, actor models.Actor, status models.PaymentStatus, limit, offset int) ([]*models.Payment, error) {
	if err := access.Authorize(actor.Role, access.Payments); err != nil {
		return nil, err
	}
	switch status {
	case models.PaymentPending, models.PaymentApproved, models.PaymentRejected:
	default:
		return nil, apperr.Validation("unknown payment status %q", status)
	}
	return s.repo.ListPaymentsByStatus(ctx, status, limit, offset)
}
