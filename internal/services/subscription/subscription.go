// Package services реализует выбор тарифа и чтение состояния подписки.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/trading-academy/internal/cache"
	"github.com/magabrotheeeer/trading-academy/internal/lib/apperr"
	"github.com/magabrotheeeer/trading-academy/internal/lib/sl"
	"github.com/magabrotheeeer/trading-academy/internal/lifecycle"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

const subscriptionCacheTTL = 5 * time.Minute

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	GetPlan(ctx context.Context, id string) (*models.SubscriptionPlan, error)
	// GetSubscription возвращает последнюю подписку пользователя или nil.
	GetSubscription(ctx context.Context, userID string) (*models.Subscription, error)
	CreateSubscription(ctx context.Context, sub models.Subscription) (string, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// SubscriptionService выдаёт подписки и вычисляет их эффективный статус.
type SubscriptionService struct {
	repo  SubscriptionRepository
	cache Cache
	log   *slog.Logger
	now   func() time.Time
}

// Option настраивает SubscriptionService.
type Option func(*SubscriptionService)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *SubscriptionService) { s.now = now }
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, cache Cache, log *slog.Logger, opts ...Option) *SubscriptionService {
	s := &SubscriptionService{
		repo:  repo,
		cache: cache,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select оформляет подписку пользователя на тариф в статусе pending.
//
// Если у пользователя уже есть pending-подписка на тот же тариф, она возвращается
// без изменений. Pending на другой тариф и действующая подписка дают InvalidState.
func (s *SubscriptionService) Select(ctx context.Context, userID, planID string) (*models.Subscription, error) {
	const op = "services.SubscriptionService.Select"

	if _, err := s.repo.GetPlan(ctx, planID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	current, err := s.repo.GetSubscription(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch lifecycle.Resolve(current, s.now()) {
	case models.EffectivePending:
		if current.PlanID == planID {
			return current, nil
		}
		return nil, apperr.InvalidState("another subscription is awaiting payment")
	case models.EffectiveActive:
		return nil, apperr.InvalidState("subscription is already active")
	}

	sub := models.Subscription{
		ID:     uuid.NewString(),
		UserID: userID,
		PlanID: planID,
		Status: models.SubscriptionPending,
	}
	if _, err := s.repo.CreateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, userID)
	s.log.Info("subscription selected", slog.String("user_id", userID), slog.String("plan_id", planID))

	sub.CreatedAt = s.now()
	return &sub, nil
}

// Status возвращает последнюю подписку пользователя и её эффективный статус.
func (s *SubscriptionService) Status(ctx context.Context, userID string) (*models.SubscriptionView, error) {
	sub, err := s.latest(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.SubscriptionView{
		Subscription: sub,
		Effective:    lifecycle.Resolve(sub, s.now()),
	}, nil
}

// Effective возвращает эффективный статус подписки пользователя на текущий момент.
// Проверка доступа к контенту читает запись из хранилища мимо кеша.
func (s *SubscriptionService) Effective(ctx context.Context, userID string) (models.EffectiveStatus, error) {
	const op = "services.SubscriptionService.Effective"

	sub, err := s.repo.GetSubscription(ctx, userID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return lifecycle.Resolve(sub, s.now()), nil
}

// latest читает хранимую запись через кеш. В кеше лежит сама запись, а не
// статус: статус всегда вычисляется заново. Pending не кешируется: подтверждение
// оплаты может закоммититься между чтением и записью в кеш.
func (s *SubscriptionService) latest(ctx context.Context, userID string) (*models.Subscription, error) {
	const op = "services.SubscriptionService.latest"

	var cached cachedSubscription
	found, err := s.cache.Get(ctx, cache.SubscriptionKey(userID), &cached)
	if err != nil {
		s.log.Warn("failed to read subscription from cache", slog.String("user_id", userID), sl.Err(err))
	}
	if found {
		return cached.Subscription, nil
	}

	sub, err := s.repo.GetSubscription(ctx, userID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if sub != nil && sub.Status == models.SubscriptionPending {
		return sub, nil
	}
	if err := s.cache.Set(ctx, cache.SubscriptionKey(userID), cachedSubscription{Subscription: sub}, subscriptionCacheTTL); err != nil {
		s.log.Warn("failed to cache subscription", slog.String("user_id", userID), sl.Err(err))
	}
	return sub, nil
}

func (s *SubscriptionService) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Invalidate(ctx, cache.SubscriptionKey(userID)); err != nil {
		s.log.Warn("failed to invalidate subscription cache", slog.String("user_id", userID), sl.Err(err))
	}
}

// cachedSubscription позволяет отличить закешированное отсутствие подписки от промаха.
type cachedSubscription struct {
	Subscription *models.Subscription `json:"subscription"`
}
