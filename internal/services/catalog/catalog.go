// Package services реализует каталог тарифных планов.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/magabrotheeeer/trading-academy/internal/access"
	"github.com/magabrotheeeer/trading-academy/internal/lib/apperr"
	"github.com/magabrotheeeer/trading-academy/internal/lib/sl"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

const (
	plansCacheKey = "plans:all"
	plansCacheTTL = 10 * time.Minute
)

// PlanRepository определяет методы хранилища для тарифов.
type PlanRepository interface {
	CreatePlan(ctx context.Context, plan models.SubscriptionPlan) (string, error)
	UpdatePlan(ctx context.Context, plan models.SubscriptionPlan) error
	GetPlan(ctx context.Context, id string) (*models.SubscriptionPlan, error)
	ListPlans(ctx context.Context) ([]*models.SubscriptionPlan, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// CatalogService отдаёт каталог тарифов и позволяет персоналу его менять.
type CatalogService struct {
	repo  PlanRepository
	cache Cache
	log   *slog.Logger
}

// NewCatalogService создает новый экземпляр CatalogService.
func NewCatalogService(repo PlanRepository, cache Cache, log *slog.Logger) *CatalogService {
	return &CatalogService{repo: repo, cache: cache, log: log}
}

// List возвращает каталог, используя кеш. Ошибки кеша не мешают чтению из базы.
func (s *CatalogService) List(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	const op = "services.CatalogService.List"

	var plans []*models.SubscriptionPlan
	found, err := s.cache.Get(ctx, plansCacheKey, &plans)
	if err != nil {
		s.log.Warn("failed to read plans from cache", sl.Err(err))
	}
	if found {
		return plans, nil
	}

	plans, err = s.repo.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(ctx, plansCacheKey, plans, plansCacheTTL); err != nil {
		s.log.Warn("failed to cache plans", sl.Err(err))
	}
	return plans, nil
}

// Get возвращает тариф по ID.
func (s *CatalogService) Get(ctx context.Context, id string) (*models.SubscriptionPlan, error) {
	return s.repo.GetPlan(ctx, id)
}

// Create добавляет тариф. Требует доступа к разделу pricing.
func (s *CatalogService) Create(ctx context.Context, actor models.Actor, req models.DummyPlan) (string, error) {
	const op = "services.CatalogService.Create"
	if err := access.Authorize(actor.Role, access.Pricing); err != nil {
		return "", err
	}
	plan, err := buildPlan(uuid.NewString(), req)
	if err != nil {
		return "", err
	}
	id, err := s.repo.CreatePlan(ctx, plan)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx)
	s.log.Info("plan created", slog.String("plan_id", id), slog.String("by", actor.ID))
	return id, nil
}

// Update изменяет тариф. Требует доступа к разделу pricing.
// Уже активированные подписки сохраняют свой период.
func (s *CatalogService) Update(ctx context.Context, actor models.Actor, id string, req models.DummyPlan) error {
	const op = "services.CatalogService.Update"
	if err := access.Authorize(actor.Role, access.Pricing); err != nil {
		return err
	}
	plan, err := buildPlan(id, req)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePlan(ctx, plan); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx)
	s.log.Info("plan updated", slog.String("plan_id", id), slog.String("by", actor.ID))
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, plansCacheKey); err != nil {
		s.log.Warn("failed to invalidate plans cache", sl.Err(err))
	}
}

func buildPlan(id string, req models.DummyPlan) (models.SubscriptionPlan, error) {
	if req.Name == "" {
		return models.SubscriptionPlan{}, apperr.Validation("plan name is required")
	}
	if req.DurationDays <= 0 {
		return models.SubscriptionPlan{}, apperr.Validation("duration_days must be positive")
	}
	if req.Price < 0 {
		return models.SubscriptionPlan{}, apperr.Validation("price must not be negative")
	}
	s := slug.Make(req.Name)
	if s == "" {
		return models.SubscriptionPlan{}, apperr.Validation("plan name must contain letters or digits")
	}
	return models.SubscriptionPlan{
		ID:           id,
		Name:         req.Name,
		Slug:         s,
		Price:        req.Price,
		DurationDays: req.DurationDays,
		Features:     models.Features(req.Features),
		Popular:      req.Popular,
	}, nil
}
