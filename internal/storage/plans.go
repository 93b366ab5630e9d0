package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/trading-academy/internal/lib/apperr"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

const planColumns = `id, name, slug, price, duration_days, features, popular, created_at`

// CreatePlan сохраняет тариф.
func (s *Storage) CreatePlan(ctx context.Context, plan models.SubscriptionPlan) (string, error) {
	const op = "storage.CreatePlan"
	query := `INSERT INTO subscription_plans (id, name, slug, price, duration_days, features, popular)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var id string
	err := s.conn(ctx).QueryRowContext(ctx, query,
		plan.ID, plan.Name, plan.Slug, plan.Price, plan.DurationDays, plan.Features, plan.Popular).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return "", apperr.Validation("plan %q already exists", plan.Slug)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpdatePlan обновляет тариф по ID.
func (s *Storage) UpdatePlan(ctx context.Context, plan models.SubscriptionPlan) error {
	const op = "storage.UpdatePlan"
	query := `UPDATE subscription_plans
			  SET name = $1, slug = $2, price = $3, duration_days = $4, features = $5, popular = $6
			  WHERE id = $7`
	res, err := s.conn(ctx).ExecContext(ctx, query,
		plan.Name, plan.Slug, plan.Price, plan.DurationDays, plan.Features, plan.Popular, plan.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Validation("plan %q already exists", plan.Slug)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOne(res, op, "plan not found")
}

// GetPlan возвращает тариф по ID.
func (s *Storage) GetPlan(ctx context.Context, id string) (*models.SubscriptionPlan, error) {
	const op = "storage.GetPlan"
	var p models.SubscriptionPlan
	err := s.x.GetContext(ctx, &p, `SELECT `+planColumns+` FROM subscription_plans WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("plan not found")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// ListPlans возвращает каталог тарифов по возрастанию цены.
func (s *Storage) ListPlans(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	const op = "storage.ListPlans"
	plans := []*models.SubscriptionPlan{}
	if err := s.x.SelectContext(ctx, &plans,
		`SELECT `+planColumns+` FROM subscription_plans ORDER BY price, name`); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}

// GetPlanBySubscription возвращает тариф подписки. Внутри транзакции блокирует строку подписки.
func (s *Storage) GetPlanBySubscription(ctx context.Context, subscriptionID string) (*models.SubscriptionPlan, error) {
	const op = "storage.GetPlanBySubscription"
	query := `SELECT p.id, p.name, p.slug, p.price, p.duration_days, p.features, p.popular, p.created_at
			  FROM subscriptions s
			  JOIN subscription_plans p ON p.id = s.plan_id
			  WHERE s.id = $1
			  FOR UPDATE OF s`
	var p models.SubscriptionPlan
	err := s.conn(ctx).QueryRowContext(ctx, query, subscriptionID).Scan(
		&p.ID, &p.Name, &p.Slug, &p.Price, &p.DurationDays, &p.Features, &p.Popular, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("subscription not found")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}
