package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/trading-academy/internal/lib/apperr"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

const subscriptionColumns = `id, user_id, plan_id, status, start_date, end_date, created_at`

// CreateSubscription сохраняет новую подписку. У пользователя может быть
// не больше одной подписки в статусе pending.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (string, error) {
	const op = "storage.CreateSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}

	query := `INSERT INTO subscriptions (id, user_id, plan_id, status)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var id string
	if err := s.conn(ctx).QueryRowContext(ctx, query, sub.ID, sub.UserID, sub.PlanID, sub.Status).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return "", apperr.InvalidState("user already has a subscription awaiting payment")
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// GetSubscription возвращает последнюю подписку пользователя или nil, если её нет.
func (s *Storage) GetSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
			  WHERE user_id = $1
			  ORDER BY created_at DESC, id DESC
			  LIMIT 1`
	sub, err := scanSubscription(s.conn(ctx).QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// GetSubscriptionByID возвращает подписку по ID.
func (s *Storage) GetSubscriptionByID(ctx context.Context, id string) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByID"
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	sub, err := scanSubscription(s.conn(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("subscription not found")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// ActivateSubscription переводит подписку из pending в active с периодом [start, end].
// Если подписка не ожидает активации, возвращает InvalidState.
func (s *Storage) ActivateSubscription(ctx context.Context, subscriptionID string, start, end time.Time) error {
	const op = "storage.ActivateSubscription"
	res, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE subscriptions
		 SET status = 'active', start_date = $1, end_date = $2
		 WHERE id = $3 AND status = 'pending'`,
		start, end, subscriptionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		if _, err := s.GetSubscriptionByID(ctx, subscriptionID); err != nil {
			return err
		}
		return apperr.InvalidState("subscription is not awaiting activation")
	}
	return nil
}

// FindSubscriptionsExpiringBetween возвращает подписки в статусе active,
// период которых заканчивается в интервале [from, to).
func (s *Storage) FindSubscriptionsExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.ExpiringSubscription, error) {
	const op = "storage.FindSubscriptionsExpiringBetween"
	query := `SELECT s.id AS subscription_id, u.email, u.username, p.name AS plan_name, s.end_date
			  FROM subscriptions s
			  JOIN users u ON u.id = s.user_id
			  JOIN subscription_plans p ON p.id = s.plan_id
			  WHERE s.status = 'active' AND s.end_date >= $1 AND s.end_date < $2
			  ORDER BY s.end_date`
	res := []*models.ExpiringSubscription{}
	if err := s.x.SelectContext(ctx, &res, query, from, to); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func scanSubscription(row *sql.Row) (*models.Subscription, error) {
	var sub models.Subscription
	var start, end sql.NullTime
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.PlanID, &sub.Status, &start, &end, &sub.CreatedAt); err != nil {
		return nil, err
	}
	if start.Valid {
		sub.StartDate = &start.Time
	}
	if end.Valid {
		sub.EndDate = &end.Time
	}
	return &sub, nil
}
