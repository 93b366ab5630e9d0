package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/trading-academy/internal/models"
)

// DashboardStats считает агрегаты для панели управления на момент now.
// Активные подписки считаются по периоду действия, а не по хранимому статусу.
func (s *Storage) DashboardStats(ctx context.Context, now time.Time) (*models.DashboardStats, error) {
	const op = "storage.DashboardStats"
	query := `SELECT
			      (SELECT COUNT(*) FROM users) AS users,
			      (SELECT COUNT(*) FROM subscriptions
			       WHERE status = 'active' AND (end_date IS NULL OR end_date >= $1)) AS active_subscriptions,
			      (SELECT COUNT(*) FROM payments WHERE status = 'pending') AS pending_payments,
			      (SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = 'approved') AS revenue`
	var st models.DashboardStats
	if err := s.x.GetContext(ctx, &st, query, now); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &st, nil
}
