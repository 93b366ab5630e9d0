// Package services реализует данные главной страницы админ-панели.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/trading-academy/internal/access"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

// StatsRepository считает агрегаты для панели.
type StatsRepository interface {
	DashboardStats(ctx context.Context, now time.Time) (*models.DashboardStats, error)
}

// DashboardService статистика и навигация админ-панели.
type DashboardService struct {
	repo StatsRepository
	now  func() time.Time
}

// NewDashboardService создает новый экземпляр DashboardService.
func NewDashboardService(repo StatsRepository) *DashboardService {
	return &DashboardService{repo: repo, now: time.Now}
}

// Stats возвращает агрегаты. Требует доступа к разделу dashboard.
func (s *DashboardService) Stats(ctx context.Context, actor models.Actor) (*models.DashboardStats, error) {
	if err := access.Authorize(actor.Role, access.Dashboard); err != nil {
		return nil, err
	}
	stats, err := s.repo.DashboardStats(ctx, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("services.DashboardService.Stats: %w", err)
	}
	return stats, nil
}

// Navigation возвращает разделы меню, доступные роли участника.
func (s *DashboardService) Navigation(actor models.Actor) []access.Category {
	return access.Allowed(actor.Role)
}
