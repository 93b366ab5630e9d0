// Package services реализует периодические напоминания об окончании подписок.
//
// Планировщик только читает подписки и публикует события: статус expired
// по-прежнему вычисляется при чтении и никогда не записывается.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/magabrotheeeer/trading-academy/internal/lib/sl"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

// SubscriptionRepository ищет подписки, период которых заканчивается в интервале.
type SubscriptionRepository interface {
	FindSubscriptionsExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.ExpiringSubscription, error)
}

// Notifier публикует напоминание.
type Notifier interface {
	SubscriptionExpiring(ctx context.Context, event models.ExpiringEvent) error
}

// SchedulerService ищет подписки, которые закончатся через remindDays дней.
type SchedulerService struct {
	repo       SubscriptionRepository
	notifier   Notifier
	log        *slog.Logger
	remindDays int
	now        func() time.Time
}

// Option настраивает SchedulerService.
type Option func(*SchedulerService)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *SchedulerService) { s.now = now }
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo SubscriptionRepository, notifier Notifier, log *slog.Logger, remindDays int, opts ...Option) *SchedulerService {
	s := &SchedulerService{
		repo:       repo,
		notifier:   notifier,
		log:        log,
		remindDays: remindDays,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start регистрирует задачу по cron-выражению spec и запускает планировщик.
// Остановка через Stop возвращённого *cron.Cron.
func (s *SchedulerService) Start(ctx context.Context, spec string) (*cron.Cron, error) {
	const op = "services.SchedulerService.Start"

	c := cron.New(cron.WithLocation(time.UTC))
	_, err := c.AddFunc(spec, func() {
		if _, err := s.RemindExpiring(ctx); err != nil {
			s.log.Error("reminder run failed", sl.Err(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.Start()
	s.log.Info("scheduler started", slog.String("spec", spec), slog.Int("remind_days", s.remindDays))
	return c, nil
}

// RemindExpiring публикует напоминания для подписок, период которых заканчивается
// в календарный день через remindDays дней. Возвращает число опубликованных событий.
func (s *SchedulerService) RemindExpiring(ctx context.Context) (int, error) {
	const op = "services.SchedulerService.RemindExpiring"

	now := s.now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, s.remindDays)
	to := from.AddDate(0, 0, 1)

	subs, err := s.repo.FindSubscriptionsExpiringBetween(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(subs) == 0 {
		s.log.Info("no expiring subscriptions found")
		return 0, nil
	}

	sent := 0
	for _, sub := range subs {
		event := models.ExpiringEvent{
			Email:    sub.Email,
			Username: sub.Username,
			PlanName: sub.PlanName,
			EndDate:  sub.EndDate,
		}
		if err := s.notifier.SubscriptionExpiring(ctx, event); err != nil {
			s.log.Error("failed to publish reminder", slog.String("subscription_id", sub.SubscriptionID), sl.Err(err))
			continue
		}
		sent++
	}
	s.log.Info("expiring reminders published", slog.Int("found", len(subs)), slog.Int("sent", sent))
	return sent, nil
}
