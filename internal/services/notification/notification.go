// Package services публикует события уведомлений в брокер сообщений.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/trading-academy/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/trading-academy/internal/metrics"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

// Publisher публикует сообщение с ключом маршрутизации.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// NotificationService превращает доменные события в сообщения брокера.
type NotificationService struct {
	publisher Publisher
	log       *slog.Logger
}

// NewNotificationService создает новый экземпляр NotificationService.
func NewNotificationService(publisher Publisher, log *slog.Logger) *NotificationService {
	return &NotificationService{publisher: publisher, log: log}
}

// PaymentReviewed сообщает пользователю о решении по платежу.
func (s *NotificationService) PaymentReviewed(ctx context.Context, event models.PaymentReviewedEvent) error {
	return s.publish(ctx, rabbitmq.RoutingPaymentReviewed, event)
}

// SubscriptionExpiring напоминает о скором окончании подписки.
func (s *NotificationService) SubscriptionExpiring(ctx context.Context, event models.ExpiringEvent) error {
	return s.publish(ctx, rabbitmq.RoutingExpiring, event)
}

func (s *NotificationService) publish(ctx context.Context, key string, event any) error {
	const op = "services.NotificationService.publish"
	if err := s.publisher.Publish(ctx, key, event); err != nil {
		metrics.NotificationsPublished.WithLabelValues(key, "error").Inc()
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.NotificationsPublished.WithLabelValues(key, "ok").Inc()
	s.log.Debug("notification published", slog.String("routing_key", key))
	return nil
}
