// Package metrics объявляет метрики Prometheus платформы.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PaymentsSubmitted число отправленных на проверку платежей по способу оплаты.
	PaymentsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "academy",
		Name:      "payments_submitted_total",
		Help:      "Payments submitted for review.",
	}, []string{"method"})

	// PaymentReviews результаты проверок платежей: decision и outcome (ok, conflict, error).
	PaymentReviews = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "academy",
		Name:      "payment_reviews_total",
		Help:      "Payment review attempts by decision and outcome.",
	}, []string{"decision", "outcome"})

	// AccessDenied отказы ролевой проверки по категориям.
	AccessDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "academy",
		Name:      "access_denied_total",
		Help:      "Role gate denials by resource category.",
	}, []string{"category"})

	// NotificationsPublished опубликованные события уведомлений.
	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "academy",
		Name:      "notifications_published_total",
		Help:      "Notification events published to the broker.",
	}, []string{"routing_key", "outcome"})
)
