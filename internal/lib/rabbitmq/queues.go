package rabbitmq

// Exchange обменник уведомлений.
const Exchange = "notifications"

// Ключи маршрутизации событий.
const (
	RoutingPaymentReviewed = "payment.reviewed"
	RoutingExpiring        = "subscription.expiring"
)

// Очереди, которые слушает сервис рассылки.
const (
	QueuePayment  = "notification.payment"
	QueueExpiring = "notification.expiring"
)

// QueueConfig очередь и её ключ привязки к Exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди уведомлений.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueuePayment, RoutingKey: RoutingPaymentReviewed},
		{QueueName: QueueExpiring, RoutingKey: RoutingExpiring},
	}
}
