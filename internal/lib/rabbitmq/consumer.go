package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/trading-academy/internal/lib/sl"
)

// ErrDiscard помечает сообщение, которое нельзя обработать повторно
// (например, некорректный JSON). Такое сообщение отбрасывается без возврата в очередь.
var ErrDiscard = errors.New("discard message")

// maxInFlight ограничивает число одновременно обрабатываемых сообщений.
const maxInFlight = 10

// ConsumerMessage запускает потребление очереди queueName. Сообщение подтверждается,
// если handler вернул nil, отбрасывается при ErrDiscard, иначе возвращается в очередь.
// Останавливается по ctx.
func ConsumerMessage(ctx context.Context, ch *amqp.Channel, queueName string, log *slog.Logger, handler func([]byte) error) error {
	const op = "rabbitmq.ConsumerMessage"
	deliveries, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	go consume(ctx, deliveries, log.With(slog.String("queue", queueName)), handler)
	return nil
}

func consume(ctx context.Context, deliveries <-chan amqp.Delivery, log *slog.Logger, handler func([]byte) error) {
	sem := make(chan struct{}, maxInFlight)
	for {
		select {
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			sem <- struct{}{}
			go func(d amqp.Delivery) {
				defer func() { <-sem }()
				if err := handler(d.Body); err != nil {
					log.Error("failed to handle message", sl.Err(err))
					requeue := !errors.Is(err, ErrDiscard)
					if nackErr := d.Nack(false, requeue); nackErr != nil {
						log.Error("failed to nack message", sl.Err(nackErr))
					}
					return
				}
				if ackErr := d.Ack(false); ackErr != nil {
					log.Error("failed to ack message", sl.Err(ackErr))
				}
			}(d)
		case <-ctx.Done():
			return
		}
	}
}
