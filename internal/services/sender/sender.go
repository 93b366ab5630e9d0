// Package services реализует отправку писем по событиям из очередей уведомлений.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/trading-academy/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/trading-academy/internal/lib/sl"
	"github.com/magabrotheeeer/trading-academy/internal/lib/smtp"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

const dateLayout = "02.01.2006"

// SenderService формирует письма и отправляет их через SMTP.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.TransportInterface, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendPaymentReviewed сообщает пользователю о решении по его платежу.
func (s *SenderService) SendPaymentReviewed(body []byte) error {
	var event models.PaymentReviewedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %v: %w", err, rabbitmq.ErrDiscard)
	}

	var subject, text string
	switch event.Decision {
	case models.PaymentApproved:
		until := "-"
		if event.EndDate != nil {
			until = event.EndDate.Format(dateLayout)
		}
		subject = "Оплата подтверждена / Payment approved"
		text = fmt.Sprintf("Здравствуйте, %s!\n\nОплата тарифа %s подтверждена. Подписка действует до %s.\n\n"+
			"Hello, %s!\n\nYour payment for %s has been approved. Your subscription is active until %s.\n",
			event.Username, event.PlanName, until, event.Username, event.PlanName, until)
	case models.PaymentRejected:
		subject = "Оплата отклонена / Payment rejected"
		text = fmt.Sprintf("Здравствуйте, %s!\n\nОплата тарифа %s отклонена. Комментарий: %s\nВы можете отправить платёж повторно.\n\n"+
			"Hello, %s!\n\nYour payment for %s has been rejected. Note: %s\nYou may submit the payment again.\n",
			event.Username, event.PlanName, event.AdminNotes, event.Username, event.PlanName, event.AdminNotes)
	default:
		return fmt.Errorf("unknown decision %q: %w", event.Decision, rabbitmq.ErrDiscard)
	}

	return s.sendEmail([]string{event.Email}, subject, text)
}

// SendExpiring напоминает о скором окончании подписки.
func (s *SenderService) SendExpiring(body []byte) error {
	var event models.ExpiringEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %v: %w", err, rabbitmq.ErrDiscard)
	}

	end := event.EndDate.Format(dateLayout)
	subject := "Подписка скоро закончится / Subscription ending soon"
	text := fmt.Sprintf("Здравствуйте, %s!\n\nВаша подписка %s заканчивается %s. Продлите её заранее, чтобы сохранить доступ к урокам.\n\n"+
		"Hello, %s!\n\nYour %s subscription ends on %s. Renew it in advance to keep access to the lessons.\n",
		event.Username, event.PlanName, end, event.Username, event.PlanName, end)

	return s.sendEmail([]string{event.Email}, subject, text)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	from := s.transport.From()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"Date: " + time.Now().Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() { _ = client.Close() }()

	if err := client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
