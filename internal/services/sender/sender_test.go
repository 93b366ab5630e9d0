package services

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/trading-academy/internal/lib/logger"
	"github.com/magabrotheeeer/trading-academy/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/trading-academy/internal/lib/smtp"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) From() string {
	return m.Called().String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error { return m.Called(from).Error(0) }
func (m *MockSMTPClient) Rcpt(to string) error   { return m.Called(to).Error(0) }
func (m *MockSMTPClient) Quit() error            { return m.Called().Error(0) }
func (m *MockSMTPClient) Close() error           { return m.Called().Error(0) }

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

// bufferWriter собирает тело письма.
type bufferWriter struct {
	strings.Builder
	closed bool
}

func (w *bufferWriter) Close() error {
	w.closed = true
	return nil
}

func expectDelivery(tr *MockTransport, to string) (*MockSMTPClient, *bufferWriter) {
	client := new(MockSMTPClient)
	w := &bufferWriter{}
	tr.On("From").Return("academy@example.com")
	tr.On("Connect").Return(client, nil).Once()
	client.On("Mail", "academy@example.com").Return(nil).Once()
	client.On("Rcpt", to).Return(nil).Once()
	client.On("Data").Return(w, nil).Once()
	client.On("Quit").Return(nil).Once()
	client.On("Close").Return(nil).Once()
	return client, w
}

func TestSenderService_SendPaymentReviewed(t *testing.T) {
	t.Run("approved", func(t *testing.T) {
		tr := new(MockTransport)
		client, w := expectDelivery(tr, "trader@example.com")
		svc := NewSenderService(tr, logger.Discard())

		err := svc.SendPaymentReviewed([]byte(`{"payment_id":"p1","email":"trader@example.com","username":"trader",
			"plan_name":"Pro","decision":"approved","end_date":"2024-01-31T00:00:00Z"}`))
		assert.NoError(t, err)
		assert.True(t, w.closed)
		assert.Contains(t, w.String(), "Subject: Оплата подтверждена / Payment approved")
		assert.Contains(t, w.String(), "31.01.2024")
		client.AssertExpectations(t)
		tr.AssertExpectations(t)
	})

	t.Run("rejected carries admin notes", func(t *testing.T) {
		tr := new(MockTransport)
		_, w := expectDelivery(tr, "trader@example.com")
		svc := NewSenderService(tr, logger.Discard())

		err := svc.SendPaymentReviewed([]byte(`{"email":"trader@example.com","username":"trader",
			"plan_name":"Pro","decision":"rejected","admin_notes":"wrong amount"}`))
		assert.NoError(t, err)
		assert.Contains(t, w.String(), "wrong amount")
	})

	t.Run("invalid JSON is discarded", func(t *testing.T) {
		tr := new(MockTransport)
		svc := NewSenderService(tr, logger.Discard())

		err := svc.SendPaymentReviewed([]byte(`invalid json`))
		assert.ErrorIs(t, err, rabbitmq.ErrDiscard)
		tr.AssertNotCalled(t, "Connect")
	})

	t.Run("unknown decision is discarded", func(t *testing.T) {
		svc := NewSenderService(new(MockTransport), logger.Discard())
		err := svc.SendPaymentReviewed([]byte(`{"email":"a@b.c","decision":"pending"}`))
		assert.ErrorIs(t, err, rabbitmq.ErrDiscard)
	})
}

func TestSenderService_SendExpiring(t *testing.T) {
	body := []byte(`{"email":"test@example.com","username":"testuser","plan_name":"Pro","end_date":"2024-01-31T00:00:00Z"}`)

	tests := []struct {
		name          string
		setupMocks    func(*MockTransport)
		expectedError string
	}{
		{
			name: "success",
			setupMocks: func(tr *MockTransport) {
				expectDelivery(tr, "test@example.com")
			},
		},
		{
			name: "SMTP connection error is retried",
			setupMocks: func(tr *MockTransport) {
				tr.On("From").Return("academy@example.com")
				tr.On("Connect").Return(nil, errors.New("connection error")).Once()
			},
			expectedError: "connection error",
		},
		{
			name: "recipient rejected",
			setupMocks: func(tr *MockTransport) {
				client := new(MockSMTPClient)
				tr.On("From").Return("academy@example.com")
				tr.On("Connect").Return(client, nil).Once()
				client.On("Mail", "academy@example.com").Return(nil).Once()
				client.On("Rcpt", "test@example.com").Return(errors.New("550 mailbox unavailable")).Once()
				client.On("Close").Return(nil).Once()
			},
			expectedError: "550",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := new(MockTransport)
			tt.setupMocks(tr)
			svc := NewSenderService(tr, logger.Discard())

			err := svc.SendExpiring(body)
			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				assert.NotErrorIs(t, err, rabbitmq.ErrDiscard)
			} else {
				assert.NoError(t, err)
			}
			tr.AssertExpectations(t)
		})
	}
}
