// Package smtp предоставляет транспорт для отправки писем через SMTP.
//
// Транспорт создаётся явно и передаётся в сервис рассылки; каждое письмо
// отправляется через отдельное соединение, которое закрывает вызывающий.
package smtp

import "io"

// Client интерфейс SMTP клиента.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface интерфейс SMTP транспорта.
type TransportInterface interface {
	Connect() (Client, error)
	From() string
}
