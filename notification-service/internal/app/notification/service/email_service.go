package service

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// EmailSender отправляет письма. Интерфейс вынесен для подмены в тестах
type EmailSender interface {
	Send(to, subject, body string) error
}

// SMTPEmailService отправляет письма через SMTP с использованием gomail
type SMTPEmailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPEmailService(host string, port int, username, password, from string) *SMTPEmailService {
	return &SMTPEmailService{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *SMTPEmailService) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	return nil
}
