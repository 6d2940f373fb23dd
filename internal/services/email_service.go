package services

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendWelcomeEmail(email, username string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
	app    string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail, appName string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
		app:    appName,
	}
}

func (s *emailService) SendWelcomeEmail(email, username string) error {
	m := newWelcomeMessage(s.from, s.app, email, username)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

func newWelcomeMessage(from, app, to, username string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Welcome to %s!", app))

	body := fmt.Sprintf(`
		<h2>Welcome to %s, %s!</h2>
		<p>Your account has been created. Open the bot in Telegram to start planning your tasks.</p>
		<p>Best regards,<br>The %s Team</p>
	`, html.EscapeString(app), html.EscapeString(username), html.EscapeString(app))

	m.SetBody("text/html", body)
	return m
}
