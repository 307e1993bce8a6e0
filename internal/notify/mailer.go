package notify

import (
	"context"
	"fmt"
	"log/slog"

	"yamdb/internal/config"

	"golang.org/x/time/rate"
	"gopkg.in/gomail.v2"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a message synchronously
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer picks the backend configured by EMAIL_BACKEND
func NewMailer(cfg *config.Config, logger *slog.Logger) (Mailer, error) {
	limiter := rate.NewLimiter(rate.Limit(cfg.EmailRateLimit), cfg.EmailRateLimit)

	switch cfg.EmailBackend {
	case "smtp":
		return NewSMTPMailer(cfg, limiter, logger), nil
	case "file":
		return NewFileMailer(cfg.EmailFilePath, cfg.EmailFrom, limiter, logger)
	default:
		return nil, fmt.Errorf("unknown email backend %q", cfg.EmailBackend)
	}
}

// ConfirmationMessage carries the plaintext code to the user
func ConfirmationMessage(to, username, code string) Message {
	return Message{
		To:      to,
		Subject: "YaMDb confirmation code",
		Body: fmt.Sprintf("Hello, %s!\n\nYour confirmation code: %s\n\n"+
			"Exchange it for an access token at /v1/auth/token/.\n", username, code),
	}
}

func buildMessage(from string, msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	return m
}

func wait(ctx context.Context, limiter *rate.Limiter) error {
	if limiter == nil {
		return nil
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("mail rate limit: %w", err)
	}
	return nil
}
