package notify

import (
	"context"
	"fmt"
	"log/slog"

	"yamdb/internal/config"

	"golang.org/x/time/rate"
	"gopkg.in/gomail.v2"
)

type SMTPMailer struct {
	dialer  *gomail.Dialer
	from    string
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewSMTPMailer(cfg *config.Config, limiter *rate.Limiter, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer:  gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:    cfg.EmailFrom,
		limiter: limiter,
		logger:  logger,
	}
}

func (s *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := wait(ctx, s.limiter); err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(buildMessage(s.from, msg)); err != nil {
		s.logger.Error("smtp send failed", slog.String("to", msg.To), slog.String("error", err.Error()))
		return fmt.Errorf("send email: %w", err)
	}
	s.logger.Info("email sent", slog.String("to", msg.To), slog.String("subject", msg.Subject))
	return nil
}
