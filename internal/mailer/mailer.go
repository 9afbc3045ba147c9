package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type Config struct {
	Host       string
	Port       int
	Username   string
	Password   string
	Encryption string // ssl, starttls/tls or none
	From       string
}

var _ domain.EmailRelay = (*SMTPRelay)(nil)

// SMTPRelay delivers plain-text emails through an SMTP server.
type SMTPRelay struct {
	from   string
	logger *logger.Logger
	send   func(...*gomail.Message) error
}

func NewSMTPRelay(cfg Config, log *logger.Logger) (*SMTPRelay, error) {
	if cfg.Host == "" || cfg.Port == 0 || cfg.From == "" {
		return nil, fmt.Errorf("SMTP host, port, and sender email must be configured")
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	switch strings.ToLower(cfg.Encryption) {
	case "ssl":
		dialer.SSL = true
		dialer.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	case "tls", "starttls":
		dialer.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	}

	return &SMTPRelay{
		from:   cfg.From,
		logger: log.Named("SMTPRelay"),
		send:   dialer.DialAndSend,
	}, nil
}

func (r *SMTPRelay) buildMessage(email domain.Email) (*gomail.Message, error) {
	if email.To == "" {
		return nil, fmt.Errorf("no recipient provided for email")
	}
	m := gomail.NewMessage()
	m.SetHeader("From", r.from)
	m.SetHeader("To", email.To)
	if email.ReplyTo != "" {
		m.SetHeader("Reply-To", email.ReplyTo)
	}
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/plain", email.Body)
	return m, nil
}

// Send returns early with ctx.Err() if ctx ends before the SMTP exchange does.
func (r *SMTPRelay) Send(ctx context.Context, email domain.Email) error {
	m, err := r.buildMessage(email)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- r.send(m)
	}()

	select {
	case <-ctx.Done():
		r.logger.Warn("Email sending cancelled or timed out",
			zap.String("to", email.To), zap.String("subject", email.Subject), zap.Error(ctx.Err()))
		return fmt.Errorf("email sending cancelled or timed out: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			r.logger.Error("Failed to send email",
				zap.String("to", email.To), zap.String("subject", email.Subject), zap.Error(err))
			return fmt.Errorf("failed to send email: %w", err)
		}
	}

	r.logger.Info("Email sent", zap.String("to", email.To), zap.String("subject", email.Subject))
	return nil
}
