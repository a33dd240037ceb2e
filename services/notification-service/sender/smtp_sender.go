package sender

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"time"
)

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type SMTPSender struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	now  func() time.Time
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPSender{cfg: cfg, send: smtp.SendMail, now: time.Now}
}

func (s *SMTPSender) configured() bool {
	return s.cfg.Host != "" && s.cfg.Port != "" && s.cfg.From != ""
}

func (s *SMTPSender) SendEmail(ctx context.Context, to, subject, body string) (SendResult, error) {
	if !s.configured() {
		return SendResult{}, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return SendResult{}, err
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	msg := []byte(
		"From: " + s.cfg.From + "\r\n" +
			"To: " + to + "\r\n" +
			"Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=UTF-8\r\n" +
			"\r\n" +
			body,
	)

	if err := s.send(addr, auth, s.cfg.From, []string{to}, msg); err != nil {
		return SendResult{}, fmt.Errorf("smtp send failed: %w", err)
	}

	now := s.now()
	return SendResult{
		MessageID: fmt.Sprintf("smtp-%d", now.UnixNano()),
		SentAt:    now,
	}, nil
}
