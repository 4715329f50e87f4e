package mail

import (
	"context"
	"errors"
	"strings"

	"github.com/kaarshe/core/internal/pkg/metrics"
	"go.uber.org/zap"
)

const defaultSMTPPort = 587

// Config holds mail provider settings.
type Config struct {
	Host           string
	Port           int
	User           string
	Pass           string
	From           string
	ReplyTo        string
	ResendKey      string
	MailjetPublic  string
	MailjetPrivate string
}

// Message is a single email. Undisclosed hides the recipient list from every
// recipient, which is how broadcast batches are addressed.
type Message struct {
	To          []string
	Subject     string
	Text        string
	HTML        string
	Undisclosed bool
}

// Transport delivers one message or fails for all of its recipients.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

type provider interface {
	name() string
	send(ctx context.Context, msg Message) error
}

// Sender picks a provider from Config: Resend when an API key is set, then
// Mailjet, then SMTP. Without a usable provider Send does nothing.
type Sender struct {
	provider provider
	logger   *zap.Logger
}

var errNoRecipients = errors.New("mail message has no recipients")

func New(cfg Config, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{provider: pickProvider(cfg, logger), logger: logger}
}

func pickProvider(cfg Config, logger *zap.Logger) provider {
	from := strings.TrimSpace(cfg.From)
	if from == "" {
		from = strings.TrimSpace(cfg.User)
	}
	if from == "" {
		return nil
	}
	switch {
	case strings.TrimSpace(cfg.ResendKey) != "":
		return newResend(cfg.ResendKey, from, cfg.ReplyTo, logger)
	case cfg.MailjetPublic != "" && cfg.MailjetPrivate != "":
		return newMailjet(cfg.MailjetPublic, cfg.MailjetPrivate, from, cfg.ReplyTo)
	case cfg.Host != "" && cfg.User != "" && cfg.Pass != "":
		port := cfg.Port
		if port <= 0 {
			port = defaultSMTPPort
		}
		return &smtpProvider{host: cfg.Host, port: port, user: cfg.User, pass: cfg.Pass, from: from, replyTo: cfg.ReplyTo}
	}
	return nil
}

// Enabled reports whether a provider is configured.
func (s *Sender) Enabled() bool { return s.provider != nil }

// Provider names the selected provider, or "none".
func (s *Sender) Provider() string {
	if s.provider == nil {
		return "none"
	}
	return s.provider.name()
}

// Send delivers msg. It is a no-op returning nil when no provider is configured.
func (s *Sender) Send(ctx context.Context, msg Message) error {
	if s.provider == nil {
		return nil
	}
	msg.To = cleanRecipients(msg.To)
	if len(msg.To) == 0 {
		return errNoRecipients
	}
	err := s.provider.send(ctx, msg)
	metrics.MailSendsTotal.WithLabelValues(s.provider.name(), metrics.Outcome(err)).Inc()
	if err != nil {
		s.logger.Debug("mail send failed",
			zap.String("provider", s.provider.name()),
			zap.Int("recipients", len(msg.To)),
			zap.Error(err))
	}
	return err
}

func cleanRecipients(to []string) []string {
	out := make([]string, 0, len(to))
	for _, addr := range to {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
