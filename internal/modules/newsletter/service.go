package newsletter

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/kaarshe/core/internal/pkg/apperr"
	"github.com/kaarshe/core/internal/pkg/emailaddr"
	"github.com/kaarshe/core/internal/pkg/mail"
	"github.com/kaarshe/core/internal/pkg/metrics"
	"github.com/kaarshe/core/internal/pkg/wp"
	"go.uber.org/zap"
)

const (
	defaultBatchSize = 50
	defaultPageSize  = 100
)

// Settings are the site-level values the service needs.
type Settings struct {
	SiteURL         string
	SiteName        string
	OwnerEmail      string
	BroadcastSecret string
	BatchSize       int
	PageSize        int
}

// Outcome reports a completed operation. Warnings list best-effort steps
// that failed without failing the operation.
type Outcome struct {
	Removed  int
	Sent     int
	Warnings []string
}

func (o *Outcome) warn(msg string) { o.Warnings = append(o.Warnings, msg) }

type Service struct {
	store    Store
	mailer   mail.Transport
	settings Settings
	logger   *zap.Logger
}

func NewService(store Store, mailer mail.Transport, settings Settings, logger *zap.Logger) *Service {
	if settings.BatchSize <= 0 {
		settings.BatchSize = defaultBatchSize
	}
	if settings.PageSize <= 0 {
		settings.PageSize = defaultPageSize
	}
	settings.SiteURL = strings.TrimRight(strings.TrimSpace(settings.SiteURL), "/")
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, mailer: mailer, settings: settings, logger: logger.Named("newsletter")}
}

// Subscribe records email and sends the owner notice and welcome email.
func (s *Service) Subscribe(ctx context.Context, email, source string) (out Outcome, err error) {
	defer func() { record("subscribe", err) }()

	if !emailaddr.Valid(email) {
		return out, apperr.Validation("Invalid email")
	}
	email = emailaddr.Normalize(email)
	if err := s.store.Ready(); err != nil {
		return out, err
	}

	sub := Subscriber{Email: email, Source: strings.TrimSpace(source)}
	if err := s.store.Create(ctx, sub); err != nil {
		return out, classifyWrite(err, "subscribe")
	}

	if owner := strings.TrimSpace(s.settings.OwnerEmail); owner != "" {
		notice := mail.OwnerNotice(mail.Notice{
			To:      owner,
			Subject: "New newsletter subscriber",
			Intro:   "Someone subscribed to the newsletter via kaarshe.com.",
			Lines:   [][2]string{{"Email", email}, {"Source", sub.Source}},
		})
		s.sendBestEffort(ctx, &out, "owner notification", notice)
	}

	welcome, err := mail.Welcome(mail.WelcomeData{
		To:             email,
		SiteName:       s.settings.SiteName,
		SiteURL:        s.settings.SiteURL,
		UnsubscribeURL: s.unsubscribeURL(email),
	})
	if err != nil {
		s.logger.Warn("render welcome email", zap.Error(err))
		out.warn("welcome email")
		return out, nil
	}
	s.sendBestEffort(ctx, &out, "welcome email", welcome)
	return out, nil
}

// Unsubscribe removes every record for email. Removing nothing is not an error.
func (s *Service) Unsubscribe(ctx context.Context, email string) (out Outcome, err error) {
	defer func() { record("unsubscribe", err) }()

	if !emailaddr.Valid(email) {
		return out, apperr.Validation("Invalid email")
	}
	email = emailaddr.Normalize(email)
	if err := s.store.Ready(); err != nil {
		return out, err
	}

	removed, err := s.store.DeleteByEmail(ctx, email)
	if err != nil {
		return out, classifyWrite(err, "unsubscribe")
	}
	out.Removed = removed
	if removed == 0 {
		return out, nil
	}

	confirm, err := mail.Unsubscribed(mail.UnsubscribedData{
		To:       email,
		SiteName: s.settings.SiteName,
		SiteURL:  s.settings.SiteURL,
	})
	if err != nil {
		s.logger.Warn("render unsubscribe confirmation", zap.Error(err))
		out.warn("unsubscribe confirmation")
		return out, nil
	}
	s.sendBestEffort(ctx, &out, "unsubscribe confirmation", confirm)
	return out, nil
}

// CheckSecret authorizes a broadcast. It touches neither the store nor the
// transport.
func (s *Service) CheckSecret(provided string) error {
	if s.settings.BroadcastSecret == "" {
		return apperr.Misconfigured("Missing NEWSLETTER_BROADCAST_SECRET")
	}
	if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(s.settings.BroadcastSecret)) != 1 {
		return apperr.Authorization("Unauthorized")
	}
	return nil
}

// Broadcast emails msg to every subscriber in sequential batches. A failed
// batch is logged and contributes nothing to Sent.
func (s *Service) Broadcast(ctx context.Context, secret string, msg BroadcastMessage) (out Outcome, err error) {
	defer func() { record("broadcast", err) }()

	if err := s.CheckSecret(secret); err != nil {
		return out, err
	}
	return s.broadcast(ctx, msg)
}

func (s *Service) broadcast(ctx context.Context, msg BroadcastMessage) (Outcome, error) {
	var out Outcome
	if err := s.store.Ready(); err != nil {
		return out, err
	}

	rendered, err := mail.Broadcast(msg.resolve(s.settings.SiteName, s.settings.SiteURL))
	if err != nil {
		return out, apperr.Internal("Failed to render broadcast", err)
	}

	seen := make(map[string]struct{})
	pending := make([]string, 0, s.settings.BatchSize)
	batchNo := 0
	flush := func() {
		if len(pending) == 0 {
			return
		}
		batchNo++
		m := rendered
		m.To = pending
		if err := s.mailer.Send(ctx, m); err != nil {
			s.logger.Warn("broadcast batch failed",
				zap.Int("batch", batchNo),
				zap.Int("recipients", len(pending)),
				zap.Error(apperr.Transport(err)))
		} else {
			out.Sent += len(pending)
			metrics.BroadcastRecipientsTotal.Add(float64(len(pending)))
		}
		pending = make([]string, 0, s.settings.BatchSize)
	}

	err = s.store.Each(ctx, s.settings.PageSize, func(page []Subscriber) error {
		for _, sub := range page {
			addr := strings.TrimSpace(sub.Email)
			if addr == "" {
				continue
			}
			key := emailaddr.Normalize(addr)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			pending = append(pending, addr)
			if len(pending) == s.settings.BatchSize {
				flush()
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("subscriber listing stopped early",
			zap.Int("collected", len(seen)), zap.Error(err))
	}
	flush()

	s.logger.Info("broadcast finished",
		zap.String("kind", string(msg.Kind)),
		zap.Int("recipients", len(seen)),
		zap.Int("sent", out.Sent))
	return out, nil
}

// Count reports how many subscribers the store holds.
func (s *Service) Count(ctx context.Context) (int64, error) {
	if err := s.store.Ready(); err != nil {
		return 0, err
	}
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, classifyWrite(err, "count")
	}
	return n, nil
}

func (s *Service) unsubscribeURL(email string) string {
	return fmt.Sprintf("%s/unsubscribe?email=%s&auto=1", s.settings.SiteURL, url.QueryEscape(email))
}

func (s *Service) sendBestEffort(ctx context.Context, out *Outcome, what string, msg mail.Message) {
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Warn("best-effort email failed", zap.String("email", what), zap.Error(apperr.Transport(err)))
		out.warn(what)
	}
}

// classifyWrite maps store failures onto the error taxonomy.
func classifyWrite(err error, op string) error {
	if errors.Is(err, ErrDuplicate) {
		return apperr.Duplicate("Email already subscribed")
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	var se *wp.StatusError
	if errors.As(err, &se) {
		return wp.WriteError(err, op)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.Upstream(fmt.Sprintf("Subscriber store %s timed out", op), 0, "", err)
	}
	return apperr.Internal(fmt.Sprintf("Subscriber store %s failed", op), err)
}

func record(op string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case apperr.IsKind(err, apperr.KindDuplicate):
		outcome = "duplicate"
	case apperr.IsKind(err, apperr.KindValidation), apperr.IsKind(err, apperr.KindAuthorization):
		outcome = "rejected"
	default:
		outcome = "error"
	}
	metrics.NewsletterOperationsTotal.WithLabelValues(op, outcome).Inc()
}
