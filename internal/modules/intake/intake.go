// Package intake accepts the contact and speaking-request forms, files them
// as CMS records and notifies the site owner.
package intake

import (
	"context"
	"strings"

	"github.com/kaarshe/core/internal/pkg/apperr"
	"github.com/kaarshe/core/internal/pkg/mail"
	"github.com/kaarshe/core/internal/pkg/metrics"
	"github.com/kaarshe/core/internal/pkg/wp"
	"go.uber.org/zap"
)

const invalidInput = "Missing required fields or invalid email"

// ContactForm is a contact message. All values arrive trimmed.
type ContactForm struct {
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Email     string `validate:"kemail"`
	Phone     string
	Subject   string
	Message   string `validate:"required"`
}

func (f ContactForm) name() string {
	return strings.TrimSpace(f.FirstName + " " + f.LastName)
}

// SpeakingForm is a speaking engagement request.
type SpeakingForm struct {
	Organization string `validate:"required"`
	Email        string `validate:"kemail"`
	Date         string
	Format       string
	Notes        string
}

type Settings struct {
	OwnerEmail       string
	ContactPostType  string
	SpeakingPostType string
}

// Outcome lists best-effort steps that failed.
type Outcome struct {
	Warnings []string
}

type Service struct {
	cms      *wp.Client
	mailer   mail.Transport
	settings Settings
	logger   *zap.Logger
}

func NewService(cms *wp.Client, mailer mail.Transport, settings Settings, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cms: cms, mailer: mailer, settings: settings, logger: logger.Named("intake")}
}

func (s *Service) SubmitContact(ctx context.Context, f ContactForm) (out Outcome, err error) {
	defer func() { metrics.IntakeSubmissionsTotal.WithLabelValues("contact", outcomeLabel(err)).Inc() }()

	if err := getValidator().Struct(f); err != nil {
		return out, apperr.Validation(invalidInput)
	}
	if err := wp.ConfigError(s.cms.Configured(), "Contact"); err != nil {
		return out, err
	}

	title := joinNonBlank(" — ", firstNonBlank(f.Subject, "Contact request"), f.name())
	content := joinNonBlank("\n",
		"Name: "+f.name(),
		"Email: "+f.Email,
		labeled("Phone", f.Phone),
		labeled("Subject", f.Subject),
		f.Message,
	)
	if _, err := s.cms.CreateItem(ctx, s.settings.ContactPostType, wp.CreateParams{
		Title:   firstNonBlank(title, f.Email, "Contact request"),
		Status:  "publish",
		Content: content,
	}); err != nil {
		return out, wp.WriteError(err, "contact submit")
	}

	s.notify(ctx, &out, mail.Notice{
		Subject: "New contact message from " + f.name(),
		Intro:   "You received a new contact message via kaarshe.com.",
		Lines: [][2]string{
			{"Name", f.name()},
			{"Email", f.Email},
			{"Phone", f.Phone},
			{"Subject", f.Subject},
		},
		DetailLabel: "Message",
		Detail:      f.Message,
	})
	return out, nil
}

func (s *Service) SubmitSpeaking(ctx context.Context, f SpeakingForm) (out Outcome, err error) {
	defer func() { metrics.IntakeSubmissionsTotal.WithLabelValues("book_speaking", outcomeLabel(err)).Inc() }()

	if err := getValidator().Struct(f); err != nil {
		return out, apperr.Validation(invalidInput)
	}
	if err := wp.ConfigError(s.cms.Configured(), "Book speaking"); err != nil {
		return out, err
	}

	title := joinNonBlank(" — ", f.Organization, f.Format, f.Date)
	content := joinNonBlank("\n",
		"Organization: "+f.Organization,
		"Email: "+f.Email,
		labeled("Target date", f.Date),
		labeled("Format", f.Format),
		f.Notes,
	)
	if _, err := s.cms.CreateItem(ctx, s.settings.SpeakingPostType, wp.CreateParams{
		Title:   firstNonBlank(title, f.Organization, f.Email, "Speaking request"),
		Status:  "publish",
		Content: content,
	}); err != nil {
		return out, wp.WriteError(err, "book speaking submit")
	}

	s.notify(ctx, &out, mail.Notice{
		Subject: "New speaking request from " + f.Organization,
		Intro:   "You received a new speaking request via kaarshe.com.",
		Lines: [][2]string{
			{"Organization", f.Organization},
			{"Email", f.Email},
			{"Target date", f.Date},
			{"Format", f.Format},
		},
		DetailLabel: "Notes",
		Detail:      f.Notes,
	})
	return out, nil
}

func (s *Service) notify(ctx context.Context, out *Outcome, n mail.Notice) {
	n.To = strings.TrimSpace(s.settings.OwnerEmail)
	if n.To == "" {
		return
	}
	if err := s.mailer.Send(ctx, mail.OwnerNotice(n)); err != nil {
		s.logger.Warn("owner notification failed", zap.String("subject", n.Subject), zap.Error(apperr.Transport(err)))
		out.Warnings = append(out.Warnings, "owner notification")
	}
}

func labeled(label, value string) string {
	if value == "" {
		return ""
	}
	return label + ": " + value
}

// joinNonBlank joins the non-blank parts. Record bodies have no empty lines.
func joinNonBlank(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case apperr.IsKind(err, apperr.KindValidation):
		return "rejected"
	default:
		return "error"
	}
}
