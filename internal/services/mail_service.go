package services

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"

	mail "github.com/go-mail/mail/v2"
	"github.com/rs/zerolog"

	"innoportal/internal/config"
)

//go:embed templates/*.html
var mailTemplates embed.FS

var emailTemplates = template.Must(template.ParseFS(mailTemplates, "templates/*.html"))

// Mailer sends transactional mail. Delivery is best-effort.
type Mailer interface {
	SendVerificationEmail(to, name, link, expiresIn string)
}

type MailService struct {
	dialer  *mail.Dialer
	from    string
	Enabled bool
	log     zerolog.Logger
}

func NewMailService(cfg config.AppConfig, log zerolog.Logger) *MailService {
	smtp := cfg.SMTP
	enabled := smtp.Host != "" && smtp.From != ""
	if !enabled {
		log.Warn().Msg("mail service disabled: SMTP_HOST or SMTP_FROM not set")
	}

	d := mail.NewDialer(smtp.Host, smtp.Port, smtp.User, smtp.Pass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         smtp.Host,
		InsecureSkipVerify: smtp.SkipTLSVerify,
	}

	return &MailService{
		dialer:  d,
		from:    smtp.From,
		Enabled: enabled,
		log:     log.With().Str("component", "mail").Logger(),
	}
}

func (s *MailService) sendAsync(to []string, subject, body string) {
	if !s.Enabled || len(to) == 0 {
		return
	}

	go func() {
		m := mail.NewMessage()
		m.SetHeader("From", s.from)
		m.SetHeader("To", to...)
		m.SetHeader("Subject", subject)
		m.SetBody("text/html", body)

		if err := s.dialer.DialAndSend(m); err != nil {
			s.log.Error().Err(err).Strs("to", to).Msg("failed to send email")
			return
		}
		s.log.Info().Strs("to", to).Str("subject", subject).Msg("email sent")
	}()
}

func renderTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

func (s *MailService) SendVerificationEmail(to, name, link, expiresIn string) {
	body, err := renderTemplate("verify_email.html", map[string]string{
		"Name":      name,
		"Link":      link,
		"ExpiresIn": expiresIn,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("render verification email")
		return
	}
	s.sendAsync([]string{to}, "Elektron pochtangizni tasdiqlang", body)
}
